package core

import "fmt"

// ValidateEntry checks that a corpus entry is well-formed. Entries with empty
// text are allowed: some verses exist in the index only as locator stubs.
func ValidateEntry(e *CorpusEntry) error {
	if e == nil {
		return ErrInvalidEntry
	}
	if e.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyEntryID)
	}
	if e.Reference == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyReference)
	}
	if _, err := ParseReference(e.Reference); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	return nil
}
