package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Reference is a parsed dotted numeric locator identifying a book, a hymn
// within a book, or a single verse: "10", "10.129", "10.129.1".
type Reference struct {
	Book  int
	Hymn  int
	Verse int

	hasHymn  bool
	hasVerse bool
}

// referencePattern matches a dotted locator embedded in free text. At least
// book and hymn are required so that bare numbers in a question do not
// trigger reference lookup.
var referencePattern = regexp.MustCompile(`(\d{1,2})\.(\d{1,3})(?:\.(\d{1,3}))?`)

// ParseReference parses a locator of the form "M", "M.H" or "M.H.V".
func ParseReference(s string) (Reference, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) == 0 || len(parts) > 3 {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, s)
	}

	nums := make([]int, 0, 3)
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, s)
		}
		nums = append(nums, n)
	}

	ref := Reference{Book: nums[0]}
	if len(nums) > 1 {
		ref.Hymn = nums[1]
		ref.hasHymn = true
	}
	if len(nums) > 2 {
		ref.Verse = nums[2]
		ref.hasVerse = true
	}
	return ref, nil
}

// FindReference scans free text for a dotted locator. Only locators with at
// least book and hymn components are recognized.
func FindReference(text string) (Reference, bool) {
	match := referencePattern.FindStringSubmatch(text)
	if match == nil {
		return Reference{}, false
	}

	ref, err := ParseReference(match[0])
	if err != nil {
		return Reference{}, false
	}
	return ref, true
}

// String renders the locator back to its dotted form.
func (r Reference) String() string {
	s := strconv.Itoa(r.Book)
	if r.hasHymn {
		s += "." + strconv.Itoa(r.Hymn)
	}
	if r.hasVerse {
		s += "." + strconv.Itoa(r.Verse)
	}
	return s
}

// Matches reports whether an entry's reference string falls under this
// locator. "10.129" matches "10.129" itself and every "10.129.*" verse, but
// never "10.13.1".
func (r Reference) Matches(entryRef string) bool {
	prefix := r.String()
	return entryRef == prefix || strings.HasPrefix(entryRef, prefix+".")
}
