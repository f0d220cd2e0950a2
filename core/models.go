package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier derived from content.
// It is used for content-addressed lookups such as embedding cache keys.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// CorpusEntry is one indexed unit of source text with its reference locator
// and embedding vector. Entries are loaded once from the binary index file
// and never mutated afterwards.
type CorpusEntry struct {
	ID          string
	Text        string
	SourceLabel string
	Reference   string // dotted locator, e.g. "10.129.1"
	Embedding   []float32
}

// ImportanceTier is the relevance classification assigned to a retrieved item.
// The zero value means the item has not been evaluated yet.
type ImportanceTier int

const (
	// TierUnset means the relevance stage has not processed the item.
	TierUnset ImportanceTier = iota
	// TierLow marks tangentially related items.
	TierLow
	// TierMedium marks supporting items.
	TierMedium
	// TierHigh marks items that directly answer the question.
	TierHigh
)

// String returns the lowercase tier name.
func (t ImportanceTier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	case TierLow:
		return "low"
	default:
		return "unset"
	}
}

// TierFromString parses a tier name as produced by the relevance classifier.
// Unknown names map to TierUnset.
func TierFromString(s string) ImportanceTier {
	switch s {
	case "high":
		return TierHigh
	case "medium":
		return TierMedium
	case "low":
		return TierLow
	default:
		return TierUnset
	}
}

// RetrievedItem is a search hit carrying a mutable evaluation overlay over a
// corpus entry. It is created by the retrieval stage and enriched in place by
// the relevance and translation stages. Lifetime is a single request.
type RetrievedItem struct {
	EntryID        string
	Entry          *CorpusEntry
	Score          float32
	Translation    string
	Tier           ImportanceTier
	Filtered       bool
	EvaluationNote string

	// FromReference marks items found through an explicit reference lookup.
	// Such items are always tiered high and never filtered.
	FromReference bool
}

// Evaluated reports whether the relevance stage has processed the item.
func (i *RetrievedItem) Evaluated() bool {
	return i.Filtered || i.Tier != TierUnset
}

// QueryAttempt records a search phrase and its embedding. Attempts are cached
// per request so that near-duplicate phrases can be rejected before another
// search is executed.
type QueryAttempt struct {
	Phrase    string
	Embedding []float32
}
