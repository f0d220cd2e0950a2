package pipeline

import (
	"github.com/ganarajpr/rgfe-sub000/core"
	"github.com/google/uuid"
)

// State is the per-request scratch record: accumulated hits, iteration
// counter and the phrase dedup cache. It is owned exclusively by one request
// and discarded at completion or cancellation, never pooled or shared.
type State struct {
	RequestID string
	Question  string
	Iteration int

	// ReferenceHit is set when an explicit locator lookup produced results.
	// It satisfies the request by itself, so the loop stops after relevance.
	ReferenceHit bool

	// SuggestedPhrase carries the classifier's proposal for the next round.
	SuggestedPhrase string

	items        map[string]*core.RetrievedItem
	order        []string
	attempts     []core.QueryAttempt
	usedGlossary map[string]bool
}

// NewState creates the scratch state for one request.
func NewState(question string) *State {
	return &State{
		RequestID:    uuid.NewString(),
		Question:     question,
		items:        make(map[string]*core.RetrievedItem),
		usedGlossary: make(map[string]bool),
	}
}

// Merge adds newly retrieved items, dropping any entry ID already
// accumulated. Returns the number of items actually added.
func (s *State) Merge(items []*core.RetrievedItem) int {
	added := 0
	for _, item := range items {
		if _, seen := s.items[item.EntryID]; seen {
			continue
		}
		s.items[item.EntryID] = item
		s.order = append(s.order, item.EntryID)
		added++
	}
	return added
}

// Items returns every accumulated item in retrieval order.
func (s *State) Items() []*core.RetrievedItem {
	items := make([]*core.RetrievedItem, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.items[id])
	}
	return items
}

// Unevaluated returns the items the relevance stage has not processed yet.
func (s *State) Unevaluated() []*core.RetrievedItem {
	var pending []*core.RetrievedItem
	for _, item := range s.Items() {
		if !item.Evaluated() {
			pending = append(pending, item)
		}
	}
	return pending
}

// Selected returns the non-filtered items, the input to translation and
// synthesis.
func (s *State) Selected() []*core.RetrievedItem {
	var selected []*core.RetrievedItem
	for _, item := range s.Items() {
		if !item.Filtered {
			selected = append(selected, item)
		}
	}
	return selected
}

// RecordAttempt caches a query phrase and its embedding for deduplication.
func (s *State) RecordAttempt(phrase string, embedding []float32) {
	s.attempts = append(s.attempts, core.QueryAttempt{Phrase: phrase, Embedding: embedding})
}

// Attempts returns the cached query attempts.
func (s *State) Attempts() []core.QueryAttempt {
	return s.attempts
}

// PhraseUsed reports whether the exact phrase was already attempted.
func (s *State) PhraseUsed(phrase string) bool {
	for _, attempt := range s.attempts {
		if attempt.Phrase == phrase {
			return true
		}
	}
	return false
}

// SimilarAttempt returns the most similar prior attempt and its cosine
// similarity, or ok=false when no prior attempt exceeds the threshold.
func (s *State) SimilarAttempt(embedding []float32, threshold float32) (core.QueryAttempt, float32, bool) {
	var best core.QueryAttempt
	var bestScore float32
	found := false
	for _, attempt := range s.attempts {
		score := core.CosineSimilarity(embedding, attempt.Embedding)
		if score > threshold && score >= bestScore {
			best = attempt
			bestScore = score
			found = true
		}
	}
	return best, bestScore, found
}

// MarkGlossaryUsed records a glossary term consumed by the fallback rotation.
func (s *State) MarkGlossaryUsed(term string) {
	s.usedGlossary[term] = true
}

// GlossaryUsed reports whether the fallback rotation already tried the term.
func (s *State) GlossaryUsed(term string) bool {
	return s.usedGlossary[term]
}
