package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/ganarajpr/rgfe-sub000/ai"
	"github.com/ganarajpr/rgfe-sub000/core"
)

// phraseAttempts is the number of phrase generations tried before retrieval
// falls back to a direct translation of the raw question.
const phraseAttempts = 3

// baseTemperature and temperatureStep control sampling for phrase
// generation: each regeneration after a dedup collision samples hotter.
const (
	baseTemperature = 0.4
	temperatureStep = 0.3
)

// retrieve runs one retrieval round and merges the hits into state.
// It returns an error only on context cancellation or a misused index
// (not built, wrong embedding dimension); every AI collaborator failure
// degrades to a fallback inside the stage.
func (e *Engine) retrieve(ctx context.Context, state *State) error {
	// An explicit locator in the question short-circuits everything else.
	if reference, ok := e.findReference(state.Question); ok {
		items, err := e.index.ReferenceSearch(reference, 0)
		if err == nil {
			e.monitor.ReferenceLookup(state.RequestID, reference, len(items))
			if len(items) > 0 {
				state.ReferenceHit = true
				state.Merge(items)
				e.logger.Debug("reference short-circuit",
					"requestID", state.RequestID, "reference", reference, "hits", len(items))
				return nil
			}
		} else {
			e.logger.Warn("reference search failed", "reference", reference, "err", err)
		}
	}

	phrase, embedding, err := e.choosePhrase(ctx, state)
	if err != nil {
		return err
	}

	items, err := e.search(ctx, phrase, embedding)
	if err != nil {
		return err
	}

	added := state.Merge(items)
	state.RecordAttempt(phrase, embedding)
	e.monitor.PhraseChosen(state.RequestID, phrase, len(items))
	e.logger.Debug("retrieval round done",
		"requestID", state.RequestID, "phrase", phrase, "hits", len(items), "new", added)
	return nil
}

// findReference extracts a locator from the question, either a dotted
// numeric pattern or a known named-work alias.
func (e *Engine) findReference(question string) (string, bool) {
	if ref, ok := core.FindReference(question); ok {
		return ref.String(), true
	}
	if ref, ok := aliasReference(question); ok {
		return ref, true
	}
	return "", false
}

// choosePhrase generates a search phrase that is not a near-duplicate of any
// prior attempt this request. After phraseAttempts collisions it falls back
// to a direct translation of the raw question, and as a last resort to the
// static glossary rotation.
func (e *Engine) choosePhrase(ctx context.Context, state *State) (string, []float32, error) {
	// A phrase proposed by the relevance stage is tried first, subject to
	// the same dedup rules.
	suggested := state.SuggestedPhrase
	state.SuggestedPhrase = ""

	temperature := baseTemperature
	for attempt := 0; attempt < phraseAttempts; attempt++ {
		var phrase string
		if attempt == 0 && suggested != "" {
			phrase = cleanPhrase(suggested)
		} else {
			phrase = e.generatePhrase(ctx, state, temperature)
		}
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		if phrase == "" || state.PhraseUsed(phrase) {
			temperature += temperatureStep
			continue
		}

		embedding, err := e.embedder.EmbedText(ctx, phrase)
		if err != nil {
			if ctx.Err() != nil {
				return "", nil, ctx.Err()
			}
			// Without an embedding there is nothing to dedup against and no
			// vector to search with; text search still works.
			e.logger.Warn("phrase embedding failed, continuing text-only", "err", err)
			return phrase, nil, nil
		}

		if prior, similarity, collides := state.SimilarAttempt(embedding, e.config.DedupThreshold); collides {
			e.monitor.PhraseRejected(state.RequestID, phrase, similarity)
			e.logger.Debug("phrase too similar to prior attempt",
				"phrase", phrase, "prior", prior.Phrase, "similarity", similarity)
			temperature += temperatureStep
			continue
		}

		return phrase, embedding, nil
	}

	return e.fallbackPhrase(ctx, state)
}

// generatePhrase asks the generator for a fresh search phrase. Failures are
// recoverable: an empty string is returned and the caller moves on.
func (e *Engine) generatePhrase(ctx context.Context, state *State, temperature float64) string {
	prompt := buildPhrasePrompt(state.Question, state.Attempts())
	raw, err := e.generator.Generate(ctx, prompt, ai.WithTemperature(temperature))
	if err != nil {
		e.logger.Warn("falling back", "err", fmt.Errorf("%w: %v", ErrPhraseGeneration, err))
		return ""
	}
	return cleanPhrase(raw)
}

// fallbackPhrase is the path of last resort: translate the raw question into
// corpus vocabulary, then rotate through untried glossary terms.
func (e *Engine) fallbackPhrase(ctx context.Context, state *State) (string, []float32, error) {
	raw, err := e.generator.Generate(ctx, buildFallbackTranslationPrompt(state.Question))
	if err == nil {
		if phrase := cleanPhrase(raw); phrase != "" && !state.PhraseUsed(phrase) {
			embedding, embErr := e.embedder.EmbedText(ctx, phrase)
			if embErr != nil {
				if ctx.Err() != nil {
					return "", nil, ctx.Err()
				}
				embedding = nil
			}
			return phrase, embedding, nil
		}
	} else if ctx.Err() != nil {
		return "", nil, ctx.Err()
	} else {
		e.logger.Warn("fallback translation failed", "err", err)
	}

	term, ok := nextGlossaryTerm(state)
	if !ok {
		// Rotation exhausted. Reuse the question itself; retrieval still
		// produces something for relevance to judge.
		term = state.Question
	}
	embedding, err := e.embedder.EmbedText(ctx, term)
	if err != nil {
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		embedding = nil
	}
	return term, embedding, nil
}

// search executes the hybrid query, degrading to text-only when no phrase
// embedding is available.
func (e *Engine) search(ctx context.Context, phrase string, embedding []float32) ([]*core.RetrievedItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if embedding == nil {
		return e.index.TextSearch(phrase, e.config.Limit)
	}
	return e.index.HybridSearch(phrase, embedding, e.config.Limit,
		e.config.VectorWeight, e.config.TextWeight)
}

// cleanPhrase normalizes generator output to a single bare phrase.
func cleanPhrase(raw string) string {
	phrase := strings.TrimSpace(raw)
	if idx := strings.IndexByte(phrase, '\n'); idx >= 0 {
		phrase = phrase[:idx]
	}
	phrase = strings.Trim(phrase, `"'`)
	return strings.TrimSpace(phrase)
}
