package pipeline

import (
	"context"

	"github.com/ganarajpr/rgfe-sub000/ai"
	"github.com/ganarajpr/rgfe-sub000/core"
)

// evalDecision is the relevance stage's verdict on whether retrieval should
// run another round.
type evalDecision struct {
	continueSearch bool
}

// evaluate classifies every not-yet-evaluated item and decides loop
// continuation. Items found through an explicit reference lookup are tiered
// high without consulting the classifier: they satisfy a user-specified
// locator. For the rest, a malformed or failed classification degrades the
// whole batch to filtered low-tier defaults, which biases toward more search
// rather than fabricated confidence.
func (e *Engine) evaluate(ctx context.Context, state *State) evalDecision {
	pending := state.Unevaluated()

	var toClassify []*core.RetrievedItem
	for _, item := range pending {
		if item.FromReference {
			item.Tier = core.TierHigh
			item.Filtered = false
			item.EvaluationNote = "explicit reference match"
			continue
		}
		toClassify = append(toClassify, item)
	}

	if len(toClassify) > 0 {
		e.classify(ctx, state, toClassify)
	}

	kept, filtered := 0, 0
	highQuality := 0
	for _, item := range state.Items() {
		if item.Filtered {
			filtered++
			continue
		}
		kept++
		if item.Tier == core.TierHigh || item.Tier == core.TierMedium {
			highQuality++
		}
	}
	e.monitor.ItemsEvaluated(state.RequestID, kept, filtered)

	// Quality floor: stop searching once two high-or-medium items survive.
	// The iteration ceiling is enforced by the controller, so the loop
	// terminates regardless of what the classifier reports.
	decision := evalDecision{continueSearch: highQuality < 2}

	// A reference hit satisfies the request by itself; an explicit locator
	// never needs broader evidence.
	if state.ReferenceHit {
		decision.continueSearch = false
	}

	e.logger.Debug("relevance round done",
		"requestID", state.RequestID, "kept", kept, "filtered", filtered,
		"highQuality", highQuality, "continue", decision.continueSearch)
	return decision
}

// classify runs one classification call for a batch of items and applies the
// verdicts in place.
func (e *Engine) classify(ctx context.Context, state *State, items []*core.RetrievedItem) {
	prompt := buildClassificationPrompt(state.Question, items)

	raw, err := e.generator.Generate(ctx, prompt,
		ai.WithTemperature(0), ai.WithJSONMode())
	if err != nil {
		e.logger.Warn("classification call failed, filtering batch", "err", err)
		filterBatch(items, "classification unavailable")
		return
	}

	result, err := parseClassification(raw)
	if err != nil {
		e.logger.Warn("classification response unparseable, filtering batch",
			"err", err, "response", raw)
		filterBatch(items, "classification unparseable")
		return
	}

	byID := make(map[string]*core.RetrievedItem, len(items))
	for _, item := range items {
		byID[item.EntryID] = item
	}

	for _, eval := range result.Evaluations {
		item, ok := byID[eval.ID]
		if !ok {
			// Classifier invented an ID; nothing to apply it to.
			e.logger.Debug("classifier returned unknown entry id", "id", eval.ID)
			continue
		}
		item.Filtered = !eval.Relevant
		item.Tier = core.TierFromString(eval.Tier)
		if item.Tier == core.TierUnset {
			item.Tier = core.TierLow
		}
		item.EvaluationNote = eval.Note
		delete(byID, eval.ID)
	}

	// Items the classifier skipped get the safe default.
	for _, item := range byID {
		item.Filtered = true
		item.Tier = core.TierLow
		item.EvaluationNote = "not evaluated by classifier"
	}

	if result.NeedsMoreSearch && result.NextPhrase != "" {
		state.SuggestedPhrase = result.NextPhrase
	}
}

// filterBatch applies the safe-but-lossy default to a whole batch.
func filterBatch(items []*core.RetrievedItem, note string) {
	for _, item := range items {
		item.Filtered = true
		item.Tier = core.TierLow
		item.EvaluationNote = note
	}
}
