package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ganarajpr/rgfe-sub000/core"
)

// insufficientEvidenceAnswer is the fixed response when nothing usable was
// retrieved. It is a normal outcome, never an error.
const insufficientEvidenceAnswer = "I could not find verses that answer this question. " +
	"Try rephrasing it, or cite a specific verse reference such as 10.129.1."

// synthesize streams the final answer into the Answer. It runs in its own
// goroutine; the Answer's fragment channel is closed when the stream ends,
// is cancelled, or fails.
func (e *Engine) synthesize(ctx context.Context, state *State, items []*core.RetrievedItem, answer *Answer) {
	defer func() {
		answer.finish()
		e.monitor.RequestFinished(state.RequestID)
	}()

	e.monitor.SynthesisStarted(state.RequestID, len(items))

	if len(items) == 0 {
		answer.emit(ctx, insufficientEvidenceAnswer)
		return
	}

	streamed := false
	err := e.generator.GenerateStream(ctx, buildSynthesisPrompt(state.Question, items),
		func(ctx context.Context, chunk []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(chunk) == 0 {
				return nil
			}
			if !answer.emit(ctx, string(chunk)) {
				return context.Canceled
			}
			streamed = true
			return nil
		})
	if err == nil {
		return
	}
	if ctx.Err() != nil {
		// Cancellation surfaces to the caller as a cleanly ended stream with
		// whatever fragments were already delivered.
		return
	}

	e.logger.Warn("synthesis stream failed", "requestID", state.RequestID, "err", err)
	if !streamed {
		// Nothing was delivered yet: fall back to a plain rendering of the
		// citations so the caller still gets the evidence.
		answer.emit(ctx, renderCitations(items))
	}
}

// orderByTier sorts items high -> medium -> low, keeping retrieval order
// within a tier.
func orderByTier(items []*core.RetrievedItem) {
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Tier > items[b].Tier
	})
}

// renderCitations renders the selected items verbatim, reference first, as
// the degraded no-LLM answer.
func renderCitations(items []*core.RetrievedItem) string {
	var sb strings.Builder
	sb.WriteString("The following verses are relevant:\n\n")
	for _, item := range items {
		fmt.Fprintf(&sb, "%s: %s\n%s\n\n", item.Entry.Reference, item.Entry.Text, item.Translation)
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}
