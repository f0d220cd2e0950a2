package pipeline

import (
	"context"
	"sync"

	"github.com/ganarajpr/rgfe-sub000/ai"
	"github.com/ganarajpr/rgfe-sub000/core"
)

// translationPlaceholder is substituted when a translation call fails, so
// synthesis can still cite the reference without fabricating content.
const translationPlaceholder = "[translation unavailable]"

// translate fills in a translation for every selected item that lacks one,
// one generation call per item, run concurrently on the worker pool. No item
// is ever dropped here: relevance and quota decisions were already made.
func (e *Engine) translate(ctx context.Context, state *State, items []*core.RetrievedItem) {
	var wg sync.WaitGroup
	translated := 0
	var mu sync.Mutex

	for _, item := range items {
		if item.Translation != "" {
			continue
		}

		wg.Add(1)
		work := func(item *core.RetrievedItem) func() {
			return func() {
				defer wg.Done()
				e.translateItem(ctx, item)
				mu.Lock()
				translated++
				mu.Unlock()
			}
		}(item)

		if err := e.translationPool.Submit(work); err != nil {
			// Pool unavailable (released or overloaded): run inline.
			work()
		}
	}
	wg.Wait()

	e.monitor.TranslationFinished(state.RequestID, translated)
}

// translateItem issues one translation call, substituting the placeholder on
// any failure.
func (e *Engine) translateItem(ctx context.Context, item *core.RetrievedItem) {
	if err := ctx.Err(); err != nil {
		item.Translation = translationPlaceholder
		return
	}

	raw, err := e.generator.Generate(ctx, buildTranslationPrompt(item), ai.WithTemperature(0))
	if err != nil || len(raw) == 0 {
		e.logger.Warn("translation failed, using placeholder",
			"entryID", item.EntryID, "err", err)
		item.Translation = translationPlaceholder
		return
	}
	item.Translation = raw
}
