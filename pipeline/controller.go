package pipeline

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/ganarajpr/rgfe-sub000/ai"
	"github.com/ganarajpr/rgfe-sub000/core"
	"github.com/ganarajpr/rgfe-sub000/index"
	"github.com/panjf2000/ants/v2"
)

// Engine drives the retrieval/relevance loop and the translation and
// synthesis stages for each request. It is safe for concurrent use: all
// per-request state lives in a State owned by the request.
type Engine struct {
	index           *index.Index
	generator       ai.Generator
	embedder        ai.Embedder
	config          Config
	monitor         Monitor
	translationPool *ants.Pool
	logger          *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithConfig sets the retrieval configuration.
// Default is DefaultConfig().
func WithConfig(config Config) Option {
	return func(e *Engine) error {
		if err := config.Validate(); err != nil {
			return err
		}
		e.config = config
		return nil
	}
}

// WithEmbedder overrides the provider's embedder, typically with a cached
// wrapper around it.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(e *Engine) error {
		if embedder != nil {
			e.embedder = embedder
		}
		return nil
	}
}

// WithMonitor sets the progress sink. Default is a no-op monitor.
func WithMonitor(monitor Monitor) Option {
	return func(e *Engine) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		e.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithTranslationPoolSize sets the worker pool size for concurrent
// translation calls. Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithTranslationPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		if e.translationPool != nil {
			e.translationPool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		e.translationPool = pool
		return nil
	}
}

// NewEngine creates a pipeline engine over a built index and an AI provider.
func NewEngine(idx *index.Index, provider ai.Provider, opts ...Option) (*Engine, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		index:           idx,
		generator:       provider.Generator(),
		embedder:        provider.Embedder(),
		config:          DefaultConfig(),
		monitor:         &noopMonitor{},
		translationPool: pool,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			e.Release()
			return nil, err
		}
	}

	return e, nil
}

// Release releases the translation worker pool.
// The engine should not be used after calling Release.
func (e *Engine) Release() {
	if e.translationPool != nil {
		e.translationPool.Release()
	}
}

// Ask answers a question, streaming the result through the returned Answer.
// The retrieval/relevance loop runs synchronously; synthesis streams from a
// goroutine. Cancel ctx to stop the pipeline at the next stage boundary or
// streamed fragment; the stream then ends cleanly with whatever fragments
// were already delivered.
func (e *Engine) Ask(ctx context.Context, question string) (*Answer, error) {
	state := NewState(question)
	e.monitor.RequestStarted(state.RequestID, question)
	e.logger.Info("request started", "requestID", state.RequestID)

	for {
		e.monitor.IterationStarted(state.RequestID, state.Iteration)

		if err := e.retrieve(ctx, state); err != nil {
			if ctx.Err() != nil {
				return e.cancelledAnswer(state), nil
			}
			e.monitor.RequestFinished(state.RequestID)
			return nil, err
		}

		decision := e.evaluate(ctx, state)
		if ctx.Err() != nil {
			return e.cancelledAnswer(state), nil
		}

		if !decision.continueSearch || state.Iteration >= e.config.MaxIterations {
			break
		}
		state.Iteration++
	}

	selected := state.Selected()
	e.translate(ctx, state, selected)
	if ctx.Err() != nil {
		return e.cancelledAnswer(state), nil
	}

	// Order before the Answer is handed out; the synthesis goroutine must
	// not touch a slice the caller can read through Items.
	orderByTier(selected)
	answer := newAnswer(state.RequestID, selected)
	go e.synthesize(ctx, state, selected, answer)
	return answer, nil
}

// cancelledAnswer returns an already-closed empty answer for a request
// cancelled before synthesis began. No error is surfaced: cancellation
// yields whatever had streamed so far, which at this point is nothing.
func (e *Engine) cancelledAnswer(state *State) *Answer {
	e.logger.Info("request cancelled", "requestID", state.RequestID, "iteration", state.Iteration)
	answer := newAnswer(state.RequestID, nil)
	answer.finish()
	e.monitor.RequestFinished(state.RequestID)
	return answer
}

// Answer is the streamed result of one request: a lazy, finite, one-shot
// sequence of text fragments with an explicit end-of-stream (channel close).
type Answer struct {
	requestID string
	items     []*core.RetrievedItem
	fragments chan string
}

func newAnswer(requestID string, items []*core.RetrievedItem) *Answer {
	return &Answer{
		requestID: requestID,
		items:     items,
		fragments: make(chan string),
	}
}

// RequestID identifies the request this answer belongs to.
func (a *Answer) RequestID() string {
	return a.requestID
}

// Items returns the selected items cited by the answer, ordered by
// importance tier.
func (a *Answer) Items() []*core.RetrievedItem {
	return a.items
}

// Fragments returns the stream of answer fragments. The channel is closed
// when the answer is complete or the request was cancelled.
func (a *Answer) Fragments() <-chan string {
	return a.fragments
}

// Text drains the stream and returns the concatenated answer.
func (a *Answer) Text() string {
	var text string
	for fragment := range a.fragments {
		text += fragment
	}
	return text
}

// emit delivers one fragment, honoring cancellation while the consumer is
// slow. Reports whether delivery happened.
func (a *Answer) emit(ctx context.Context, fragment string) bool {
	select {
	case a.fragments <- fragment:
		return true
	case <-ctx.Done():
		return false
	}
}

func (a *Answer) finish() {
	close(a.fragments)
}
