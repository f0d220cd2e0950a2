package embedcache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ganarajpr/rgfe-sub000/ai"
	"github.com/ganarajpr/rgfe-sub000/core"
)

// CachedEmbedder is a read-through cache around an ai.Embedder. Cache keys
// are content hashes namespaced by the model identifier.
type CachedEmbedder struct {
	inner       ai.Embedder
	store       *Store
	namespace   string
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

// Option configures a CachedEmbedder.
type Option func(*CachedEmbedder)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *CachedEmbedder) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// WithRetry configures retry behavior for embedding service calls on cache
// misses. Defaults are 3 attempts with a 500ms base delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(c *CachedEmbedder) {
		c.maxAttempts = maxAttempts
		c.retryDelay = baseDelay
	}
}

// NewCachedEmbedder wraps inner with the persistent cache in store.
// The namespace should identify the embedding model so that vectors from
// different models never mix.
func NewCachedEmbedder(inner ai.Embedder, store *Store, namespace string, opts ...Option) (*CachedEmbedder, error) {
	if inner == nil {
		return nil, ErrEmbedderRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	c := &CachedEmbedder{
		inner:       inner,
		store:       store,
		namespace:   namespace,
		maxAttempts: 3,
		retryDelay:  500 * time.Millisecond,
		logger:      slog.Default().With("component", "embedcache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ ai.Embedder = (*CachedEmbedder)(nil)

func (c *CachedEmbedder) key(text string) core.ID {
	return core.IDFromContent(c.namespace + "\x00" + text)
}

// lookup returns the cached vector for text, or nil on a miss. Cache read
// failures are logged and treated as misses.
func (c *CachedEmbedder) lookup(text string) []float32 {
	record, found, err := c.store.Get(c.key(text))
	if err != nil {
		c.logger.Warn("cache read failed", "err", err)
		return nil
	}
	if !found {
		return nil
	}
	if record.Text != text {
		// Hash collision. Treat as a miss rather than serve a wrong vector.
		c.logger.Warn("cache key collision", "cached", record.Text, "requested", text)
		return nil
	}
	return record.Vector
}

// remember stores a freshly computed vector. Write failures are logged and
// otherwise ignored: the cache is derived state.
func (c *CachedEmbedder) remember(text string, vector []float32) {
	if err := c.store.Put(c.key(text), cacheRecord{Text: text, Vector: vector}); err != nil {
		c.logger.Warn("cache write failed", "err", err)
	}
}

// EmbedText returns the cached vector for text or fetches it from the inner
// embedder, retrying transient failures with exponential backoff.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if vector := c.lookup(text); vector != nil {
		c.logger.Debug("embedding cache hit", "length", len(text))
		return vector, nil
	}

	var vector []float32
	err := retryWithBackoff(ctx, func() error {
		var embedErr error
		vector, embedErr = c.inner.EmbedText(ctx, text)
		return embedErr
	}, c.maxAttempts, c.retryDelay)
	if err != nil {
		return nil, err
	}

	c.remember(text, vector)
	return vector, nil
}

// EmbedTexts resolves each text from the cache and batches only the misses
// through the inner embedder.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	missing := make([]int, 0, len(texts))
	for i, text := range texts {
		if vector := c.lookup(text); vector != nil {
			vectors[i] = vector
			continue
		}
		missing = append(missing, i)
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	missingTexts := make([]string, len(missing))
	for i, idx := range missing {
		missingTexts[i] = texts[idx]
	}

	var fetched [][]float32
	err := retryWithBackoff(ctx, func() error {
		var embedErr error
		fetched, embedErr = c.inner.EmbedTexts(ctx, missingTexts)
		return embedErr
	}, c.maxAttempts, c.retryDelay)
	if err != nil {
		return nil, err
	}
	if len(fetched) < len(missing) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrShortBatch, len(fetched), len(missing))
	}

	for i, idx := range missing {
		vectors[idx] = fetched[i]
		c.remember(texts[idx], fetched[i])
	}

	return vectors, nil
}
