package embedcache

import "errors"

var (
	// ErrEmbedderRequired is returned when an inner embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrStoreRequired is returned when a cache store is not provided.
	ErrStoreRequired = errors.New("cache store required")

	// ErrInvalidMaxAttempts is returned when retry is configured with a
	// non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")

	// ErrShortBatch is returned when the inner embedder produces fewer
	// vectors than texts requested.
	ErrShortBatch = errors.New("embedder returned fewer vectors than requested")
)
