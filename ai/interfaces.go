package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// StreamFunc receives one fragment of a streamed generation. Returning an
// error aborts the stream.
type StreamFunc func(ctx context.Context, chunk []byte) error

// Generator produces text completions. It backs every LLM-driven step of the
// pipeline: phrase generation, relevance classification, translation and
// answer synthesis.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate returns the full completion for a prompt.
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)

	// GenerateStream delivers the completion incrementally through fn and
	// returns once the stream is complete or aborted.
	GenerateStream(ctx context.Context, prompt string, fn StreamFunc, opts ...GenerateOption) error
}

// Provider aggregates the model services for convenient initialization and
// lifecycle management. A provider creates and manages Generator and Embedder
// instances, ensuring they share configuration and resources appropriately.
type Provider interface {
	// Generator returns the text generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
