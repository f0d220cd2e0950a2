// Package ai defines the interfaces for the external model collaborators:
// text generation and embedding. The pipeline depends only on these
// interfaces; concrete implementations live in subpackages (openai for
// OpenAI-compatible services, mock for tests).
//
// Generators are assumed to be unreliable: structured output they return may
// be malformed and callers must degrade gracefully rather than crash.
// Embedders are assumed to be deterministic for identical input, which the
// embedding cache relies on.
package ai
