// Package index provides the in-memory search index over corpus entries.
//
// The index is built once at startup from the decoded corpus and is never
// mutated afterwards, which makes it safe for unlimited concurrent readers.
// It supports four query modes: cosine-similarity vector search, tokenized
// text search with bounded edit-distance tolerance, reference-prefix lookup,
// and a hybrid mode fusing normalized vector and text scores.
package index
