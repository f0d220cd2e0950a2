// Package pipeline implements the iterative retrieval-and-refinement engine
// that answers natural-language questions against the corpus.
//
// One request flows through four stages driven by a bounded state machine:
//
//	retrieval -> relevance -> (loop) -> translation -> synthesis
//
// The retrieval stage looks for an explicit verse reference first and falls
// back to LLM-generated search phrases, deduplicated against prior attempts
// by embedding similarity. The relevance stage classifies each hit into an
// importance tier or filters it, and decides whether another retrieval round
// is warranted. The loop runs at most Config.MaxIterations extra rounds no
// matter what the classifier reports. Translation and synthesis then run
// exactly once and the answer is streamed as text fragments.
//
// Model collaborators are treated as unreliable: malformed classifier output
// degrades to safe defaults, failed translations become placeholders, and a
// request that retrieves nothing yields a fixed insufficient-evidence answer
// rather than an error.
package pipeline
