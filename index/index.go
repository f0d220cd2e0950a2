package index

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/ganarajpr/rgfe-sub000/core"
)

// Index is an immutable search index over corpus entries. Build it once at
// startup; all query methods are then safe for concurrent use.
type Index struct {
	entries   []core.CorpusEntry
	byID      map[string]*core.CorpusEntry
	tokens    [][]string // tokenized text+source+reference per entry
	dimension int
	built     bool
	logger    *slog.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Index) {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
	}
}

// Build creates an index from decoded corpus entries. Every entry is
// validated and the embedding dimension must be consistent across the corpus;
// entries without embeddings are allowed but excluded from vector search.
func Build(entries []core.CorpusEntry, opts ...Option) (*Index, error) {
	idx := &Index{
		entries: entries,
		byID:    make(map[string]*core.CorpusEntry, len(entries)),
		tokens:  make([][]string, len(entries)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(idx)
	}

	for i := range entries {
		e := &entries[i]
		if err := core.ValidateEntry(e); err != nil {
			return nil, err
		}
		if len(e.Embedding) > 0 {
			if idx.dimension == 0 {
				idx.dimension = len(e.Embedding)
			} else if len(e.Embedding) != idx.dimension {
				return nil, fmt.Errorf("%w: entry %s has dimension %d, corpus has %d",
					ErrDimensionMismatch, e.ID, len(e.Embedding), idx.dimension)
			}
		}
		idx.byID[e.ID] = e
		idx.tokens[i] = tokenize(e.Text + " " + e.SourceLabel + " " + e.Reference)
	}

	idx.built = true
	idx.logger.Info("index built", "entries", len(entries), "dimension", idx.dimension)
	return idx, nil
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Dimension returns the embedding dimension fixed by the corpus, or zero for
// a corpus without vectors.
func (idx *Index) Dimension() int {
	return idx.dimension
}

// Entry returns the corpus entry with the given ID.
func (idx *Index) Entry(id string) (*core.CorpusEntry, bool) {
	if idx == nil || !idx.built {
		return nil, false
	}
	e, ok := idx.byID[id]
	return e, ok
}

func (idx *Index) ready() error {
	if idx == nil || !idx.built {
		return ErrNotReady
	}
	return nil
}

// VectorSearch ranks entries by cosine similarity to the query embedding,
// drops results scoring below minScore, and returns the top limit items
// sorted descending by score.
func (idx *Index) VectorSearch(embedding []float32, limit int, minScore float32) ([]*core.RetrievedItem, error) {
	if err := idx.ready(); err != nil {
		return nil, err
	}
	if idx.dimension != 0 && len(embedding) != idx.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, corpus has %d",
			ErrDimensionMismatch, len(embedding), idx.dimension)
	}

	items := make([]*core.RetrievedItem, 0, limit)
	for i := range idx.entries {
		e := &idx.entries[i]
		if len(e.Embedding) == 0 {
			continue
		}
		score := core.CosineSimilarity(embedding, e.Embedding)
		if score < minScore {
			continue
		}
		items = append(items, &core.RetrievedItem{EntryID: e.ID, Entry: e, Score: score})
	}

	sortByScore(items)
	return truncate(items, limit), nil
}

// TextSearch scores entries by the fraction of query tokens found in the
// entry's text, source label or reference, with one edit of tolerance for
// longer tokens. Returns the top limit items sorted descending by score.
func (idx *Index) TextSearch(query string, limit int) ([]*core.RetrievedItem, error) {
	if err := idx.ready(); err != nil {
		return nil, err
	}

	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	items := make([]*core.RetrievedItem, 0, limit)
	for i := range idx.entries {
		matched := 0
		for _, qt := range queryTokens {
			for _, dt := range idx.tokens[i] {
				if tokensMatch(qt, dt) {
					matched++
					break
				}
			}
		}
		if matched == 0 {
			continue
		}
		e := &idx.entries[i]
		items = append(items, &core.RetrievedItem{
			EntryID: e.ID,
			Entry:   e,
			Score:   float32(matched) / float32(len(queryTokens)),
		})
	}

	sortByScore(items)
	return truncate(items, limit), nil
}

// ReferenceSearch parses a dotted locator and returns every entry whose
// reference falls under it, sorted by entry ID for stable ordering. Results
// are treated as maximally relevant: an explicit reference is an unambiguous
// request, so no score threshold applies.
func (idx *Index) ReferenceSearch(reference string, limit int) ([]*core.RetrievedItem, error) {
	if err := idx.ready(); err != nil {
		return nil, err
	}

	ref, err := core.ParseReference(reference)
	if err != nil {
		return nil, err
	}

	var items []*core.RetrievedItem
	for i := range idx.entries {
		e := &idx.entries[i]
		if !ref.Matches(e.Reference) {
			continue
		}
		items = append(items, &core.RetrievedItem{
			EntryID:       e.ID,
			Entry:         e,
			Score:         1,
			FromReference: true,
		})
	}

	sort.Slice(items, func(a, b int) bool { return items[a].EntryID < items[b].EntryID })
	return truncate(items, limit), nil
}

// HybridSearch fuses vector and text search. Both run independently with a
// candidate pool of 3x limit, each result set is min-max normalized to [0,1]
// on its own, and scores are merged by entry ID with the given weights. The
// defaults of 0.7 vector / 0.3 text let semantic similarity dominate: the
// corpus is paraphrase-heavy and literal keyword overlap is rare. A branch
// with zero weight is skipped entirely.
func (idx *Index) HybridSearch(query string, embedding []float32, limit int, vectorWeight, textWeight float32) ([]*core.RetrievedItem, error) {
	if err := idx.ready(); err != nil {
		return nil, err
	}

	pool := 3 * limit
	merged := make(map[string]*core.RetrievedItem)

	if vectorWeight > 0 {
		vecItems, err := idx.VectorSearch(embedding, pool, 0)
		if err != nil {
			return nil, err
		}
		normalizeScores(vecItems)
		for _, item := range vecItems {
			merged[item.EntryID] = &core.RetrievedItem{
				EntryID: item.EntryID,
				Entry:   item.Entry,
				Score:   vectorWeight * item.Score,
			}
		}
	}

	if textWeight > 0 {
		textItems, err := idx.TextSearch(query, pool)
		if err != nil {
			return nil, err
		}
		normalizeScores(textItems)
		for _, item := range textItems {
			if existing, ok := merged[item.EntryID]; ok {
				existing.Score += textWeight * item.Score
				continue
			}
			merged[item.EntryID] = &core.RetrievedItem{
				EntryID: item.EntryID,
				Entry:   item.Entry,
				Score:   textWeight * item.Score,
			}
		}
	}

	items := make([]*core.RetrievedItem, 0, len(merged))
	for _, item := range merged {
		items = append(items, item)
	}
	sortByScore(items)
	return truncate(items, limit), nil
}

// normalizeScores min-max normalizes item scores to [0,1] in place.
// A set with a single distinct score maps to 1.
func normalizeScores(items []*core.RetrievedItem) {
	if len(items) == 0 {
		return
	}

	minScore, maxScore := items[0].Score, items[0].Score
	for _, item := range items[1:] {
		if item.Score < minScore {
			minScore = item.Score
		}
		if item.Score > maxScore {
			maxScore = item.Score
		}
	}

	spread := maxScore - minScore
	for _, item := range items {
		if spread == 0 {
			item.Score = 1
		} else {
			item.Score = (item.Score - minScore) / spread
		}
	}
}

// sortByScore sorts descending by score, breaking ties by entry ID so that
// equal-scored results have a stable order across runs.
func sortByScore(items []*core.RetrievedItem) {
	sort.Slice(items, func(a, b int) bool {
		if items[a].Score != items[b].Score {
			return items[a].Score > items[b].Score
		}
		return items[a].EntryID < items[b].EntryID
	})
}

func truncate(items []*core.RetrievedItem, limit int) []*core.RetrievedItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
