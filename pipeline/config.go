package pipeline

import "errors"

// Config holds the retrieval tuning parameters for the engine.
type Config struct {
	// Limit is the maximum number of items returned per search. Default 5.
	Limit int

	// MinScore is the cosine similarity floor for vector search. Default 0.
	MinScore float32

	// VectorWeight and TextWeight are the hybrid fusion weights.
	// Defaults 0.7 / 0.3: the corpus is paraphrase-heavy, so semantic
	// similarity dominates literal keyword overlap.
	VectorWeight float32
	TextWeight   float32

	// MaxIterations bounds extra retrieval rounds per request. Default 5.
	MaxIterations int

	// DedupThreshold is the cosine similarity above which a new search
	// phrase counts as a repeat of a prior attempt. Default 0.85.
	DedupThreshold float32
}

// DefaultConfig returns the standard retrieval configuration.
func DefaultConfig() Config {
	return Config{
		Limit:          5,
		MinScore:       0.0,
		VectorWeight:   0.7,
		TextWeight:     0.3,
		MaxIterations:  5,
		DedupThreshold: 0.85,
	}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.Limit <= 0 {
		return errors.New("pipeline config: Limit must be positive")
	}
	if c.VectorWeight < 0 || c.TextWeight < 0 {
		return errors.New("pipeline config: fusion weights cannot be negative")
	}
	if c.VectorWeight == 0 && c.TextWeight == 0 {
		return errors.New("pipeline config: at least one fusion weight must be positive")
	}
	if c.MaxIterations <= 0 {
		return errors.New("pipeline config: MaxIterations must be positive")
	}
	if c.DedupThreshold <= 0 || c.DedupThreshold > 1 {
		return errors.New("pipeline config: DedupThreshold must be in (0, 1]")
	}
	return nil
}
