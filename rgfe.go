// Copyright 2025 the rgfe authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package rgfe

import (
	"fmt"
	"log/slog"

	"github.com/ganarajpr/rgfe-sub000/ai"
	"github.com/ganarajpr/rgfe-sub000/ai/openai"
	"github.com/ganarajpr/rgfe-sub000/corpus"
	"github.com/ganarajpr/rgfe-sub000/embedcache"
	"github.com/ganarajpr/rgfe-sub000/index"
	"github.com/ganarajpr/rgfe-sub000/pipeline"
)

// Assistant bundles the loaded corpus index, the model provider and the
// embedding cache behind a single lifecycle. Open it once at startup; it is
// safe for concurrent questions.
type Assistant struct {
	index          *index.Index
	header         corpus.Header
	provider       ai.Provider
	cache          *embedcache.Store
	embeddingModel string
	logger         *slog.Logger
}

// AssistantOption configures an Assistant.
type AssistantOption func(*assistantOptions)

type assistantOptions struct {
	aiConfig  *ai.Config
	cachePath string
	logger    *slog.Logger
}

// WithAIConfig sets the model service configuration.
func WithAIConfig(cfg *ai.Config) AssistantOption {
	return func(o *assistantOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithEmbeddingCache enables the persistent embedding cache at the given
// directory. Without it every phrase embedding is recomputed.
func WithEmbeddingCache(path string) AssistantOption {
	return func(o *assistantOptions) {
		o.cachePath = path
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) AssistantOption {
	return func(o *assistantOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open loads the binary corpus index from filePath, builds the in-memory
// search structures and connects the model provider. A corrupt index file is
// fatal here, before any question is accepted.
func Open(filePath string, opts ...AssistantOption) (*Assistant, error) {
	options := &assistantOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	entries, header, err := corpus.DecodeFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading corpus %s: %w", filePath, err)
	}

	idx, err := index.Build(entries, index.WithLogger(options.logger))
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}
	options.logger.Info("corpus loaded",
		"file", filePath, "entries", idx.Len(), "dimension", idx.Dimension())

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		return nil, err
	}

	var cache *embedcache.Store
	if options.cachePath != "" {
		cache, err = embedcache.OpenStore(options.cachePath, false)
		if err != nil {
			provider.Close()
			return nil, fmt.Errorf("opening embedding cache: %w", err)
		}
	}

	return &Assistant{
		index:          idx,
		header:         header,
		provider:       provider,
		cache:          cache,
		embeddingModel: options.aiConfig.EmbeddingModel,
		logger:         options.logger,
	}, nil
}

// Close releases the provider and the embedding cache.
func (a *Assistant) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("error closing embedding cache", "err", err)
			return err
		}
	}
	return nil
}

// Index exposes the built search index for direct queries.
func (a *Assistant) Index() *index.Index {
	return a.index
}

// Header returns the corpus file header.
func (a *Assistant) Header() corpus.Header {
	return a.header
}

// NewEngine creates a question-answering engine over the loaded corpus. When
// the embedding cache is enabled the engine's embedder reads through it,
// keyed by the embedding model name so a model switch never serves stale
// vectors.
func (a *Assistant) NewEngine(opts ...pipeline.Option) (*pipeline.Engine, error) {
	if a.cache != nil {
		cached, err := embedcache.NewCachedEmbedder(
			a.provider.Embedder(), a.cache, a.embeddingNamespace(),
			embedcache.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		opts = append([]pipeline.Option{pipeline.WithEmbedder(cached)}, opts...)
	}
	opts = append([]pipeline.Option{pipeline.WithLogger(a.logger)}, opts...)
	return pipeline.NewEngine(a.index, a.provider, opts...)
}

func (a *Assistant) embeddingNamespace() string {
	return "model:" + a.embeddingModel
}
