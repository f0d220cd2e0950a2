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


package mock

import "github.com/ganarajpr/rgfe-sub000/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock generator and embedder instances.
type MockProvider struct {
	generator *MockGenerator
	embedder  *MockEmbedder
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns the concrete type so tests can reach the underlying mocks for
// assertions; it satisfies ai.Provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		generator: NewMockGenerator(),
		embedder:  NewMockEmbedder(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(generator *MockGenerator, embedder *MockEmbedder) *MockProvider {
	return &MockProvider{
		generator: generator,
		embedder:  embedder,
	}
}

// Generator returns the mock generator.
func (p *MockProvider) Generator() ai.Generator {
	return p.generator
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// MockGenerator returns the concrete mock generator for test assertions.
func (p *MockProvider) MockGenerator() *MockGenerator {
	return p.generator
}

// MockEmbedder returns the concrete mock embedder for test assertions.
func (p *MockProvider) MockEmbedder() *MockEmbedder {
	return p.embedder
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}
