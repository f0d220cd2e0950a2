package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/ganarajpr/rgfe-sub000/ai"
)

// MockGenerator is a test double for ai.Generator.
// It replays a queue of canned responses, or delegates to injected functions.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	GenerateFunc func(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error)

	// GenerateStreamFunc is called by GenerateStream if set. If nil, the
	// stream default splits the Generate result into word-sized chunks.
	GenerateStreamFunc func(ctx context.Context, prompt string, fn ai.StreamFunc, opts ...ai.GenerateOption) error

	mu        sync.Mutex
	responses []string
	prompts   []string
	callCount int
}

// NewMockGenerator creates a mock generator. With no queued responses it
// echoes a fixed placeholder completion.
func NewMockGenerator(responses ...string) *MockGenerator {
	return &MockGenerator{responses: responses}
}

// QueueResponse appends a canned response to the replay queue.
func (m *MockGenerator) QueueResponse(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, response)
}

// Generate returns the next queued response, or a fixed placeholder when the
// queue is empty.
func (m *MockGenerator) Generate(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	if m.GenerateFunc != nil {
		m.mu.Lock()
		m.callCount++
		m.prompts = append(m.prompts, prompt)
		m.mu.Unlock()
		return m.GenerateFunc(ctx, prompt, opts...)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.prompts = append(m.prompts, prompt)

	if len(m.responses) == 0 {
		return "mock response", nil
	}
	response := m.responses[0]
	m.responses = m.responses[1:]
	return response, nil
}

// GenerateStream streams the Generate result word by word.
func (m *MockGenerator) GenerateStream(ctx context.Context, prompt string, fn ai.StreamFunc, opts ...ai.GenerateOption) error {
	if m.GenerateStreamFunc != nil {
		return m.GenerateStreamFunc(ctx, prompt, fn, opts...)
	}

	response, err := m.Generate(ctx, prompt, opts...)
	if err != nil {
		return err
	}
	for _, word := range strings.SplitAfter(response, " ") {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, []byte(word)); err != nil {
			return err
		}
	}
	return nil
}

// CallCount returns the number of Generate calls, including streamed ones.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Prompts returns every prompt seen so far, in order.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Reset clears queued responses, recorded prompts and injected behavior.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = nil
	m.prompts = nil
	m.callCount = 0
	m.GenerateFunc = nil
	m.GenerateStreamFunc = nil
}
