// Package llmtest provides an in-memory llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/jonathan/ats-assistant/internal/llm"
)

// Reply is one scripted model answer.
type Reply struct {
	Text string
	Err  error
}

// MockClient implements llm.Client. Set the Func fields to control behavior;
// every call is recorded.
type MockClient struct {
	GenerateJSONFunc    func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateContentFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)

	mu      sync.Mutex
	prompts []string
	tiers   []llm.ModelTier
	closed  bool
}

// NewSequence returns a client that answers GenerateJSON with replies in
// order, repeating the last one once they run out.
func NewSequence(replies ...Reply) *MockClient {
	m := &MockClient{}
	var mu sync.Mutex
	next := 0
	m.GenerateJSONFunc = func(ctx context.Context, _ string, _ llm.ModelTier) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(replies) == 0 {
			return "", llm.ErrEmptyResponse
		}
		r := replies[next]
		if next < len(replies)-1 {
			next++
		}
		return r.Text, r.Err
	}
	return m
}

// NewStatic returns a client that always answers with text.
func NewStatic(text string) *MockClient {
	return NewSequence(Reply{Text: text})
}

// GenerateJSON implements llm.Client.
func (m *MockClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.record(prompt, tier)
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "", llm.ErrEmptyResponse
}

// GenerateContent implements llm.Client.
func (m *MockClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.record(prompt, tier)
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "", llm.ErrEmptyResponse
}

// GetModel implements llm.Client.
func (m *MockClient) GetModel(tier llm.ModelTier) string {
	return "mock-" + string(tier)
}

// Close implements llm.Client.
func (m *MockClient) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Calls returns the number of generate calls made.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns a copy of every prompt received.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// LastPrompt returns the most recent prompt, or "".
func (m *MockClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// Tiers returns the tier of every call.
func (m *MockClient) Tiers() []llm.ModelTier {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.ModelTier(nil), m.tiers...)
}

// Closed reports whether Close was called.
func (m *MockClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockClient) record(prompt string, tier llm.ModelTier) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.tiers = append(m.tiers, tier)
	m.mu.Unlock()
}

var _ llm.Client = (*MockClient)(nil)
