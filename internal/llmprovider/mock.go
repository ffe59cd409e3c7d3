package llmprovider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider returns scripted responses in order, for deterministic
// tests of the hypothesis/root-cause/severity phases without a live
// model backend. A provider constructed with no responses errors on
// the first call so a misconfigured test fails loudly.
type MockProvider struct {
	mu        sync.Mutex
	responses []string
	calls     []string
	errOn     map[int]error
}

func NewMockProvider(responses ...string) *MockProvider {
	return &MockProvider{responses: responses, errOn: map[int]error{}}
}

// FailAt makes the call at the given zero-based index return err instead
// of consuming a scripted response.
func (p *MockProvider) FailAt(index int, err error) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errOn[index] = err
	return p
}

func (p *MockProvider) Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := len(p.calls)
	p.calls = append(p.calls, prompt)

	if err, ok := p.errOn[idx]; ok {
		return "", err
	}
	if idx >= len(p.responses) {
		return "", fmt.Errorf("mock provider: no scripted response for call %d", idx)
	}
	return p.responses[idx], nil
}

// Calls returns the prompts passed to Complete, in order.
func (p *MockProvider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

func (p *MockProvider) Name() string  { return "mock" }
func (p *MockProvider) Model() string { return "mock-model" }
