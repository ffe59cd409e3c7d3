// Package llmprovider implements the closed-prompt LLM interface (C3):
// every phase sends one prompt and expects JSON back. Providers never see
// tools; they are pure text-completion backends.
package llmprovider

import "context"

// Provider completes a single closed prompt. Implementations are
// stateless; callers choose temperature and token budget per phase.
type Provider interface {
	Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
	Name() string
	Model() string
}
