// Package llm adapts hosted reasoning services to fixer.Service.
//
// Adapters classify provider failures at the call boundary from structured
// status codes, so the orchestrator never inspects error text.
package llm

import (
	"context"
	"fmt"

	"github.com/mvp-joe/autofix/internal/fixer"
)

// NewService constructs the service named by cfg.Provider.
func NewService(ctx context.Context, cfg Config) (fixer.Service, error) {
	switch cfg.Provider {
	case ProviderGemini, "":
		return NewGeminiService(ctx, cfg)
	case ProviderOpenAI:
		return NewOpenAIService(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
