package fixer

import "context"

// ResponseFormat selects the reply shape requested from the service.
type ResponseFormat string

const (
	// FormatStructuredJSON asks for a JSON array of fix objects.
	FormatStructuredJSON ResponseFormat = "structured_json"

	// FormatFreeText asks for prose with an embedded fenced code block.
	FormatFreeText ResponseFormat = "free_text"
)

// Prompt is one request to the reasoning service: a system message framing
// the persona and a user message carrying the diagnostics or source.
type Prompt struct {
	System string
	User   string
	Format ResponseFormat
}

// Service is a reasoning-service client. Implementations are constructed
// once per process and must classify failures as *ServiceError so the
// orchestrator can decide on retries without inspecting error text.
type Service interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)

	// Name identifies the backend and model for logs and cache keys.
	Name() string
}
