package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mvp-joe/autofix/internal/fixer"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiService talks to Google's Gemini API.
type GeminiService struct {
	models      contentGenerator
	model       string
	temperature float32
	maxTokens   int32
}

// NewGeminiService creates a Gemini-backed service.
func NewGeminiService(ctx context.Context, cfg Config) (*GeminiService, error) {
	cfg.Provider = ProviderGemini
	cfg = cfg.withDefaults()
	if err := cfg.check(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return newGeminiService(client.Models, cfg), nil
}

func newGeminiService(models contentGenerator, cfg Config) *GeminiService {
	return &GeminiService{
		models:      models,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   int32(cfg.MaxTokens),
	}
}

// Generate implements fixer.Service.
func (g *GeminiService) Generate(ctx context.Context, prompt fixer.Prompt) (string, error) {
	temperature := g.temperature
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		Temperature:       &temperature,
		MaxOutputTokens:   g.maxTokens,
	}
	if prompt.Format == fixer.FormatStructuredJSON {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt.User), config)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text := resp.Text()
	if text == "" {
		return "", fixer.NewServiceError(fixer.KindService, 0, errors.New("gemini returned no text"))
	}
	return text, nil
}

// Name implements fixer.Service.
func (g *GeminiService) Name() string {
	return fmt.Sprintf("gemini:%s", g.model)
}

// classifyGeminiError maps a GenAI failure onto the fixer error kinds using
// the structured status, never the message text.
func classifyGeminiError(err error) error {
	code, status, ok := geminiStatus(err)
	if !ok {
		return fixer.NewServiceError(fixer.KindService, 0, err)
	}

	switch {
	case code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED":
		return fixer.NewServiceError(fixer.KindRateLimited, code, err)
	case code == http.StatusBadRequest || status == "INVALID_ARGUMENT":
		return fixer.NewServiceError(fixer.KindMalformedInput, code, err)
	default:
		return fixer.NewServiceError(fixer.KindService, code, err)
	}
}

func geminiStatus(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Status, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Status, true
	}
	return 0, "", false
}
