package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mvp-joe/autofix/internal/fixer"
	"github.com/sashabaranov/go-openai"
)

// chatCompleter is the subset of *openai.Client used here.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIService talks to any OpenAI-compatible chat endpoint. The default
// base URL is the Hugging Face router.
type OpenAIService struct {
	client      chatCompleter
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIService creates an OpenAI-compatible service.
func NewOpenAIService(cfg Config) (*OpenAIService, error) {
	cfg.Provider = ProviderOpenAI
	cfg = cfg.withDefaults()
	if err := cfg.check(); err != nil {
		return nil, err
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return newOpenAIService(openai.NewClientWithConfig(clientCfg), cfg), nil
}

func newOpenAIService(client chatCompleter, cfg Config) *OpenAIService {
	return &OpenAIService{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// jsonObjectHint is appended to structured prompts. JSON mode only admits
// a top-level object, so the fix array travels under "fixes".
const jsonObjectHint = "\n\nReturn a JSON object with a single key \"fixes\" whose value is the array."

// Generate implements fixer.Service.
func (o *OpenAIService) Generate(ctx context.Context, prompt fixer.Prompt) (string, error) {
	user := prompt.User
	var format *openai.ChatCompletionResponseFormat
	if prompt.Format == fixer.FormatStructuredJSON {
		user += jsonObjectHint
		format = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature:    o.temperature,
		MaxTokens:      o.maxTokens,
		ResponseFormat: format,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fixer.NewServiceError(fixer.KindService, 0, errors.New("openai returned no choices"))
	}
	return resp.Choices[0].Message.Content, nil
}

// Name implements fixer.Service.
func (o *OpenAIService) Name() string {
	return fmt.Sprintf("openai:%s", o.model)
}

func classifyOpenAIError(err error) error {
	code := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		code = reqErr.HTTPStatusCode
	}

	switch code {
	case http.StatusTooManyRequests:
		return fixer.NewServiceError(fixer.KindRateLimited, code, err)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fixer.NewServiceError(fixer.KindMalformedInput, code, err)
	default:
		return fixer.NewServiceError(fixer.KindService, code, err)
	}
}
