package llm

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Provider names a reasoning service backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultOpenAIModel = "Qwen/Qwen2.5-Coder-32B-Instruct"

	// DefaultOpenAIBaseURL is the Hugging Face OpenAI-compatible router.
	DefaultOpenAIBaseURL = "https://router.huggingface.co/v1"

	DefaultTemperature = 0.1
	DefaultMaxTokens   = 1024
)

var (
	// ErrMissingAPIKey is returned when no credential is configured.
	ErrMissingAPIKey = errors.New("API key is not set")

	// ErrUnknownProvider is returned for an unrecognized provider name.
	ErrUnknownProvider = errors.New("unknown reasoning service provider")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config describes how to reach a reasoning service.
type Config struct {
	Provider    Provider `validate:"required,oneof=gemini openai"`
	Model       string
	BaseURL     string `validate:"omitempty,url"`
	APIKey      string
	Temperature float32 `validate:"gte=0,lte=2"`
	MaxTokens   int     `validate:"gte=0"`
}

// withDefaults fills unset fields for the provider.
func (c Config) withDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderGemini
	}
	if c.Model == "" {
		switch c.Provider {
		case ProviderOpenAI:
			c.Model = DefaultOpenAIModel
		default:
			c.Model = DefaultGeminiModel
		}
	}
	if c.Provider == ProviderOpenAI && c.BaseURL == "" {
		c.BaseURL = DefaultOpenAIBaseURL
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}

func (c Config) check() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "Provider" {
					return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
				}
			}
		}
		return fmt.Errorf("invalid service config: %w", err)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%s: %w", c.Provider, ErrMissingAPIKey)
	}
	return nil
}
