// Package config loads autofix configuration.
//
// Sources, highest priority first:
//  1. Environment variables (AUTOFIX_*, "." in keys becomes "_")
//  2. Project config (.autofix/config.yml in the working directory)
//  3. User config (~/.autofix/config.yml)
//  4. Built-in defaults
//
// Provider credentials are also read from GEMINI_API_KEY or HF_TOKEN when
// service.api_key is not set.
package config

import (
	"time"

	"github.com/mvp-joe/autofix/internal/fixer"
	"github.com/mvp-joe/autofix/internal/llm"
	"github.com/mvp-joe/autofix/internal/pipeline"
	"github.com/mvp-joe/autofix/internal/sourcectx"
)

// Config represents the complete autofix configuration.
type Config struct {
	Service ServiceConfig `yaml:"service" mapstructure:"service"`
	Retry   RetryConfig   `yaml:"retry" mapstructure:"retry"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Context ContextConfig `yaml:"context" mapstructure:"context"`
	Checker CheckerConfig `yaml:"checker" mapstructure:"checker"`
	Report  ReportConfig  `yaml:"report" mapstructure:"report"`
}

// ServiceConfig selects and configures the reasoning service.
type ServiceConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"`       // "gemini" or "openai"
	Model       string  `yaml:"model" mapstructure:"model"`             // empty means provider default
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`       // OpenAI-compatible endpoint
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`         // falls back to GEMINI_API_KEY / HF_TOKEN
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"` // sampling temperature
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`   // reply length cap
}

// RetryConfig bounds retries on rate-limited replies.
type RetryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	Backoff           time.Duration `yaml:"backoff" mapstructure:"backoff"`
	RequestsPerMinute int           `yaml:"requests_per_minute" mapstructure:"requests_per_minute"` // 0 = unlimited
}

// CacheConfig configures the in-process reply cache.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Capacity int           `yaml:"capacity" mapstructure:"capacity"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ContextConfig controls context windows.
type ContextConfig struct {
	Window int `yaml:"window" mapstructure:"window"` // lines on each side of a diagnostic
}

// CheckerConfig controls checker processes.
type CheckerConfig struct {
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ReportConfig controls the batched fix report.
type ReportConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Format string `yaml:"format" mapstructure:"format"` // "json" or "yaml"
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Provider:    string(llm.ProviderGemini),
			Temperature: llm.DefaultTemperature,
			MaxTokens:   llm.DefaultMaxTokens,
		},
		Retry: RetryConfig{
			MaxAttempts: fixer.DefaultMaxAttempts,
			Backoff:     fixer.DefaultBackoff,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 256,
			TTL:      10 * time.Minute,
		},
		Context: ContextConfig{
			Window: sourcectx.DefaultWindow,
		},
		Checker: CheckerConfig{
			Timeout: 60 * time.Second,
		},
		Report: ReportConfig{
			Path:   pipeline.DefaultReportPath,
			Format: string(pipeline.ReportJSON),
		},
	}
}

// LLM converts the service section for llm.NewService.
func (c ServiceConfig) LLM() llm.Config {
	return llm.Config{
		Provider:    llm.Provider(c.Provider),
		Model:       c.Model,
		BaseURL:     c.BaseURL,
		APIKey:      c.APIKey,
		Temperature: float32(c.Temperature),
		MaxTokens:   c.MaxTokens,
	}
}

// Policy converts the retry section for fixer.NewOrchestrator.
func (c RetryConfig) Policy() fixer.RetryPolicy {
	return fixer.RetryPolicy{MaxAttempts: c.MaxAttempts, Backoff: c.Backoff}
}
