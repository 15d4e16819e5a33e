package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mvp-joe/autofix/internal/llm"
	"github.com/mvp-joe/autofix/internal/pipeline"
)

var (
	// ErrInvalidProvider indicates an unsupported reasoning service provider
	ErrInvalidProvider = errors.New("invalid service provider")

	// ErrInvalidServiceSettings indicates out-of-range sampling settings
	ErrInvalidServiceSettings = errors.New("invalid service settings")

	// ErrInvalidRetry indicates invalid retry configuration
	ErrInvalidRetry = errors.New("invalid retry settings")

	// ErrInvalidCacheSettings indicates invalid cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")

	// ErrInvalidWindow indicates a negative context window
	ErrInvalidWindow = errors.New("invalid context window")

	// ErrInvalidTimeout indicates a non-positive checker timeout
	ErrInvalidTimeout = errors.New("invalid checker timeout")

	// ErrInvalidReport indicates invalid report configuration
	ErrInvalidReport = errors.New("invalid report settings")
)

// Validate checks that the configuration is valid and complete.
// All problems are reported together.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateService(&cfg.Service); err != nil {
		errs = append(errs, err)
	}
	if err := validateRetry(&cfg.Retry); err != nil {
		errs = append(errs, err)
	}
	if err := validateCache(&cfg.Cache); err != nil {
		errs = append(errs, err)
	}

	if cfg.Context.Window < 0 {
		errs = append(errs, fmt.Errorf("%w: window cannot be negative, got %d", ErrInvalidWindow, cfg.Context.Window))
	}
	if cfg.Checker.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidTimeout, cfg.Checker.Timeout))
	}

	if err := validateReport(&cfg.Report); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateService(cfg *ServiceConfig) error {
	var errs []error

	provider := llm.Provider(strings.ToLower(cfg.Provider))
	if provider != llm.ProviderGemini && provider != llm.ProviderOpenAI {
		errs = append(errs, fmt.Errorf("%w: must be 'gemini' or 'openai', got '%s'", ErrInvalidProvider, cfg.Provider))
	}
	cfg.Provider = string(provider)

	if cfg.BaseURL != "" {
		if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%w: base_url must be an absolute URL, got '%s'", ErrInvalidServiceSettings, cfg.BaseURL))
		}
	}

	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		errs = append(errs, fmt.Errorf("%w: temperature must be between 0 and 2, got %.2f", ErrInvalidServiceSettings, cfg.Temperature))
	}

	if cfg.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_tokens must be positive, got %d", ErrInvalidServiceSettings, cfg.MaxTokens))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateRetry(cfg *RetryConfig) error {
	var errs []error

	if cfg.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_attempts must be positive, got %d", ErrInvalidRetry, cfg.MaxAttempts))
	}
	if cfg.Backoff < 0 {
		errs = append(errs, fmt.Errorf("%w: backoff cannot be negative, got %s", ErrInvalidRetry, cfg.Backoff))
	}
	if cfg.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("%w: requests_per_minute cannot be negative, got %d", ErrInvalidRetry, cfg.RequestsPerMinute))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateCache(cfg *CacheConfig) error {
	// Capacity and TTL only matter when the cache is on
	if !cfg.Enabled {
		return nil
	}

	var errs []error

	if cfg.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidCacheSettings, cfg.Capacity))
	}
	if cfg.TTL <= 0 {
		errs = append(errs, fmt.Errorf("%w: ttl must be positive, got %s", ErrInvalidCacheSettings, cfg.TTL))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateReport(cfg *ReportConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.Path) == "" {
		errs = append(errs, fmt.Errorf("%w: path is required", ErrInvalidReport))
	}

	format := pipeline.ReportFormat(strings.ToLower(cfg.Format))
	if format != "" && format != pipeline.ReportJSON && format != pipeline.ReportYAML {
		errs = append(errs, fmt.Errorf("%w: format must be 'json' or 'yaml', got '%s'", ErrInvalidReport, cfg.Format))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
