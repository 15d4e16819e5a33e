package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/autofix/internal/llm"
	"github.com/spf13/viper"
)

const (
	// DirName is the per-project and per-user config directory.
	DirName = ".autofix"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "AUTOFIX"

	GeminiKeyEnv = "GEMINI_API_KEY"
	HFTokenEnv   = "HF_TOKEN"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from files and environment variables.
	Load() (*Config, error)
}

type loader struct {
	rootDir string
	homeDir string // empty skips the user config
}

// NewLoader creates a loader for the given project root. The user config
// in the home directory is merged underneath when the home directory is
// known.
func NewLoader(rootDir string) Loader {
	home, _ := os.UserHomeDir()
	return &loader{rootDir: rootDir, homeDir: home}
}

func newLoader(rootDir, homeDir string) Loader {
	return &loader{rootDir: rootDir, homeDir: homeDir}
}

// Load resolves the configuration: defaults, then user config, then
// project config, then AUTOFIX_* environment variables.
func (l *loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., AUTOFIX_SERVICE_PROVIDER)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvVars(v)

	setDefaults(v)

	for _, dir := range l.configDirs() {
		if err := mergeConfigFile(v, dir); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	resolveAPIKey(&cfg.Service)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// configDirs lists config directories, lowest priority first.
func (l *loader) configDirs() []string {
	var dirs []string
	if l.homeDir != "" {
		dirs = append(dirs, filepath.Join(l.homeDir, DirName))
	}
	project := filepath.Join(l.rootDir, DirName)
	if len(dirs) == 0 || dirs[0] != project {
		dirs = append(dirs, project)
	}
	return dirs
}

// mergeConfigFile merges dir/config.yml (or .yaml) into v. A missing file
// is not an error.
func mergeConfigFile(v *viper.Viper, dir string) error {
	for _, name := range []string{"config.yml", "config.yaml"} {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		err = v.MergeConfig(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}
	return nil
}

func bindEnvVars(v *viper.Viper) {
	// Service configuration
	v.BindEnv("service.provider")
	v.BindEnv("service.model")
	v.BindEnv("service.base_url")
	v.BindEnv("service.api_key")
	v.BindEnv("service.temperature")
	v.BindEnv("service.max_tokens")

	// Retry configuration
	v.BindEnv("retry.max_attempts")
	v.BindEnv("retry.backoff")
	v.BindEnv("retry.requests_per_minute")

	// Cache configuration
	v.BindEnv("cache.enabled")
	v.BindEnv("cache.capacity")
	v.BindEnv("cache.ttl")

	v.BindEnv("context.window")
	v.BindEnv("checker.timeout")

	// Report configuration
	v.BindEnv("report.path")
	v.BindEnv("report.format")
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("service.provider", defaults.Service.Provider)
	v.SetDefault("service.model", defaults.Service.Model)
	v.SetDefault("service.base_url", defaults.Service.BaseURL)
	v.SetDefault("service.api_key", defaults.Service.APIKey)
	v.SetDefault("service.temperature", defaults.Service.Temperature)
	v.SetDefault("service.max_tokens", defaults.Service.MaxTokens)

	v.SetDefault("retry.max_attempts", defaults.Retry.MaxAttempts)
	v.SetDefault("retry.backoff", defaults.Retry.Backoff)
	v.SetDefault("retry.requests_per_minute", defaults.Retry.RequestsPerMinute)

	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.capacity", defaults.Cache.Capacity)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)

	v.SetDefault("context.window", defaults.Context.Window)
	v.SetDefault("checker.timeout", defaults.Checker.Timeout)

	v.SetDefault("report.path", defaults.Report.Path)
	v.SetDefault("report.format", defaults.Report.Format)
}

// resolveAPIKey fills an unset key from the provider's conventional
// environment variable.
func resolveAPIKey(svc *ServiceConfig) {
	if svc.APIKey != "" {
		return
	}
	switch llm.Provider(strings.ToLower(svc.Provider)) {
	case llm.ProviderOpenAI:
		svc.APIKey = os.Getenv(HFTokenEnv)
	default:
		svc.APIKey = os.Getenv(GeminiKeyEnv)
	}
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}
