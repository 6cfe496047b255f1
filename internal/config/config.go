// Package config handles configuration loading for the orchestration engine.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the engine and its CLI.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Store     StoreConfig     `mapstructure:"store"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
}

// AnthropicConfig holds model invocation settings.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key. ${VAR} references are expanded.
	APIKey string `mapstructure:"api_key"`
	// UseAWSBedrock routes invocations through AWS Bedrock instead of the
	// direct API.
	UseAWSBedrock bool `mapstructure:"use_aws_bedrock"`
	// AWSRegion is the Bedrock region.
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile selects a named AWS credentials profile.
	AWSProfile string `mapstructure:"aws_profile"`
	// Model is the default model for capability invocations.
	Model string `mapstructure:"model"`
	// MaxTokens bounds each model response.
	MaxTokens int `mapstructure:"max_tokens"`
}

// SchedulerConfig holds dispatch loop settings.
type SchedulerConfig struct {
	// Tick is the dispatch interval.
	Tick time.Duration `mapstructure:"tick"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	// MaxEntries is the in-memory entry ceiling.
	MaxEntries int `mapstructure:"max_entries"`
	// TTL is the entry lifetime.
	TTL time.Duration `mapstructure:"ttl"`
}

// RetryConfig holds workflow retry settings.
type RetryConfig struct {
	// BaseDelay is the initial backoff delay.
	BaseDelay time.Duration `mapstructure:"base_delay"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	// Path is the SQLite database file location.
	Path string `mapstructure:"path"`
}

// CatalogConfig holds agent catalog settings.
type CatalogConfig struct {
	// Path is the YAML agent catalog file. Empty means built-in defaults.
	Path string `mapstructure:"path"`
	// Watch enables hot-reloading the catalog on file changes.
	Watch bool `mapstructure:"watch"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.agentcore.yaml in current directory or parent)
// 3. User config (~/.config/agentcore/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 4096,
		},
		Scheduler: SchedulerConfig{Tick: time.Second},
		Cache:     CacheConfig{MaxEntries: 1000, TTL: time.Hour},
		Retry:     RetryConfig{BaseDelay: 100 * time.Millisecond},
		Store:     StoreConfig{Path: ""},
		Catalog:   CatalogConfig{},
	}
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.use_aws_bedrock", false)
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.max_tokens", 4096)

	v.SetDefault("scheduler.tick", "1s")

	v.SetDefault("cache.max_entries", 1000)
	v.SetDefault("cache.ttl", "1h")

	v.SetDefault("retry.base_delay", "100ms")

	v.SetDefault("store.path", "")
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.watch", false)
}

// getUserConfigDir returns the XDG config directory for agentcore.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "agentcore")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "agentcore")
	}
	return filepath.Join(home, ".config", "agentcore")
}

// findProjectConfig searches for .agentcore.yaml in the current directory
// and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".agentcore.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}
