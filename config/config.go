package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment `mapstructure:"-"`

	// Server configuration
	ServerHost      string        `mapstructure:"server_host"`
	ServerPort      string        `mapstructure:"server_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Completion provider configuration
	LLMAPIKey     string `mapstructure:"llm_api_key"`
	LLMAPIKeyFile string `mapstructure:"llm_api_key_file"`
	LLMAPIURL     string `mapstructure:"llm_api_url"`
	LLMModel      string `mapstructure:"llm_model"`

	// Logging configuration
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Redis configuration, optional. Enables the completion cache and the
	// shared rate limiter.
	RedisURL string        `mapstructure:"redis_url"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// Rate limiting configuration
	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	RateLimitBurst    int           `mapstructure:"rate_limit_burst"`

	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

const (
	DefaultLLMAPIURL = "https://api.groq.com/openai/v1/chat/completions"
	DefaultLLMModel  = "llama3-8b-8192"
)

// LoadConfig creates a new Config instance with values from environment variables,
// an optional config file and Docker secrets
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Environment = GetEnvironment()
	cfg.CORSAllowedOrigins = splitOrigins(cfg.CORSAllowedOrigins)

	if err := resolveAPIKey(cfg); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", "8000")
	v.SetDefault("shutdown_timeout", "10s")

	v.SetDefault("llm_api_key", "")
	v.SetDefault("llm_api_key_file", "")
	v.SetDefault("llm_api_url", DefaultLLMAPIURL)
	v.SetDefault("llm_model", DefaultLLMModel)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("redis_url", "")
	v.SetDefault("cache_ttl", "1h")

	v.SetDefault("rate_limit_enabled", false)
	v.SetDefault("rate_limit_requests", 60)
	v.SetDefault("rate_limit_window", "1m")
	v.SetDefault("rate_limit_burst", 10)

	v.SetDefault("cors_allowed_origins", []string{"*"})
}

// resolveAPIKey falls back to the key file and then to the Docker secret
// when LLM_API_KEY is not set directly.
func resolveAPIKey(cfg *Config) error {
	cfg.LLMAPIKey = strings.TrimSpace(cfg.LLMAPIKey)
	if cfg.LLMAPIKey != "" {
		return nil
	}

	if cfg.LLMAPIKeyFile != "" {
		data, err := os.ReadFile(cfg.LLMAPIKeyFile)
		if err != nil {
			return &ConfigError{Field: "LLM_API_KEY_FILE", Message: fmt.Sprintf("failed to read API key file: %v", err)}
		}
		cfg.LLMAPIKey = strings.TrimSpace(string(data))
		if cfg.LLMAPIKey == "" {
			return &ConfigError{Field: "LLM_API_KEY_FILE", Message: "API key file is empty"}
		}
		return nil
	}

	cfg.LLMAPIKey = readSecret("llm_api_key")
	return nil
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// splitOrigins accepts both a list and a single comma separated entry
func splitOrigins(in []string) []string {
	var out []string
	for _, entry := range in {
		for _, o := range strings.Split(entry, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}

// Addr returns the host:port the HTTP server listens on
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}
