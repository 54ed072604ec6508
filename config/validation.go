package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ConfigError represents a fatal configuration problem detected at startup
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks every setting and reports all violations at once
func ValidateConfig(cfg *Config) error {
	var errs []error

	if cfg.LLMAPIKey == "" {
		errs = append(errs, &ConfigError{Field: "LLM_API_KEY", Message: "LLM_API_KEY environment variable not set"})
	}

	if u, err := url.Parse(cfg.LLMAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, &ConfigError{Field: "LLM_API_URL", Message: fmt.Sprintf("invalid URL %q", cfg.LLMAPIURL)})
	}

	if cfg.LLMModel == "" {
		errs = append(errs, &ConfigError{Field: "LLM_MODEL", Message: "must not be empty"})
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port < 1 || port > 65535 {
		errs = append(errs, &ConfigError{Field: "SERVER_PORT", Message: "must be between 1 and 65535"})
	}

	if cfg.RateLimitEnabled {
		if cfg.RateLimitRequests <= 0 {
			errs = append(errs, &ConfigError{Field: "RATE_LIMIT_REQUESTS", Message: "must be positive"})
		}
		if cfg.RateLimitWindow <= 0 {
			errs = append(errs, &ConfigError{Field: "RATE_LIMIT_WINDOW", Message: "must be positive"})
		}
		if cfg.RateLimitBurst <= 0 {
			errs = append(errs, &ConfigError{Field: "RATE_LIMIT_BURST", Message: "must be positive"})
		}
	}

	for _, origin := range cfg.CORSAllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			errs = append(errs, &ConfigError{Field: "CORS_ALLOWED_ORIGINS", Message: fmt.Sprintf("invalid origin %q", origin)})
		}
	}

	if cfg.RedisURL != "" && cfg.CacheTTL <= 0 {
		errs = append(errs, &ConfigError{Field: "CACHE_TTL", Message: "must be positive when REDIS_URL is set"})
	}

	return errors.Join(errs...)
}
