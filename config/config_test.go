package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate clears every variable LoadConfig reads so the host environment
// cannot leak into a test.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LLM_API_KEY", "LLM_API_KEY_FILE", "LLM_API_URL", "LLM_MODEL",
		"SERVER_HOST", "SERVER_PORT", "SHUTDOWN_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
		"REDIS_URL", "CACHE_TTL", "RATE_LIMIT_ENABLED", "RATE_LIMIT_REQUESTS",
		"RATE_LIMIT_WINDOW", "RATE_LIMIT_BURST", "CORS_ALLOWED_ORIGINS",
		"CONFIG_FILE", "ENV", "CI",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("SECRETS_DIR", t.TempDir())
}

func TestLoadConfig(t *testing.T) {
	isolate(t)
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, http://frontend:5173")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.LLMAPIKey)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, []string{"http://localhost:5173", "http://frontend:5173"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigWithDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("LLM_API_KEY", "test-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultLLMAPIURL, cfg.LLMAPIURL)
	assert.Equal(t, DefaultLLMModel, cfg.LLMModel)
	assert.Equal(t, "8000", cfg.ServerPort)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, Development, cfg.Environment)
}

func TestLoadConfigMissingAPIKey(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	assert.Nil(t, cfg)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "LLM_API_KEY", cfgErr.Field)
	assert.Contains(t, err.Error(), "LLM_API_KEY environment variable not set")
}

func TestLoadConfigAPIKeyFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte("  file-key\n"), 0o600))
	t.Setenv("LLM_API_KEY_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.LLMAPIKey)
}

func TestLoadConfigEmptyAPIKeyFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))
	t.Setenv("LLM_API_KEY_FILE", path)

	_, err := LoadConfig()
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "API key file is empty", cfgErr.Message)
}

func TestLoadConfigDockerSecret(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "llm_api_key"), []byte("secret-key"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "secret-key", cfg.LLMAPIKey)
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "llm_api_key: yaml-key\nllm_model: mixtral\nserver_port: \"8081\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LLM_MODEL", "llama3-70b")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "yaml-key", cfg.LLMAPIKey)
	assert.Equal(t, "8081", cfg.ServerPort)
	// environment wins over the file
	assert.Equal(t, "llama3-70b", cfg.LLMModel)
}

func TestValidateConfig(t *testing.T) {
	cfg := &Config{
		LLMAPIKey:          "",
		LLMAPIURL:          "not a url",
		LLMModel:           "m",
		ServerPort:         "70000",
		RateLimitEnabled:   true,
		RateLimitRequests:  0,
		RateLimitWindow:    time.Minute,
		RateLimitBurst:     1,
		CORSAllowedOrigins: []string{"*", "http://localhost:5173", "localhost:3000"},
	}

	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_API_KEY")
	assert.Contains(t, err.Error(), "LLM_API_URL")
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "RATE_LIMIT_REQUESTS")
	assert.NotContains(t, err.Error(), "RATE_LIMIT_BURST")
	assert.Contains(t, err.Error(), `invalid origin "localhost:3000"`)
	assert.NotContains(t, err.Error(), "http://localhost:5173")
}

func TestGetEnvironment(t *testing.T) {
	tests := []struct {
		ci, env  string
		expected Environment
		ginMode  string
	}{
		{"true", "production", CI, gin.TestMode},
		{"", "production", Production, gin.ReleaseMode},
		{"", "TEST", Test, gin.TestMode},
		{"", "", Development, gin.DebugMode},
	}

	for _, tt := range tests {
		t.Run(string(tt.expected), func(t *testing.T) {
			t.Setenv("CI", tt.ci)
			t.Setenv("ENV", tt.env)
			cfg := &Config{Environment: GetEnvironment()}
			assert.Equal(t, tt.expected, cfg.Environment)
			assert.Equal(t, tt.ginMode, cfg.GinMode())
		})
	}
}
