package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Server defaults
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.False(t, cfg.Server.TLSEnabled)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Empty(t, cfg.Server.APIKey)

	// LLM defaults
	assert.Equal(t, "deepseek", cfg.LLM.Provider)
	assert.Empty(t, cfg.LLM.APIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.OllamaBaseURL)

	// Rate limit defaults
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 10, cfg.RateLimit.Burst)

	// Logging defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 100, cfg.Logging.MaxSizeMB)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		modifyFn  func(*Config)
		wantError bool
	}{
		{
			name: "valid with api key",
			modifyFn: func(cfg *Config) {
				cfg.LLM.APIKey = "sk-test"
			},
			wantError: false,
		},
		{
			name:      "hosted provider without api key",
			modifyFn:  func(cfg *Config) {},
			wantError: true,
		},
		{
			name: "ollama without api key is fine",
			modifyFn: func(cfg *Config) {
				cfg.LLM.Provider = "ollama"
			},
			wantError: false,
		},
		{
			name: "unknown provider",
			modifyFn: func(cfg *Config) {
				cfg.LLM.Provider = "mistral"
				cfg.LLM.APIKey = "sk-test"
			},
			wantError: true,
		},
		{
			name: "invalid port",
			modifyFn: func(cfg *Config) {
				cfg.LLM.APIKey = "sk-test"
				cfg.Server.Port = 0
			},
			wantError: true,
		},
		{
			name: "invalid log level",
			modifyFn: func(cfg *Config) {
				cfg.LLM.APIKey = "sk-test"
				cfg.Logging.Level = "verbose"
			},
			wantError: true,
		},
		{
			name: "invalid rate limit",
			modifyFn: func(cfg *Config) {
				cfg.LLM.APIKey = "sk-test"
				cfg.RateLimit.RequestsPerMinute = 0
			},
			wantError: true,
		},
		{
			name: "ollama with bad base url",
			modifyFn: func(cfg *Config) {
				cfg.LLM.Provider = "ollama"
				cfg.LLM.OllamaBaseURL = "not a url"
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modifyFn(cfg)

			errs := cfg.Validate()
			if tt.wantError {
				assert.NotEmpty(t, errs)
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
server:
  port: 9100
  api_key: secret
llm:
  provider: anthropic
  api_key: sk-ant-test
  model: claude-3-haiku
rate_limit:
  requests_per_minute: 30
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	mgr, err := NewConfigManager(path)
	require.NoError(t, err)
	require.NoError(t, mgr.Load(context.Background()))

	cfg := mgr.Get(context.Background())
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Server.APIKey)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "claude-3-haiku", cfg.LLM.Model)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unspecified keys keep their defaults.
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.NoError(t, mgr.Validate(context.Background()))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	mgr, err := NewConfigManager(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.NoError(t, mgr.Load(context.Background()))

	cfg := mgr.Get(context.Background())
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "deepseek", cfg.LLM.Provider)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_API_KEY", "sk-env")
	t.Setenv("LLM_MODEL", "gpt-4")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434/v1")

	mgr, err := NewConfigManager(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.NoError(t, mgr.Load(context.Background()))

	cfg := mgr.Get(context.Background())
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4", cfg.LLM.Model)
	assert.Equal(t, "http://ollama:11434/v1", cfg.LLM.OllamaBaseURL)
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600))

	mgr, err := NewConfigManager(path)
	require.NoError(t, err)
	require.NoError(t, mgr.Load(context.Background()))
	assert.Equal(t, 9000, mgr.Get(context.Background()).Server.Port)

	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9001\n"), 0o600))
	require.NoError(t, mgr.Reload(context.Background()))
	assert.Equal(t, 9001, mgr.Get(context.Background()).Server.Port)
}
