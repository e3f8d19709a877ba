package config

import "context"

// Package config provides configuration management for the advisor.
//
// Responsibilities:
//   - Load configuration from YAML files and environment variables
//   - Validate configuration on startup
//   - Provide runtime access to all configuration
//   - Support configuration reloading (for some settings)
//   - Manage sensitive data (API keys)
//   - Establish reasonable defaults
//
// Configuration Sources (priority order, high to low):
//   1. Environment variables (NUNO_* prefix, plus the bare LLM_* names
//      kept for compatibility with existing deployments)
//   2. YAML config files (default: /etc/nuno-advisor/config.yaml)
//   3. Built-in defaults (lowest priority)

// Config struct contains all configuration fields
type Config struct {
	// Server configuration
	Server struct {
		Port        int
		TLSEnabled  bool
		TLSCertPath string
		TLSKeyPath  string
		// APIKey gates the /api/v1 surface when non-empty.
		APIKey string
		// AllowedOrigins is a list of origins permitted for CORS and
		// WebSocket upgrades. Use ["*"] to allow any origin.
		AllowedOrigins []string
	}

	// LLM provider configuration
	LLM struct {
		Provider      string
		APIKey        string
		Model         string
		OllamaBaseURL string
	}

	// Rate limiting configuration
	RateLimit struct {
		Enabled           bool
		RequestsPerMinute int
		Burst             int
	}

	// Logging configuration
	Logging struct {
		Level        string
		Format       string
		AuditLogPath string
		AppLogPath   string
		MaxSizeMB    int
		MaxBackups   int
		MaxAgeDays   int
		Compress     bool
	}
}

// ConfigManager defines the interface for configuration access.
type ConfigManager interface {
	// Load loads configuration from all sources.
	Load(ctx context.Context) error

	// Get returns the current configuration.
	Get(ctx context.Context) *Config

	// Validate validates configuration is correct and complete.
	Validate(ctx context.Context) error

	// Watch watches for configuration changes and reloads (if supported).
	Watch(ctx context.Context) <-chan Config

	// Reload reloads configuration from sources (selective settings).
	Reload(ctx context.Context) error
}

// NewConfigManager creates a new configuration manager.
func NewConfigManager(configPath string) (ConfigManager, error) {
	mgr := &viperConfigManager{
		configPath: configPath,
		config:     DefaultConfig(),
		watchChan:  make(chan Config, 1),
	}
	return mgr, nil
}

// NewConfigManagerWithDefaults creates a config manager with default config path.
func NewConfigManagerWithDefaults() (ConfigManager, error) {
	return NewConfigManager("/etc/nuno-advisor/config.yaml")
}
