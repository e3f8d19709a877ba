package server

import "github.com/nunoplanning/advisor/internal/config"

// Config holds the server runtime configuration.
type Config struct {
	Host string
	Port int

	TLSEnabled  bool
	TLSCertPath string
	TLSKeyPath  string

	// APIKey gates the /api/v1 surface when non-empty.
	APIKey         string
	AllowedOrigins []string

	// Reasoning backend
	LLMProvider   string
	LLMAPIKey     string
	LLMModel      string
	OllamaBaseURL string

	// Rate limiting
	RateLimitEnabled  bool
	RequestsPerMinute int
	RateLimitBurst    int
}

// FromConfig maps the loaded application configuration onto the server
// configuration.
func FromConfig(cfg *config.Config) *Config {
	return &Config{
		Host:              "0.0.0.0",
		Port:              cfg.Server.Port,
		TLSEnabled:        cfg.Server.TLSEnabled,
		TLSCertPath:       cfg.Server.TLSCertPath,
		TLSKeyPath:        cfg.Server.TLSKeyPath,
		APIKey:            cfg.Server.APIKey,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		LLMProvider:       cfg.LLM.Provider,
		LLMAPIKey:         cfg.LLM.APIKey,
		LLMModel:          cfg.LLM.Model,
		OllamaBaseURL:     cfg.LLM.OllamaBaseURL,
		RateLimitEnabled:  cfg.RateLimit.Enabled,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		RateLimitBurst:    cfg.RateLimit.Burst,
	}
}
