package config

import (
	"fmt"
	"net/url"
	"os"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

var validProviders = map[string]bool{
	"deepseek":  true,
	"openai":    true,
	"anthropic": true,
	"ollama":    true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate validates the configuration and returns validation errors.
func (c *Config) Validate() []error {
	var errs []error

	// Validate server configuration
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", c.Server.Port),
		})
	}

	if c.Server.TLSEnabled {
		if c.Server.TLSCertPath == "" {
			errs = append(errs, &ValidationError{
				Field:   "server.tls_cert_path",
				Message: "tls_cert_path is required when tls_enabled is true",
			})
		} else if _, err := os.Stat(c.Server.TLSCertPath); os.IsNotExist(err) {
			errs = append(errs, &ValidationError{
				Field:   "server.tls_cert_path",
				Message: fmt.Sprintf("certificate file does not exist: %s", c.Server.TLSCertPath),
			})
		}

		if c.Server.TLSKeyPath == "" {
			errs = append(errs, &ValidationError{
				Field:   "server.tls_key_path",
				Message: "tls_key_path is required when tls_enabled is true",
			})
		} else if _, err := os.Stat(c.Server.TLSKeyPath); os.IsNotExist(err) {
			errs = append(errs, &ValidationError{
				Field:   "server.tls_key_path",
				Message: fmt.Sprintf("key file does not exist: %s", c.Server.TLSKeyPath),
			})
		}
	}

	// Validate LLM configuration
	if !validProviders[c.LLM.Provider] {
		errs = append(errs, &ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unsupported provider %q (expected deepseek, openai, anthropic, or ollama)", c.LLM.Provider),
		})
	}

	// Hosted providers need a credential. Ollama is local and does not.
	if c.LLM.Provider != "ollama" && validProviders[c.LLM.Provider] && c.LLM.APIKey == "" {
		errs = append(errs, &ValidationError{
			Field:   "llm.api_key",
			Message: fmt.Sprintf("api_key is required for provider %q", c.LLM.Provider),
		})
	}

	if c.LLM.Provider == "ollama" {
		if _, err := url.ParseRequestURI(c.LLM.OllamaBaseURL); err != nil {
			errs = append(errs, &ValidationError{
				Field:   "llm.ollama_base_url",
				Message: fmt.Sprintf("invalid base URL: %v", err),
			})
		}
	}

	// Validate rate limit configuration
	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerMinute < 1 {
			errs = append(errs, &ValidationError{
				Field:   "rate_limit.requests_per_minute",
				Message: fmt.Sprintf("must be at least 1, got %d", c.RateLimit.RequestsPerMinute),
			})
		}
		if c.RateLimit.Burst < 1 {
			errs = append(errs, &ValidationError{
				Field:   "rate_limit.burst",
				Message: fmt.Sprintf("must be at least 1, got %d", c.RateLimit.Burst),
			})
		}
	}

	// Validate logging configuration
	if !validLogLevels[c.Logging.Level] {
		errs = append(errs, &ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level %q (expected debug, info, warn, or error)", c.Logging.Level),
		})
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		errs = append(errs, &ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid format %q (expected json or text)", c.Logging.Format),
		})
	}

	return errs
}
