package adapter

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nunoplanning/advisor/internal/llm/provider/anthropic"
	"github.com/nunoplanning/advisor/internal/llm/provider/deepseek"
	"github.com/nunoplanning/advisor/internal/llm/provider/ollama"
	"github.com/nunoplanning/advisor/internal/llm/provider/openai"
	"github.com/nunoplanning/advisor/internal/llm/types"
	"github.com/nunoplanning/advisor/internal/metrics"
)

// backendImpl is the unified adapter implementation.
type backendImpl struct {
	provider ProviderType
	model    string
	client   interface{} // Actual provider client
}

// defaultModels maps each provider to its default model name.
var defaultModels = map[ProviderType]string{
	ProviderDeepSeek:  deepseek.DefaultModel,
	ProviderOpenAI:    openai.DefaultModel,
	ProviderAnthropic: anthropic.DefaultModel,
	ProviderOllama:    ollama.DefaultModel,
}

// New creates a backend for the configured provider. Hosted providers
// require an API key; a missing key is a configuration error, not a
// degraded mode, because the service exists solely to call the backend.
func New(cfg *Config) (Backend, error) {
	if cfg == nil {
		// Environment variables as fallback
		cfg = &Config{
			Provider: ProviderType(os.Getenv("LLM_PROVIDER")),
			APIKey:   os.Getenv("LLM_API_KEY"),
			BaseURL:  os.Getenv("OLLAMA_BASE_URL"),
			Model:    os.Getenv("LLM_MODEL"),
		}
	}

	provider := cfg.Provider
	if provider == "" {
		provider = DefaultProvider
	}

	var client interface{}
	var err error

	switch provider {
	case ProviderDeepSeek:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: deepseek requires an API key", ErrConfiguration)
		}
		client, err = deepseek.NewClient(cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}

	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: openai requires an API key", ErrConfiguration)
		}
		client, err = openai.NewClient(cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}

	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: anthropic requires an API key", ErrConfiguration)
		}
		client, err = anthropic.NewClient(cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}

	case ProviderOllama:
		// Local inference needs no credential.
		client, err = ollama.NewClient(cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}

	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", ErrConfiguration, provider)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModels[provider]
	}

	return &backendImpl{
		provider: provider,
		model:    model,
		client:   client,
	}, nil
}

// Send delegates to the provider-specific client.
func (b *backendImpl) Send(ctx context.Context, system, prompt string, maxTokens int) (*types.Reply, error) {
	start := time.Now()
	defer func() {
		metrics.BackendRequestDuration.WithLabelValues(string(b.provider), b.model).Observe(time.Since(start).Seconds())
	}()

	var reply *types.Reply
	var err error

	switch client := b.client.(type) {
	case *deepseek.Client:
		reply, err = client.Send(ctx, system, prompt, maxTokens)
	case *openai.Client:
		reply, err = client.Send(ctx, system, prompt, maxTokens)
	case *anthropic.Client:
		reply, err = client.Send(ctx, system, prompt, maxTokens)
	case *ollama.Client:
		reply, err = client.Send(ctx, system, prompt, maxTokens)
	default:
		err = fmt.Errorf("unknown client type")
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.BackendRequestsTotal.WithLabelValues(string(b.provider), b.model, status).Inc()

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return reply, nil
}

// Stream delegates to the provider-specific client.
func (b *backendImpl) Stream(ctx context.Context, system, prompt string, maxTokens int) (<-chan string, error) {
	var tokens <-chan string
	var err error

	switch client := b.client.(type) {
	case *deepseek.Client:
		tokens, err = client.Stream(ctx, system, prompt, maxTokens)
	case *openai.Client:
		tokens, err = client.Stream(ctx, system, prompt, maxTokens)
	case *anthropic.Client:
		tokens, err = client.Stream(ctx, system, prompt, maxTokens)
	case *ollama.Client:
		tokens, err = client.Stream(ctx, system, prompt, maxTokens)
	default:
		err = fmt.Errorf("unknown client type")
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.BackendRequestsTotal.WithLabelValues(string(b.provider), b.model, status).Inc()

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return tokens, nil
}

// Provider returns the configured provider type.
func (b *backendImpl) Provider() ProviderType {
	return b.provider
}

// Model returns the effective model name.
func (b *backendImpl) Model() string {
	return b.model
}
