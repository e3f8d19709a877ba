package adapter

import (
	"context"
	"errors"

	"github.com/nunoplanning/advisor/internal/llm/types"
)

// Package adapter provides a unified reasoning backend interface over
// interchangeable LLM providers.
//
// Supported Providers:
//  1. DeepSeek: deepseek-reasoner (default; exposes a reasoning trace)
//  2. OpenAI: gpt-4-turbo and friends
//  3. Anthropic: claude-3-opus and friends
//  4. Ollama: any local model behind an OpenAI-compatible endpoint
//
// Provider selection happens once at construction. The adapter never
// retries and never fails over to another provider: a transport or
// envelope failure surfaces as ErrBackendUnavailable and the caller
// decides what to do with it.

// ProviderType identifies which reasoning provider is configured.
type ProviderType string

const (
	ProviderDeepSeek  ProviderType = "deepseek"
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOllama    ProviderType = "ollama"
)

// DefaultProvider is used when no provider is named in configuration.
const DefaultProvider = ProviderDeepSeek

var (
	// ErrConfiguration marks construction-time failures: an unknown
	// provider name, or a hosted provider with no credential.
	ErrConfiguration = errors.New("backend configuration error")

	// ErrBackendUnavailable marks runtime failures talking to the
	// provider: transport errors, non-200 statuses, malformed envelopes.
	// These are never retried.
	ErrBackendUnavailable = errors.New("reasoning backend unavailable")
)

// Config holds reasoning backend configuration.
type Config struct {
	Provider ProviderType `json:"provider"`
	APIKey   string       `json:"api_key"`  // For hosted providers
	BaseURL  string       `json:"base_url"` // For Ollama
	Model    string       `json:"model"`    // Empty selects the provider default
}

// Backend is the uniform contract every provider is adapted to.
type Backend interface {
	// Send performs one blocking completion round-trip.
	Send(ctx context.Context, system, prompt string, maxTokens int) (*types.Reply, error)

	// Stream performs one completion round-trip, delivering answer
	// tokens on the returned channel as they arrive. The channel is
	// closed when the stream ends or ctx is cancelled.
	Stream(ctx context.Context, system, prompt string, maxTokens int) (<-chan string, error)

	// Provider returns the configured provider type.
	Provider() ProviderType

	// Model returns the effective model name after defaulting.
	Model() string
}
