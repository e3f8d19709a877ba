package adapter

// ProviderInfo describes one entry in the provider directory exposed
// over the API so operators can see what the service can be pointed at.
type ProviderInfo struct {
	Name        string   `json:"name"`
	Models      []string `json:"models"`
	Recommended bool     `json:"recommended"`
	Type        string   `json:"type"` // "local" or "cloud"
	Cost        string   `json:"cost"`
	Description string   `json:"description"`
}

// Catalog returns the static provider directory. Order is stable:
// local first, then cloud providers.
func Catalog() []ProviderInfo {
	return []ProviderInfo{
		{
			Name:        string(ProviderOllama),
			Models:      []string{"llama3.1:8b", "qwen2.5:14b", "llama3.1:70b"},
			Recommended: true,
			Type:        "local",
			Cost:        "$0",
			Description: "Local LLM running on your server - no API costs, full privacy",
		},
		{
			Name:        string(ProviderDeepSeek),
			Models:      []string{"deepseek-reasoner", "deepseek-chat"},
			Recommended: false,
			Type:        "cloud",
			Cost:        "$0.50-1.00 per analysis",
			Description: "DeepSeek reasoning model with chain-of-thought",
		},
		{
			Name:        string(ProviderOpenAI),
			Models:      []string{"gpt-4", "gpt-4-turbo", "gpt-3.5-turbo"},
			Recommended: false,
			Type:        "cloud",
			Cost:        "$2.00-5.00 per analysis",
			Description: "OpenAI GPT models",
		},
		{
			Name:        string(ProviderAnthropic),
			Models:      []string{"claude-3-opus", "claude-3-sonnet", "claude-3-haiku"},
			Recommended: false,
			Type:        "cloud",
			Cost:        "$1.00-3.00 per analysis",
			Description: "Anthropic Claude models",
		},
	}
}
