// Package llm generates text through hosted or self-hosted language models.
package llm

import "strings"

// Provider name constants.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderAnthropic  = "anthropic"
)

// ProviderDefaults holds the settings used when configuration leaves a value unset.
type ProviderDefaults struct {
	BaseURL     string
	Model       string
	RequiresKey bool
}

// Defaults per provider. OpenRouter and Ollama speak the OpenAI chat API.
var Defaults = map[string]ProviderDefaults{
	ProviderOpenAI: {
		BaseURL:     "https://api.openai.com/v1/",
		Model:       "gpt-4",
		RequiresKey: true,
	},
	ProviderOpenRouter: {
		BaseURL:     "https://openrouter.ai/api/v1/",
		Model:       "openai/gpt-4o-mini",
		RequiresKey: true,
	},
	ProviderOllama: {
		BaseURL: "http://localhost:11434/v1/",
		Model:   "llama3.1",
	},
	ProviderAnthropic: {
		BaseURL:     "https://api.anthropic.com/",
		Model:       "claude-sonnet-4-5",
		RequiresKey: true,
	},
}

const (
	// DefaultMaxTokens bounds a product description.
	DefaultMaxTokens = 600

	// DefaultTemperature leaves some room for varied copy.
	DefaultTemperature = 0.7
)

// ValidProviders returns all supported provider names.
func ValidProviders() []string {
	return []string{ProviderOpenAI, ProviderOpenRouter, ProviderOllama, ProviderAnthropic}
}

// IsValidProvider reports whether provider is supported (case-insensitive).
func IsValidProvider(provider string) bool {
	_, ok := Defaults[strings.ToLower(provider)]
	return ok
}
