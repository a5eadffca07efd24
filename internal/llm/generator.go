package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Prompt is a single-turn request: a fixed system instruction plus one user
// message.
type Prompt struct {
	System string
	User   string
}

// Generator produces text for a prompt. Implementations make exactly one
// attempt per call.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, p Prompt) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, p Prompt) (string, error) {
	return f(ctx, p)
}

// Config selects and configures a provider.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float64

	// HTTPClient overrides the SDK transport (tests, proxies).
	HTTPClient *http.Client
}

// withDefaults fills unset fields from the provider defaults.
func (c Config) withDefaults() (Config, error) {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	d, ok := Defaults[c.Provider]
	if !ok {
		return c, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownProvider, c.Provider, strings.Join(ValidProviders(), ", "))
	}
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if d.RequiresKey && c.APIKey == "" {
		return c, fmt.Errorf("%w for provider %s", ErrMissingAPIKey, c.Provider)
	}
	return c, nil
}

// New builds the Generator for cfg.Provider.
func New(cfg Config) (Generator, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropicGenerator(cfg), nil
	default:
		return NewOpenAIGenerator(cfg), nil
	}
}
