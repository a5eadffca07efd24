package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicGenerator uses the Anthropic Messages API.
type AnthropicGenerator struct {
	client anthropic.Client
	cfg    Config
}

// NewAnthropicGenerator creates a generator. cfg should already carry defaults.
func NewAnthropicGenerator(cfg Config) *AnthropicGenerator {
	opts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(cfg.APIKey),
		anthropicopt.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropicopt.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, anthropicopt.WithHTTPClient(cfg.HTTPClient))
	}
	return &AnthropicGenerator{
		client: anthropic.NewClient(opts...),
		cfg:    cfg,
	}
}

// Generate sends one Messages request and joins the returned text blocks.
func (g *AnthropicGenerator) Generate(ctx context.Context, p Prompt) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.cfg.Model),
		MaxTokens: int64(g.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.User)),
		},
		Temperature: anthropic.Float(g.cfg.Temperature),
	}
	if p.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: p.System}}
	}

	msg, err := g.client.Messages.New(ctx, params)
	if err != nil {
		status := 0
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return "", ClassifyError(err, g.cfg.Provider, g.cfg.Model, status)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ClassifyError(ErrEmptyResponse, g.cfg.Provider, g.cfg.Model, 0)
	}
	return text, nil
}
