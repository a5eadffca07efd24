package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
)

// OpenAIGenerator talks to any OpenAI-compatible chat completions API
// (OpenAI, OpenRouter, Ollama).
type OpenAIGenerator struct {
	client openai.Client
	cfg    Config
}

// NewOpenAIGenerator creates a generator. cfg should already carry defaults;
// use New unless the provider is known.
func NewOpenAIGenerator(cfg Config) *OpenAIGenerator {
	opts := []openaiopt.RequestOption{
		openaiopt.WithMaxRetries(0),
	}
	if cfg.APIKey != "" {
		opts = append(opts, openaiopt.WithAPIKey(cfg.APIKey))
	} else {
		// Ollama ignores the key but the SDK requires a header value.
		opts = append(opts, openaiopt.WithAPIKey("ollama"))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openaiopt.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, openaiopt.WithHTTPClient(cfg.HTTPClient))
	}
	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}
}

// Generate sends one chat completion request.
func (g *OpenAIGenerator) Generate(ctx context.Context, p Prompt) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if p.System != "" {
		messages = append(messages, openai.SystemMessage(p.System))
	}
	messages = append(messages, openai.UserMessage(p.User))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(g.cfg.Model),
		Messages:    messages,
		Temperature: openai.Float(g.cfg.Temperature),
		MaxTokens:   openai.Int(int64(g.cfg.MaxTokens)),
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		status := 0
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return "", ClassifyError(err, g.cfg.Provider, g.cfg.Model, status)
	}

	if len(resp.Choices) == 0 {
		return "", ClassifyError(fmt.Errorf("%w: no choices", ErrEmptyResponse), g.cfg.Provider, g.cfg.Model, 0)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ClassifyError(ErrEmptyResponse, g.cfg.Provider, g.cfg.Model, 0)
	}
	return text, nil
}
