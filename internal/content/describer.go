// Package content produces the text of a product listing: the generated
// description and the deterministic SEO fields.
package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmylchreest/refyne-catalog/internal/llm"
)

const (
	DefaultLanguage = "English"
	DefaultStyle    = "warm, concise and factual"
)

// Describer writes product descriptions through an llm.Generator.
type Describer struct {
	gen    llm.Generator
	system string
}

// NewDescriber creates a Describer whose copy uses the given language and
// style. Empty values fall back to the defaults.
func NewDescriber(gen llm.Generator, language, style string) *Describer {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	if strings.TrimSpace(style) == "" {
		style = DefaultStyle
	}
	return &Describer{gen: gen, system: SystemPrompt(language, style)}
}

// SystemPrompt is the fixed instruction sent with every description request.
func SystemPrompt(language, style string) string {
	return fmt.Sprintf(`You are an e-commerce copywriter writing product descriptions for an online shop.
Write in %s. Tone: %s.
Write two or three short paragraphs separated by a blank line.
Use plain text only: no markdown, no headings, no lists, no prices, no invented certifications.`, language, style)
}

// UserPrompt is the per-product message.
func UserPrompt(title, category string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\n", strings.TrimSpace(title))
	if c := strings.TrimSpace(category); c != "" {
		fmt.Fprintf(&b, "Category: %s\n", c)
	}
	b.WriteString("Write the product description.")
	return b.String()
}

// Describe returns the generated description for one product. Any generator
// failure, including an empty answer, is returned as an error.
func (d *Describer) Describe(ctx context.Context, title, category string) (string, error) {
	text, err := d.gen.Generate(ctx, llm.Prompt{System: d.system, User: UserPrompt(title, category)})
	if err != nil {
		return "", fmt.Errorf("describe %q: %w", title, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("describe %q: %w", title, llm.ErrEmptyResponse)
	}
	return text, nil
}
