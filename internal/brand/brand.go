// Package brand derives a product's brand from an explicit column, from the
// titles of the whole upload, or from a single title.
package brand

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Unknown is returned when no strategy finds a brand.
const Unknown = "Unknown"

// Mode selects the brand strategy for a run.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeExplicit Mode = "explicit"
	ModeCorpus   Mode = "corpus"
	ModeRegex    Mode = "regex"
)

var ErrUnknownMode = errors.New("unknown brand mode")

// ParseMode parses a mode name. An empty string means ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeExplicit, ModeCorpus, ModeRegex:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: auto, explicit, corpus, regex)", ErrUnknownMode, s)
	}
}

// RowContext carries the fields a resolver may look at.
type RowContext struct {
	Title string
	Brand string
}

// Resolver returns a non-empty brand for a row.
type Resolver interface {
	Resolve(row RowContext) string
}

// Select picks the resolver for a run. In auto mode the explicit strategy is
// used when a brand column is mapped, the corpus strategy when at least two
// titles are present, and the regex strategy otherwise. The effective mode is
// returned alongside the resolver.
func Select(mode Mode, brandColumnMapped bool, titles []string) (Resolver, Mode, error) {
	if mode == "" {
		mode = ModeAuto
	}
	if mode == ModeAuto {
		switch {
		case brandColumnMapped:
			mode = ModeExplicit
		case countNonEmpty(titles) >= 2:
			mode = ModeCorpus
		default:
			mode = ModeRegex
		}
	}

	switch mode {
	case ModeExplicit:
		return Explicit{}, mode, nil
	case ModeCorpus:
		return NewCorpus(titles), mode, nil
	case ModeRegex:
		return Regex{}, mode, nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func countNonEmpty(values []string) int {
	n := 0
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

// Explicit uses the row's brand cell verbatim. A blank cell falls back to
// the single-title rule of Regex.
type Explicit struct{}

func (Explicit) Resolve(row RowContext) string {
	if b := strings.TrimSpace(row.Brand); b != "" {
		return b
	}
	return Regex{}.Resolve(row)
}

var leadingWord = regexp.MustCompile(`^[\p{L}\p{N} \-]+`)

// Regex takes the leading run of letters (any script), digits, spaces and
// hyphens from the title, falling back to the first word.
type Regex struct{}

func (Regex) Resolve(row RowContext) string {
	title := strings.TrimSpace(row.Title)
	if title == "" {
		return Unknown
	}
	if m := strings.Trim(leadingWord.FindString(title), " -"); m != "" {
		return m
	}
	return strings.Fields(title)[0]
}
