package content

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jmylchreest/refyne-catalog/internal/brand"
)

const (
	MaxSEOTitle       = 70
	MaxSEODescription = 320
)

// SEOTitle returns "<brand> <title> | <category>", leaving out the brand when
// the title already names it and the category when it does not fit.
func SEOTitle(title, brandName, category string) string {
	name := productName(title, brandName)
	if c := strings.TrimSpace(category); c != "" {
		withCategory := name + " | " + c
		if utf8.RuneCountInString(withCategory) <= MaxSEOTitle {
			return withCategory
		}
	}
	return Truncate(name, MaxSEOTitle)
}

// SEODescription returns a one-sentence summary of the product, cut at a
// word boundary to MaxSEODescription runes.
func SEODescription(title, brandName, category, origin string) string {
	var b strings.Builder
	b.WriteString(productName(title, brandName))
	if c := strings.TrimSpace(category); c != "" {
		b.WriteString(" from our ")
		b.WriteString(strings.ToLower(c))
		b.WriteString(" range")
	}
	if o := strings.TrimSpace(origin); o != "" {
		b.WriteString(", made in ")
		b.WriteString(o)
	}
	b.WriteString(". Order online with fast delivery.")
	return Truncate(b.String(), MaxSEODescription)
}

func productName(title, brandName string) string {
	title = strings.Join(strings.Fields(title), " ")
	brandName = strings.TrimSpace(brandName)
	if brandName == "" || brandName == brand.Unknown ||
		strings.Contains(strings.ToLower(title), strings.ToLower(brandName)) {
		return title
	}
	return strings.TrimSpace(brandName + " " + title)
}

// Truncate shortens s to at most max runes, cutting at the last space when
// there is one and dropping trailing separators.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	cut := string([]rune(s)[:max])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:-|")
}

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// BodyHTML wraps each blank-line separated paragraph of text in <p>, with the
// text HTML-escaped.
func BodyHTML(text string) string {
	var b strings.Builder
	for _, para := range paragraphBreak.Split(strings.TrimSpace(text), -1) {
		para = strings.Join(strings.Fields(para), " ")
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(para))
		b.WriteString("</p>")
	}
	return b.String()
}
