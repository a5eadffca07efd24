package brand

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxCandidateTokens is how many leading title tokens a candidate may span.
const maxCandidateTokens = 3

type candidate struct {
	text  string // first-seen spelling
	key   string // lowercased
	count int
	runes int
}

// Corpus infers brands from the titles of a whole upload. Every title
// contributes the prefixes ending at its first, second and third token; each
// candidate scores the number of titles starting with it. A title resolves to
// its best-ranked prefix candidate.
//
// A Corpus is read-only after NewCorpus and safe for concurrent use.
type Corpus struct {
	ranked []candidate
	rank   map[string]int
}

// NewCorpus builds the candidate ranking from titles.
func NewCorpus(titles []string) *Corpus {
	lowered := make([]string, 0, len(titles))
	byKey := make(map[string]*candidate)
	var order []string

	for _, raw := range titles {
		title := strings.TrimSpace(raw)
		if title == "" {
			continue
		}
		lowered = append(lowered, strings.ToLower(title))
		for _, prefix := range tokenPrefixes(title, maxCandidateTokens) {
			key := strings.ToLower(prefix)
			if _, ok := byKey[key]; ok {
				continue
			}
			byKey[key] = &candidate{text: prefix, key: key, runes: utf8.RuneCountInString(prefix)}
			order = append(order, key)
		}
	}

	sort.Strings(lowered)
	ranked := make([]candidate, 0, len(order))
	for _, key := range order {
		c := byKey[key]
		c.count = countPrefixed(lowered, key)
		ranked = append(ranked, *c)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.count != b.count {
			return a.count > b.count
		}
		if a.runes != b.runes {
			return a.runes > b.runes
		}
		return a.key < b.key
	})

	rank := make(map[string]int, len(ranked))
	for i, c := range ranked {
		rank[c.key] = i
	}
	return &Corpus{ranked: ranked, rank: rank}
}

// Resolve returns the best-ranked candidate that is a case-insensitive prefix
// of the title, or Unknown.
func (c *Corpus) Resolve(row RowContext) string {
	title := strings.ToLower(strings.TrimSpace(row.Title))
	best := -1
	for i := range title {
		if i == 0 {
			continue
		}
		if r, ok := c.rank[title[:i]]; ok && (best < 0 || r < best) {
			best = r
		}
	}
	if r, ok := c.rank[title]; ok && (best < 0 || r < best) {
		best = r
	}
	if best < 0 {
		return Unknown
	}
	return c.ranked[best].text
}

// Candidates returns up to n top-ranked candidates with their scores.
func (c *Corpus) Candidates(n int) []Candidate {
	if n <= 0 || n > len(c.ranked) {
		n = len(c.ranked)
	}
	out := make([]Candidate, n)
	for i := 0; i < n; i++ {
		out[i] = Candidate{Text: c.ranked[i].text, Count: c.ranked[i].count}
	}
	return out
}

// Candidate is a scored brand candidate.
type Candidate struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// countPrefixed counts the sorted strings that start with prefix.
func countPrefixed(sorted []string, prefix string) int {
	lo := sort.SearchStrings(sorted, prefix)
	hi := lo
	for hi < len(sorted) && strings.HasPrefix(sorted[hi], prefix) {
		hi++
	}
	return hi - lo
}

// tokenPrefixes returns the prefixes of title ending at each of its first n
// tokens, separators between tokens included.
func tokenPrefixes(title string, n int) []string {
	var out []string
	inToken := false
	for i, r := range title {
		if isDelimiter(r) {
			if inToken {
				out = append(out, title[:i])
				if len(out) == n {
					return out
				}
			}
			inToken = false
			continue
		}
		inToken = true
	}
	if inToken {
		out = append(out, title)
	}
	return out
}

func isDelimiter(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case ',', ';', ':', '/', '|', '(', ')', '[', ']', '{', '}', '"', '«', '»', '+', '*':
		return true
	}
	return false
}
