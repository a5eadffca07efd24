package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultSearchURL is a Bing image search results page. {query} is replaced
// with the query-escaped identifier.
const DefaultSearchURL = "https://www.bing.com/images/search?q={query}&form=HDRSC2&first=1"

var (
	// ErrSearchDisabled is returned when no search URL template is configured.
	ErrSearchDisabled = errors.New("image search disabled")

	// ErrEmptyQuery is returned for blank identifiers.
	ErrEmptyQuery = errors.New("empty search query")
)

// SearchResult carries the first image found for a query, or why none was.
type SearchResult struct {
	URL string
	Err error
}

// Searcher looks up a product image on an HTML image search page.
type Searcher struct {
	template  string
	userAgent string
	client    *http.Client
}

// SearcherConfig holds configuration for creating a Searcher.
type SearcherConfig struct {
	// URLTemplate must contain "{query}". Empty disables search.
	URLTemplate string
	UserAgent   string
	Timeout     time.Duration

	// Client replaces the default HTTP client.
	Client *http.Client
}

// NewSearcher creates a Searcher.
func NewSearcher(cfg SearcherConfig) *Searcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Searcher{
		template:  strings.TrimSpace(cfg.URLTemplate),
		userAgent: cfg.UserAgent,
		client:    client,
	}
}

// Enabled reports whether a search URL template is configured.
func (s *Searcher) Enabled() bool {
	return s != nil && s.template != ""
}

// SearchURL renders the search page URL for query.
func (s *Searcher) SearchURL(query string) string {
	return strings.ReplaceAll(s.template, "{query}", url.QueryEscape(strings.TrimSpace(query)))
}

// Search returns the first absolute http(s) image URL on the results page.
// Bing's full-size "murl" metadata is preferred over thumbnails.
func (s *Searcher) Search(ctx context.Context, query string) SearchResult {
	if !s.Enabled() {
		return SearchResult{Err: ErrSearchDisabled}
	}
	if strings.TrimSpace(query) == "" {
		return SearchResult{Err: ErrEmptyQuery}
	}

	target := s.SearchURL(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return SearchResult{Err: fmt.Errorf("build search request: %w", err)}
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return SearchResult{Err: fmt.Errorf("search %q: %w", query, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return SearchResult{Err: fmt.Errorf("search %q: unexpected status %d", query, resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return SearchResult{Err: fmt.Errorf("parse search page: %w", err)}
	}
	return SearchResult{URL: FirstImage(doc)}
}

// FirstImage picks the first usable image from a results document: a Bing
// result anchor's "murl", then an <img> src or data-src.
func FirstImage(doc *goquery.Document) string {
	var found string
	doc.Find("a[m]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var meta struct {
			MURL string `json:"murl"`
		}
		if raw, ok := sel.Attr("m"); ok && json.Unmarshal([]byte(raw), &meta) == nil && IsHTTP(meta.MURL) {
			found = meta.MURL
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		for _, attr := range []string{"src", "data-src"} {
			if v, ok := sel.Attr(attr); ok && IsHTTP(v) {
				found = strings.TrimSpace(v)
				return false
			}
		}
		return true
	})
	return found
}

// SearchQuery picks the identifier to search by: barcode, then SKU, then title.
func SearchQuery(barcode, sku, title string) string {
	for _, v := range []string{barcode, sku, title} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
