// Package images finds product images: by scraping the product's source page,
// then by searching for the product identifier, then by the configured
// fallback policy.
package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// PlaceholderURL is used by PolicyPlaceholder when nothing else is found.
const PlaceholderURL = "https://cdn.shopify.com/s/files/1/0533/2089/files/placeholder-images-image_large.png"

// Source records which strategy produced an ImageSet.
type Source string

const (
	SourceScrape      Source = "scrape"
	SourceSearch      Source = "search"
	SourcePlaceholder Source = "placeholder"
	SourceNone        Source = "none"
)

// ImageSet is the ordered, distinct image URLs of one product.
type ImageSet struct {
	URLs   []string
	Source Source

	// ScrapeErr and SearchErr keep the reasons a strategy came up empty.
	ScrapeErr error
	SearchErr error
}

// Empty reports whether the set holds no images.
func (s ImageSet) Empty() bool {
	return len(s.URLs) == 0
}

// Policy decides what happens to a product without images.
type Policy string

const (
	// PolicyPlaceholder substitutes a fixed image so every product is kept.
	PolicyPlaceholder Policy = "placeholder"

	// PolicySkip drops products without images from the output.
	PolicySkip Policy = "skip"
)

var ErrUnknownPolicy = errors.New("unknown image policy")

// ParsePolicy parses a policy name. An empty string means PolicyPlaceholder.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyPlaceholder, nil
	case PolicyPlaceholder, PolicySkip:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: placeholder, skip)", ErrUnknownPolicy, s)
	}
}

// Apply fills an empty set according to the policy. A non-empty set is
// returned unchanged.
func (p Policy) Apply(set ImageSet, placeholder string) ImageSet {
	if !set.Empty() {
		return set
	}
	if p == PolicySkip {
		set.Source = SourceNone
		return set
	}
	if placeholder == "" {
		placeholder = PlaceholderURL
	}
	set.URLs = []string{placeholder}
	set.Source = SourcePlaceholder
	return set
}

// PageScraper is implemented by *Scraper.
type PageScraper interface {
	Scrape(ctx context.Context, link string) ScrapeResult
}

// ImageSearcher is implemented by *Searcher.
type ImageSearcher interface {
	Search(ctx context.Context, query string) SearchResult
}

// Resolver runs the scrape and search strategies in order.
type Resolver struct {
	scraper  PageScraper
	searcher ImageSearcher
	logger   *slog.Logger
}

// NewResolver creates a Resolver. A nil searcher disables search.
func NewResolver(scraper PageScraper, searcher ImageSearcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if s, ok := searcher.(*Searcher); ok && !s.Enabled() {
		searcher = nil
	}
	return &Resolver{scraper: scraper, searcher: searcher, logger: logger.With("component", "images")}
}

// Resolve scrapes link when it is an absolute http(s) URL and, when that
// yields nothing, searches for identifier. The returned set may be empty;
// callers apply a Policy. Resolve never fails.
func (r *Resolver) Resolve(ctx context.Context, link, identifier string) ImageSet {
	set := ImageSet{Source: SourceNone}

	if r.scraper != nil && IsHTTP(link) {
		res := r.scraper.Scrape(ctx, link)
		if res.Err != nil {
			set.ScrapeErr = res.Err
			r.logger.Warn("page scrape failed", "link", link, "error", res.Err)
		}
		if len(res.URLs) > 0 {
			set.URLs = res.URLs
			set.Source = SourceScrape
			return set
		}
	}

	if r.searcher == nil || strings.TrimSpace(identifier) == "" {
		return set
	}
	if ctx.Err() != nil {
		set.SearchErr = ctx.Err()
		return set
	}

	res := r.searcher.Search(ctx, identifier)
	if res.Err != nil {
		set.SearchErr = res.Err
		r.logger.Warn("image search failed", "query", identifier, "error", res.Err)
		return set
	}
	if res.URL != "" {
		set.URLs = []string{res.URL}
		set.Source = SourceSearch
	}
	return set
}
