package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/refyne-catalog/internal/protection"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ErrInvalidLink is reported for source links that are not absolute http(s) URLs.
var ErrInvalidLink = errors.New("not an absolute http(s) link")

// imageAttributes are read from every <img>, in order.
var imageAttributes = []string{"src", "data-src", "data-lazy-src", "data-original"}

// ScrapeResult separates "the page had no usable images" (Err nil, URLs
// empty) from "the page could not be fetched" (Err set).
type ScrapeResult struct {
	URLs []string
	Err  error
}

// Scraper collects product image URLs from a page with a single colly visit.
type Scraper struct {
	userAgent string
	timeout   time.Duration
	transport http.RoundTripper
	detector  *protection.Detector
	logger    *slog.Logger
}

// ScraperConfig holds configuration for creating a Scraper.
type ScraperConfig struct {
	UserAgent string
	Timeout   time.Duration

	// Transport replaces the default HTTP transport (tests, proxies).
	Transport http.RoundTripper

	Logger *slog.Logger
}

// NewScraper creates a scraper. Zero values take the package defaults.
func NewScraper(cfg ScraperConfig) *Scraper {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Scraper{
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		transport: cfg.Transport,
		detector:  protection.NewDetector(),
		logger:    cfg.Logger.With("component", "scraper"),
	}
}

// Scrape fetches link and returns the .jpg/.jpeg/.png images it references,
// normalized to absolute URLs and de-duplicated in page order. It never
// panics; every failure is reported through ScrapeResult.Err.
func (s *Scraper) Scrape(ctx context.Context, link string) (result ScrapeResult) {
	defer func() {
		if r := recover(); r != nil {
			result = ScrapeResult{Err: fmt.Errorf("scrape %s: panic: %v", link, r)}
		}
	}()

	link = strings.TrimSpace(link)
	if !IsHTTP(link) {
		return ScrapeResult{Err: fmt.Errorf("scrape %q: %w", link, ErrInvalidLink)}
	}

	c := colly.NewCollector(
		colly.UserAgent(s.userAgent),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	if s.transport != nil {
		c.WithTransport(s.transport)
	}
	c.SetRequestTimeout(s.timeout)

	var found dedupe
	c.OnHTML("img", func(e *colly.HTMLElement) {
		for _, attr := range imageAttributes {
			abs, ok := Normalize(e.Attr(attr), link)
			if ok && HasImageExtension(abs) {
				found.add(abs)
			}
		}
	})

	var (
		statusCode int
		headers    http.Header
		body       []byte
	)
	capture := func(r *colly.Response) {
		statusCode = r.StatusCode
		body = r.Body
		if r.Headers != nil {
			headers = *r.Headers
		}
	}
	c.OnResponse(capture)
	c.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			capture(r)
		}
	})

	if err := c.Visit(link); err != nil {
		if blocked := s.detector.DetectFromResponse(statusCode, headers, body).Err(link); blocked != nil && statusCode != 0 {
			return ScrapeResult{Err: blocked}
		}
		return ScrapeResult{Err: fmt.Errorf("scrape %s: %w", link, err)}
	}

	if len(found.urls) == 0 {
		if blocked := s.detector.DetectFromResponse(statusCode, headers, body).Err(link); blocked != nil {
			s.logger.Debug("page looks protected", "url", link, "error", blocked)
			return ScrapeResult{Err: blocked}
		}
	}
	return ScrapeResult{URLs: found.urls}
}
