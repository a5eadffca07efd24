// Package constants defines centralized limits for catalogue conversions.
package constants

import "time"

// Row concurrency limits.
const (
	// DefaultConcurrency is the number of rows enriched in parallel.
	DefaultConcurrency = 3

	// MaxConcurrency caps CATALOG_CONCURRENCY and per-request overrides.
	MaxConcurrency = 16
)

// Network timeouts.
const (
	// DefaultFetchTimeout bounds each page scrape and image search request.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultConvertTimeout bounds a whole /convert request, LLM calls included.
	DefaultConvertTimeout = 10 * time.Minute

	// DefaultRequestTimeout applies to every other endpoint.
	DefaultRequestTimeout = 30 * time.Second
)

// DefaultMaxUploadBytes limits the size of an uploaded spreadsheet.
const DefaultMaxUploadBytes int64 = 20 << 20

// ClampConcurrency maps n into [1, MaxConcurrency]. Zero or negative values
// mean DefaultConcurrency.
func ClampConcurrency(n int) int {
	switch {
	case n <= 0:
		return DefaultConcurrency
	case n > MaxConcurrency:
		return MaxConcurrency
	default:
		return n
	}
}

// Cache-Control max-age values for public GET endpoints.
const (
	CacheMaxAgeShort = 30 * time.Second
	CacheMaxAgeLong  = 1 * time.Hour
)

// DefaultUploadsPerMinute limits spreadsheet uploads per client IP.
const DefaultUploadsPerMinute = 20

// GlobalIPRateLimitPerMinute applies to every request, per client IP.
const GlobalIPRateLimitPerMinute = 100
