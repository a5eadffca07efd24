package mw

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jmylchreest/refyne-catalog/internal/constants"
)

// CachePolicy defines caching behavior for a route pattern.
type CachePolicy struct {
	// Pattern is matched as a path prefix or substring.
	Pattern      string
	CacheControl string
}

// CacheConfig holds the cache middleware configuration.
type CacheConfig struct {
	// Policies are matched in order; the first hit wins.
	Policies []CachePolicy

	// DefaultPolicy applies when nothing matches. Empty sets no header.
	DefaultPolicy string
}

// DefaultCacheConfig caches the static catalogue metadata publicly and keeps
// probes and uploads out of every cache.
func DefaultCacheConfig() CacheConfig {
	shortSecs := int(constants.CacheMaxAgeShort.Seconds())
	longSecs := int(constants.CacheMaxAgeLong.Seconds())

	return CacheConfig{
		DefaultPolicy: "no-store",
		Policies: []CachePolicy{
			{Pattern: "/api/v1/health", CacheControl: fmt.Sprintf("public, max-age=%d", shortSecs)},
			{Pattern: "/api/v1/catalog/schema", CacheControl: fmt.Sprintf("public, max-age=%d, stale-while-revalidate=60", longSecs)},
			{Pattern: "/healthz", CacheControl: "no-store"},
			{Pattern: "/openapi", CacheControl: fmt.Sprintf("public, max-age=%d", longSecs)},
		},
	}
}

// Cache returns middleware that sets Cache-Control headers based on route patterns.
// Anything other than GET or HEAD is "no-store".
func Cache(cfg CacheConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				w.Header().Set("Cache-Control", "no-store")
				next.ServeHTTP(w, r)
				return
			}

			for _, policy := range cfg.Policies {
				if matchesPattern(r.URL.Path, policy.Pattern) {
					w.Header().Set("Cache-Control", policy.CacheControl)
					next.ServeHTTP(w, r)
					return
				}
			}

			if cfg.DefaultPolicy != "" {
				w.Header().Set("Cache-Control", cfg.DefaultPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func matchesPattern(path, pattern string) bool {
	return strings.HasPrefix(path, pattern) || strings.Contains(path, pattern)
}
