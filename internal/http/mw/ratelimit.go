package mw

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/httprate"

	"github.com/jmylchreest/refyne-catalog/internal/constants"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// IPRequestsPerMinute applies to every request, per client IP.
	IPRequestsPerMinute int

	// UploadsPerMinute applies to requests whose path contains one of
	// UploadPatterns, per client IP. 0 means unlimited.
	UploadsPerMinute int
	UploadPatterns   []string
}

// DefaultRateLimitConfig returns defaults from the constants package.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		IPRequestsPerMinute: constants.GlobalIPRateLimitPerMinute,
		UploadsPerMinute:    constants.DefaultUploadsPerMinute,
		UploadPatterns:      []string{"/catalog/convert", "/catalog/inspect"},
	}
}

// RateLimitByIP returns a middleware that rate limits every request by IP.
func RateLimitByIP(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(tooManyRequests),
	)
}

// RateLimitUploads limits upload endpoints separately from the rest of the API,
// since each upload may fan out into many LLM and image requests.
func RateLimitUploads(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.UploadsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := httprate.NewRateLimiter(
		cfg.UploadsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			ip, err := httprate.KeyByIP(r)
			return "upload:" + ip, err
		}),
		httprate.WithLimitHandler(tooManyRequests),
	)

	return func(next http.Handler) http.Handler {
		limited := limiter.Handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, pattern := range cfg.UploadPatterns {
				if strings.Contains(r.URL.Path, pattern) {
					limited.ServeHTTP(w, r)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(&huma.ErrorModel{
		Title:  http.StatusText(http.StatusTooManyRequests),
		Status: http.StatusTooManyRequests,
		Detail: "rate limit exceeded, retry later",
	})
}
