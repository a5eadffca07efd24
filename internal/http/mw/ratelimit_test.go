package mw

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/refyne-catalog/internal/constants"
)

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()

	if cfg.IPRequestsPerMinute != constants.GlobalIPRateLimitPerMinute {
		t.Errorf("IPRequestsPerMinute = %d, want %d", cfg.IPRequestsPerMinute, constants.GlobalIPRateLimitPerMinute)
	}
	if cfg.UploadsPerMinute != constants.DefaultUploadsPerMinute {
		t.Errorf("UploadsPerMinute = %d, want %d", cfg.UploadsPerMinute, constants.DefaultUploadsPerMinute)
	}
	if len(cfg.UploadPatterns) != 2 {
		t.Errorf("UploadPatterns length = %d, want 2", len(cfg.UploadPatterns))
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitUploads(t *testing.T) {
	cfg := RateLimitConfig{UploadsPerMinute: 2, UploadPatterns: []string{"/catalog/convert"}}
	handler := RateLimitUploads(cfg)(okHandler())

	do := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		return rec
	}

	for i := range 2 {
		if rec := do("/api/v1/catalog/convert"); rec.Code != http.StatusOK {
			t.Fatalf("upload %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	rec := do("/api/v1/catalog/convert")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third upload: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want application/problem+json", ct)
	}
	var problem huma.ErrorModel
	if err := json.NewDecoder(rec.Body).Decode(&problem); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	if problem.Status != http.StatusTooManyRequests {
		t.Errorf("problem status = %d, want %d", problem.Status, http.StatusTooManyRequests)
	}

	// Other paths are not counted against the upload limit.
	if rec := do("/api/v1/health"); rec.Code != http.StatusOK {
		t.Errorf("health: status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRateLimitUploads_Unlimited(t *testing.T) {
	handler := RateLimitUploads(RateLimitConfig{UploadPatterns: []string{"/catalog/convert"}})(okHandler())

	for i := range 5 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/catalog/convert", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}
}

func TestRateLimitByIP(t *testing.T) {
	handler := RateLimitByIP(1)(okHandler())

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if first.Code != http.StatusOK {
		t.Errorf("first: status = %d, want %d", first.Code, http.StatusOK)
	}
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second: status = %d, want %d", second.Code, http.StatusTooManyRequests)
	}
}
