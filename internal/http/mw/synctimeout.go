package mw

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ExtendWriteDeadline lets requests whose path contains one of patterns write
// their response for up to d plus a short buffer, past the server's
// WriteTimeout. Conversions hold the connection while every row is enriched.
func ExtendWriteDeadline(d time.Duration, patterns ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, pattern := range patterns {
				if !strings.Contains(r.URL.Path, pattern) {
					continue
				}
				rc := http.NewResponseController(w)
				if err := rc.SetWriteDeadline(time.Now().Add(d + 30*time.Second)); err != nil {
					// Recorders and some proxies do not support deadlines.
					slog.Debug("write deadline not extended", "path", r.URL.Path, "error", err)
				}
				break
			}
			next.ServeHTTP(w, r)
		})
	}
}
