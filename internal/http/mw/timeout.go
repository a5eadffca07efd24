package mw

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"
)

// panicWithStack carries a handler panic and its stack across goroutines.
type panicWithStack struct {
	value any
	stack []byte
}

// TimeoutConfig defines timeout behavior for different path patterns.
type TimeoutConfig struct {
	// Default applies to every path not matched below.
	Default time.Duration

	// Extended applies to uploads that run the enrichment pipeline.
	Extended time.Duration

	// ExtendedPatterns are path substrings that get Extended (e.g. "/catalog/convert").
	ExtendedPatterns []string

	// SkipPatterns are path substrings that get no timeout at all.
	SkipPatterns []string
}

// TimeoutFor returns the timeout for path and whether one applies.
func (c TimeoutConfig) TimeoutFor(path string) (time.Duration, bool) {
	for _, pattern := range c.SkipPatterns {
		if strings.Contains(path, pattern) {
			return 0, false
		}
	}
	for _, pattern := range c.ExtendedPatterns {
		if strings.Contains(path, pattern) {
			return c.Extended, true
		}
	}
	return c.Default, true
}

// Timeout returns a middleware that cancels the request context after the
// path's timeout and answers 504 if the handler has not finished by then.
// Handlers see the deadline through r.Context(), so a conversion stops
// queuing rows once it expires.
func Timeout(cfg TimeoutConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			timeout, ok := cfg.TimeoutFor(r.URL.Path)
			if !ok || timeout <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})
			panicChan := make(chan *panicWithStack, 1)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicChan <- &panicWithStack{value: p, stack: debug.Stack()}
					}
				}()
				next.ServeHTTP(w, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
				return
			case p := <-panicChan:
				panic(fmt.Sprintf("%v\n\nOriginal stack trace:\n%s", p.value, p.stack))
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					w.WriteHeader(http.StatusGatewayTimeout)
				}
			}
		})
	}
}
