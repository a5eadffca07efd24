// Package protection recognises bot protection and challenge pages, so a
// failed page scrape can report why it found nothing.
package protection

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// SignalType identifies the type of protection detected.
type SignalType string

const (
	SignalNone               SignalType = ""
	SignalCloudflare         SignalType = "cloudflare"
	SignalCaptcha            SignalType = "captcha"
	SignalAccessDenied       SignalType = "access_denied"
	SignalRateLimited        SignalType = "rate_limited"
	SignalEmptyContent       SignalType = "empty_content"
	SignalJavaScriptRequired SignalType = "javascript_required"
)

// DetectionResult contains the result of protection detection.
type DetectionResult struct {
	Detected bool
	Signal   SignalType

	// Confidence is a score from 0-100.
	Confidence int

	Description string
}

// Detector analyzes HTTP responses for bot protection signals.
type Detector struct{}

// NewDetector creates a new protection detector.
func NewDetector() *Detector {
	return &Detector{}
}

// DetectFromResponse analyzes an HTTP response for protection signals.
// Status code wins over headers, headers over body content.
func (d *Detector) DetectFromResponse(statusCode int, headers http.Header, body []byte) DetectionResult {
	if result := d.checkStatusCode(statusCode); result.Detected {
		return result
	}
	if result := d.checkHeaders(headers); result.Detected {
		return result
	}
	return d.checkBodyContent(body)
}

func (d *Detector) checkStatusCode(statusCode int) DetectionResult {
	switch statusCode {
	case http.StatusForbidden:
		return DetectionResult{
			Detected:    true,
			Signal:      SignalAccessDenied,
			Confidence:  90,
			Description: "access denied (HTTP 403)",
		}
	case http.StatusServiceUnavailable:
		return DetectionResult{
			Detected:    true,
			Signal:      SignalCloudflare,
			Confidence:  70,
			Description: "service unavailable (HTTP 503), likely a challenge page",
		}
	case http.StatusTooManyRequests:
		return DetectionResult{
			Detected:    true,
			Signal:      SignalRateLimited,
			Confidence:  95,
			Description: "rate limited (HTTP 429)",
		}
	}
	return DetectionResult{}
}

func (d *Detector) checkHeaders(headers http.Header) DetectionResult {
	if headers == nil {
		return DetectionResult{}
	}
	if headers.Get("cf-ray") != "" && headers.Get("cf-mitigated") == "challenge" {
		return DetectionResult{
			Detected:    true,
			Signal:      SignalCloudflare,
			Confidence:  95,
			Description: "Cloudflare challenge",
		}
	}
	return DetectionResult{}
}

// bodyPatterns are checked in order; the first hit wins.
var bodyPatterns = []struct {
	signal      SignalType
	confidence  int
	description string
	patterns    []string
}{
	{
		signal:      SignalCloudflare,
		confidence:  90,
		description: "Cloudflare challenge page",
		patterns: []string{
			"cf-browser-verification", "challenge-platform", "cf_chl_opt", "_cf_chl",
			"checking your browser", "just a moment...", "attention required! | cloudflare",
		},
	},
	{
		signal:      SignalCaptcha,
		confidence:  95,
		description: "captcha challenge",
		patterns:    []string{"g-recaptcha", "grecaptcha", "h-captcha", "hcaptcha", "cf-turnstile"},
	},
	{
		signal:      SignalAccessDenied,
		confidence:  85,
		description: "access denied message",
		patterns: []string{
			"access denied", "access to this page has been denied", "request blocked",
			"bot detected", "please verify you are human", "are you a robot",
		},
	},
	{
		signal:      SignalJavaScriptRequired,
		confidence:  80,
		description: "page renders its content with JavaScript",
		patterns:    []string{"javascript is required", "please enable javascript", "this site requires javascript"},
	},
}

var spaRootPatterns = []*regexp.Regexp{
	regexp.MustCompile(`<div\s+id=["'](?:root|app|__next|__nuxt)["'][^>]*>\s*</div>`),
	regexp.MustCompile(`<app-root[^>]*>\s*</app-root>`),
}

func (d *Detector) checkBodyContent(body []byte) DetectionResult {
	if len(strings.TrimSpace(string(body))) == 0 {
		return DetectionResult{
			Detected:    true,
			Signal:      SignalEmptyContent,
			Confidence:  80,
			Description: "empty response body",
		}
	}

	content := string(body)
	lower := strings.ToLower(content)
	for _, group := range bodyPatterns {
		for _, p := range group.patterns {
			if strings.Contains(lower, p) {
				return DetectionResult{
					Detected:    true,
					Signal:      group.signal,
					Confidence:  group.confidence,
					Description: group.description,
				}
			}
		}
	}

	for _, pattern := range spaRootPatterns {
		if pattern.MatchString(content) {
			return DetectionResult{
				Detected:    true,
				Signal:      SignalJavaScriptRequired,
				Confidence:  90,
				Description: "single-page app with an empty root element",
			}
		}
	}

	return DetectionResult{}
}

// BlockedError reports a page that answered with a protection signal.
type BlockedError struct {
	URL    string
	Result DetectionResult
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s blocked scraping (%s): %s", e.URL, e.Result.Signal, e.Result.Description)
}

// Err returns a *BlockedError for a detected result and nil otherwise.
func (r DetectionResult) Err(url string) error {
	if !r.Detected {
		return nil
	}
	return &BlockedError{URL: url, Result: r}
}
