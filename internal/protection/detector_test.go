package protection

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestDetector_DetectFromResponse(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name         string
		statusCode   int
		headers      http.Header
		body         string
		wantDetected bool
		wantSignal   SignalType
	}{
		{
			name:         "normal product page",
			statusCode:   200,
			body:         `<html><body><main><h1>Soap</h1><img src="/a.jpg"></main></body></html>`,
			wantDetected: false,
		},
		{
			name:         "403 forbidden",
			statusCode:   403,
			body:         "Forbidden",
			wantDetected: true,
			wantSignal:   SignalAccessDenied,
		},
		{
			name:         "503 challenge",
			statusCode:   503,
			body:         "Service Unavailable",
			wantDetected: true,
			wantSignal:   SignalCloudflare,
		},
		{
			name:         "429 rate limited",
			statusCode:   429,
			wantDetected: true,
			wantSignal:   SignalRateLimited,
		},
		{
			name:         "cloudflare header",
			statusCode:   200,
			headers:      http.Header{"Cf-Ray": {"abc"}, "Cf-Mitigated": {"challenge"}},
			body:         "<html></html>",
			wantDetected: true,
			wantSignal:   SignalCloudflare,
		},
		{
			name:         "cloudflare body",
			statusCode:   200,
			body:         "<title>Just a moment...</title>",
			wantDetected: true,
			wantSignal:   SignalCloudflare,
		},
		{
			name:         "captcha",
			statusCode:   200,
			body:         `<div class="g-recaptcha" data-sitekey="x"></div>`,
			wantDetected: true,
			wantSignal:   SignalCaptcha,
		},
		{
			name:         "access denied text",
			statusCode:   200,
			body:         "<h1>Access Denied</h1>",
			wantDetected: true,
			wantSignal:   SignalAccessDenied,
		},
		{
			name:         "empty SPA root",
			statusCode:   200,
			body:         `<html><body><div id="root"></div><script src="/app.js"></script></body></html>`,
			wantDetected: true,
			wantSignal:   SignalJavaScriptRequired,
		},
		{
			name:         "empty body",
			statusCode:   200,
			body:         "  ",
			wantDetected: true,
			wantSignal:   SignalEmptyContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := d.DetectFromResponse(tt.statusCode, tt.headers, []byte(tt.body))
			if result.Detected != tt.wantDetected {
				t.Errorf("Detected = %v, want %v (%+v)", result.Detected, tt.wantDetected, result)
			}
			if result.Signal != tt.wantSignal {
				t.Errorf("Signal = %q, want %q", result.Signal, tt.wantSignal)
			}
		})
	}
}

func TestDetectionResult_Err(t *testing.T) {
	if err := (DetectionResult{}).Err("https://shop.test/p"); err != nil {
		t.Errorf("Err() = %v, want nil for undetected result", err)
	}

	r := DetectionResult{Detected: true, Signal: SignalCaptcha, Description: "captcha challenge"}
	err := r.Err("https://shop.test/p")

	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("Err() = %v, want *BlockedError", err)
	}
	if blocked.Result.Signal != SignalCaptcha {
		t.Errorf("Signal = %q, want %q", blocked.Result.Signal, SignalCaptcha)
	}
	if !strings.Contains(err.Error(), "https://shop.test/p") || !strings.Contains(err.Error(), "captcha") {
		t.Errorf("Error() = %q", err.Error())
	}
}
