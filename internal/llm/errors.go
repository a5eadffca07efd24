package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

// Error categories.
const (
	CategoryRateLimit     = "rate_limit"
	CategoryAuth          = "auth"
	CategoryNetwork       = "network"
	CategoryProvider      = "provider"
	CategoryEmptyResponse = "empty_response"
)

var (
	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidAPIKey indicates the API key is missing, invalid or expired.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrNetwork indicates the provider could not be reached.
	ErrNetwork = errors.New("network error")

	// ErrProviderError indicates a general provider error.
	ErrProviderError = errors.New("provider error")

	// ErrEmptyResponse indicates the provider answered without any text.
	ErrEmptyResponse = errors.New("empty response")

	// ErrUnknownProvider is returned by New for unsupported provider names.
	ErrUnknownProvider = errors.New("unknown LLM provider")

	// ErrMissingAPIKey is returned by New when a hosted provider has no key.
	ErrMissingAPIKey = errors.New("missing LLM API key")
)

// LLMError represents a failed generation with a stable category.
type LLMError struct {
	// Classified sentinel (ErrRateLimited, ErrInvalidAPIKey, ...)
	Err error

	// Cause is the error returned by the SDK or transport
	Cause error

	// HTTP status code (if applicable)
	StatusCode int

	Provider string
	Model    string

	// Category is one of the Category* constants
	Category string

	// UserMessage is a short explanation safe to show to the caller
	UserMessage string

	// Retryable marks errors a later attempt may not hit. The pipeline does
	// not retry; the flag is reported alongside row failures.
	Retryable bool
}

func (e *LLMError) Error() string {
	msg := e.UserMessage
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "unknown LLM error"
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *LLMError) Unwrap() []error {
	var errs []error
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// ClassifyError turns an SDK or transport error into an LLMError. The status
// code takes precedence; the message is inspected when it is zero or
// inconclusive.
func ClassifyError(err error, provider, model string, statusCode int) *LLMError {
	if err == nil {
		return nil
	}

	var already *LLMError
	if errors.As(err, &already) {
		return already
	}

	llmErr := &LLMError{
		Cause:      err,
		StatusCode: statusCode,
		Provider:   provider,
		Model:      model,
	}

	switch statusCode {
	case http.StatusTooManyRequests:
		return setCategory(llmErr, ErrRateLimited, CategoryRateLimit, "Rate limit exceeded.", true)
	case http.StatusUnauthorized, http.StatusForbidden:
		return setCategory(llmErr, ErrInvalidAPIKey, CategoryAuth, "Invalid API key. Please check the LLM configuration.", false)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusInternalServerError:
		return setCategory(llmErr, ErrProviderError, CategoryProvider, "The LLM provider is experiencing issues.", true)
	}

	return classifyByErrorMessage(llmErr, err)
}

func classifyByErrorMessage(llmErr *LLMError, err error) *LLMError {
	errStr := strings.ToLower(err.Error())

	var netErr net.Error
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return setCategory(llmErr, ErrEmptyResponse, CategoryEmptyResponse, "The model returned an empty response.", true)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return setCategory(llmErr, ErrNetwork, CategoryNetwork, "Request to the LLM provider was interrupted.", true)
	case errors.As(err, &netErr):
		return setCategory(llmErr, ErrNetwork, CategoryNetwork, "Could not reach the LLM provider.", true)
	case strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "ratelimit"):
		return setCategory(llmErr, ErrRateLimited, CategoryRateLimit, "Rate limit exceeded.", true)
	case strings.Contains(errStr, "invalid api key") || strings.Contains(errStr, "authentication") || strings.Contains(errStr, "unauthorized"):
		return setCategory(llmErr, ErrInvalidAPIKey, CategoryAuth, "Invalid API key. Please check the LLM configuration.", false)
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") || strings.Contains(errStr, "timeout"):
		return setCategory(llmErr, ErrNetwork, CategoryNetwork, "Could not reach the LLM provider.", true)
	default:
		return setCategory(llmErr, ErrProviderError, CategoryProvider, "LLM request failed.", false)
	}
}

func setCategory(llmErr *LLMError, sentinel error, category, message string, retryable bool) *LLMError {
	llmErr.Err = sentinel
	llmErr.Category = category
	llmErr.UserMessage = message
	llmErr.Retryable = retryable
	return llmErr
}

// Category returns the LLMError category of err, or "" when err is not one.
func Category(err error) string {
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr.Category
	}
	return ""
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}
	return false
}
