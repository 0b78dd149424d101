package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Sentinel errors for provider failures.
var (
	ErrContentBlocked = errors.New("content blocked by safety filters")
	ErrEmptyResponse  = errors.New("empty response")
)

// ErrorCode represents a provider error code.
type ErrorCode string

const (
	ErrorCodeContextLength  ErrorCode = "context_length_exceeded"
	ErrorCodeContentBlocked ErrorCode = "content_blocked"
	ErrorCodeRateLimit      ErrorCode = "rate_limit"
	ErrorCodeAuth           ErrorCode = "authentication_failed"
	ErrorCodeNetwork        ErrorCode = "network_error"
	ErrorCodeUnavailable    ErrorCode = "service_unavailable"
	ErrorCodeInvalidRequest ErrorCode = "invalid_request"
	ErrorCodeEmptyResponse  ErrorCode = "empty_response"
)

// ProviderError wraps errors with additional context.
type ProviderError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Retryable  bool
	RetryAfter *time.Duration
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}
	return false
}

// GetRetryAfter returns the retry-after duration if present.
func GetRetryAfter(err error) *time.Duration {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.RetryAfter
	}
	return nil
}

// FromStatus classifies an HTTP failure the way every adapter reports it.
// 429 and 5xx are retryable, other 4xx are not.
func FromStatus(status int, message string, header http.Header, err error) *ProviderError {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &ProviderError{Code: ErrorCodeAuth, Message: "authentication failed", Underlying: err}
	case status == http.StatusTooManyRequests:
		return &ProviderError{
			Code:       ErrorCodeRateLimit,
			Message:    "rate limit exceeded",
			Underlying: err,
			Retryable:  true,
			RetryAfter: ParseRetryAfter(header),
		}
	case status == http.StatusRequestTimeout:
		return &ProviderError{Code: ErrorCodeNetwork, Message: "request timeout", Underlying: err, Retryable: true}
	case status >= 500:
		return &ProviderError{Code: ErrorCodeUnavailable, Message: "service unavailable", Underlying: err, Retryable: true}
	case status >= 400:
		return &ProviderError{Code: ErrorCodeInvalidRequest, Message: fmt.Sprintf("invalid request: %s", message), Underlying: err}
	default:
		return &ProviderError{Code: ErrorCodeNetwork, Message: "network error", Underlying: err, Retryable: true}
	}
}

// ParseRetryAfter reads a Retry-After header given in seconds.
func ParseRetryAfter(header http.Header) *time.Duration {
	if header == nil {
		return nil
	}
	v := header.Get("Retry-After")
	if v == "" {
		return nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return nil
	}
	d := time.Duration(secs) * time.Second
	return &d
}
