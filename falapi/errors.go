// Package falapi error types.
//
// errors.go defines the typed errors surfaced by the client and the
// classification helpers the retry loop uses to separate rate limiting and
// timeouts from other failures.
package falapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// APIError is a non-2xx response from the generation service.
type APIError struct {
	// StatusCode is the HTTP status of the failing call.
	StatusCode int

	// Message is the response body, truncated for log hygiene.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("falapi: API error %d: %s", e.StatusCode, e.Message)
}

// RateLimitError means the service was still rate limiting on the final
// retry attempt. It aborts the whole run: continuing would burn the
// remaining quota on requests that cannot succeed.
type RateLimitError struct {
	// Attempts is how many attempts were made before giving up.
	Attempts int

	// LastErr is the rate-limit error from the final attempt.
	LastErr error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("falapi: rate limit exceeded after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *RateLimitError) Unwrap() error {
	return e.LastErr
}

// GenerationError means all retry attempts for one view were exhausted
// without success, for a reason other than rate limiting.
type GenerationError struct {
	// Attempts is how many attempts were made.
	Attempts int

	// LastErr is the error from the final attempt.
	LastErr error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("falapi: generation failed after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *GenerationError) Unwrap() error {
	return e.LastErr
}

// isRateLimitSignal reports whether the error indicates provider-side rate
// limiting: an HTTP 429, a "429" in the error text, or a message containing
// "rate limit" in any casing.
func isRateLimitSignal(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
		return true
	}

	text := err.Error()
	if strings.Contains(text, "429") {
		return true
	}
	return strings.Contains(strings.ToLower(text), "rate limit")
}

// isTimeoutError reports whether the error is a per-attempt timeout.
// Context cancellation from the caller is NOT a timeout; the retry loop
// checks that separately and stops.
func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}
