package falapi

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeNetError implements net.Error for timeout classification tests.
type fakeNetError struct {
	timeout bool
}

func (e *fakeNetError) Error() string   { return "dial tcp: i/o problem" }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return false }

// TestIsRateLimitSignal tests rate-limit detection across status codes and
// message text.
func TestIsRateLimitSignal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"http 429", &APIError{StatusCode: 429, Message: "slow down"}, true},
		{"http 429 with timeout text", &APIError{StatusCode: 429, Message: "upstream timeout"}, true},
		{"http 500", &APIError{StatusCode: 500, Message: "boom"}, false},
		{"429 in text", errors.New("upstream returned 429"), true},
		{"rate limit in text", errors.New("Service Rate Limit reached"), true},
		{"rate limited phrasing", errors.New("you are being rate limited"), true},
		{"wrapped 429", fmt.Errorf("call failed: %w", &APIError{StatusCode: 429, Message: "x"}), true},
		{"plain failure", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRateLimitSignal(tt.err); got != tt.want {
				t.Errorf("isRateLimitSignal(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// TestIsTimeoutError tests timeout detection for deadline, net, and text
// signals.
func TestIsTimeoutError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("request failed: %w", context.DeadlineExceeded), true},
		{"net timeout", &fakeNetError{timeout: true}, true},
		{"net non-timeout", &fakeNetError{timeout: false}, false},
		{"timeout in text", errors.New("connection timeout while reading"), true},
		{"cancellation is not timeout", context.Canceled, false},
		{"plain failure", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTimeoutError(tt.err); got != tt.want {
				t.Errorf("isTimeoutError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// TestErrorUnwrapping tests that typed errors expose their cause.
func TestErrorUnwrapping(t *testing.T) {
	cause := &APIError{StatusCode: 429, Message: "slow down"}

	rateLimitErr := &RateLimitError{Attempts: 5, LastErr: cause}
	var apiErr *APIError
	if !errors.As(rateLimitErr, &apiErr) {
		t.Error("RateLimitError should unwrap to its APIError cause")
	}

	genErr := &GenerationError{Attempts: 5, LastErr: errors.New("boom")}
	if genErr.Unwrap() == nil {
		t.Error("GenerationError should expose its cause")
	}
}
