// Package falapi queue client.
//
// client.go implements the Client organism: submission against the FAL
// queue API with call throttling, exponential backoff retry, and rate-limit
// abort semantics.
//
// This organism composes:
//   - types.go: wire structures and parameter validation
//   - errors.go: typed failures and retry classification
//   - logging.Logger: structured logging
package falapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"turntable/logging"

	"go.uber.org/zap"
)

// Client defaults. A full generation cycle (queue wait included) can take
// minutes under load, hence the generous request timeout.
const (
	DefaultQueueBaseURL   = "https://queue.fal.run"
	DefaultRequestTimeout = 300 * time.Second
	DefaultPollInterval   = time.Second
	DefaultThrottleDelay  = 1500 * time.Millisecond
)

// Construction errors.
var (
	// ErrNilLogger indicates the logger is nil.
	ErrNilLogger = errors.New("falapi: logger cannot be nil")

	// ErrMissingAPIKey indicates no API credential was provided.
	ErrMissingAPIKey = errors.New("falapi: API key is required")
)

// RetryPolicy controls retry behavior for failed generation calls.
// Backoff is exponential: the delay is multiplied by Multiplier after each
// failed attempt, capped at MaxDelay.
type RetryPolicy struct {
	// MaxRetries is the total number of attempts, including the first.
	MaxRetries int

	// InitialDelay is the backoff before the second attempt.
	InitialDelay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration

	// Multiplier scales the delay after each failed attempt.
	Multiplier float64
}

// DefaultRetryPolicy returns the standard policy: 5 attempts, 2s initial
// delay doubling up to 60s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   5,
		InitialDelay: 2 * time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
	}
}

// applyRetryDefaults fills zero fields with the standard policy.
func applyRetryDefaults(policy RetryPolicy) RetryPolicy {
	defaults := DefaultRetryPolicy()
	if policy.MaxRetries <= 0 {
		policy.MaxRetries = defaults.MaxRetries
	}
	if policy.InitialDelay <= 0 {
		policy.InitialDelay = defaults.InitialDelay
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = defaults.MaxDelay
	}
	if policy.Multiplier < 1.0 {
		policy.Multiplier = defaults.Multiplier
	}
	return policy
}

// ClientConfig holds configuration for the queue client.
type ClientConfig struct {
	// APIKey is the FAL credential. Required - no default.
	APIKey string

	// Endpoint is the model path appended to QueueBaseURL.
	// Defaults to DefaultEndpoint.
	Endpoint string

	// QueueBaseURL is the queue service root.
	// Defaults to DefaultQueueBaseURL.
	QueueBaseURL string

	// RequestTimeout bounds one full attempt: submit, queue wait, and
	// result fetch together. Defaults to DefaultRequestTimeout.
	RequestTimeout time.Duration

	// PollInterval is the wait between queue status checks.
	// Defaults to DefaultPollInterval.
	PollInterval time.Duration

	// ThrottleDelay is the minimum spacing slept once before each
	// generation call, including the first. Zero disables throttling.
	ThrottleDelay time.Duration

	// Retry controls backoff behavior. Zero fields take defaults.
	Retry RetryPolicy

	// HTTPClient is the HTTP client for API calls (optional).
	// If nil, a default client is created.
	HTTPClient *http.Client
}

// DefaultClientConfig returns a ClientConfig with sensible defaults.
// The API key must still be set by the caller.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Endpoint:       DefaultEndpoint,
		QueueBaseURL:   DefaultQueueBaseURL,
		RequestTimeout: DefaultRequestTimeout,
		PollInterval:   DefaultPollInterval,
		ThrottleDelay:  DefaultThrottleDelay,
		Retry:          DefaultRetryPolicy(),
	}
}

// Client drives the FAL queue API for multi-angle view generation.
//
// Thread Safety: Client is safe for concurrent use, but callers generating
// a turntable sequence should issue requests strictly sequentially - the
// throttle exists to space calls out, not to serialize them.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a queue client with the given configuration.
//
// Returns an error if:
//   - logger is nil
//   - no API key is configured
func NewClient(config ClientConfig, logger *logging.Logger) (*Client, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	// Apply defaults
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.QueueBaseURL == "" {
		config.QueueBaseURL = DefaultQueueBaseURL
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	config.Retry = applyRetryDefaults(config.Retry)

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger.Named("falapi"),
	}, nil
}

// Generate runs one view generation call with throttling and retry.
//
// The call sleeps the throttle delay once up front, then each attempt runs
// a full queue cycle under the request timeout. Timeouts and most errors
// retry with exponential backoff. A rate-limit signal on the final attempt
// returns *RateLimitError; any other exhaustion returns *GenerationError
// carrying the last observed failure. Context cancellation stops the loop
// immediately.
func (c *Client) Generate(ctx context.Context, req Request) (*GenerationResult, error) {
	if req.ImageRef == "" {
		return nil, fmt.Errorf("falapi: image reference cannot be empty")
	}
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}

	log := c.logger.With(zap.Float64("rotate_right_left", req.RotateRightLeft))

	retryDelay := c.config.Retry.InitialDelay
	maxRetries := c.config.Retry.MaxRetries
	var lastErr error

	// Minimum spacing between generation calls, slept once per call
	// including the first. Retries space themselves with backoff instead.
	if err := sleepFunc(ctx, c.config.ThrottleDelay); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := c.runOnce(ctx, req)
		if err == nil {
			if attempt > 1 {
				log.Info("generation succeeded after retry", zap.Int("attempt", attempt))
			}
			result.Attempts = attempt
			return result, nil
		}

		// Caller cancellation ends the run; it is not a retryable failure.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		switch {
		// Rate limit is checked first: a 429 wins even when its body also
		// reads as a timeout.
		case isRateLimitSignal(err):
			if attempt == maxRetries {
				return nil, &RateLimitError{Attempts: attempt, LastErr: err}
			}
			lastErr = fmt.Errorf("rate limit: %w", err)
			log.Warn("rate limited",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("retry_delay", retryDelay))

		case isTimeoutError(err):
			lastErr = fmt.Errorf("request timeout: %w", err)
			log.Warn("attempt timed out",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("retry_delay", retryDelay))

		default:
			lastErr = err
			log.Warn("attempt failed",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Error(err))
		}

		// No sleep after the final failed attempt.
		if attempt < maxRetries {
			if err := sleepFunc(ctx, retryDelay); err != nil {
				return nil, err
			}
			retryDelay = min(
				time.Duration(float64(retryDelay)*c.config.Retry.Multiplier),
				c.config.Retry.MaxDelay)
		}
	}

	return nil, &GenerationError{Attempts: maxRetries, LastErr: lastErr}
}

// runOnce performs a single queue cycle: submit, poll until completed,
// fetch the result. The request timeout bounds the whole cycle.
func (c *Client) runOnce(ctx context.Context, req Request) (*GenerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	submitted, err := c.submit(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := c.waitUntilComplete(ctx, submitted.StatusURL); err != nil {
		return nil, err
	}

	return c.fetchResult(ctx, submitted.ResponseURL)
}

// submit posts the generation arguments to the queue.
func (c *Client) submit(ctx context.Context, req Request) (*queueSubmitResponse, error) {
	jsonData, err := json.Marshal(buildArguments(req))
	if err != nil {
		return nil, fmt.Errorf("falapi: failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.config.QueueBaseURL, "/") + "/" + c.config.Endpoint
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("falapi: failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Key "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	body, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var submitted queueSubmitResponse
	if err := json.Unmarshal(body, &submitted); err != nil {
		return nil, fmt.Errorf("falapi: failed to decode submit response: %w", err)
	}
	if submitted.RequestID == "" || submitted.StatusURL == "" || submitted.ResponseURL == "" {
		return nil, fmt.Errorf("falapi: incomplete submit response (request_id=%q)", submitted.RequestID)
	}

	c.logger.Debug("request queued", zap.String("request_id", submitted.RequestID))
	return &submitted, nil
}

// waitUntilComplete polls the status URL until the request completes.
func (c *Client) waitUntilComplete(ctx context.Context, statusURL string) error {
	for {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			return fmt.Errorf("falapi: failed to create status request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Key "+c.config.APIKey)

		body, err := c.do(httpReq)
		if err != nil {
			return err
		}

		var status queueStatusResponse
		if err := json.Unmarshal(body, &status); err != nil {
			return fmt.Errorf("falapi: failed to decode status response: %w", err)
		}

		switch status.Status {
		case StatusCompleted:
			return nil
		case StatusInQueue:
			c.logger.Debug("request in queue", zap.Int("queue_position", status.QueuePosition))
		case StatusInProgress:
			c.logger.Debug("request in progress")
		default:
			return fmt.Errorf("falapi: unexpected queue status %q", status.Status)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.config.PollInterval):
		}
	}
}

// fetchResult retrieves the completed generation output.
func (c *Client) fetchResult(ctx context.Context, responseURL string) (*GenerationResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, responseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("falapi: failed to create result request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Key "+c.config.APIKey)

	body, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var result GenerationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("falapi: failed to decode result: %w", err)
	}
	if len(result.Images) == 0 {
		return nil, fmt.Errorf("falapi: response contains no images")
	}
	return &result, nil
}

// do executes the request and returns the response body. Non-2xx statuses
// become an *APIError carrying the status code and the (truncated) body.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("falapi: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("falapi: failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: truncateBody(body)}
	}
	return body, nil
}

// truncateBody keeps error messages readable when the service returns a
// long HTML error page instead of JSON.
func truncateBody(body []byte) string {
	const maxLen = 512
	text := strings.TrimSpace(string(body))
	if len(text) > maxLen {
		return text[:maxLen] + "..."
	}
	return text
}

// sleepContext sleeps for d or until the context ends.
// sleepFunc allows tests to intercept sleeps deterministically.
var sleepFunc = sleepContext

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
