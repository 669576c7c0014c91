package core

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

// Default configuration values. The retry and throttle defaults are tuned for
// FAL.ai's queue: a 72-request sequential batch runs for tens of minutes, so
// the policy has to survive transient failures without hammering the rate
// limiter.
const (
	// DefaultAPIEndpoint is the FAL.ai model identifier for multi-angle generation.
	DefaultAPIEndpoint = "fal-ai/qwen-image-edit-plus-lora-gallery/multiple-angles"

	// DefaultQueueBaseURL is the FAL.ai queue API base URL.
	DefaultQueueBaseURL = "https://queue.fal.run"

	// DefaultThrottleSeconds is the fixed wait before every generation call.
	DefaultThrottleSeconds = 1.5

	// DefaultMaxRetries is the number of attempts per angle before giving up.
	DefaultMaxRetries = 5

	// DefaultInitialRetrySeconds is the first backoff delay after a failed attempt.
	DefaultInitialRetrySeconds = 2

	// DefaultMaxRetrySeconds caps the exponential backoff delay.
	DefaultMaxRetrySeconds = 60

	// DefaultBackoffMultiplier grows the backoff delay after each failed attempt.
	DefaultBackoffMultiplier = 2.0

	// DefaultRequestSeconds bounds one full submit/poll/fetch generation cycle.
	DefaultRequestSeconds = 300

	// DefaultDownloadSeconds bounds a single result image download.
	DefaultDownloadSeconds = 30

	// DefaultPollSeconds is the interval between queue status polls.
	DefaultPollSeconds = 1.0

	// DefaultRotationIncrement is the degree step between generated views.
	DefaultRotationIncrement = 5

	// DefaultFullRotation is the total rotation covered by one run.
	DefaultFullRotation = 360

	// DefaultOutputBaseDir is the parent directory for per-image output folders.
	DefaultOutputBaseDir = "generated_views"

	// DefaultLogFile is the log file path when LOG_FILE is not set.
	DefaultLogFile = "turntable.log"
)

// Config holds all runtime configuration for a generation run.
// Values come from environment variables (optionally via a .env file) with
// the defaults above; only FAL_KEY is required.
type Config struct {
	// FAL.ai access
	FALKey       string
	APIEndpoint  string
	QueueBaseURL string

	// Rate limiting and retry policy
	ThrottleDelay     time.Duration
	MaxRetries        int
	InitialRetryDelay time.Duration
	MaxRetryDelay     time.Duration
	BackoffMultiplier float64

	// HTTP deadlines
	RequestTimeout  time.Duration
	DownloadTimeout time.Duration
	PollInterval    time.Duration

	// Turntable geometry
	RotationIncrement int
	FullRotation      int

	// Output
	OutputBaseDir string

	// Logging
	LogFile string
	DevMode bool
}

// LoadConfig loads configuration from environment variables with defaults.
// Only FAL_KEY is required; everything else falls back to the defaults above.
// Returns a ConfigError describing the first invalid or missing value.
func LoadConfig() (*Config, error) {
	falKey := os.Getenv("FAL_KEY")
	if falKey == "" {
		return nil, ErrMissingFALKey()
	}

	cfg := &Config{
		FALKey:       falKey,
		APIEndpoint:  GetEnvOrDefault("FAL_API_ENDPOINT", DefaultAPIEndpoint),
		QueueBaseURL: GetEnvOrDefault("FAL_QUEUE_URL", DefaultQueueBaseURL),

		ThrottleDelay:     ParseSecondsEnv("THROTTLE_DELAY", DefaultThrottleSeconds),
		MaxRetries:        ParseIntEnv("MAX_RETRIES", DefaultMaxRetries),
		InitialRetryDelay: ParseSecondsEnv("INITIAL_RETRY_DELAY", DefaultInitialRetrySeconds),
		MaxRetryDelay:     ParseSecondsEnv("MAX_RETRY_DELAY", DefaultMaxRetrySeconds),
		BackoffMultiplier: ParseFloat64Env("RETRY_BACKOFF_MULTIPLIER", DefaultBackoffMultiplier),

		RequestTimeout:  ParseSecondsEnv("REQUEST_TIMEOUT", DefaultRequestSeconds),
		DownloadTimeout: ParseSecondsEnv("DOWNLOAD_TIMEOUT", DefaultDownloadSeconds),
		PollInterval:    ParseSecondsEnv("POLL_INTERVAL", DefaultPollSeconds),

		RotationIncrement: ParseIntEnv("ROTATION_INCREMENT", DefaultRotationIncrement),
		FullRotation:      ParseIntEnv("FULL_ROTATION", DefaultFullRotation),

		OutputBaseDir: GetEnvOrDefault("OUTPUT_DIR", DefaultOutputBaseDir),

		LogFile: GetEnvOrDefault("LOG_FILE", DefaultLogFile),
		DevMode: ParseBoolEnv("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration values for consistency.
// The rotation constraint matters most: the increment must evenly divide the
// full rotation or the angle sequence would not be gap-free.
func (c *Config) Validate() error {
	if c.MaxRetries < 1 {
		return ErrInvalidConfig("MAX_RETRIES", fmt.Sprintf("must be at least 1, got %d", c.MaxRetries))
	}
	if c.ThrottleDelay < 0 {
		return ErrInvalidConfig("THROTTLE_DELAY", fmt.Sprintf("must not be negative, got %v", c.ThrottleDelay))
	}
	if c.InitialRetryDelay <= 0 {
		return ErrInvalidConfig("INITIAL_RETRY_DELAY", fmt.Sprintf("must be positive, got %v", c.InitialRetryDelay))
	}
	if c.MaxRetryDelay < c.InitialRetryDelay {
		return ErrInvalidConfig("MAX_RETRY_DELAY", fmt.Sprintf("must be at least INITIAL_RETRY_DELAY (%v), got %v",
			c.InitialRetryDelay, c.MaxRetryDelay))
	}
	if c.BackoffMultiplier < 1.0 {
		return ErrInvalidConfig("RETRY_BACKOFF_MULTIPLIER", fmt.Sprintf("must be at least 1.0, got %.2f", c.BackoffMultiplier))
	}
	if c.RequestTimeout < 10*time.Second {
		return ErrInvalidConfig("REQUEST_TIMEOUT", fmt.Sprintf("must be at least 10 seconds, got %v", c.RequestTimeout))
	}
	if c.DownloadTimeout < time.Second {
		return ErrInvalidConfig("DOWNLOAD_TIMEOUT", fmt.Sprintf("must be at least 1 second, got %v", c.DownloadTimeout))
	}
	if c.PollInterval < 100*time.Millisecond {
		return ErrInvalidConfig("POLL_INTERVAL", fmt.Sprintf("must be at least 0.1 seconds, got %v", c.PollInterval))
	}
	if c.RotationIncrement < 1 {
		return ErrInvalidConfig("ROTATION_INCREMENT", fmt.Sprintf("must be at least 1, got %d", c.RotationIncrement))
	}
	if c.FullRotation < c.RotationIncrement {
		return ErrInvalidConfig("FULL_ROTATION", fmt.Sprintf("must be at least ROTATION_INCREMENT (%d), got %d",
			c.RotationIncrement, c.FullRotation))
	}
	if c.FullRotation%c.RotationIncrement != 0 {
		return ErrInvalidConfig("ROTATION_INCREMENT", fmt.Sprintf("must evenly divide FULL_ROTATION (%d), got %d",
			c.FullRotation, c.RotationIncrement))
	}
	return nil
}

// TotalViews returns the number of views one run generates.
func (c *Config) TotalViews() int {
	return c.FullRotation / c.RotationIncrement
}

// GetHTTPClient returns an HTTP client with the given timeout.
// A zero timeout means no client-level deadline; callers then bound requests
// with a context instead, which is what the generation cycle does since its
// deadline spans several sequential requests.
func GetHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}
