package core

import (
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeMissingFALKey   = "MISSING_FAL_KEY"
	ErrCodeEnvFileMissing  = "ENV_FILE_MISSING"
	ErrCodeInvalidConfig   = "INVALID_CONFIG"
	ErrCodeOutputDirFailed = "OUTPUT_DIR_FAILED"
)

// ErrMissingFALKey returns an error for a missing FAL.ai API key.
func ErrMissingFALKey() *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingFALKey,
		Message: "FAL_KEY environment variable not set",
		Action:  "Set your FAL.ai API key, e.g. export FAL_KEY='your_api_key_here' or add it to .env",
	}
}

// ErrEnvFileMissing returns an error for a missing .env file.
func ErrEnvFileMissing(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileMissing,
		Message: fmt.Sprintf("Configuration file not found: %s", path),
		Action:  "Create a .env file with FAL_KEY set, or export the variables directly",
	}
}

// ErrInvalidConfig returns an error for an out-of-range configuration value.
func ErrInvalidConfig(varName string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf("Invalid value for %s: %s", varName, reason),
		Action:  fmt.Sprintf("Correct %s in your environment or .env file", varName),
	}
}

// ErrOutputDirFailed returns an error when the output directory cannot be prepared.
func ErrOutputDirFailed(dir string, cause error) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeOutputDirFailed,
		Message: fmt.Sprintf("Cannot create output directory %s: %v", dir, cause),
		Action:  "Check OUTPUT_DIR points to a writable location",
	}
}

// IsConfigError checks if an error is a ConfigError and returns it if so.
func IsConfigError(err error) (*ConfigError, bool) {
	if configErr, ok := err.(*ConfigError); ok {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError.
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
