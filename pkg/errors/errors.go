// Package errors holds the sentinel errors shared by the ggufy packages and
// small helpers for wrapping them with context.
package errors

import (
	"errors"
	"fmt"
)

// Resolution errors.
var (
	ErrInvalidReferenceFormat = fmt.Errorf("invalid model reference format, expected hf.co/owner/collection[:file]")
	ErrRepositoryNotFound     = fmt.Errorf("repository not found")
	ErrArtifactNotFound       = fmt.Errorf("artifact not found")
	ErrNoArtifactFound        = fmt.Errorf("no .gguf artifact found in repository")
	ErrNetwork                = fmt.Errorf("network error")
	ErrIntegrityMismatch      = fmt.Errorf("integrity mismatch")

	// ErrPartialRangeNotHonored signals that a ranged request was answered
	// with a full body. The downloader recovers from it internally.
	ErrPartialRangeNotHonored = fmt.Errorf("server ignored range request")
)

// Storage errors.
var (
	ErrInvalidPath     = fmt.Errorf("invalid path")
	ErrCacheDirectory  = fmt.Errorf("cache directory cannot be empty")
	ErrConfigDirectory = fmt.Errorf("config directory cannot be empty")
	ErrLockTimeout     = fmt.Errorf("timed out waiting for cache lock")
	ErrMetadataWrite   = fmt.Errorf("failed to write metadata")
)

// Config errors.
var (
	ErrEmptyConfigPath     = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath   = fmt.Errorf("invalid config file path")
	ErrConfigParse         = fmt.Errorf("failed to parse config")
	ErrConfigValidation    = fmt.Errorf("invalid configuration")
	ErrConfigEncode        = fmt.Errorf("failed to encode config")
	ErrConfigFileCreate    = fmt.Errorf("failed to create config file")
	ErrConfigFileRename    = fmt.Errorf("failed to rename config file")
	ErrConfigFileExists    = fmt.Errorf("configuration file already exists")
	ErrUnknownConfigKey    = fmt.Errorf("unknown configuration key")
	ErrInvalidLogLevel     = fmt.Errorf("invalid log level")
	ErrInvalidLatestOrder  = fmt.Errorf("invalid latest order")
	ErrHTTPTimeoutNegative = fmt.Errorf("http timeout cannot be negative")
	ErrLockTimeoutNegative = fmt.Errorf("lock timeout cannot be negative")
	ErrInvalidEndpoint     = fmt.Errorf("invalid hub endpoint")
)

// CLI and engine errors.
var (
	ErrNoToken             = fmt.Errorf("no access token provided")
	ErrEngineNotConfigured = fmt.Errorf("inference engine command is not configured")
	ErrAborted             = fmt.Errorf("operation aborted")
	ErrInvalidArguments    = fmt.Errorf("invalid arguments")
)

// HTTPStatusError carries the status code of a failed hub request. It
// unwraps to the kind selected for that status.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Kind       error
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s: %v", e.StatusCode, e.URL, e.Kind)
}

func (e *HTTPStatusError) Unwrap() error { return e.Kind }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *HTTPStatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Network wraps a transport failure so that it matches ErrNetwork while
// keeping the original cause reachable.
func Network(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrNetwork, err)
}
