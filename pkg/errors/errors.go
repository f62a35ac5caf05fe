// Package errors defines the error taxonomy shared by the apod pipeline.
//
// Every failure surfaced by the pipeline matches exactly one of the sentinel
// errors below through errors.Is. The typed errors carry the details (status
// code, media kind, file path) and keep the inner cause reachable via Unwrap.
package errors

import (
	"errors"
	"fmt"
)

// Pipeline errors.
var (
	// ErrRemote is matched by a non-2xx response from the remote endpoint.
	ErrRemote = fmt.Errorf("remote error")

	// ErrTransfer is matched by network or I/O failures while transferring an artifact.
	ErrTransfer = fmt.Errorf("transfer failed")

	// ErrParse is matched when a definition document is not well-formed.
	ErrParse = fmt.Errorf("failed to parse definition")

	// ErrUnsupportedMediaKind is matched when a definition's media type is not "image".
	ErrUnsupportedMediaKind = fmt.Errorf("unsupported media kind")

	// ErrCancelled is matched when a pipeline call honoured a cancellation request.
	ErrCancelled = fmt.Errorf("operation cancelled")
)

// Validation and configuration errors.
var (
	ErrInvalidDate       = fmt.Errorf("invalid date")
	ErrFutureDate        = fmt.Errorf("date is in the future")
	ErrInvalidPath       = fmt.Errorf("invalid path")
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists (use --force to overwrite)")
	ErrUnknownConfigKey  = fmt.Errorf("unknown configuration key")

	ErrHTTPTimeoutNegative  = fmt.Errorf("http_timeout cannot be negative")
	ErrMaxConcurrentInvalid = fmt.Errorf("max_concurrent must be at least 1")
	ErrInvalidLogLevel      = fmt.Errorf("invalid log level")
	ErrInvalidLogFormat     = fmt.Errorf("invalid log format")
	ErrInvalidBaseURL       = fmt.Errorf("invalid api_base_url")

	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
	ErrHookLoad      = fmt.Errorf("failed to load hook")
)

// RemoteError reports a non-success HTTP status. It is returned before any
// byte of the body is written.
type RemoteError struct {
	URL        string
	StatusCode int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Is reports whether target is ErrRemote.
func (e *RemoteError) Is(target error) bool { return target == ErrRemote }

// TransferError reports a network or I/O failure during a transfer.
type TransferError struct {
	Op  string
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTransfer.
func (e *TransferError) Is(target error) bool { return target == ErrTransfer }

// ParseError reports a malformed definition file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse definition %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// UnsupportedMediaKindError reports a definition whose media type cannot be downloaded.
type UnsupportedMediaKindError struct {
	Kind string
}

func (e *UnsupportedMediaKindError) Error() string {
	return fmt.Sprintf("not supported media type: %s", e.Kind)
}

// Is reports whether target is ErrUnsupportedMediaKind.
func (e *UnsupportedMediaKindError) Is(target error) bool { return target == ErrUnsupportedMediaKind }

// Cancelled wraps a context error so that it matches both ErrCancelled and
// the original context error.
func Cancelled(cause error) error {
	if cause == nil {
		return ErrCancelled
	}
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

// IsCancelled reports whether err is a cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
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

// ErrInvalidLogLevelWithDetails returns ErrInvalidLogLevel with the offending value.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}

// ErrInvalidLogFormatWithDetails returns ErrInvalidLogFormat with the offending value.
func ErrInvalidLogFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, json", ErrInvalidLogFormat, format)
}
