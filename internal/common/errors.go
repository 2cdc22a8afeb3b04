// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds surfaced to callers of the classification workflow.
var (
	// ErrQuotaExceeded means the daily ceiling for the identity class is used up.
	ErrQuotaExceeded = errors.New("daily quota exceeded")
	// ErrInferenceFailed covers every failed or malformed inference response.
	ErrInferenceFailed = errors.New("inference failed")
	// ErrServiceOverloaded is the overload sub-kind of ErrInferenceFailed.
	ErrServiceOverloaded = errors.New("inference service overloaded")
	// ErrInputInvalid means the submitted image could not be decoded.
	ErrInputInvalid = errors.New("invalid input image")
	// ErrExportFailed covers rendering and clipboard failures.
	ErrExportFailed = errors.New("export failed")
)

// Session contract errors.
var (
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrOperationInProgress = errors.New("operation already in progress")
	ErrInvalidOption       = errors.New("option not offered")
	ErrSessionReset        = errors.New("session was reset")
)

// Configuration errors.
var (
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// overloadedError marks an error as both overloaded and failed so that
// errors.Is matches either kind.
type overloadedError struct {
	err error
}

func (e *overloadedError) Error() string {
	return fmt.Sprintf("%v: %v", ErrServiceOverloaded, e.err)
}

func (e *overloadedError) Unwrap() []error {
	return []error{ErrServiceOverloaded, ErrInferenceFailed, e.err}
}

// NewOverloadedError wraps err as an overloaded inference failure.
func NewOverloadedError(err error) error {
	if err == nil {
		err = errors.New("service unavailable")
	}
	return &overloadedError{err: err}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage returns the human-readable message of err, falling back to
// err.Error() when err carries no UserError.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.UserMessage
	}
	return err.Error()
}

// Kind names the category of an error.
type Kind string

// Error kinds.
const (
	KindNone              Kind = ""
	KindQuotaExceeded     Kind = "quota_exceeded"
	KindServiceOverloaded Kind = "service_overloaded"
	KindInferenceFailed   Kind = "inference_failed"
	KindInputInvalid      Kind = "input_invalid"
	KindExportFailed      Kind = "export_failed"
	KindInvalidState      Kind = "invalid_state"
	KindUnknown           Kind = "unknown"
)

// KindOf classifies err. Overload is checked before the generic inference kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrQuotaExceeded):
		return KindQuotaExceeded
	case errors.Is(err, ErrServiceOverloaded):
		return KindServiceOverloaded
	case errors.Is(err, ErrInferenceFailed):
		return KindInferenceFailed
	case errors.Is(err, ErrInputInvalid):
		return KindInputInvalid
	case errors.Is(err, ErrExportFailed):
		return KindExportFailed
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrOperationInProgress),
		errors.Is(err, ErrInvalidOption),
		errors.Is(err, ErrSessionReset):
		return KindInvalidState
	default:
		return KindUnknown
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrServiceOverloaded) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
