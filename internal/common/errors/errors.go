// Package errors provides the seeder's structured error type.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	ErrCodeConfigInvalid   ErrorCode = "CONFIG_INVALID"

	// Fetch failures. Transport and non-2xx responses are request failures,
	// undecodable or mis-shaped bodies are response failures.
	ErrCodeUpstreamRequestFailed   ErrorCode = "UPSTREAM_REQUEST_FAILED"
	ErrCodeUpstreamResponseInvalid ErrorCode = "UPSTREAM_RESPONSE_INVALID"

	ErrCodeRemoteWriteFailed  ErrorCode = "REMOTE_WRITE_FAILED"
	ErrCodeStoreNotConfigured ErrorCode = "STORE_NOT_CONFIGURED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	se := &StandardError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
	if cause != nil {
		se.Details = cause.Error()
	}
	return se
}

// NewInvalidArgumentError reports a rejected command-line value.
func NewInvalidArgumentError(argument, details string) *StandardError {
	se := newError(ErrCodeInvalidArgument, fmt.Sprintf("invalid %s argument", argument), nil, false)
	se.Details = details
	return se.WithMetadata("argument", argument)
}

// NewConfigInvalidError wraps a configuration load failure.
func NewConfigInvalidError(err error) *StandardError {
	return newError(ErrCodeConfigInvalid, "configuration could not be loaded", err, false)
}

// NewUpstreamRequestError covers transport failures and non-2xx statuses.
func NewUpstreamRequestError(service string, err error) *StandardError {
	return newError(ErrCodeUpstreamRequestFailed, fmt.Sprintf("request to %s failed", service), err, true)
}

// NewUpstreamResponseError covers bodies that cannot be decoded or fail schema checks.
func NewUpstreamResponseError(service string, err error) *StandardError {
	return newError(ErrCodeUpstreamResponseInvalid, fmt.Sprintf("invalid response from %s", service), err, false)
}

// NewRemoteWriteError reports a rejected batch write.
func NewRemoteWriteError(backend string, err error) *StandardError {
	return newError(ErrCodeRemoteWriteFailed, fmt.Sprintf("batch save to %s failed", backend), err, true)
}

// NewStoreNotConfiguredError reports a backend that cannot be built from config.
func NewStoreNotConfiguredError(backend string, err error) *StandardError {
	return newError(ErrCodeStoreNotConfigured, fmt.Sprintf("store %s is not configured", backend), err, false)
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var se *StandardError
	if stderrors.As(err, &se) {
		return se
	}
	return newError(ErrCodeInternal, "unexpected error", err, false)
}

// CodeOf returns the error code of err, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return Normalize(err).Code
}

// IsCode reports whether err carries code.
func IsCode(err error, code ErrorCode) bool {
	var se *StandardError
	return stderrors.As(err, &se) && se.Code == code
}

// GetErrorCategory groups codes into the two failure kinds of a run plus the rest.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "UPSTREAM"):
		return "FETCH"
	case strings.Contains(codeStr, "WRITE") || strings.Contains(codeStr, "STORE"):
		return "PERSIST"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "CONFIG"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
