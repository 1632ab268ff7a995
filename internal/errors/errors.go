// Package errors provides the failure taxonomy shared by the votecount engine,
// the forum adapter and the publication loop.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a failure. It doubles as a metric label.
type ErrorType string

const (
	// TypeTransport indicates a network-level failure or a 5xx from the forum.
	TypeTransport ErrorType = "transport"
	// TypeRateLimited indicates the forum asked us to slow down (HTTP 429).
	TypeRateLimited ErrorType = "rate_limited"
	// TypeRejected indicates the forum refused the request (other 4xx).
	TypeRejected ErrorType = "rejected"
	// TypeParse indicates a payload did not have the expected shape.
	TypeParse ErrorType = "parse"
	// TypeIncomplete indicates a successful response missing a required field.
	TypeIncomplete ErrorType = "incomplete"
	// TypeConfig indicates invalid or unreadable settings.
	TypeConfig ErrorType = "config"
	// TypeInternal indicates a bug or an unexpected condition.
	TypeInternal ErrorType = "internal"
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Transient reports whether repeating the same call may succeed.
func (e *Error) Transient() bool {
	switch e.Type {
	case TypeTransport, TypeRateLimited, TypeIncomplete:
		return true
	default:
		return false
	}
}

func newError(t ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    t,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// TransportError creates a network-level error.
func TransportError(message string, cause error) *Error {
	return newError(TypeTransport, message, cause)
}

// RateLimitedError creates an error for a throttled request.
func RateLimitedError(message string) *Error {
	return newError(TypeRateLimited, message, nil)
}

// RejectedError creates an error for a request the forum refused.
func RejectedError(message string) *Error {
	return newError(TypeRejected, message, nil)
}

// ParseError creates an error for a malformed payload.
func ParseError(message string, cause error) *Error {
	return newError(TypeParse, message, cause)
}

// IncompleteError creates an error for a response lacking a required field.
func IncompleteError(message string) *Error {
	return newError(TypeIncomplete, message, nil)
}

// ConfigError creates an error for unusable settings.
func ConfigError(message string, cause error) *Error {
	return newError(TypeConfig, message, cause)
}

// InternalError creates an error for unexpected conditions.
func InternalError(message string, cause error) *Error {
	return newError(TypeInternal, message, cause)
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// LogAttrs flattens the context into slog key/value pairs.
func (e *Error) LogAttrs() []any {
	attrs := make([]any, 0, 2+2*len(e.Context))
	attrs = append(attrs, "error_type", string(e.Type))
	for k, v := range e.Context {
		attrs = append(attrs, k, v)
	}
	return attrs
}

// AsStructuredError converts any error into a structured Error.
// If err is already an *Error, returns it unchanged.
// Otherwise wraps it as an internal error.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return InternalError("unexpected error", err)
}

// TypeOf returns the category of err, or "" for nil.
func TypeOf(err error) ErrorType {
	if err == nil {
		return ""
	}
	return AsStructuredError(err).Type
}

// IsTransient reports whether err is a structured error worth retrying.
func IsTransient(err error) bool {
	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr.Transient()
	}
	return false
}
