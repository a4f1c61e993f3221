package errors

import (
	"errors"
	"fmt"
	"maps"
)

// Error is a structured error carrying a code, a player-safe message and metadata.
// Message is what a handler may surface; Cause is only ever logged.
type Error struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code
func (e *Error) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && e.Code == t.Code
}

// WithMeta sets one metadata entry and returns e
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates an error with the given code and message
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err under message. An *Error anywhere in the chain lends its
// code and a copy of its metadata; plain errors become CodeInternal.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	code := CodeInternal
	var meta map[string]any
	var inner *Error
	if errors.As(err, &inner) {
		code = inner.Code
		meta = maps.Clone(inner.Meta)
	}
	return &Error{Code: code, Message: message, Cause: err, Meta: meta}
}

// Wrapf wraps err under a formatted message
func Wrapf(err error, format string, args ...any) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps err and forces code, keeping any metadata
func WrapWithCode(err error, code Code, message string) *Error {
	wrapped := Wrap(err, message)
	if wrapped != nil {
		wrapped.Code = code
	}
	return wrapped
}

// WrapWithCodef wraps err with a forced code and a formatted message
func WrapWithCodef(err error, code Code, format string, args ...any) *Error {
	return WrapWithCode(err, code, fmt.Sprintf(format, args...))
}

// NotFound creates a not found error
func NotFound(message string) *Error { return New(CodeNotFound, message) }

// NotFoundf creates a not found error with formatted message
func NotFoundf(format string, args ...any) *Error { return newf(CodeNotFound, format, args...) }

// InvalidArgument creates an invalid argument error
func InvalidArgument(message string) *Error { return New(CodeInvalidArgument, message) }

// InvalidArgumentf creates an invalid argument error with formatted message
func InvalidArgumentf(format string, args ...any) *Error {
	return newf(CodeInvalidArgument, format, args...)
}

// AlreadyExists creates an already exists error
func AlreadyExists(message string) *Error { return New(CodeAlreadyExists, message) }

// PermissionDenied creates a permission denied error
func PermissionDenied(message string) *Error { return New(CodePermissionDenied, message) }

// PermissionDeniedf creates a permission denied error with formatted message
func PermissionDeniedf(format string, args ...any) *Error {
	return newf(CodePermissionDenied, format, args...)
}

// Internal creates an internal error
func Internal(message string) *Error { return New(CodeInternal, message) }

// Unavailable creates an unavailable error
func Unavailable(message string) *Error { return New(CodeUnavailable, message) }

// Unavailablef creates an unavailable error with formatted message
func Unavailablef(format string, args ...any) *Error { return newf(CodeUnavailable, format, args...) }

// Unauthenticated creates an unauthenticated error
func Unauthenticated(message string) *Error { return New(CodeUnauthenticated, message) }

// ResourceExhausted creates a resource exhausted error
func ResourceExhausted(message string) *Error { return New(CodeResourceExhausted, message) }

// FailedPrecondition creates a failed precondition error
func FailedPrecondition(message string) *Error { return New(CodeFailedPrecondition, message) }

// FailedPreconditionf creates a failed precondition error with formatted message
func FailedPreconditionf(format string, args ...any) *Error {
	return newf(CodeFailedPrecondition, format, args...)
}

// Aborted signals a lost optimistic-concurrency race; the caller may retry
func Aborted(message string) *Error { return New(CodeAborted, message) }

// Abortedf creates an aborted error with formatted message
func Abortedf(format string, args ...any) *Error { return newf(CodeAborted, format, args...) }
