// Package errors provides standardized domain errors with codes for the
// migration tools.
//
// Usage:
//
//	// In services - return typed errors
//	if _, ok := maps.Get(mapstore.KindProducts, oldID); !ok {
//	    return errors.DependencyNotReadyf("product %s not yet migrated", oldID)
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrDependencyNotReady) {
//	    log.Warn("skipping record", "reason", err)
//	    continue
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the migration tools.
const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeValidation         Code = "VALIDATION"
	CodeDependencyNotReady Code = "DEPENDENCY_NOT_READY"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeAPI                Code = "API"
	CodeSetup              Code = "SETUP"
	CodeConflict           Code = "CONFLICT"
	CodeInternal           Code = "INTERNAL"
)

// Retryable reports whether an error with this code is worth retrying on a
// later run. Dependency-not-ready records migrate once their dependency
// exists; rate-limited and generic API failures are usually transient.
func (c Code) Retryable() bool {
	switch c {
	case CodeRateLimited, CodeAPI, CodeDependencyNotReady:
		return true
	default:
		return false
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Retryable reports whether this error is worth retrying on a later run.
func (e *Error) Retryable() bool {
	return e.Code.Retryable()
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrDependencyNotReady = &Error{Code: CodeDependencyNotReady, Message: "dependency not yet migrated"}
	ErrRateLimited        = &Error{Code: CodeRateLimited, Message: "rate limited"}
	ErrAPI                = &Error{Code: CodeAPI, Message: "api error"}
	ErrSetup              = &Error{Code: CodeSetup, Message: "setup error"}
	ErrConflict           = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal           = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// DependencyNotReady creates a dependency-not-ready error.
func DependencyNotReady(msg string) *Error {
	return &Error{Code: CodeDependencyNotReady, Message: msg}
}

// DependencyNotReadyf creates a dependency-not-ready error with formatted message.
func DependencyNotReadyf(format string, args ...any) *Error {
	return &Error{Code: CodeDependencyNotReady, Message: fmt.Sprintf(format, args...)}
}

// RateLimited creates a rate limited error.
func RateLimited(msg string) *Error {
	return &Error{Code: CodeRateLimited, Message: msg}
}

// API creates an api error.
func API(msg string) *Error {
	return &Error{Code: CodeAPI, Message: msg}
}

// APIf creates an api error with formatted message.
func APIf(format string, args ...any) *Error {
	return &Error{Code: CodeAPI, Message: fmt.Sprintf(format, args...)}
}

// Setup creates a setup error.
func Setup(msg string) *Error {
	return &Error{Code: CodeSetup, Message: msg}
}

// Setupf creates a setup error with formatted message.
func Setupf(format string, args ...any) *Error {
	return &Error{Code: CodeSetup, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
