// Package errs provides standardized domain errors with codes for the
// pipeline.
//
// Usage:
//
//	// In services - return typed errors
//	if resp.Status.Code == codeInvalidSignature {
//	    return errs.Auth("recognition service rejected credentials")
//	}
//
//	// In callers - check with errs.Is
//	if errs.Is(err, errs.ErrNoMatch) {
//	    continue // next segment
//	}
package errs

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

// Error codes used throughout the pipeline.
const (
	CodeRetrieval  Code = "RETRIEVAL"
	CodeSeparation Code = "SEPARATION"
	CodeAuth       Code = "AUTHENTICATION"
	CodeRateLimit  Code = "RATE_LIMIT"
	CodeNoMatch    Code = "NO_MATCH"
	CodeConfig     Code = "CONFIG"
	CodeInternal   Code = "INTERNAL"
)

// Fatal reports whether an error with this code should abort the whole
// run. NoMatch advances to the next segment and RateLimit is retried a
// bounded number of times before it becomes fatal.
func (c Code) Fatal() bool {
	switch c {
	case CodeNoMatch, CodeRateLimit:
		return false
	default:
		return true
	}
}

// Error is a domain error with a code, message, and optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
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

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		cause:   err,
	}
}

// Sentinel errors for use with errs.Is().
var (
	ErrRetrieval  = &Error{Code: CodeRetrieval, Message: "retrieval failed"}
	ErrSeparation = &Error{Code: CodeSeparation, Message: "separation failed"}
	ErrAuth       = &Error{Code: CodeAuth, Message: "authentication failed"}
	ErrRateLimit  = &Error{Code: CodeRateLimit, Message: "rate limit exceeded"}
	ErrNoMatch    = &Error{Code: CodeNoMatch, Message: "no match"}
	ErrConfig     = &Error{Code: CodeConfig, Message: "configuration error"}
	ErrInternal   = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// Retrieval creates a retrieval error.
func Retrieval(msg string) *Error {
	return &Error{Code: CodeRetrieval, Message: msg}
}

// Retrievalf creates a retrieval error with a formatted message.
func Retrievalf(format string, args ...any) *Error {
	return &Error{Code: CodeRetrieval, Message: fmt.Sprintf(format, args...)}
}

// Separation creates a separation error.
func Separation(msg string) *Error {
	return &Error{Code: CodeSeparation, Message: msg}
}

// Auth creates an authentication error.
func Auth(msg string) *Error {
	return &Error{Code: CodeAuth, Message: msg}
}

// RateLimit creates a rate limit error.
func RateLimit(msg string) *Error {
	return &Error{Code: CodeRateLimit, Message: msg}
}

// NoMatch creates a no-match error.
func NoMatch(msg string) *Error {
	return &Error{Code: CodeNoMatch, Message: msg}
}

// Config creates a configuration error.
func Config(msg string) *Error {
	return &Error{Code: CodeConfig, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// CodeOf extracts the domain code from err, or CodeInternal when err is
// not a domain error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
