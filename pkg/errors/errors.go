// Package errors provides structured error types for flowlane.
//
// Every failure that leaves the export pipeline carries a machine-readable
// [Code], so the CLI and the HTTP server can react without string matching:
//
//   - INTEGRITY: the input graph is malformed (dangling lane reference,
//     asymmetric next/before lists, invalid records). Raised before layout.
//   - LAYOUT: the layout engine could not produce an arrangement. Details
//     carry the layout configuration that was used.
//   - SERIALIZATION: an emitted-exactly-once invariant of the document was
//     violated. This is a defect in an earlier stage, not bad input.
//
// # Usage
//
//	err := errors.Integrity("node %s references unknown lane %s", id, lane)
//	if errors.IsIntegrity(err) {
//	    // reject the input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeLayout, origErr, "graphviz layout")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Pipeline taxonomy
	ErrCodeIntegrity     Code = "INTEGRITY"
	ErrCodeLayout        Code = "LAYOUT"
	ErrCodeSerialization Code = "SERIALIZATION"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code           // Machine-readable error code
	Message string         // Human-readable message
	Cause   error          // Underlying error (optional)
	Details map[string]any // Diagnostic context (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a diagnostic key/value and returns e for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Integrity reports a malformed input graph.
func Integrity(format string, args ...any) *Error {
	return New(ErrCodeIntegrity, format, args...)
}

// Layout reports a layout engine failure. cause may be nil.
func Layout(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeLayout, cause, format, args...)
}

// Serialization reports a violated document invariant.
func Serialization(format string, args ...any) *Error {
	return New(ErrCodeSerialization, format, args...)
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsIntegrity reports whether err is an INTEGRITY error.
func IsIntegrity(err error) bool { return Is(err, ErrCodeIntegrity) }

// IsLayout reports whether err is a LAYOUT error.
func IsLayout(err error) bool { return Is(err, ErrCodeLayout) }

// IsSerialization reports whether err is a SERIALIZATION error.
func IsSerialization(err error) bool { return Is(err, ErrCodeSerialization) }

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetDetails returns the Details of the outermost *Error in the chain, or nil.
func GetDetails(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
