// Package errors provides structured error types for stackbundle.
//
// Errors carry a machine-readable [Code] that names the failing phase or
// input category, so the facade can report "resolution failed for module X"
// with enough detail to tell a missing root tree from a bad instruction.
//
// # Error Codes
//
//   - INVALID_*: Input validation failures (coordinates, manifests, config)
//   - *_NOT_FOUND: Missing modules or files
//   - TREE_RESOLUTION, REBUNDLE, EMBED: run-fatal phase failures
//   - INTERNAL: Unexpected internal errors
//
// Node-local failures (a jar that cannot be listed) and extension-local
// failures (an extension that does not resolve) are never returned as
// errors; they are logged and the run continues.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidCoordinate, "bad coordinate: %s", s)
//	if errors.Is(err, errors.ErrCodeInvalidCoordinate) {
//	    // Handle validation error
//	}
//
//	err := errors.Wrap(errors.ErrCodeTreeResolution, cause, "resolve %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidCoordinate Code = "INVALID_COORDINATE"
	ErrCodeInvalidManifest   Code = "INVALID_MANIFEST"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeInvalidModuleID   Code = "INVALID_MODULE_ID"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeModuleNotFound Code = "MODULE_NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	// Run-fatal phase errors
	ErrCodeTreeResolution Code = "TREE_RESOLUTION"
	ErrCodeRebundle       Code = "REBUNDLE"
	ErrCodeEmbed          Code = "EMBED"
	ErrCodeStore          Code = "STORE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
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

// IsFatal reports whether err carries one of the run-fatal phase codes.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeTreeResolution, ErrCodeRebundle, ErrCodeEmbed:
		return true
	}
	return false
}
