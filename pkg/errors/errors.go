// Package errors provides structured error types for clustergraph.
//
// Every failure surfaced by the graph store, the visibility engine, the
// controller and the HTTP API carries a machine-readable [Code]. The CLI
// prints [UserMessage]; the server maps codes to HTTP status codes.
//
// # Error Codes
//
//   - INVALID_*: malformed input (empty or duplicate node IDs, bad formats)
//   - MISSING_NODE: a link source has no node at build time
//   - NOT_FOUND: lookup of an unknown node identifier
//   - DANGLING_LINK: a link target has no node, found during traversal
//   - UNKNOWN_COMMAND: a named cluster command is not configured
//   - NETWORK_ERROR, INTERNAL_ERROR: cache backends and everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "duplicate node ID %q", id)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
// Domain error structs defined in other packages (graph.NotFoundError and
// friends) implement Code() and are recognized by [Is] and [GetCode] too.
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Graph structure errors
	ErrCodeMissingNode  Code = "MISSING_NODE"
	ErrCodeDanglingLink Code = "DANGLING_LINK"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeUnknownCommand Code = "UNKNOWN_COMMAND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Coder is implemented by errors that carry a [Code].
type Coder interface {
	Code() Code
}

// Error is a structured error with a code and optional cause.
type Error struct {
	ErrCode Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.ErrCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.ErrCode, e.Message)
}

// Code returns the error code.
func (e *Error) Code() Code { return e.ErrCode }

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		ErrCode: code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		ErrCode: code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether the outermost coded error in err's chain has the given code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from the first error in the chain that
// implements [Coder]. Returns empty string if there is none.
func GetCode(err error) Code {
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
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
