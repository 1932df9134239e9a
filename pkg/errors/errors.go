// Package errors provides structured error types for storeshots.
//
// Every failure that crosses a package boundary carries a machine-readable
// Code so the CLI, the HTTP API and the batch exporter can decide how to
// react without string matching:
//   - CATALOG_LOOKUP_FAILED: unknown layout or device id
//   - ELEMENT_NOT_FOUND: the capture target is missing at capture time
//   - ENCODING_FAILED: the capture produced no drawable buffer or the encoder failed
//   - INVALID_IMAGE_SOURCE: an embedded screenshot could not be read or decoded
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSize, "width must be positive, got %d", w)
//	if errors.Is(err, errors.ErrCodeInvalidSize) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeEncodingFailed, origErr, "encode %s", name)
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
	ErrCodeInvalidSize   Code = "INVALID_SIZE"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Lookup errors
	ErrCodeNotFound            Code = "NOT_FOUND"
	ErrCodeCatalogLookupFailed Code = "CATALOG_LOOKUP_FAILED"

	// Render and export errors
	ErrCodeElementNotFound    Code = "ELEMENT_NOT_FOUND"
	ErrCodeEncodingFailed     Code = "ENCODING_FAILED"
	ErrCodeInvalidImageSource Code = "INVALID_IMAGE_SOURCE"
	ErrCodeCanceled           Code = "CANCELED"

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

// FromContext converts a context error into a CANCELED error, preserving
// the original as the cause. It returns nil for a nil error.
func FromContext(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(ErrCodeCanceled, err, format, args...)
}

// Recoverable reports whether a failure should be surfaced to the caller
// while leaving the rest of a batch untouched. Cancellation is not
// recoverable: once the context is done no further items are attempted.
func Recoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeElementNotFound, ErrCodeEncodingFailed, ErrCodeInvalidImageSource, ErrCodeCatalogLookupFailed:
		return true
	}
	return false
}
