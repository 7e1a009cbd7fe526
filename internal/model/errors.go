package model

import (
	"errors"
	"fmt"
)

// Error codes reported by the invoice core
const (
	// ErrCodeInvalidNumericInput is never returned: numeric input is coerced
	// to zero by decimal.ParseOrZero. It exists so status messages and logs
	// can name the policy.
	ErrCodeInvalidNumericInput = "INVALID_NUMERIC_INPUT"
	ErrCodeOutOfRange          = "OUT_OF_RANGE"
	ErrCodeMalformedDocument   = "MALFORMED_DOCUMENT"
	ErrCodeIOFailure           = "IO_FAILURE"
	ErrCodeResourceUnreadable  = "RESOURCE_UNREADABLE"
	ErrCodeFontUnavailable     = "FONT_UNAVAILABLE"
	ErrCodeRenderFailure       = "RENDER_FAILURE"
)

// InvoiceError represents a failure of a model, codec or renderer operation
type InvoiceError struct {
	Code    string
	Field   string
	Message string
	Cause   error
}

func (e *InvoiceError) Error() string {
	if e.Field != "" && e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Code, e.Field, e.Message, e.Cause)
	}
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *InvoiceError) Unwrap() error {
	return e.Cause
}

// NewInvoiceError creates a new invoice error
func NewInvoiceError(code, field, message string, cause error) *InvoiceError {
	return &InvoiceError{
		Code:    code,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode returns the code of the first InvoiceError in err's chain,
// or "" if there is none.
func ErrorCode(err error) string {
	var ie *InvoiceError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

// HasCode reports whether err carries the given code
func HasCode(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}

// ErrOutOfRange returns error when an item index is not a valid position
func ErrOutOfRange(index, count int) *InvoiceError {
	return NewInvoiceError(ErrCodeOutOfRange, "items",
		fmt.Sprintf("index %d out of range [0,%d)", index, count), nil)
}

// ErrMalformedDocument returns error when a saved invoice cannot be parsed
func ErrMalformedDocument(message string, cause error) *InvoiceError {
	return NewInvoiceError(ErrCodeMalformedDocument, "", message, cause)
}

// ErrIOFailure returns error when a file cannot be read or written
func ErrIOFailure(path string, cause error) *InvoiceError {
	return NewInvoiceError(ErrCodeIOFailure, path, "file access failed", cause)
}

// ErrResourceUnreadable returns error when the logo image cannot be read
func ErrResourceUnreadable(path string, cause error) *InvoiceError {
	return NewInvoiceError(ErrCodeResourceUnreadable, "logo", fmt.Sprintf("cannot read image %s", path), cause)
}

// ErrFontUnavailable returns error when no font covers the invoice text
func ErrFontUnavailable(message string, cause error) *InvoiceError {
	return NewInvoiceError(ErrCodeFontUnavailable, "font", message, cause)
}

// ErrRenderFailure returns error for lower-level document generation failures
func ErrRenderFailure(cause error) *InvoiceError {
	return NewInvoiceError(ErrCodeRenderFailure, "", "document generation failed", cause)
}
