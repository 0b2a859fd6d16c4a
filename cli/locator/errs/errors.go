package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Code is the stable machine-readable error vocabulary consumed by the API
// boundary. Callers branch on codes, not on message text.
type Code string

const (
	InvalidIdentifier Code = "INVALID_IDENTIFIER"
	InvalidBatch      Code = "INVALID_BATCH"
	InvalidPagination Code = "INVALID_PAGINATION"
	NotFound          Code = "NOT_FOUND"
	DecodeError       Code = "DECODE_ERROR"
	StoreUnavailable  Code = "STORE_UNAVAILABLE"
)

// Error carries a taxonomy code alongside the message. Details holds the
// offending entries for batch validation failures.
type Error struct {
	Code    Code
	Message string
	Details []string
}

func (e *Error) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(e.Details, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetails attaches offending entries to the error.
func (e *Error) WithDetails(details ...string) *Error {
	e.Details = append(e.Details, details...)
	return e
}

// CodeOf extracts the taxonomy code from err, unwrapping as needed.
// It returns an empty code for plain errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
