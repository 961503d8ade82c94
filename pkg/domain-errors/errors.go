// Package domainerrors defines the code-based error type shared by every
// service in the module. Stores return sentinel errors; services translate
// them into these, and the HTTP layer maps codes onto status lines.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for callers that dispatch on kind rather than text.
type Code string

const (
	// CodeInvalidInput marks malformed identifiers and arguments of the
	// wrong shape (empty member lists, unknown account types).
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks requests the transport layer could not decode.
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized marks failed or missing authentication.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks operations the acting identity may not perform,
	// such as updating a field outside the whitelist.
	CodeForbidden Code = "forbidden"
	// CodeNotFound marks lookups with zero (or ambiguous) matches.
	CodeNotFound Code = "not_found"
	// CodeConflict marks unique-constraint violations on creation.
	CodeConflict Code = "conflict"
	// CodeInvariantViolation marks model-level rule breaches.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks storage and other infrastructure failures.
	CodeInternal Code = "internal_error"
)

// Error carries a code, a human-readable message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause stays
// reachable through errors.Is/errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err or anything it wraps carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal so that
// unclassified failures never leak as anything weaker.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the message from err, or an empty string when err is
// not a domain error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// ToHTTPStatus maps a code onto the HTTP status the transport layer writes.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
