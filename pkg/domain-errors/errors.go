// Package domainerrors provides coded errors shared by every layer of the
// service. Services attach a Code that classifies the failure; the HTTP layer
// maps codes to status codes and callers branch on codes instead of matching
// error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies an error for callers and the transport layer.
type Code string

const (
	// CodeValidation marks input that failed domain validation.
	CodeValidation Code = "validation"
	// CodeInvalidInput marks malformed input caught before domain validation.
	CodeInvalidInput Code = "invalid_input"
	// CodeInvariantViolation marks a broken domain invariant. At table-build
	// time this is a programmer error, not a runtime condition to recover from.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeBadRequest marks a request the transport layer could not accept.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks a lookup that matched nothing.
	CodeNotFound Code = "not_found"
	// CodeUnauthorized marks missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks valid credentials without sufficient rights.
	CodeForbidden Code = "forbidden"
	// CodeConflict marks a uniqueness or state conflict.
	CodeConflict Code = "conflict"
	// CodeTimeout marks an operation that exceeded its deadline.
	CodeTimeout Code = "timeout"
	// CodeInternal marks an unexpected internal failure. Transport layers must
	// not leak its description to clients.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. The zero value is not useful; construct
// through New or Wrap.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs a coded error with a message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is / errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readability alias for HasCode used at call sites that branch on a
// single code.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code carried by err, or CodeInternal when err carries
// none. Transport layers use this to pick a status for arbitrary errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Violations collects validation failures so builders can report every broken
// field at once instead of stopping at the first.
type Violations struct {
	messages []string
}

// Add records one violation. Empty messages are ignored.
func (v *Violations) Add(message string) {
	if message == "" {
		return
	}
	v.messages = append(v.messages, message)
}

// Addf records one formatted violation.
func (v *Violations) Addf(format string, args ...any) {
	v.Add(fmt.Sprintf(format, args...))
}

// Load materializes the collected violations as a single CodeValidation error,
// or nil when nothing was recorded.
func (v *Violations) Load() error {
	if len(v.messages) == 0 {
		return nil
	}
	return New(CodeValidation, strings.Join(v.messages, "; "))
}
