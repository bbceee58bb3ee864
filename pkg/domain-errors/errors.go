// Package domainerrors provides coded errors for the service's domain and
// transport layers. Services attach a Code describing the failure class;
// httputil maps codes to HTTP statuses at the boundary. Wrapped causes stay
// available to errors.Is/errors.As, so sentinel checks keep working through
// the domain layer.
//
// Import convention: dErrors "watchgate/pkg/domain-errors".
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error. Codes are stable API: handlers, tests, and
// the HTTP error mapper all switch on them.
type Code string

const (
	// CodeBadRequest: the request is syntactically unusable (bad JSON, wrong
	// content type, malformed path segment).
	CodeBadRequest Code = "bad_request"
	// CodeInvalidRequest: a well-formed request that violates protocol rules.
	CodeInvalidRequest Code = "invalid_request"
	// CodeValidation: a field failed semantic validation.
	CodeValidation Code = "validation_error"
	// CodeInvalidInput: a domain primitive rejected its input at a trust
	// boundary (id parsing, enum parsing).
	CodeInvalidInput Code = "invalid_input"
	// CodeUnauthorized: missing, expired, revoked, or unverifiable credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden: authenticated but not allowed.
	CodeForbidden Code = "forbidden"
	// CodeNotFound: the referenced resource does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict: the operation conflicts with current resource state.
	CodeConflict Code = "conflict"
	// CodePrecondition: a required precondition is unmet; the operation was
	// rejected before any state change or network call.
	CodePrecondition Code = "precondition_failed"
	// CodeTimeout: the operation was abandoned because its context expired.
	CodeTimeout Code = "timeout"
	// CodeUnavailable: an upstream collaborator failed or is unreachable.
	CodeUnavailable Code = "unavailable"
	// CodeInternal: unexpected failure; details are never surfaced to clients.
	CodeInternal Code = "internal"
	// CodeInvariantViolation: a state invariant the code relies on was broken.
	// Treated as internal at the boundary but tracked separately.
	CodeInvariantViolation Code = "invariant_violation"
)

// Error is a coded domain error with an optional wrapped cause.
type Error struct {
	code Code
	msg  string
	err  error
}

// New creates a coded error with a caller-facing message.
func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

// Wrap attaches a code and message to an underlying cause. A nil cause
// returns nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, msg string) *Error {
	if err == nil {
		return nil
	}
	return &Error{code: code, msg: msg, err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

// Unwrap exposes the cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.err }

// Code returns the error's classification.
func (e *Error) Code() Code { return e.code }

// Message returns the caller-facing message without the code prefix.
func (e *Error) Message() string { return e.msg }

// HasCode reports whether err or any error in its chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.code == code {
			return true
		}
		err = de.err
	}
	return false
}

// Is is shorthand for HasCode, matching assertion call sites in tests.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf returns the outermost code in err's chain, or CodeInternal when the
// chain carries none. Nil maps to the empty code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	return CodeInternal
}
