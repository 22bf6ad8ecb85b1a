// Package errs defines the error taxonomy shared by the store, the cart
// aggregator, checkout and the live query engine.
//
// Every failure that crosses a package boundary is an *Error carrying a Code.
// Callers branch on the code, never on message text:
//
//	if errs.Is(err, errs.EmptyCart) {
//	    // prompt the user to add items
//	}
//
// Sentinel values (ErrNotFound, ErrEmptyCart, ...) match any *Error with the
// same code under errors.Is.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code categorizes an error.
type Code string

const (
	// NotFound indicates the referenced row does not exist.
	NotFound Code = "NOT_FOUND"

	// ConstraintViolation indicates a foreign key target is missing, a
	// uniqueness rule was broken or a stored value is out of range.
	ConstraintViolation Code = "CONSTRAINT_VIOLATION"

	// EmptyCart indicates checkout was attempted with no cart lines.
	EmptyCart Code = "EMPTY_CART"

	// TotalMismatch indicates the caller-confirmed total differs from the
	// total computed from current menu prices.
	TotalMismatch Code = "TOTAL_MISMATCH"

	// InvalidTransition indicates an order status change the state machine forbids.
	InvalidTransition Code = "INVALID_TRANSITION"

	// InvalidArgument indicates malformed caller input.
	InvalidArgument Code = "INVALID_ARGUMENT"

	// Cancelled indicates the operation was aborted before completion.
	Cancelled Code = "CANCELLED"

	// StoreFailure indicates an underlying I/O or durability failure.
	StoreFailure Code = "STORE_FAILURE"
)

// Sentinels for use with errors.Is.
var (
	ErrNotFound            = &Error{Code: NotFound}
	ErrConstraintViolation = &Error{Code: ConstraintViolation}
	ErrEmptyCart           = &Error{Code: EmptyCart}
	ErrTotalMismatch       = &Error{Code: TotalMismatch}
	ErrInvalidTransition   = &Error{Code: InvalidTransition}
	ErrInvalidArgument     = &Error{Code: InvalidArgument}
	ErrCancelled           = &Error{Code: Cancelled}
	ErrStoreFailure        = &Error{Code: StoreFailure}
)

// Error is a categorized failure.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Op names the operation that failed, e.g. "cart.add".
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error

	// Details contains additional context (expected/actual totals, ids).
	Details map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%s", k, e.Details[k])
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
// This lets the package sentinels match wrapped errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates an error with a code, operation and message.
func New(code Code, op, message string) *Error {
	return &Error{Code: code, Op: op, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and operation to an underlying error.
// An err that is already an *Error keeps its own code.
func Wrap(code Code, op string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: code, Op: op, Err: err}
}

// WithDetail returns e with an extra detail entry.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// CodeOf returns the code of err, or "" when err is nil.
// Errors outside the taxonomy report StoreFailure.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return StoreFailure
}

// Is reports whether err carries the given code.
// Uses errors.As to handle wrapped errors.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
