// Package apperror carries typed errors from the service layer to the HTTP
// handlers. Services classify a failure into one of a few kinds and handlers
// pick the status code from the kind, never from the message text.
package apperror

import (
	"errors"
	"fmt"
)

// Kind is the stable category of an application error.
type Kind string

const (
	// KindNotFound marks a lookup of a quote, vehicle or inquiry that
	// matched no row.
	KindNotFound Kind = "not_found"
	// KindValidation marks rejected input: missing contact details, an
	// incomplete declaration, or a reference to an unknown vehicle.
	KindValidation Kind = "validation"
	// KindConflict marks uniqueness violations, such as registering the
	// same vehicle twice.
	KindConflict Kind = "conflict"
)

// Error pairs a Kind with a message safe to return to API clients. Err, when
// set, keeps the underlying cause for logs and errors.Is chains; it is never
// required for the client-facing message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func NotFound(msg string, err error) error   { return New(KindNotFound, msg, err) }
func Validation(msg string, err error) error { return New(KindValidation, msg, err) }
func Conflict(msg string, err error) error   { return New(KindConflict, msg, err) }

// Validationf builds a validation error with a formatted client-facing
// message.
func Validationf(format string, args ...interface{}) error {
	return New(KindValidation, fmt.Sprintf(format, args...), nil)
}

// KindOf returns the kind carried by err, or the empty Kind when err has
// none.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) || e == nil {
		return ""
	}
	return e.Kind
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
