// Package apperror defines the error taxonomy shared by the engine packages
// and mapped to HTTP status codes at the controller boundary.
package apperror

import (
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies an engine failure for the caller
type Kind int

const (
	// KindValidation is malformed or missing input; never retried
	KindValidation Kind = iota
	// KindStateConflict is an operation illegal in the record's current state
	KindStateConflict
	// KindNotFound is an unknown record reference
	KindNotFound
	// KindAuthorization is a caller lacking the role or ownership for the operation
	KindAuthorization
	// KindTransient is a collaborator I/O failure; state unchanged, caller may retry
	KindTransient
)

// Error carries a Kind alongside the wrapped cause
type Error struct {
	kind Kind
	err  error
}

func (e *Error) Error() string { return e.err.Error() }

// Unwrap exposes the cause for errors.Is/As
func (e *Error) Unwrap() error { return e.err }

// Kind returns the classification of the error
func (e *Error) Kind() Kind { return e.kind }

// New creates a classified error from a message
func New(kind Kind, msg string) error {
	return &Error{kind: kind, err: errors.New(msg)}
}

// Newf creates a classified error from a format string
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{kind: kind, err: errors.Errorf(format, args...)}
}

// Wrap classifies an existing error, annotating it with msg.
// Returns nil when err is nil.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, err: errors.Wrap(err, msg)}
}

// KindOf extracts the Kind of err, defaulting to KindTransient for
// unclassified errors so callers treat unknown failures as retryable I/O.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.kind
	}
	return KindTransient
}

// IsKind reports whether err is classified as kind
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.kind == kind
	}
	return false
}

// HTTPStatus maps a classified error to the status code controllers respond with
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindStateConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
