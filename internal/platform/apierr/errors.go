// Package apierr defines the abstract error-kind taxonomy and the
// caller-visible error type returned from the /rpc surface.
package apierr

import (
	"fmt"
	"net/http"
)

// Kind is one of the abstract error kinds callers can match against.
type Kind string

const (
	KindUpstreamTransient     Kind = "upstream-transient"
	KindUpstreamNotModified   Kind = "upstream-not-modified"
	KindUpstreamMalformed     Kind = "upstream-malformed"
	KindNotConfigured         Kind = "not-configured"
	KindMissingReference      Kind = "missing-reference"
	KindPreconditionViolated  Kind = "precondition-violated"
	KindPerFlightException    Kind = "per-flight-exception"
	KindTerminal              Kind = "terminal"
)

// Error is the error type surfaced to RPC callers. It carries enough to
// render a correlation-taggable message without exposing internal types.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, message string, status int) *Error {
	return &Error{Kind: kind, Message: message, Status: status}
}

// Wrap creates an Error of the given kind wrapping an underlying error.
func Wrap(err error, kind Kind, message string, status int) *Error {
	return &Error{Kind: kind, Message: message, Status: status, Err: err}
}

// Predefined errors for the common missing-reference / precondition cases.
var (
	ErrFlightNotFound = New(KindMissingReference, "flight not found", http.StatusNotFound)
	ErrBadRequest     = New(KindPreconditionViolated, "invalid request", http.StatusBadRequest)
	ErrInternal       = New(KindTerminal, "internal error", http.StatusInternalServerError)
)
