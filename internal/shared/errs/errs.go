// Package errs defines the error taxonomy shared by every layer: validation,
// not-found, upstream provider and persistence failures.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping and logging.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindUpstream    Kind = "upstream_provider"
	KindPersistence Kind = "persistence"
	KindInternal    Kind = "internal"
)

// Error is a classified error. Op names the operation that failed
// (e.g. "holding.AddManual") and Err carries the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	default:
		return e.Msg
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports missing or malformed input. Never retried.
func Validation(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}

// InvalidInput wraps a domain validation error.
func InvalidInput(op string, err error) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: err.Error(), Err: err}
}

// NotFound reports a resource that is absent or not owned by the caller.
func NotFound(op string, err error) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: "resource not found", Err: err}
}

// Upstream reports a failed or non-success call to an external provider.
func Upstream(op, provider string, err error) *Error {
	return &Error{Kind: KindUpstream, Op: op, Msg: provider + " request failed", Err: err}
}

// Persistence reports a failed store operation.
func Persistence(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Op: op, Msg: "store operation failed", Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
