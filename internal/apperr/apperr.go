// Package apperr defines the error taxonomy shared by the storyboard services.
//
// Go Pattern: Instead of exception classes, we return a single concrete error
// type carrying a Kind. Callers classify with errors.As (via KindOf), so the
// original cause stays reachable through Unwrap for logging.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and HTTP mapping.
type Kind string

const (
	// KindValidation means the caller's input was rejected before any external call.
	KindValidation Kind = "validation"
	// KindConfiguration means a required credential is missing or was rejected.
	KindConfiguration Kind = "configuration"
	// KindGeneration means the model answered with nothing usable.
	KindGeneration Kind = "generation"
	// KindProvider means an upstream HTTP service failed (non-2xx, bad JSON, unreachable).
	KindProvider Kind = "provider"
	// KindPersistence means the document store write or read failed.
	KindPersistence Kind = "persistence"
	// KindNotFound means the requested document does not exist for this owner.
	KindNotFound Kind = "not_found"
	// KindInternal is anything unclassified.
	KindInternal Kind = "internal"
)

// Error is the concrete error type returned at component boundaries.
type Error struct {
	Kind    Kind
	Message string
	// Status is the upstream HTTP status for provider errors (0 if none).
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a KindValidation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Configuration builds a KindConfiguration error. The message should name the
// credential the user has to supply.
func Configuration(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// Generation wraps a failed or unusable model response.
func Generation(err error, format string, args ...any) *Error {
	return &Error{Kind: KindGeneration, Message: fmt.Sprintf(format, args...), Err: err}
}

// Provider wraps an upstream failure, recording the HTTP status when known.
func Provider(status int, err error, format string, args ...any) *Error {
	return &Error{Kind: KindProvider, Message: fmt.Sprintf(format, args...), Status: status, Err: err}
}

// Persistence wraps a store failure.
func Persistence(err error, format string, args ...any) *Error {
	return &Error{Kind: KindPersistence, Message: fmt.Sprintf(format, args...), Err: err}
}

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure.
func Internal(err error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
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

// Message returns the user-facing message of err: the *Error message when
// present, otherwise err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
