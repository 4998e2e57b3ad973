// Package apperrors defines the error kinds surfaced by the ledger.
//
// Callers classify errors with errors.Is against the sentinel kinds:
//
//	if errors.Is(err, apperrors.ErrNotFound) { ... }
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates malformed input. Nothing was written.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates an unknown trip, participant, expense or settlement.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates the request clashes with current state, e.g. removing
	// a participant who still has an outstanding balance.
	ErrConflict = errors.New("conflict")

	// ErrInvariant indicates an internal consistency check failed. This is a bug;
	// stored state is left untouched.
	ErrInvariant = errors.New("invariant violation")
)

// Error is a classified error with a human-readable message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// Unwrap returns the error kind so errors.Is matches the sentinel.
func (e *Error) Unwrap() error {
	return e.Kind
}

func newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Validationf returns an ErrValidation error.
func Validationf(format string, args ...any) error {
	return newf(ErrValidation, format, args...)
}

// NotFoundf returns an ErrNotFound error.
func NotFoundf(format string, args ...any) error {
	return newf(ErrNotFound, format, args...)
}

// Conflictf returns an ErrConflict error.
func Conflictf(format string, args ...any) error {
	return newf(ErrConflict, format, args...)
}

// Invariantf returns an ErrInvariant error.
func Invariantf(format string, args ...any) error {
	return newf(ErrInvariant, format, args...)
}

// KindOf reports which sentinel kind err belongs to, or nil if it is unclassified.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrInvariant} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
