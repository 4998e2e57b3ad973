// Package metrics records ledger activity.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/tripledger/internal/apperrors"
)

// Recorder receives ledger measurements. Implementations must be safe for
// concurrent use.
type Recorder interface {
	// RecordOperation records one ledger operation and how it ended.
	RecordOperation(op string, err error, duration time.Duration)

	// RecordCacheLookup records a balance cache hit or miss.
	RecordCacheLookup(hit bool)

	// RecordInvariantViolation counts a failed consistency check.
	RecordInvariantViolation(op string)

	// RecordPublishFailure counts an event that could not be delivered.
	RecordPublishFailure(eventType string)
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordOperation(string, error, time.Duration) {}
func (Nop) RecordCacheLookup(bool)                       {}
func (Nop) RecordInvariantViolation(string)              {}
func (Nop) RecordPublishFailure(string)                  {}

// Outcome labels an operation result by error kind.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	switch apperrors.KindOf(err) {
	case apperrors.ErrValidation:
		return "validation"
	case apperrors.ErrNotFound:
		return "not_found"
	case apperrors.ErrConflict:
		return "conflict"
	case apperrors.ErrInvariant:
		return "invariant"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "error"
}
