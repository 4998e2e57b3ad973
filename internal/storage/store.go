// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/tripledger/internal/models"
)

// Snapshot is a consistent view of one trip, read at a single point in time.
type Snapshot struct {
	Trip         *models.Trip
	Participants []*models.Participant // including archived ones, ordered by ID
	Expenses     []*models.Expense     // ordered by date, then creation
	Settlements  []*models.Settlement  // ordered by creation
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, in-memory, etc.)
// without changing the ledger.
//
// Lookups of unknown records return an apperrors.ErrNotFound error. Create
// methods populate empty ID fields. Stores do not validate business rules;
// the ledger does that before calling them.
type Store interface {
	CreateTrip(ctx context.Context, trip *models.Trip) error
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)
	ListTrips(ctx context.Context) ([]*models.Trip, error)

	CreateParticipant(ctx context.Context, p *models.Participant) error
	// ListParticipants returns active and archived participants ordered by ID.
	ListParticipants(ctx context.Context, tripID string) ([]*models.Participant, error)
	// ArchiveParticipant sets RemovedAt on a participant that is still referenced.
	ArchiveParticipant(ctx context.Context, tripID, participantID string, removedAt int64) error
	DeleteParticipant(ctx context.Context, tripID, participantID string) error

	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, tripID, expenseID string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, tripID, expenseID string) error

	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	DeleteSettlement(ctx context.Context, tripID, settlementID string) error

	// LoadSnapshot reads everything belonging to a trip in one consistent read.
	LoadSnapshot(ctx context.Context, tripID string) (*Snapshot, error)

	// Close releases any resources held by the store.
	Close() error
}
