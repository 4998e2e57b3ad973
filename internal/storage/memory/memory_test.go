package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tripledger/internal/apperrors"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
)

func TestStoreTripLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	trip := &models.Trip{Name: "Alps", Currency: "CHF"}
	require.NoError(t, s.CreateTrip(ctx, trip))
	assert.NotEmpty(t, trip.ID)
	assert.NotZero(t, trip.CreatedAt)

	got, err := s.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip, got)

	err = s.CreateTrip(ctx, &models.Trip{ID: trip.ID})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = s.GetTrip(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	trips, err := s.ListTrips(ctx)
	require.NoError(t, err)
	assert.Len(t, trips, 1)
}

func TestStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := New()

	trip := &models.Trip{Name: "Alps", Currency: "CHF"}
	require.NoError(t, s.CreateTrip(ctx, trip))

	e := &models.Expense{
		TripID:  trip.ID,
		Amount:  300,
		PayerID: "a",
		Date:    "2024-01-01",
		Split:   models.ExactSplit{Amounts: map[string]money.Amount{"a": 100, "b": 200}},
	}
	require.NoError(t, s.CreateExpense(ctx, e))

	// Mutating the caller's copy must not leak into the store.
	e.Split.(models.ExactSplit).Amounts["a"] = 999

	got, err := s.GetExpense(ctx, trip.ID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Amount(100), got.Split.(models.ExactSplit).Amounts["a"])
}

func TestStoreParticipants(t *testing.T) {
	ctx := context.Background()
	s := New()

	trip := &models.Trip{Name: "Alps", Currency: "CHF"}
	require.NoError(t, s.CreateTrip(ctx, trip))

	for _, id := range []string{"b", "a"} {
		require.NoError(t, s.CreateParticipant(ctx, &models.Participant{ID: id, TripID: trip.ID, Name: id}))
	}
	require.NoError(t, s.ArchiveParticipant(ctx, trip.ID, "a", 7))
	require.NoError(t, s.DeleteParticipant(ctx, trip.ID, "b"))

	list, err := s.ListParticipants(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(7), list[0].RemovedAt)

	assert.ErrorIs(t, s.DeleteParticipant(ctx, trip.ID, "b"), apperrors.ErrNotFound)
	assert.ErrorIs(t, s.ArchiveParticipant(ctx, trip.ID, "zz", 1), apperrors.ErrNotFound)
	assert.ErrorIs(t, s.CreateParticipant(ctx, &models.Participant{TripID: "missing"}), apperrors.ErrNotFound)
}

func TestLoadSnapshotOrdering(t *testing.T) {
	ctx := context.Background()
	s := New()

	trip := &models.Trip{Name: "Alps", Currency: "CHF"}
	require.NoError(t, s.CreateTrip(ctx, trip))

	split := models.EqualSplit{Participants: []string{"a"}}
	for _, d := range []string{"2024-01-03", "2024-01-01", "2024-01-03"} {
		require.NoError(t, s.CreateExpense(ctx, &models.Expense{
			TripID: trip.ID, Description: d, Amount: 1, PayerID: "a", Date: d, Split: split,
		}))
	}
	var ids []string
	for _, amount := range []money.Amount{5, 3, 9} {
		st := &models.Settlement{TripID: trip.ID, FromID: "a", ToID: "b", Amount: amount}
		require.NoError(t, s.CreateSettlement(ctx, st))
		ids = append(ids, st.ID)
	}
	require.NoError(t, s.DeleteSettlement(ctx, trip.ID, ids[1]))
	assert.ErrorIs(t, s.DeleteSettlement(ctx, trip.ID, ids[1]), apperrors.ErrNotFound)

	snap, err := s.LoadSnapshot(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, snap.Expenses, 3)
	assert.Equal(t, "2024-01-01", snap.Expenses[0].Date)
	assert.Equal(t, "2024-01-03", snap.Expenses[1].Date)

	require.Len(t, snap.Settlements, 2)
	assert.Equal(t, money.Amount(5), snap.Settlements[0].Amount)
	assert.Equal(t, money.Amount(9), snap.Settlements[1].Amount)

	first := snap.Expenses[1].ID
	require.NoError(t, s.DeleteExpense(ctx, trip.ID, first))
	_, err = s.GetExpense(ctx, trip.ID, first)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, s.UpdateExpense(ctx, &models.Expense{ID: first, TripID: trip.ID, Split: split}), apperrors.ErrNotFound)
}
