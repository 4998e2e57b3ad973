package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/mmynk/tripledger/internal/apperrors"
	"github.com/mmynk/tripledger/internal/events"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
)

// RecordSettlement stores a payment from one participant to another. It
// counts as paid for the sender and owed for the receiver.
func (l *Ledger) RecordSettlement(ctx context.Context, tripID string, in models.NewSettlement) (settlement *models.Settlement, err error) {
	defer func(start time.Time) { l.observe(ctx, "record_settlement", start, err) }(time.Now())

	if in.Amount <= 0 {
		return nil, apperrors.Validationf("settlement amount must be positive, got %d", in.Amount)
	}
	if err := money.CheckRange(in.Amount); err != nil {
		return nil, err
	}
	if in.FromID == in.ToID {
		return nil, apperrors.Validationf("settlement sender and receiver must differ")
	}

	unlock := l.locks.lock(tripID)
	defer unlock()

	participants, err := l.store.ListParticipants(ctx, tripID)
	if err != nil {
		return nil, err
	}
	for _, id := range []string{in.FromID, in.ToID} {
		p := findParticipant(participants, id)
		if p == nil || !p.Active() {
			return nil, apperrors.Validationf("%q is not an active participant of the trip", id)
		}
	}

	settlement = &models.Settlement{
		TripID:    tripID,
		FromID:    in.FromID,
		ToID:      in.ToID,
		Amount:    in.Amount,
		Note:      strings.TrimSpace(in.Note),
		CreatedAt: l.unixNow(),
	}
	if err := l.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Settlement recorded",
		"trip_id", tripID,
		"settlement_id", settlement.ID,
		"from", settlement.FromID,
		"to", settlement.ToID,
		"amount", settlement.Amount,
	)
	l.committed(ctx, events.SettlementRecorded, tripID, settlement.ID)
	return settlement, nil
}

// ListSettlements returns recorded settlements in the order they were made.
func (l *Ledger) ListSettlements(ctx context.Context, tripID string) (settlements []*models.Settlement, err error) {
	defer func(start time.Time) { l.observe(ctx, "list_settlements", start, err) }(time.Now())

	snap, err := l.store.LoadSnapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return snap.Settlements, nil
}

// DeleteSettlement removes a recorded settlement.
func (l *Ledger) DeleteSettlement(ctx context.Context, tripID, settlementID string) (err error) {
	defer func(start time.Time) { l.observe(ctx, "delete_settlement", start, err) }(time.Now())

	unlock := l.locks.lock(tripID)
	defer unlock()

	if _, err := l.store.GetTrip(ctx, tripID); err != nil {
		return err
	}
	if err := l.store.DeleteSettlement(ctx, tripID, settlementID); err != nil {
		return err
	}

	l.logger.InfoContext(ctx, "Settlement deleted", "trip_id", tripID, "settlement_id", settlementID)
	l.committed(ctx, events.SettlementDeleted, tripID, settlementID)
	return nil
}
