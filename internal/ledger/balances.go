package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/tripledger/internal/apperrors"
	"github.com/mmynk/tripledger/internal/calculator"
	"github.com/mmynk/tripledger/internal/money"
	"github.com/mmynk/tripledger/internal/storage"
)

// ParticipantBalance is one participant's standing in a trip.
type ParticipantBalance struct {
	ParticipantID string
	Name          string
	Paid          money.Amount
	Owed          money.Amount
	Net           money.Amount // Paid - Owed; positive means the trip owes them
}

// BalanceReport is the derived state of a trip's money.
type BalanceReport struct {
	TripID   string
	Currency string

	// Balances lists active participants, plus archived ones whose balance is
	// not zero, ordered by participant ID.
	Balances []ParticipantBalance

	// Settlements are the suggested transfers that clear every balance.
	Settlements []calculator.Transfer
}

func (r *BalanceReport) net(participantID string) money.Amount {
	for _, b := range r.Balances {
		if b.ParticipantID == participantID {
			return b.Net
		}
	}
	return 0
}

func (r *BalanceReport) clone() *BalanceReport {
	c := *r
	c.Balances = append([]ParticipantBalance(nil), r.Balances...)
	c.Settlements = append([]calculator.Transfer(nil), r.Settlements...)
	return &c
}

// GetBalances returns net balances and suggested settlements for a trip.
// Reports are cached until the next write to the trip.
func (l *Ledger) GetBalances(ctx context.Context, tripID string) (report *BalanceReport, err error) {
	defer func(start time.Time) { l.observe(ctx, "get_balances", start, err) }(time.Now())

	cached, gen, ok := l.cache.get(tripID)
	l.metrics.RecordCacheLookup(ok)
	if ok {
		return cached.clone(), nil
	}

	report, err = l.cache.do(ctx, tripID, gen, func(ctx context.Context) (*BalanceReport, error) {
		snap, err := l.store.LoadSnapshot(ctx, tripID)
		if err != nil {
			return nil, err
		}
		report, err := buildReport(snap)
		if err != nil {
			return nil, err
		}
		if l.cache.put(tripID, gen, report) {
			l.logger.DebugContext(ctx, "Balances cached", "trip_id", tripID, "generation", gen)
		}
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return report.clone(), nil
}

// SuggestSettlements returns the transfers that would settle the trip.
func (l *Ledger) SuggestSettlements(ctx context.Context, tripID string) ([]calculator.Transfer, error) {
	report, err := l.GetBalances(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return report.Settlements, nil
}

// buildReport derives balances from a snapshot. Stored expenses were
// validated when written, so a split that no longer computes is reported as
// an invariant violation rather than bad input.
func buildReport(snap *storage.Snapshot) (*BalanceReport, error) {
	ids := make([]string, 0, len(snap.Participants))
	names := make(map[string]string, len(snap.Participants))
	active := make(map[string]bool, len(snap.Participants))
	for _, p := range snap.Participants {
		ids = append(ids, p.ID)
		names[p.ID] = p.Name
		active[p.ID] = p.Active()
	}

	expenses := make([]calculator.ExpenseForBalance, len(snap.Expenses))
	for i, e := range snap.Expenses {
		expenses[i] = calculator.ExpenseForBalance{
			ID:      e.ID,
			PayerID: e.PayerID,
			Total:   e.Amount,
			Split:   e.Split,
		}
	}
	settlements := make([]calculator.SettlementForBalance, len(snap.Settlements))
	for i, s := range snap.Settlements {
		settlements[i] = calculator.SettlementForBalance{
			FromID: s.FromID,
			ToID:   s.ToID,
			Amount: s.Amount,
		}
	}

	balances, err := calculator.CalculateBalances(ids, expenses, settlements)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			return nil, apperrors.Invariantf("stored data of trip %s no longer splits: %v", snap.Trip.ID, err)
		}
		return nil, err
	}

	transfers, err := calculator.SuggestSettlements(calculator.NetBalances(balances))
	if err != nil {
		return nil, err
	}

	report := &BalanceReport{
		TripID:      snap.Trip.ID,
		Currency:    snap.Trip.Currency,
		Settlements: transfers,
	}
	for _, b := range balances {
		if !active[b.ParticipantID] && b.Net == 0 {
			continue
		}
		name, ok := names[b.ParticipantID]
		if !ok {
			name = b.ParticipantID
		}
		report.Balances = append(report.Balances, ParticipantBalance{
			ParticipantID: b.ParticipantID,
			Name:          name,
			Paid:          b.Paid,
			Owed:          b.Owed,
			Net:           b.Net,
		})
	}
	return report, nil
}
