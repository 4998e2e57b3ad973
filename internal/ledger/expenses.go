package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/tripledger/internal/apperrors"
	"github.com/mmynk/tripledger/internal/calculator"
	"github.com/mmynk/tripledger/internal/events"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
	"github.com/mmynk/tripledger/internal/storage"
)

// ExpenseDetail is an expense together with the shares its split produces.
type ExpenseDetail struct {
	models.Expense
	Shares []calculator.Share
}

// RecordExpense validates and stores a new expense.
//
// An omitted currency defaults to the trip's, an omitted date to today and an
// omitted split to an equal split over every active participant. The
// participants of an equal split are stored explicitly, so people who join
// later never change old expenses.
func (l *Ledger) RecordExpense(ctx context.Context, tripID string, in models.NewExpense) (detail *ExpenseDetail, err error) {
	defer func(start time.Time) { l.observe(ctx, "record_expense", start, err) }(time.Now())

	unlock := l.locks.lock(tripID)
	defer unlock()

	snap, err := l.store.LoadSnapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	detail, err = l.prepareExpense(snap, in)
	if err != nil {
		return nil, err
	}

	now := l.unixNow()
	detail.TripID = tripID
	detail.CreatedAt = now
	detail.UpdatedAt = now
	if err := l.store.CreateExpense(ctx, &detail.Expense); err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Expense recorded",
		"trip_id", tripID,
		"expense_id", detail.ID,
		"amount", detail.Amount,
		"strategy", detail.Split.Strategy(),
		"sharers", len(detail.Shares),
	)
	l.committed(ctx, events.ExpenseRecorded, tripID, detail.ID)
	return detail, nil
}

// PreviewSplit runs the same validation as RecordExpense and returns the
// resulting shares without storing anything.
func (l *Ledger) PreviewSplit(ctx context.Context, tripID string, in models.NewExpense) (detail *ExpenseDetail, err error) {
	defer func(start time.Time) { l.observe(ctx, "preview_split", start, err) }(time.Now())

	snap, err := l.store.LoadSnapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	detail, err = l.prepareExpense(snap, in)
	if err != nil {
		return nil, err
	}
	detail.TripID = tripID
	return detail, nil
}

// EditExpense applies patch to a stored expense and recomputes its split.
// Without a new split the stored one is reapplied to the new amount.
func (l *Ledger) EditExpense(ctx context.Context, tripID, expenseID string, patch models.ExpensePatch) (detail *ExpenseDetail, err error) {
	defer func(start time.Time) { l.observe(ctx, "edit_expense", start, err) }(time.Now())

	unlock := l.locks.lock(tripID)
	defer unlock()

	snap, err := l.store.LoadSnapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	var current *models.Expense
	for _, e := range snap.Expenses {
		if e.ID == expenseID {
			current = e
			break
		}
	}
	if current == nil {
		return nil, apperrors.NotFoundf("expense not found: %s", expenseID)
	}

	if patch.Split != nil {
		patch.Split = withDefaultSharers(snap, patch.Split)
	}
	updated := patch.Apply(*current.Clone())
	// Payer and sharers only need to be active when their balances move.
	moneyMoves := patch.PayerID != nil || patch.Amount != nil || patch.Split != nil
	detail, err = l.validateExpense(snap, updated, moneyMoves)
	if err != nil {
		return nil, err
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		detail.Description = describe(detail.Category, snap, detail.PayerID)
	}

	detail.UpdatedAt = l.unixNow()
	if err := l.store.UpdateExpense(ctx, &detail.Expense); err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Expense edited",
		"trip_id", tripID,
		"expense_id", expenseID,
		"amount", detail.Amount,
		"strategy", detail.Split.Strategy(),
	)
	l.committed(ctx, events.ExpenseEdited, tripID, expenseID)
	return detail, nil
}

// DeleteExpense removes an expense. Balances are recomputed on the next read.
func (l *Ledger) DeleteExpense(ctx context.Context, tripID, expenseID string) (err error) {
	defer func(start time.Time) { l.observe(ctx, "delete_expense", start, err) }(time.Now())

	unlock := l.locks.lock(tripID)
	defer unlock()

	if _, err := l.store.GetTrip(ctx, tripID); err != nil {
		return err
	}
	if err := l.store.DeleteExpense(ctx, tripID, expenseID); err != nil {
		return err
	}

	l.logger.InfoContext(ctx, "Expense deleted", "trip_id", tripID, "expense_id", expenseID)
	l.committed(ctx, events.ExpenseDeleted, tripID, expenseID)
	return nil
}

// GetExpense returns one expense with its computed shares.
func (l *Ledger) GetExpense(ctx context.Context, tripID, expenseID string) (detail *ExpenseDetail, err error) {
	defer func(start time.Time) { l.observe(ctx, "get_expense", start, err) }(time.Now())

	if _, err := l.store.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	e, err := l.store.GetExpense(ctx, tripID, expenseID)
	if err != nil {
		return nil, err
	}
	return withShares(e)
}

// ListExpenses returns the trip's expenses ordered by date, then creation.
func (l *Ledger) ListExpenses(ctx context.Context, tripID string) (details []*ExpenseDetail, err error) {
	defer func(start time.Time) { l.observe(ctx, "list_expenses", start, err) }(time.Now())

	snap, err := l.store.LoadSnapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	details = make([]*ExpenseDetail, 0, len(snap.Expenses))
	for _, e := range snap.Expenses {
		d, err := withShares(e)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

func withShares(e *models.Expense) (*ExpenseDetail, error) {
	split, err := calculator.CalculateSplit(e.Amount, e.PayerID, e.Split)
	if err != nil {
		return nil, apperrors.Invariantf("stored expense %s no longer splits: %v", e.ID, err)
	}
	return &ExpenseDetail{Expense: *e, Shares: split.Shares()}, nil
}

// prepareExpense fills defaults for a new expense and validates it.
func (l *Ledger) prepareExpense(snap *storage.Snapshot, in models.NewExpense) (*ExpenseDetail, error) {
	e := models.Expense{
		Description: in.Description,
		Amount:      in.Amount,
		Currency:    in.Currency,
		PayerID:     in.PayerID,
		Category:    in.Category,
		Date:        in.Date,
		Split:       in.Split,
	}
	if strings.TrimSpace(e.Currency) == "" {
		e.Currency = snap.Trip.Currency
	}
	if e.Date == "" {
		e.Date = l.now().UTC().Format(models.DateLayout)
	}
	if e.Split == nil {
		e.Split = models.EqualSplit{}
	}
	e.Split = withDefaultSharers(snap, e.Split)

	detail, err := l.validateExpense(snap, e, true)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(detail.Description) == "" {
		detail.Description = describe(detail.Category, snap, detail.PayerID)
	}
	return detail, nil
}

// withDefaultSharers fills an equal split that names nobody with every
// active participant of the trip.
func withDefaultSharers(snap *storage.Snapshot, split models.SplitSpec) models.SplitSpec {
	eq, ok := split.(models.EqualSplit)
	if !ok || len(eq.Participants) > 0 {
		return split
	}
	for _, p := range snap.Participants {
		if p.Active() {
			eq.Participants = append(eq.Participants, p.ID)
		}
	}
	return eq
}

// validateExpense checks e against the trip and computes its shares. When
// requireActive is set the payer and every sharer must be active
// participants; otherwise they only have to belong to the trip.
func (l *Ledger) validateExpense(snap *storage.Snapshot, e models.Expense, requireActive bool) (*ExpenseDetail, error) {
	if e.Amount <= 0 {
		return nil, apperrors.Validationf("amount must be positive, got %d", e.Amount)
	}
	if err := money.CheckRange(e.Amount); err != nil {
		return nil, err
	}

	currency, err := money.NormalizeCurrency(e.Currency)
	if err != nil {
		return nil, err
	}
	if currency != snap.Trip.Currency {
		return nil, apperrors.Validationf("expense currency %s differs from trip currency %s", currency, snap.Trip.Currency)
	}
	e.Currency = currency

	category, ok := models.ParseCategory(string(e.Category))
	if !ok {
		return nil, apperrors.Validationf("unknown category %q", e.Category)
	}
	e.Category = category

	if _, err := time.Parse(models.DateLayout, e.Date); err != nil {
		return nil, apperrors.Validationf("date %q is not a calendar day (YYYY-MM-DD)", e.Date)
	}
	e.Description = strings.TrimSpace(e.Description)

	if err := checkMember(snap, "payer", e.PayerID, requireActive); err != nil {
		return nil, err
	}
	if e.Split == nil {
		return nil, apperrors.Validationf("a split is required")
	}
	for _, id := range e.Split.Sharers() {
		if err := checkMember(snap, "sharer", id, requireActive); err != nil {
			return nil, err
		}
	}
	// Store equal splits in canonical order.
	if eq, ok := e.Split.(models.EqualSplit); ok {
		eq.Participants = eq.Sharers()
		e.Split = eq
	}

	split, err := calculator.CalculateSplit(e.Amount, e.PayerID, e.Split)
	if err != nil {
		return nil, err
	}
	return &ExpenseDetail{Expense: e, Shares: split.Shares()}, nil
}

func checkMember(snap *storage.Snapshot, role, participantID string, requireActive bool) error {
	p := findParticipant(snap.Participants, participantID)
	if p == nil {
		return apperrors.Validationf("%s %q is not a participant of the trip", role, participantID)
	}
	if requireActive && !p.Active() {
		return apperrors.Validationf("%s %q has been removed from the trip", role, participantID)
	}
	return nil
}

// describe generates a label such as "Food paid by Alice".
func describe(category models.Category, snap *storage.Snapshot, payerID string) string {
	name := payerID
	if p := findParticipant(snap.Participants, payerID); p != nil {
		name = p.Name
	}
	c := string(category)
	if c == "" {
		c = string(models.CategoryOther)
	}
	return fmt.Sprintf("%s paid by %s", strings.ToUpper(c[:1])+c[1:], name)
}
