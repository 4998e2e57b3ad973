package ledger

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tripledger/internal/apperrors"
	"github.com/mmynk/tripledger/internal/calculator"
	"github.com/mmynk/tripledger/internal/events"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
	"github.com/mmynk/tripledger/internal/storage"
	"github.com/mmynk/tripledger/internal/storage/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	var ts []events.Type
	for _, e := range p.events {
		ts = append(ts, e.Type)
	}
	return ts
}

type countingMetrics struct {
	mu          sync.Mutex
	hits        int
	misses      int
	invariants  int
	pubFailures int
}

func (m *countingMetrics) RecordOperation(string, error, time.Duration) {}

func (m *countingMetrics) RecordCacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *countingMetrics) RecordInvariantViolation(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invariants++
}

func (m *countingMetrics) RecordPublishFailure(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pubFailures++
}

type fixture struct {
	ledger    *Ledger
	store     storage.Store
	publisher *recordingPublisher
	metrics   *countingMetrics
	trip      *models.Trip
	ids       []string // participant IDs, sorted
	byName    map[string]string
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	f := &fixture{
		store:     memory.New(),
		publisher: &recordingPublisher{},
		metrics:   &countingMetrics{},
		byName:    make(map[string]string),
	}
	l, err := New(f.store,
		WithPublisher(f.publisher),
		WithMetrics(f.metrics),
		WithClock(func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }),
	)
	require.NoError(t, err)
	f.ledger = l

	ctx := context.Background()
	f.trip, err = l.CreateTrip(ctx, "Porto", "usd")
	require.NoError(t, err)
	for _, name := range names {
		p, err := l.AddParticipant(ctx, f.trip.ID, name)
		require.NoError(t, err)
		f.byName[name] = p.ID
	}
	active, err := l.ListParticipants(ctx, f.trip.ID)
	require.NoError(t, err)
	for _, p := range active {
		f.ids = append(f.ids, p.ID)
	}
	return f
}

func (f *fixture) record(t *testing.T, payer string, amount money.Amount, split models.SplitSpec) *ExpenseDetail {
	t.Helper()
	d, err := f.ledger.RecordExpense(context.Background(), f.trip.ID, models.NewExpense{
		PayerID: f.byName[payer],
		Amount:  amount,
		Split:   split,
	})
	require.NoError(t, err)
	return d
}

func (f *fixture) net(t *testing.T) map[string]money.Amount {
	t.Helper()
	report, err := f.ledger.GetBalances(context.Background(), f.trip.ID)
	require.NoError(t, err)
	net := make(map[string]money.Amount)
	for _, b := range report.Balances {
		net[b.Name] = b.Net
	}
	return net
}

func TestCreateTrip(t *testing.T) {
	l, err := New(memory.New())
	require.NoError(t, err)
	ctx := context.Background()

	trip, err := l.CreateTrip(ctx, "  Rome  ", "eur")
	require.NoError(t, err)
	assert.Equal(t, "Rome", trip.Name)
	assert.Equal(t, "EUR", trip.Currency)

	_, err = l.CreateTrip(ctx, "Rome", "EURO")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = l.CreateTrip(ctx, " ", "EUR")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = l.GetTrip(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	trips, err := l.ListTrips(ctx)
	require.NoError(t, err)
	assert.Len(t, trips, 1)
}

func TestAddParticipant(t *testing.T) {
	f := newFixture(t, "Alice")
	ctx := context.Background()

	_, err := f.ledger.AddParticipant(ctx, f.trip.ID, "alice")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = f.ledger.AddParticipant(ctx, f.trip.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.ledger.AddParticipant(ctx, "missing", "Bob")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEqualSplitOfHundredAmongThree(t *testing.T) {
	f := newFixture(t, "Alice", "Bob", "Carol")

	d := f.record(t, "Alice", 10000, nil)

	require.Len(t, d.Shares, 3)
	assert.Equal(t, calculator.Share{ParticipantID: f.ids[0], Amount: 3334}, d.Shares[0])
	assert.Equal(t, money.Amount(3333), d.Shares[1].Amount)
	assert.Equal(t, money.Amount(3333), d.Shares[2].Amount)
	assert.Equal(t, "USD", d.Currency)
	assert.Equal(t, "2024-06-01", d.Date)
	assert.Equal(t, models.CategoryOther, d.Category)
	assert.Equal(t, "Other paid by Alice", d.Description)
}

func TestEditExpenseRecomputesShares(t *testing.T) {
	f := newFixture(t, "Alice", "Bob", "Carol")
	ctx := context.Background()

	d := f.record(t, "Alice", 9000, nil)
	before := f.net(t)
	assert.Equal(t, money.Amount(6000), before["Alice"])

	amount := money.Amount(12000)
	edited, err := f.ledger.EditExpense(ctx, f.trip.ID, d.ID, models.ExpensePatch{Amount: &amount})
	require.NoError(t, err)
	for _, s := range edited.Shares {
		assert.Equal(t, money.Amount(4000), s.Amount)
	}

	after := f.net(t)
	assert.Equal(t, money.Amount(2000), after["Alice"]-before["Alice"])
	assert.Equal(t, money.Amount(-4000), after["Bob"])
	assert.Equal(t, money.Amount(-4000), after["Carol"])

	got, err := f.ledger.GetExpense(ctx, f.trip.ID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Amount(12000), got.Amount)
}

func TestEditExpense(t *testing.T) {
	f := newFixture(t, "Alice", "Bob")
	ctx := context.Background()
	d := f.record(t, "Alice", 1000, models.ExactSplit{Amounts: map[string]money.Amount{
		f.byName["Alice"]: 400,
		f.byName["Bob"]:   600,
	}})

	t.Run("unknown expense", func(t *testing.T) {
		_, err := f.ledger.EditExpense(ctx, f.trip.ID, "missing", models.ExpensePatch{})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("exact split must be re-specified when the amount changes", func(t *testing.T) {
		amount := money.Amount(2000)
		_, err := f.ledger.EditExpense(ctx, f.trip.ID, d.ID, models.ExpensePatch{Amount: &amount})
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		got, err := f.ledger.GetExpense(ctx, f.trip.ID, d.ID)
		require.NoError(t, err)
		assert.Equal(t, money.Amount(1000), got.Amount, "failed edit must not write")
	})

	t.Run("new amount with new split", func(t *testing.T) {
		amount := money.Amount(2000)
		got, err := f.ledger.EditExpense(ctx, f.trip.ID, d.ID, models.ExpensePatch{
			Amount: &amount,
			Split:  models.EqualSplit{Participants: []string{f.byName["Bob"]}},
		})
		require.NoError(t, err)
		assert.Equal(t, []calculator.Share{{ParticipantID: f.byName["Bob"], Amount: 2000}}, got.Shares)
	})

	t.Run("empty description is regenerated", func(t *testing.T) {
		empty := ""
		category := models.CategoryFood
		got, err := f.ledger.EditExpense(ctx, f.trip.ID, d.ID, models.ExpensePatch{Description: &empty, Category: &category})
		require.NoError(t, err)
		assert.Equal(t, "Food paid by Alice", got.Description)
	})

	t.Run("currency mismatch", func(t *testing.T) {
		eur := "EUR"
		_, err := f.ledger.EditExpense(ctx, f.trip.ID, d.ID, models.ExpensePatch{Currency: &eur})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestRecordExpenseValidation(t *testing.T) {
	f := newFixture(t, "Alice", "Bob")
	ctx := context.Background()
	alice, bob := f.byName["Alice"], f.byName["Bob"]

	tests := []struct {
		name string
		in   models.NewExpense
	}{
		{"zero amount", models.NewExpense{PayerID: alice, Amount: 0}},
		{"negative amount", models.NewExpense{PayerID: alice, Amount: -5}},
		{"unknown payer", models.NewExpense{PayerID: "ghost", Amount: 100}},
		{"currency mismatch", models.NewExpense{PayerID: alice, Amount: 100, Currency: "EUR"}},
		{"unknown category", models.NewExpense{PayerID: alice, Amount: 100, Category: "gambling"}},
		{"bad date", models.NewExpense{PayerID: alice, Amount: 100, Date: "01/06/2024"}},
		{"unknown sharer", models.NewExpense{PayerID: alice, Amount: 100, Split: models.EqualSplit{Participants: []string{"ghost"}}}},
		{"exact off by one", models.NewExpense{PayerID: alice, Amount: 100, Split: models.ExactSplit{Amounts: map[string]money.Amount{alice: 50, bob: 49}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.RecordExpense(ctx, f.trip.ID, tt.in)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	expenses, err := f.ledger.ListExpenses(ctx, f.trip.ID)
	require.NoError(t, err)
	assert.Empty(t, expenses, "rejected expenses must not be stored")

	_, err = f.ledger.RecordExpense(ctx, "missing", models.NewExpense{PayerID: alice, Amount: 100})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPreviewSplitStoresNothing(t *testing.T) {
	f := newFixture(t, "Alice", "Bob")
	ctx := context.Background()

	d, err := f.ledger.PreviewSplit(ctx, f.trip.ID, models.NewExpense{
		PayerID: f.byName["Alice"],
		Amount:  101,
		Split:   models.EqualSplit{Participants: f.ids, ExcludePayer: true},
	})
	require.NoError(t, err)
	assert.Equal(t, []calculator.Share{{ParticipantID: f.byName["Bob"], Amount: 101}}, d.Shares)

	expenses, err := f.ledger.ListExpenses(ctx, f.trip.ID)
	require.NoError(t, err)
	assert.Empty(t, expenses)
	assert.NotContains(t, f.publisher.types(), events.ExpenseRecorded)
}

func TestEqualSplitWithoutParticipantsUsesEveryone(t *testing.T) {
	f := newFixture(t, "Alice", "Bob", "Carol")
	ctx := context.Background()
	alice, bob, carol := f.byName["Alice"], f.byName["Bob"], f.byName["Carol"]

	d := f.record(t, "Alice", 900, models.EqualSplit{ExcludePayer: true})
	assert.ElementsMatch(t, []calculator.Share{
		{ParticipantID: bob, Amount: 450},
		{ParticipantID: carol, Amount: 450},
	}, d.Shares)
	assert.ElementsMatch(t, []string{alice, bob, carol}, d.Split.Sharers())

	// Editing to an empty equal split counts the payer back in.
	edited, err := f.ledger.EditExpense(ctx, f.trip.ID, d.ID, models.ExpensePatch{Split: models.EqualSplit{}})
	require.NoError(t, err)
	assert.Len(t, edited.Shares, 3)
	for _, s := range edited.Shares {
		assert.Equal(t, money.Amount(300), s.Amount)
	}
}

func TestNewParticipantDoesNotResplitOldExpenses(t *testing.T) {
	f := newFixture(t, "Alice", "Bob")
	ctx := context.Background()

	d := f.record(t, "Alice", 1000, nil)
	_, err := f.ledger.AddParticipant(ctx, f.trip.ID, "Carol")
	require.NoError(t, err)

	got, err := f.ledger.GetExpense(ctx, f.trip.ID, d.ID)
	require.NoError(t, err)
	assert.Len(t, got.Shares, 2)
	assert.Equal(t, money.Amount(0), f.net(t)["Carol"])
}

func TestRemoveParticipant(t *testing.T) {
	f := newFixture(t, "Alice", "Bob", "Dave")
	ctx := context.Background()
	alice, bob, dave := f.byName["Alice"], f.byName["Bob"], f.byName["Dave"]

	f.record(t, "Alice", 1000, models.EqualSplit{Participants: []string{alice, bob}})

	err := f.ledger.RemoveParticipant(ctx, f.trip.ID, bob)
	assert.ErrorIs(t, err, apperrors.ErrConflict, "bob owes alice")

	_, err = f.ledger.RecordSettlement(ctx, f.trip.ID, models.NewSettlement{FromID: bob, ToID: alice, Amount: 500})
	require.NoError(t, err)

	// Settled but referenced: archived.
	require.NoError(t, f.ledger.RemoveParticipant(ctx, f.trip.ID, bob))
	all, err := f.store.ListParticipants(ctx, f.trip.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	active, err := f.ledger.ListParticipants(ctx, f.trip.ID)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	// Never referenced: deleted.
	require.NoError(t, f.ledger.RemoveParticipant(ctx, f.trip.ID, dave))
	all, err = f.store.ListParticipants(ctx, f.trip.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, f.ledger.RemoveParticipant(ctx, f.trip.ID, bob), apperrors.ErrNotFound)
	assert.ErrorIs(t, f.ledger.RemoveParticipant(ctx, f.trip.ID, "ghost"), apperrors.ErrNotFound)

	// Archived participants cannot take part in new expenses.
	_, err = f.ledger.RecordExpense(ctx, f.trip.ID, models.NewExpense{PayerID: bob, Amount: 100})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// The archived name is free again.
	_, err = f.ledger.AddParticipant(ctx, f.trip.ID, "Bob")
	assert.NoError(t, err)

	net := f.net(t)
	assert.Equal(t, money.Amount(0), net["Alice"])
}

func TestSettlements(t *testing.T) {
	f := newFixture(t, "Alice", "Bob", "Carol")
	ctx := context.Background()
	alice, bob := f.byName["Alice"], f.byName["Bob"]

	f.record(t, "Alice", 9000, nil)

	report, err := f.ledger.GetBalances(ctx, f.trip.ID)
	require.NoError(t, err)
	require.Len(t, report.Settlements, 2)
	for _, tr := range report.Settlements {
		assert.Equal(t, alice, tr.ToID)
		assert.Equal(t, money.Amount(3000), tr.Amount)
	}

	for _, tr := range report.Settlements {
		_, err := f.ledger.RecordSettlement(ctx, f.trip.ID, models.NewSettlement{FromID: tr.FromID, ToID: tr.ToID, Amount: tr.Amount})
		require.NoError(t, err)
	}
	for name, net := range f.net(t) {
		assert.Zero(t, net, name)
	}

	suggested, err := f.ledger.SuggestSettlements(ctx, f.trip.ID)
	require.NoError(t, err)
	assert.Empty(t, suggested)

	recorded, err := f.ledger.ListSettlements(ctx, f.trip.ID)
	require.NoError(t, err)
	require.Len(t, recorded, 2)
	require.NoError(t, f.ledger.DeleteSettlement(ctx, f.trip.ID, recorded[0].ID))
	assert.ErrorIs(t, f.ledger.DeleteSettlement(ctx, f.trip.ID, recorded[0].ID), apperrors.ErrNotFound)
	assert.Equal(t, money.Amount(3000), f.net(t)["Alice"])

	_, err = f.ledger.RecordSettlement(ctx, f.trip.ID, models.NewSettlement{FromID: bob, ToID: bob, Amount: 1})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = f.ledger.RecordSettlement(ctx, f.trip.ID, models.NewSettlement{FromID: bob, ToID: alice, Amount: 0})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = f.ledger.RecordSettlement(ctx, f.trip.ID, models.NewSettlement{FromID: bob, ToID: "ghost", Amount: 1})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAmountsAboveLimitAreRejected(t *testing.T) {
	f := newFixture(t, "A", "B")
	ctx := context.Background()
	a, b := f.byName["A"], f.byName["B"]
	huge := money.Amount(math.MaxInt64/2 + 10)

	for _, amount := range []money.Amount{huge, money.MaxAmount + 1} {
		_, err := f.ledger.RecordExpense(ctx, f.trip.ID, models.NewExpense{
			PayerID: a,
			Amount:  amount,
			Split:   models.EqualSplit{Participants: []string{b}},
		})
		assert.ErrorIs(t, err, apperrors.ErrValidation)

		_, err = f.ledger.RecordSettlement(ctx, f.trip.ID, models.NewSettlement{FromID: a, ToID: b, Amount: amount})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}

	detail := f.record(t, "A", 100, models.EqualSplit{Participants: []string{b}})
	_, err := f.ledger.EditExpense(ctx, f.trip.ID, detail.ID, models.ExpensePatch{Amount: &huge})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Two expenses at the limit still balance: A paid for everything.
	f.record(t, "A", money.MaxAmount, models.EqualSplit{Participants: []string{b}})
	f.record(t, "A", money.MaxAmount, models.EqualSplit{Participants: []string{b}})
	net := f.net(t)
	assert.Equal(t, 2*money.MaxAmount+100, net["A"])
	assert.Equal(t, -(2*money.MaxAmount + 100), net["B"])

	report, err := f.ledger.GetBalances(ctx, f.trip.ID)
	require.NoError(t, err)
	require.Len(t, report.Settlements, 1)
	assert.Equal(t, b, report.Settlements[0].FromID)
	assert.Equal(t, a, report.Settlements[0].ToID)
}

func TestBalancesStayZeroSum(t *testing.T) {
	f := newFixture(t, "A", "B", "C", "D", "E")
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	var live []string
	for step := 0; step < 300; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(live) == 0:
			sharers := f.ids[:rng.Intn(len(f.ids))+1]
			d, err := f.ledger.RecordExpense(ctx, f.trip.ID, models.NewExpense{
				PayerID: f.ids[rng.Intn(len(f.ids))],
				Amount:  money.Amount(rng.Int63n(1_000_000) + 1),
				Split:   models.EqualSplit{Participants: sharers},
			})
			require.NoError(t, err)
			live = append(live, d.ID)
		case op == 1:
			amount := money.Amount(rng.Int63n(1_000_000) + 1)
			_, err := f.ledger.EditExpense(ctx, f.trip.ID, live[rng.Intn(len(live))], models.ExpensePatch{Amount: &amount})
			require.NoError(t, err)
		default:
			i := rng.Intn(len(live))
			require.NoError(t, f.ledger.DeleteExpense(ctx, f.trip.ID, live[i]))
			live = append(live[:i], live[i+1:]...)
		}

		var sum money.Amount
		for _, net := range f.net(t) {
			sum += net
		}
		require.Zero(t, sum, "step %d", step)
	}
}

func TestBalanceCache(t *testing.T) {
	f := newFixture(t, "Alice", "Bob")
	ctx := context.Background()

	f.record(t, "Alice", 1000, nil)
	first, err := f.ledger.GetBalances(ctx, f.trip.ID)
	require.NoError(t, err)
	second, err := f.ledger.GetBalances(ctx, f.trip.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.metrics.hits)

	// Callers get copies.
	second.Balances[0].Net = 999_999
	third, err := f.ledger.GetBalances(ctx, f.trip.ID)
	require.NoError(t, err)
	assert.Equal(t, first, third)

	f.record(t, "Bob", 1000, nil)
	after, err := f.ledger.GetBalances(ctx, f.trip.ID)
	require.NoError(t, err)
	for _, b := range after.Balances {
		assert.Zero(t, b.Net)
	}
}

func TestGetBalancesUnknownTrip(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.GetBalances(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// corruptStore returns an expense whose stored split no longer adds up.
type corruptStore struct {
	storage.Store
}

func (s corruptStore) LoadSnapshot(ctx context.Context, tripID string) (*storage.Snapshot, error) {
	snap, err := s.Store.LoadSnapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	for _, e := range snap.Expenses {
		e.Amount++
		e.Split = models.ExactSplit{Amounts: map[string]money.Amount{e.PayerID: e.Amount - 1}}
	}
	return snap, nil
}

func TestCorruptDataIsAnInvariantViolation(t *testing.T) {
	f := newFixture(t, "Alice", "Bob")
	f.record(t, "Alice", 1000, nil)

	metrics := &countingMetrics{}
	l, err := New(corruptStore{f.store}, WithMetrics(metrics))
	require.NoError(t, err)

	_, err = l.GetBalances(context.Background(), f.trip.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvariant)
	assert.Equal(t, 1, metrics.invariants)
}

func TestEventsArePublishedAfterCommit(t *testing.T) {
	f := newFixture(t, "Alice", "Bob")
	ctx := context.Background()

	d := f.record(t, "Alice", 1000, nil)
	amount := money.Amount(2000)
	_, err := f.ledger.EditExpense(ctx, f.trip.ID, d.ID, models.ExpensePatch{Amount: &amount})
	require.NoError(t, err)
	require.NoError(t, f.ledger.DeleteExpense(ctx, f.trip.ID, d.ID))
	assert.ErrorIs(t, f.ledger.DeleteExpense(ctx, f.trip.ID, d.ID), apperrors.ErrNotFound)

	assert.Equal(t, []events.Type{
		events.TripCreated,
		events.ParticipantAdded,
		events.ParticipantAdded,
		events.ExpenseRecorded,
		events.ExpenseEdited,
		events.ExpenseDeleted,
	}, f.publisher.types())
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture(t, "Alice")
	f.publisher.err = assert.AnError

	d := f.record(t, "Alice", 500, nil)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, 1, f.metrics.pubFailures)
}

func TestConcurrentWritesToOneTrip(t *testing.T) {
	f := newFixture(t, "Alice", "Bob", "Carol")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.ledger.RecordExpense(ctx, f.trip.ID, models.NewExpense{
				PayerID: f.ids[i%len(f.ids)],
				Amount:  money.Amount(100 + i),
			})
			assert.NoError(t, err)
			_, err = f.ledger.GetBalances(ctx, f.trip.ID)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	expenses, err := f.ledger.ListExpenses(ctx, f.trip.ID)
	require.NoError(t, err)
	assert.Len(t, expenses, 50)

	var sum money.Amount
	for _, net := range f.net(t) {
		sum += net
	}
	assert.Zero(t, sum)
	assert.Zero(t, f.ledger.locks.size())
}
