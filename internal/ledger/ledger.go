// Package ledger implements the trip expense ledger: the participant registry,
// the expense store and the balance ledger on top of a storage.Store.
//
// Writes to one trip are serialized by a per-trip lock. Reads work from a
// single storage snapshot and never take that lock, so a read racing a write
// may return the state from just before the write.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/tripledger/internal/apperrors"
	"github.com/mmynk/tripledger/internal/events"
	"github.com/mmynk/tripledger/internal/metrics"
	"github.com/mmynk/tripledger/internal/storage"
)

// DefaultBalanceCacheSize is the number of trips whose balances are kept.
const DefaultBalanceCacheSize = 1024

// Ledger coordinates trip mutations and balance queries.
type Ledger struct {
	store     storage.Store
	publisher events.Publisher
	metrics   metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time

	cacheSize int
	cache     *balanceCache
	locks     *tripLocks
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPublisher sets where committed mutations are announced.
func WithPublisher(p events.Publisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(l *Ledger) { l.metrics = r }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithBalanceCacheSize sets how many trips keep cached balances.
func WithBalanceCacheSize(n int) Option {
	return func(l *Ledger) { l.cacheSize = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates a Ledger backed by store.
func New(store storage.Store, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:     store,
		publisher: events.Nop{},
		metrics:   metrics.Nop{},
		logger:    slog.Default(),
		now:       time.Now,
		cacheSize: DefaultBalanceCacheSize,
		locks:     newTripLocks(),
	}
	for _, opt := range opts {
		opt(l)
	}

	cache, err := newBalanceCache(l.cacheSize)
	if err != nil {
		return nil, err
	}
	l.cache = cache
	return l, nil
}

// observe records an operation's outcome. Invariant violations are always
// logged at error level.
func (l *Ledger) observe(ctx context.Context, op string, start time.Time, err error) {
	l.metrics.RecordOperation(op, err, time.Since(start))
	if errors.Is(err, apperrors.ErrInvariant) {
		l.metrics.RecordInvariantViolation(op)
		l.logger.ErrorContext(ctx, "Ledger invariant violated", "operation", op, "error", err)
	}
}

// committed runs after a trip mutation has been written: it drops cached
// balances and announces the change. Publish failures are logged only.
func (l *Ledger) committed(ctx context.Context, t events.Type, tripID, entityID string) {
	l.cache.invalidate(tripID)

	if err := l.publisher.Publish(ctx, events.New(t, tripID, entityID)); err != nil {
		l.metrics.RecordPublishFailure(string(t))
		l.logger.WarnContext(ctx, "Failed to publish ledger event",
			"type", t,
			"trip_id", tripID,
			"entity_id", entityID,
			"error", err,
		)
	}
}

func (l *Ledger) unixNow() int64 {
	return l.now().Unix()
}
