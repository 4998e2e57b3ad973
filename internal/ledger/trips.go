package ledger

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmynk/tripledger/internal/apperrors"
	"github.com/mmynk/tripledger/internal/events"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
)

// MaxNameLength bounds trip and participant names, in characters.
const MaxNameLength = 100

func cleanName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.Validationf("%s name is required", kind)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", apperrors.Validationf("%s name exceeds %d characters", kind, MaxNameLength)
	}
	return name, nil
}

// CreateTrip starts a trip whose expenses are all kept in currency.
func (l *Ledger) CreateTrip(ctx context.Context, name, currency string) (trip *models.Trip, err error) {
	defer func(start time.Time) { l.observe(ctx, "create_trip", start, err) }(time.Now())

	name, err = cleanName("trip", name)
	if err != nil {
		return nil, err
	}
	currency, err = money.NormalizeCurrency(currency)
	if err != nil {
		return nil, err
	}

	trip = &models.Trip{Name: name, Currency: currency, CreatedAt: l.unixNow()}
	if err := l.store.CreateTrip(ctx, trip); err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Trip created", "trip_id", trip.ID, "currency", trip.Currency)
	l.committed(ctx, events.TripCreated, trip.ID, trip.ID)
	return trip, nil
}

// GetTrip returns a trip by ID.
func (l *Ledger) GetTrip(ctx context.Context, tripID string) (trip *models.Trip, err error) {
	defer func(start time.Time) { l.observe(ctx, "get_trip", start, err) }(time.Now())
	return l.store.GetTrip(ctx, tripID)
}

// ListTrips returns every trip, newest first.
func (l *Ledger) ListTrips(ctx context.Context) (trips []*models.Trip, err error) {
	defer func(start time.Time) { l.observe(ctx, "list_trips", start, err) }(time.Now())
	return l.store.ListTrips(ctx)
}
