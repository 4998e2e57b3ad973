// Package events publishes notifications about committed ledger mutations.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Type names a ledger event. It doubles as the AMQP routing key.
type Type string

const (
	TripCreated        Type = "trip.created"
	ParticipantAdded   Type = "participant.added"
	ParticipantRemoved Type = "participant.removed"
	ExpenseRecorded    Type = "expense.recorded"
	ExpenseEdited      Type = "expense.edited"
	ExpenseDeleted     Type = "expense.deleted"
	SettlementRecorded Type = "settlement.recorded"
	SettlementDeleted  Type = "settlement.deleted"
)

// Event is published after a mutation has been committed to storage.
type Event struct {
	Type       Type      `json:"type"`
	TripID     string    `json:"trip_id"`
	EntityID   string    `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New builds an event stamped with the current time.
func New(t Type, tripID, entityID string) Event {
	return Event{Type: t, TripID: tripID, EntityID: entityID, OccurredAt: time.Now().UTC()}
}

// ToJSON encodes the event as the message body.
func (e Event) ToJSON() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return body, nil
}

// FromJSON decodes a message body.
func FromJSON(body []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return e, nil
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
