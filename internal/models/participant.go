package models

// Participant is a trip member eligible to owe or be owed money.
//
// Once an expense or settlement references a participant, the record is never
// deleted: removal archives it by setting RemovedAt so history still balances.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// TripID is the trip this participant belongs to.
	TripID string

	// Name is the display name, unique among the trip's active participants.
	Name string

	// CreatedAt is the Unix timestamp when the participant joined the trip.
	CreatedAt int64

	// RemovedAt is the Unix timestamp of removal, or 0 while active.
	RemovedAt int64
}

// Active reports whether the participant can take part in new expenses.
func (p *Participant) Active() bool {
	return p.RemovedAt == 0
}
