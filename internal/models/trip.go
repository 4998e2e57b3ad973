package models

// Trip groups the participants, expenses and settlements that balance against
// each other.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	// Name is the display name of the trip (e.g., "Lisbon 2026").
	Name string

	// Currency is the ISO 4217 code every expense of the trip is recorded in.
	Currency string

	// CreatedAt is the Unix timestamp when the trip was created.
	CreatedAt int64
}
