package models

import "github.com/mmynk/tripledger/internal/money"

// Settlement represents a payment between trip participants to clear debts.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// TripID is the trip this settlement belongs to.
	TripID string

	// FromID is the participant who paid (debtor settling up).
	FromID string

	// ToID is the participant who received payment (creditor being paid).
	ToID string

	// Amount is the payment amount in the trip currency.
	Amount money.Amount

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// Note is an optional description for the settlement.
	Note string
}

// NewSettlement is the input for recording a settlement.
type NewSettlement struct {
	FromID string
	ToID   string
	Amount money.Amount
	Note   string
}
