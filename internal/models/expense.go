package models

import (
	"strings"

	"github.com/mmynk/tripledger/internal/money"
)

// DateLayout is the calendar-day format of Expense.Date.
const DateLayout = "2006-01-02"

// Category classifies an expense for budget reporting.
type Category string

const (
	CategoryAccommodation Category = "accommodation"
	CategoryTransport     Category = "transport"
	CategoryFood          Category = "food"
	CategoryActivities    Category = "activities"
	CategoryShopping      Category = "shopping"
	CategoryOther         Category = "other"
)

// Categories lists every known category.
var Categories = []Category{
	CategoryAccommodation,
	CategoryTransport,
	CategoryFood,
	CategoryActivities,
	CategoryShopping,
	CategoryOther,
}

// ParseCategory normalizes s into a known category. Empty means CategoryOther.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CategoryOther, true
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Expense is an amount paid by one participant and shared according to Split.
// Its per-participant shares are derived by the calculator on demand.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// TripID is the trip that owns the expense.
	TripID string

	// Description is a short label, generated from category and payer when empty.
	Description string

	// Amount is the total paid, in minor units of Currency. Always positive.
	Amount money.Amount

	// Currency is the ISO 4217 code; it always equals the trip currency.
	Currency string

	// PayerID is the participant who paid.
	PayerID string

	// Category classifies the expense.
	Category Category

	// Date is the calendar day of the expense in DateLayout.
	Date string

	// Split says who shares the expense and how. Never nil once stored.
	Split SplitSpec

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// References reports whether the participant paid for or shares in the expense.
func (e *Expense) References(participantID string) bool {
	if e.PayerID == participantID {
		return true
	}
	for _, id := range e.Split.Sharers() {
		if id == participantID {
			return true
		}
	}
	return false
}

// NewExpense is the input for recording an expense that has no identity yet.
// A nil Split means an equal split among all active participants.
type NewExpense struct {
	PayerID     string
	Amount      money.Amount
	Currency    string
	Category    Category
	Description string
	Date        string
	Split       SplitSpec
}

// ExpensePatch holds the fields to change on an existing expense.
// Nil fields are left untouched.
type ExpensePatch struct {
	PayerID     *string
	Amount      *money.Amount
	Currency    *string
	Category    *Category
	Description *string
	Date        *string
	Split       SplitSpec
}

// Apply returns a copy of e with the patch applied.
func (p ExpensePatch) Apply(e Expense) Expense {
	if p.PayerID != nil {
		e.PayerID = *p.PayerID
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Currency != nil {
		e.Currency = *p.Currency
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Split != nil {
		e.Split = p.Split
	}
	return e
}

// Clone returns a deep copy of e.
func (e *Expense) Clone() *Expense {
	c := *e
	c.Split = CloneSplitSpec(e.Split)
	return &c
}
