// Package ledgerv1 defines the messages of the tripledger.v1 API.
//
// Messages are plain Go structs carried as JSON by both the Connect service
// and the REST gateway. Money travels as decimal strings in major units of
// the trip currency ("12.34"), never as floats.
package ledgerv1

import "github.com/shopspring/decimal"

// Trip is a set of participants sharing expenses in one currency.
type Trip struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Currency  string `json:"currency"`
	CreatedAt int64  `json:"created_at"`
}

// Participant is an active member of a trip.
type Participant struct {
	ID        string `json:"id"`
	TripID    string `json:"trip_id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

// Split strategies accepted in SplitSpec.Strategy.
const (
	StrategyEqual      = "equal"
	StrategyExact      = "exact"
	StrategyPercentage = "percentage"
)

// SplitSpec says how an expense is shared. Which fields apply depends on
// Strategy: Participants and ExcludePayer for equal, Amounts for exact,
// Percents for percentage.
type SplitSpec struct {
	Strategy     string                     `json:"strategy" validate:"required,oneof=equal exact percentage"`
	Participants []string                   `json:"participants,omitempty"`
	ExcludePayer bool                       `json:"exclude_payer,omitempty"`
	Amounts      map[string]decimal.Decimal `json:"amounts,omitempty"`
	Percents     map[string]decimal.Decimal `json:"percents,omitempty"`
}

// Share is what one participant owes for an expense.
type Share struct {
	ParticipantID string          `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// Expense is a stored expense with its computed shares.
type Expense struct {
	ID          string          `json:"id,omitempty"`
	TripID      string          `json:"trip_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	PayerID     string          `json:"payer_id"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	Split       *SplitSpec      `json:"split"`
	Shares      []Share         `json:"shares"`
	CreatedAt   int64           `json:"created_at,omitempty"`
	UpdatedAt   int64           `json:"updated_at,omitempty"`
}

// Settlement is a recorded payment between two participants.
type Settlement struct {
	ID        string          `json:"id"`
	TripID    string          `json:"trip_id"`
	FromID    string          `json:"from_id"`
	ToID      string          `json:"to_id"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
	CreatedAt int64           `json:"created_at"`
}

// Balance is one participant's standing. A positive Net means the others
// owe them money.
type Balance struct {
	ParticipantID string          `json:"participant_id"`
	Name          string          `json:"name"`
	Paid          decimal.Decimal `json:"paid"`
	Owed          decimal.Decimal `json:"owed"`
	Net           decimal.Decimal `json:"net"`
}

// Transfer is a suggested payment that moves balances toward zero.
type Transfer struct {
	FromID string          `json:"from_id"`
	ToID   string          `json:"to_id"`
	Amount decimal.Decimal `json:"amount"`
}

type CreateTripRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Currency string `json:"currency" validate:"required,len=3"`
}

type CreateTripResponse struct {
	Trip *Trip `json:"trip"`
}

type GetTripRequest struct {
	TripID string `json:"trip_id" validate:"required"`
}

type GetTripResponse struct {
	Trip *Trip `json:"trip"`
}

type ListTripsRequest struct{}

type ListTripsResponse struct {
	Trips []*Trip `json:"trips"`
}

type AddParticipantRequest struct {
	TripID string `json:"trip_id" validate:"required"`
	Name   string `json:"name" validate:"required,max=100"`
}

type AddParticipantResponse struct {
	Participant *Participant `json:"participant"`
}

type ListParticipantsRequest struct {
	TripID string `json:"trip_id" validate:"required"`
}

type ListParticipantsResponse struct {
	Participants []*Participant `json:"participants"`
}

type RemoveParticipantRequest struct {
	TripID        string `json:"trip_id" validate:"required"`
	ParticipantID string `json:"participant_id" validate:"required"`
}

type RemoveParticipantResponse struct{}

// NewExpense is the body of an expense that has not been stored yet.
// Empty Currency, Category and Date take the trip currency, "other" and
// today; a nil Split shares the expense equally among active participants.
type NewExpense struct {
	PayerID     string          `json:"payer_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty" validate:"max=200"`
	Date        string          `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Split       *SplitSpec      `json:"split,omitempty"`
}

type RecordExpenseRequest struct {
	TripID string `json:"trip_id" validate:"required"`
	NewExpense
}

type RecordExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type PreviewSplitRequest struct {
	TripID string `json:"trip_id" validate:"required"`
	NewExpense
}

type PreviewSplitResponse struct {
	Expense *Expense `json:"expense"`
}

// EditExpenseRequest changes the fields that are set.
type EditExpenseRequest struct {
	TripID      string           `json:"trip_id" validate:"required"`
	ExpenseID   string           `json:"expense_id" validate:"required"`
	PayerID     *string          `json:"payer_id,omitempty" validate:"omitempty,min=1"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Currency    *string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	Category    *string          `json:"category,omitempty"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=200"`
	Date        *string          `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Split       *SplitSpec       `json:"split,omitempty"`
}

type EditExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	TripID    string `json:"trip_id" validate:"required"`
	ExpenseID string `json:"expense_id" validate:"required"`
}

type DeleteExpenseResponse struct{}

type GetExpenseRequest struct {
	TripID    string `json:"trip_id" validate:"required"`
	ExpenseID string `json:"expense_id" validate:"required"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	TripID string `json:"trip_id" validate:"required"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type RecordSettlementRequest struct {
	TripID string          `json:"trip_id" validate:"required"`
	FromID string          `json:"from_id" validate:"required"`
	ToID   string          `json:"to_id" validate:"required,nefield=FromID"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty" validate:"max=200"`
}

type RecordSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	TripID string `json:"trip_id" validate:"required"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type DeleteSettlementRequest struct {
	TripID       string `json:"trip_id" validate:"required"`
	SettlementID string `json:"settlement_id" validate:"required"`
}

type DeleteSettlementResponse struct{}

type GetBalancesRequest struct {
	TripID string `json:"trip_id" validate:"required"`
}

type GetBalancesResponse struct {
	TripID      string     `json:"trip_id"`
	Currency    string     `json:"currency"`
	Balances    []*Balance `json:"balances"`
	Settlements []Transfer `json:"settlements"`
}
