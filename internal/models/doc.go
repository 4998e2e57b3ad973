// Package models defines the core domain models for the trip ledger.
//
// # Models
//
//   - Trip: a group of travellers sharing costs in one base currency
//   - Participant: a trip member who can pay for or share in expenses
//   - Expense: an amount paid by one participant, with a SplitSpec saying who shares it
//   - Settlement: a recorded payment between two participants
//
// Splits and balances are derived values and live in the calculator package;
// nothing here stores them.
//
// # Conventions
//
// IDs are UUID strings and relationships use IDs rather than pointers.
// Timestamps are Unix seconds. Amounts are money.Amount minor units.
package models
