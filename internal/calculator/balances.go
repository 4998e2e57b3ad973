package calculator

import (
	"fmt"
	"sort"

	"github.com/mmynk/tripledger/internal/apperrors"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
)

// ExpenseForBalance represents an expense with the minimal information needed for balance calculations.
type ExpenseForBalance struct {
	ID      string
	PayerID string
	Total   money.Amount
	Split   models.SplitSpec
}

// SettlementForBalance represents a settlement with the minimal information needed for balance calculations.
type SettlementForBalance struct {
	FromID string // Who paid (debtor settling up)
	ToID   string // Who received (creditor being paid)
	Amount money.Amount
}

// MemberBalance represents the balance information for one participant.
type MemberBalance struct {
	ParticipantID string
	Paid          money.Amount // Expenses paid plus settlements sent
	Owed          money.Amount // Expense shares plus settlements received
	Net           money.Amount // Positive = owed money, Negative = owes money
}

// Transfer is a suggested payment that moves balances toward zero.
type Transfer struct {
	FromID string // Person who owes
	ToID   string // Person who is owed
	Amount money.Amount
}

// CalculateBalances computes per-participant balances across expenses and settlements.
//
// Algorithm:
//   - For each expense: payer contributed +total, each sharer owes their split
//   - For each settlement: sender's paid grows, receiver's owed grows
//   - Net = paid - owed
//
// Every ID in participantIDs appears in the result, even with a zero balance.
// The result is ordered by participant ID. A non-zero sum of nets is reported
// as an invariant violation.
func CalculateBalances(participantIDs []string, expenses []ExpenseForBalance, settlements []SettlementForBalance) ([]MemberBalance, error) {
	balances := make(map[string]*MemberBalance, len(participantIDs))
	get := func(id string) *MemberBalance {
		b, ok := balances[id]
		if !ok {
			b = &MemberBalance{ParticipantID: id}
			balances[id] = b
		}
		return b
	}
	for _, id := range participantIDs {
		get(id)
	}

	for _, exp := range expenses {
		split, err := CalculateSplit(exp.Total, exp.PayerID, exp.Split)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate split for expense %s: %w", exp.ID, err)
		}

		if err := add(&get(exp.PayerID).Paid, exp.Total); err != nil {
			return nil, err
		}
		for id, share := range split {
			if err := add(&get(id).Owed, share); err != nil {
				return nil, err
			}
		}
	}

	for _, s := range settlements {
		if err := add(&get(s.FromID).Paid, s.Amount); err != nil {
			return nil, err
		}
		if err := add(&get(s.ToID).Owed, s.Amount); err != nil {
			return nil, err
		}
	}

	result := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		net, ok := money.Add(b.Paid, -b.Owed)
		if !ok {
			return nil, apperrors.Invariantf("net balance of %s overflows", b.ParticipantID)
		}
		b.Net = net
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ParticipantID < result[j].ParticipantID
	})

	if err := CheckZeroSum(NetBalances(result)); err != nil {
		return nil, err
	}
	return result, nil
}

// add accumulates amount into *dst, refusing to wrap around.
func add(dst *money.Amount, amount money.Amount) error {
	sum, ok := money.Add(*dst, amount)
	if !ok {
		return apperrors.Invariantf("balance total overflows adding %d to %d", amount, *dst)
	}
	*dst = sum
	return nil
}

// NetBalances maps participant ID to net balance.
func NetBalances(balances []MemberBalance) map[string]money.Amount {
	net := make(map[string]money.Amount, len(balances))
	for _, b := range balances {
		net[b.ParticipantID] = b.Net
	}
	return net
}

// CheckZeroSum verifies that net balances cancel out.
func CheckZeroSum(net map[string]money.Amount) error {
	var sum money.Amount
	for _, amount := range net {
		var ok bool
		if sum, ok = money.Add(sum, amount); !ok {
			return apperrors.Invariantf("balances overflow while summing")
		}
	}
	if sum != 0 {
		return apperrors.Invariantf("balances sum to %d minor units instead of zero", sum)
	}
	return nil
}

// SuggestSettlements proposes transfers that bring every balance to zero.
//
// Greedy debt simplification: repeatedly match the largest debtor with the
// largest creditor and transfer the smaller of the two amounts. Ties are broken
// by participant ID so the output is deterministic. The transaction count is
// not guaranteed minimal, but it never exceeds (participants - 1).
func SuggestSettlements(net map[string]money.Amount) ([]Transfer, error) {
	if err := CheckZeroSum(net); err != nil {
		return nil, err
	}

	remaining := make(map[string]money.Amount, len(net))
	ids := make([]string, 0, len(net))
	for id, amount := range net {
		if amount != 0 {
			remaining[id] = amount
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var transfers []Transfer
	for {
		creditor, debtor := "", ""
		for _, id := range ids {
			amount := remaining[id]
			if amount > 0 && (creditor == "" || amount > remaining[creditor]) {
				creditor = id
			}
			if amount < 0 && (debtor == "" || amount < remaining[debtor]) {
				debtor = id
			}
		}
		if creditor == "" || debtor == "" {
			break
		}

		amount := remaining[creditor]
		if debt := -remaining[debtor]; debt < amount {
			amount = debt
		}
		transfers = append(transfers, Transfer{FromID: debtor, ToID: creditor, Amount: amount})
		remaining[creditor] -= amount
		remaining[debtor] += amount
	}

	return transfers, nil
}

// ApplyTransfers returns the balances after every transfer has been paid.
func ApplyTransfers(net map[string]money.Amount, transfers []Transfer) map[string]money.Amount {
	out := make(map[string]money.Amount, len(net))
	for id, amount := range net {
		out[id] = amount
	}
	for _, t := range transfers {
		out[t.FromID] += t.Amount
		out[t.ToID] -= t.Amount
	}
	return out
}
