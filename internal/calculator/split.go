package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tripledger/internal/apperrors"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
)

// Share is one participant's portion of an expense.
type Share struct {
	ParticipantID string
	Amount        money.Amount
}

// Split maps participant ID to the amount that participant owes for an expense.
type Split map[string]money.Amount

// Shares returns the split ordered by participant ID.
func (s Split) Shares() []Share {
	shares := make([]Share, 0, len(s))
	for id, amount := range s {
		shares = append(shares, Share{ParticipantID: id, Amount: amount})
	}
	sort.Slice(shares, func(i, j int) bool {
		return shares[i].ParticipantID < shares[j].ParticipantID
	})
	return shares
}

// Total returns the sum of all shares.
func (s Split) Total() money.Amount {
	var total money.Amount
	for _, amount := range s {
		total += amount
	}
	return total
}

// CalculateSplit computes how much each sharer owes for an expense of total
// paid by payerID. It is deterministic: identical inputs give identical splits.
//
// Remainders are always handed out one minor unit at a time to sharers in ID
// order, so the shares add up to total exactly.
func CalculateSplit(total money.Amount, payerID string, spec models.SplitSpec) (Split, error) {
	if total <= 0 {
		return nil, apperrors.Validationf("amount must be positive, got %d", total)
	}
	if err := money.CheckRange(total); err != nil {
		return nil, err
	}
	if spec == nil {
		return nil, apperrors.Validationf("a split is required")
	}

	var (
		split Split
		err   error
	)
	switch s := spec.(type) {
	case models.EqualSplit:
		split, err = equalSplit(total, payerID, s)
	case models.ExactSplit:
		split, err = exactSplit(total, s)
	case models.PercentageSplit:
		split, err = percentageSplit(total, s)
	default:
		return nil, apperrors.Validationf("unknown split strategy %q", spec.Strategy())
	}
	if err != nil {
		return nil, err
	}

	if got := split.Total(); got != total {
		return nil, apperrors.Invariantf("split of %d sums to %d", total, got)
	}
	return split, nil
}

func checkIDs(ids []string) error {
	for _, id := range ids {
		if id == "" {
			return apperrors.Validationf("split names an empty participant id")
		}
	}
	return nil
}

func equalSplit(total money.Amount, payerID string, s models.EqualSplit) (Split, error) {
	var sharers []string
	for _, id := range s.Sharers() {
		if s.ExcludePayer && id == payerID {
			continue
		}
		sharers = append(sharers, id)
	}
	if len(sharers) == 0 {
		return nil, apperrors.Validationf("equal split needs at least one participant")
	}
	if err := checkIDs(sharers); err != nil {
		return nil, err
	}

	n := money.Amount(len(sharers))
	base, remainder := total/n, total%n

	split := make(Split, len(sharers))
	for i, id := range sharers {
		split[id] = base
		if money.Amount(i) < remainder {
			split[id]++
		}
	}
	return split, nil
}

func exactSplit(total money.Amount, s models.ExactSplit) (Split, error) {
	if len(s.Amounts) == 0 {
		return nil, apperrors.Validationf("exact split needs at least one participant")
	}
	ids := s.Sharers()
	if err := checkIDs(ids); err != nil {
		return nil, err
	}

	split := make(Split, len(ids))
	var sum money.Amount
	for _, id := range ids {
		amount := s.Amounts[id]
		if amount < 0 {
			return nil, apperrors.Validationf("exact split amount for %s is negative (%d)", id, amount)
		}
		if amount > total {
			return nil, apperrors.Validationf("exact split amount for %s (%d) exceeds the expense total %d", id, amount, total)
		}
		sum += amount
		if sum > total {
			return nil, apperrors.Validationf("exact split amounts exceed the expense total %d", total)
		}
		split[id] = amount
	}
	if sum != total {
		return nil, apperrors.Validationf("exact split amounts sum to %d, expected %d (short by %d minor units)",
			sum, total, total-sum)
	}
	return split, nil
}

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

func percentageSplit(total money.Amount, s models.PercentageSplit) (Split, error) {
	if len(s.Percents) == 0 {
		return nil, apperrors.Validationf("percentage split needs at least one participant")
	}
	ids := s.Sharers()
	if err := checkIDs(ids); err != nil {
		return nil, err
	}

	sumPct := decimal.Zero
	for _, id := range ids {
		p := s.Percents[id]
		if !p.IsPositive() {
			return nil, apperrors.Validationf("percentage for %s must be positive, got %s", id, p.String())
		}
		if p.GreaterThan(hundred) {
			return nil, apperrors.Validationf("percentage for %s exceeds 100 (%s)", id, p.String())
		}
		sumPct = sumPct.Add(p)
	}

	// The percentages may miss 100 only by what rounds away within one minor unit.
	totalDec := decimal.NewFromInt(int64(total))
	drift := sumPct.Sub(hundred).Abs().Mul(totalDec).Shift(-2)
	if drift.GreaterThan(one) {
		return nil, apperrors.Validationf("percentages sum to %s, expected 100", sumPct.String())
	}

	split := make(Split, len(ids))
	var allocated money.Amount
	for _, id := range ids {
		share := money.Amount(totalDec.Mul(s.Percents[id]).Shift(-2).Floor().IntPart())
		split[id] = share
		allocated += share
	}

	remainder := total - allocated
	for i := 0; remainder != 0; i = (i + 1) % len(ids) {
		id := ids[i]
		switch {
		case remainder > 0:
			split[id]++
			remainder--
		case split[id] > 0:
			split[id]--
			remainder++
		}
	}
	return split, nil
}
