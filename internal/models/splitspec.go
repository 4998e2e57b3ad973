package models

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tripledger/internal/money"
)

// Strategy names a split rule.
type Strategy string

const (
	StrategyEqual      Strategy = "equal"
	StrategyExact      Strategy = "exact"
	StrategyPercentage Strategy = "percentage"
)

// SplitSpec describes how an expense is divided. It is one of EqualSplit,
// ExactSplit or PercentageSplit.
type SplitSpec interface {
	// Strategy returns the split rule.
	Strategy() Strategy

	// Sharers returns the participant IDs it names, sorted.
	Sharers() []string

	isSplitSpec()
}

// EqualSplit divides the total evenly among Participants. The payer is one of
// the sharers when listed, unless ExcludePayer is set.
type EqualSplit struct {
	Participants []string
	ExcludePayer bool
}

// ExactSplit assigns caller-chosen amounts that must add up to the total.
type ExactSplit struct {
	Amounts map[string]money.Amount
}

// PercentageSplit assigns shares proportional to Percents, which add up to 100.
type PercentageSplit struct {
	Percents map[string]decimal.Decimal
}

func (EqualSplit) Strategy() Strategy      { return StrategyEqual }
func (ExactSplit) Strategy() Strategy      { return StrategyExact }
func (PercentageSplit) Strategy() Strategy { return StrategyPercentage }

func (EqualSplit) isSplitSpec()      {}
func (ExactSplit) isSplitSpec()      {}
func (PercentageSplit) isSplitSpec() {}

func (s EqualSplit) Sharers() []string {
	seen := make(map[string]bool, len(s.Participants))
	ids := make([]string, 0, len(s.Participants))
	for _, id := range s.Participants {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (s ExactSplit) Sharers() []string {
	return sortedKeys(s.Amounts)
}

func (s PercentageSplit) Sharers() []string {
	return sortedKeys(s.Percents)
}

func sortedKeys[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CloneSplitSpec returns a deep copy of s.
func CloneSplitSpec(s SplitSpec) SplitSpec {
	switch v := s.(type) {
	case EqualSplit:
		v.Participants = append([]string(nil), v.Participants...)
		return v
	case ExactSplit:
		amounts := make(map[string]money.Amount, len(v.Amounts))
		for id, a := range v.Amounts {
			amounts[id] = a
		}
		return ExactSplit{Amounts: amounts}
	case PercentageSplit:
		percents := make(map[string]decimal.Decimal, len(v.Percents))
		for id, p := range v.Percents {
			percents[id] = p
		}
		return PercentageSplit{Percents: percents}
	}
	return s
}
