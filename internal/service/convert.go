package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripledger/internal/apperrors"
	"github.com/mmynk/tripledger/internal/calculator"
	"github.com/mmynk/tripledger/internal/ledger"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
	ledgerv1 "github.com/mmynk/tripledger/pkg/api/ledgerv1"
)

func tripToAPI(t *models.Trip) *ledgerv1.Trip {
	return &ledgerv1.Trip{
		ID:        t.ID,
		Name:      t.Name,
		Currency:  t.Currency,
		CreatedAt: t.CreatedAt,
	}
}

func participantToAPI(p *models.Participant) *ledgerv1.Participant {
	return &ledgerv1.Participant{
		ID:        p.ID,
		TripID:    p.TripID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
}

func settlementToAPI(s *models.Settlement, currency string) *ledgerv1.Settlement {
	return &ledgerv1.Settlement{
		ID:        s.ID,
		TripID:    s.TripID,
		FromID:    s.FromID,
		ToID:      s.ToID,
		Amount:    money.ToDecimal(s.Amount, currency),
		Note:      s.Note,
		CreatedAt: s.CreatedAt,
	}
}

func expenseToAPI(d *ledger.ExpenseDetail) *ledgerv1.Expense {
	shares := make([]ledgerv1.Share, len(d.Shares))
	for i, s := range d.Shares {
		shares[i] = ledgerv1.Share{
			ParticipantID: s.ParticipantID,
			Amount:        money.ToDecimal(s.Amount, d.Currency),
		}
	}
	return &ledgerv1.Expense{
		ID:          d.ID,
		TripID:      d.TripID,
		Description: d.Description,
		Amount:      money.ToDecimal(d.Amount, d.Currency),
		Currency:    d.Currency,
		PayerID:     d.PayerID,
		Category:    string(d.Category),
		Date:        d.Date,
		Split:       splitToAPI(d.Split, d.Currency),
		Shares:      shares,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func splitToAPI(spec models.SplitSpec, currency string) *ledgerv1.SplitSpec {
	switch s := spec.(type) {
	case models.EqualSplit:
		return &ledgerv1.SplitSpec{
			Strategy:     ledgerv1.StrategyEqual,
			Participants: append([]string(nil), s.Participants...),
			ExcludePayer: s.ExcludePayer,
		}
	case models.ExactSplit:
		amounts := make(map[string]decimal.Decimal, len(s.Amounts))
		for id, a := range s.Amounts {
			amounts[id] = money.ToDecimal(a, currency)
		}
		return &ledgerv1.SplitSpec{Strategy: ledgerv1.StrategyExact, Amounts: amounts}
	case models.PercentageSplit:
		percents := make(map[string]decimal.Decimal, len(s.Percents))
		for id, p := range s.Percents {
			percents[id] = p
		}
		return &ledgerv1.SplitSpec{Strategy: ledgerv1.StrategyPercentage, Percents: percents}
	}
	return nil
}

// splitFromAPI converts a split. Exact amounts are read in
// currency. A nil spec stays nil.
func splitFromAPI(spec *ledgerv1.SplitSpec, currency string) (models.SplitSpec, error) {
	if spec == nil {
		return nil, nil
	}
	switch spec.Strategy {
	case ledgerv1.StrategyEqual:
		return models.EqualSplit{
			Participants: append([]string(nil), spec.Participants...),
			ExcludePayer: spec.ExcludePayer,
		}, nil
	case ledgerv1.StrategyExact:
		amounts := make(map[string]money.Amount, len(spec.Amounts))
		for id, d := range spec.Amounts {
			a, err := money.FromDecimal(d, currency)
			if err != nil {
				return nil, err
			}
			amounts[id] = a
		}
		return models.ExactSplit{Amounts: amounts}, nil
	case ledgerv1.StrategyPercentage:
		percents := make(map[string]decimal.Decimal, len(spec.Percents))
		for id, p := range spec.Percents {
			percents[id] = p
		}
		return models.PercentageSplit{Percents: percents}, nil
	}
	return nil, apperrors.Validationf("unknown split strategy %q", spec.Strategy)
}

func newExpenseFromAPI(in ledgerv1.NewExpense, tripCurrency string) (models.NewExpense, error) {
	currency := in.Currency
	if currency == "" {
		currency = tripCurrency
	}
	amount, err := money.FromDecimal(in.Amount, currency)
	if err != nil {
		return models.NewExpense{}, err
	}
	split, err := splitFromAPI(in.Split, currency)
	if err != nil {
		return models.NewExpense{}, err
	}
	return models.NewExpense{
		PayerID:     in.PayerID,
		Amount:      amount,
		Currency:    in.Currency,
		Category:    models.Category(in.Category),
		Description: in.Description,
		Date:        in.Date,
		Split:       split,
	}, nil
}

func patchFromAPI(req *ledgerv1.EditExpenseRequest, tripCurrency string) (models.ExpensePatch, error) {
	currency := tripCurrency
	if req.Currency != nil && *req.Currency != "" {
		currency = *req.Currency
	}
	patch := models.ExpensePatch{
		PayerID:     req.PayerID,
		Currency:    req.Currency,
		Description: req.Description,
		Date:        req.Date,
	}
	if req.Amount != nil {
		amount, err := money.FromDecimal(*req.Amount, currency)
		if err != nil {
			return models.ExpensePatch{}, err
		}
		patch.Amount = &amount
	}
	if req.Category != nil {
		c := models.Category(*req.Category)
		patch.Category = &c
	}
	split, err := splitFromAPI(req.Split, currency)
	if err != nil {
		return models.ExpensePatch{}, err
	}
	patch.Split = split
	return patch, nil
}

func balancesToAPI(r *ledger.BalanceReport) *ledgerv1.GetBalancesResponse {
	resp := &ledgerv1.GetBalancesResponse{
		TripID:      r.TripID,
		Currency:    r.Currency,
		Balances:    make([]*ledgerv1.Balance, len(r.Balances)),
		Settlements: transfersToAPI(r.Settlements, r.Currency),
	}
	for i, b := range r.Balances {
		resp.Balances[i] = &ledgerv1.Balance{
			ParticipantID: b.ParticipantID,
			Name:          b.Name,
			Paid:          money.ToDecimal(b.Paid, r.Currency),
			Owed:          money.ToDecimal(b.Owed, r.Currency),
			Net:           money.ToDecimal(b.Net, r.Currency),
		}
	}
	return resp
}

func transfersToAPI(transfers []calculator.Transfer, currency string) []ledgerv1.Transfer {
	out := make([]ledgerv1.Transfer, len(transfers))
	for i, t := range transfers {
		out[i] = ledgerv1.Transfer{
			FromID: t.FromID,
			ToID:   t.ToID,
			Amount: money.ToDecimal(t.Amount, currency),
		}
	}
	return out
}
