package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripledger/internal/apperrors"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
)

const expenseColumns = `id, trip_id, description, amount, currency, payer_id, category,
	expense_date, strategy, exclude_payer, created_at, updated_at`

// CreateExpense persists a new expense and its split rows.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.UpdatedAt == 0 {
		expense.UpdatedAt = expense.CreatedAt
	}
	if expense.Split == nil {
		return fmt.Errorf("expense %s has no split", expense.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.TripID, expense.Description, int64(expense.Amount), expense.Currency,
		expense.PayerID, string(expense.Category), expense.Date,
		string(expense.Split.Strategy()), excludePayer(expense.Split),
		expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertShares(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense with its split.
func (s *SQLiteStore) GetExpense(ctx context.Context, tripID, expenseID string) (*models.Expense, error) {
	tx, err := s.read.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE trip_id = ? AND id = ?`,
		tripID, expenseID,
	)
	e, hdr, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("expense not found: %s", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	shares, err := loadShares(ctx, tx, "trip_id = ? AND expense_id = ?", tripID, expenseID)
	if err != nil {
		return nil, err
	}
	if e.Split, err = buildSplit(hdr, shares[expenseID]); err != nil {
		return nil, fmt.Errorf("expense %s: %w", expenseID, err)
	}
	return e, nil
}

// UpdateExpense replaces an expense row and its shares.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.Split == nil {
		return fmt.Errorf("expense %s has no split", expense.ID)
	}
	if expense.UpdatedAt == 0 {
		expense.UpdatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses
		 SET description = ?, amount = ?, currency = ?, payer_id = ?, category = ?,
		     expense_date = ?, strategy = ?, exclude_payer = ?, updated_at = ?
		 WHERE trip_id = ? AND id = ?`,
		expense.Description, int64(expense.Amount), expense.Currency, expense.PayerID,
		string(expense.Category), expense.Date, string(expense.Split.Strategy()),
		excludePayer(expense.Split), expense.UpdatedAt,
		expense.TripID, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if err := expectOne(res, "expense", expense.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM expense_shares WHERE trip_id = ? AND expense_id = ?",
		expense.TripID, expense.ID,
	); err != nil {
		return fmt.Errorf("failed to delete expense shares: %w", err)
	}
	if err := insertShares(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense; its shares go with it through ON DELETE CASCADE.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, tripID, expenseID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM expenses WHERE trip_id = ? AND id = ?",
		tripID, expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return expectOne(res, "expense", expenseID)
}

// listExpenses returns a trip's expenses ordered by date, then insertion.
func listExpenses(ctx context.Context, q querier, tripID string) ([]*models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE trip_id = ? ORDER BY expense_date, rowid`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var (
		expenses []*models.Expense
		headers  []splitHeader
	)
	for rows.Next() {
		e, hdr, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
		headers = append(headers, hdr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	shares, err := loadShares(ctx, q, "trip_id = ?", tripID)
	if err != nil {
		return nil, err
	}
	for i, e := range expenses {
		if e.Split, err = buildSplit(headers[i], shares[e.ID]); err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
	}
	return expenses, nil
}

// splitHeader carries the split columns stored on the expense row itself.
type splitHeader struct {
	strategy     models.Strategy
	excludePayer bool
}

type shareRow struct {
	participantID string
	amount        sql.NullInt64
	percent       sql.NullString
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*models.Expense, splitHeader, error) {
	var (
		e        models.Expense
		amount   int64
		category string
		strategy string
		exclude  bool
	)
	err := row.Scan(
		&e.ID, &e.TripID, &e.Description, &amount, &e.Currency, &e.PayerID, &category,
		&e.Date, &strategy, &exclude, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, splitHeader{}, err
	}
	e.Amount = money.Amount(amount)
	e.Category = models.Category(category)
	return &e, splitHeader{strategy: models.Strategy(strategy), excludePayer: exclude}, nil
}

// loadShares reads expense_shares rows matching where, grouped by expense ID.
func loadShares(ctx context.Context, q querier, where string, args ...any) (map[string][]shareRow, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT expense_id, participant_id, amount, percent FROM expense_shares
		 WHERE `+where+` ORDER BY expense_id, participant_id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load expense shares: %w", err)
	}
	defer rows.Close()

	shares := make(map[string][]shareRow)
	for rows.Next() {
		var expenseID string
		var r shareRow
		if err := rows.Scan(&expenseID, &r.participantID, &r.amount, &r.percent); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		shares[expenseID] = append(shares[expenseID], r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}
	return shares, nil
}

func buildSplit(hdr splitHeader, rows []shareRow) (models.SplitSpec, error) {
	switch hdr.strategy {
	case models.StrategyEqual:
		ids := make([]string, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.participantID)
		}
		return models.EqualSplit{Participants: ids, ExcludePayer: hdr.excludePayer}, nil

	case models.StrategyExact:
		amounts := make(map[string]money.Amount, len(rows))
		for _, r := range rows {
			if !r.amount.Valid {
				return nil, fmt.Errorf("exact share for %s has no amount", r.participantID)
			}
			amounts[r.participantID] = money.Amount(r.amount.Int64)
		}
		return models.ExactSplit{Amounts: amounts}, nil

	case models.StrategyPercentage:
		percents := make(map[string]decimal.Decimal, len(rows))
		for _, r := range rows {
			if !r.percent.Valid {
				return nil, fmt.Errorf("percentage share for %s has no percent", r.participantID)
			}
			p, err := decimal.NewFromString(r.percent.String)
			if err != nil {
				return nil, fmt.Errorf("invalid percent for %s: %w", r.participantID, err)
			}
			percents[r.participantID] = p
		}
		return models.PercentageSplit{Percents: percents}, nil
	}
	return nil, fmt.Errorf("unknown split strategy %q", hdr.strategy)
}

func insertShares(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO expense_shares (trip_id, expense_id, participant_id, amount, percent)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare share insert: %w", err)
	}
	defer stmt.Close()

	insert := func(participantID string, amount, percent any) error {
		if _, err := stmt.ExecContext(ctx, expense.TripID, expense.ID, participantID, amount, percent); err != nil {
			return fmt.Errorf("failed to insert share for %s: %w", participantID, err)
		}
		return nil
	}

	switch split := expense.Split.(type) {
	case models.EqualSplit:
		for _, id := range split.Sharers() {
			if err := insert(id, nil, nil); err != nil {
				return err
			}
		}
	case models.ExactSplit:
		for _, id := range split.Sharers() {
			if err := insert(id, int64(split.Amounts[id]), nil); err != nil {
				return err
			}
		}
	case models.PercentageSplit:
		for _, id := range split.Sharers() {
			if err := insert(id, nil, split.Percents[id].String()); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported split %T", expense.Split)
	}
	return nil
}

func excludePayer(s models.SplitSpec) bool {
	if eq, ok := s.(models.EqualSplit); ok {
		return eq.ExcludePayer
	}
	return false
}
