package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
)

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	var note any
	if settlement.Note != "" {
		note = settlement.Note
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (id, trip_id, from_id, to_id, amount, created_at, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.TripID, settlement.FromID, settlement.ToID,
		int64(settlement.Amount), settlement.CreatedAt, note,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

// listSettlements retrieves a trip's settlements in the order they were recorded.
func listSettlements(ctx context.Context, q querier, tripID string) ([]*models.Settlement, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, trip_id, from_id, to_id, amount, created_at, note
		 FROM settlements WHERE trip_id = ? ORDER BY rowid`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement := &models.Settlement{}
		var amount int64
		var note sql.NullString

		if err := rows.Scan(&settlement.ID, &settlement.TripID, &settlement.FromID, &settlement.ToID,
			&amount, &settlement.CreatedAt, &note); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}

		settlement.Amount = money.Amount(amount)
		if note.Valid {
			settlement.Note = note.String
		}

		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// DeleteSettlement removes a settlement by ID.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, tripID, settlementID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM settlements WHERE trip_id = ? AND id = ?",
		tripID, settlementID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	return expectOne(res, "settlement", settlementID)
}
