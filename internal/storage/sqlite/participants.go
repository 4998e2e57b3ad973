package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tripledger/internal/models"
)

// CreateParticipant inserts a new participant into the database.
func (s *SQLiteStore) CreateParticipant(ctx context.Context, p *models.Participant) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}

	query := `
		INSERT INTO participants (trip_id, id, name, created_at, removed_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		p.TripID,
		p.ID,
		p.Name,
		p.CreatedAt,
		p.RemovedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

// ListParticipants retrieves every participant of a trip, archived ones included.
func (s *SQLiteStore) ListParticipants(ctx context.Context, tripID string) ([]*models.Participant, error) {
	if _, err := getTrip(ctx, s.read, tripID); err != nil {
		return nil, err
	}
	return listParticipants(ctx, s.read, tripID)
}

func listParticipants(ctx context.Context, q querier, tripID string) ([]*models.Participant, error) {
	query := `
		SELECT trip_id, id, name, created_at, removed_at
		FROM participants
		WHERE trip_id = ?
		ORDER BY id
	`
	rows, err := q.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p := &models.Participant{}
		if err := rows.Scan(
			&p.TripID,
			&p.ID,
			&p.Name,
			&p.CreatedAt,
			&p.RemovedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}
	return participants, nil
}

// ArchiveParticipant marks a participant as removed while keeping the row for history.
func (s *SQLiteStore) ArchiveParticipant(ctx context.Context, tripID, participantID string, removedAt int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE participants SET removed_at = ? WHERE trip_id = ? AND id = ?",
		removedAt, tripID, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to archive participant: %w", err)
	}
	return expectOne(res, "participant", participantID)
}

// DeleteParticipant removes a participant nothing references.
func (s *SQLiteStore) DeleteParticipant(ctx context.Context, tripID, participantID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM participants WHERE trip_id = ? AND id = ?",
		tripID, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return expectOne(res, "participant", participantID)
}
