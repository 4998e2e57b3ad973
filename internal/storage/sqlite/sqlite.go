// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/tripledger/internal/apperrors"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB // single writer connection
	read *sql.DB // query-only pool; WAL readers do not block the writer
}

const readPoolSize = 4

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Pragmas in the DSN apply to every pooled connection.
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := open(dsn, 1)
	if err != nil {
		return nil, err
	}
	// Opened after the writer so the database is already in WAL mode.
	read, err := open(fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=query_only(1)", dbPath), readPoolSize)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, read: read}, nil
}

func open(dsn string, maxConns int) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(maxConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Close closes both connection pools.
func (s *SQLiteStore) Close() error {
	return errors.Join(s.read.Close(), s.db.Close())
}

// CreateTrip persists a new trip to the database.
func (s *SQLiteStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.CreatedAt == 0 {
		trip.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO trips (id, name, currency, created_at) VALUES (?, ?, ?, ?)",
		trip.ID, trip.Name, trip.Currency, trip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}
	return nil
}

// GetTrip retrieves a trip by ID.
func (s *SQLiteStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	return getTrip(ctx, s.read, tripID)
}

func getTrip(ctx context.Context, q querier, tripID string) (*models.Trip, error) {
	trip := &models.Trip{}
	err := q.QueryRowContext(ctx,
		"SELECT id, name, currency, created_at FROM trips WHERE id = ?",
		tripID,
	).Scan(&trip.ID, &trip.Name, &trip.Currency, &trip.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("trip not found: %s", tripID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return trip, nil
}

// ListTrips returns all trips, newest first.
func (s *SQLiteStore) ListTrips(ctx context.Context) ([]*models.Trip, error) {
	rows, err := s.read.QueryContext(ctx,
		"SELECT id, name, currency, created_at FROM trips ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		trip := &models.Trip{}
		if err := rows.Scan(&trip.ID, &trip.Name, &trip.Currency, &trip.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}
	return trips, nil
}

// LoadSnapshot reads a trip with its participants, expenses and settlements
// inside one read transaction.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context, tripID string) (*storage.Snapshot, error) {
	tx, err := s.read.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	trip, err := getTrip(ctx, tx, tripID)
	if err != nil {
		return nil, err
	}
	participants, err := listParticipants(ctx, tx, tripID)
	if err != nil {
		return nil, err
	}
	expenses, err := listExpenses(ctx, tx, tripID)
	if err != nil {
		return nil, err
	}
	settlements, err := listSettlements(ctx, tx, tripID)
	if err != nil {
		return nil, err
	}

	return &storage.Snapshot{
		Trip:         trip,
		Participants: participants,
		Expenses:     expenses,
		Settlements:  settlements,
	}, nil
}

// expectOne turns a zero-row update or delete into a not-found error.
func expectOne(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return apperrors.NotFoundf("%s not found: %s", what, id)
	}
	return nil
}
