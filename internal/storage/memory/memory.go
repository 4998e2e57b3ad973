// Package memory provides an in-process implementation of storage.Store.
// Data lives only as long as the process; it backs tests and STORAGE_BACKEND=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tripledger/internal/apperrors"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type tripData struct {
	trip         models.Trip
	participants map[string]*models.Participant
	expenses     map[string]*models.Expense
	settlements  map[string]*models.Settlement
	seq          int64
	order        map[string]int64 // insertion order of expenses and settlements
}

// Store keeps every trip in maps guarded by a RWMutex. Values are copied on the
// way in and out so callers never share memory with the store.
type Store struct {
	mu    sync.RWMutex
	trips map[string]*tripData
}

// New creates an empty Store.
func New() *Store {
	return &Store{trips: make(map[string]*tripData)}
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func (s *Store) trip(tripID string) (*tripData, error) {
	td, ok := s.trips[tripID]
	if !ok {
		return nil, apperrors.NotFoundf("trip not found: %s", tripID)
	}
	return td, nil
}

func (td *tripData) next(id string) {
	td.seq++
	td.order[id] = td.seq
}

func (s *Store) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.CreatedAt == 0 {
		trip.CreatedAt = time.Now().Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.trips[trip.ID]; exists {
		return apperrors.Conflictf("trip already exists: %s", trip.ID)
	}
	s.trips[trip.ID] = &tripData{
		trip:         *trip,
		participants: make(map[string]*models.Participant),
		expenses:     make(map[string]*models.Expense),
		settlements:  make(map[string]*models.Settlement),
		order:        make(map[string]int64),
	}
	return nil
}

func (s *Store) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	td, err := s.trip(tripID)
	if err != nil {
		return nil, err
	}
	trip := td.trip
	return &trip, nil
}

func (s *Store) ListTrips(ctx context.Context) ([]*models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trips := make([]*models.Trip, 0, len(s.trips))
	for _, td := range s.trips {
		trip := td.trip
		trips = append(trips, &trip)
	}
	sort.Slice(trips, func(i, j int) bool {
		if trips[i].CreatedAt != trips[j].CreatedAt {
			return trips[i].CreatedAt > trips[j].CreatedAt
		}
		return trips[i].ID < trips[j].ID
	})
	return trips, nil
}

func (s *Store) CreateParticipant(ctx context.Context, p *models.Participant) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	td, err := s.trip(p.TripID)
	if err != nil {
		return err
	}
	stored := *p
	td.participants[p.ID] = &stored
	return nil
}

func (s *Store) ListParticipants(ctx context.Context, tripID string) ([]*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	td, err := s.trip(tripID)
	if err != nil {
		return nil, err
	}
	return td.listParticipants(), nil
}

func (td *tripData) listParticipants() []*models.Participant {
	out := make([]*models.Participant, 0, len(td.participants))
	for _, p := range td.participants {
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) ArchiveParticipant(ctx context.Context, tripID, participantID string, removedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	td, err := s.trip(tripID)
	if err != nil {
		return err
	}
	p, ok := td.participants[participantID]
	if !ok {
		return apperrors.NotFoundf("participant not found: %s", participantID)
	}
	p.RemovedAt = removedAt
	return nil
}

func (s *Store) DeleteParticipant(ctx context.Context, tripID, participantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	td, err := s.trip(tripID)
	if err != nil {
		return err
	}
	if _, ok := td.participants[participantID]; !ok {
		return apperrors.NotFoundf("participant not found: %s", participantID)
	}
	delete(td.participants, participantID)
	return nil
}

func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.UpdatedAt == 0 {
		expense.UpdatedAt = expense.CreatedAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	td, err := s.trip(expense.TripID)
	if err != nil {
		return err
	}
	td.expenses[expense.ID] = expense.Clone()
	td.next(expense.ID)
	return nil
}

func (s *Store) GetExpense(ctx context.Context, tripID, expenseID string) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	td, err := s.trip(tripID)
	if err != nil {
		return nil, err
	}
	e, ok := td.expenses[expenseID]
	if !ok {
		return nil, apperrors.NotFoundf("expense not found: %s", expenseID)
	}
	return e.Clone(), nil
}

func (s *Store) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	td, err := s.trip(expense.TripID)
	if err != nil {
		return err
	}
	if _, ok := td.expenses[expense.ID]; !ok {
		return apperrors.NotFoundf("expense not found: %s", expense.ID)
	}
	td.expenses[expense.ID] = expense.Clone()
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, tripID, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	td, err := s.trip(tripID)
	if err != nil {
		return err
	}
	if _, ok := td.expenses[expenseID]; !ok {
		return apperrors.NotFoundf("expense not found: %s", expenseID)
	}
	delete(td.expenses, expenseID)
	delete(td.order, expenseID)
	return nil
}

func (s *Store) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	td, err := s.trip(settlement.TripID)
	if err != nil {
		return err
	}
	stored := *settlement
	td.settlements[settlement.ID] = &stored
	td.next(settlement.ID)
	return nil
}

func (s *Store) DeleteSettlement(ctx context.Context, tripID, settlementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	td, err := s.trip(tripID)
	if err != nil {
		return err
	}
	if _, ok := td.settlements[settlementID]; !ok {
		return apperrors.NotFoundf("settlement not found: %s", settlementID)
	}
	delete(td.settlements, settlementID)
	delete(td.order, settlementID)
	return nil
}

func (s *Store) LoadSnapshot(ctx context.Context, tripID string) (*storage.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	td, err := s.trip(tripID)
	if err != nil {
		return nil, err
	}

	trip := td.trip
	snap := &storage.Snapshot{
		Trip:         &trip,
		Participants: td.listParticipants(),
	}

	for _, e := range td.expenses {
		snap.Expenses = append(snap.Expenses, e.Clone())
	}
	sort.Slice(snap.Expenses, func(i, j int) bool {
		a, b := snap.Expenses[i], snap.Expenses[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return td.order[a.ID] < td.order[b.ID]
	})

	for _, st := range td.settlements {
		c := *st
		snap.Settlements = append(snap.Settlements, &c)
	}
	sort.Slice(snap.Settlements, func(i, j int) bool {
		return td.order[snap.Settlements[i].ID] < td.order[snap.Settlements[j].ID]
	})

	return snap, nil
}
