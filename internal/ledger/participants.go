package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/mmynk/tripledger/internal/apperrors"
	"github.com/mmynk/tripledger/internal/events"
	"github.com/mmynk/tripledger/internal/models"
)

// AddParticipant registers a new member of the trip. Names are unique among
// the trip's active participants, ignoring case.
func (l *Ledger) AddParticipant(ctx context.Context, tripID, name string) (p *models.Participant, err error) {
	defer func(start time.Time) { l.observe(ctx, "add_participant", start, err) }(time.Now())

	name, err = cleanName("participant", name)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.lock(tripID)
	defer unlock()

	existing, err := l.store.ListParticipants(ctx, tripID)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if other.Active() && strings.EqualFold(other.Name, name) {
			return nil, apperrors.Conflictf("participant %q already exists in trip", name)
		}
	}

	p = &models.Participant{TripID: tripID, Name: name, CreatedAt: l.unixNow()}
	if err := l.store.CreateParticipant(ctx, p); err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Participant added", "trip_id", tripID, "participant_id", p.ID)
	l.committed(ctx, events.ParticipantAdded, tripID, p.ID)
	return p, nil
}

// ListParticipants returns the trip's active participants ordered by ID.
func (l *Ledger) ListParticipants(ctx context.Context, tripID string) (active []*models.Participant, err error) {
	defer func(start time.Time) { l.observe(ctx, "list_participants", start, err) }(time.Now())

	all, err := l.store.ListParticipants(ctx, tripID)
	if err != nil {
		return nil, err
	}
	active = make([]*models.Participant, 0, len(all))
	for _, p := range all {
		if p.Active() {
			active = append(active, p)
		}
	}
	return active, nil
}

// RemoveParticipant takes a participant out of the trip.
//
// A participant with a non-zero net balance cannot be removed. A settled
// participant is deleted outright when no expense or settlement mentions
// them, and archived otherwise so past records keep balancing.
func (l *Ledger) RemoveParticipant(ctx context.Context, tripID, participantID string) (err error) {
	defer func(start time.Time) { l.observe(ctx, "remove_participant", start, err) }(time.Now())

	unlock := l.locks.lock(tripID)
	defer unlock()

	snap, err := l.store.LoadSnapshot(ctx, tripID)
	if err != nil {
		return err
	}
	p := findParticipant(snap.Participants, participantID)
	if p == nil || !p.Active() {
		return apperrors.NotFoundf("participant not found: %s", participantID)
	}

	report, err := buildReport(snap)
	if err != nil {
		return err
	}
	if net := report.net(participantID); net != 0 {
		return apperrors.Conflictf("participant %s has an outstanding balance of %d", participantID, net)
	}

	if referenced(snap.Expenses, snap.Settlements, participantID) {
		err = l.store.ArchiveParticipant(ctx, tripID, participantID, l.unixNow())
	} else {
		err = l.store.DeleteParticipant(ctx, tripID, participantID)
	}
	if err != nil {
		return err
	}

	l.logger.InfoContext(ctx, "Participant removed", "trip_id", tripID, "participant_id", participantID)
	l.committed(ctx, events.ParticipantRemoved, tripID, participantID)
	return nil
}

func findParticipant(participants []*models.Participant, id string) *models.Participant {
	for _, p := range participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func referenced(expenses []*models.Expense, settlements []*models.Settlement, participantID string) bool {
	for _, e := range expenses {
		if e.References(participantID) {
			return true
		}
	}
	for _, s := range settlements {
		if s.FromID == participantID || s.ToID == participantID {
			return true
		}
	}
	return false
}
