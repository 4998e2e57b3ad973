package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/tripledger/internal/ledger"
	"github.com/mmynk/tripledger/internal/middleware"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
	ledgerv1 "github.com/mmynk/tripledger/pkg/api/ledgerv1"
	"github.com/mmynk/tripledger/pkg/api/ledgerv1/ledgerv1connect"
)

// LedgerService implements the Connect LedgerService on top of a Ledger.
// The REST gateway calls the same methods.
type LedgerService struct {
	ledgerv1connect.UnimplementedLedgerServiceHandler
	ledger       *ledger.Ledger
	validate     *validator.Validate
	authRequired bool
}

// NewLedgerService creates a LedgerService. With authRequired set, every call
// must carry token claims in its context.
func NewLedgerService(l *ledger.Ledger, authRequired bool) *LedgerService {
	return &LedgerService{
		ledger:       l,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		authRequired: authRequired,
	}
}

// checkRequest validates the message against its struct tags.
func (s *LedgerService) checkRequest(msg any) error {
	err := s.validate.Struct(msg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	problems := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		if fe.Param() != "" {
			problems[i] = fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		} else {
			problems[i] = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		}
	}
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid request: %s", strings.Join(problems, "; ")))
}

// authorize checks that the caller may touch the trip.
func (s *LedgerService) authorize(ctx context.Context, tripID string) error {
	claims := middleware.GetClaims(ctx)
	if claims == nil {
		if s.authRequired {
			return connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
		}
		return nil
	}
	if !claims.CanAccess(tripID) {
		slog.Warn("Trip access denied", "subject", claims.Subject, "trip_id", tripID)
		return connect.NewError(connect.CodePermissionDenied, fmt.Errorf("token does not grant access to trip %s", tripID))
	}
	return nil
}

// prepare validates msg and authorizes access to tripID.
func (s *LedgerService) prepare(ctx context.Context, tripID string, msg any) error {
	if err := s.checkRequest(msg); err != nil {
		return err
	}
	return s.authorize(ctx, tripID)
}

func (s *LedgerService) tripCurrency(ctx context.Context, tripID string) (string, error) {
	trip, err := s.ledger.GetTrip(ctx, tripID)
	if err != nil {
		return "", err
	}
	return trip.Currency, nil
}

// CreateTrip starts a new trip. Tokens scoped to specific trips cannot
// create more.
func (s *LedgerService) CreateTrip(ctx context.Context, req *connect.Request[ledgerv1.CreateTripRequest]) (*connect.Response[ledgerv1.CreateTripResponse], error) {
	slog.Info("CreateTrip request received", "name", req.Msg.Name, "currency", req.Msg.Currency)

	if err := s.checkRequest(req.Msg); err != nil {
		return nil, err
	}
	claims := middleware.GetClaims(ctx)
	if claims == nil && s.authRequired {
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
	}
	if claims != nil && !claims.AllTrips() {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("token is scoped to existing trips"))
	}

	trip, err := s.ledger.CreateTrip(ctx, req.Msg.Name, req.Msg.Currency)
	if err != nil {
		slog.Error("CreateTrip failed", "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ledgerv1.CreateTripResponse{Trip: tripToAPI(trip)}), nil
}

// GetTrip returns a trip by ID.
func (s *LedgerService) GetTrip(ctx context.Context, req *connect.Request[ledgerv1.GetTripRequest]) (*connect.Response[ledgerv1.GetTripResponse], error) {
	if err := s.prepare(ctx, req.Msg.TripID, req.Msg); err != nil {
		return nil, err
	}
	trip, err := s.ledger.GetTrip(ctx, req.Msg.TripID)
	if err != nil {
		slog.Error("GetTrip failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ledgerv1.GetTripResponse{Trip: tripToAPI(trip)}), nil
}

// ListTrips returns the trips the caller can see, newest first.
func (s *LedgerService) ListTrips(ctx context.Context, req *connect.Request[ledgerv1.ListTripsRequest]) (*connect.Response[ledgerv1.ListTripsResponse], error) {
	claims := middleware.GetClaims(ctx)
	if claims == nil && s.authRequired {
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
	}
	trips, err := s.ledger.ListTrips(ctx)
	if err != nil {
		slog.Error("ListTrips failed", "error", err)
		return nil, toConnectError(err)
	}

	resp := &ledgerv1.ListTripsResponse{Trips: make([]*ledgerv1.Trip, 0, len(trips))}
	for _, t := range trips {
		if claims != nil && !claims.CanAccess(t.ID) {
			continue
		}
		resp.Trips = append(resp.Trips, tripToAPI(t))
	}
	return connect.NewResponse(resp), nil
}

// AddParticipant adds a person to a trip.
func (s *LedgerService) AddParticipant(ctx context.Context, req *connect.Request[ledgerv1.AddParticipantRequest]) (*connect.Response[ledgerv1.AddParticipantResponse], error) {
	slog.Info("AddParticipant request received", "trip_id", req.Msg.TripID, "name", req.Msg.Name)

	if err := s.prepare(ctx, req.Msg.TripID, req.Msg); err != nil {
		return nil, err
	}
	p, err := s.ledger.AddParticipant(ctx, req.Msg.TripID, req.Msg.Name)
	if err != nil {
		slog.Error("AddParticipant failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ledgerv1.AddParticipantResponse{Participant: participantToAPI(p)}), nil
}

// ListParticipants returns the active participants of a trip.
func (s *LedgerService) ListParticipants(ctx context.Context, req *connect.Request[ledgerv1.ListParticipantsRequest]) (*connect.Response[ledgerv1.ListParticipantsResponse], error) {
	if err := s.prepare(ctx, req.Msg.TripID, req.Msg); err != nil {
		return nil, err
	}
	participants, err := s.ledger.ListParticipants(ctx, req.Msg.TripID)
	if err != nil {
		slog.Error("ListParticipants failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, toConnectError(err)
	}
	resp := &ledgerv1.ListParticipantsResponse{Participants: make([]*ledgerv1.Participant, len(participants))}
	for i, p := range participants {
		resp.Participants[i] = participantToAPI(p)
	}
	return connect.NewResponse(resp), nil
}

// RemoveParticipant removes a settled-up participant from a trip.
func (s *LedgerService) RemoveParticipant(ctx context.Context, req *connect.Request[ledgerv1.RemoveParticipantRequest]) (*connect.Response[ledgerv1.RemoveParticipantResponse], error) {
	slog.Info("RemoveParticipant request received", "trip_id", req.Msg.TripID, "participant_id", req.Msg.ParticipantID)

	if err := s.prepare(ctx, req.Msg.TripID, req.Msg); err != nil {
		return nil, err
	}
	if err := s.ledger.RemoveParticipant(ctx, req.Msg.TripID, req.Msg.ParticipantID); err != nil {
		slog.Error("RemoveParticipant failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ledgerv1.RemoveParticipantResponse{}), nil
}

// RecordExpense stores a new expense and returns it with its shares.
func (s *LedgerService) RecordExpense(ctx context.Context, req *connect.Request[ledgerv1.RecordExpenseRequest]) (*connect.Response[ledgerv1.RecordExpenseResponse], error) {
	slog.Info("RecordExpense request received",
		"trip_id", req.Msg.TripID,
		"payer_id", req.Msg.PayerID,
		"amount", req.Msg.Amount.String(),
	)

	detail, err := s.newExpense(ctx, req.Msg.TripID, req.Msg, req.Msg.NewExpense, s.ledger.RecordExpense)
	if err != nil {
		return nil, err
	}
	slog.Info("Expense recorded", "trip_id", req.Msg.TripID, "expense_id", detail.ID)
	return connect.NewResponse(&ledgerv1.RecordExpenseResponse{Expense: expenseToAPI(detail)}), nil
}

// PreviewSplit computes the shares of an expense without storing it.
func (s *LedgerService) PreviewSplit(ctx context.Context, req *connect.Request[ledgerv1.PreviewSplitRequest]) (*connect.Response[ledgerv1.PreviewSplitResponse], error) {
	detail, err := s.newExpense(ctx, req.Msg.TripID, req.Msg, req.Msg.NewExpense, s.ledger.PreviewSplit)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&ledgerv1.PreviewSplitResponse{Expense: expenseToAPI(detail)}), nil
}

func (s *LedgerService) newExpense(
	ctx context.Context,
	tripID string,
	msg any,
	in ledgerv1.NewExpense,
	apply func(context.Context, string, models.NewExpense) (*ledger.ExpenseDetail, error),
) (*ledger.ExpenseDetail, error) {
	if err := s.prepare(ctx, tripID, msg); err != nil {
		return nil, err
	}
	currency, err := s.tripCurrency(ctx, tripID)
	if err != nil {
		return nil, toConnectError(err)
	}
	expense, err := newExpenseFromAPI(in, currency)
	if err != nil {
		return nil, toConnectError(err)
	}
	detail, err := apply(ctx, tripID, expense)
	if err != nil {
		slog.Error("Expense rejected", "trip_id", tripID, "error", err)
		return nil, toConnectError(err)
	}
	return detail, nil
}

// EditExpense changes the fields set in the request and recomputes shares.
func (s *LedgerService) EditExpense(ctx context.Context, req *connect.Request[ledgerv1.EditExpenseRequest]) (*connect.Response[ledgerv1.EditExpenseResponse], error) {
	slog.Info("EditExpense request received", "trip_id", req.Msg.TripID, "expense_id", req.Msg.ExpenseID)

	if err := s.prepare(ctx, req.Msg.TripID, req.Msg); err != nil {
		return nil, err
	}
	currency, err := s.tripCurrency(ctx, req.Msg.TripID)
	if err != nil {
		return nil, toConnectError(err)
	}
	patch, err := patchFromAPI(req.Msg, currency)
	if err != nil {
		return nil, toConnectError(err)
	}
	detail, err := s.ledger.EditExpense(ctx, req.Msg.TripID, req.Msg.ExpenseID, patch)
	if err != nil {
		slog.Error("EditExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ledgerv1.EditExpenseResponse{Expense: expenseToAPI(detail)}), nil
}

// DeleteExpense removes an expense.
func (s *LedgerService) DeleteExpense(ctx context.Context, req *connect.Request[ledgerv1.DeleteExpenseRequest]) (*connect.Response[ledgerv1.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "trip_id", req.Msg.TripID, "expense_id", req.Msg.ExpenseID)

	if err := s.prepare(ctx, req.Msg.TripID, req.Msg); err != nil {
		return nil, err
	}
	if err := s.ledger.DeleteExpense(ctx, req.Msg.TripID, req.Msg.ExpenseID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ledgerv1.DeleteExpenseResponse{}), nil
}

// GetExpense returns one expense with its shares.
func (s *LedgerService) GetExpense(ctx context.Context, req *connect.Request[ledgerv1.GetExpenseRequest]) (*connect.Response[ledgerv1.GetExpenseResponse], error) {
	if err := s.prepare(ctx, req.Msg.TripID, req.Msg); err != nil {
		return nil, err
	}
	detail, err := s.ledger.GetExpense(ctx, req.Msg.TripID, req.Msg.ExpenseID)
	if err != nil {
		slog.Error("GetExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ledgerv1.GetExpenseResponse{Expense: expenseToAPI(detail)}), nil
}

// ListExpenses returns every expense of a trip in date order.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[ledgerv1.ListExpensesRequest]) (*connect.Response[ledgerv1.ListExpensesResponse], error) {
	if err := s.prepare(ctx, req.Msg.TripID, req.Msg); err != nil {
		return nil, err
	}
	details, err := s.ledger.ListExpenses(ctx, req.Msg.TripID)
	if err != nil {
		slog.Error("ListExpenses failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, toConnectError(err)
	}
	resp := &ledgerv1.ListExpensesResponse{Expenses: make([]*ledgerv1.Expense, len(details))}
	for i, d := range details {
		resp.Expenses[i] = expenseToAPI(d)
	}
	return connect.NewResponse(resp), nil
}

// RecordSettlement records a payment between two participants.
func (s *LedgerService) RecordSettlement(ctx context.Context, req *connect.Request[ledgerv1.RecordSettlementRequest]) (*connect.Response[ledgerv1.RecordSettlementResponse], error) {
	slog.Info("RecordSettlement request received",
		"trip_id", req.Msg.TripID,
		"from_id", req.Msg.FromID,
		"to_id", req.Msg.ToID,
		"amount", req.Msg.Amount.String(),
	)

	if err := s.prepare(ctx, req.Msg.TripID, req.Msg); err != nil {
		return nil, err
	}
	currency, err := s.tripCurrency(ctx, req.Msg.TripID)
	if err != nil {
		return nil, toConnectError(err)
	}
	amount, err := money.FromDecimal(req.Msg.Amount, currency)
	if err != nil {
		return nil, toConnectError(err)
	}
	settlement, err := s.ledger.RecordSettlement(ctx, req.Msg.TripID, models.NewSettlement{
		FromID: req.Msg.FromID,
		ToID:   req.Msg.ToID,
		Amount: amount,
		Note:   req.Msg.Note,
	})
	if err != nil {
		slog.Error("RecordSettlement failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ledgerv1.RecordSettlementResponse{Settlement: settlementToAPI(settlement, currency)}), nil
}

// ListSettlements returns the recorded settlements of a trip.
func (s *LedgerService) ListSettlements(ctx context.Context, req *connect.Request[ledgerv1.ListSettlementsRequest]) (*connect.Response[ledgerv1.ListSettlementsResponse], error) {
	if err := s.prepare(ctx, req.Msg.TripID, req.Msg); err != nil {
		return nil, err
	}
	currency, err := s.tripCurrency(ctx, req.Msg.TripID)
	if err != nil {
		return nil, toConnectError(err)
	}
	settlements, err := s.ledger.ListSettlements(ctx, req.Msg.TripID)
	if err != nil {
		slog.Error("ListSettlements failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, toConnectError(err)
	}
	resp := &ledgerv1.ListSettlementsResponse{Settlements: make([]*ledgerv1.Settlement, len(settlements))}
	for i, st := range settlements {
		resp.Settlements[i] = settlementToAPI(st, currency)
	}
	return connect.NewResponse(resp), nil
}

// DeleteSettlement removes a recorded settlement.
func (s *LedgerService) DeleteSettlement(ctx context.Context, req *connect.Request[ledgerv1.DeleteSettlementRequest]) (*connect.Response[ledgerv1.DeleteSettlementResponse], error) {
	slog.Info("DeleteSettlement request received", "trip_id", req.Msg.TripID, "settlement_id", req.Msg.SettlementID)

	if err := s.prepare(ctx, req.Msg.TripID, req.Msg); err != nil {
		return nil, err
	}
	if err := s.ledger.DeleteSettlement(ctx, req.Msg.TripID, req.Msg.SettlementID); err != nil {
		slog.Error("DeleteSettlement failed", "settlement_id", req.Msg.SettlementID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ledgerv1.DeleteSettlementResponse{}), nil
}

// GetBalances returns every participant's net balance and the suggested
// settlements that clear them.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[ledgerv1.GetBalancesRequest]) (*connect.Response[ledgerv1.GetBalancesResponse], error) {
	if err := s.prepare(ctx, req.Msg.TripID, req.Msg); err != nil {
		return nil, err
	}
	report, err := s.ledger.GetBalances(ctx, req.Msg.TripID)
	if err != nil {
		slog.Error("GetBalances failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, toConnectError(err)
	}
	slog.Debug("Balances computed",
		"trip_id", report.TripID,
		"participants", len(report.Balances),
		"transfers", len(report.Settlements),
	)
	return connect.NewResponse(balancesToAPI(report)), nil
}
