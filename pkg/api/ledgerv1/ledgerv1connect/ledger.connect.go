// Package ledgerv1connect wires the tripledger.v1.LedgerService messages into
// Connect handlers and clients.
package ledgerv1connect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	ledgerv1 "github.com/mmynk/tripledger/pkg/api/ledgerv1"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "tripledger.v1.LedgerService"

// Procedure paths of the LedgerService RPCs.
const (
	LedgerServiceCreateTripProcedure        = "/tripledger.v1.LedgerService/CreateTrip"
	LedgerServiceGetTripProcedure           = "/tripledger.v1.LedgerService/GetTrip"
	LedgerServiceListTripsProcedure         = "/tripledger.v1.LedgerService/ListTrips"
	LedgerServiceAddParticipantProcedure    = "/tripledger.v1.LedgerService/AddParticipant"
	LedgerServiceListParticipantsProcedure  = "/tripledger.v1.LedgerService/ListParticipants"
	LedgerServiceRemoveParticipantProcedure = "/tripledger.v1.LedgerService/RemoveParticipant"
	LedgerServiceRecordExpenseProcedure     = "/tripledger.v1.LedgerService/RecordExpense"
	LedgerServicePreviewSplitProcedure      = "/tripledger.v1.LedgerService/PreviewSplit"
	LedgerServiceEditExpenseProcedure       = "/tripledger.v1.LedgerService/EditExpense"
	LedgerServiceDeleteExpenseProcedure     = "/tripledger.v1.LedgerService/DeleteExpense"
	LedgerServiceGetExpenseProcedure        = "/tripledger.v1.LedgerService/GetExpense"
	LedgerServiceListExpensesProcedure      = "/tripledger.v1.LedgerService/ListExpenses"
	LedgerServiceRecordSettlementProcedure  = "/tripledger.v1.LedgerService/RecordSettlement"
	LedgerServiceListSettlementsProcedure   = "/tripledger.v1.LedgerService/ListSettlements"
	LedgerServiceDeleteSettlementProcedure  = "/tripledger.v1.LedgerService/DeleteSettlement"
	LedgerServiceGetBalancesProcedure       = "/tripledger.v1.LedgerService/GetBalances"
)

// LedgerServiceHandler is implemented by the server side of LedgerService.
type LedgerServiceHandler interface {
	CreateTrip(context.Context, *connect.Request[ledgerv1.CreateTripRequest]) (*connect.Response[ledgerv1.CreateTripResponse], error)
	GetTrip(context.Context, *connect.Request[ledgerv1.GetTripRequest]) (*connect.Response[ledgerv1.GetTripResponse], error)
	ListTrips(context.Context, *connect.Request[ledgerv1.ListTripsRequest]) (*connect.Response[ledgerv1.ListTripsResponse], error)
	AddParticipant(context.Context, *connect.Request[ledgerv1.AddParticipantRequest]) (*connect.Response[ledgerv1.AddParticipantResponse], error)
	ListParticipants(context.Context, *connect.Request[ledgerv1.ListParticipantsRequest]) (*connect.Response[ledgerv1.ListParticipantsResponse], error)
	RemoveParticipant(context.Context, *connect.Request[ledgerv1.RemoveParticipantRequest]) (*connect.Response[ledgerv1.RemoveParticipantResponse], error)
	RecordExpense(context.Context, *connect.Request[ledgerv1.RecordExpenseRequest]) (*connect.Response[ledgerv1.RecordExpenseResponse], error)
	PreviewSplit(context.Context, *connect.Request[ledgerv1.PreviewSplitRequest]) (*connect.Response[ledgerv1.PreviewSplitResponse], error)
	EditExpense(context.Context, *connect.Request[ledgerv1.EditExpenseRequest]) (*connect.Response[ledgerv1.EditExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[ledgerv1.DeleteExpenseRequest]) (*connect.Response[ledgerv1.DeleteExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[ledgerv1.GetExpenseRequest]) (*connect.Response[ledgerv1.GetExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[ledgerv1.ListExpensesRequest]) (*connect.Response[ledgerv1.ListExpensesResponse], error)
	RecordSettlement(context.Context, *connect.Request[ledgerv1.RecordSettlementRequest]) (*connect.Response[ledgerv1.RecordSettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[ledgerv1.ListSettlementsRequest]) (*connect.Response[ledgerv1.ListSettlementsResponse], error)
	DeleteSettlement(context.Context, *connect.Request[ledgerv1.DeleteSettlementRequest]) (*connect.Response[ledgerv1.DeleteSettlementResponse], error)
	GetBalances(context.Context, *connect.Request[ledgerv1.GetBalancesRequest]) (*connect.Response[ledgerv1.GetBalancesResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself. The JSON codec is always installed.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	read := append([]connect.HandlerOption{connect.WithIdempotency(connect.IdempotencyNoSideEffects)}, opts...)

	handlers := map[string]http.Handler{
		LedgerServiceCreateTripProcedure:        connect.NewUnaryHandler(LedgerServiceCreateTripProcedure, svc.CreateTrip, opts...),
		LedgerServiceGetTripProcedure:           connect.NewUnaryHandler(LedgerServiceGetTripProcedure, svc.GetTrip, read...),
		LedgerServiceListTripsProcedure:         connect.NewUnaryHandler(LedgerServiceListTripsProcedure, svc.ListTrips, read...),
		LedgerServiceAddParticipantProcedure:    connect.NewUnaryHandler(LedgerServiceAddParticipantProcedure, svc.AddParticipant, opts...),
		LedgerServiceListParticipantsProcedure:  connect.NewUnaryHandler(LedgerServiceListParticipantsProcedure, svc.ListParticipants, read...),
		LedgerServiceRemoveParticipantProcedure: connect.NewUnaryHandler(LedgerServiceRemoveParticipantProcedure, svc.RemoveParticipant, opts...),
		LedgerServiceRecordExpenseProcedure:     connect.NewUnaryHandler(LedgerServiceRecordExpenseProcedure, svc.RecordExpense, opts...),
		LedgerServicePreviewSplitProcedure:      connect.NewUnaryHandler(LedgerServicePreviewSplitProcedure, svc.PreviewSplit, read...),
		LedgerServiceEditExpenseProcedure:       connect.NewUnaryHandler(LedgerServiceEditExpenseProcedure, svc.EditExpense, opts...),
		LedgerServiceDeleteExpenseProcedure:     connect.NewUnaryHandler(LedgerServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...),
		LedgerServiceGetExpenseProcedure:        connect.NewUnaryHandler(LedgerServiceGetExpenseProcedure, svc.GetExpense, read...),
		LedgerServiceListExpensesProcedure:      connect.NewUnaryHandler(LedgerServiceListExpensesProcedure, svc.ListExpenses, read...),
		LedgerServiceRecordSettlementProcedure:  connect.NewUnaryHandler(LedgerServiceRecordSettlementProcedure, svc.RecordSettlement, opts...),
		LedgerServiceListSettlementsProcedure:   connect.NewUnaryHandler(LedgerServiceListSettlementsProcedure, svc.ListSettlements, read...),
		LedgerServiceDeleteSettlementProcedure:  connect.NewUnaryHandler(LedgerServiceDeleteSettlementProcedure, svc.DeleteSettlement, opts...),
		LedgerServiceGetBalancesProcedure:       connect.NewUnaryHandler(LedgerServiceGetBalancesProcedure, svc.GetBalances, read...),
	}

	return "/" + LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// UnimplementedLedgerServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLedgerServiceHandler struct{}

func unimplemented(procedure string) error {
	name := procedure[strings.LastIndex(procedure, "/")+1:]
	return connect.NewError(connect.CodeUnimplemented, errors.New(LedgerServiceName+"."+name+" is not implemented"))
}

func (UnimplementedLedgerServiceHandler) CreateTrip(context.Context, *connect.Request[ledgerv1.CreateTripRequest]) (*connect.Response[ledgerv1.CreateTripResponse], error) {
	return nil, unimplemented(LedgerServiceCreateTripProcedure)
}

func (UnimplementedLedgerServiceHandler) GetTrip(context.Context, *connect.Request[ledgerv1.GetTripRequest]) (*connect.Response[ledgerv1.GetTripResponse], error) {
	return nil, unimplemented(LedgerServiceGetTripProcedure)
}

func (UnimplementedLedgerServiceHandler) ListTrips(context.Context, *connect.Request[ledgerv1.ListTripsRequest]) (*connect.Response[ledgerv1.ListTripsResponse], error) {
	return nil, unimplemented(LedgerServiceListTripsProcedure)
}

func (UnimplementedLedgerServiceHandler) AddParticipant(context.Context, *connect.Request[ledgerv1.AddParticipantRequest]) (*connect.Response[ledgerv1.AddParticipantResponse], error) {
	return nil, unimplemented(LedgerServiceAddParticipantProcedure)
}

func (UnimplementedLedgerServiceHandler) ListParticipants(context.Context, *connect.Request[ledgerv1.ListParticipantsRequest]) (*connect.Response[ledgerv1.ListParticipantsResponse], error) {
	return nil, unimplemented(LedgerServiceListParticipantsProcedure)
}

func (UnimplementedLedgerServiceHandler) RemoveParticipant(context.Context, *connect.Request[ledgerv1.RemoveParticipantRequest]) (*connect.Response[ledgerv1.RemoveParticipantResponse], error) {
	return nil, unimplemented(LedgerServiceRemoveParticipantProcedure)
}

func (UnimplementedLedgerServiceHandler) RecordExpense(context.Context, *connect.Request[ledgerv1.RecordExpenseRequest]) (*connect.Response[ledgerv1.RecordExpenseResponse], error) {
	return nil, unimplemented(LedgerServiceRecordExpenseProcedure)
}

func (UnimplementedLedgerServiceHandler) PreviewSplit(context.Context, *connect.Request[ledgerv1.PreviewSplitRequest]) (*connect.Response[ledgerv1.PreviewSplitResponse], error) {
	return nil, unimplemented(LedgerServicePreviewSplitProcedure)
}

func (UnimplementedLedgerServiceHandler) EditExpense(context.Context, *connect.Request[ledgerv1.EditExpenseRequest]) (*connect.Response[ledgerv1.EditExpenseResponse], error) {
	return nil, unimplemented(LedgerServiceEditExpenseProcedure)
}

func (UnimplementedLedgerServiceHandler) DeleteExpense(context.Context, *connect.Request[ledgerv1.DeleteExpenseRequest]) (*connect.Response[ledgerv1.DeleteExpenseResponse], error) {
	return nil, unimplemented(LedgerServiceDeleteExpenseProcedure)
}

func (UnimplementedLedgerServiceHandler) GetExpense(context.Context, *connect.Request[ledgerv1.GetExpenseRequest]) (*connect.Response[ledgerv1.GetExpenseResponse], error) {
	return nil, unimplemented(LedgerServiceGetExpenseProcedure)
}

func (UnimplementedLedgerServiceHandler) ListExpenses(context.Context, *connect.Request[ledgerv1.ListExpensesRequest]) (*connect.Response[ledgerv1.ListExpensesResponse], error) {
	return nil, unimplemented(LedgerServiceListExpensesProcedure)
}

func (UnimplementedLedgerServiceHandler) RecordSettlement(context.Context, *connect.Request[ledgerv1.RecordSettlementRequest]) (*connect.Response[ledgerv1.RecordSettlementResponse], error) {
	return nil, unimplemented(LedgerServiceRecordSettlementProcedure)
}

func (UnimplementedLedgerServiceHandler) ListSettlements(context.Context, *connect.Request[ledgerv1.ListSettlementsRequest]) (*connect.Response[ledgerv1.ListSettlementsResponse], error) {
	return nil, unimplemented(LedgerServiceListSettlementsProcedure)
}

func (UnimplementedLedgerServiceHandler) DeleteSettlement(context.Context, *connect.Request[ledgerv1.DeleteSettlementRequest]) (*connect.Response[ledgerv1.DeleteSettlementResponse], error) {
	return nil, unimplemented(LedgerServiceDeleteSettlementProcedure)
}

func (UnimplementedLedgerServiceHandler) GetBalances(context.Context, *connect.Request[ledgerv1.GetBalancesRequest]) (*connect.Response[ledgerv1.GetBalancesResponse], error) {
	return nil, unimplemented(LedgerServiceGetBalancesProcedure)
}
