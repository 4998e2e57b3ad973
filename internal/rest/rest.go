// Package rest exposes the ledger as a JSON REST API. Every route decodes its
// body into the matching ledgerv1 request and calls the Connect handler
// method, so both surfaces share validation, authorization and error codes.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"

	ledgerv1 "github.com/mmynk/tripledger/pkg/api/ledgerv1"
	"github.com/mmynk/tripledger/pkg/api/ledgerv1/ledgerv1connect"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type gateway struct {
	svc ledgerv1connect.LedgerServiceHandler
}

// Register mounts the REST routes on r.
func Register(r *mux.Router, svc ledgerv1connect.LedgerServiceHandler) {
	g := &gateway{svc: svc}

	r.HandleFunc("/trips", g.createTrip).Methods(http.MethodPost)
	r.HandleFunc("/trips", g.listTrips).Methods(http.MethodGet)
	r.HandleFunc("/trips/{id}", g.getTrip).Methods(http.MethodGet)

	r.HandleFunc("/trips/{id}/participants", g.addParticipant).Methods(http.MethodPost)
	r.HandleFunc("/trips/{id}/participants", g.listParticipants).Methods(http.MethodGet)
	r.HandleFunc("/trips/{id}/participants/{pid}", g.removeParticipant).Methods(http.MethodDelete)

	r.HandleFunc("/trips/{id}/expenses:preview", g.previewSplit).Methods(http.MethodPost)
	r.HandleFunc("/trips/{id}/expenses", g.recordExpense).Methods(http.MethodPost)
	r.HandleFunc("/trips/{id}/expenses", g.listExpenses).Methods(http.MethodGet)
	r.HandleFunc("/trips/{id}/expenses/{eid}", g.getExpense).Methods(http.MethodGet)
	r.HandleFunc("/trips/{id}/expenses/{eid}", g.editExpense).Methods(http.MethodPatch)
	r.HandleFunc("/trips/{id}/expenses/{eid}", g.deleteExpense).Methods(http.MethodDelete)

	r.HandleFunc("/trips/{id}/settlements", g.recordSettlement).Methods(http.MethodPost)
	r.HandleFunc("/trips/{id}/settlements", g.listSettlements).Methods(http.MethodGet)
	r.HandleFunc("/trips/{id}/settlements/{sid}", g.deleteSettlement).Methods(http.MethodDelete)

	r.HandleFunc("/trips/{id}/balances", g.getBalances).Methods(http.MethodGet)
}

// NewRouter returns a router serving only the REST routes.
func NewRouter(svc ledgerv1connect.LedgerServiceHandler) *mux.Router {
	r := mux.NewRouter()
	Register(r, svc)
	return r
}

func (g *gateway) createTrip(w http.ResponseWriter, r *http.Request) {
	var req ledgerv1.CreateTripRequest
	if !decode(w, r, &req) {
		return
	}
	invoke(w, r, http.StatusCreated, &req, g.svc.CreateTrip)
}

func (g *gateway) listTrips(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, &ledgerv1.ListTripsRequest{}, g.svc.ListTrips)
}

func (g *gateway) getTrip(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, &ledgerv1.GetTripRequest{TripID: mux.Vars(r)["id"]}, g.svc.GetTrip)
}

func (g *gateway) addParticipant(w http.ResponseWriter, r *http.Request) {
	var req ledgerv1.AddParticipantRequest
	if !decode(w, r, &req) {
		return
	}
	req.TripID = mux.Vars(r)["id"]
	invoke(w, r, http.StatusCreated, &req, g.svc.AddParticipant)
}

func (g *gateway) listParticipants(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, &ledgerv1.ListParticipantsRequest{TripID: mux.Vars(r)["id"]}, g.svc.ListParticipants)
}

func (g *gateway) removeParticipant(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	req := &ledgerv1.RemoveParticipantRequest{TripID: vars["id"], ParticipantID: vars["pid"]}
	invoke(w, r, http.StatusNoContent, req, g.svc.RemoveParticipant)
}

func (g *gateway) recordExpense(w http.ResponseWriter, r *http.Request) {
	var req ledgerv1.RecordExpenseRequest
	if !decode(w, r, &req) {
		return
	}
	req.TripID = mux.Vars(r)["id"]
	invoke(w, r, http.StatusCreated, &req, g.svc.RecordExpense)
}

func (g *gateway) previewSplit(w http.ResponseWriter, r *http.Request) {
	var req ledgerv1.PreviewSplitRequest
	if !decode(w, r, &req) {
		return
	}
	req.TripID = mux.Vars(r)["id"]
	invoke(w, r, http.StatusOK, &req, g.svc.PreviewSplit)
}

func (g *gateway) listExpenses(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, &ledgerv1.ListExpensesRequest{TripID: mux.Vars(r)["id"]}, g.svc.ListExpenses)
}

func (g *gateway) getExpense(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	invoke(w, r, http.StatusOK, &ledgerv1.GetExpenseRequest{TripID: vars["id"], ExpenseID: vars["eid"]}, g.svc.GetExpense)
}

func (g *gateway) editExpense(w http.ResponseWriter, r *http.Request) {
	var req ledgerv1.EditExpenseRequest
	if !decode(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	req.TripID, req.ExpenseID = vars["id"], vars["eid"]
	invoke(w, r, http.StatusOK, &req, g.svc.EditExpense)
}

func (g *gateway) deleteExpense(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	invoke(w, r, http.StatusNoContent, &ledgerv1.DeleteExpenseRequest{TripID: vars["id"], ExpenseID: vars["eid"]}, g.svc.DeleteExpense)
}

func (g *gateway) recordSettlement(w http.ResponseWriter, r *http.Request) {
	var req ledgerv1.RecordSettlementRequest
	if !decode(w, r, &req) {
		return
	}
	req.TripID = mux.Vars(r)["id"]
	invoke(w, r, http.StatusCreated, &req, g.svc.RecordSettlement)
}

func (g *gateway) listSettlements(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, &ledgerv1.ListSettlementsRequest{TripID: mux.Vars(r)["id"]}, g.svc.ListSettlements)
}

func (g *gateway) deleteSettlement(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	req := &ledgerv1.DeleteSettlementRequest{TripID: vars["id"], SettlementID: vars["sid"]}
	invoke(w, r, http.StatusNoContent, req, g.svc.DeleteSettlement)
}

func (g *gateway) getBalances(w http.ResponseWriter, r *http.Request) {
	invoke(w, r, http.StatusOK, &ledgerv1.GetBalancesRequest{TripID: mux.Vars(r)["id"]}, g.svc.GetBalances)
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, connect.NewError(connect.CodeInvalidArgument, errors.New("malformed JSON body: "+err.Error())))
	return false
}

func invoke[Req, Res any](
	w http.ResponseWriter,
	r *http.Request,
	status int,
	req *Req,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
) {
	resp, err := fn(r.Context(), connect.NewRequest(req))
	if err != nil {
		writeError(w, err)
		return
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, resp.Msg)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

// errorBody is the JSON shape of every REST error.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, err error) {
	code := connect.CodeOf(err)
	msg := err.Error()
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		msg = connectErr.Message()
	}
	writeJSON(w, HTTPStatus(code), errorBody{Error: msg, Code: code.String()})
}

// HTTPStatus maps a Connect code to the REST status code.
func HTTPStatus(code connect.Code) int {
	switch code {
	case connect.CodeInvalidArgument, connect.CodeOutOfRange:
		return http.StatusBadRequest
	case connect.CodeUnauthenticated:
		return http.StatusUnauthorized
	case connect.CodePermissionDenied:
		return http.StatusForbidden
	case connect.CodeNotFound:
		return http.StatusNotFound
	case connect.CodeAlreadyExists, connect.CodeFailedPrecondition, connect.CodeAborted:
		return http.StatusConflict
	case connect.CodeResourceExhausted:
		return http.StatusTooManyRequests
	case connect.CodeCanceled:
		return 499
	case connect.CodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	case connect.CodeUnimplemented:
		return http.StatusNotImplemented
	case connect.CodeUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
