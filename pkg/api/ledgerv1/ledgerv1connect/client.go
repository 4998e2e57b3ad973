package ledgerv1connect

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	ledgerv1 "github.com/mmynk/tripledger/pkg/api/ledgerv1"
)

// LedgerServiceClient is a client for the tripledger.v1.LedgerService service.
type LedgerServiceClient interface {
	LedgerServiceHandler
}

// NewLedgerServiceClient constructs a client for the LedgerService at
// baseURL, for example "http://localhost:8080". The JSON codec is always
// installed.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &ledgerServiceClient{
		createTrip:        connect.NewClient[ledgerv1.CreateTripRequest, ledgerv1.CreateTripResponse](httpClient, baseURL+LedgerServiceCreateTripProcedure, opts...),
		getTrip:           connect.NewClient[ledgerv1.GetTripRequest, ledgerv1.GetTripResponse](httpClient, baseURL+LedgerServiceGetTripProcedure, opts...),
		listTrips:         connect.NewClient[ledgerv1.ListTripsRequest, ledgerv1.ListTripsResponse](httpClient, baseURL+LedgerServiceListTripsProcedure, opts...),
		addParticipant:    connect.NewClient[ledgerv1.AddParticipantRequest, ledgerv1.AddParticipantResponse](httpClient, baseURL+LedgerServiceAddParticipantProcedure, opts...),
		listParticipants:  connect.NewClient[ledgerv1.ListParticipantsRequest, ledgerv1.ListParticipantsResponse](httpClient, baseURL+LedgerServiceListParticipantsProcedure, opts...),
		removeParticipant: connect.NewClient[ledgerv1.RemoveParticipantRequest, ledgerv1.RemoveParticipantResponse](httpClient, baseURL+LedgerServiceRemoveParticipantProcedure, opts...),
		recordExpense:     connect.NewClient[ledgerv1.RecordExpenseRequest, ledgerv1.RecordExpenseResponse](httpClient, baseURL+LedgerServiceRecordExpenseProcedure, opts...),
		previewSplit:      connect.NewClient[ledgerv1.PreviewSplitRequest, ledgerv1.PreviewSplitResponse](httpClient, baseURL+LedgerServicePreviewSplitProcedure, opts...),
		editExpense:       connect.NewClient[ledgerv1.EditExpenseRequest, ledgerv1.EditExpenseResponse](httpClient, baseURL+LedgerServiceEditExpenseProcedure, opts...),
		deleteExpense:     connect.NewClient[ledgerv1.DeleteExpenseRequest, ledgerv1.DeleteExpenseResponse](httpClient, baseURL+LedgerServiceDeleteExpenseProcedure, opts...),
		getExpense:        connect.NewClient[ledgerv1.GetExpenseRequest, ledgerv1.GetExpenseResponse](httpClient, baseURL+LedgerServiceGetExpenseProcedure, opts...),
		listExpenses:      connect.NewClient[ledgerv1.ListExpensesRequest, ledgerv1.ListExpensesResponse](httpClient, baseURL+LedgerServiceListExpensesProcedure, opts...),
		recordSettlement:  connect.NewClient[ledgerv1.RecordSettlementRequest, ledgerv1.RecordSettlementResponse](httpClient, baseURL+LedgerServiceRecordSettlementProcedure, opts...),
		listSettlements:   connect.NewClient[ledgerv1.ListSettlementsRequest, ledgerv1.ListSettlementsResponse](httpClient, baseURL+LedgerServiceListSettlementsProcedure, opts...),
		deleteSettlement:  connect.NewClient[ledgerv1.DeleteSettlementRequest, ledgerv1.DeleteSettlementResponse](httpClient, baseURL+LedgerServiceDeleteSettlementProcedure, opts...),
		getBalances:       connect.NewClient[ledgerv1.GetBalancesRequest, ledgerv1.GetBalancesResponse](httpClient, baseURL+LedgerServiceGetBalancesProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	createTrip        *connect.Client[ledgerv1.CreateTripRequest, ledgerv1.CreateTripResponse]
	getTrip           *connect.Client[ledgerv1.GetTripRequest, ledgerv1.GetTripResponse]
	listTrips         *connect.Client[ledgerv1.ListTripsRequest, ledgerv1.ListTripsResponse]
	addParticipant    *connect.Client[ledgerv1.AddParticipantRequest, ledgerv1.AddParticipantResponse]
	listParticipants  *connect.Client[ledgerv1.ListParticipantsRequest, ledgerv1.ListParticipantsResponse]
	removeParticipant *connect.Client[ledgerv1.RemoveParticipantRequest, ledgerv1.RemoveParticipantResponse]
	recordExpense     *connect.Client[ledgerv1.RecordExpenseRequest, ledgerv1.RecordExpenseResponse]
	previewSplit      *connect.Client[ledgerv1.PreviewSplitRequest, ledgerv1.PreviewSplitResponse]
	editExpense       *connect.Client[ledgerv1.EditExpenseRequest, ledgerv1.EditExpenseResponse]
	deleteExpense     *connect.Client[ledgerv1.DeleteExpenseRequest, ledgerv1.DeleteExpenseResponse]
	getExpense        *connect.Client[ledgerv1.GetExpenseRequest, ledgerv1.GetExpenseResponse]
	listExpenses      *connect.Client[ledgerv1.ListExpensesRequest, ledgerv1.ListExpensesResponse]
	recordSettlement  *connect.Client[ledgerv1.RecordSettlementRequest, ledgerv1.RecordSettlementResponse]
	listSettlements   *connect.Client[ledgerv1.ListSettlementsRequest, ledgerv1.ListSettlementsResponse]
	deleteSettlement  *connect.Client[ledgerv1.DeleteSettlementRequest, ledgerv1.DeleteSettlementResponse]
	getBalances       *connect.Client[ledgerv1.GetBalancesRequest, ledgerv1.GetBalancesResponse]
}

func (c *ledgerServiceClient) CreateTrip(ctx context.Context, req *connect.Request[ledgerv1.CreateTripRequest]) (*connect.Response[ledgerv1.CreateTripResponse], error) {
	return c.createTrip.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetTrip(ctx context.Context, req *connect.Request[ledgerv1.GetTripRequest]) (*connect.Response[ledgerv1.GetTripResponse], error) {
	return c.getTrip.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListTrips(ctx context.Context, req *connect.Request[ledgerv1.ListTripsRequest]) (*connect.Response[ledgerv1.ListTripsResponse], error) {
	return c.listTrips.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) AddParticipant(ctx context.Context, req *connect.Request[ledgerv1.AddParticipantRequest]) (*connect.Response[ledgerv1.AddParticipantResponse], error) {
	return c.addParticipant.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListParticipants(ctx context.Context, req *connect.Request[ledgerv1.ListParticipantsRequest]) (*connect.Response[ledgerv1.ListParticipantsResponse], error) {
	return c.listParticipants.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RemoveParticipant(ctx context.Context, req *connect.Request[ledgerv1.RemoveParticipantRequest]) (*connect.Response[ledgerv1.RemoveParticipantResponse], error) {
	return c.removeParticipant.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RecordExpense(ctx context.Context, req *connect.Request[ledgerv1.RecordExpenseRequest]) (*connect.Response[ledgerv1.RecordExpenseResponse], error) {
	return c.recordExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) PreviewSplit(ctx context.Context, req *connect.Request[ledgerv1.PreviewSplitRequest]) (*connect.Response[ledgerv1.PreviewSplitResponse], error) {
	return c.previewSplit.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) EditExpense(ctx context.Context, req *connect.Request[ledgerv1.EditExpenseRequest]) (*connect.Response[ledgerv1.EditExpenseResponse], error) {
	return c.editExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[ledgerv1.DeleteExpenseRequest]) (*connect.Response[ledgerv1.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetExpense(ctx context.Context, req *connect.Request[ledgerv1.GetExpenseRequest]) (*connect.Response[ledgerv1.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListExpenses(ctx context.Context, req *connect.Request[ledgerv1.ListExpensesRequest]) (*connect.Response[ledgerv1.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[ledgerv1.RecordSettlementRequest]) (*connect.Response[ledgerv1.RecordSettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListSettlements(ctx context.Context, req *connect.Request[ledgerv1.ListSettlementsRequest]) (*connect.Response[ledgerv1.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) DeleteSettlement(ctx context.Context, req *connect.Request[ledgerv1.DeleteSettlementRequest]) (*connect.Response[ledgerv1.DeleteSettlementResponse], error) {
	return c.deleteSettlement.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[ledgerv1.GetBalancesRequest]) (*connect.Response[ledgerv1.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}
