package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// LedgerServiceName is the fully-qualified name of the ledger service.
const LedgerServiceName = "splitledger.v1.LedgerService"

const (
	LedgerServiceCreateGroupProcedure      = "/splitledger.v1.LedgerService/CreateGroup"
	LedgerServiceGetGroupProcedure         = "/splitledger.v1.LedgerService/GetGroup"
	LedgerServiceListGroupsProcedure       = "/splitledger.v1.LedgerService/ListGroups"
	LedgerServiceAddMemberProcedure        = "/splitledger.v1.LedgerService/AddMember"
	LedgerServiceCreateExpenseProcedure    = "/splitledger.v1.LedgerService/CreateExpense"
	LedgerServiceDeleteExpenseProcedure    = "/splitledger.v1.LedgerService/DeleteExpense"
	LedgerServiceListExpensesProcedure     = "/splitledger.v1.LedgerService/ListExpenses"
	LedgerServiceRecordSettlementProcedure = "/splitledger.v1.LedgerService/RecordSettlement"
	LedgerServiceListSettlementsProcedure  = "/splitledger.v1.LedgerService/ListSettlements"
	LedgerServiceGetBalancesProcedure      = "/splitledger.v1.LedgerService/GetBalances"
)

type Member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	UserID string `json:"user_id,omitempty"`
}

type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []Member `json:"members"`
	CreatedAt int64    `json:"created_at"`
}

type ExpenseSplit struct {
	MemberID string  `json:"member_id"`
	Amount   float64 `json:"amount"`
}

type Expense struct {
	ID           string         `json:"id"`
	GroupID      string         `json:"group_id"`
	Description  string         `json:"description"`
	PayerID      string         `json:"payer_id"`
	Amount       float64        `json:"amount"`
	Splits       []ExpenseSplit `json:"splits"`
	Currency     string         `json:"currency,omitempty"`
	ExchangeRate float64        `json:"exchange_rate,omitempty"`
	ReceiptID    string         `json:"receipt_id,omitempty"`
	CreatedAt    int64          `json:"created_at"`
}

type Settlement struct {
	ID           string  `json:"id"`
	GroupID      string  `json:"group_id"`
	FromMemberID string  `json:"from_member_id"`
	ToMemberID   string  `json:"to_member_id"`
	Amount       float64 `json:"amount"`
	Method       string  `json:"method,omitempty"`
	Notes        string  `json:"notes,omitempty"`
	CreatedAt    int64   `json:"created_at"`
}

type MemberBalance struct {
	MemberID   string  `json:"member_id"`
	MemberName string  `json:"member_name"`
	NetBalance float64 `json:"net_balance"`
	TotalPaid  float64 `json:"total_paid"`
	TotalOwed  float64 `json:"total_owed"`
}

// SuggestedSettlement uses the same field names a recorded settlement does,
// so clients can send it straight back through RecordSettlement.
type SuggestedSettlement struct {
	FromMemberID string  `json:"from_member_id"`
	ToMemberID   string  `json:"to_member_id"`
	Amount       float64 `json:"amount"`
}

type NewMember struct {
	Name   string `json:"name"`
	UserID string `json:"user_id,omitempty"`
}

type CreateGroupRequest struct {
	Name    string      `json:"name"`
	Members []NewMember `json:"members"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type AddMemberRequest struct {
	GroupID string `json:"group_id"`
	Name    string `json:"name"`
	UserID  string `json:"user_id,omitempty"`
}

type AddMemberResponse struct {
	Member *Member `json:"member"`
}

// CreateExpenseRequest records an expense. Empty Splits divides Amount
// evenly across every member of the group.
type CreateExpenseRequest struct {
	GroupID      string         `json:"group_id"`
	Description  string         `json:"description"`
	PayerID      string         `json:"payer_id"`
	Amount       float64        `json:"amount"`
	Splits       []ExpenseSplit `json:"splits,omitempty"`
	Currency     string         `json:"currency,omitempty"`
	ExchangeRate float64        `json:"exchange_rate,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

type ListExpensesRequest struct {
	GroupID string `json:"group_id"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type RecordSettlementRequest struct {
	GroupID      string  `json:"group_id"`
	FromMemberID string  `json:"from_member_id"`
	ToMemberID   string  `json:"to_member_id"`
	Amount       float64 `json:"amount"`
	Method       string  `json:"method,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

type RecordSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"group_id"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type GetBalancesRequest struct {
	GroupID string `json:"group_id"`
}

type GetBalancesResponse struct {
	Balances             []*MemberBalance       `json:"balances"`
	SuggestedSettlements []*SuggestedSettlement `json:"suggested_settlements"`
}

// LedgerServiceHandler is implemented by the ledger service.
type LedgerServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	AddMember(context.Context, *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error)
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error)
	RecordSettlement(context.Context, *connect.Request[RecordSettlementRequest]) (*connect.Response[RecordSettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error)
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
}

// NewLedgerServiceHandler returns the path prefix and handler serving svc.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	route(mux, LedgerServiceCreateGroupProcedure, svc.CreateGroup, opts)
	route(mux, LedgerServiceGetGroupProcedure, svc.GetGroup, opts)
	route(mux, LedgerServiceListGroupsProcedure, svc.ListGroups, opts)
	route(mux, LedgerServiceAddMemberProcedure, svc.AddMember, opts)
	route(mux, LedgerServiceCreateExpenseProcedure, svc.CreateExpense, opts)
	route(mux, LedgerServiceDeleteExpenseProcedure, svc.DeleteExpense, opts)
	route(mux, LedgerServiceListExpensesProcedure, svc.ListExpenses, opts)
	route(mux, LedgerServiceRecordSettlementProcedure, svc.RecordSettlement, opts)
	route(mux, LedgerServiceListSettlementsProcedure, svc.ListSettlements, opts)
	route(mux, LedgerServiceGetBalancesProcedure, svc.GetBalances, opts)
	return "/" + LedgerServiceName + "/", mux
}

// LedgerServiceClient calls the ledger service.
type LedgerServiceClient struct {
	createGroup      *connect.Client[CreateGroupRequest, CreateGroupResponse]
	getGroup         *connect.Client[GetGroupRequest, GetGroupResponse]
	listGroups       *connect.Client[ListGroupsRequest, ListGroupsResponse]
	addMember        *connect.Client[AddMemberRequest, AddMemberResponse]
	createExpense    *connect.Client[CreateExpenseRequest, CreateExpenseResponse]
	deleteExpense    *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
	listExpenses     *connect.Client[ListExpensesRequest, ListExpensesResponse]
	recordSettlement *connect.Client[RecordSettlementRequest, RecordSettlementResponse]
	listSettlements  *connect.Client[ListSettlementsRequest, ListSettlementsResponse]
	getBalances      *connect.Client[GetBalancesRequest, GetBalancesResponse]
}

// NewLedgerServiceClient builds a client for the service at baseURL.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	opts = clientOptions(opts)
	return &LedgerServiceClient{
		createGroup:      unaryClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL, LedgerServiceCreateGroupProcedure, opts),
		getGroup:         unaryClient[GetGroupRequest, GetGroupResponse](httpClient, baseURL, LedgerServiceGetGroupProcedure, opts),
		listGroups:       unaryClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL, LedgerServiceListGroupsProcedure, opts),
		addMember:        unaryClient[AddMemberRequest, AddMemberResponse](httpClient, baseURL, LedgerServiceAddMemberProcedure, opts),
		createExpense:    unaryClient[CreateExpenseRequest, CreateExpenseResponse](httpClient, baseURL, LedgerServiceCreateExpenseProcedure, opts),
		deleteExpense:    unaryClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL, LedgerServiceDeleteExpenseProcedure, opts),
		listExpenses:     unaryClient[ListExpensesRequest, ListExpensesResponse](httpClient, baseURL, LedgerServiceListExpensesProcedure, opts),
		recordSettlement: unaryClient[RecordSettlementRequest, RecordSettlementResponse](httpClient, baseURL, LedgerServiceRecordSettlementProcedure, opts),
		listSettlements:  unaryClient[ListSettlementsRequest, ListSettlementsResponse](httpClient, baseURL, LedgerServiceListSettlementsProcedure, opts),
		getBalances:      unaryClient[GetBalancesRequest, GetBalancesResponse](httpClient, baseURL, LedgerServiceGetBalancesProcedure, opts),
	}
}

func (c *LedgerServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AddMember(ctx context.Context, req *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[RecordSettlementRequest]) (*connect.Response[RecordSettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListSettlements(ctx context.Context, req *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}
