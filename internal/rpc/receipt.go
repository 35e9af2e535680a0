package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// ReceiptServiceName is the fully-qualified name of the receipt service.
const ReceiptServiceName = "splitledger.v1.ReceiptService"

const (
	ReceiptServiceCreateReceiptProcedure            = "/splitledger.v1.ReceiptService/CreateReceipt"
	ReceiptServiceGetReceiptProcedure               = "/splitledger.v1.ReceiptService/GetReceipt"
	ReceiptServiceClaimItemProcedure                = "/splitledger.v1.ReceiptService/ClaimItem"
	ReceiptServiceUnclaimItemProcedure              = "/splitledger.v1.ReceiptService/UnclaimItem"
	ReceiptServiceGetReceiptSummaryProcedure        = "/splitledger.v1.ReceiptService/GetReceiptSummary"
	ReceiptServiceCreateExpenseFromReceiptProcedure = "/splitledger.v1.ReceiptService/CreateExpenseFromReceipt"
)

type ItemClaim struct {
	ID            string  `json:"id"`
	ReceiptItemID string  `json:"receipt_item_id"`
	MemberID      string  `json:"member_id"`
	ShareFraction float64 `json:"share_fraction"`
	SplitCount    int     `json:"split_count"`
	Source        string  `json:"source,omitempty"`
	ClaimedAt     int64   `json:"claimed_at"`
}

type ReceiptItem struct {
	ID              string       `json:"id"`
	Description     string       `json:"description"`
	Quantity        float64      `json:"quantity"`
	UnitPrice       float64      `json:"unit_price"`
	TotalPrice      float64      `json:"total_price"`
	IsTax           bool         `json:"is_tax,omitempty"`
	IsTip           bool         `json:"is_tip,omitempty"`
	IsSubtotal      bool         `json:"is_subtotal,omitempty"`
	IsTotal         bool         `json:"is_total,omitempty"`
	IsDiscount      bool         `json:"is_discount,omitempty"`
	IsServiceCharge bool         `json:"is_service_charge,omitempty"`
	IsModifier      bool         `json:"is_modifier,omitempty"`
	IsLikelyShared  bool         `json:"is_likely_shared,omitempty"`
	ParentItemID    string       `json:"parent_item_id,omitempty"`
	Claims          []*ItemClaim `json:"claims,omitempty"`

	// Claim state derived from Claims.
	ClaimedFraction float64 `json:"claimed_fraction"`
	FullyClaimed    bool    `json:"fully_claimed"`
}

type Receipt struct {
	ID          string         `json:"id"`
	GroupID     string         `json:"group_id"`
	Merchant    string         `json:"merchant"`
	Subtotal    float64        `json:"subtotal"`
	TaxAmount   float64        `json:"tax_amount"`
	TipAmount   float64        `json:"tip_amount"`
	TotalAmount *float64       `json:"total_amount,omitempty"`
	Items       []*ReceiptItem `json:"items"`
	CreatedAt   int64          `json:"created_at"`
}

type ClaimedLine struct {
	ItemID        string  `json:"item_id"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	ShareFraction float64 `json:"share_fraction"`
}

type ReceiptMemberTotal struct {
	MemberID   string         `json:"member_id"`
	MemberName string         `json:"member_name"`
	ItemsTotal float64        `json:"items_total"`
	TaxShare   float64        `json:"tax_share"`
	TipShare   float64        `json:"tip_share"`
	GrandTotal float64        `json:"grand_total"`
	Items      []*ClaimedLine `json:"items"`
}

type ReceiptSummary struct {
	ReceiptID        string                `json:"receipt_id"`
	ItemsTotal       float64               `json:"items_total"`
	ClaimedSubtotal  float64               `json:"claimed_subtotal"`
	UnclaimedAmount  float64               `json:"unclaimed_amount"`
	TaxAmount        float64               `json:"tax_amount"`
	TipAmount        float64               `json:"tip_amount"`
	Total            float64               `json:"total"`
	Adjustment       float64               `json:"adjustment"`
	ItemCount        int                   `json:"item_count"`
	ClaimedItemCount int                   `json:"claimed_item_count"`
	AllItemsClaimed  bool                  `json:"all_items_claimed"`
	MemberTotals     []*ReceiptMemberTotal `json:"member_totals"`
}

type NewReceiptItem struct {
	Description     string  `json:"description"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	TotalPrice      float64 `json:"total_price"`
	IsTax           bool    `json:"is_tax,omitempty"`
	IsTip           bool    `json:"is_tip,omitempty"`
	IsSubtotal      bool    `json:"is_subtotal,omitempty"`
	IsTotal         bool    `json:"is_total,omitempty"`
	IsDiscount      bool    `json:"is_discount,omitempty"`
	IsServiceCharge bool    `json:"is_service_charge,omitempty"`
	IsModifier      bool    `json:"is_modifier,omitempty"`
	IsLikelyShared  bool    `json:"is_likely_shared,omitempty"`

	// ParentIndex points at the item this one modifies, by position in
	// the request. -1 or absent for top-level items.
	ParentIndex *int `json:"parent_index,omitempty"`
}

type CreateReceiptRequest struct {
	GroupID     string            `json:"group_id"`
	Merchant    string            `json:"merchant"`
	Subtotal    float64           `json:"subtotal"`
	TaxAmount   float64           `json:"tax_amount"`
	TipAmount   float64           `json:"tip_amount"`
	TotalAmount *float64          `json:"total_amount,omitempty"`
	Items       []*NewReceiptItem `json:"items"`
}

type CreateReceiptResponse struct {
	Receipt *Receipt `json:"receipt"`
}

type GetReceiptRequest struct {
	ReceiptID string `json:"receipt_id"`
}

type GetReceiptResponse struct {
	Receipt *Receipt `json:"receipt"`
}

// ClaimItemRequest claims a share of an item. A zero ShareFraction claims
// whatever is left.
type ClaimItemRequest struct {
	ReceiptItemID string  `json:"receipt_item_id"`
	MemberID      string  `json:"member_id"`
	ShareFraction float64 `json:"share_fraction,omitempty"`
	SplitCount    int     `json:"split_count,omitempty"`
	Source        string  `json:"source,omitempty"`
}

type ClaimItemResponse struct {
	Claim *ItemClaim `json:"claim"`
}

type UnclaimItemRequest struct {
	ReceiptItemID string `json:"receipt_item_id"`
	MemberID      string `json:"member_id"`
}

type UnclaimItemResponse struct{}

type GetReceiptSummaryRequest struct {
	ReceiptID string `json:"receipt_id"`
}

type GetReceiptSummaryResponse struct {
	Summary *ReceiptSummary `json:"summary"`
}

// CreateExpenseFromReceiptRequest turns a receipt's member totals into an
// expense paid by PayerID.
type CreateExpenseFromReceiptRequest struct {
	ReceiptID string `json:"receipt_id"`
	PayerID   string `json:"payer_id"`
}

type CreateExpenseFromReceiptResponse struct {
	Expense *Expense `json:"expense"`
}

// ReceiptServiceHandler is implemented by the receipt service.
type ReceiptServiceHandler interface {
	CreateReceipt(context.Context, *connect.Request[CreateReceiptRequest]) (*connect.Response[CreateReceiptResponse], error)
	GetReceipt(context.Context, *connect.Request[GetReceiptRequest]) (*connect.Response[GetReceiptResponse], error)
	ClaimItem(context.Context, *connect.Request[ClaimItemRequest]) (*connect.Response[ClaimItemResponse], error)
	UnclaimItem(context.Context, *connect.Request[UnclaimItemRequest]) (*connect.Response[UnclaimItemResponse], error)
	GetReceiptSummary(context.Context, *connect.Request[GetReceiptSummaryRequest]) (*connect.Response[GetReceiptSummaryResponse], error)
	CreateExpenseFromReceipt(context.Context, *connect.Request[CreateExpenseFromReceiptRequest]) (*connect.Response[CreateExpenseFromReceiptResponse], error)
}

// NewReceiptServiceHandler returns the path prefix and handler serving svc.
func NewReceiptServiceHandler(svc ReceiptServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	route(mux, ReceiptServiceCreateReceiptProcedure, svc.CreateReceipt, opts)
	route(mux, ReceiptServiceGetReceiptProcedure, svc.GetReceipt, opts)
	route(mux, ReceiptServiceClaimItemProcedure, svc.ClaimItem, opts)
	route(mux, ReceiptServiceUnclaimItemProcedure, svc.UnclaimItem, opts)
	route(mux, ReceiptServiceGetReceiptSummaryProcedure, svc.GetReceiptSummary, opts)
	route(mux, ReceiptServiceCreateExpenseFromReceiptProcedure, svc.CreateExpenseFromReceipt, opts)
	return "/" + ReceiptServiceName + "/", mux
}

// ReceiptServiceClient calls the receipt service.
type ReceiptServiceClient struct {
	createReceipt            *connect.Client[CreateReceiptRequest, CreateReceiptResponse]
	getReceipt               *connect.Client[GetReceiptRequest, GetReceiptResponse]
	claimItem                *connect.Client[ClaimItemRequest, ClaimItemResponse]
	unclaimItem              *connect.Client[UnclaimItemRequest, UnclaimItemResponse]
	getReceiptSummary        *connect.Client[GetReceiptSummaryRequest, GetReceiptSummaryResponse]
	createExpenseFromReceipt *connect.Client[CreateExpenseFromReceiptRequest, CreateExpenseFromReceiptResponse]
}

// NewReceiptServiceClient builds a client for the service at baseURL.
func NewReceiptServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ReceiptServiceClient {
	opts = clientOptions(opts)
	return &ReceiptServiceClient{
		createReceipt:            unaryClient[CreateReceiptRequest, CreateReceiptResponse](httpClient, baseURL, ReceiptServiceCreateReceiptProcedure, opts),
		getReceipt:               unaryClient[GetReceiptRequest, GetReceiptResponse](httpClient, baseURL, ReceiptServiceGetReceiptProcedure, opts),
		claimItem:                unaryClient[ClaimItemRequest, ClaimItemResponse](httpClient, baseURL, ReceiptServiceClaimItemProcedure, opts),
		unclaimItem:              unaryClient[UnclaimItemRequest, UnclaimItemResponse](httpClient, baseURL, ReceiptServiceUnclaimItemProcedure, opts),
		getReceiptSummary:        unaryClient[GetReceiptSummaryRequest, GetReceiptSummaryResponse](httpClient, baseURL, ReceiptServiceGetReceiptSummaryProcedure, opts),
		createExpenseFromReceipt: unaryClient[CreateExpenseFromReceiptRequest, CreateExpenseFromReceiptResponse](httpClient, baseURL, ReceiptServiceCreateExpenseFromReceiptProcedure, opts),
	}
}

func (c *ReceiptServiceClient) CreateReceipt(ctx context.Context, req *connect.Request[CreateReceiptRequest]) (*connect.Response[CreateReceiptResponse], error) {
	return c.createReceipt.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) GetReceipt(ctx context.Context, req *connect.Request[GetReceiptRequest]) (*connect.Response[GetReceiptResponse], error) {
	return c.getReceipt.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) ClaimItem(ctx context.Context, req *connect.Request[ClaimItemRequest]) (*connect.Response[ClaimItemResponse], error) {
	return c.claimItem.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) UnclaimItem(ctx context.Context, req *connect.Request[UnclaimItemRequest]) (*connect.Response[UnclaimItemResponse], error) {
	return c.unclaimItem.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) GetReceiptSummary(ctx context.Context, req *connect.Request[GetReceiptSummaryRequest]) (*connect.Response[GetReceiptSummaryResponse], error) {
	return c.getReceiptSummary.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) CreateExpenseFromReceipt(ctx context.Context, req *connect.Request[CreateExpenseFromReceiptRequest]) (*connect.Response[CreateExpenseFromReceiptResponse], error) {
	return c.createExpenseFromReceipt.CallUnary(ctx, req)
}
