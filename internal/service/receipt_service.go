package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/rpc"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	errNotClaimable = errors.New("item cannot be claimed")
	errNoClaims     = errors.New("receipt has no claims to turn into an expense")
)

// ReceiptService implements the Connect ReceiptService: scanned receipts,
// item claims and the per-member totals derived from them.
type ReceiptService struct {
	store   storage.Store
	metrics *metrics.Metrics
}

var _ rpc.ReceiptServiceHandler = (*ReceiptService)(nil)

// NewReceiptService creates a new ReceiptService with the given storage backend.
func NewReceiptService(store storage.Store, m *metrics.Metrics) *ReceiptService {
	return &ReceiptService{store: store, metrics: m}
}

// CreateReceipt stores a receipt and its lines.
func (s *ReceiptService) CreateReceipt(ctx context.Context, req *connect.Request[rpc.CreateReceiptRequest]) (*connect.Response[rpc.CreateReceiptResponse], error) {
	slog.Info("CreateReceipt request received",
		"group_id", req.Msg.GroupID,
		"merchant", req.Msg.Merchant,
		"items_count", len(req.Msg.Items),
	)

	group, _, err := groupForCaller(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	for _, v := range []float64{req.Msg.Subtotal, req.Msg.TaxAmount, req.Msg.TipAmount} {
		if !validAmount(v) {
			return nil, invalidArgument("subtotal, tax and tip must be non-negative numbers")
		}
	}
	if req.Msg.TotalAmount != nil && !validAmount(*req.Msg.TotalAmount) {
		return nil, invalidArgument("total_amount must be a non-negative number")
	}

	// IDs are assigned up front so modifiers can point at their parent line.
	ids := make([]string, len(req.Msg.Items))
	for i := range ids {
		ids[i] = uuid.New().String()
	}

	receipt := &models.Receipt{
		GroupID:     group.ID,
		Merchant:    strings.TrimSpace(req.Msg.Merchant),
		Subtotal:    req.Msg.Subtotal,
		TaxAmount:   req.Msg.TaxAmount,
		TipAmount:   req.Msg.TipAmount,
		TotalAmount: req.Msg.TotalAmount,
		CreatedBy:   middleware.GetUserID(ctx),
	}
	for i, item := range req.Msg.Items {
		if item == nil {
			return nil, invalidArgument("item %d is empty", i)
		}
		if math.IsNaN(item.TotalPrice) || math.IsInf(item.TotalPrice, 0) {
			return nil, invalidArgument("item %d has an invalid price", i)
		}
		var parent string
		if item.ParentIndex != nil && *item.ParentIndex >= 0 {
			if *item.ParentIndex >= len(ids) || *item.ParentIndex == i {
				return nil, invalidArgument("item %d has an invalid parent_index", i)
			}
			parent = ids[*item.ParentIndex]
		}
		receipt.Items = append(receipt.Items, models.ReceiptItem{
			ID:              ids[i],
			Description:     strings.TrimSpace(item.Description),
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TotalPrice:      item.TotalPrice,
			IsTax:           item.IsTax,
			IsTip:           item.IsTip,
			IsSubtotal:      item.IsSubtotal,
			IsTotal:         item.IsTotal,
			IsDiscount:      item.IsDiscount,
			IsServiceCharge: item.IsServiceCharge,
			IsModifier:      item.IsModifier,
			IsLikelyShared:  item.IsLikelyShared,
			ParentItemID:    parent,
		})
	}

	if err := s.store.CreateReceipt(ctx, receipt); err != nil {
		slog.Error("CreateReceipt failed", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Receipt created", "receipt_id", receipt.ID, "items", len(receipt.Items))
	return connect.NewResponse(&rpc.CreateReceiptResponse{Receipt: rpc.ReceiptFrom(receipt)}), nil
}

// receiptForCaller loads a receipt together with its group, checking that
// the caller belongs to the group.
func (s *ReceiptService) receiptForCaller(ctx context.Context, receiptID string) (*models.Receipt, *models.Group, error) {
	if receiptID == "" {
		return nil, nil, invalidArgument("receipt_id is required")
	}
	receipt, err := s.store.GetReceipt(ctx, receiptID)
	if err != nil {
		slog.Warn("Failed to load receipt", "receipt_id", receiptID, "error", err)
		return nil, nil, storeError(err)
	}
	group, _, err := groupForCaller(ctx, s.store, receipt.GroupID)
	if err != nil {
		return nil, nil, err
	}
	return receipt, group, nil
}

// GetReceipt returns a receipt with its items and their claims.
func (s *ReceiptService) GetReceipt(ctx context.Context, req *connect.Request[rpc.GetReceiptRequest]) (*connect.Response[rpc.GetReceiptResponse], error) {
	slog.Info("GetReceipt request received", "receipt_id", req.Msg.ReceiptID)

	receipt, _, err := s.receiptForCaller(ctx, req.Msg.ReceiptID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&rpc.GetReceiptResponse{Receipt: rpc.ReceiptFrom(receipt)}), nil
}

// ClaimItem places or replaces a member's claim on an item.
//
// The fraction defaults to, and is capped at, whatever the other members'
// claims leave free. The new claim replaces the member's existing one.
func (s *ReceiptService) ClaimItem(ctx context.Context, req *connect.Request[rpc.ClaimItemRequest]) (*connect.Response[rpc.ClaimItemResponse], error) {
	slog.Info("ClaimItem request received",
		"item_id", req.Msg.ReceiptItemID,
		"member_id", req.Msg.MemberID,
		"share_fraction", req.Msg.ShareFraction,
	)

	if req.Msg.ReceiptItemID == "" {
		return nil, invalidArgument("receipt_item_id is required")
	}
	fraction := req.Msg.ShareFraction
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return nil, invalidArgument("share_fraction must be between 0 and 1")
	}

	item, err := s.store.GetReceiptItem(ctx, req.Msg.ReceiptItemID)
	if err != nil {
		slog.Warn("ClaimItem: item not found", "item_id", req.Msg.ReceiptItemID, "error", err)
		return nil, storeError(err)
	}
	receipt, group, err := s.receiptForCaller(ctx, item.ReceiptID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(req.Msg.MemberID) {
		return nil, invalidArgument("member %q is not in the receipt's group", req.Msg.MemberID)
	}

	if ok, _ := calculator.CanClaim(*item, item.Claims, req.Msg.MemberID); !ok {
		slog.Warn("ClaimItem rejected", "item_id", item.ID, "member_id", req.Msg.MemberID)
		return nil, connect.NewError(connect.CodeFailedPrecondition,
			fmt.Errorf("%w: %q is fully claimed or not a regular line", errNotClaimable, item.Description))
	}
	var others []models.ItemClaim
	for _, c := range item.Claims {
		if c.MemberID != req.Msg.MemberID {
			others = append(others, c)
		}
	}
	available := calculator.RemainingFraction(*item, others)
	if fraction == 0 || fraction > available {
		fraction = available
	}

	claim := &models.ItemClaim{
		ReceiptItemID: item.ID,
		MemberID:      req.Msg.MemberID,
		ShareFraction: fraction,
		SplitCount:    req.Msg.SplitCount,
		Source:        req.Msg.Source,
	}
	if claim.Source == "" {
		claim.Source = "manual"
	}
	if err := s.store.UpsertClaim(ctx, claim); err != nil {
		slog.Error("ClaimItem failed", "item_id", item.ID, "error", err)
		return nil, storeError(err)
	}
	s.metrics.ItemClaims.WithLabelValues("claim").Inc()

	slog.Info("Item claimed",
		"receipt_id", receipt.ID,
		"item_id", item.ID,
		"member_id", claim.MemberID,
		"share_fraction", claim.ShareFraction,
	)
	return connect.NewResponse(&rpc.ClaimItemResponse{Claim: rpc.ItemClaimFrom(*claim)}), nil
}

// UnclaimItem removes a member's claim on an item.
func (s *ReceiptService) UnclaimItem(ctx context.Context, req *connect.Request[rpc.UnclaimItemRequest]) (*connect.Response[rpc.UnclaimItemResponse], error) {
	slog.Info("UnclaimItem request received", "item_id", req.Msg.ReceiptItemID, "member_id", req.Msg.MemberID)

	if req.Msg.ReceiptItemID == "" || req.Msg.MemberID == "" {
		return nil, invalidArgument("receipt_item_id and member_id are required")
	}
	item, err := s.store.GetReceiptItem(ctx, req.Msg.ReceiptItemID)
	if err != nil {
		return nil, storeError(err)
	}
	if _, _, err := s.receiptForCaller(ctx, item.ReceiptID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteClaim(ctx, item.ID, req.Msg.MemberID); err != nil {
		slog.Warn("UnclaimItem failed", "item_id", item.ID, "member_id", req.Msg.MemberID, "error", err)
		return nil, storeError(err)
	}
	s.metrics.ItemClaims.WithLabelValues("unclaim").Inc()

	return connect.NewResponse(&rpc.UnclaimItemResponse{}), nil
}

func (s *ReceiptService) summarize(receipt *models.Receipt, group *models.Group) calculator.ReceiptSummary {
	summary := calculator.SummarizeReceipt(*receipt, receipt.Items, flattenClaims(receipt.Items), group.Members)
	if summary.Adjustment != 0 {
		s.metrics.ReconciledReceipts.Inc()
	}
	return summary
}

// GetReceiptSummary computes each claimant's share of the receipt.
func (s *ReceiptService) GetReceiptSummary(ctx context.Context, req *connect.Request[rpc.GetReceiptSummaryRequest]) (*connect.Response[rpc.GetReceiptSummaryResponse], error) {
	slog.Info("GetReceiptSummary request received", "receipt_id", req.Msg.ReceiptID)

	receipt, group, err := s.receiptForCaller(ctx, req.Msg.ReceiptID)
	if err != nil {
		return nil, err
	}

	summary := s.summarize(receipt, group)

	slog.Info("GetReceiptSummary successful",
		"receipt_id", receipt.ID,
		"claimants", len(summary.MemberTotals),
		"all_claimed", summary.AllItemsClaimed,
	)
	return connect.NewResponse(&rpc.GetReceiptSummaryResponse{Summary: rpc.ReceiptSummaryFrom(summary)}), nil
}

// CreateExpenseFromReceipt records an expense paid by payer_id whose splits
// are the claimants' grand totals. The expense amount is the sum of those
// totals, so unclaimed lines are not charged to anyone.
func (s *ReceiptService) CreateExpenseFromReceipt(ctx context.Context, req *connect.Request[rpc.CreateExpenseFromReceiptRequest]) (*connect.Response[rpc.CreateExpenseFromReceiptResponse], error) {
	slog.Info("CreateExpenseFromReceipt request received", "receipt_id", req.Msg.ReceiptID, "payer_id", req.Msg.PayerID)

	receipt, group, err := s.receiptForCaller(ctx, req.Msg.ReceiptID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(req.Msg.PayerID) {
		return nil, invalidArgument("payer_id %q is not a member of the group", req.Msg.PayerID)
	}

	summary := s.summarize(receipt, group)
	if len(summary.MemberTotals) == 0 {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errNoClaims)
	}

	splits := make([]models.ExpenseSplit, len(summary.MemberTotals))
	totals := make([]float64, len(summary.MemberTotals))
	for i, mt := range summary.MemberTotals {
		splits[i] = models.ExpenseSplit{MemberID: mt.MemberID, Amount: mt.GrandTotal}
		totals[i] = mt.GrandTotal
	}

	description := receipt.Merchant
	if description == "" {
		description = "Receipt"
	}
	expense := &models.Expense{
		GroupID:     group.ID,
		Description: description,
		PayerID:     req.Msg.PayerID,
		Amount:      money.Sum(totals...),
		Splits:      splits,
		ReceiptID:   receipt.ID,
		CreatedBy:   middleware.GetUserID(ctx),
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpenseFromReceipt failed", "receipt_id", receipt.ID, "error", err)
		return nil, storeError(err)
	}
	s.metrics.ExpensesCreated.Inc()

	slog.Info("Expense created from receipt", "expense_id", expense.ID, "receipt_id", receipt.ID, "amount", expense.Amount)
	return connect.NewResponse(&rpc.CreateExpenseFromReceiptResponse{Expense: rpc.ExpenseFrom(expense)}), nil
}
