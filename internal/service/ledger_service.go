package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/rpc"
	"github.com/mmynk/splitledger/internal/storage"
)

// LedgerService implements the Connect LedgerService: groups, expenses,
// settlements and the balances derived from them.
type LedgerService struct {
	store   storage.Store
	metrics *metrics.Metrics
}

var _ rpc.LedgerServiceHandler = (*LedgerService)(nil)

// NewLedgerService creates a new LedgerService with the given storage backend.
func NewLedgerService(store storage.Store, m *metrics.Metrics) *LedgerService {
	return &LedgerService{store: store, metrics: m}
}

// CreateGroup creates a group. The caller is always linked as a member;
// when no requested member carries the caller's user ID, one is added first.
func (s *LedgerService) CreateGroup(ctx context.Context, req *connect.Request[rpc.CreateGroupRequest]) (*connect.Response[rpc.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("group name is required")
	}

	group := &models.Group{Name: name}
	linked := false
	for _, m := range req.Msg.Members {
		memberName := strings.TrimSpace(m.Name)
		if memberName == "" {
			return nil, invalidArgument("member name is required")
		}
		if m.UserID == userID {
			linked = true
		}
		group.Members = append(group.Members, models.Member{Name: memberName, UserID: m.UserID})
	}
	if !linked {
		self := models.Member{Name: callerName(ctx), UserID: userID}
		group.Members = append([]models.Member{self}, group.Members...)
	}

	// Save to storage (generates IDs and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, storeError(err)
	}

	slog.Info("Group created", "group_id", group.ID, "members", len(group.Members))
	return connect.NewResponse(&rpc.CreateGroupResponse{Group: rpc.GroupFrom(group)}), nil
}

// callerName derives a display name from the caller's email.
func callerName(ctx context.Context) string {
	email := middleware.GetEmail(ctx)
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	if email != "" {
		return email
	}
	return "Me"
}

// GetGroup retrieves a group by ID.
func (s *LedgerService) GetGroup(ctx context.Context, req *connect.Request[rpc.GetGroupRequest]) (*connect.Response[rpc.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, _, err := groupForCaller(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)
	return connect.NewResponse(&rpc.GetGroupResponse{Group: rpc.GroupFrom(group)}), nil
}

// ListGroups returns the groups the caller belongs to.
func (s *LedgerService) ListGroups(ctx context.Context, req *connect.Request[rpc.ListGroupsRequest]) (*connect.Response[rpc.ListGroupsResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	slog.Info("ListGroups request received", "user_id", userID)

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, storeError(err)
	}

	out := make([]*rpc.Group, len(groups))
	for i, g := range groups {
		out[i] = rpc.GroupFrom(g)
	}

	slog.Info("ListGroups successful", "count", len(groups))
	return connect.NewResponse(&rpc.ListGroupsResponse{Groups: out}), nil
}

// AddMember adds a member to a group. Members without a user ID are guests.
func (s *LedgerService) AddMember(ctx context.Context, req *connect.Request[rpc.AddMemberRequest]) (*connect.Response[rpc.AddMemberResponse], error) {
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "name", req.Msg.Name)

	group, _, err := groupForCaller(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("member name is required")
	}
	if req.Msg.UserID != "" {
		if _, exists := group.MemberForUser(req.Msg.UserID); exists {
			return nil, connect.NewError(connect.CodeAlreadyExists, errAlreadyMember)
		}
	}

	member := &models.Member{GroupID: group.ID, Name: name, UserID: req.Msg.UserID}
	if err := s.store.AddMember(ctx, member); err != nil {
		slog.Error("AddMember failed", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Member added", "group_id", group.ID, "member_id", member.ID, "guest", member.IsGuest())
	return connect.NewResponse(&rpc.AddMemberResponse{
		Member: &rpc.Member{ID: member.ID, Name: member.Name, UserID: member.UserID},
	}), nil
}

// CreateExpense records an expense. Without explicit splits the amount is
// divided evenly across all group members.
func (s *LedgerService) CreateExpense(ctx context.Context, req *connect.Request[rpc.CreateExpenseRequest]) (*connect.Response[rpc.CreateExpenseResponse], error) {
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"payer_id", req.Msg.PayerID,
		"amount", req.Msg.Amount,
		"splits_count", len(req.Msg.Splits),
	)

	group, _, err := groupForCaller(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if !validAmount(req.Msg.Amount) {
		return nil, invalidArgument("amount must be a non-negative number")
	}
	if !group.HasMember(req.Msg.PayerID) {
		return nil, invalidArgument("payer_id %q is not a member of the group", req.Msg.PayerID)
	}

	var splits []models.ExpenseSplit
	if len(req.Msg.Splits) == 0 {
		ids := make([]string, len(group.Members))
		for i, m := range group.Members {
			ids[i] = m.ID
		}
		splits = calculator.SplitEqually(req.Msg.Amount, ids)
	} else {
		seen := make(map[string]bool, len(req.Msg.Splits))
		for _, split := range req.Msg.Splits {
			if seen[split.MemberID] {
				return nil, invalidArgument("member %q appears in more than one split", split.MemberID)
			}
			seen[split.MemberID] = true
			if !group.HasMember(split.MemberID) {
				return nil, invalidArgument("split member %q is not a member of the group", split.MemberID)
			}
			if !validAmount(split.Amount) {
				return nil, invalidArgument("split amount for %q must be a non-negative number", split.MemberID)
			}
			splits = append(splits, models.ExpenseSplit{MemberID: split.MemberID, Amount: split.Amount})
		}
	}

	expense := &models.Expense{
		GroupID:      group.ID,
		Description:  strings.TrimSpace(req.Msg.Description),
		PayerID:      req.Msg.PayerID,
		Amount:       req.Msg.Amount,
		Splits:       splits,
		Currency:     req.Msg.Currency,
		ExchangeRate: req.Msg.ExchangeRate,
		CreatedBy:    middleware.GetUserID(ctx),
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}
	s.metrics.ExpensesCreated.Inc()

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", group.ID)
	return connect.NewResponse(&rpc.CreateExpenseResponse{Expense: rpc.ExpenseFrom(expense)}), nil
}

// DeleteExpense soft-deletes an expense. Balances stop counting it at once.
func (s *LedgerService) DeleteExpense(ctx context.Context, req *connect.Request[rpc.DeleteExpenseRequest]) (*connect.Response[rpc.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	if req.Msg.ExpenseID == "" {
		return nil, invalidArgument("expense_id is required")
	}
	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		slog.Warn("DeleteExpense: expense not found", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, storeError(err)
	}
	if _, _, err := groupForCaller(ctx, s.store, expense.GroupID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Expense deleted", "expense_id", expense.ID)
	return connect.NewResponse(&rpc.DeleteExpenseResponse{}), nil
}

// ListExpenses returns a group's live expenses, oldest first.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[rpc.ListExpensesRequest]) (*connect.Response[rpc.ListExpensesResponse], error) {
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID)

	group, _, err := groupForCaller(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}

	out := make([]*rpc.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = rpc.ExpenseFrom(e)
	}
	return connect.NewResponse(&rpc.ListExpensesResponse{Expenses: out}), nil
}

// RecordSettlement records a payment from one member to another.
func (s *LedgerService) RecordSettlement(ctx context.Context, req *connect.Request[rpc.RecordSettlementRequest]) (*connect.Response[rpc.RecordSettlementResponse], error) {
	slog.Info("RecordSettlement request received",
		"group_id", req.Msg.GroupID,
		"from", req.Msg.FromMemberID,
		"to", req.Msg.ToMemberID,
		"amount", req.Msg.Amount,
	)

	group, _, err := groupForCaller(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if !validAmount(req.Msg.Amount) || req.Msg.Amount == 0 {
		return nil, invalidArgument("amount must be positive")
	}
	if !group.HasMember(req.Msg.FromMemberID) || !group.HasMember(req.Msg.ToMemberID) {
		return nil, invalidArgument("both parties must be members of the group")
	}
	if req.Msg.FromMemberID == req.Msg.ToMemberID {
		return nil, invalidArgument("cannot settle with yourself")
	}

	settlement := &models.Settlement{
		GroupID:      group.ID,
		FromMemberID: req.Msg.FromMemberID,
		ToMemberID:   req.Msg.ToMemberID,
		Amount:       req.Msg.Amount,
		Method:       req.Msg.Method,
		Notes:        req.Msg.Notes,
		CreatedBy:    middleware.GetUserID(ctx),
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("RecordSettlement failed", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}
	s.metrics.SettlementsRecorded.Inc()

	slog.Info("Settlement recorded", "settlement_id", settlement.ID, "group_id", group.ID)
	return connect.NewResponse(&rpc.RecordSettlementResponse{Settlement: rpc.SettlementFrom(settlement)}), nil
}

// ListSettlements returns a group's settlements, oldest first.
func (s *LedgerService) ListSettlements(ctx context.Context, req *connect.Request[rpc.ListSettlementsRequest]) (*connect.Response[rpc.ListSettlementsResponse], error) {
	slog.Info("ListSettlements request received", "group_id", req.Msg.GroupID)

	group, _, err := groupForCaller(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	settlements, err := s.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("ListSettlements failed", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}

	out := make([]*rpc.Settlement, len(settlements))
	for i, st := range settlements {
		out[i] = rpc.SettlementFrom(st)
	}
	return connect.NewResponse(&rpc.ListSettlementsResponse{Settlements: out}), nil
}

// GetBalances recomputes every member's net balance from the group's
// expenses and settlements and suggests transfers that would zero them.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[rpc.GetBalancesRequest]) (*connect.Response[rpc.GetBalancesResponse], error) {
	slog.Info("GetBalances request received", "group_id", req.Msg.GroupID)

	group, _, err := groupForCaller(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("GetBalances: failed to list expenses", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("GetBalances: failed to list settlements", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}

	lines := calculator.SummarizeBalances(group.Members, derefExpenses(expenses), derefSettlements(settlements))
	net := make(map[string]float64, len(lines))
	for _, b := range lines {
		net[b.MemberID] = b.NetBalance
	}
	resp := rpc.BalancesFrom(lines, calculator.SimplifyDebts(net, group.Members))
	s.metrics.SuggestedSettlements.Observe(float64(len(resp.SuggestedSettlements)))

	slog.Info("GetBalances successful",
		"group_id", group.ID,
		"expenses", len(expenses),
		"settlements", len(settlements),
		"suggested", len(resp.SuggestedSettlements),
	)
	return connect.NewResponse(resp), nil
}
