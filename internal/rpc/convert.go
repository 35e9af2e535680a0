package rpc

import (
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

// GroupFrom converts a stored group to its wire form.
func GroupFrom(g *models.Group) *Group {
	members := make([]Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = Member{ID: m.ID, Name: m.Name, UserID: m.UserID}
	}
	return &Group{
		ID:        g.ID,
		Name:      g.Name,
		Members:   members,
		CreatedAt: g.CreatedAt,
	}
}

func ExpenseFrom(e *models.Expense) *Expense {
	splits := make([]ExpenseSplit, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = ExpenseSplit{MemberID: s.MemberID, Amount: s.Amount}
	}
	return &Expense{
		ID:           e.ID,
		GroupID:      e.GroupID,
		Description:  e.Description,
		PayerID:      e.PayerID,
		Amount:       e.Amount,
		Splits:       splits,
		Currency:     e.Currency,
		ExchangeRate: e.ExchangeRate,
		ReceiptID:    e.ReceiptID,
		CreatedAt:    e.CreatedAt,
	}
}

func SettlementFrom(s *models.Settlement) *Settlement {
	return &Settlement{
		ID:           s.ID,
		GroupID:      s.GroupID,
		FromMemberID: s.FromMemberID,
		ToMemberID:   s.ToMemberID,
		Amount:       s.Amount,
		Method:       s.Method,
		Notes:        s.Notes,
		CreatedAt:    s.CreatedAt,
	}
}

func ItemClaimFrom(c models.ItemClaim) *ItemClaim {
	return &ItemClaim{
		ID:            c.ID,
		ReceiptItemID: c.ReceiptItemID,
		MemberID:      c.MemberID,
		ShareFraction: c.ShareFraction,
		SplitCount:    c.SplitCount,
		Source:        c.Source,
		ClaimedAt:     c.ClaimedAt,
	}
}

// ReceiptFrom converts a receipt, deriving each item's claim state.
func ReceiptFrom(r *models.Receipt) *Receipt {
	items := make([]*ReceiptItem, len(r.Items))
	for i, item := range r.Items {
		claims := make([]*ItemClaim, len(item.Claims))
		for j, c := range item.Claims {
			claims[j] = ItemClaimFrom(c)
		}
		items[i] = &ReceiptItem{
			ID:              item.ID,
			Description:     item.Description,
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
			ParentItemID:    item.ParentItemID,
			Claims:          claims,
			ClaimedFraction: calculator.ClaimedFraction(item, item.Claims),
			FullyClaimed:    calculator.IsItemFullyClaimed(item, item.Claims),
		}
	}
	return &Receipt{
		ID:          r.ID,
		GroupID:     r.GroupID,
		Merchant:    r.Merchant,
		Subtotal:    r.Subtotal,
		TaxAmount:   r.TaxAmount,
		TipAmount:   r.TipAmount,
		TotalAmount: r.TotalAmount,
		Items:       items,
		CreatedAt:   r.CreatedAt,
	}
}

func ReceiptSummaryFrom(s calculator.ReceiptSummary) *ReceiptSummary {
	totals := make([]*ReceiptMemberTotal, len(s.MemberTotals))
	for i, mt := range s.MemberTotals {
		lines := make([]*ClaimedLine, len(mt.Items))
		for j, l := range mt.Items {
			lines[j] = &ClaimedLine{
				ItemID:        l.ItemID,
				Description:   l.Description,
				Amount:        l.Amount,
				ShareFraction: l.ShareFraction,
			}
		}
		totals[i] = &ReceiptMemberTotal{
			MemberID:   mt.MemberID,
			MemberName: mt.MemberName,
			ItemsTotal: mt.ItemsTotal,
			TaxShare:   mt.TaxShare,
			TipShare:   mt.TipShare,
			GrandTotal: mt.GrandTotal,
			Items:      lines,
		}
	}
	return &ReceiptSummary{
		ReceiptID:        s.ReceiptID,
		ItemsTotal:       s.ItemsTotal,
		ClaimedSubtotal:  s.ClaimedSubtotal,
		UnclaimedAmount:  s.UnclaimedAmount,
		TaxAmount:        s.TaxAmount,
		TipAmount:        s.TipAmount,
		Total:            s.Total,
		Adjustment:       s.Adjustment,
		ItemCount:        s.ItemCount,
		ClaimedItemCount: s.ClaimedItemCount,
		AllItemsClaimed:  s.AllItemsClaimed,
		MemberTotals:     totals,
	}
}

func UserFrom(u *models.User) *User {
	return &User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// BalancesFrom builds a balance report from per-member lines and the
// suggested transfers.
func BalancesFrom(lines []calculator.MemberBalance, suggested []calculator.SuggestedSettlement) *GetBalancesResponse {
	resp := &GetBalancesResponse{
		Balances:             make([]*MemberBalance, len(lines)),
		SuggestedSettlements: make([]*SuggestedSettlement, len(suggested)),
	}
	for i, b := range lines {
		resp.Balances[i] = &MemberBalance{
			MemberID:   b.MemberID,
			MemberName: b.MemberName,
			NetBalance: b.NetBalance,
			TotalPaid:  b.TotalPaid,
			TotalOwed:  b.TotalOwed,
		}
	}
	for i, t := range suggested {
		resp.SuggestedSettlements[i] = &SuggestedSettlement{FromMemberID: t.From, ToMemberID: t.To, Amount: t.Amount}
	}
	return resp
}

// Model converts a wire member back to the domain type.
func (m Member) Model() models.Member {
	return models.Member{ID: m.ID, Name: m.Name, UserID: m.UserID}
}

func (e *Expense) Model() models.Expense {
	splits := make([]models.ExpenseSplit, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = models.ExpenseSplit{MemberID: s.MemberID, Amount: s.Amount}
	}
	return models.Expense{
		ID:           e.ID,
		GroupID:      e.GroupID,
		Description:  e.Description,
		PayerID:      e.PayerID,
		Amount:       e.Amount,
		Splits:       splits,
		Currency:     e.Currency,
		ExchangeRate: e.ExchangeRate,
		ReceiptID:    e.ReceiptID,
		CreatedAt:    e.CreatedAt,
	}
}

func (s *Settlement) Model() models.Settlement {
	return models.Settlement{
		ID:           s.ID,
		GroupID:      s.GroupID,
		FromMemberID: s.FromMemberID,
		ToMemberID:   s.ToMemberID,
		Amount:       s.Amount,
		Method:       s.Method,
		Notes:        s.Notes,
		CreatedAt:    s.CreatedAt,
	}
}

// Model converts a wire receipt back to the domain type, items in order
// and claims embedded. Claims missing an item ID take the enclosing item's.
func (r *Receipt) Model() models.Receipt {
	receipt := models.Receipt{
		ID:          r.ID,
		GroupID:     r.GroupID,
		Merchant:    r.Merchant,
		Subtotal:    r.Subtotal,
		TaxAmount:   r.TaxAmount,
		TipAmount:   r.TipAmount,
		TotalAmount: r.TotalAmount,
		CreatedAt:   r.CreatedAt,
	}
	for pos, item := range r.Items {
		if item == nil {
			continue
		}
		mi := models.ReceiptItem{
			ID:              item.ID,
			ReceiptID:       r.ID,
			Description:     item.Description,
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
			ParentItemID:    item.ParentItemID,
			Position:        pos,
		}
		for _, c := range item.Claims {
			if c == nil {
				continue
			}
			itemID := c.ReceiptItemID
			if itemID == "" {
				itemID = item.ID
			}
			mi.Claims = append(mi.Claims, models.ItemClaim{
				ID:            c.ID,
				ReceiptItemID: itemID,
				MemberID:      c.MemberID,
				ShareFraction: c.ShareFraction,
				SplitCount:    c.SplitCount,
				Source:        c.Source,
				ClaimedAt:     c.ClaimedAt,
			})
		}
		receipt.Items = append(receipt.Items, mi)
	}
	return receipt
}
