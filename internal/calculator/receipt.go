package calculator

import (
	"math"
	"slices"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// ClaimedLine is one claimed item as it appears on a member's share.
type ClaimedLine struct {
	ItemID        string
	Description   string
	Amount        float64 // This member's share of the item
	ShareFraction float64
}

// ReceiptMemberTotal is one member's share of a receipt.
type ReceiptMemberTotal struct {
	MemberID   string
	MemberName string
	ItemsTotal float64
	TaxShare   float64
	TipShare   float64
	GrandTotal float64
	Items      []ClaimedLine
}

// ReceiptSummary is the per-member breakdown of a receipt.
type ReceiptSummary struct {
	ReceiptID string

	// ItemsTotal is the price of all regular items, claimed or not.
	ItemsTotal float64

	// ClaimedSubtotal is the sum of every member's ItemsTotal.
	ClaimedSubtotal float64

	// UnclaimedAmount is ItemsTotal minus ClaimedSubtotal, never negative.
	UnclaimedAmount float64

	TaxAmount float64
	TipAmount float64

	// Total is the figure member totals reconcile against: the printed
	// total when present, otherwise ClaimedSubtotal + tax + tip.
	Total float64

	// Adjustment is the rounding difference added to the largest member
	// total, zero when none was needed or the gap was too large.
	Adjustment float64

	ItemCount        int
	ClaimedItemCount int
	AllItemsClaimed  bool

	// MemberTotals is sorted by GrandTotal, largest first.
	MemberTotals []ReceiptMemberTotal
}

// SummarizeReceipt allocates a receipt's regular items, tax and tip to the
// members who claimed them.
//
// Algorithm:
//   - Each claim on a regular item is worth round(total_price × share_fraction)
//   - Tax and tip are split in proportion to each member's items total
//   - grand_total = round(items + tax share + tip share)
//   - A discrepancy against the receipt total with 0 < |d| < 0.10 is added
//     to the largest grand total so the shares add up exactly
//
// Claims on unknown or role-flagged items, claims by unknown members and claims
// with a fraction outside (0, 1] are skipped.
func SummarizeReceipt(receipt models.Receipt, items []models.ReceiptItem, claims []models.ItemClaim, members []models.Member) ReceiptSummary {
	summary := ReceiptSummary{
		ReceiptID: receipt.ID,
		TaxAmount: receipt.TaxAmount,
		TipAmount: receipt.TipAmount,
	}

	regular := make(map[string]models.ReceiptItem)
	var itemPrices []float64
	for _, item := range items {
		if !item.IsRegular() {
			continue
		}
		regular[item.ID] = item
		itemPrices = append(itemPrices, item.TotalPrice)
	}
	summary.ItemCount = len(regular)
	summary.ItemsTotal = money.Sum(itemPrices...)

	order := make(map[string]int, len(members))
	for i, m := range members {
		if _, dup := order[m.ID]; !dup {
			order[m.ID] = i
		}
	}

	totals := make(map[string]*ReceiptMemberTotal)
	claimedItems := make(map[string]bool)
	for _, c := range claims {
		item, ok := regular[c.ReceiptItemID]
		if !ok {
			continue
		}
		idx, ok := order[c.MemberID]
		if !ok {
			continue
		}
		if !(c.ShareFraction > 0 && c.ShareFraction <= 1) {
			continue
		}

		mt, ok := totals[c.MemberID]
		if !ok {
			mt = &ReceiptMemberTotal{MemberID: c.MemberID, MemberName: members[idx].Name}
			totals[c.MemberID] = mt
		}

		amount := money.Round(item.TotalPrice * c.ShareFraction)
		mt.ItemsTotal = money.Round(mt.ItemsTotal + amount)
		mt.Items = append(mt.Items, ClaimedLine{
			ItemID:        item.ID,
			Description:   item.Description,
			Amount:        amount,
			ShareFraction: c.ShareFraction,
		})
		claimedItems[item.ID] = true
	}
	summary.ClaimedItemCount = len(claimedItems)

	memberTotals := make([]ReceiptMemberTotal, 0, len(totals))
	for _, m := range members {
		if mt, ok := totals[m.ID]; ok {
			memberTotals = append(memberTotals, *mt)
			delete(totals, m.ID)
		}
	}

	subtotals := make([]float64, len(memberTotals))
	for i, mt := range memberTotals {
		subtotals[i] = mt.ItemsTotal
	}
	summary.ClaimedSubtotal = money.Sum(subtotals...)
	summary.UnclaimedAmount = max(0, money.Round(summary.ItemsTotal-summary.ClaimedSubtotal))

	for i := range memberTotals {
		mt := &memberTotals[i]
		if summary.ClaimedSubtotal > 0 {
			proportion := mt.ItemsTotal / summary.ClaimedSubtotal
			mt.TaxShare = money.Round(receipt.TaxAmount * proportion)
			mt.TipShare = money.Round(receipt.TipAmount * proportion)
		}
		mt.GrandTotal = money.Round(mt.ItemsTotal + mt.TaxShare + mt.TipShare)
	}

	slices.SortStableFunc(memberTotals, func(a, b ReceiptMemberTotal) int {
		switch {
		case a.GrandTotal > b.GrandTotal:
			return -1
		case a.GrandTotal < b.GrandTotal:
			return 1
		}
		return 0
	})

	if receipt.TotalAmount != nil {
		summary.Total = money.Round(*receipt.TotalAmount)
	} else {
		summary.Total = money.Sum(summary.ClaimedSubtotal, receipt.TaxAmount, receipt.TipAmount)
	}
	summary.Adjustment = reconcile(memberTotals, summary.Total)

	summary.MemberTotals = memberTotals
	summary.AllItemsClaimed = summary.ItemCount > 0 && allClaimed(regular, claims)
	return summary
}

// reconcile pushes a small rounding discrepancy onto the first (largest)
// member total and returns it. Larger discrepancies are left alone; they
// point at bad data.
func reconcile(memberTotals []ReceiptMemberTotal, expected float64) float64 {
	if len(memberTotals) == 0 {
		return 0
	}
	grand := make([]float64, len(memberTotals))
	for i, mt := range memberTotals {
		grand[i] = mt.GrandTotal
	}
	diff := money.Round(expected - money.Sum(grand...))
	if diff != 0 && math.Abs(diff) < money.ReconcileThreshold {
		memberTotals[0].GrandTotal = money.Round(memberTotals[0].GrandTotal + diff)
		return diff
	}
	return 0
}

func allClaimed(regular map[string]models.ReceiptItem, claims []models.ItemClaim) bool {
	for _, item := range regular {
		if !IsItemFullyClaimed(item, claims) {
			return false
		}
	}
	return true
}
