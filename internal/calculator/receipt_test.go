package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

func ptr(v float64) *float64 { return &v }

func claim(itemID, memberID string, fraction float64) models.ItemClaim {
	return models.ItemClaim{ReceiptItemID: itemID, MemberID: memberID, ShareFraction: fraction, SplitCount: 1}
}

func TestSummarizeReceipt_PartialClaims(t *testing.T) {
	receipt := models.Receipt{ID: "r1", TaxAmount: 1, TipAmount: 2}
	items := []models.ReceiptItem{{ID: "pizza", Description: "Pizza", TotalPrice: 10}}
	claims := []models.ItemClaim{claim("pizza", "Alice", 0.5), claim("pizza", "Bob", 0.5)}

	got := SummarizeReceipt(receipt, items, claims, members("Alice", "Bob"))

	assert.Equal(t, 10.0, got.ClaimedSubtotal)
	require.Len(t, got.MemberTotals, 2)
	var sum float64
	for _, mt := range got.MemberTotals {
		assert.Equal(t, 5.0, mt.ItemsTotal, mt.MemberID)
		assert.Equal(t, 0.5, mt.TaxShare, mt.MemberID)
		assert.Equal(t, 1.0, mt.TipShare, mt.MemberID)
		assert.Equal(t, 6.5, mt.GrandTotal, mt.MemberID)
		require.Len(t, mt.Items, 1)
		assert.Equal(t, ClaimedLine{ItemID: "pizza", Description: "Pizza", Amount: 5, ShareFraction: 0.5}, mt.Items[0])
		sum += mt.GrandTotal
	}
	assert.InDelta(t, 13.0, sum, 0.001)
	assert.True(t, got.AllItemsClaimed)
	assert.Equal(t, 1, got.ClaimedItemCount)
}

func TestSummarizeReceipt_ProportionalTaxAndTip(t *testing.T) {
	receipt := models.Receipt{ID: "r1", TaxAmount: 3, TipAmount: 6, TotalAmount: ptr(39)}
	items := []models.ReceiptItem{
		{ID: "steak", Description: "Steak", TotalPrice: 20},
		{ID: "salad", Description: "Salad", TotalPrice: 10},
	}
	claims := []models.ItemClaim{claim("steak", "Alice", 1), claim("salad", "Bob", 1)}

	got := SummarizeReceipt(receipt, items, claims, members("Alice", "Bob", "Carol"))

	require.Len(t, got.MemberTotals, 2, "members without claims are not listed")
	alice, bob := got.MemberTotals[0], got.MemberTotals[1]
	assert.Equal(t, "Alice", alice.MemberID)
	assert.Equal(t, 2.0, alice.TaxShare)
	assert.Equal(t, 4.0, alice.TipShare)
	assert.Equal(t, 26.0, alice.GrandTotal)
	assert.Equal(t, "Bob", bob.MemberID)
	assert.Equal(t, 1.0, bob.TaxShare)
	assert.Equal(t, 2.0, bob.TipShare)
	assert.Equal(t, 13.0, bob.GrandTotal)
	assert.Equal(t, 39.0, got.Total)
}

func TestSummarizeReceipt_RoundingReconciliation(t *testing.T) {
	// Three equal thirds of $10 round to 3.33 each; the missing cent goes to
	// the first of the tied largest totals.
	receipt := models.Receipt{ID: "r1", TotalAmount: ptr(10)}
	items := []models.ReceiptItem{{ID: "cake", Description: "Cake", TotalPrice: 10}}
	third := 1.0 / 3.0
	claims := []models.ItemClaim{
		claim("cake", "A", third), claim("cake", "B", third), claim("cake", "C", third),
	}

	got := SummarizeReceipt(receipt, items, claims, members("A", "B", "C"))

	require.Len(t, got.MemberTotals, 3)
	assert.Equal(t, "A", got.MemberTotals[0].MemberID)
	assert.Equal(t, 3.34, got.MemberTotals[0].GrandTotal)
	assert.Equal(t, 3.33, got.MemberTotals[1].GrandTotal)
	assert.Equal(t, 3.33, got.MemberTotals[2].GrandTotal)
	assert.Equal(t, 0.01, got.Adjustment)
	assert.True(t, got.AllItemsClaimed, "thirds are within the full-claim tolerance")
}

func TestSummarizeReceipt_LargeDiscrepancyLeftAlone(t *testing.T) {
	receipt := models.Receipt{ID: "r1", TotalAmount: ptr(25)}
	items := []models.ReceiptItem{
		{ID: "a", Description: "A", TotalPrice: 10},
		{ID: "b", Description: "B", TotalPrice: 10},
	}
	claims := []models.ItemClaim{claim("a", "Alice", 1)}

	got := SummarizeReceipt(receipt, items, claims, members("Alice"))

	require.Len(t, got.MemberTotals, 1)
	assert.Equal(t, 10.0, got.MemberTotals[0].GrandTotal)
	assert.Equal(t, 10.0, got.UnclaimedAmount)
	assert.Zero(t, got.Adjustment)
	assert.False(t, got.AllItemsClaimed)
}

func TestSummarizeReceipt_ReconcilesToTotal(t *testing.T) {
	items := []models.ReceiptItem{
		{ID: "i1", Description: "Burger", TotalPrice: 12.99},
		{ID: "i2", Description: "Fries", TotalPrice: 4.49},
		{ID: "i3", Description: "Shake", TotalPrice: 5.75},
		{ID: "i4", Description: "Nachos", TotalPrice: 9.1},
	}
	tax, tip := 2.87, 6.47
	total := 12.99 + 4.49 + 5.75 + 9.1 + tax + tip
	receipt := models.Receipt{ID: "r1", TaxAmount: tax, TipAmount: tip, TotalAmount: ptr(total)}
	third := 1.0 / 3.0
	claims := []models.ItemClaim{
		claim("i1", "A", 1),
		claim("i2", "B", 0.5), claim("i2", "C", 0.5),
		claim("i3", "C", 1),
		claim("i4", "A", third), claim("i4", "B", third), claim("i4", "C", third),
	}

	got := SummarizeReceipt(receipt, items, claims, members("A", "B", "C"))

	var sum float64
	for _, mt := range got.MemberTotals {
		sum += mt.GrandTotal
	}
	assert.InDelta(t, total, sum, 0.01)
	assert.True(t, got.AllItemsClaimed)
	assert.Equal(t, 4, got.ClaimedItemCount)
}

func TestSummarizeReceipt_SkipsBadRows(t *testing.T) {
	receipt := models.Receipt{ID: "r1", TaxAmount: 1}
	items := []models.ReceiptItem{
		{ID: "food", Description: "Food", TotalPrice: 10},
		{ID: "tax", Description: "Tax", TotalPrice: 1, IsTax: true},
		{ID: "mod", Description: "Extra cheese", TotalPrice: 1, IsModifier: true, ParentItemID: "food"},
	}
	claims := []models.ItemClaim{
		claim("food", "Alice", 1),
		claim("tax", "Alice", 1),
		claim("mod", "Alice", 1),
		claim("missing", "Alice", 1),
		claim("food", "stranger", 1),
		claim("food", "Bob", 0),
		claim("food", "Bob", 1.5),
	}

	got := SummarizeReceipt(receipt, items, claims, members("Alice", "Bob"))

	require.Len(t, got.MemberTotals, 1)
	assert.Equal(t, "Alice", got.MemberTotals[0].MemberID)
	assert.Equal(t, 10.0, got.MemberTotals[0].ItemsTotal)
	assert.Equal(t, 11.0, got.MemberTotals[0].GrandTotal)
	assert.Equal(t, 1, got.ItemCount)
}

func TestSummarizeReceipt_NoRegularItems(t *testing.T) {
	receipt := models.Receipt{ID: "r1", TaxAmount: 1, TipAmount: 1, TotalAmount: ptr(2)}
	items := []models.ReceiptItem{
		{ID: "tax", TotalPrice: 1, IsTax: true},
		{ID: "tip", TotalPrice: 1, IsTip: true},
	}

	got := SummarizeReceipt(receipt, items, []models.ItemClaim{claim("tax", "A", 1)}, members("A"))

	assert.Empty(t, got.MemberTotals)
	assert.Equal(t, 0.0, got.ClaimedSubtotal)
	assert.False(t, got.AllItemsClaimed)
}

func TestSummarizeReceipt_ZeroPricedClaims(t *testing.T) {
	receipt := models.Receipt{ID: "r1", TaxAmount: 1, TipAmount: 1}
	items := []models.ReceiptItem{{ID: "water", Description: "Water", TotalPrice: 0}}

	got := SummarizeReceipt(receipt, items, []models.ItemClaim{claim("water", "A", 1)}, members("A"))

	require.Len(t, got.MemberTotals, 1)
	mt := got.MemberTotals[0]
	assert.Equal(t, 0.0, mt.TaxShare)
	assert.Equal(t, 0.0, mt.TipShare)
	assert.Equal(t, 0.0, mt.GrandTotal)
}
