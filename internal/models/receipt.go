package models

// Receipt is a scanned receipt attached to a group.
type Receipt struct {
	ID       string
	GroupID  string
	Merchant string

	// Subtotal is the printed subtotal, informational only.
	Subtotal  float64
	TaxAmount float64
	TipAmount float64

	// TotalAmount is the printed total. Nil when the scan found none.
	TotalAmount *float64

	// Items are the receipt's lines, each carrying its claims.
	Items []ReceiptItem

	CreatedAt int64
	CreatedBy string
}

// ReceiptItem is one line on a receipt.
// Only items with no role flag set can be claimed.
type ReceiptItem struct {
	ID          string
	ReceiptID   string
	Description string
	Quantity    float64
	UnitPrice   float64
	TotalPrice  float64

	IsTax           bool
	IsTip           bool
	IsSubtotal      bool
	IsTotal         bool
	IsDiscount      bool
	IsServiceCharge bool
	IsModifier      bool
	IsLikelyShared  bool
	ParentItemID    string

	// Position keeps the scanned line order.
	Position int

	Claims []ItemClaim
}

// IsRegular reports whether the item has no role flag set.
func (i ReceiptItem) IsRegular() bool {
	return !(i.IsTax || i.IsTip || i.IsSubtotal || i.IsTotal ||
		i.IsDiscount || i.IsServiceCharge || i.IsModifier)
}

// ItemClaim is a member's stake in one receipt item.
type ItemClaim struct {
	ID            string
	ReceiptItemID string
	MemberID      string

	// ShareFraction is the portion of the item's price, in (0, 1].
	ShareFraction float64

	// SplitCount is how many ways the claimant meant to split the item.
	// Informational only.
	SplitCount int

	// Source records how the claim was made (e.g., "manual", "voice").
	Source string

	ClaimedAt int64
}
