package calculator

import (
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// ClaimedFraction sums the share fractions of all claims on item.
// Only claims whose ReceiptItemID matches item.ID are counted.
func ClaimedFraction(item models.ReceiptItem, claims []models.ItemClaim) float64 {
	var total float64
	for _, c := range claims {
		if c.ReceiptItemID == item.ID && c.ShareFraction > 0 {
			total += c.ShareFraction
		}
	}
	return total
}

// IsItemFullyClaimed reports whether the item's claims add up to the whole
// item, within money.FullClaimTolerance. Over-claimed items count as full.
func IsItemFullyClaimed(item models.ReceiptItem, claims []models.ItemClaim) bool {
	return ClaimedFraction(item, claims) >= 1-money.FullClaimTolerance
}

// RemainingFraction is the unclaimed portion of the item, never negative.
func RemainingFraction(item models.ReceiptItem, claims []models.ItemClaim) float64 {
	return max(0, 1-ClaimedFraction(item, claims))
}

// CanClaim reports whether memberID may place a new claim on item, and the
// item's remaining fraction. The member's own claims do not count toward the
// item being fully claimed, so a claimant can still resize their share.
func CanClaim(item models.ReceiptItem, claims []models.ItemClaim, memberID string) (bool, float64) {
	if !item.IsRegular() {
		return false, 0
	}

	var own, others float64
	for _, c := range claims {
		if c.ReceiptItemID != item.ID || c.ShareFraction <= 0 {
			continue
		}
		if c.MemberID == memberID {
			own += c.ShareFraction
		} else {
			others += c.ShareFraction
		}
	}
	if own >= 1-money.FullClaimTolerance {
		return false, 0
	}
	if others >= 1-money.FullClaimTolerance {
		return false, 0
	}
	return true, RemainingFraction(item, claims)
}
