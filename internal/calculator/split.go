package calculator

import (
	"math"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// SplitEqually divides amount between memberIDs in whole cents.
// Leftover cents go one each to the first members so the splits add up to
// the rounded amount exactly. Returns nil for an empty member list.
func SplitEqually(amount float64, memberIDs []string) []models.ExpenseSplit {
	if len(memberIDs) == 0 {
		return nil
	}

	cents := int64(math.Round(money.Round(amount) * 100))
	n := int64(len(memberIDs))
	share, rest := cents/n, cents%n

	splits := make([]models.ExpenseSplit, len(memberIDs))
	for i, id := range memberIDs {
		c := share
		if int64(i) < rest {
			c++
		}
		splits[i] = models.ExpenseSplit{MemberID: id, Amount: float64(c) / 100}
	}
	return splits
}
