package calculator

import (
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// SuggestedSettlement is a transfer that would reduce outstanding balances.
type SuggestedSettlement struct {
	From   string // Member who pays
	To     string // Member who receives
	Amount float64
}

type party struct {
	id        string
	remaining float64 // always positive
}

// SimplifyDebts reduces a balance map to a list of transfers that zero it.
//
// Greedy matching: repeatedly settle the largest creditor against the largest
// debtor for the smaller of the two amounts. Each step zeroes at least one
// party, so n participants produce at most n-1 transfers. Ties go to the
// member listed first.
//
// Only members present in both balances and members take part. Balances
// within money.Tolerance of zero are ignored.
func SimplifyDebts(balances map[string]float64, members []models.Member) []SuggestedSettlement {
	var creditors, debtors []*party
	for _, m := range members {
		bal, ok := balances[m.ID]
		if !ok {
			continue
		}
		switch {
		case bal > money.Tolerance:
			creditors = append(creditors, &party{id: m.ID, remaining: bal})
		case bal < -money.Tolerance:
			debtors = append(debtors, &party{id: m.ID, remaining: -bal})
		}
	}

	var settlements []SuggestedSettlement
	for len(creditors) > 0 && len(debtors) > 0 {
		ci := largest(creditors)
		di := largest(debtors)
		creditor, debtor := creditors[ci], debtors[di]

		amount := min(creditor.remaining, debtor.remaining)
		settlements = append(settlements, SuggestedSettlement{
			From:   debtor.id,
			To:     creditor.id,
			Amount: money.Round(amount),
		})

		creditor.remaining -= amount
		debtor.remaining -= amount
		if money.IsZero(creditor.remaining) {
			creditors = remove(creditors, ci)
		}
		if money.IsZero(debtor.remaining) {
			debtors = remove(debtors, di)
		}
	}

	return settlements
}

// largest returns the index of the party with the biggest remaining amount,
// preferring the earliest on ties.
func largest(parties []*party) int {
	best := 0
	for i := 1; i < len(parties); i++ {
		if parties[i].remaining > parties[best].remaining {
			best = i
		}
	}
	return best
}

func remove(parties []*party, i int) []*party {
	return append(parties[:i], parties[i+1:]...)
}
