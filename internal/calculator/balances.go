// Package calculator implements the balance and settlement engine: group
// balances, debt simplification and receipt claim allocation. Every function
// is a pure computation over caller-supplied snapshots.
package calculator

import "github.com/mmynk/splitledger/internal/models"

// CalculateBalances computes each member's net balance.
// Positive means the group owes the member; negative means the member owes the group.
//
// Algorithm:
//   - Every member starts at zero
//   - For each expense: payer +amount, each split member -split
//   - For each settlement: from +amount, to -amount
//
// IDs not in members are never added to the result. Their contributions are
// dropped rather than treated as errors.
func CalculateBalances(members []models.Member, expenses []models.Expense, settlements []models.Settlement) map[string]float64 {
	balances := make(map[string]float64, len(members))
	for _, m := range members {
		balances[m.ID] = 0
	}

	apply := func(memberID string, delta float64) {
		if _, known := balances[memberID]; known {
			balances[memberID] += delta
		}
	}

	for _, e := range expenses {
		apply(e.PayerID, e.Amount)
		for _, split := range e.Splits {
			apply(split.MemberID, -split.Amount)
		}
	}

	for _, s := range settlements {
		apply(s.FromMemberID, s.Amount)
		apply(s.ToMemberID, -s.Amount)
	}

	return balances
}

// MemberBalance is one member's line in a group balance report.
type MemberBalance struct {
	MemberID   string
	MemberName string
	NetBalance float64 // Positive = owed money, Negative = owes money
	TotalPaid  float64 // Expenses paid plus settlements sent
	TotalOwed  float64 // Expense splits plus settlements received
}

// SummarizeBalances builds per-member balance lines in member order.
// NetBalance always equals CalculateBalances for the same inputs.
func SummarizeBalances(members []models.Member, expenses []models.Expense, settlements []models.Settlement) []MemberBalance {
	net := CalculateBalances(members, expenses, settlements)

	paid := make(map[string]float64, len(members))
	owed := make(map[string]float64, len(members))
	for _, e := range expenses {
		paid[e.PayerID] += e.Amount
		for _, split := range e.Splits {
			owed[split.MemberID] += split.Amount
		}
	}
	for _, s := range settlements {
		paid[s.FromMemberID] += s.Amount
		owed[s.ToMemberID] += s.Amount
	}

	result := make([]MemberBalance, 0, len(members))
	for _, m := range members {
		result = append(result, MemberBalance{
			MemberID:   m.ID,
			MemberName: m.Name,
			NetBalance: net[m.ID],
			TotalPaid:  paid[m.ID],
			TotalOwed:  owed[m.ID],
		})
	}
	return result
}
