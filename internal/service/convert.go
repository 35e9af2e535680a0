package service

import "github.com/mmynk/splitledger/internal/models"

// flattenClaims collects the claims embedded in a receipt's items.
func flattenClaims(items []models.ReceiptItem) []models.ItemClaim {
	var claims []models.ItemClaim
	for _, item := range items {
		claims = append(claims, item.Claims...)
	}
	return claims
}

// derefExpenses and derefSettlements adapt store results to the calculator.
func derefExpenses(expenses []*models.Expense) []models.Expense {
	out := make([]models.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = *e
	}
	return out
}

func derefSettlements(settlements []*models.Settlement) []models.Settlement {
	out := make([]models.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = *s
	}
	return out
}
