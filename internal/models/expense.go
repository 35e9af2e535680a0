package models

// Expense is a single shared cost.
// Splits are independently authoritative and need not sum to Amount.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is what the money was spent on (e.g., "Groceries").
	Description string

	// PayerID is the member who paid.
	PayerID string

	// Amount is the total paid, never negative.
	Amount float64

	// Splits describe how Amount is divided between members.
	Splits []ExpenseSplit

	// Currency is an ISO code carried through unchanged.
	Currency string

	// ExchangeRate is carried through unchanged; zero when unset.
	ExchangeRate float64

	// ReceiptID links the expense to the receipt it was created from, if any.
	ReceiptID string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// CreatedBy is the user ID who recorded the expense.
	CreatedBy string

	// DeletedAt is set when the expense is soft-deleted. Deleted expenses are
	// never returned by the store.
	DeletedAt int64
}

// ExpenseSplit is one member's portion of an expense.
type ExpenseSplit struct {
	MemberID string
	Amount   float64
}
