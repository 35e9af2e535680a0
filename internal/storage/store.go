// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations the services depend on.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateGroup persists a group together with its initial members.
	// IDs and timestamps are assigned by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group and its members, in join order.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser returns every group the user is linked into.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// AddMember adds a member to an existing group.
	AddMember(ctx context.Context, member *models.Member) error

	// CreateExpense persists an expense and its splits.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves a live (not deleted) expense.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns the group's live expenses, oldest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// DeleteExpense soft-deletes an expense.
	DeleteExpense(ctx context.Context, expenseID string) error

	// CreateSettlement records a payment between two members.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlementsByGroup returns the group's settlements, oldest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// CreateReceipt persists a receipt and its items.
	CreateReceipt(ctx context.Context, receipt *models.Receipt) error

	// GetReceipt retrieves a receipt with its items and their claims.
	GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error)

	// GetReceiptItem retrieves one item with its claims.
	GetReceiptItem(ctx context.Context, itemID string) (*models.ReceiptItem, error)

	// UpsertClaim creates or replaces the claim for (item, member).
	UpsertClaim(ctx context.Context, claim *models.ItemClaim) error

	// DeleteClaim removes a member's claim on an item.
	DeleteClaim(ctx context.Context, itemID, memberID string) error

	// Close releases any resources held by the store.
	Close() error
}
