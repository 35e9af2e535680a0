package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

// CreateExpense persists an expense and its splits.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	var rate interface{}
	if expense.ExchangeRate != 0 {
		rate = expense.ExchangeRate
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, description, payer_id, amount, currency, exchange_rate, receipt_id, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Description, expense.PayerID, expense.Amount,
		nullString(expense.Currency), rate, nullString(expense.ReceiptID), expense.CreatedAt, expense.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, split := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, member_id, amount, position) VALUES (?, ?, ?, ?)",
			expense.ID, split.MemberID, split.Amount, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const expenseColumns = `id, group_id, description, payer_id, amount, currency, exchange_rate, receipt_id, created_at, created_by`

func scanExpense(row interface{ Scan(...any) error }) (*models.Expense, error) {
	e := &models.Expense{}
	var currency, receiptID sql.NullString
	var rate sql.NullFloat64
	if err := row.Scan(&e.ID, &e.GroupID, &e.Description, &e.PayerID, &e.Amount,
		&currency, &rate, &receiptID, &e.CreatedAt, &e.CreatedBy); err != nil {
		return nil, err
	}
	e.Currency = currency.String
	e.ExchangeRate = rate.Float64
	e.ReceiptID = receiptID.String
	return e, nil
}

// GetExpense retrieves a live expense by ID, including its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	e, err := scanExpense(s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ? AND deleted_at IS NULL",
		expenseID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadSplits(ctx, []*models.Expense{e}); err != nil {
		return nil, err
	}
	return e, nil
}

// ListExpensesByGroup retrieves the live expenses of a group, oldest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+` FROM expenses
		 WHERE group_id = ? AND deleted_at IS NULL ORDER BY created_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}

	var expenses []*models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	if err := s.loadSplits(ctx, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// loadSplits fills in the splits of each expense.
func (s *SQLiteStore) loadSplits(ctx context.Context, expenses []*models.Expense) error {
	for _, e := range expenses {
		rows, err := s.db.QueryContext(ctx,
			"SELECT member_id, amount FROM expense_splits WHERE expense_id = ? ORDER BY position",
			e.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to get expense splits: %w", err)
		}
		for rows.Next() {
			var split models.ExpenseSplit
			if err := rows.Scan(&split.MemberID, &split.Amount); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan expense split: %w", err)
			}
			e.Splits = append(e.Splits, split)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate expense splits: %w", err)
		}
	}
	return nil
}

// DeleteExpense marks an expense as deleted. Deleted expenses no longer count
// toward balances.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now().Unix(), expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted expense: %w", err)
	}
	if n == 0 {
		return notFound("expense", expenseID)
	}
	return nil
}
