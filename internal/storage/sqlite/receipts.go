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

// CreateReceipt persists a receipt and its items. Claims on the items are
// not written here; use UpsertClaim.
func (s *SQLiteStore) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if receipt.CreatedAt == 0 {
		receipt.CreatedAt = time.Now().Unix()
	}

	var total interface{}
	if receipt.TotalAmount != nil {
		total = *receipt.TotalAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO receipts (id, group_id, merchant, subtotal, tax_amount, tip_amount, total_amount, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		receipt.ID, receipt.GroupID, receipt.Merchant, receipt.Subtotal,
		receipt.TaxAmount, receipt.TipAmount, total, receipt.CreatedAt, receipt.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	for i := range receipt.Items {
		item := &receipt.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.ReceiptID = receipt.ID
		item.Position = i

		_, err = tx.ExecContext(ctx,
			`INSERT INTO receipt_items (id, receipt_id, description, quantity, unit_price, total_price,
			   is_tax, is_tip, is_subtotal, is_total, is_discount, is_service_charge, is_modifier,
			   is_likely_shared, parent_item_id, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.ReceiptID, item.Description, item.Quantity, item.UnitPrice, item.TotalPrice,
			item.IsTax, item.IsTip, item.IsSubtotal, item.IsTotal, item.IsDiscount, item.IsServiceCharge,
			item.IsModifier, item.IsLikelyShared, nullString(item.ParentItemID), item.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to insert receipt item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetReceipt retrieves a receipt with its items in scanned order, each
// carrying its claims.
func (s *SQLiteStore) GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error) {
	receipt := &models.Receipt{}
	var total sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, merchant, subtotal, tax_amount, tip_amount, total_amount, created_at, created_by
		 FROM receipts WHERE id = ?`,
		receiptID,
	).Scan(&receipt.ID, &receipt.GroupID, &receipt.Merchant, &receipt.Subtotal,
		&receipt.TaxAmount, &receipt.TipAmount, &total, &receipt.CreatedAt, &receipt.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("receipt", receiptID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	if total.Valid {
		receipt.TotalAmount = &total.Float64
	}

	items, err := s.queryItems(ctx, "WHERE receipt_id = ? ORDER BY position", receiptID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Claims, err = s.listClaims(ctx, items[i].ID); err != nil {
			return nil, err
		}
	}
	receipt.Items = items
	return receipt, nil
}

// GetReceiptItem retrieves a single receipt item with its claims.
func (s *SQLiteStore) GetReceiptItem(ctx context.Context, itemID string) (*models.ReceiptItem, error) {
	items, err := s.queryItems(ctx, "WHERE id = ?", itemID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, notFound("receipt item", itemID)
	}
	item := &items[0]
	if item.Claims, err = s.listClaims(ctx, item.ID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *SQLiteStore) queryItems(ctx context.Context, where string, args ...any) ([]models.ReceiptItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, receipt_id, description, quantity, unit_price, total_price,
		   is_tax, is_tip, is_subtotal, is_total, is_discount, is_service_charge, is_modifier,
		   is_likely_shared, parent_item_id, position
		 FROM receipt_items `+where,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt items: %w", err)
	}
	defer rows.Close()

	var items []models.ReceiptItem
	for rows.Next() {
		var item models.ReceiptItem
		var parent sql.NullString
		if err := rows.Scan(&item.ID, &item.ReceiptID, &item.Description, &item.Quantity,
			&item.UnitPrice, &item.TotalPrice, &item.IsTax, &item.IsTip, &item.IsSubtotal,
			&item.IsTotal, &item.IsDiscount, &item.IsServiceCharge, &item.IsModifier,
			&item.IsLikelyShared, &parent, &item.Position); err != nil {
			return nil, fmt.Errorf("failed to scan receipt item: %w", err)
		}
		item.ParentItemID = parent.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipt items: %w", err)
	}
	return items, nil
}

func (s *SQLiteStore) listClaims(ctx context.Context, itemID string) ([]models.ItemClaim, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, receipt_item_id, member_id, share_fraction, split_count, source, claimed_at
		 FROM item_claims WHERE receipt_item_id = ? ORDER BY claimed_at, rowid`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item claims: %w", err)
	}
	defer rows.Close()

	var claims []models.ItemClaim
	for rows.Next() {
		var c models.ItemClaim
		if err := rows.Scan(&c.ID, &c.ReceiptItemID, &c.MemberID, &c.ShareFraction,
			&c.SplitCount, &c.Source, &c.ClaimedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item claim: %w", err)
		}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item claims: %w", err)
	}
	return claims, nil
}

// UpsertClaim inserts a claim, replacing any existing claim by the same
// member on the same item. The unique (item, member) constraint is what
// keeps concurrent claimers from duplicating a claim.
func (s *SQLiteStore) UpsertClaim(ctx context.Context, claim *models.ItemClaim) error {
	if claim.ID == "" {
		claim.ID = uuid.New().String()
	}
	if claim.ClaimedAt == 0 {
		claim.ClaimedAt = time.Now().Unix()
	}
	if claim.SplitCount == 0 {
		claim.SplitCount = 1
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO item_claims (id, receipt_item_id, member_id, share_fraction, split_count, source, claimed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (receipt_item_id, member_id) DO UPDATE SET
		   share_fraction = excluded.share_fraction,
		   split_count = excluded.split_count,
		   source = excluded.source,
		   claimed_at = excluded.claimed_at
		 RETURNING id`,
		claim.ID, claim.ReceiptItemID, claim.MemberID, claim.ShareFraction,
		claim.SplitCount, claim.Source, claim.ClaimedAt,
	).Scan(&claim.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert item claim: %w", err)
	}
	return nil
}

// DeleteClaim removes a member's claim on an item.
func (s *SQLiteStore) DeleteClaim(ctx context.Context, itemID, memberID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM item_claims WHERE receipt_item_id = ? AND member_id = ?",
		itemID, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete item claim: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted claim: %w", err)
	}
	if n == 0 {
		return notFound("claim", itemID+"/"+memberID)
	}
	return nil
}
