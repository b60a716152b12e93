package storage

import (
	"context"
	"fmt"

	"forest/internal/core"
)

// AddReceipt records an uploaded receipt file against an expense.
func (r *SQLiteRepository) AddReceipt(ctx context.Context, rec core.Receipt) (*core.Receipt, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO receipts (filename, original_filename, upload_date, expense_id)
		VALUES (?, ?, ?, ?)`,
		rec.Filename, rec.OriginalFilename, rec.UploadDate, rec.ExpenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("add receipt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("add receipt id: %w", err)
	}
	rec.ID = id
	return &rec, nil
}

// GetReceipt fetches a receipt owned (via its expense) by userID.
func (r *SQLiteRepository) GetReceipt(ctx context.Context, userID, id int64) (*core.Receipt, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT r.id, r.filename, r.original_filename, r.upload_date, r.expense_id
		FROM receipts r
		JOIN expenses e ON r.expense_id = e.id
		WHERE r.id = ? AND e.user_id = ?`, id, userID)

	var rec core.Receipt
	if err := row.Scan(&rec.ID, &rec.Filename, &rec.OriginalFilename, &rec.UploadDate, &rec.ExpenseID); err != nil {
		return nil, notFoundAs(err, "receipt")
	}
	return &rec, nil
}

// GetReceiptByFilename resolves a stored filename to the user's receipt.
func (r *SQLiteRepository) GetReceiptByFilename(ctx context.Context, userID int64, filename string) (*core.Receipt, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT r.id, r.filename, r.original_filename, r.upload_date, r.expense_id
		FROM receipts r
		JOIN expenses e ON r.expense_id = e.id
		WHERE r.filename = ? AND e.user_id = ?`, filename, userID)

	var rec core.Receipt
	if err := row.Scan(&rec.ID, &rec.Filename, &rec.OriginalFilename, &rec.UploadDate, &rec.ExpenseID); err != nil {
		return nil, notFoundAs(err, "receipt")
	}
	return &rec, nil
}

// ListReceiptsByExpense returns the receipts attached to one expense.
func (r *SQLiteRepository) ListReceiptsByExpense(ctx context.Context, expenseID int64) ([]core.Receipt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, filename, original_filename, upload_date, expense_id
		FROM receipts WHERE expense_id = ? ORDER BY id`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	receipts := []core.Receipt{}
	for rows.Next() {
		var rec core.Receipt
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.OriginalFilename, &rec.UploadDate, &rec.ExpenseID); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		receipts = append(receipts, rec)
	}
	return receipts, rows.Err()
}

// DeleteReceipt removes the receipt row. File removal is the caller's
// concern and stays best-effort.
func (r *SQLiteRepository) DeleteReceipt(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM receipts WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete receipt: %w", err)
	}
	return nil
}
