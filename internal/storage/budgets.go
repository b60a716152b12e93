package storage

import (
	"context"
	"database/sql"
	"fmt"

	"forest/internal/core"
)

const budgetColumns = `
	b.id, b.name, b.amount_cents, b.start_date, b.end_date,
	b.category_id, b.user_id, b.is_active, COALESCE(c.name, '')`

func scanBudget(row interface{ Scan(...any) error }) (*core.Budget, error) {
	var b core.Budget
	var categoryID sql.NullInt64
	err := row.Scan(&b.ID, &b.Name, &b.Amount.Cents, &b.StartDate, &b.EndDate,
		&categoryID, &b.UserID, &b.IsActive, &b.CategoryName)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		b.CategoryID = &categoryID.Int64
	}
	return &b, nil
}

// CreateBudget inserts a budget for its owning user.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (*core.Budget, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (name, amount_cents, start_date, end_date, category_id, user_id, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.Name, b.Amount.Cents, b.StartDate, b.EndDate, nullableID(b.CategoryID), b.UserID, b.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("create budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create budget id: %w", err)
	}
	return r.GetBudget(ctx, b.UserID, id)
}

// GetBudget fetches a budget by id. A budget owned by another user
// yields Forbidden, an absent one NotFound.
func (r *SQLiteRepository) GetBudget(ctx context.Context, userID, id int64) (*core.Budget, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT`+budgetColumns+`
		FROM budgets b
		LEFT JOIN categories c ON b.category_id = c.id
		WHERE b.id = ?`, id)

	b, err := scanBudget(row)
	if err != nil {
		return nil, notFoundAs(err, "budget")
	}
	if b.UserID != userID {
		return nil, fmt.Errorf("budget belongs to another user: %w", core.ErrForbidden)
	}
	return b, nil
}

// ListBudgets returns all budgets of a user; activeOnly restricts to
// budgets flagged active.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64, activeOnly bool) ([]core.Budget, error) {
	query := `
		SELECT` + budgetColumns + `
		FROM budgets b
		LEFT JOIN categories c ON b.category_id = c.id
		WHERE b.user_id = ?`
	if activeOnly {
		query += " AND b.is_active = 1"
	}
	query += " ORDER BY b.start_date DESC, b.id"

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []core.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

// UpdateBudget writes the full row back after the ownership check.
func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) (*core.Budget, error) {
	if _, err := r.GetBudget(ctx, b.UserID, b.ID); err != nil {
		return nil, err
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE budgets
		SET name = ?, amount_cents = ?, start_date = ?, end_date = ?, category_id = ?, is_active = ?
		WHERE id = ? AND user_id = ?`,
		b.Name, b.Amount.Cents, b.StartDate, b.EndDate, nullableID(b.CategoryID), b.IsActive, b.ID, b.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("update budget: %w", err)
	}
	return r.GetBudget(ctx, b.UserID, b.ID)
}

// DeleteBudget removes a budget after the ownership check.
func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, id int64) error {
	if _, err := r.GetBudget(ctx, userID, id); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
