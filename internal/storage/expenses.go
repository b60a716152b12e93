package storage

import (
	"context"
	"database/sql"
	"fmt"

	"forest/internal/core"
)

// ExpenseFilter narrows and orders expense listings.
type ExpenseFilter struct {
	CategoryID *int64
	StartDate  *core.Date
	EndDate    *core.Date
	SortBy     string // date, amount, title
	SortOrder  string // asc, desc
}

const expenseColumns = `
	e.id, e.title, e.amount_cents, e.currency, e.date, e.description,
	e.category_id, e.user_id, c.name, c.color, c.icon`

func scanExpense(row interface{ Scan(...any) error }) (*core.Expense, error) {
	var e core.Expense
	err := row.Scan(&e.ID, &e.Title, &e.Amount.Cents, &e.Currency, &e.Date,
		&e.Description, &e.CategoryID, &e.UserID,
		&e.CategoryName, &e.CategoryColor, &e.CategoryIcon)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateExpense inserts an expense and returns it with denormalized
// category fields populated.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (*core.Expense, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (title, amount_cents, currency, date, description, category_id, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Title, e.Amount.Cents, e.Currency, e.Date, e.Description, e.CategoryID, e.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create expense id: %w", err)
	}
	return r.GetExpense(ctx, e.UserID, id)
}

// GetExpense fetches one expense owned by userID, including its receipts.
func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id int64) (*core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT`+expenseColumns+`
		FROM expenses e
		JOIN categories c ON e.category_id = c.id
		WHERE e.id = ? AND e.user_id = ?`, id, userID)

	e, err := scanExpense(row)
	if err != nil {
		return nil, notFoundAs(err, "expense")
	}

	e.Receipts, err = r.ListReceiptsByExpense(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListExpenses returns the user's expenses matching the filter, each
// with denormalized category fields and attached receipts.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64, f ExpenseFilter) ([]core.Expense, error) {
	query := `
		SELECT` + expenseColumns + `
		FROM expenses e
		JOIN categories c ON e.category_id = c.id
		WHERE e.user_id = ?`
	args := []any{userID}

	if f.CategoryID != nil {
		query += " AND e.category_id = ?"
		args = append(args, *f.CategoryID)
	}
	if f.StartDate != nil {
		query += " AND e.date >= ?"
		args = append(args, *f.StartDate)
	}
	if f.EndDate != nil {
		query += " AND e.date <= ?"
		args = append(args, *f.EndDate)
	}
	query += " ORDER BY " + orderClause(f.SortBy, f.SortOrder)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range expenses {
		expenses[i].Receipts, err = r.ListReceiptsByExpense(ctx, expenses[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

// orderClause whitelists sortable columns; anything unknown falls back
// to date descending, matching the list endpoint's defaults.
func orderClause(sortBy, sortOrder string) string {
	col := "e.date"
	switch sortBy {
	case "amount":
		col = "e.amount_cents"
	case "title":
		col = "e.title"
	}
	dir := "DESC"
	if sortOrder == "asc" {
		dir = "ASC"
	}
	return col + " " + dir
}

// UpdateExpense writes the full row back for an expense owned by the
// user and returns the refreshed view.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (*core.Expense, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET title = ?, amount_cents = ?, currency = ?, date = ?, description = ?, category_id = ?
		WHERE id = ? AND user_id = ?`,
		e.Title, e.Amount.Cents, e.Currency, e.Date, e.Description, e.CategoryID, e.ID, e.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update expense result: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("expense: %w", core.ErrNotFound)
	}
	return r.GetExpense(ctx, e.UserID, e.ID)
}

// DeleteExpense removes an expense owned by the user in one transaction
// and returns the stored filenames of receipts that were attached, so
// the caller can clean up the files afterwards.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id int64) ([]string, error) {
	var filenames []string
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var owner int64
		err := tx.QueryRowContext(ctx,
			"SELECT user_id FROM expenses WHERE id = ? AND user_id = ?", id, userID).Scan(&owner)
		if err != nil {
			return notFoundAs(err, "expense")
		}

		rows, err := tx.QueryContext(ctx,
			"SELECT filename FROM receipts WHERE expense_id = ?", id)
		if err != nil {
			return fmt.Errorf("list receipt files: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return fmt.Errorf("scan receipt file: %w", err)
			}
			filenames = append(filenames, name)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		// Receipt rows go with the expense via ON DELETE CASCADE.
		if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete expense: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return filenames, nil
}

// SumExpenses totals the user's expense amounts with date falling in
// [start, end] inclusive, optionally restricted to one category.
func (r *SQLiteRepository) SumExpenses(ctx context.Context, userID int64, categoryID *int64, start, end core.Date) (core.Money, error) {
	query := `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM expenses
		WHERE user_id = ? AND date >= ? AND date <= ?`
	args := []any{userID, start, end}
	if categoryID != nil {
		query += " AND category_id = ?"
		args = append(args, *categoryID)
	}

	var cents int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&cents); err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money{Cents: cents}, nil
}
