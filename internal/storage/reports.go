package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"forest/internal/core"
)

// DateRange is an optional inclusive date filter for reports.
type DateRange struct {
	Start *core.Date
	End   *core.Date
}

func (dr DateRange) apply(query string, args []any) (string, []any) {
	if dr.Start != nil {
		query += " AND e.date >= ?"
		args = append(args, *dr.Start)
	}
	if dr.End != nil {
		query += " AND e.date <= ?"
		args = append(args, *dr.End)
	}
	return query, args
}

// MonthlyTotals sums the user's expenses per calendar month of a year.
// Months without expenses produce no row.
func (r *SQLiteRepository) MonthlyTotals(ctx context.Context, userID int64, year int) ([]core.MonthlyTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(strftime('%m', e.date) AS INTEGER) AS month, SUM(e.amount_cents)
		FROM expenses e
		WHERE e.user_id = ? AND strftime('%Y', e.date) = ?
		GROUP BY month
		ORDER BY month`, userID, strconv.Itoa(year))
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	defer rows.Close()

	totals := []core.MonthlyTotal{}
	for rows.Next() {
		var t core.MonthlyTotal
		if err := rows.Scan(&t.Month, &t.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		t.MonthName = core.MonthName(t.Month)
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// CategoryTotals sums the user's expenses per category over an optional
// date range. Categories without matching expenses produce no row.
func (r *SQLiteRepository) CategoryTotals(ctx context.Context, userID int64, dr DateRange) ([]core.CategoryTotal, error) {
	query := `
		SELECT c.id, c.name, c.color, c.icon, SUM(e.amount_cents)
		FROM categories c
		JOIN expenses e ON c.id = e.category_id
		WHERE e.user_id = ?`
	args := []any{userID}
	query, args = dr.apply(query, args)
	query += `
		GROUP BY c.id, c.name, c.color, c.icon
		ORDER BY c.name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	totals := []core.CategoryTotal{}
	for rows.Next() {
		var t core.CategoryTotal
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Icon, &t.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// Summary computes sum/avg/count/max/min over the user's expenses in an
// optional date range, plus the five most recent expenses in that range.
func (r *SQLiteRepository) Summary(ctx context.Context, userID int64, dr DateRange) (*core.Summary, error) {
	query := `
		SELECT COALESCE(SUM(e.amount_cents), 0), COALESCE(AVG(e.amount_cents), 0),
		       COUNT(e.id), COALESCE(MAX(e.amount_cents), 0), COALESCE(MIN(e.amount_cents), 0)
		FROM expenses e
		WHERE e.user_id = ?`
	args := []any{userID}
	query, args = dr.apply(query, args)

	var s core.Summary
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&s.Total.Cents, &avg, &s.Count, &s.Max.Cents, &s.Min.Cents)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	// Round the mean to whole cents, half up.
	if avg.Valid {
		s.Average.Cents = int64(avg.Float64 + 0.5)
	}

	recent, err := r.ListExpenses(ctx, userID, ExpenseFilter{
		StartDate: dr.Start,
		EndDate:   dr.End,
		SortBy:    "date",
		SortOrder: "desc",
	})
	if err != nil {
		return nil, err
	}
	if len(recent) > 5 {
		recent = recent[:5]
	}
	s.Recent = recent

	return &s, nil
}
