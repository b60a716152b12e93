package storage

import (
	"context"
	"fmt"

	"forest/internal/core"
)

// CreateCategory inserts a category, failing with Conflict on a
// duplicate name.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (*core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (name, color, icon) VALUES (?, ?, ?)",
		c.Name, c.Color, c.Icon,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("category with this name already exists: %w", core.ErrConflict)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create category id: %w", err)
	}
	return r.GetCategory(ctx, id)
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (*core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, color, icon FROM categories WHERE id = ?", id)

	var c core.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Color, &c.Icon); err != nil {
		return nil, notFoundAs(err, "category")
	}
	return &c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, color, icon FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory writes the full row back, re-checking name uniqueness
// against other rows.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (*core.Category, error) {
	if _, err := r.GetCategory(ctx, c.ID); err != nil {
		return nil, err
	}

	var clash int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE name = ? AND id != ?", c.Name, c.ID).Scan(&clash)
	if err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if clash > 0 {
		return nil, fmt.Errorf("category with this name already exists: %w", core.ErrConflict)
	}

	_, err = r.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, color = ?, icon = ? WHERE id = ?",
		c.Name, c.Color, c.Icon, c.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return r.GetCategory(ctx, c.ID)
}

// DeleteCategory removes a category unless any expense still references
// it, in which case it fails with Conflict.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := r.GetCategory(ctx, id); err != nil {
		return err
	}

	var inUse int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM expenses WHERE category_id = ?", id).Scan(&inUse)
	if err != nil {
		return fmt.Errorf("check category usage: %w", err)
	}
	if inUse > 0 {
		return fmt.Errorf("cannot delete category with associated expenses: %w", core.ErrConflict)
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
