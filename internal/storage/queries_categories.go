package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"plata/internal/core"
)

func (q *Queries) CreateCategory(ctx context.Context, userID int64, name string, typ core.CategoryType) (core.Category, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO categories (user_id, name, type, created_at) VALUES (?, ?, ?, ?)`,
		userID, name, string(typ), time.Now().UTC())
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	return core.Category{ID: id, UserID: userID, Name: name, Type: typ}, nil
}

func (q *Queries) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	var typ string
	err := q.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, type FROM categories WHERE id = ? AND deleted_at IS NULL`, id).
		Scan(&c.ID, &c.UserID, &c.Name, &typ)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.Type = core.CategoryType(typ)
	return c, nil
}

func (q *Queries) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, user_id, name, type FROM categories
		WHERE user_id = ? AND deleted_at IS NULL ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &typ); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.CategoryType(typ)
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (q *Queries) SoftDeleteCategory(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE categories SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("soft delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete category rows: %w", err)
	}
	if n == 0 {
		return core.ErrCategoryNotFound
	}
	return nil
}
