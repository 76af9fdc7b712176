package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"plata/internal/core"
)

type CreateGoalParams struct {
	UserID       int64
	Name         string
	TargetCents  int64
	CurrentCents int64
	TargetDate   *time.Time
	Icon         string
	Color        string
	IsActive     bool
}

func (q *Queries) CreateGoal(ctx context.Context, p CreateGoalParams) (core.SavingsGoal, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO savings_goals
			(user_id, name, target_amount_cents, current_amount_cents, target_date, icon, color, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Name, p.TargetCents, p.CurrentCents, nullTime(p.TargetDate),
		p.Icon, p.Color, boolToInt(p.IsActive), now)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("insert savings goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("savings goal id: %w", err)
	}
	return core.SavingsGoal{
		ID:            id,
		UserID:        p.UserID,
		Name:          p.Name,
		TargetAmount:  core.Money{Cents: p.TargetCents},
		CurrentAmount: core.Money{Cents: p.CurrentCents},
		TargetDate:    p.TargetDate,
		Icon:          p.Icon,
		Color:         p.Color,
		IsActive:      p.IsActive,
		CreatedAt:     now,
	}, nil
}

const goalColumns = `id, user_id, name, target_amount_cents, current_amount_cents,
	target_date, icon, color, is_active, created_at`

func scanGoal(row interface{ Scan(...any) error }) (core.SavingsGoal, error) {
	var g core.SavingsGoal
	var targetDate sql.NullTime
	var isActive int
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount.Cents, &g.CurrentAmount.Cents,
		&targetDate, &g.Icon, &g.Color, &isActive, &g.CreatedAt)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	g.TargetDate = timePtr(targetDate)
	g.IsActive = isActive != 0
	return g, nil
}

func (q *Queries) GetGoal(ctx context.Context, id int64) (core.SavingsGoal, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+goalColumns+` FROM savings_goals WHERE id = ? AND deleted_at IS NULL`, id)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingsGoal{}, core.ErrGoalNotFound
	}
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("get savings goal: %w", err)
	}
	return g, nil
}

func (q *Queries) ListGoals(ctx context.Context, userID int64) ([]core.SavingsGoal, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+goalColumns+` FROM savings_goals
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	var goals []core.SavingsGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan savings goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// GetActiveGoal returns the oldest active goal, the one dashboards pin.
func (q *Queries) GetActiveGoal(ctx context.Context, userID int64) (core.SavingsGoal, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+goalColumns+` FROM savings_goals
		WHERE user_id = ? AND is_active = 1 AND deleted_at IS NULL
		ORDER BY created_at ASC, id ASC LIMIT 1`, userID)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingsGoal{}, core.ErrGoalNotFound
	}
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("get active goal: %w", err)
	}
	return g, nil
}

type UpdateGoalParams struct {
	ID           int64
	Name         string
	TargetCents  int64
	CurrentCents int64
	TargetDate   *time.Time
	Icon         string
	Color        string
	IsActive     bool
}

func (q *Queries) UpdateGoal(ctx context.Context, p UpdateGoalParams) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE savings_goals
		SET name = ?, target_amount_cents = ?, current_amount_cents = ?, target_date = ?,
		    icon = ?, color = ?, is_active = ?
		WHERE id = ? AND deleted_at IS NULL`,
		p.Name, p.TargetCents, p.CurrentCents, nullTime(p.TargetDate),
		p.Icon, p.Color, boolToInt(p.IsActive), p.ID)
	if err != nil {
		return fmt.Errorf("update savings goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update savings goal rows: %w", err)
	}
	if n == 0 {
		return core.ErrGoalNotFound
	}
	return nil
}

func (q *Queries) SoftDeleteGoal(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE savings_goals SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("soft delete savings goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete savings goal rows: %w", err)
	}
	if n == 0 {
		return core.ErrGoalNotFound
	}
	return nil
}
