package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"plata/internal/core"
)

type CreateBudgetParams struct {
	UserID      int64
	CategoryID  int64
	AmountCents int64
	Period      core.BudgetPeriod
	StartDate   time.Time
	EndDate     *time.Time
}

func (q *Queries) CreateBudget(ctx context.Context, p CreateBudgetParams) (core.Budget, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, category_id, amount_cents, period, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.CategoryID, p.AmountCents, string(p.Period), p.StartDate,
		nullTime(p.EndDate), time.Now().UTC())
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget id: %w", err)
	}
	return core.Budget{
		ID:         id,
		UserID:     p.UserID,
		CategoryID: p.CategoryID,
		Amount:     core.Money{Cents: p.AmountCents},
		Period:     p.Period,
		StartDate:  p.StartDate,
		EndDate:    p.EndDate,
	}, nil
}

const budgetColumns = `id, user_id, category_id, amount_cents, period, start_date, end_date, created_at`

func scanBudget(row interface{ Scan(...any) error }) (core.Budget, error) {
	var b core.Budget
	var period string
	var endDate sql.NullTime
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount.Cents, &period,
		&b.StartDate, &endDate, &b.CreatedAt)
	if err != nil {
		return core.Budget{}, err
	}
	b.Period = core.BudgetPeriod(period)
	b.EndDate = timePtr(endDate)
	return b, nil
}

func (q *Queries) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrBudgetNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// GetBudgetForCategory finds the one budget covering (user, category, period).
func (q *Queries) GetBudgetForCategory(ctx context.Context, userID, categoryID int64, period core.BudgetPeriod) (core.Budget, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE user_id = ? AND category_id = ? AND period = ?`,
		userID, categoryID, string(period))
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrBudgetNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget for category: %w", err)
	}
	return b, nil
}

func (q *Queries) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (q *Queries) UpdateBudget(ctx context.Context, id, amountCents int64, period core.BudgetPeriod) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE budgets SET amount_cents = ?, period = ? WHERE id = ?`,
		amountCents, string(period), id)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update budget rows: %w", err)
	}
	if n == 0 {
		return core.ErrBudgetNotFound
	}
	return nil
}

// DeleteBudget removes a budget outright. Budgets are plans, not ledger
// entries, so they are not soft-deleted.
func (q *Queries) DeleteBudget(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget rows: %w", err)
	}
	if n == 0 {
		return core.ErrBudgetNotFound
	}
	return nil
}

// SumCategoryExpenses totals the absolute spending in a category since
// `from`, across all of the user's accounts. Transfer legs and deleted
// rows never count.
func (q *Queries) SumCategoryExpenses(ctx context.Context, userID, categoryID int64, from time.Time) (int64, error) {
	var cents int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(-t.amount_cents), 0)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = ? AND t.category_id = ? AND t.date >= ?
		  AND t.amount_cents < 0 AND t.transfer_id IS NULL AND t.deleted_at IS NULL`,
		userID, categoryID, from).Scan(&cents)
	if err != nil {
		return 0, fmt.Errorf("sum category expenses: %w", err)
	}
	return cents, nil
}
