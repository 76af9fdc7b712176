package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"plata/internal/core"
)

type CreateRecurringParams struct {
	UserID      int64
	AccountID   int64
	CategoryID  *int64
	Name        string
	AmountCents int64
	Description string
	Frequency   core.Frequency
	DayOfMonth  int
	StartDate   time.Time
	EndDate     *time.Time
	NextDue     *time.Time
	IsActive    bool
}

func (q *Queries) CreateRecurring(ctx context.Context, p CreateRecurringParams) (core.RecurringTransaction, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO recurring_transactions
			(user_id, account_id, category_id, name, amount_cents, description, frequency,
			 day_of_month, start_date, end_date, next_due, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.AccountID, nullInt64(p.CategoryID), p.Name, p.AmountCents, p.Description,
		string(p.Frequency), p.DayOfMonth, p.StartDate, nullTime(p.EndDate), nullTime(p.NextDue),
		boolToInt(p.IsActive), now, now)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("insert recurring: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("recurring id: %w", err)
	}
	return core.RecurringTransaction{
		ID:          id,
		UserID:      p.UserID,
		AccountID:   p.AccountID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Amount:      core.Money{Cents: p.AmountCents},
		Description: p.Description,
		Frequency:   p.Frequency,
		DayOfMonth:  p.DayOfMonth,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		NextDue:     p.NextDue,
		IsActive:    p.IsActive,
	}, nil
}

const recurringColumns = `id, user_id, account_id, category_id, name, amount_cents, description,
	frequency, day_of_month, start_date, end_date, last_generated, next_due, is_active, deleted_at`

func scanRecurring(row interface{ Scan(...any) error }) (core.RecurringTransaction, error) {
	var r core.RecurringTransaction
	var categoryID sql.NullInt64
	var endDate, lastGenerated, nextDue, deletedAt sql.NullTime
	var frequency string
	var isActive int
	err := row.Scan(&r.ID, &r.UserID, &r.AccountID, &categoryID, &r.Name, &r.Amount.Cents,
		&r.Description, &frequency, &r.DayOfMonth, &r.StartDate, &endDate, &lastGenerated,
		&nextDue, &isActive, &deletedAt)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	r.CategoryID = int64Ptr(categoryID)
	r.Frequency = core.Frequency(frequency)
	r.IsActive = isActive != 0
	r.EndDate = timePtr(endDate)
	r.LastGenerated = timePtr(lastGenerated)
	r.NextDue = timePtr(nextDue)
	if deletedAt.Valid {
		t := deletedAt.Time
		r.DeletedAt = &t
	}
	return r, nil
}

func (q *Queries) GetRecurring(ctx context.Context, id int64) (core.RecurringTransaction, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = ? AND deleted_at IS NULL`, id)
	r, err := scanRecurring(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringTransaction{}, core.ErrRecurringNotFound
	}
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("get recurring: %w", err)
	}
	return r, nil
}

func (q *Queries) ListRecurring(ctx context.Context, userID int64) ([]core.RecurringTransaction, error) {
	return q.listRecurring(ctx, `
		SELECT `+recurringColumns+` FROM recurring_transactions
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY next_due ASC`, userID)
}

// ListDueRecurring returns active definitions whose next_due has arrived
// (or was never set), ordered oldest first.
func (q *Queries) ListDueRecurring(ctx context.Context, userID int64, now time.Time) ([]core.RecurringTransaction, error) {
	return q.listRecurring(ctx, `
		SELECT `+recurringColumns+` FROM recurring_transactions
		WHERE user_id = ? AND deleted_at IS NULL AND is_active = 1
		  AND (next_due IS NULL OR next_due <= ?)
		ORDER BY next_due ASC, id ASC`, userID, now)
}

// ListUpcomingRecurring returns active definitions due inside [from, to],
// soonest first.
func (q *Queries) ListUpcomingRecurring(ctx context.Context, userID int64, from, to time.Time) ([]core.RecurringTransaction, error) {
	return q.listRecurring(ctx, `
		SELECT `+recurringColumns+` FROM recurring_transactions
		WHERE user_id = ? AND deleted_at IS NULL AND is_active = 1
		  AND next_due >= ? AND next_due <= ?
		ORDER BY next_due ASC, id ASC`, userID, from, to)
}

// ListActiveRecurringUsers returns the distinct user ids that still have
// live recurring definitions. The worker iterates these.
func (q *Queries) ListActiveRecurringUsers(ctx context.Context) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT DISTINCT user_id FROM recurring_transactions
		WHERE deleted_at IS NULL AND is_active = 1
		ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list recurring users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan recurring user: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (q *Queries) listRecurring(ctx context.Context, query string, args ...any) ([]core.RecurringTransaction, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recurring: %w", err)
	}
	defer rows.Close()

	var recs []core.RecurringTransaction
	for rows.Next() {
		r, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

type UpdateRecurringParams struct {
	ID          int64
	CategoryID  *int64
	Name        string
	AmountCents int64
	Description string
	Frequency   core.Frequency
	DayOfMonth  int
	EndDate     *time.Time
	NextDue     *time.Time
}

func (q *Queries) UpdateRecurring(ctx context.Context, p UpdateRecurringParams) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE recurring_transactions
		SET category_id = ?, name = ?, amount_cents = ?, description = ?,
		    frequency = ?, day_of_month = ?, end_date = ?, next_due = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		nullInt64(p.CategoryID), p.Name, p.AmountCents, p.Description,
		string(p.Frequency), p.DayOfMonth, nullTime(p.EndDate), nullTime(p.NextDue),
		time.Now().UTC(), p.ID)
	if err != nil {
		return fmt.Errorf("update recurring: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update recurring rows: %w", err)
	}
	if n == 0 {
		return core.ErrRecurringNotFound
	}
	return nil
}

// MarkGenerated records a successful generation and advances next_due.
func (q *Queries) MarkGenerated(ctx context.Context, id int64, lastGenerated, nextDue time.Time) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE recurring_transactions SET last_generated = ?, next_due = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		lastGenerated, nextDue, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark generated: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark generated rows: %w", err)
	}
	if n == 0 {
		return core.ErrRecurringNotFound
	}
	return nil
}

func (q *Queries) SetRecurringActive(ctx context.Context, id int64, active bool) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE recurring_transactions SET is_active = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		boolToInt(active), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set recurring active: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set recurring active rows: %w", err)
	}
	if n == 0 {
		return core.ErrRecurringNotFound
	}
	return nil
}

func (q *Queries) SoftDeleteRecurring(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, `
		UPDATE recurring_transactions SET deleted_at = ?, is_active = 0, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`, now, now, id)
	if err != nil {
		return fmt.Errorf("soft delete recurring: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete recurring rows: %w", err)
	}
	if n == 0 {
		return core.ErrRecurringNotFound
	}
	return nil
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p, Valid: true}
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
