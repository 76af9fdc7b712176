package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"plata/internal/core"
)

type CreateAccountParams struct {
	UserID       int64
	Name         string
	Type         core.AccountType
	Institution  string
	CurrencyCode string
}

func (q *Queries) CreateAccount(ctx context.Context, p CreateAccountParams) (core.Account, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO accounts (user_id, name, type, institution, currency_code, balance_cents, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		p.UserID, p.Name, string(p.Type), p.Institution, p.CurrencyCode, now, now)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account id: %w", err)
	}
	return core.Account{
		ID:           id,
		UserID:       p.UserID,
		Name:         p.Name,
		Type:         p.Type,
		Institution:  p.Institution,
		CurrencyCode: p.CurrencyCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

const accountColumns = `id, user_id, name, type, institution, currency_code, balance_cents, created_at, updated_at, deleted_at`

func scanAccount(row interface{ Scan(...any) error }) (core.Account, error) {
	var a core.Account
	var typ string
	var deletedAt sql.NullTime
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &typ, &a.Institution, &a.CurrencyCode,
		&a.Balance.Cents, &a.CreatedAt, &a.UpdatedAt, &deletedAt)
	if err != nil {
		return core.Account{}, err
	}
	a.Type = core.AccountType(typ)
	if deletedAt.Valid {
		t := deletedAt.Time
		a.DeletedAt = &t
	}
	return a, nil
}

// GetAccount returns a live (non-deleted) account.
func (q *Queries) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = ? AND deleted_at IS NULL`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrAccountNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (q *Queries) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE user_id = ? AND deleted_at IS NULL ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ListAllAccounts returns every live account regardless of owner. Used by
// the reconciler.
func (q *Queries) ListAllAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list all accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// AddToBalance applies a signed delta to the cached balance as a single
// atomic increment, so concurrent updates never lose writes.
func (q *Queries) AddToBalance(ctx context.Context, id int64, deltaCents int64) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		deltaCents, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("add to balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("add to balance rows: %w", err)
	}
	if n == 0 {
		return core.ErrAccountNotFound
	}
	return nil
}

// SetBalance overwrites the cached balance. Used by the reconciler only.
func (q *Queries) SetBalance(ctx context.Context, id int64, cents int64) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE accounts SET balance_cents = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		cents, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set balance rows: %w", err)
	}
	if n == 0 {
		return core.ErrAccountNotFound
	}
	return nil
}

func (q *Queries) SoftDeleteAccount(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE accounts SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("soft delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete account rows: %w", err)
	}
	if n == 0 {
		return core.ErrAccountNotFound
	}
	return nil
}

// SumTopLevelTransactions returns the authoritative balance: the sum of all
// non-deleted, top-level transaction amounts for the account.
func (q *Queries) SumTopLevelTransactions(ctx context.Context, accountID int64) (int64, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
		WHERE account_id = ? AND parent_id IS NULL AND deleted_at IS NULL`, accountID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return sum, nil
}
