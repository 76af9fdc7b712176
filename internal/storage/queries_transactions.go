package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"plata/internal/core"
)

type CreateTransactionParams struct {
	AccountID   int64
	AmountCents int64
	Description string
	Date        time.Time
	CategoryID  *int64
	ParentID    *int64
	TransferID  *int64
}

func (q *Queries) CreateTransaction(ctx context.Context, p CreateTransactionParams) (core.Transaction, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO transactions (account_id, amount_cents, description, date, category_id, parent_id, transfer_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.AccountID, p.AmountCents, p.Description, p.Date,
		nullInt64(p.CategoryID), nullInt64(p.ParentID), nullInt64(p.TransferID), now, now)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	return core.Transaction{
		ID:          id,
		AccountID:   p.AccountID,
		Amount:      core.Money{Cents: p.AmountCents},
		Description: p.Description,
		Date:        p.Date,
		CategoryID:  p.CategoryID,
		ParentID:    p.ParentID,
		TransferID:  p.TransferID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

const transactionColumns = `id, account_id, amount_cents, description, date, category_id, parent_id, transfer_id, created_at, updated_at, deleted_at`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	var categoryID, parentID, transferID sql.NullInt64
	var deletedAt sql.NullTime
	err := row.Scan(&t.ID, &t.AccountID, &t.Amount.Cents, &t.Description, &t.Date,
		&categoryID, &parentID, &transferID, &t.CreatedAt, &t.UpdatedAt, &deletedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.CategoryID = int64Ptr(categoryID)
	t.ParentID = int64Ptr(parentID)
	t.TransferID = int64Ptr(transferID)
	if deletedAt.Valid {
		dt := deletedAt.Time
		t.DeletedAt = &dt
	}
	return t, nil
}

// GetTransaction returns a live (non-deleted) transaction.
func (q *Queries) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND deleted_at IS NULL`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (q *Queries) SoftDeleteTransaction(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, `
		UPDATE transactions SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete transaction rows: %w", err)
	}
	if n == 0 {
		return core.ErrTransactionNotFound
	}
	return nil
}

// SoftDeleteChildren soft-deletes every live child of a split parent.
func (q *Queries) SoftDeleteChildren(ctx context.Context, parentID int64) error {
	now := time.Now().UTC()
	_, err := q.db.ExecContext(ctx, `
		UPDATE transactions SET deleted_at = ?, updated_at = ? WHERE parent_id = ? AND deleted_at IS NULL`,
		now, now, parentID)
	if err != nil {
		return fmt.Errorf("soft delete children: %w", err)
	}
	return nil
}

// SetTransferID tags a transaction as a transfer leg.
func (q *Queries) SetTransferID(ctx context.Context, id, transferID int64) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE transactions SET transfer_id = ?, updated_at = ? WHERE id = ?`,
		transferID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set transfer id: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set transfer id rows: %w", err)
	}
	if n == 0 {
		return core.ErrTransactionNotFound
	}
	return nil
}

func (q *Queries) ListChildren(ctx context.Context, parentID int64) ([]core.Transaction, error) {
	return q.listTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE parent_id = ? AND deleted_at IS NULL ORDER BY id`, parentID)
}

func (q *Queries) ListByTransferID(ctx context.Context, transferID int64) ([]core.Transaction, error) {
	return q.listTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE transfer_id = ? AND deleted_at IS NULL ORDER BY id`, transferID)
}

// TransactionFilter narrows ListTransactions. Zero values mean "no filter".
type TransactionFilter struct {
	AccountID        int64
	CategoryID       *int64
	From             *time.Time
	To               *time.Time
	IncomeOnly       bool
	ExpenseOnly      bool
	Search           string
	ExcludeTransfers bool
	Limit            int
}

// ListTransactions returns live top-level transactions matching the filter,
// newest first.
func (q *Queries) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE deleted_at IS NULL AND parent_id IS NULL`)
	var args []any

	if f.AccountID != 0 {
		sb.WriteString(" AND account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.CategoryID != nil {
		sb.WriteString(" AND category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.From != nil {
		sb.WriteString(" AND date >= ?")
		args = append(args, *f.From)
	}
	if f.To != nil {
		sb.WriteString(" AND date <= ?")
		args = append(args, *f.To)
	}
	if f.IncomeOnly {
		sb.WriteString(" AND amount_cents > 0")
	}
	if f.ExpenseOnly {
		sb.WriteString(" AND amount_cents < 0")
	}
	if f.Search != "" {
		sb.WriteString(" AND description LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}
	if f.ExcludeTransfers {
		sb.WriteString(" AND transfer_id IS NULL")
	}
	sb.WriteString(" ORDER BY date DESC, id DESC")
	if f.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}

	return q.listTransactions(ctx, sb.String(), args...)
}

func (q *Queries) listTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
