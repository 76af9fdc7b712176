package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"plata/internal/core"
)

type CreateTransferParams struct {
	FromAccountID int64
	ToAccountID   int64
	AmountCents   int64
	Date          time.Time
	Description   string
}

func (q *Queries) CreateTransfer(ctx context.Context, p CreateTransferParams) (core.Transfer, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO transfers (from_account_id, to_account_id, amount_cents, date, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.FromAccountID, p.ToAccountID, p.AmountCents, p.Date, p.Description, now)
	if err != nil {
		return core.Transfer{}, fmt.Errorf("insert transfer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transfer{}, fmt.Errorf("transfer id: %w", err)
	}
	return core.Transfer{
		ID:            id,
		FromAccountID: p.FromAccountID,
		ToAccountID:   p.ToAccountID,
		Amount:        core.Money{Cents: p.AmountCents},
		Date:          p.Date,
		Description:   p.Description,
		CreatedAt:     now,
	}, nil
}

func (q *Queries) GetTransfer(ctx context.Context, id int64) (core.Transfer, error) {
	var t core.Transfer
	err := q.db.QueryRowContext(ctx, `
		SELECT id, from_account_id, to_account_id, amount_cents, date, description, created_at
		FROM transfers WHERE id = ?`, id).
		Scan(&t.ID, &t.FromAccountID, &t.ToAccountID, &t.Amount.Cents, &t.Date, &t.Description, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transfer{}, core.ErrTransferNotFound
	}
	if err != nil {
		return core.Transfer{}, fmt.Errorf("get transfer: %w", err)
	}
	return t, nil
}

// ListTransfers returns transfers touching any of the user's accounts,
// newest first.
func (q *Queries) ListTransfers(ctx context.Context, userID int64) ([]core.Transfer, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT t.id, t.from_account_id, t.to_account_id, t.amount_cents, t.date, t.description, t.created_at
		FROM transfers t
		JOIN accounts a ON a.id = t.from_account_id
		WHERE a.user_id = ?
		ORDER BY t.date DESC, t.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []core.Transfer
	for rows.Next() {
		var t core.Transfer
		if err := rows.Scan(&t.ID, &t.FromAccountID, &t.ToAccountID, &t.Amount.Cents,
			&t.Date, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}
