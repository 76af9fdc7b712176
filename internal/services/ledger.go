// Package services holds the ledger's business logic: transaction creation,
// transfers, investment position tracking, recurring generation and balance
// reconciliation. Every mutating operation runs inside one storage commit
// boundary; validation happens before any write.
package services

import (
	"context"
	"fmt"

	"plata/internal/storage"
)

// Ledger owns the cached balance rule: the cache moves only together with
// the top-level transaction write that caused it, inside the same commit.
type Ledger struct {
	store *storage.Store
}

func NewLedger(store *storage.Store) *Ledger {
	return &Ledger{store: store}
}

// applyDelta mutates the cached balance inside the caller's transaction.
// It is an atomic SQL increment, so concurrent commits on the same account
// serialize instead of losing updates.
func applyDelta(ctx context.Context, q *storage.Queries, accountID, deltaCents int64) error {
	if deltaCents == 0 {
		return nil
	}
	if err := q.AddToBalance(ctx, accountID, deltaCents); err != nil {
		return fmt.Errorf("apply balance delta: %w", err)
	}
	return nil
}

// CheckInvariant compares the cached balance against a live sum over
// top-level, non-deleted transactions.
func (l *Ledger) CheckInvariant(ctx context.Context, accountID int64) (bool, error) {
	account, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return false, err
	}
	sum, err := l.store.SumTopLevelTransactions(ctx, accountID)
	if err != nil {
		return false, err
	}
	return account.Balance.Cents == sum, nil
}
