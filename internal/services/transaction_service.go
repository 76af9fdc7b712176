package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"plata/internal/amqp"
	"plata/internal/core"
	"plata/internal/storage"
)

// TransactionService creates, reads and soft-deletes ledger entries,
// including parent/child split structures.
type TransactionService struct {
	store  *storage.Store
	events *amqp.Client // optional, nil disables event publishing
}

func NewTransactionService(store *storage.Store, events *amqp.Client) *TransactionService {
	return &TransactionService{store: store, events: events}
}

// CreateTransactionParams describes a single ledger entry. Amount is signed:
// positive for income, negative for expense.
type CreateTransactionParams struct {
	AccountID   int64
	Amount      core.Money
	Description string
	Date        time.Time
	CategoryID  *int64
	ParentID    *int64
}

// SplitSpec is one categorization child of a split transaction.
type SplitSpec struct {
	Amount      core.Money
	CategoryID  *int64
	Description string
}

// createTransaction inserts one entry inside the caller's transaction and,
// for top-level entries, moves the cached balance by the same amount. Split
// children apply no delta: only the parent's amount affects balance.
func createTransaction(ctx context.Context, q *storage.Queries, p CreateTransactionParams) (core.Transaction, error) {
	if _, err := q.GetAccount(ctx, p.AccountID); err != nil {
		return core.Transaction{}, err
	}

	date := p.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	tx, err := q.CreateTransaction(ctx, storage.CreateTransactionParams{
		AccountID:   p.AccountID,
		AmountCents: p.Amount.Cents,
		Description: p.Description,
		Date:        date,
		CategoryID:  p.CategoryID,
		ParentID:    p.ParentID,
	})
	if err != nil {
		return core.Transaction{}, err
	}

	if p.ParentID == nil {
		if err := applyDelta(ctx, q, p.AccountID, p.Amount.Cents); err != nil {
			return core.Transaction{}, err
		}
	}

	return tx, nil
}

// Create persists a single transaction and its balance delta atomically.
func (s *TransactionService) Create(ctx context.Context, p CreateTransactionParams) (*core.Transaction, error) {
	if p.Amount.IsZero() {
		return nil, core.ErrInvalidAmount
	}

	var tx core.Transaction
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		tx, err = createTransaction(ctx, q, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", tx.ID,
		"account_id", tx.AccountID,
		"amount_cents", tx.Amount.Cents)

	s.publish(ctx, amqp.EventTransactionCreated, tx.ID, tx.AccountID)
	return &tx, nil
}

// CreateSplit creates a parent transaction (which moves the balance) plus
// its categorization children (which do not). Child amounts must sum to the
// parent amount.
func (s *TransactionService) CreateSplit(ctx context.Context, main CreateTransactionParams, splits []SplitSpec) (*core.Transaction, error) {
	if main.Amount.IsZero() {
		return nil, core.ErrInvalidAmount
	}
	if main.ParentID != nil {
		return nil, core.ErrSplitMismatch
	}

	// Amounts are integer cents so the sum check is exact.
	var total int64
	for _, sp := range splits {
		total += sp.Amount.Cents
	}
	if len(splits) > 0 && total != main.Amount.Cents {
		return nil, core.ErrSplitMismatch
	}

	var parent core.Transaction
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		parent, err = createTransaction(ctx, q, main)
		if err != nil {
			return err
		}

		for _, sp := range splits {
			_, err := createTransaction(ctx, q, CreateTransactionParams{
				AccountID:   parent.AccountID,
				Amount:      sp.Amount,
				Description: sp.Description,
				Date:        parent.Date,
				CategoryID:  sp.CategoryID,
				ParentID:    &parent.ID,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Split transaction created",
		"id", parent.ID,
		"account_id", parent.AccountID,
		"amount_cents", parent.Amount.Cents,
		"splits", len(splits))

	s.publish(ctx, amqp.EventTransactionCreated, parent.ID, parent.AccountID)
	return &parent, nil
}

// SoftDelete marks a transaction deleted and reverses its balance delta in
// the same commit, so the cached balance stays consistent with the surviving
// log. Deleting a split child reverses nothing; transfer legs cannot be
// deleted individually.
func (s *TransactionService) SoftDelete(ctx context.Context, id int64) error {
	var accountID int64
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		tx, err := q.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if tx.TransferID != nil {
			return core.ErrTransferImmutable
		}
		accountID = tx.AccountID

		if err := q.SoftDeleteTransaction(ctx, id); err != nil {
			return err
		}

		if tx.ParentID == nil {
			// Children are categorization only; delete them with the parent.
			if err := q.SoftDeleteChildren(ctx, id); err != nil {
				return err
			}
			if err := applyDelta(ctx, q, tx.AccountID, -tx.Amount.Cents); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction soft-deleted", "id", id, "account_id", accountID)
	s.publish(ctx, amqp.EventTransactionDeleted, id, accountID)
	return nil
}

// Get returns a live transaction by id.
func (s *TransactionService) Get(ctx context.Context, id int64) (*core.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// List returns top-level transactions matching the filter.
func (s *TransactionService) List(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, f)
}

// Children returns the live split children of a parent transaction.
func (s *TransactionService) Children(ctx context.Context, parentID int64) ([]core.Transaction, error) {
	return s.store.ListChildren(ctx, parentID)
}

// publish sends a ledger event after a successful commit. Failures are
// logged, never propagated: the ledger write already happened.
func (s *TransactionService) publish(ctx context.Context, eventType string, entityID, accountID int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, amqp.NewLedgerEvent(eventType, entityID, accountID)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", eventType, "entity_id", entityID, "error", err)
	}
}

// Close releases the underlying storage and broker connections.
func (s *TransactionService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}
