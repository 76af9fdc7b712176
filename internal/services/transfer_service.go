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

// TransferService creates atomic two-legged money movements between
// accounts. The transfer row, both legs and both balance deltas commit as
// one unit; no partial transfer is ever observable.
type TransferService struct {
	store  *storage.Store
	events *amqp.Client // optional
}

func NewTransferService(store *storage.Store, events *amqp.Client) *TransferService {
	return &TransferService{store: store, events: events}
}

type CreateTransferParams struct {
	FromAccountID int64
	ToAccountID   int64
	Amount        core.Money
	Date          time.Time
	Description   string
}

func (s *TransferService) CreateTransfer(ctx context.Context, p CreateTransferParams) (*core.Transfer, error) {
	if !p.Amount.IsPositive() {
		return nil, core.ErrInvalidAmount
	}
	if p.FromAccountID == p.ToAccountID {
		return nil, core.ErrSameAccount
	}

	date := p.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var transfer core.Transfer
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		from, err := q.GetAccount(ctx, p.FromAccountID)
		if err != nil {
			return err
		}
		to, err := q.GetAccount(ctx, p.ToAccountID)
		if err != nil {
			return err
		}

		transfer, err = q.CreateTransfer(ctx, storage.CreateTransferParams{
			FromAccountID: p.FromAccountID,
			ToAccountID:   p.ToAccountID,
			AmountCents:   p.Amount.Cents,
			Date:          date,
			Description:   p.Description,
		})
		if err != nil {
			return err
		}

		leg1, err := createTransaction(ctx, q, CreateTransactionParams{
			AccountID:   p.FromAccountID,
			Amount:      p.Amount.Neg(),
			Description: transferLegDescription("Transfer to "+to.Name, p.Description),
			Date:        date,
		})
		if err != nil {
			return err
		}

		leg2, err := createTransaction(ctx, q, CreateTransactionParams{
			AccountID:   p.ToAccountID,
			Amount:      p.Amount,
			Description: transferLegDescription("Transfer from "+from.Name, p.Description),
			Date:        date,
		})
		if err != nil {
			return err
		}

		// Tag both legs so downstream income/expense classification can
		// exclude transfers.
		if err := q.SetTransferID(ctx, leg1.ID, transfer.ID); err != nil {
			return err
		}
		return q.SetTransferID(ctx, leg2.ID, transfer.ID)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Transfer created",
		"id", transfer.ID,
		"from_account_id", transfer.FromAccountID,
		"to_account_id", transfer.ToAccountID,
		"amount_cents", transfer.Amount.Cents)

	if s.events != nil {
		if err := s.events.PublishEvent(ctx, amqp.NewLedgerEvent(amqp.EventTransferCreated, transfer.ID, transfer.FromAccountID)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish transfer event", "id", transfer.ID, "error", err)
		}
	}

	return &transfer, nil
}

// Get returns a transfer by id.
func (s *TransferService) Get(ctx context.Context, id int64) (*core.Transfer, error) {
	t, err := s.store.GetTransfer(ctx, id)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Legs returns the two transactions owned by a transfer.
func (s *TransferService) Legs(ctx context.Context, transferID int64) ([]core.Transaction, error) {
	legs, err := s.store.ListByTransferID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if len(legs) == 0 {
		return nil, core.ErrTransferNotFound
	}
	return legs, nil
}

// List returns transfers for the user's accounts.
func (s *TransferService) List(ctx context.Context, userID int64) ([]core.Transfer, error) {
	return s.store.ListTransfers(ctx, userID)
}

func transferLegDescription(base, description string) string {
	if description == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, description)
}
