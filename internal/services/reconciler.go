package services

import (
	"context"
	"fmt"
	"log/slog"

	"plata/internal/amqp"
	"plata/internal/core"
	"plata/internal/storage"
)

// Reconciler is the independent repair tool: it recomputes every cached
// balance from the transaction log and overwrites the cache. It exists
// because cached balances can drift (historic deletes, crashed batches) and
// the log, not the cache, is the source of truth.
type Reconciler struct {
	store  *storage.Store
	events *amqp.Client // optional
}

func NewReconciler(store *storage.Store, events *amqp.Client) *Reconciler {
	return &Reconciler{store: store, events: events}
}

// AccountDrift is one repaired account in a reconcile report.
type AccountDrift struct {
	AccountID int64
	Name      string
	Before    core.Money
	After     core.Money
}

func (d AccountDrift) Delta() core.Money {
	return core.Money{Cents: d.After.Cents - d.Before.Cents}
}

// ReconcileReport summarizes one RecomputeAll run.
type ReconcileReport struct {
	Checked int
	Updated []AccountDrift
}

// RecomputeAll overwrites every live account's cached balance with the sum
// of its surviving top-level transactions. The whole run is one commit. It
// is idempotent: a second run immediately after finds nothing to repair.
func (r *Reconciler) RecomputeAll(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	err := r.store.WithTx(ctx, func(q *storage.Queries) error {
		accounts, err := q.ListAllAccounts(ctx)
		if err != nil {
			return err
		}
		report.Checked = len(accounts)

		for _, account := range accounts {
			sum, err := q.SumTopLevelTransactions(ctx, account.ID)
			if err != nil {
				return fmt.Errorf("account %d: %w", account.ID, err)
			}
			if sum == account.Balance.Cents {
				continue
			}

			if err := q.SetBalance(ctx, account.ID, sum); err != nil {
				return fmt.Errorf("account %d: %w", account.ID, err)
			}
			report.Updated = append(report.Updated, AccountDrift{
				AccountID: account.ID,
				Name:      account.Name,
				Before:    account.Balance,
				After:     core.Money{Cents: sum},
			})
		}
		return nil
	})
	if err != nil {
		return ReconcileReport{}, err
	}

	for _, drift := range report.Updated {
		slog.InfoContext(ctx, "Account balance repaired",
			"account_id", drift.AccountID,
			"name", drift.Name,
			"before_cents", drift.Before.Cents,
			"after_cents", drift.After.Cents,
			"delta_cents", drift.Delta().Cents)
	}
	slog.InfoContext(ctx, "Reconciliation complete",
		"checked", report.Checked,
		"updated", len(report.Updated))

	if r.events != nil {
		if err := r.events.PublishEvent(ctx, amqp.NewLedgerEvent(amqp.EventReconcileCompleted, int64(len(report.Updated)), 0)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish reconcile event", "error", err)
		}
	}

	return report, nil
}
