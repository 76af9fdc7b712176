package services

import (
	"context"
	"testing"

	"plata/internal/core"
)

func TestReconciler_RecomputeAll(t *testing.T) {
	store := newTestStore(t)
	txs := NewTransactionService(store, nil)
	reconciler := NewReconciler(store, nil)
	ledger := NewLedger(store)
	ctx := context.Background()

	healthy := newTestAccount(t, store, 1, "Healthy")
	drifted := newTestAccount(t, store, 1, "Drifted")

	for _, p := range []CreateTransactionParams{
		{AccountID: healthy.ID, Amount: core.Money{Cents: 10000}},
		{AccountID: drifted.ID, Amount: core.Money{Cents: 30000}},
		{AccountID: drifted.ID, Amount: core.Money{Cents: -5000}},
	} {
		if _, err := txs.Create(ctx, p); err != nil {
			t.Fatalf("seed transaction: %v", err)
		}
	}

	// Corrupt one cached balance behind the services' back.
	if err := store.SetBalance(ctx, drifted.ID, 999999); err != nil {
		t.Fatalf("corrupt balance: %v", err)
	}
	if ok, err := ledger.CheckInvariant(ctx, drifted.ID); err != nil || ok {
		t.Fatalf("CheckInvariant() = %v, %v, want false before repair", ok, err)
	}

	t.Run("repairs only drifted accounts", func(t *testing.T) {
		report, err := reconciler.RecomputeAll(ctx)
		if err != nil {
			t.Fatalf("RecomputeAll() error: %v", err)
		}
		if report.Checked != 2 {
			t.Errorf("checked = %d, want 2", report.Checked)
		}
		if len(report.Updated) != 1 {
			t.Fatalf("updated = %d accounts, want 1", len(report.Updated))
		}

		drift := report.Updated[0]
		if drift.AccountID != drifted.ID {
			t.Errorf("repaired account %d, want %d", drift.AccountID, drifted.ID)
		}
		if drift.Before.Cents != 999999 || drift.After.Cents != 25000 {
			t.Errorf("drift = %d -> %d, want 999999 -> 25000", drift.Before.Cents, drift.After.Cents)
		}
		if drift.Delta().Cents != 25000-999999 {
			t.Errorf("delta = %d", drift.Delta().Cents)
		}

		if got := accountBalance(t, store, drifted.ID); got != 25000 {
			t.Errorf("balance = %d, want 25000", got)
		}
		if got := accountBalance(t, store, healthy.ID); got != 10000 {
			t.Errorf("healthy balance touched: %d", got)
		}
	})

	t.Run("second run finds nothing", func(t *testing.T) {
		report, err := reconciler.RecomputeAll(ctx)
		if err != nil {
			t.Fatalf("RecomputeAll() error: %v", err)
		}
		if len(report.Updated) != 0 {
			t.Errorf("second run repaired %d accounts, want 0", len(report.Updated))
		}
	})

	t.Run("invariant holds after repair", func(t *testing.T) {
		for _, id := range []int64{healthy.ID, drifted.ID} {
			ok, err := ledger.CheckInvariant(ctx, id)
			if err != nil {
				t.Fatalf("CheckInvariant(%d) error: %v", id, err)
			}
			if !ok {
				t.Errorf("account %d inconsistent after reconcile", id)
			}
		}
	})
}

func TestReconciler_IgnoresDeletedAndChildRows(t *testing.T) {
	store := newTestStore(t)
	txs := NewTransactionService(store, nil)
	reconciler := NewReconciler(store, nil)
	ctx := context.Background()

	account := newTestAccount(t, store, 1, "Checking")

	if _, err := txs.Create(ctx, CreateTransactionParams{
		AccountID: account.ID, Amount: core.Money{Cents: 20000},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	doomed, err := txs.Create(ctx, CreateTransactionParams{
		AccountID: account.ID, Amount: core.Money{Cents: -7000},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := txs.SoftDelete(ctx, doomed.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := txs.CreateSplit(ctx,
		CreateTransactionParams{AccountID: account.ID, Amount: core.Money{Cents: -6000}},
		[]SplitSpec{
			{Amount: core.Money{Cents: -2000}},
			{Amount: core.Money{Cents: -4000}},
		}); err != nil {
		t.Fatalf("split: %v", err)
	}

	if err := store.SetBalance(ctx, account.ID, 0); err != nil {
		t.Fatalf("corrupt balance: %v", err)
	}

	if _, err := reconciler.RecomputeAll(ctx); err != nil {
		t.Fatalf("RecomputeAll() error: %v", err)
	}

	// 20000 (kept) + -6000 (split parent); deleted row and split children
	// must not count.
	if got := accountBalance(t, store, account.ID); got != 14000 {
		t.Errorf("balance = %d, want 14000", got)
	}
}
