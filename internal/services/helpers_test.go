package services

import (
	"context"
	"path/filepath"
	"testing"

	"plata/internal/core"
	"plata/internal/storage"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestAccount(t *testing.T, store *storage.Store, userID int64, name string) core.Account {
	t.Helper()
	account, err := store.CreateAccount(context.Background(), storage.CreateAccountParams{
		UserID:       userID,
		Name:         name,
		Type:         core.AccountBank,
		CurrencyCode: "COP",
	})
	if err != nil {
		t.Fatalf("create test account: %v", err)
	}
	return account
}

func accountBalance(t *testing.T, store *storage.Store, id int64) int64 {
	t.Helper()
	account, err := store.GetAccount(context.Background(), id)
	if err != nil {
		t.Fatalf("get account %d: %v", id, err)
	}
	return account.Balance.Cents
}
