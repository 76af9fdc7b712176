package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"plata/internal/core"
)

func newTestCategory(t *testing.T, svc *AccountService, userID int64, name string) core.Category {
	t.Helper()
	category, err := svc.CreateCategory(context.Background(), userID, name, core.CategoryExpense)
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	return *category
}

func TestBudgetService_Create(t *testing.T) {
	store := newTestStore(t)
	accounts := NewAccountService(store)
	svc := NewBudgetService(store)
	category := newTestCategory(t, accounts, 1, "Groceries")
	ctx := context.Background()

	t.Run("defaults period and start date", func(t *testing.T) {
		budget, err := svc.Create(ctx, CreateBudgetParams{
			UserID:     1,
			CategoryID: category.ID,
			Amount:     core.Money{Cents: 50000},
		})
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		if budget.Period != core.PeriodMonthly {
			t.Errorf("period = %q, want monthly", budget.Period)
		}
		if budget.StartDate.IsZero() {
			t.Error("start date should default to now")
		}
	})

	t.Run("second budget for same category and period conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateBudgetParams{
			UserID:     1,
			CategoryID: category.ID,
			Amount:     core.Money{Cents: 70000},
			Period:     core.PeriodMonthly,
		})
		if !errors.Is(err, core.ErrBudgetExists) {
			t.Errorf("Create() error = %v, want ErrBudgetExists", err)
		}
	})

	t.Run("same category under a different period is fine", func(t *testing.T) {
		if _, err := svc.Create(ctx, CreateBudgetParams{
			UserID:     1,
			CategoryID: category.ID,
			Amount:     core.Money{Cents: 600000},
			Period:     core.PeriodYearly,
		}); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	})

	t.Run("category of another user is invisible", func(t *testing.T) {
		other := newTestCategory(t, accounts, 2, "Groceries")
		_, err := svc.Create(ctx, CreateBudgetParams{
			UserID:     1,
			CategoryID: other.ID,
			Amount:     core.Money{Cents: 10000},
		})
		if !errors.Is(err, core.ErrCategoryNotFound) {
			t.Errorf("Create() error = %v, want ErrCategoryNotFound", err)
		}
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name   string
			params CreateBudgetParams
			want   error
		}{
			{"zero amount", CreateBudgetParams{UserID: 1, CategoryID: category.ID}, core.ErrInvalidAmount},
			{"negative amount", CreateBudgetParams{UserID: 1, CategoryID: category.ID, Amount: core.Money{Cents: -100}}, core.ErrInvalidAmount},
			{"bad period", CreateBudgetParams{UserID: 1, CategoryID: category.ID, Amount: core.Money{Cents: 100}, Period: "weekly"}, core.ErrInvalidPeriod},
			{"missing category", CreateBudgetParams{UserID: 1, Amount: core.Money{Cents: 100}}, core.ErrCategoryNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := svc.Create(ctx, tt.params); !errors.Is(err, tt.want) {
					t.Errorf("Create() error = %v, want %v", err, tt.want)
				}
			})
		}
	})
}

func TestBudgetService_Status(t *testing.T) {
	store := newTestStore(t)
	accounts := NewAccountService(store)
	txs := NewTransactionService(store, nil)
	svc := NewBudgetService(store)
	account := newTestAccount(t, store, 1, "Checking")
	ctx := context.Background()

	groceries := newTestCategory(t, accounts, 1, "Groceries")
	dining := newTestCategory(t, accounts, 1, "Dining")
	travel := newTestCategory(t, accounts, 1, "Travel")

	mustBudget := func(categoryID, cents int64) {
		t.Helper()
		if _, err := svc.Create(ctx, CreateBudgetParams{
			UserID:     1,
			CategoryID: categoryID,
			Amount:     core.Money{Cents: cents},
		}); err != nil {
			t.Fatalf("create budget: %v", err)
		}
	}
	mustBudget(groceries.ID, 10000) // 100.00
	mustBudget(dining.ID, 5000)     // 50.00
	mustBudget(travel.ID, 20000)    // 200.00

	spend := func(categoryID int64, cents int64, when time.Time) {
		t.Helper()
		if _, err := txs.Create(ctx, CreateTransactionParams{
			AccountID:  account.ID,
			Amount:     core.Money{Cents: cents},
			Date:       when,
			CategoryID: &categoryID,
		}); err != nil {
			t.Fatalf("create transaction: %v", err)
		}
	}

	now := date(2026, 3, 15)
	spend(groceries.ID, -8500, date(2026, 3, 10)) // 85% of 100
	spend(dining.ID, -6000, date(2026, 3, 12))    // 120% of 50
	spend(travel.ID, -15000, date(2026, 2, 20))   // last month, ignored
	spend(travel.ID, 5000, date(2026, 3, 5))      // income never counts

	statuses, err := svc.Status(ctx, 1, now)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if len(statuses) != 3 {
		t.Fatalf("got %d statuses, want 3", len(statuses))
	}

	byCategory := make(map[int64]BudgetStatus)
	for _, st := range statuses {
		byCategory[st.CategoryID] = st
	}

	if st := byCategory[groceries.ID]; st.Actual != 8500 || st.Status != "warning" {
		t.Errorf("groceries status = %+v, want actual 8500 / warning", st)
	}
	if st := byCategory[dining.ID]; st.Actual != 6000 || st.Remaining != -1000 || st.Status != "over" {
		t.Errorf("dining status = %+v, want actual 6000 / remaining -1000 / over", st)
	}
	if st := byCategory[travel.ID]; st.Actual != 0 || st.Status != "good" {
		t.Errorf("travel status = %+v, want actual 0 / good", st)
	}
}

func TestBudgetService_UpdateAndDelete(t *testing.T) {
	store := newTestStore(t)
	accounts := NewAccountService(store)
	svc := NewBudgetService(store)
	category := newTestCategory(t, accounts, 1, "Groceries")
	ctx := context.Background()

	budget, err := svc.Create(ctx, CreateBudgetParams{
		UserID:     1,
		CategoryID: category.ID,
		Amount:     core.Money{Cents: 10000},
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	t.Run("update amount and period", func(t *testing.T) {
		updated, err := svc.Update(ctx, budget.ID, core.Money{Cents: 120000}, core.PeriodYearly)
		if err != nil {
			t.Fatalf("Update() error: %v", err)
		}
		if updated.Amount.Cents != 120000 || updated.Period != core.PeriodYearly {
			t.Errorf("updated budget = %+v", updated)
		}
		got, err := store.GetBudget(ctx, budget.ID)
		if err != nil {
			t.Fatalf("GetBudget() error: %v", err)
		}
		if got.Amount.Cents != 120000 || got.Period != core.PeriodYearly {
			t.Errorf("stored budget = %+v", got)
		}
	})

	t.Run("period change cannot collide with an existing budget", func(t *testing.T) {
		if _, err := svc.Create(ctx, CreateBudgetParams{
			UserID:     1,
			CategoryID: category.ID,
			Amount:     core.Money{Cents: 8000},
			Period:     core.PeriodMonthly,
		}); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		_, err := svc.Update(ctx, budget.ID, core.Money{Cents: 9000}, core.PeriodMonthly)
		if !errors.Is(err, core.ErrBudgetExists) {
			t.Errorf("Update() error = %v, want ErrBudgetExists", err)
		}
	})

	t.Run("delete removes the budget", func(t *testing.T) {
		if err := svc.Delete(ctx, budget.ID); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if err := svc.Delete(ctx, budget.ID); !errors.Is(err, core.ErrBudgetNotFound) {
			t.Errorf("second Delete() error = %v, want ErrBudgetNotFound", err)
		}
	})

	t.Run("update unknown id", func(t *testing.T) {
		_, err := svc.Update(ctx, 9999, core.Money{Cents: 100}, core.PeriodMonthly)
		if !errors.Is(err, core.ErrBudgetNotFound) {
			t.Errorf("Update() error = %v, want ErrBudgetNotFound", err)
		}
	})
}
