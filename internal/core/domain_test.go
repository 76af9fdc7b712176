package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAccountValidate(t *testing.T) {
	valid := Account{Name: "Checking", Type: AccountBank, CurrencyCode: "COP"}

	tests := []struct {
		name    string
		mutate  func(a *Account)
		wantErr error
	}{
		{"valid", func(a *Account) {}, nil},
		{"empty name", func(a *Account) { a.Name = "  " }, ErrEmptyName},
		{"name too long", func(a *Account) { a.Name = strings.Repeat("x", 101) }, ErrNameTooLong},
		{"bad type", func(a *Account) { a.Type = "savings" }, ErrInvalidAccountType},
		{"bad currency", func(a *Account) { a.CurrencyCode = "XXX1" }, ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.mutate(&a)
			if err := a.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecurringValidate(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	before := start.AddDate(0, 0, -1)
	valid := RecurringTransaction{
		Name:       "Rent",
		Amount:     Money{Cents: -150000},
		Frequency:  Monthly,
		DayOfMonth: 1,
		StartDate:  start,
	}

	tests := []struct {
		name    string
		mutate  func(r *RecurringTransaction)
		wantErr error
	}{
		{"valid", func(r *RecurringTransaction) {}, nil},
		{"empty name", func(r *RecurringTransaction) { r.Name = "" }, ErrEmptyName},
		{"zero amount", func(r *RecurringTransaction) { r.Amount = Money{} }, ErrInvalidAmount},
		{"bad frequency", func(r *RecurringTransaction) { r.Frequency = "hourly" }, ErrInvalidFrequency},
		{"day zero", func(r *RecurringTransaction) { r.DayOfMonth = 0 }, ErrInvalidDayOfMonth},
		{"day 32", func(r *RecurringTransaction) { r.DayOfMonth = 32 }, ErrInvalidDayOfMonth},
		{"no start date", func(r *RecurringTransaction) { r.StartDate = time.Time{} }, ErrInvalidDate},
		{"end before start", func(r *RecurringTransaction) { r.EndDate = &before }, ErrInvalidDateRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			if err := r.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidCurrency(t *testing.T) {
	for _, code := range []string{"COP", "USD", "EUR", "cop"} {
		if !ValidCurrency(code) {
			t.Errorf("ValidCurrency(%q) = false, want true", code)
		}
	}
	for _, code := range []string{"", "XX", "NOPE"} {
		if ValidCurrency(code) {
			t.Errorf("ValidCurrency(%q) = true, want false", code)
		}
	}
}

func TestFrequencyValid(t *testing.T) {
	for _, f := range []Frequency{Daily, Weekly, Biweekly, Monthly, Yearly} {
		if !f.Valid() {
			t.Errorf("Frequency(%q).Valid() = false", f)
		}
	}
	if Frequency("hourly").Valid() {
		t.Error("Frequency(hourly).Valid() = true, want false")
	}
}

func TestErrorClassifiers(t *testing.T) {
	if !IsValidation(ErrSplitMismatch) || !IsValidation(ErrSameAccount) {
		t.Error("validation errors not classified")
	}
	if !IsNotFound(ErrAccountNotFound) || IsNotFound(ErrInvalidAmount) {
		t.Error("not-found classification wrong")
	}
	if !IsConflict(ErrInsufficientHoldings) || !IsConflict(ErrTransferImmutable) || !IsConflict(ErrBudgetExists) {
		t.Error("conflict errors not classified")
	}
	if IsValidation(ErrInsufficientHoldings) || IsConflict(ErrInvalidAmount) {
		t.Error("classifiers overlap")
	}
}

func TestBudgetValidate(t *testing.T) {
	valid := Budget{CategoryID: 1, Amount: Money{Cents: 10000}, Period: PeriodMonthly}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Budget)
		want   error
	}{
		{"missing category", func(b *Budget) { b.CategoryID = 0 }, ErrCategoryNotFound},
		{"zero amount", func(b *Budget) { b.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(b *Budget) { b.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"bad period", func(b *Budget) { b.Period = "weekly" }, ErrInvalidPeriod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid
			tt.mutate(&b)
			if err := b.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSavingsGoalValidate(t *testing.T) {
	valid := SavingsGoal{Name: "Emergency fund", TargetAmount: Money{Cents: 100000}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*SavingsGoal)
		want   error
	}{
		{"empty name", func(g *SavingsGoal) { g.Name = "  " }, ErrEmptyName},
		{"zero target", func(g *SavingsGoal) { g.TargetAmount = Money{} }, ErrInvalidAmount},
		{"negative current", func(g *SavingsGoal) { g.CurrentAmount = Money{Cents: -1} }, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := valid
			tt.mutate(&g)
			if err := g.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSavingsGoalProgress(t *testing.T) {
	g := SavingsGoal{TargetAmount: Money{Cents: 100000}, CurrentAmount: Money{Cents: 25000}}
	if got := g.Progress(); got != 25 {
		t.Errorf("Progress() = %v, want 25", got)
	}
	g.CurrentAmount = Money{Cents: 150000}
	if got := g.Progress(); got != 150 {
		t.Errorf("overfunded Progress() = %v, want 150", got)
	}
	if got := (SavingsGoal{}).Progress(); got != 0 {
		t.Errorf("zero-target Progress() = %v, want 0", got)
	}
}

func TestSavingsGoalDaysRemaining(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	if got := (SavingsGoal{}).DaysRemaining(now); got != nil {
		t.Errorf("DaysRemaining() without target date = %v, want nil", got)
	}

	future := time.Date(2026, 6, 11, 0, 0, 0, 0, time.UTC)
	g := SavingsGoal{TargetDate: &future}
	if got := g.DaysRemaining(now); got == nil || *got != 10 {
		t.Errorf("DaysRemaining() = %v, want 10", got)
	}

	past := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	g.TargetDate = &past
	if got := g.DaysRemaining(now); got == nil || *got != 0 {
		t.Errorf("past DaysRemaining() = %v, want 0", got)
	}
}
