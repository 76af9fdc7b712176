package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"plata/internal/core"
	"plata/internal/storage"
)

// BudgetService manages per-category spending caps. Budgets are plans laid
// over the transaction log; they never move money.
type BudgetService struct {
	store *storage.Store
}

func NewBudgetService(store *storage.Store) *BudgetService {
	return &BudgetService{store: store}
}

type CreateBudgetParams struct {
	UserID     int64
	CategoryID int64
	Amount     core.Money
	Period     core.BudgetPeriod
	StartDate  time.Time
	EndDate    *time.Time
}

func (s *BudgetService) Create(ctx context.Context, p CreateBudgetParams) (*core.Budget, error) {
	if p.Period == "" {
		p.Period = core.PeriodMonthly
	}
	if p.StartDate.IsZero() {
		p.StartDate = time.Now().UTC()
	}

	budget := core.Budget{
		UserID:     p.UserID,
		CategoryID: p.CategoryID,
		Amount:     p.Amount,
		Period:     p.Period,
		StartDate:  p.StartDate,
		EndDate:    p.EndDate,
	}
	if err := budget.Validate(); err != nil {
		return nil, err
	}

	category, err := s.store.GetCategory(ctx, p.CategoryID)
	if err != nil {
		return nil, err
	}
	if category.UserID != p.UserID {
		return nil, core.ErrCategoryNotFound
	}

	_, err = s.store.GetBudgetForCategory(ctx, p.UserID, p.CategoryID, p.Period)
	if err == nil {
		return nil, core.ErrBudgetExists
	}
	if !errors.Is(err, core.ErrBudgetNotFound) {
		return nil, err
	}

	created, err := s.store.CreateBudget(ctx, storage.CreateBudgetParams{
		UserID:      p.UserID,
		CategoryID:  p.CategoryID,
		AmountCents: p.Amount.Cents,
		Period:      p.Period,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Budget created",
		"id", created.ID,
		"category_id", created.CategoryID,
		"period", string(created.Period))

	return &created, nil
}

func (s *BudgetService) List(ctx context.Context, userID int64) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx, userID)
}

func (s *BudgetService) Update(ctx context.Context, id int64, amount core.Money, period core.BudgetPeriod) (*core.Budget, error) {
	existing, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := existing
	updated.Amount = amount
	updated.Period = period
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if period != existing.Period {
		_, err := s.store.GetBudgetForCategory(ctx, existing.UserID, existing.CategoryID, period)
		if err == nil {
			return nil, core.ErrBudgetExists
		}
		if !errors.Is(err, core.ErrBudgetNotFound) {
			return nil, err
		}
	}

	if err := s.store.UpdateBudget(ctx, id, amount.Cents, period); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *BudgetService) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteBudget(ctx, id)
}

// BudgetStatus compares one budget against the actual spending in its
// category since the start of the current month.
type BudgetStatus struct {
	BudgetID    int64   `json:"budget_id"`
	CategoryID  int64   `json:"category_id"`
	Limit       int64   `json:"limit_cents"`
	Actual      int64   `json:"actual_cents"`
	Remaining   int64   `json:"remaining_cents"`
	Utilization float64 `json:"utilization"`
	Status      string  `json:"status"`
}

// Status reports every budget of the user against current-month spending.
// Utilization over 100 marks the budget blown, over 80 a warning.
func (s *BudgetService) Status(ctx context.Context, userID int64, now time.Time) ([]BudgetStatus, error) {
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		actual, err := s.store.SumCategoryExpenses(ctx, userID, b.CategoryID, monthStart)
		if err != nil {
			return nil, err
		}

		var utilization float64
		if b.Amount.Cents > 0 {
			utilization = float64(actual) / float64(b.Amount.Cents) * 100
		}
		status := "good"
		switch {
		case utilization > 100:
			status = "over"
		case utilization > 80:
			status = "warning"
		}

		statuses = append(statuses, BudgetStatus{
			BudgetID:    b.ID,
			CategoryID:  b.CategoryID,
			Limit:       b.Amount.Cents,
			Actual:      actual,
			Remaining:   b.Amount.Cents - actual,
			Utilization: utilization,
			Status:      status,
		})
	}
	return statuses, nil
}
