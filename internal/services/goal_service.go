package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"plata/internal/core"
	"plata/internal/storage"
)

const (
	defaultGoalIcon  = "🎯"
	defaultGoalColor = "amber"
)

// GoalService manages savings goals. Goals live beside the ledger: their
// current amount is set by the user, never derived from transactions.
type GoalService struct {
	store *storage.Store
}

func NewGoalService(store *storage.Store) *GoalService {
	return &GoalService{store: store}
}

type SaveGoalParams struct {
	Name          string
	TargetAmount  core.Money
	CurrentAmount core.Money
	TargetDate    *time.Time
	Icon          string
	Color         string
	IsActive      bool
}

func (s *GoalService) Create(ctx context.Context, userID int64, p SaveGoalParams) (*core.SavingsGoal, error) {
	if p.Icon == "" {
		p.Icon = defaultGoalIcon
	}
	if p.Color == "" {
		p.Color = defaultGoalColor
	}

	goal := core.SavingsGoal{
		UserID:        userID,
		Name:          strings.TrimSpace(p.Name),
		TargetAmount:  p.TargetAmount,
		CurrentAmount: p.CurrentAmount,
		TargetDate:    p.TargetDate,
		Icon:          p.Icon,
		Color:         p.Color,
		IsActive:      p.IsActive,
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}

	created, err := s.store.CreateGoal(ctx, storage.CreateGoalParams{
		UserID:       userID,
		Name:         goal.Name,
		TargetCents:  goal.TargetAmount.Cents,
		CurrentCents: goal.CurrentAmount.Cents,
		TargetDate:   goal.TargetDate,
		Icon:         goal.Icon,
		Color:        goal.Color,
		IsActive:     goal.IsActive,
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Savings goal created",
		"id", created.ID,
		"name", created.Name,
		"target_cents", created.TargetAmount.Cents)

	return &created, nil
}

func (s *GoalService) Get(ctx context.Context, id int64) (*core.SavingsGoal, error) {
	g, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *GoalService) List(ctx context.Context, userID int64) ([]core.SavingsGoal, error) {
	return s.store.ListGoals(ctx, userID)
}

// Active returns the oldest active goal, the one a dashboard widget pins.
func (s *GoalService) Active(ctx context.Context, userID int64) (*core.SavingsGoal, error) {
	g, err := s.store.GetActiveGoal(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *GoalService) Update(ctx context.Context, id int64, p SaveGoalParams) (*core.SavingsGoal, error) {
	existing, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := existing
	updated.Name = strings.TrimSpace(p.Name)
	updated.TargetAmount = p.TargetAmount
	updated.CurrentAmount = p.CurrentAmount
	updated.TargetDate = p.TargetDate
	updated.IsActive = p.IsActive
	if p.Icon != "" {
		updated.Icon = p.Icon
	}
	if p.Color != "" {
		updated.Color = p.Color
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.UpdateGoal(ctx, storage.UpdateGoalParams{
		ID:           id,
		Name:         updated.Name,
		TargetCents:  updated.TargetAmount.Cents,
		CurrentCents: updated.CurrentAmount.Cents,
		TargetDate:   updated.TargetDate,
		Icon:         updated.Icon,
		Color:        updated.Color,
		IsActive:     updated.IsActive,
	}); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *GoalService) Delete(ctx context.Context, id int64) error {
	return s.store.SoftDeleteGoal(ctx, id)
}
