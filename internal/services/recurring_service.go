package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"plata/internal/core"
	"plata/internal/storage"
)

// RecurringService computes due dates and generates transactions from
// recurring definitions. It is a synchronous, externally triggered tick:
// callers (a cron binary, an API call, a test) invoke ProcessAll on demand.
type RecurringService struct {
	store *storage.Store
	txs   *TransactionService
}

func NewRecurringService(store *storage.Store, txs *TransactionService) *RecurringService {
	return &RecurringService{store: store, txs: txs}
}

// ComputeNextDue advances from the last generation (or the start date if
// nothing was ever generated) by one frequency step. Monthly schedules
// anchor on day-of-month clamped to 28 so the anchor exists in February too.
func ComputeNextDue(r core.RecurringTransaction) time.Time {
	base := r.StartDate
	if r.LastGenerated != nil {
		base = *r.LastGenerated
	}

	switch r.Frequency {
	case core.Daily:
		return base.AddDate(0, 0, 1)
	case core.Weekly:
		return base.AddDate(0, 0, 7)
	case core.Biweekly:
		return base.AddDate(0, 0, 14)
	case core.Yearly:
		return base.AddDate(1, 0, 0)
	default: // monthly
		day := r.DayOfMonth
		if day > core.MaxAnchorDay {
			day = core.MaxAnchorDay
		}
		year, month, _ := base.Date()
		return time.Date(year, month+1, day, 0, 0, 0, 0, base.Location())
	}
}

// FirstDue returns the initial next_due for a new definition: the start
// date, with monthly schedules snapped to the clamped anchor day.
func FirstDue(r core.RecurringTransaction) time.Time {
	if r.Frequency != core.Monthly {
		return r.StartDate
	}
	day := r.DayOfMonth
	if day > core.MaxAnchorDay {
		day = core.MaxAnchorDay
	}
	year, month, _ := r.StartDate.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, r.StartDate.Location())
}

// ShouldGenerate reports whether a definition is due at the given instant.
func ShouldGenerate(r core.RecurringTransaction, now time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.EndDate != nil && now.After(*r.EndDate) {
		return false
	}
	if r.NextDue != nil && now.Before(*r.NextDue) {
		return false
	}
	return true
}

// RecurringReport summarizes one ProcessAll tick. FailedIDs lists the
// definitions whose generation failed and was skipped.
type RecurringReport struct {
	Generated   int
	Deactivated int
	FailedIDs   []int64
}

// ProcessAll generates a transaction for every due, active definition of
// the user. Each definition commits independently: a failure is recorded in
// the report and does not abort the remaining items. Definitions whose end
// date has passed are deactivated without generating.
func (s *RecurringService) ProcessAll(ctx context.Context, userID int64, now time.Time) (RecurringReport, error) {
	due, err := s.store.ListDueRecurring(ctx, userID, now)
	if err != nil {
		return RecurringReport{}, fmt.Errorf("list due recurring: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring transactions",
		"user_id", userID,
		"due", len(due),
		"now", now.Format("2006-01-02"))

	var report RecurringReport
	for _, rec := range due {
		if rec.EndDate != nil && now.After(*rec.EndDate) {
			if err := s.store.SetRecurringActive(ctx, rec.ID, false); err != nil {
				slog.ErrorContext(ctx, "Failed to deactivate expired recurring",
					"id", rec.ID, "error", err)
				report.FailedIDs = append(report.FailedIDs, rec.ID)
				continue
			}
			report.Deactivated++
			slog.InfoContext(ctx, "Recurring definition expired and deactivated", "id", rec.ID)
			continue
		}

		if err := s.generate(ctx, rec, now); err != nil {
			slog.ErrorContext(ctx, "Failed to generate recurring transaction",
				"id", rec.ID, "name", rec.Name, "error", err)
			report.FailedIDs = append(report.FailedIDs, rec.ID)
			continue
		}
		report.Generated++
	}

	slog.InfoContext(ctx, "Recurring processing complete",
		"user_id", userID,
		"generated", report.Generated,
		"deactivated", report.Deactivated,
		"failed", len(report.FailedIDs))

	return report, nil
}

// ProcessAllUsers runs ProcessAll for every user with live definitions,
// merging the per-user reports.
func (s *RecurringService) ProcessAllUsers(ctx context.Context, now time.Time) (RecurringReport, error) {
	users, err := s.store.ListActiveRecurringUsers(ctx)
	if err != nil {
		return RecurringReport{}, fmt.Errorf("list recurring users: %w", err)
	}

	var total RecurringReport
	for _, userID := range users {
		report, err := s.ProcessAll(ctx, userID, now)
		if err != nil {
			slog.ErrorContext(ctx, "Recurring processing failed for user",
				"user_id", userID, "error", err)
			continue
		}
		total.Generated += report.Generated
		total.Deactivated += report.Deactivated
		total.FailedIDs = append(total.FailedIDs, report.FailedIDs...)
	}
	return total, nil
}

// generate creates the concrete transaction and advances the schedule in
// one commit, keeping next_due monotonically non-decreasing.
func (s *RecurringService) generate(ctx context.Context, rec core.RecurringTransaction, now time.Time) error {
	date := now
	if rec.NextDue != nil {
		date = *rec.NextDue
	}

	description := "[Recurring] " + rec.Name
	if rec.Description != "" {
		description += " - " + rec.Description
	}

	return s.store.WithTx(ctx, func(q *storage.Queries) error {
		_, err := createTransaction(ctx, q, CreateTransactionParams{
			AccountID:   rec.AccountID,
			Amount:      rec.Amount,
			Description: description,
			Date:        date,
			CategoryID:  rec.CategoryID,
		})
		if err != nil {
			return err
		}

		generated := rec
		generated.LastGenerated = &now
		return q.MarkGenerated(ctx, rec.ID, now, ComputeNextDue(generated))
	})
}

// CreateRecurringParams describes a new recurring definition.
type CreateRecurringParams struct {
	UserID      int64
	AccountID   int64
	CategoryID  *int64
	Name        string
	Amount      core.Money
	Description string
	Frequency   core.Frequency
	DayOfMonth  int
	StartDate   time.Time
	EndDate     *time.Time
}

// Create validates and stores a definition, computing its first due date.
func (s *RecurringService) Create(ctx context.Context, p CreateRecurringParams) (*core.RecurringTransaction, error) {
	rec := core.RecurringTransaction{
		UserID:      p.UserID,
		AccountID:   p.AccountID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Amount:      p.Amount,
		Description: p.Description,
		Frequency:   p.Frequency,
		DayOfMonth:  p.DayOfMonth,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		IsActive:    true,
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetAccount(ctx, p.AccountID); err != nil {
		return nil, err
	}

	firstDue := FirstDue(rec)
	created, err := s.store.CreateRecurring(ctx, storage.CreateRecurringParams{
		UserID:      p.UserID,
		AccountID:   p.AccountID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		AmountCents: p.Amount.Cents,
		Description: p.Description,
		Frequency:   p.Frequency,
		DayOfMonth:  p.DayOfMonth,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		NextDue:     &firstDue,
		IsActive:    true,
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Recurring definition created",
		"id", created.ID,
		"name", created.Name,
		"frequency", created.Frequency,
		"next_due", firstDue.Format("2006-01-02"))

	return &created, nil
}

// UpdateRecurringParams describes an edit to an existing definition. Zero
// values are applied as-is; the schedule anchors (start date, user, account)
// never change.
type UpdateRecurringParams struct {
	CategoryID  *int64
	Name        string
	Amount      core.Money
	Description string
	Frequency   core.Frequency
	DayOfMonth  int
	EndDate     *time.Time
}

// Update edits a definition and recomputes its next due date under the new
// schedule. Past generations are untouched.
func (s *RecurringService) Update(ctx context.Context, id int64, p UpdateRecurringParams) (*core.RecurringTransaction, error) {
	existing, err := s.store.GetRecurring(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := existing
	updated.CategoryID = p.CategoryID
	updated.Name = p.Name
	updated.Amount = p.Amount
	updated.Description = p.Description
	updated.Frequency = p.Frequency
	updated.DayOfMonth = p.DayOfMonth
	updated.EndDate = p.EndDate
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	nextDue := ComputeNextDue(updated)
	if updated.LastGenerated == nil {
		nextDue = FirstDue(updated)
	}
	updated.NextDue = &nextDue

	if err := s.store.UpdateRecurring(ctx, storage.UpdateRecurringParams{
		ID:          id,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		AmountCents: p.Amount.Cents,
		Description: p.Description,
		Frequency:   p.Frequency,
		DayOfMonth:  p.DayOfMonth,
		EndDate:     p.EndDate,
		NextDue:     &nextDue,
	}); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Recurring definition updated",
		"id", id,
		"name", updated.Name,
		"next_due", nextDue.Format("2006-01-02"))

	return &updated, nil
}

// Get returns a live definition by id.
func (s *RecurringService) Get(ctx context.Context, id int64) (*core.RecurringTransaction, error) {
	rec, err := s.store.GetRecurring(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns the user's live definitions ordered by due date.
func (s *RecurringService) List(ctx context.Context, userID int64) ([]core.RecurringTransaction, error) {
	return s.store.ListRecurring(ctx, userID)
}

// UpcomingWindow is how far ahead Upcoming looks for due definitions.
const UpcomingWindow = 30 * 24 * time.Hour

// Upcoming returns the user's active definitions due within the next
// thirty days, soonest first.
func (s *RecurringService) Upcoming(ctx context.Context, userID int64, now time.Time) ([]core.RecurringTransaction, error) {
	return s.store.ListUpcomingRecurring(ctx, userID, now, now.Add(UpcomingWindow))
}

// Deactivate stops future generation without deleting the definition.
func (s *RecurringService) Deactivate(ctx context.Context, id int64) error {
	return s.store.SetRecurringActive(ctx, id, false)
}

// Delete soft-deletes a definition; already-generated transactions remain.
func (s *RecurringService) Delete(ctx context.Context, id int64) error {
	return s.store.SoftDeleteRecurring(ctx, id)
}
