package core

import "errors"

// Validation failures. Detected before any write; a call that returns one of
// these has had no side effects.
var (
	ErrEmptyName           = errors.New("empty name")
	ErrNameTooLong         = errors.New("name too long (max 100 characters)")
	ErrInvalidAccountType  = errors.New("invalid account type")
	ErrInvalidCategoryType = errors.New("invalid category type")
	ErrInvalidCurrency     = errors.New("invalid currency code")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidTrade        = errors.New("invalid quantity or price")
	ErrInvalidFrequency    = errors.New("invalid frequency")
	ErrInvalidDayOfMonth   = errors.New("day of month must be between 1 and 31")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidDateRange    = errors.New("end date must not precede start date")
	ErrSplitMismatch       = errors.New("split amounts do not sum to parent amount")
	ErrSameAccount         = errors.New("transfer accounts must differ")
	ErrInvalidPeriod       = errors.New("invalid budget period")
)

// Lookup failures.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransferNotFound    = errors.New("transfer not found")
	ErrInvestmentNotFound  = errors.New("investment not found")
	ErrRecurringNotFound   = errors.New("recurring transaction not found")
	ErrRateNotFound        = errors.New("exchange rate not found")
	ErrBudgetNotFound      = errors.New("budget not found")
	ErrGoalNotFound        = errors.New("savings goal not found")
)

// Domain conflicts.
var (
	// ErrInsufficientHoldings means a sell exceeds the current position.
	// The failed sell leaves position, cash and price history untouched.
	ErrInsufficientHoldings = errors.New("insufficient holdings")

	// ErrTransferImmutable rejects direct mutation of a transfer leg.
	ErrTransferImmutable = errors.New("transfer legs cannot be modified individually")

	// ErrBudgetExists rejects a second budget for the same category and
	// period; update the existing one instead.
	ErrBudgetExists = errors.New("budget for this category and period already exists")
)

var validationErrors = []error{
	ErrEmptyName, ErrNameTooLong, ErrInvalidAccountType, ErrInvalidCategoryType,
	ErrInvalidCurrency, ErrInvalidAmount, ErrInvalidTrade, ErrInvalidFrequency,
	ErrInvalidDayOfMonth, ErrInvalidDate, ErrInvalidDateRange, ErrSplitMismatch,
	ErrSameAccount, ErrInvalidPeriod,
}

var notFoundErrors = []error{
	ErrAccountNotFound, ErrCategoryNotFound, ErrTransactionNotFound,
	ErrTransferNotFound, ErrInvestmentNotFound, ErrRecurringNotFound,
	ErrRateNotFound, ErrBudgetNotFound, ErrGoalNotFound,
}

// IsValidation reports whether err is a fail-fast validation error.
func IsValidation(err error) bool {
	for _, e := range validationErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err is a missing-entity error.
func IsNotFound(err error) bool {
	for _, e := range notFoundErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// IsConflict reports whether err is a domain conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrInsufficientHoldings) ||
		errors.Is(err, ErrTransferImmutable) ||
		errors.Is(err, ErrBudgetExists)
}
