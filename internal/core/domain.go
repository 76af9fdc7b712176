package core

import (
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const (
	AccountCash       AccountType = "cash"
	AccountBank       AccountType = "bank"
	AccountCredit     AccountType = "credit"
	AccountInvestment AccountType = "investment"
)

const (
	AssetStock  AssetType = "stock"
	AssetETF    AssetType = "etf"
	AssetCrypto AssetType = "crypto"
	AssetBond   AssetType = "bond"
	AssetFund   AssetType = "fund"
)

const (
	Daily    Frequency = "daily"
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
	Monthly  Frequency = "monthly"
	Yearly   Frequency = "yearly"
)

const (
	CategoryExpense CategoryType = "expense"
	CategoryIncome  CategoryType = "income"
)

const (
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

// MaxAnchorDay caps the monthly day-of-month anchor. Days 29-31 collapse to
// 28 so the anchor exists in every month.
const MaxAnchorDay = 28

type (
	AccountType  string
	AssetType    string
	Frequency    string
	CategoryType string
	BudgetPeriod string

	// Account holds a cached balance derived from its transactions. The
	// transaction log is the source of truth; the cache exists for cheap
	// reads and is repaired by the reconciler.
	Account struct {
		ID           int64
		UserID       int64
		Name         string
		Type         AccountType
		Institution  string
		CurrencyCode string
		Balance      Money
		CreatedAt    time.Time
		UpdatedAt    time.Time
		DeletedAt    *time.Time
	}

	// Transaction is a single signed ledger entry. Positive amounts are
	// income, negative are expenses. A non-nil ParentID marks a split child
	// that never moves the account balance; a non-nil TransferID marks a
	// transfer leg.
	Transaction struct {
		ID          int64
		AccountID   int64
		Amount      Money
		Description string
		Date        time.Time
		CategoryID  *int64
		ParentID    *int64
		TransferID  *int64
		CreatedAt   time.Time
		UpdatedAt   time.Time
		DeletedAt   *time.Time
	}

	// Transfer is an atomic two-legged money movement. It always owns
	// exactly two transactions tagged with its id: -Amount on the source
	// account and +Amount on the destination. Transfers are never mutated
	// after creation.
	Transfer struct {
		ID            int64
		FromAccountID int64
		ToAccountID   int64
		Amount        Money
		Date          time.Time
		Description   string
		CreatedAt     time.Time
	}

	// Investment is one holding per (account, symbol) tracked at weighted
	// average cost. AvgBuyPrice changes only on buys, never on sells.
	Investment struct {
		ID          int64
		AccountID   int64
		Symbol      string
		Name        string
		AssetType   AssetType
		Quantity    decimal.Decimal
		AvgBuyPrice decimal.Decimal
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// PricePoint is an append-only trade-price event for an investment,
	// used as its last-known valuation.
	PricePoint struct {
		ID           int64
		InvestmentID int64
		Price        decimal.Decimal
		Date         time.Time
	}

	// RecurringTransaction generates concrete transactions on a schedule.
	// NextDue is monotonically non-decreasing across generations.
	RecurringTransaction struct {
		ID            int64
		UserID        int64
		AccountID     int64
		CategoryID    *int64
		Name          string
		Amount        Money
		Description   string
		Frequency     Frequency
		DayOfMonth    int
		StartDate     time.Time
		EndDate       *time.Time
		LastGenerated *time.Time
		NextDue       *time.Time
		IsActive      bool
		DeletedAt     *time.Time
	}

	Category struct {
		ID        int64
		UserID    int64
		Name      string
		Type      CategoryType
		DeletedAt *time.Time
	}

	// Budget caps spending for one category over a rolling period. At most
	// one budget exists per (user, category, period).
	Budget struct {
		ID         int64
		UserID     int64
		CategoryID int64
		Amount     Money
		Period     BudgetPeriod
		StartDate  time.Time
		EndDate    *time.Time
		CreatedAt  time.Time
	}

	// SavingsGoal tracks progress toward a target amount. CurrentAmount is
	// maintained by the user, not derived from transactions.
	SavingsGoal struct {
		ID            int64
		UserID        int64
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		TargetDate    *time.Time
		Icon          string
		Color         string
		IsActive      bool
		CreatedAt     time.Time
		DeletedAt     *time.Time
	}

	// ExchangeRate is a stored conversion rate; the newest row per pair is
	// the effective rate. Rates are imported, never fetched live.
	ExchangeRate struct {
		ID           int64
		CurrencyFrom string
		CurrencyTo   string
		Rate         decimal.Decimal
		Date         time.Time
	}
)

// TotalCost returns quantity times average buy price.
func (i Investment) TotalCost() decimal.Decimal {
	return i.Quantity.Mul(i.AvgBuyPrice)
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountCash, AccountBank, AccountCredit, AccountInvestment:
		return true
	}
	return false
}

func (t AssetType) Valid() bool {
	switch t {
	case AssetStock, AssetETF, AssetCrypto, AssetBond, AssetFund:
		return true
	}
	return false
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Biweekly, Monthly, Yearly:
		return true
	}
	return false
}

func (t CategoryType) Valid() bool {
	return t == CategoryExpense || t == CategoryIncome
}

func (p BudgetPeriod) Valid() bool {
	return p == PeriodMonthly || p == PeriodYearly
}

// ValidCurrency reports whether code is a known ISO 4217 currency code.
func ValidCurrency(code string) bool {
	return money.GetCurrency(strings.ToUpper(code)) != nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.Name) > 100 {
		return ErrNameTooLong
	}
	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}
	if !ValidCurrency(a.CurrencyCode) {
		return ErrInvalidCurrency
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidCategoryType
	}
	return nil
}

func (b Budget) Validate() error {
	if b.CategoryID <= 0 {
		return ErrCategoryNotFound
	}
	if !b.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if len(g.Name) > 100 {
		return ErrNameTooLong
	}
	if !g.TargetAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Progress returns the saved share of the target as a percentage. It can
// exceed 100 when the goal is overfunded.
func (g SavingsGoal) Progress() float64 {
	if g.TargetAmount.Cents <= 0 {
		return 0
	}
	return float64(g.CurrentAmount.Cents) / float64(g.TargetAmount.Cents) * 100
}

// DaysRemaining returns the whole days until the target date, nil when no
// target date is set and zero when the date has passed.
func (g SavingsGoal) DaysRemaining(now time.Time) *int {
	if g.TargetDate == nil {
		return nil
	}
	days := int(g.TargetDate.Sub(now).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &days
}

func (r RecurringTransaction) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if r.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	if !r.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return ErrInvalidDayOfMonth
	}
	if r.StartDate.IsZero() {
		return ErrInvalidDate
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return ErrInvalidDateRange
	}
	return nil
}
