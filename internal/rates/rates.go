// Package rates resolves stored exchange rates with a TTL cache in front of
// the database. Rates are imported by an external process; nothing here
// fetches live market data.
package rates

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"plata/internal/core"
	"plata/internal/storage"

	"github.com/shopspring/decimal"
)

type Service struct {
	store *storage.Store
	cache *rateCache
}

// New initializes the rate service. ttl bounds how stale a cached rate may
// be served.
func New(store *storage.Store, ttl time.Duration) *Service {
	return &Service{
		store: store,
		cache: newRateCache(ttl),
	}
}

// Latest returns the newest stored rate for the pair, cached up to the TTL.
// Identical currencies resolve to 1 without touching storage.
func (s *Service) Latest(ctx context.Context, from, to string) (core.ExchangeRate, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if !core.ValidCurrency(from) || !core.ValidCurrency(to) {
		return core.ExchangeRate{}, core.ErrInvalidCurrency
	}
	if from == to {
		return core.ExchangeRate{CurrencyFrom: from, CurrencyTo: to, Rate: decimal.NewFromInt(1)}, nil
	}

	key := from + "/" + to
	if rate, ok := s.cache.get(key); ok {
		return rate, nil
	}

	rate, err := s.store.LatestRate(ctx, from, to)
	if err != nil {
		return core.ExchangeRate{}, err
	}
	s.cache.set(key, rate)

	slog.DebugContext(ctx, "Exchange rate resolved",
		"from", from, "to", to, "rate", rate.Rate.String())
	return rate, nil
}

// Convert applies the latest rate to an amount.
func (s *Service) Convert(ctx context.Context, amount core.Money, from, to string) (core.Money, error) {
	rate, err := s.Latest(ctx, from, to)
	if err != nil {
		return core.Money{}, err
	}
	return core.MoneyFromDecimal(amount.Decimal().Mul(rate.Rate)), nil
}

// Import stores a new rate and expires the cache so subsequent lookups see
// it immediately.
func (s *Service) Import(ctx context.Context, from, to string, rate decimal.Decimal, date time.Time) (core.ExchangeRate, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if !core.ValidCurrency(from) || !core.ValidCurrency(to) {
		return core.ExchangeRate{}, core.ErrInvalidCurrency
	}
	if !rate.IsPositive() {
		return core.ExchangeRate{}, core.ErrInvalidAmount
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	stored, err := s.store.InsertRate(ctx, from, to, rate, date)
	if err != nil {
		return core.ExchangeRate{}, err
	}
	s.cache.expire()

	slog.InfoContext(ctx, "Exchange rate imported",
		"from", from, "to", to, "rate", rate.String())
	return stored, nil
}

// Refresh drops all cached rates.
func (s *Service) Refresh() {
	s.cache.expire()
}
