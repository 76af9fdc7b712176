package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"plata/internal/core"

	"github.com/shopspring/decimal"
)

func (q *Queries) InsertRate(ctx context.Context, from, to string, rate decimal.Decimal, date time.Time) (core.ExchangeRate, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO exchange_rates (currency_from, currency_to, rate, date, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		from, to, rate.String(), date, time.Now().UTC())
	if err != nil {
		return core.ExchangeRate{}, fmt.Errorf("insert rate: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.ExchangeRate{}, fmt.Errorf("rate id: %w", err)
	}
	return core.ExchangeRate{ID: id, CurrencyFrom: from, CurrencyTo: to, Rate: rate, Date: date}, nil
}

// LatestRate returns the newest stored rate for the pair.
func (q *Queries) LatestRate(ctx context.Context, from, to string) (core.ExchangeRate, error) {
	var r core.ExchangeRate
	var rate string
	err := q.db.QueryRowContext(ctx, `
		SELECT id, currency_from, currency_to, rate, date FROM exchange_rates
		WHERE currency_from = ? AND currency_to = ?
		ORDER BY date DESC, id DESC LIMIT 1`, from, to).
		Scan(&r.ID, &r.CurrencyFrom, &r.CurrencyTo, &rate, &r.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExchangeRate{}, core.ErrRateNotFound
	}
	if err != nil {
		return core.ExchangeRate{}, fmt.Errorf("latest rate: %w", err)
	}
	if r.Rate, err = decimal.NewFromString(rate); err != nil {
		return core.ExchangeRate{}, fmt.Errorf("parse rate %q: %w", rate, err)
	}
	return r, nil
}
