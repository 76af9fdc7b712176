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

// Quantities and prices are persisted as decimal strings so nothing ever
// rounds through binary floating point.

type CreateInvestmentParams struct {
	AccountID   int64
	Symbol      string
	Name        string
	AssetType   core.AssetType
	Quantity    decimal.Decimal
	AvgBuyPrice decimal.Decimal
}

func (q *Queries) CreateInvestment(ctx context.Context, p CreateInvestmentParams) (core.Investment, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO investments (account_id, symbol, name, asset_type, quantity, avg_buy_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.AccountID, p.Symbol, p.Name, string(p.AssetType), p.Quantity.String(), p.AvgBuyPrice.String(), now, now)
	if err != nil {
		return core.Investment{}, fmt.Errorf("insert investment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Investment{}, fmt.Errorf("investment id: %w", err)
	}
	return core.Investment{
		ID:          id,
		AccountID:   p.AccountID,
		Symbol:      p.Symbol,
		Name:        p.Name,
		AssetType:   p.AssetType,
		Quantity:    p.Quantity,
		AvgBuyPrice: p.AvgBuyPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

const investmentColumns = `id, account_id, symbol, name, asset_type, quantity, avg_buy_price, created_at, updated_at`

func scanInvestment(row interface{ Scan(...any) error }) (core.Investment, error) {
	var inv core.Investment
	var assetType, quantity, avgPrice string
	err := row.Scan(&inv.ID, &inv.AccountID, &inv.Symbol, &inv.Name, &assetType,
		&quantity, &avgPrice, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return core.Investment{}, err
	}
	inv.AssetType = core.AssetType(assetType)
	if inv.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return core.Investment{}, fmt.Errorf("parse quantity %q: %w", quantity, err)
	}
	if inv.AvgBuyPrice, err = decimal.NewFromString(avgPrice); err != nil {
		return core.Investment{}, fmt.Errorf("parse avg price %q: %w", avgPrice, err)
	}
	return inv, nil
}

// GetInvestmentBySymbol returns the holding for (account, symbol).
func (q *Queries) GetInvestmentBySymbol(ctx context.Context, accountID int64, symbol string) (core.Investment, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+investmentColumns+` FROM investments WHERE account_id = ? AND symbol = ?`,
		accountID, symbol)
	inv, err := scanInvestment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Investment{}, core.ErrInvestmentNotFound
	}
	if err != nil {
		return core.Investment{}, fmt.Errorf("get investment: %w", err)
	}
	return inv, nil
}

func (q *Queries) ListInvestments(ctx context.Context, accountID int64) ([]core.Investment, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+investmentColumns+` FROM investments WHERE account_id = ? ORDER BY symbol`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	defer rows.Close()

	var invs []core.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

// UpdatePosition overwrites quantity and average buy price.
func (q *Queries) UpdatePosition(ctx context.Context, id int64, quantity, avgBuyPrice decimal.Decimal) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE investments SET quantity = ?, avg_buy_price = ?, updated_at = ? WHERE id = ?`,
		quantity.String(), avgBuyPrice.String(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update position rows: %w", err)
	}
	if n == 0 {
		return core.ErrInvestmentNotFound
	}
	return nil
}

func (q *Queries) AddPricePoint(ctx context.Context, investmentID int64, price decimal.Decimal, date time.Time) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO investment_price_history (investment_id, price, date, created_at)
		VALUES (?, ?, ?, ?)`,
		investmentID, price.String(), date, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert price point: %w", err)
	}
	return nil
}

// LatestPrice returns the most recent recorded trade price for an investment.
func (q *Queries) LatestPrice(ctx context.Context, investmentID int64) (core.PricePoint, error) {
	var pp core.PricePoint
	var price string
	err := q.db.QueryRowContext(ctx, `
		SELECT id, investment_id, price, date FROM investment_price_history
		WHERE investment_id = ? ORDER BY date DESC, id DESC LIMIT 1`, investmentID).
		Scan(&pp.ID, &pp.InvestmentID, &price, &pp.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PricePoint{}, core.ErrInvestmentNotFound
	}
	if err != nil {
		return core.PricePoint{}, fmt.Errorf("latest price: %w", err)
	}
	if pp.Price, err = decimal.NewFromString(price); err != nil {
		return core.PricePoint{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	return pp, nil
}

func (q *Queries) CountPricePoints(ctx context.Context, investmentID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM investment_price_history WHERE investment_id = ?`, investmentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count price points: %w", err)
	}
	return n, nil
}
