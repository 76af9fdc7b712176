package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"plata/internal/core"
	"plata/internal/storage"

	"github.com/shopspring/decimal"
)

// InvestmentService tracks holdings at weighted average cost. Purchases are
// funded and sales credited through cash transactions on the holding's
// account, inside the same commit as the position change.
//
// This is plain average-cost accounting: no FIFO or specific-lot tracking.
// Realized gain/loss on a sell is (price - avg_buy_price) * quantity,
// computed by the caller from the returned position.
type InvestmentService struct {
	store *storage.Store
}

func NewInvestmentService(store *storage.Store) *InvestmentService {
	return &InvestmentService{store: store}
}

type TradeParams struct {
	AccountID int64
	Symbol    string
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	Date      time.Time
	AssetType core.AssetType // buys only; defaults to stock
	Name      string         // buys only; defaults to symbol
}

func (p TradeParams) validate() error {
	if p.Symbol == "" {
		return core.ErrInvalidTrade
	}
	if !p.Quantity.IsPositive() || p.Price.IsNegative() {
		return core.ErrInvalidTrade
	}
	return nil
}

// cashCents converts a quantity*price product to signed cents, rounding
// half-up on the third decimal.
func cashCents(quantity, price decimal.Decimal) int64 {
	return core.MoneyFromDecimal(quantity.Mul(price)).Cents
}

// Buy funds a purchase with a cash outflow of quantity*price, merges the
// position under the weighted-average rule and appends a price-history
// record at the trade price.
func (s *InvestmentService) Buy(ctx context.Context, p TradeParams) (*core.Investment, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	assetType := p.AssetType
	if assetType == "" {
		assetType = core.AssetStock
	}
	if !assetType.Valid() {
		return nil, core.ErrInvalidTrade
	}
	name := p.Name
	if name == "" {
		name = p.Symbol
	}
	date := p.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var inv core.Investment
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		cost := cashCents(p.Quantity, p.Price)
		_, err := createTransaction(ctx, q, CreateTransactionParams{
			AccountID:   p.AccountID,
			Amount:      core.Money{Cents: -cost},
			Description: fmt.Sprintf("Buy %s (%s @ %s)", p.Symbol, p.Quantity, p.Price),
			Date:        date,
		})
		if err != nil {
			return err
		}

		existing, err := q.GetInvestmentBySymbol(ctx, p.AccountID, p.Symbol)
		switch {
		case err == nil:
			// newAvg = (oldQty*oldAvg + qty*price) / (oldQty + qty)
			totalQty := existing.Quantity.Add(p.Quantity)
			totalCost := existing.Quantity.Mul(existing.AvgBuyPrice).Add(p.Quantity.Mul(p.Price))
			newAvg := totalCost.Div(totalQty)
			if err := q.UpdatePosition(ctx, existing.ID, totalQty, newAvg); err != nil {
				return err
			}
			inv = existing
			inv.Quantity = totalQty
			inv.AvgBuyPrice = newAvg
		case errors.Is(err, core.ErrInvestmentNotFound):
			inv, err = q.CreateInvestment(ctx, storage.CreateInvestmentParams{
				AccountID:   p.AccountID,
				Symbol:      p.Symbol,
				Name:        name,
				AssetType:   assetType,
				Quantity:    p.Quantity,
				AvgBuyPrice: p.Price,
			})
			if err != nil {
				return err
			}
		default:
			return err
		}

		return q.AddPricePoint(ctx, inv.ID, p.Price, date)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Asset bought",
		"account_id", p.AccountID,
		"symbol", p.Symbol,
		"quantity", p.Quantity.String(),
		"price", p.Price.String(),
		"avg_buy_price", inv.AvgBuyPrice.String())

	return &inv, nil
}

// Sell credits quantity*price cash, decrements the position and appends a
// price-history record at the sell price. The average buy price never
// changes on a sell. An oversell fails before any write: no cash
// transaction and no history record are produced.
func (s *InvestmentService) Sell(ctx context.Context, p TradeParams) (*core.Investment, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	date := p.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var inv core.Investment
	err := s.store.WithTx(ctx, func(q *storage.Queries) error {
		existing, err := q.GetInvestmentBySymbol(ctx, p.AccountID, p.Symbol)
		if errors.Is(err, core.ErrInvestmentNotFound) {
			return core.ErrInsufficientHoldings
		}
		if err != nil {
			return err
		}
		if existing.Quantity.LessThan(p.Quantity) {
			return core.ErrInsufficientHoldings
		}

		revenue := cashCents(p.Quantity, p.Price)
		_, err = createTransaction(ctx, q, CreateTransactionParams{
			AccountID:   p.AccountID,
			Amount:      core.Money{Cents: revenue},
			Description: fmt.Sprintf("Sell %s (%s @ %s)", p.Symbol, p.Quantity, p.Price),
			Date:        date,
		})
		if err != nil {
			return err
		}

		newQty := existing.Quantity.Sub(p.Quantity)
		if err := q.UpdatePosition(ctx, existing.ID, newQty, existing.AvgBuyPrice); err != nil {
			return err
		}

		inv = existing
		inv.Quantity = newQty

		return q.AddPricePoint(ctx, inv.ID, p.Price, date)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Asset sold",
		"account_id", p.AccountID,
		"symbol", p.Symbol,
		"quantity", p.Quantity.String(),
		"price", p.Price.String(),
		"remaining", inv.Quantity.String())

	return &inv, nil
}

// Get returns the holding for (account, symbol).
func (s *InvestmentService) Get(ctx context.Context, accountID int64, symbol string) (*core.Investment, error) {
	inv, err := s.store.GetInvestmentBySymbol(ctx, accountID, symbol)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// List returns all holdings on an account.
func (s *InvestmentService) List(ctx context.Context, accountID int64) ([]core.Investment, error) {
	return s.store.ListInvestments(ctx, accountID)
}

// LatestPrice returns the last-known valuation price for an investment.
func (s *InvestmentService) LatestPrice(ctx context.Context, investmentID int64) (*core.PricePoint, error) {
	pp, err := s.store.LatestPrice(ctx, investmentID)
	if err != nil {
		return nil, err
	}
	return &pp, nil
}
