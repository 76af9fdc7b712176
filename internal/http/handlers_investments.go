package http

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"plata/internal/core"
	"plata/internal/services"
)

type investmentResponse struct {
	ID          int64  `json:"id"`
	AccountID   int64  `json:"account_id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	AssetType   string `json:"asset_type"`
	Quantity    string `json:"quantity"`
	AvgBuyPrice string `json:"avg_buy_price"`
	TotalCost   string `json:"total_cost"`
}

func toInvestmentResponse(i core.Investment) investmentResponse {
	return investmentResponse{
		ID:          i.ID,
		AccountID:   i.AccountID,
		Symbol:      i.Symbol,
		Name:        i.Name,
		AssetType:   string(i.AssetType),
		Quantity:    i.Quantity.String(),
		AvgBuyPrice: i.AvgBuyPrice.String(),
		TotalCost:   i.TotalCost().String(),
	}
}

type tradeRequest struct {
	AccountID int64  `json:"account_id"`
	Symbol    string `json:"symbol"`
	Quantity  string `json:"quantity"`
	Price     string `json:"price"`
	Date      string `json:"date"`
	AssetType string `json:"asset_type"`
	Name      string `json:"name"`
}

func (r tradeRequest) toParams() (services.TradeParams, error) {
	quantity, err := decimal.NewFromString(r.Quantity)
	if err != nil {
		return services.TradeParams{}, core.ErrInvalidTrade
	}
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return services.TradeParams{}, core.ErrInvalidTrade
	}
	date, err := parseDate(r.Date)
	if err != nil {
		return services.TradeParams{}, err
	}
	return services.TradeParams{
		AccountID: r.AccountID,
		Symbol:    r.Symbol,
		Quantity:  quantity,
		Price:     price,
		Date:      date,
		AssetType: core.AssetType(r.AssetType),
		Name:      r.Name,
	}, nil
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	params, err := req.toParams()
	if err != nil {
		writeError(w, err)
		return
	}

	inv, err := s.investments.Buy(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvestmentResponse(*inv))
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	params, err := req.toParams()
	if err != nil {
		writeError(w, err)
		return
	}

	inv, err := s.investments.Sell(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentResponse(*inv))
}

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(r.URL.Query().Get("account_id"), 10, 64)
	if err != nil || accountID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "account_id is required"})
		return
	}

	holdings, err := s.investments.List(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]investmentResponse, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, toInvestmentResponse(h))
	}
	writeJSON(w, http.StatusOK, out)
}
