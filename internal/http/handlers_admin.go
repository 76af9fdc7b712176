package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"plata/internal/core"
)

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	report, err := s.reconciler.RecomputeAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type rateResponse struct {
	CurrencyFrom string `json:"currency_from"`
	CurrencyTo   string `json:"currency_to"`
	Rate         string `json:"rate"`
	Date         string `json:"date"`
}

func toRateResponse(r core.ExchangeRate) rateResponse {
	return rateResponse{
		CurrencyFrom: r.CurrencyFrom,
		CurrencyTo:   r.CurrencyTo,
		Rate:         r.Rate.String(),
		Date:         r.Date.Format("2006-01-02"),
	}
}

func (s *Server) handleGetRate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "from and to are required"})
		return
	}

	rate, err := s.rates.Latest(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRateResponse(rate))
}

type importRateRequest struct {
	CurrencyFrom string `json:"currency_from"`
	CurrencyTo   string `json:"currency_to"`
	Rate         string `json:"rate"`
	Date         string `json:"date"`
}

func (s *Server) handleImportRate(w http.ResponseWriter, r *http.Request) {
	var req importRateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	rate, err := decimal.NewFromString(req.Rate)
	if err != nil || !rate.IsPositive() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid rate"})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	stored, err := s.rates.Import(r.Context(), req.CurrencyFrom, req.CurrencyTo, rate, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRateResponse(stored))
}
