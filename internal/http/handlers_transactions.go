package http

import (
	"net/http"
	"strconv"
	"time"

	"plata/internal/core"
	"plata/internal/services"
	"plata/internal/storage"
)

type transactionResponse struct {
	ID          int64  `json:"id"`
	AccountID   int64  `json:"account_id"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
	Date        string `json:"date"`
	CategoryID  *int64 `json:"category_id,omitempty"`
	ParentID    *int64 `json:"parent_id,omitempty"`
	TransferID  *int64 `json:"transfer_id,omitempty"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		AccountID:   t.AccountID,
		AmountCents: t.Amount.Cents,
		Description: t.Description,
		Date:        t.Date.Format("2006-01-02"),
		CategoryID:  t.CategoryID,
		ParentID:    t.ParentID,
		TransferID:  t.TransferID,
	}
}

type createTransactionRequest struct {
	AccountID   int64  `json:"account_id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
	CategoryID  *int64 `json:"category_id"`
}

func (r createTransactionRequest) toParams() (services.CreateTransactionParams, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return services.CreateTransactionParams{}, err
	}
	date, err := parseDate(r.Date)
	if err != nil {
		return services.CreateTransactionParams{}, err
	}
	return services.CreateTransactionParams{
		AccountID:   r.AccountID,
		Amount:      amount,
		Description: r.Description,
		Date:        date,
		CategoryID:  r.CategoryID,
	}, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	params, err := req.toParams()
	if err != nil {
		writeError(w, err)
		return
	}

	tx, err := s.transactions.Create(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(*tx))
}

type splitRequest struct {
	Amount      string `json:"amount"`
	CategoryID  *int64 `json:"category_id"`
	Description string `json:"description"`
}

type createSplitRequest struct {
	createTransactionRequest
	Splits []splitRequest `json:"splits"`
}

func (s *Server) handleCreateSplit(w http.ResponseWriter, r *http.Request) {
	var req createSplitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	main, err := req.toParams()
	if err != nil {
		writeError(w, err)
		return
	}

	splits := make([]services.SplitSpec, 0, len(req.Splits))
	for _, sp := range req.Splits {
		amount, err := parseAmount(sp.Amount)
		if err != nil {
			writeError(w, err)
			return
		}
		splits = append(splits, services.SplitSpec{
			Amount:      amount,
			CategoryID:  sp.CategoryID,
			Description: sp.Description,
		})
	}

	tx, err := s.transactions.CreateSplit(r.Context(), main, splits)
	if err != nil {
		writeError(w, err)
		return
	}

	children, err := s.transactions.Children(r.Context(), tx.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := struct {
		transactionResponse
		Splits []transactionResponse `json:"splits"`
	}{transactionResponse: toTransactionResponse(*tx)}
	for _, c := range children {
		out.Splits = append(out.Splits, toTransactionResponse(c))
	}
	writeJSON(w, http.StatusCreated, out)
}

// handleListTransactions filters by query parameters. account_id is
// required; everything else is optional.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	accountID, err := strconv.ParseInt(q.Get("account_id"), 10, 64)
	if err != nil || accountID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "account_id is required"})
		return
	}

	filter := storage.TransactionFilter{
		AccountID:        accountID,
		IncomeOnly:       q.Get("kind") == "income",
		ExpenseOnly:      q.Get("kind") == "expense",
		Search:           q.Get("search"),
		ExcludeTransfers: q.Get("exclude_transfers") == "true",
	}
	if v := q.Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid category_id"})
			return
		}
		filter.CategoryID = &id
	}
	if v := q.Get("from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			writeError(w, err)
			return
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			writeError(w, err)
			return
		}
		// Inclusive upper bound on a date-only value.
		t = t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		filter.Limit = n
	}

	txs, err := s.transactions.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid transaction id"})
		return
	}

	tx, err := s.transactions.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(*tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid transaction id"})
		return
	}

	if err := s.transactions.SoftDelete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
