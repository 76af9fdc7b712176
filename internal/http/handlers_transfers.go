package http

import (
	"net/http"

	"plata/internal/core"
	"plata/internal/services"
)

type transferResponse struct {
	ID            int64  `json:"id"`
	FromAccountID int64  `json:"from_account_id"`
	ToAccountID   int64  `json:"to_account_id"`
	AmountCents   int64  `json:"amount_cents"`
	Date          string `json:"date"`
	Description   string `json:"description,omitempty"`
}

func toTransferResponse(t core.Transfer) transferResponse {
	return transferResponse{
		ID:            t.ID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		AmountCents:   t.Amount.Cents,
		Date:          t.Date.Format("2006-01-02"),
		Description:   t.Description,
	}
}

type createTransferRequest struct {
	FromAccountID int64  `json:"from_account_id"`
	ToAccountID   int64  `json:"to_account_id"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	Description   string `json:"description"`
}

func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	transfer, err := s.transfers.CreateTransfer(r.Context(), services.CreateTransferParams{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        amount,
		Date:          date,
		Description:   req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransferResponse(*transfer))
}

func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}

	transfers, err := s.transfers.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]transferResponse, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, toTransferResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetTransfer returns the transfer together with its two legs.
func (s *Server) handleGetTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid transfer id"})
		return
	}

	transfer, err := s.transfers.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	legs, err := s.transfers.Legs(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	out := struct {
		transferResponse
		Legs []transactionResponse `json:"legs"`
	}{transferResponse: toTransferResponse(*transfer)}
	for _, l := range legs {
		out.Legs = append(out.Legs, toTransactionResponse(l))
	}
	writeJSON(w, http.StatusOK, out)
}
