package http

import (
	"net/http"

	"plata/internal/core"
	"plata/internal/services"
)

type accountResponse struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Institution  string `json:"institution,omitempty"`
	CurrencyCode string `json:"currency_code"`
	BalanceCents int64  `json:"balance_cents"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:           a.ID,
		UserID:       a.UserID,
		Name:         a.Name,
		Type:         string(a.Type),
		Institution:  a.Institution,
		CurrencyCode: a.CurrencyCode,
		BalanceCents: a.Balance.Cents,
	}
}

type createAccountRequest struct {
	UserID       int64  `json:"user_id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Institution  string `json:"institution"`
	CurrencyCode string `json:"currency_code"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.CurrencyCode == "" {
		req.CurrencyCode = s.defaultCurrency
	}

	account, err := s.accounts.Create(r.Context(), services.CreateAccountParams{
		UserID:       req.UserID,
		Name:         req.Name,
		Type:         core.AccountType(req.Type),
		Institution:  req.Institution,
		CurrencyCode: req.CurrencyCode,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(*account))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}

	accounts, err := s.accounts.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid account id"})
		return
	}

	account, err := s.accounts.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(*account))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid account id"})
		return
	}

	if err := s.accounts.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCheckAccount reports whether the cached balance matches the
// transaction log.
func (s *Server) handleCheckAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid account id"})
		return
	}

	consistent, err := s.ledger.CheckInvariant(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"consistent": consistent})
}

type createCategoryRequest struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	category, err := s.accounts.CreateCategory(r.Context(), req.UserID, req.Name, core.CategoryType(req.Type))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}

	categories, err := s.accounts.ListCategories(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid category id"})
		return
	}

	if err := s.accounts.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
