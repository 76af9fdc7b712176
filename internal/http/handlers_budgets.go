package http

import (
	"net/http"
	"time"

	"plata/internal/core"
	"plata/internal/services"
)

type budgetResponse struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	CategoryID  int64  `json:"category_id"`
	AmountCents int64  `json:"amount_cents"`
	Period      string `json:"period"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	out := budgetResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		CategoryID:  b.CategoryID,
		AmountCents: b.Amount.Cents,
		Period:      string(b.Period),
		StartDate:   b.StartDate.Format("2006-01-02"),
	}
	if b.EndDate != nil {
		out.EndDate = b.EndDate.Format("2006-01-02")
	}
	return out
}

type createBudgetRequest struct {
	UserID     int64  `json:"user_id"`
	CategoryID int64  `json:"category_id"`
	Amount     string `json:"amount"`
	Period     string `json:"period"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, err)
		return
	}
	var end *time.Time
	if req.EndDate != "" {
		t, err := parseDate(req.EndDate)
		if err != nil {
			writeError(w, err)
			return
		}
		end = &t
	}

	budget, err := s.budgets.Create(r.Context(), services.CreateBudgetParams{
		UserID:     req.UserID,
		CategoryID: req.CategoryID,
		Amount:     amount,
		Period:     core.BudgetPeriod(req.Period),
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetResponse(*budget))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}

	budgets, err := s.budgets.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

type updateBudgetRequest struct {
	Amount string `json:"amount"`
	Period string `json:"period"`
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid budget id"})
		return
	}

	var req updateBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	budget, err := s.budgets.Update(r.Context(), id, amount, core.BudgetPeriod(req.Period))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(*budget))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid budget id"})
		return
	}

	if err := s.budgets.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}

	statuses, err := s.budgets.Status(r.Context(), userID, time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}
