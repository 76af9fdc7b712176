package http

import (
	"net/http"
	"time"

	"plata/internal/core"
	"plata/internal/services"
)

type recurringResponse struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	AccountID   int64  `json:"account_id"`
	CategoryID  *int64 `json:"category_id,omitempty"`
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description,omitempty"`
	Frequency   string `json:"frequency"`
	DayOfMonth  int    `json:"day_of_month"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	NextDue     string `json:"next_due,omitempty"`
	IsActive    bool   `json:"is_active"`
}

func toRecurringResponse(r core.RecurringTransaction) recurringResponse {
	out := recurringResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		AccountID:   r.AccountID,
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		AmountCents: r.Amount.Cents,
		Description: r.Description,
		Frequency:   string(r.Frequency),
		DayOfMonth:  r.DayOfMonth,
		StartDate:   r.StartDate.Format("2006-01-02"),
		IsActive:    r.IsActive,
	}
	if r.EndDate != nil {
		out.EndDate = r.EndDate.Format("2006-01-02")
	}
	if r.NextDue != nil {
		out.NextDue = r.NextDue.Format("2006-01-02")
	}
	return out
}

type createRecurringRequest struct {
	UserID      int64  `json:"user_id"`
	AccountID   int64  `json:"account_id"`
	CategoryID  *int64 `json:"category_id"`
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
	DayOfMonth  int    `json:"day_of_month"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req createRecurringRequest
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

	// Optional schedule fields default to a sensible anchor: today, first
	// of the month.
	if start.IsZero() {
		start = time.Now().UTC()
	}
	if req.DayOfMonth == 0 {
		req.DayOfMonth = 1
	}

	rec, err := s.recurring.Create(r.Context(), services.CreateRecurringParams{
		UserID:      req.UserID,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Amount:      amount,
		Description: req.Description,
		Frequency:   core.Frequency(req.Frequency),
		DayOfMonth:  req.DayOfMonth,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecurringResponse(*rec))
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}

	recs, err := s.recurring.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]recurringResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRecurringResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUpcomingRecurring lists active definitions due in the next thirty
// days, soonest first.
func (s *Server) handleUpcomingRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}

	recs, err := s.recurring.Upcoming(r.Context(), userID, time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]recurringResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRecurringResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

type updateRecurringRequest struct {
	CategoryID  *int64 `json:"category_id"`
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
	DayOfMonth  int    `json:"day_of_month"`
	EndDate     string `json:"end_date"`
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid recurring id"})
		return
	}

	var req updateRecurringRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	amount, err := parseAmount(req.Amount)
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

	rec, err := s.recurring.Update(r.Context(), id, services.UpdateRecurringParams{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Amount:      amount,
		Description: req.Description,
		Frequency:   core.Frequency(req.Frequency),
		DayOfMonth:  req.DayOfMonth,
		EndDate:     end,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringResponse(*rec))
}

func (s *Server) handleDeactivateRecurring(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid recurring id"})
		return
	}

	if err := s.recurring.Deactivate(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid recurring id"})
		return
	}

	if err := s.recurring.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleProcessRecurring runs the generation pass for one user. The worker
// does this on a schedule; the endpoint exists for manual catch-up.
func (s *Server) handleProcessRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}

	report, err := s.recurring.ProcessAll(r.Context(), userID, time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
