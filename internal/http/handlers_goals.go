package http

import (
	"net/http"
	"time"

	"plata/internal/core"
	"plata/internal/services"
)

type goalResponse struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"user_id"`
	Name          string  `json:"name"`
	TargetCents   int64   `json:"target_amount_cents"`
	CurrentCents  int64   `json:"current_amount_cents"`
	TargetDate    string  `json:"target_date,omitempty"`
	Icon          string  `json:"icon"`
	Color         string  `json:"color"`
	IsActive      bool    `json:"is_active"`
	Progress      float64 `json:"progress_percentage"`
	DaysRemaining *int    `json:"days_remaining"`
}

func toGoalResponse(g core.SavingsGoal) goalResponse {
	out := goalResponse{
		ID:            g.ID,
		UserID:        g.UserID,
		Name:          g.Name,
		TargetCents:   g.TargetAmount.Cents,
		CurrentCents:  g.CurrentAmount.Cents,
		Icon:          g.Icon,
		Color:         g.Color,
		IsActive:      g.IsActive,
		Progress:      g.Progress(),
		DaysRemaining: g.DaysRemaining(time.Now().UTC()),
	}
	if g.TargetDate != nil {
		out.TargetDate = g.TargetDate.Format("2006-01-02")
	}
	return out
}

type saveGoalRequest struct {
	Name          string `json:"name"`
	TargetAmount  string `json:"target_amount"`
	CurrentAmount string `json:"current_amount"`
	TargetDate    string `json:"target_date"`
	Icon          string `json:"icon"`
	Color         string `json:"color"`
	IsActive      *bool  `json:"is_active"`
}

func (r saveGoalRequest) toParams() (services.SaveGoalParams, error) {
	target, err := parseAmount(r.TargetAmount)
	if err != nil {
		return services.SaveGoalParams{}, err
	}
	current := core.Money{}
	if r.CurrentAmount != "" {
		current, err = parseAmount(r.CurrentAmount)
		if err != nil {
			return services.SaveGoalParams{}, err
		}
	}
	var targetDate *time.Time
	if r.TargetDate != "" {
		t, err := parseDate(r.TargetDate)
		if err != nil {
			return services.SaveGoalParams{}, err
		}
		targetDate = &t
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return services.SaveGoalParams{
		Name:          r.Name,
		TargetAmount:  target,
		CurrentAmount: current,
		TargetDate:    targetDate,
		Icon:          r.Icon,
		Color:         r.Color,
		IsActive:      active,
	}, nil
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}

	var req saveGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	params, err := req.toParams()
	if err != nil {
		writeError(w, err)
		return
	}

	goal, err := s.goals.Create(r.Context(), userID, params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalResponse(*goal))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}

	goals, err := s.goals.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid goal id"})
		return
	}

	goal, err := s.goals.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(*goal))
}

// handleActiveGoal returns the pinned goal, or null when the user has none.
func (s *Server) handleActiveGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryUserID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}

	goal, err := s.goals.Active(r.Context(), userID)
	if core.IsNotFound(err) {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(*goal))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid goal id"})
		return
	}

	var req saveGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	params, err := req.toParams()
	if err != nil {
		writeError(w, err)
		return
	}

	goal, err := s.goals.Update(r.Context(), id, params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(*goal))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid goal id"})
		return
	}

	if err := s.goals.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
