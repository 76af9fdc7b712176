package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"plata/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the core error taxonomy to HTTP status codes. Anything
// outside the taxonomy is a persistence or internal failure and is not
// echoed to the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case core.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case core.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case core.IsConflict(err):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		slog.Error("Request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// queryUserID parses the user_id query parameter. The identity layer in
// front of this API supplies it; the core only consumes the id.
func queryUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	return id, err == nil && id > 0
}

// parseDate parses an optional YYYY-MM-DD or RFC 3339 date string. An empty
// string yields the zero time, which services replace with now.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, core.ErrInvalidDate
	}
	return t, nil
}

// parseAmount converts a decimal string ("-12.34") to signed cents.
func parseAmount(s string) (core.Money, error) {
	return core.ParseMoney(s)
}
