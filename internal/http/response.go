package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"spendcast/internal/forecast"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps forecasting errors onto HTTP statuses. Validation
// problems are the caller's fault, missing data is a 404 on the resource,
// a disabled model is a temporary service condition.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, forecast.ErrInvalidParameter):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, forecast.ErrInsufficientData):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, forecast.ErrInsufficientHistory):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, forecast.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"url", r.URL.Path,
			"error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
