package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bankgraph/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps domain errors onto HTTP status codes. Validation failures
// are the client's fault; anything else is ours.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrSelfTransfer),
		errors.Is(err, core.ErrEmptyAccountID),
		errors.Is(err, core.ErrEmptyTransactionID),
		errors.Is(err, core.ErrInvalidPeriod):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrDuplicateTransaction):
		return http.StatusConflict
	case errors.Is(err, core.ErrAccountNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
