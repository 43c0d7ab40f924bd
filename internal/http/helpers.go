package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/costcrew/costcrew/internal/ledger"
	"github.com/costcrew/costcrew/internal/service"
	"github.com/costcrew/costcrew/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON serializes v with the given status. Encoding failures are logged
// but not surfaced; headers are already written by then.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}

// writeError maps service errors onto HTTP statuses. Invariant violations
// stay internal errors; the detail lives in the server log, not the body.
func writeError(w http.ResponseWriter, err error) {
	var invErr *ledger.InvariantError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &invErr):
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "ledger invariant violated"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// decodeJSON parses a request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
