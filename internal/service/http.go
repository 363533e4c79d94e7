// Package service implements the synchronization layer: each user-facing
// operation resolves the acting user, then calls one or more concept stores
// in a fixed sequence, short-circuiting on the first failure. No store
// calls another store; all composition happens here.
package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/huddleapp/backend/internal/apperr"
	"github.com/huddleapp/backend/internal/auth"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.InvalidInput("body", "malformed JSON")
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the error taxonomy onto HTTP statuses. Store errors
// arrive here unmodified; nothing upstream catches or converts them.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case apperr.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case apperr.IsNotAllowed(err):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case apperr.IsInvalidInput(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrUsernameTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrWeakPassword):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	default:
		slog.Error("Internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
