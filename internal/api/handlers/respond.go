// Package handlers implements the HTTP handlers for the API routes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/emdili/docrag/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps domain error types to HTTP status codes.
func statusFor(err error) int {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	var derr *core.DependencyError
	if errors.As(err, &derr) {
		return http.StatusBadGateway
	}
	if errors.Is(err, core.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
