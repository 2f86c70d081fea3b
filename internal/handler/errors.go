package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tripline/eld-backend/internal/domain"
)

// ErrorResponse is the envelope every non-2xx body uses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine code plus a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "encode response", "method", r.Method, "path", r.URL.Path, "error", err)
	}
}

// writeError writes the error envelope with the given status and code.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, r, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// respondError maps a service error onto the HTTP surface: 404 for missing
// resources, 422 for business rule violations, 503 for provider outages,
// 500 for everything else. The 500 branch logs the full error and returns a
// generic message so internals never leak to clients.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, r, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err))
	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, "unavailable", "upstream provider unavailable")
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// badRequest writes a 400 for requests rejected before reaching the service
// layer (e.g. missing or malformed body, bad query parameter).
func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusBadRequest, "bad_request", message)
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel
// error, e.g. "service.TripService.Create: validation error: cycle_used_hours
// must be between 0 and 70" becomes everything after the sentinel text.
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if _, after, found := strings.Cut(msg, domain.ErrValidation.Error()+": "); found {
		return after
	}
	return msg
}
