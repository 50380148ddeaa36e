// Package api implements the Checker REST API using chi.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/checkerhq/checker/internal/apperr"
	"github.com/checkerhq/checker/internal/boardservice"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// writeData wraps a success payload in the {"data": ...} envelope.
func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, map[string]any{"data": v})
}

// writeMeta wraps a confirmation message in the {"meta": ...} envelope.
func writeMeta(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"meta": map[string]string{"message": message}})
}

type errBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError emits the {"error":{"code","message"}} envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{"error": errBody{Code: code, Message: message}})
}

// respondErr maps service errors onto the wire taxonomy. Unexpected errors
// are logged and collapse to an opaque 500.
func respondErr(w http.ResponseWriter, err error, logAttrs ...any) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found.")
	case errors.Is(err, apperr.ErrFutureDate):
		writeError(w, http.StatusBadRequest, "FUTURE_DATE", "Cannot check in for future dates.")
	case errors.Is(err, boardservice.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date, want YYYY-MM-DD.")
	case errors.Is(err, boardservice.ErrInvalidTimezone):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown timezone.")
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "ALREADY_EXISTS", "Resource already exists.")
	case errors.Is(err, apperr.ErrConflict):
		writeError(w, http.StatusConflict, "CONFLICT", "Concurrent update, please retry.")
	case errors.Is(err, apperr.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "INVALID_API_KEY", "Invalid or revoked API key.")
	case errors.Is(err, apperr.ErrForbidden):
		writeError(w, http.StatusForbidden, "INSUFFICIENT_SCOPE", "API key lacks the required scope.")
	default:
		slog.Error("request failed", append(logAttrs, slog.String("error", err.Error()))...)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal error.")
	}
}
