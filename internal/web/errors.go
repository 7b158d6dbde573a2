package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/localeforge/localeforge/internal/core"
	"github.com/localeforge/localeforge/internal/domain"
	"github.com/localeforge/localeforge/internal/logging"
)

// writeText writes a plain-text error body. The API surface is consumed by
// tooling and scripts, so error bodies stay terse.
func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(msg))
}

// writeJSON writes a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondServiceError maps service errors to responses. Structural input
// errors become 400s with the error text as body, storage outages become
// 503s, everything else is a 500 with the detail kept server-side.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyFile),
		errors.Is(err, core.ErrInvalidPolicy),
		errors.Is(err, core.ErrInvalidMapping),
		errors.Is(err, core.ErrInvalidHeader):
		writeText(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		writeText(w, http.StatusServiceUnavailable, "Service unavailable")
	default:
		logging.FromContext(r.Context()).Error("request failed",
			"path", r.URL.Path,
			"method", r.Method,
			"error", err)
		writeText(w, http.StatusInternalServerError, "Internal server error")
	}
}
