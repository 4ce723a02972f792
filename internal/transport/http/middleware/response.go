package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/temple-booking/internal/domain"
)

// writeJSONError writes the failure envelope used by the handlers.
func writeJSONError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error_kind": kind, "message": msg})
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeJSONError(w, http.StatusUnauthorized, domain.KindUnauthorized, msg)
}

func forbidden(w http.ResponseWriter, msg string) {
	writeJSONError(w, http.StatusForbidden, domain.KindForbidden, msg)
}
