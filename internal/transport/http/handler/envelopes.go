package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/temple-booking/internal/domain"
)

// Envelope is the success response wrapper.
type Envelope struct {
	OK       bool             `json:"ok"`
	Data     any              `json:"data,omitempty"`
	Warnings []domain.Warning `json:"warnings,omitempty"`
}

// ErrorEnvelope is the failure response wrapper.
type ErrorEnvelope struct {
	OK        bool   `json:"ok"`
	ErrorKind string `json:"error_kind"`
	Message   string `json:"message"`
}

// MessageData is the payload of endpoints that only acknowledge.
type MessageData struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, data any, warnings []domain.Warning) {
	writeJSON(w, status, Envelope{OK: true, Data: data, Warnings: warnings})
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, ErrorEnvelope{ErrorKind: kind, Message: msg})
}

var kindStatus = map[string]int{
	domain.KindValidation:           http.StatusBadRequest,
	domain.KindNotFound:             http.StatusNotFound,
	domain.KindConflict:             http.StatusConflict,
	domain.KindInvalidTransition:    http.StatusConflict,
	domain.KindGenerationExhausted:  http.StatusServiceUnavailable,
	domain.KindUnauthorized:         http.StatusUnauthorized,
	domain.KindForbidden:            http.StatusForbidden,
	domain.KindNotificationDispatch: http.StatusBadGateway,
}

// httpError maps a service error to its status code and envelope.
// Persistence failures are logged and reported without detail.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, kind, "internal error")
		return
	}
	writeError(w, status, kind, err.Error())
}

// decodeJSON reads a JSON body into v. Unknown fields are rejected.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty: %w", domain.ErrValidation)
		}
		return fmt.Errorf("invalid request body: %w", domain.ErrValidation)
	}
	return nil
}
