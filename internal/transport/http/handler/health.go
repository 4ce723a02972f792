package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/temple-booking/internal/domain"
)

// HealthHandler handles health-check endpoints.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "action") == "ping" {
		writeOK(w, http.StatusOK, MessageData{Message: "pong"}, nil)
		return
	}
	writeError(w, http.StatusBadRequest, domain.KindValidation, "unknown action")
}
