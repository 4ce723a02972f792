package handler

import (
	"net/http"

	"github.com/temple-booking/internal/application/session"
	"github.com/temple-booking/internal/domain"
)

// SessionHandler handles session endpoints.
type SessionHandler struct {
	svc session.Service
}

func NewSessionHandler(svc session.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, res, nil)
}

func (h *SessionHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	res, err := h.svc.AdminLogin(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, res, nil)
}
