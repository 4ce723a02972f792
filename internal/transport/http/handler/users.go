package handler

import (
	"net/http"

	"github.com/temple-booking/internal/application/user"
	"github.com/temple-booking/internal/domain"
)

// UserHandler handles account registration.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, u, nil)
}
