package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/temple-booking/internal/application/notification"
	"github.com/temple-booking/internal/domain"
	"github.com/temple-booking/internal/transport/http/middleware"
)

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type countData struct {
	Count int `json:"count"`
}

func caller(w http.ResponseWriter, r *http.Request) (notification.Caller, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, domain.KindUnauthorized, "unauthorized")
		return notification.Caller{}, false
	}
	return notification.Caller{Email: claims.Email, Admin: claims.Role == domain.RoleAdmin}, true
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	ns, err := h.svc.ListByEmail(r.Context(), c.Email)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, ns, nil)
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	n, err := h.svc.MarkAsRead(r.Context(), chi.URLParam(r, "id"), c)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, n, nil)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), c); err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, MessageData{Message: "notification deleted"}, nil)
}

func (h *NotificationHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	n, err := h.svc.ClearAll(r.Context(), c.Email)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, countData{Count: n}, nil)
}

func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.SendNotificationRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	n, err := h.svc.Send(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, countData{Count: n}, nil)
}

func (h *NotificationHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req domain.SendNotificationRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	req.Broadcast = true
	n, err := h.svc.Send(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, countData{Count: n}, nil)
}
