package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/temple-booking/internal/application/booking"
	"github.com/temple-booking/internal/domain"
	"github.com/temple-booking/internal/transport/http/middleware"
)

// BookingHandler handles booking lifecycle and admin booking endpoints.
type BookingHandler struct {
	svc booking.Service
}

func NewBookingHandler(svc booking.Service) *BookingHandler { return &BookingHandler{svc: svc} }

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	res, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, res.Booking, res.Warnings)
}

// Get is public, so it returns the summary view only. Owners see the full
// record through Mine.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), chi.URLParam(r, "ticketID"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, b.Summary(), nil)
}

// Mine lists the caller's bookings.
func (h *BookingHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, domain.KindUnauthorized, "unauthorized")
		return
	}
	h.list(w, r, claims.Email)
}

func (h *BookingHandler) ListByEmail(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "email"))
}

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request, email string) {
	bookings, err := h.svc.ListByEmail(r.Context(), email)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, bookings, nil)
}

func (h *BookingHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.BookingFilter{
		Search:    q.Get("search"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	if s := q.Get("status"); s != "" && !strings.EqualFold(s, "all") {
		st, err := domain.ParseStatus(s)
		if err != nil {
			httpError(w, r, err)
			return
		}
		f.Status = st
	}
	bookings, err := h.svc.Search(r.Context(), f)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, bookings, nil)
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, r, err)
		return
	}
	res, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "ticketID"), req.Status)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, res.Booking, res.Warnings)
}

// Cancel marks the booking Cancelled and keeps the record.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ticketID, ok := h.authorizeOwner(w, r)
	if !ok {
		return
	}
	res, err := h.svc.MarkCancelled(r.Context(), ticketID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, res.Booking, res.Warnings)
}

// Purge notifies the visitor and administrator, then deletes the booking.
func (h *BookingHandler) Purge(w http.ResponseWriter, r *http.Request) {
	ticketID, ok := h.authorizeOwner(w, r)
	if !ok {
		return
	}
	res, err := h.svc.PurgeCancelled(r.Context(), ticketID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, MessageData{Message: "booking " + ticketID + " cancelled and deleted"}, res.Warnings)
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")
	if err := h.svc.Delete(r.Context(), ticketID); err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, MessageData{Message: "booking " + ticketID + " deleted"}, nil)
}

func (h *BookingHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ClearAll(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, res, nil)
}

func (h *BookingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, st, nil)
}

// authorizeOwner lets the booking's own email or an admin through.
func (h *BookingHandler) authorizeOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, domain.KindUnauthorized, "unauthorized")
		return "", false
	}
	ticketID := strings.TrimSpace(chi.URLParam(r, "ticketID"))
	if claims.Role == domain.RoleAdmin {
		return ticketID, true
	}
	b, err := h.svc.Get(r.Context(), ticketID)
	if err != nil {
		httpError(w, r, err)
		return "", false
	}
	if !strings.EqualFold(b.Email, claims.Email) {
		writeError(w, http.StatusForbidden, domain.KindForbidden, "booking belongs to another user")
		return "", false
	}
	return ticketID, true
}
