package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/temple-booking/internal/domain"
	"github.com/temple-booking/internal/infrastructure/mq"
	"github.com/temple-booking/internal/pkg/ticket"
	"github.com/temple-booking/internal/pkg/validate"
)

type Service interface {
	Create(ctx context.Context, req domain.CreateBookingRequest) (*domain.BookingResult, error)
	UpdateStatus(ctx context.Context, ticketID, status string) (*domain.BookingResult, error)
	MarkCancelled(ctx context.Context, ticketID string) (*domain.BookingResult, error)
	PurgeCancelled(ctx context.Context, ticketID string) (*domain.BookingResult, error)
	Get(ctx context.Context, ticketID string) (*domain.Booking, error)
	Search(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	Delete(ctx context.Context, ticketID string) error
	ClearAll(ctx context.Context) (*ClearResult, error)
	Stats(ctx context.Context) (*domain.BookingStats, error)
}

// ClearResult reports a bulk delete and where the pre-delete snapshot went.
type ClearResult struct {
	Deleted int    `json:"deleted"`
	Archive string `json:"archive,omitempty"`
}

type bookingStore interface {
	Insert(ctx context.Context, b *domain.Booking) error
	Get(ctx context.Context, ticketID string) (*domain.Booking, error)
	Search(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	Count(ctx context.Context, f domain.BookingFilter) (int, error)
	TransitionStatus(ctx context.Context, ticketID string, from, to domain.BookingStatus) (*domain.Booking, error)
	Delete(ctx context.Context, ticketID string) error
	DeleteAll(ctx context.Context) (int, error)
}

type notifier interface {
	Notify(ctx context.Context, email, message string, t domain.NotificationType) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type eventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type archiver interface {
	Put(ctx context.Context, key string, body []byte) (string, error)
}

type service struct {
	repo        bookingStore
	notifier    notifier
	sms         smsSender
	events      eventPublisher
	archive     archiver
	gen         *ticket.Generator
	maxAttempts int
	adminEmail  string
	now         func() time.Time
}

// ServiceDeps wires the lifecycle controller. SMS, Events and Archive are
// optional and may be nil.
type ServiceDeps struct {
	BookingRepo bookingStore
	Notifier    notifier
	SMS         smsSender
	Events      eventPublisher
	Archive     archiver
	Generator   *ticket.Generator
	MaxAttempts int
	AdminEmail  string
}

func NewService(deps ServiceDeps) Service {
	gen := deps.Generator
	if gen == nil {
		gen = ticket.NewGenerator()
	}
	attempts := deps.MaxAttempts
	if attempts < 1 {
		attempts = 5
	}
	return &service{
		repo:        deps.BookingRepo,
		notifier:    deps.Notifier,
		sms:         deps.SMS,
		events:      deps.Events,
		archive:     deps.Archive,
		gen:         gen,
		maxAttempts: attempts,
		adminEmail:  deps.AdminEmail,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Event is the payload published for every lifecycle change.
type Event struct {
	TicketID   string               `json:"ticket_id"`
	Email      string               `json:"email"`
	Temple     string               `json:"temple"`
	Date       string               `json:"date"`
	Status     domain.BookingStatus `json:"status"`
	OccurredAt time.Time            `json:"occurred_at"`
}

func (s *service) Create(ctx context.Context, req domain.CreateBookingRequest) (*domain.BookingResult, error) {
	req = sanitize(req)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	now := s.now()
	b := &domain.Booking{
		Temple:    req.Temple,
		Date:      req.Date,
		Time:      req.Time,
		Name:      req.Name,
		Mobile:    req.Mobile,
		Email:     req.Email,
		Aadhaar:   req.Aadhaar,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.allocate(ctx, b); err != nil {
		return nil, err
	}

	res := &domain.BookingResult{Booking: b}
	msg := fmt.Sprintf("Booking created successfully for %s on %s at %s.", b.Temple, b.Date, b.Time)
	s.notify(ctx, res, b.Email, msg, domain.NotificationSuccess)
	if s.sms != nil {
		sms := fmt.Sprintf("Your temple visit %s is booked for %s at %s. Ticket: %s", b.Temple, b.Date, b.Time, b.TicketID)
		if err := s.sms.SendSMS(ctx, b.Mobile, sms); err != nil {
			s.warn(res, fmt.Errorf("sms to %s: %w", b.Mobile, err))
		}
	}
	s.publish(ctx, res, mq.KeyBookingCreated, b)
	return res, nil
}

// allocate inserts b under a fresh ticket id, retrying on collision.
func (s *service) allocate(ctx context.Context, b *domain.Booking) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		id, err := s.gen.Next()
		if err != nil {
			return err
		}
		b.TicketID = id
		b.TransactionID = ticket.TransactionID(id)
		err = s.repo.Insert(ctx, b)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
		slog.Debug("ticket id collision", "ticket_id", id, "attempt", attempt)
	}
	b.TicketID, b.TransactionID = "", ""
	return fmt.Errorf("no unique ticket id after %d attempts: %w", s.maxAttempts, domain.ErrGenerationExhausted)
}

func (s *service) UpdateStatus(ctx context.Context, ticketID, status string) (*domain.BookingResult, error) {
	to, err := domain.ParseStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, err
	}
	ticketID = strings.TrimSpace(ticketID)
	cur, err := s.repo.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !cur.Status.CanTransition(to) {
		return nil, fmt.Errorf("booking %s: %s -> %s: %w", ticketID, cur.Status, to, domain.ErrInvalidTransition)
	}
	b, err := s.repo.TransitionStatus(ctx, ticketID, cur.Status, to)
	if err != nil {
		return nil, err
	}

	res := &domain.BookingResult{Booking: b}
	msg := fmt.Sprintf("Your booking %s has been marked as %q.", b.TicketID, string(to))
	s.notify(ctx, res, b.Email, msg, notificationTypeFor(to))
	s.publish(ctx, res, mq.KeyBookingStatusChanged, b)
	return res, nil
}

func (s *service) MarkCancelled(ctx context.Context, ticketID string) (*domain.BookingResult, error) {
	return s.UpdateStatus(ctx, ticketID, string(domain.StatusCancelled))
}

// PurgeCancelled notifies the visitor and the administrator, then removes
// the booking. It is allowed from any status. A failed delete after the
// notices went out is logged at error level and returned.
func (s *service) PurgeCancelled(ctx context.Context, ticketID string) (*domain.BookingResult, error) {
	ticketID = strings.TrimSpace(ticketID)
	b, err := s.repo.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	res := &domain.BookingResult{Booking: b}
	s.notify(ctx, res, b.Email, fmt.Sprintf("Your booking %s has been cancelled.", b.TicketID), domain.NotificationWarning)
	s.notify(ctx, res, s.adminEmail, fmt.Sprintf("User %s cancelled booking %s.", b.Email, b.TicketID), domain.NotificationInfo)

	if err := s.repo.Delete(ctx, ticketID); err != nil {
		slog.Error("booking purge notices sent but delete failed", "ticket_id", ticketID, "err", err)
		return nil, err
	}
	b.Status = domain.StatusCancelled
	s.publish(ctx, res, mq.KeyBookingPurged, b)
	return res, nil
}

func (s *service) Get(ctx context.Context, ticketID string) (*domain.Booking, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return nil, fmt.Errorf("ticket id is required: %w", domain.ErrValidation)
	}
	return s.repo.Get(ctx, ticketID)
}

func (s *service) Search(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	f.Search = strings.TrimSpace(f.Search)
	f.StartDate = strings.TrimSpace(f.StartDate)
	f.EndDate = strings.TrimSpace(f.EndDate)
	if err := validate.Struct(f); err != nil {
		return nil, err
	}
	if f.StartDate != "" && f.EndDate != "" && f.StartDate > f.EndDate {
		return nil, fmt.Errorf("start_date after end_date: %w", domain.ErrValidation)
	}
	return s.repo.Search(ctx, f)
}

func (s *service) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validate.Email(email) {
		return nil, fmt.Errorf("invalid email %q: %w", email, domain.ErrValidation)
	}
	return s.repo.ListByEmail(ctx, email)
}

func (s *service) Delete(ctx context.Context, ticketID string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(ticketID))
}

// ClearAll snapshots every booking to the archive (when configured) and
// then deletes them. A failed snapshot aborts the delete.
func (s *service) ClearAll(ctx context.Context) (*ClearResult, error) {
	res := &ClearResult{}
	if s.archive != nil {
		all, err := s.repo.Search(ctx, domain.BookingFilter{})
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(all)
		if err != nil {
			return nil, err
		}
		key := fmt.Sprintf("bookings/%s.json", s.now().Format("20060102T150405Z"))
		loc, err := s.archive.Put(ctx, key, body)
		if err != nil {
			return nil, fmt.Errorf("%w: archive bookings: %v", domain.ErrPersistence, err)
		}
		res.Archive = loc
	}
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return nil, err
	}
	res.Deleted = n
	slog.Info("bookings cleared", "deleted", n, "archive", res.Archive)
	return res, nil
}

func (s *service) Stats(ctx context.Context) (*domain.BookingStats, error) {
	var st domain.BookingStats
	counts := []struct {
		dst *int
		f   domain.BookingFilter
	}{
		{&st.Total, domain.BookingFilter{}},
		{&st.Pending, domain.BookingFilter{Status: domain.StatusPending}},
		{&st.Approved, domain.BookingFilter{Status: domain.StatusApproved}},
		{&st.Cancelled, domain.BookingFilter{Status: domain.StatusCancelled}},
		{&st.Today, domain.BookingFilter{StartDate: s.today(), EndDate: s.today()}},
	}
	for _, c := range counts {
		n, err := s.repo.Count(ctx, c.f)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return &st, nil
}

func (s *service) today() string { return s.now().Format(time.DateOnly) }

// notify dispatches one notification; failures become warnings.
func (s *service) notify(ctx context.Context, res *domain.BookingResult, email, msg string, t domain.NotificationType) {
	if err := s.notifier.Notify(ctx, email, msg, t); err != nil {
		s.warn(res, err)
	}
}

func (s *service) publish(ctx context.Context, res *domain.BookingResult, key string, b *domain.Booking) {
	if s.events == nil {
		return
	}
	ev := Event{
		TicketID:   b.TicketID,
		Email:      b.Email,
		Temple:     b.Temple,
		Date:       b.Date,
		Status:     b.Status,
		OccurredAt: s.now(),
	}
	if err := s.events.PublishJSON(ctx, key, ev); err != nil {
		s.warn(res, fmt.Errorf("publish %s: %w", key, err))
	}
}

func (s *service) warn(res *domain.BookingResult, err error) {
	ticketID := ""
	if res.Booking != nil {
		ticketID = res.Booking.TicketID
	}
	slog.Warn("booking follow-up failed", "ticket_id", ticketID, "err", err)
	res.AddDispatchWarning(err)
}

func notificationTypeFor(st domain.BookingStatus) domain.NotificationType {
	switch st {
	case domain.StatusApproved:
		return domain.NotificationSuccess
	case domain.StatusCancelled:
		return domain.NotificationWarning
	}
	return domain.NotificationInfo
}

var markup = strings.NewReplacer("<", "", ">", "")

func clean(s string) string { return strings.TrimSpace(markup.Replace(s)) }

func sanitize(r domain.CreateBookingRequest) domain.CreateBookingRequest {
	return domain.CreateBookingRequest{
		Temple:  clean(r.Temple),
		Date:    clean(r.Date),
		Time:    clean(r.Time),
		Name:    clean(r.Name),
		Mobile:  clean(r.Mobile),
		Email:   strings.ToLower(clean(r.Email)),
		Aadhaar: clean(r.Aadhaar),
	}
}
