package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/temple-booking/internal/domain"
	"github.com/temple-booking/internal/pkg/id"
	"github.com/temple-booking/internal/pkg/validate"
)

type Service interface {
	Notify(ctx context.Context, email, message string, t domain.NotificationType) error
	Broadcast(ctx context.Context, message string, t domain.NotificationType) (int, error)
	Send(ctx context.Context, req domain.SendNotificationRequest) (int, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string, caller Caller) (*domain.Notification, error)
	Delete(ctx context.Context, notificationID string, caller Caller) error
	ClearAll(ctx context.Context, email string) (int, error)
}

// Caller identifies who is acting on a notification. Admins may act on any
// notification; users only on their own.
type Caller struct {
	Email string
	Admin bool
}

// Channel delivers an already persisted notification outside the store
// (email, push). A failed delivery does not remove the record.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, n *domain.Notification) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	BatchPut(ctx context.Context, ns []domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) (*domain.Notification, error)
	Delete(ctx context.Context, notificationID string) error
	DeleteByEmail(ctx context.Context, email string) (int, error)
}

type recipientStore interface {
	ListEmails(ctx context.Context) ([]string, error)
}

type service struct {
	repo       notificationStore
	recipients recipientStore
	channels   []Channel
	now        func() time.Time
}

type ServiceDeps struct {
	NotificationRepo notificationStore
	UserRepo         recipientStore
	Channels         []Channel
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:       deps.NotificationRepo,
		recipients: deps.UserRepo,
		channels:   deps.Channels,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Notify persists one notification and forwards it to every channel.
// The returned error wraps domain.ErrNotificationDispatch.
func (s *service) Notify(ctx context.Context, email, message string, t domain.NotificationType) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || message == "" {
		return fmt.Errorf("%w: email and message are required: %w", domain.ErrNotificationDispatch, domain.ErrValidation)
	}
	n := &domain.Notification{
		NotificationID: id.New(),
		UserEmail:      email,
		Message:        message,
		Type:           t,
		CreatedAt:      s.now(),
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return fmt.Errorf("%w: notify %s: %w", domain.ErrNotificationDispatch, email, err)
	}
	var errs []error
	for _, ch := range s.channels {
		if err := ch.Deliver(ctx, n); err != nil {
			slog.Warn("notification delivery failed", "channel", ch.Name(), "email", email, "err", err)
			errs = append(errs, fmt.Errorf("%s delivery to %s: %w", ch.Name(), email, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrNotificationDispatch, errors.Join(errs...))
	}
	return nil
}

// Broadcast creates one notification per registered user and returns how
// many were written. Broadcasts are not forwarded to delivery channels.
func (s *service) Broadcast(ctx context.Context, message string, t domain.NotificationType) (int, error) {
	if strings.TrimSpace(message) == "" {
		return 0, fmt.Errorf("message is required: %w", domain.ErrValidation)
	}
	emails, err := s.recipients.ListEmails(ctx)
	if err != nil {
		return 0, err
	}
	if len(emails) == 0 {
		return 0, nil
	}
	now := s.now()
	ns := lo.Map(lo.Uniq(emails), func(email string, _ int) domain.Notification {
		return domain.Notification{
			NotificationID: id.NewAt(now),
			UserEmail:      email,
			Message:        message,
			Type:           t,
			CreatedAt:      now,
		}
	})
	if err := s.repo.BatchPut(ctx, ns); err != nil {
		return 0, err
	}
	return len(ns), nil
}

func (s *service) Send(ctx context.Context, req domain.SendNotificationRequest) (int, error) {
	if err := validate.Struct(req); err != nil {
		return 0, err
	}
	t, err := domain.ParseNotificationType(req.Type)
	if err != nil {
		return 0, err
	}
	if req.Broadcast {
		return s.Broadcast(ctx, req.Message, t)
	}
	if req.UserEmail == "" {
		return 0, fmt.Errorf("user_email is required: %w", domain.ErrValidation)
	}
	if err := s.Notify(ctx, req.UserEmail, req.Message, t); err != nil {
		return 0, err
	}
	return 1, nil
}

func (s *service) ListByEmail(ctx context.Context, email string) ([]domain.Notification, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required: %w", domain.ErrValidation)
	}
	return s.repo.ListByEmail(ctx, email)
}

func (s *service) MarkAsRead(ctx context.Context, notificationID string, caller Caller) (*domain.Notification, error) {
	if err := s.authorize(ctx, notificationID, caller); err != nil {
		return nil, err
	}
	return s.repo.MarkAsRead(ctx, notificationID)
}

func (s *service) Delete(ctx context.Context, notificationID string, caller Caller) error {
	if err := s.authorize(ctx, notificationID, caller); err != nil {
		return err
	}
	return s.repo.Delete(ctx, notificationID)
}

func (s *service) ClearAll(ctx context.Context, email string) (int, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return 0, fmt.Errorf("email is required: %w", domain.ErrValidation)
	}
	return s.repo.DeleteByEmail(ctx, email)
}

func (s *service) authorize(ctx context.Context, notificationID string, caller Caller) error {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return err
	}
	if !caller.Admin && !strings.EqualFold(n.UserEmail, caller.Email) {
		return fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	return nil
}
