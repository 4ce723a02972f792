package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"

	"github.com/temple-booking/internal/config"
	"github.com/temple-booking/internal/domain"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
	dialer   net.Dialer
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

// SendEmail runs one SMTP session bounded by ctx. Cancelling ctx closes the
// connection, so a stalled server cannot hold the caller.
func (m *mailer) SendEmail(ctx context.Context, to, subject, body string) (err error) {
	conn, err := m.dialer.DialContext(ctx, "tcp", net.JoinHostPort(m.host, m.port))
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer func() {
		stop()
		if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
			err = errors.Join(ctxErr, err)
		}
	}()

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if m.username != "" {
		if err := c.Auth(smtp.PlainAuth("", m.username, m.password, m.host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(m.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// EmailChannel delivers persisted notifications by email.
type EmailChannel struct {
	mailer Mailer
}

func NewEmailChannel(m Mailer) *EmailChannel { return &EmailChannel{mailer: m} }

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Deliver(ctx context.Context, n *domain.Notification) error {
	return c.mailer.SendEmail(ctx, n.UserEmail, subjectFor(n.Type), n.Message)
}

func subjectFor(t domain.NotificationType) string {
	switch t {
	case domain.NotificationSuccess:
		return "Your temple visit booking"
	case domain.NotificationWarning:
		return "Important: booking update"
	default:
		return "Booking notification"
	}
}
