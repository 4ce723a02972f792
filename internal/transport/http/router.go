package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/temple-booking/internal/application/booking"
	"github.com/temple-booking/internal/application/notification"
	"github.com/temple-booking/internal/application/session"
	"github.com/temple-booking/internal/application/user"
	"github.com/temple-booking/internal/config"
	"github.com/temple-booking/internal/domain"
	"github.com/temple-booking/internal/transport/http/handler"
	appmiddleware "github.com/temple-booking/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)
	adminOnly := appmiddleware.RequireRole(domain.RoleAdmin)

	// 5 requests/second, burst of 10, on public write endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	notifSvc := notification.NewService(notification.ServiceDeps{
		NotificationRepo: deps.NotificationRepo,
		UserRepo:         deps.UserRepo,
		Channels:         deps.Channels,
	})
	bookingDeps := booking.ServiceDeps{
		BookingRepo: deps.BookingRepo,
		Notifier:    notifSvc,
		Generator:   deps.Tickets,
		MaxAttempts: cfg.TicketMaxAttempts,
		AdminEmail:  cfg.NotificationAdminEmail,
	}
	// Optional collaborators stay nil interfaces when not configured.
	if deps.SMSSender != nil {
		bookingDeps.SMS = deps.SMSSender
	}
	if deps.Publisher != nil {
		bookingDeps.Events = deps.Publisher
	}
	if deps.Archive != nil {
		bookingDeps.Archive = deps.Archive
	}
	bookingSvc := booking.NewService(bookingDeps)
	userSvc := user.NewService(user.ServiceDeps{UserRepo: deps.UserRepo, BcryptCost: cfg.BcryptCost})
	sessionSvc := session.NewService(session.ServiceDeps{
		UserRepo:    deps.UserRepo,
		JWTProvider: deps.JWTProvider,
		Admin: session.AdminCredentials{
			Username: cfg.AdminUsername,
			Password: cfg.AdminPassword,
			Email:    cfg.NotificationAdminEmail,
		},
	})

	healthH := handler.NewHealthHandler()
	bookingH := handler.NewBookingHandler(bookingSvc)
	userH := handler.NewUserHandler(userSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	notifH := handler.NewNotificationHandler(notifSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/bookings", bookingH.Create)
		r.Get("/bookings/{ticketID}", bookingH.Get)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.With(sensitiveRL.Limit).Post("/sessions/admin-login", sessionH.AdminLogin)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/bookings/mine", bookingH.Mine)
			r.Post("/bookings/{ticketID}/cancel", bookingH.Cancel)
			r.Post("/bookings/{ticketID}/purge", bookingH.Purge)
			r.Get("/notifications", notifH.List)
			r.Put("/notifications/{id}/read", notifH.MarkAsRead)
			r.Delete("/notifications/{id}", notifH.Delete)
			r.Delete("/notifications", notifH.ClearAll)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(adminOnly)

				r.Get("/bookings", bookingH.Search)
				r.Get("/bookings/user/{email}", bookingH.ListByEmail)
				r.Put("/bookings/{ticketID}/status", bookingH.UpdateStatus)
				r.Delete("/bookings/{ticketID}", bookingH.Delete)
				r.Delete("/bookings", bookingH.ClearAll)
				r.Get("/admin/stats", bookingH.Stats)
				r.Post("/notifications/send", notifH.Send)
				r.Post("/notifications/broadcast", notifH.Broadcast)
			})
		})
	})

	return r
}
