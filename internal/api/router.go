package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/clinique-espoir-be/internal/api/handlers"
	"github.com/isdelr/clinique-espoir-be/internal/auth"
	"github.com/isdelr/clinique-espoir-be/internal/moderation"
	"github.com/isdelr/clinique-espoir-be/internal/services"
	"github.com/isdelr/clinique-espoir-be/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the services the router wires into handlers.
type Dependencies struct {
	Accounts     services.AccountServiceProvider
	Appointments services.AppointmentServiceProvider
	Catalog      services.CatalogServiceProvider
	Events       services.EventServiceProvider
	Session      *session.Holder
	Board        *moderation.Board
	Assistant    handlers.Replier
	AdminGate    *auth.AdminGate
	Tokens       *auth.Tokens

	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	SecureCookies  bool
	// Limiter throttles login, registration and chat; nil disables it.
	Limiter *RateLimiter
}

// NewRouter creates and configures a new Chi router.
func NewRouter(d Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: !containsWildcard(origins),
		MaxAge:           300,
	}))

	throttle := func(next http.Handler) http.Handler { return next }
	if d.Limiter != nil {
		throttle = d.Limiter.Middleware
	}

	// Initialize handlers
	wireHandler := handlers.NewWireHandler(d.Accounts, d.Appointments)
	sessionHandler := handlers.NewSessionHandler(d.Session, d.Appointments)
	bookingHandler := handlers.NewBookingHandler(d.Appointments, d.Catalog, d.Session)
	catalogHandler := handlers.NewCatalogHandler(d.Catalog)
	chatHandler := handlers.NewChatHandler(d.Assistant)
	adminHandler := handlers.NewAdminHandler(d.AdminGate, d.Tokens, d.Board, d.Catalog, d.SecureCookies)
	eventHandler := handlers.NewEventHandler(d.Events)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Record-store contract used by remote-mode instances
	r.With(throttle).Post("/auth/register", wireHandler.Register)
	r.With(throttle).Post("/auth/login", wireHandler.Login)
	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", wireHandler.ListAppointments)
		r.Post("/", wireHandler.CreateAppointment)
		r.Patch("/{id}", wireHandler.UpdateStatus)
	})

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/clinic", catalogHandler.Clinic)
		r.Get("/doctors", catalogHandler.Doctors)
		r.Get("/services", catalogHandler.Services)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.With(throttle).Post("/register", sessionHandler.Register)
			r.With(throttle).Post("/login", sessionHandler.Login)
			r.Post("/logout", sessionHandler.Logout)
			r.Get("/appointments", sessionHandler.Appointments)
		})

		r.Post("/bookings", bookingHandler.Create)
		r.With(throttle).Post("/chat", chatHandler.Send)

		r.Route("/admin", func(r chi.Router) {
			r.With(throttle).Post("/login", adminHandler.Login)
			r.Post("/logout", adminHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(d.Tokens.Middleware())
				r.Get("/appointments", adminHandler.List)
				r.Post("/appointments/refresh", adminHandler.Refresh)
				r.Patch("/appointments/{id}", adminHandler.UpdateStatus)
				r.Get("/events", eventHandler.GetRecent)
			})
		})
	})

	return r
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
