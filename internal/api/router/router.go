package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mentoverse/mentoverse-platform/internal/booking"
	"github.com/mentoverse/mentoverse-platform/internal/bookings"
	"github.com/mentoverse/mentoverse-platform/internal/catalog"
	"github.com/mentoverse/mentoverse-platform/internal/dashboard"
	httpmiddleware "github.com/mentoverse/mentoverse-platform/internal/http/middleware"
	"github.com/mentoverse/mentoverse-platform/internal/mentors"
	"github.com/mentoverse/mentoverse-platform/internal/payments"
	"github.com/mentoverse/mentoverse-platform/internal/resources"
	"github.com/mentoverse/mentoverse-platform/internal/store"
	"github.com/mentoverse/mentoverse-platform/pkg/logging"
)

// Config holds router configuration. Nil handlers leave their routes out.
type Config struct {
	Logger *logging.Logger

	// Mock persistence collections served under /api/{collection}.
	Services      store.Collection[catalog.Service]
	Mentors       store.Collection[mentors.Mentor]
	Resources     store.Collection[resources.Resource]
	Bookings      store.Collection[bookings.Booking]
	StoreObserver store.RequestObserver

	Wizard        *booking.Handler
	MentorHandler *mentors.Handler
	Dashboard     *dashboard.Handler
	Confirmations *bookings.ConfirmationHandler
	FakePayments  *payments.FakePaymentsHandler

	MetricsHandler http.Handler
	HealthChecks   map[string]HealthCheck

	AdminAuthSecret    string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "mentoverse.api")
	})
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/health", healthHandler(cfg.HealthChecks, logger))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.FakePayments != nil {
		r.Mount("/payments/fake", cfg.FakePayments.Routes())
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))

		// The wizard relay is a websocket, so it stays outside Compress.
		if cfg.Wizard != nil {
			api.Mount("/wizard/sessions", cfg.Wizard.Routes())
		}

		api.Group(func(api chi.Router) {
			api.Use(middleware.Compress(5, "application/json"))

			if cfg.Services != nil {
				mountCollection(api, "/services",
					store.NewHandler("services", cfg.Services, catalog.Service.Validate, logger).
						WithObserver(cfg.StoreObserver))
			}
			if cfg.Resources != nil {
				mountCollection(api, "/resources",
					store.NewHandler("resources", cfg.Resources, resources.Resource.Validate, logger).
						WithObserver(cfg.StoreObserver).
						WithFilter(resources.QueryFilter))
			}
			if cfg.Bookings != nil {
				mountCollection(api, "/bookings",
					store.NewHandler("bookings", cfg.Bookings, bookings.Booking.Validate, logger).
						WithObserver(cfg.StoreObserver))
			}
			api.Route("/mentors", func(m chi.Router) {
				if cfg.Mentors != nil {
					h := store.NewHandler("mentors", cfg.Mentors, mentors.Mentor.Validate, logger).
						WithObserver(cfg.StoreObserver)
					m.Get("/", h.List)
					m.Post("/", h.Create)
				}
				if cfg.MentorHandler != nil {
					m.Post("/applications", cfg.MentorHandler.SubmitApplication)
					m.Get("/{mentorID}/availability", cfg.MentorHandler.GetAvailableDates)
					m.Get("/{mentorID}/availability/{date}", cfg.MentorHandler.GetAvailableSlots)
				}
			})
			if cfg.Dashboard != nil {
				api.Get("/dashboard", cfg.Dashboard.Get)
			}
			if cfg.Confirmations != nil {
				api.Get("/confirmations/{confirmationID}", cfg.Confirmations.Get)
			}
		})
	})

	if cfg.AdminAuthSecret != "" && cfg.MentorHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/mentors/applications", cfg.MentorHandler.ListApplications)
			admin.Post("/mentors/applications/{applicationID}/approve", cfg.MentorHandler.ApproveApplication)
		})
	}

	return r
}

type collectionHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
}

func mountCollection(r chi.Router, path string, h collectionHandler) {
	r.Get(path, h.List)
	r.Post(path, h.Create)
}
