package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/telecare-platform/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/telecare-platform/internal/http/middleware"
	"github.com/wolfman30/telecare-platform/internal/practitioners"
	"github.com/wolfman30/telecare-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	Appointments        *handlers.AppointmentsHandler
	WaitingRoom         *handlers.WaitingRoomHandler
	Availability        *handlers.AvailabilityHandler
	Session             *handlers.SessionHandler
	Watch               *handlers.WatchHandler
	PractitionerProfile *practitioners.Handler
	MetricsHandler      http.Handler
	AuthJWTSecret       string
	CORSAllowedOrigins  []string
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Participant endpoints
	r.Group(func(api chi.Router) {
		api.Use(httpmiddleware.ParticipantJWT(cfg.AuthJWTSecret))

		if cfg.Availability != nil {
			api.Get("/practitioners/{practitionerID}/availability", cfg.Availability.Check)
		}
		if cfg.PractitionerProfile != nil {
			api.Get("/practitioners/{practitionerID}/profile", cfg.PractitionerProfile.GetProfile)
			api.Put("/practitioners/{practitionerID}/profile", cfg.PractitionerProfile.UpdateProfile)
		}

		if cfg.Appointments != nil {
			api.Route("/appointments", func(r chi.Router) {
				r.Post("/", cfg.Appointments.Book)
				r.Get("/", cfg.Appointments.List)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", cfg.Appointments.Get)
					r.Post("/start", cfg.Appointments.Start)
					r.Post("/complete", cfg.Appointments.Complete)
					r.Post("/cancel", cfg.Appointments.Cancel)
					if cfg.WaitingRoom != nil {
						r.Post("/waiting-room/join", cfg.WaitingRoom.Join)
						r.Post("/waiting-room/leave", cfg.WaitingRoom.Leave)
					}
					if cfg.Session != nil {
						r.Get("/session-gate", cfg.Session.Check)
						r.Post("/session-gate/await", cfg.Session.Await)
					}
					if cfg.Watch != nil {
						r.Get("/watch", cfg.Watch.Watch)
					}
				})
			})
		}
		if cfg.WaitingRoom != nil {
			api.Get("/waiting-room", cfg.WaitingRoom.ListWaiting)
		}
	})

	return r
}
