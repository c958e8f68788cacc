package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/ender-crm/internal/api/handlers"
	"github.com/isdelr/ender-crm/internal/auth"
	"github.com/isdelr/ender-crm/internal/metrics"
	"github.com/isdelr/ender-crm/internal/render"
	"github.com/isdelr/ender-crm/internal/services"
	"github.com/isdelr/ender-crm/internal/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Deps groups what the router wires into its handlers.
type Deps struct {
	DB             handlers.Pinger
	Records        services.RecordServiceProvider
	Users          services.UserServiceProvider
	Sessions       *sessions.Manager
	Gateway        *auth.Gateway
	Renderer       render.Renderer
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("")
	}))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(d.DB)
	userHandler := handlers.NewUserHandler(d.Gateway, d.Users, d.Renderer, d.Sessions)
	recordHandler := handlers.NewRecordHandler(d.Records, d.Renderer, d.Sessions)

	r.Get("/healthz", healthHandler.Get)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(d.Sessions.Middleware)
		r.Use(d.Gateway.VerifySession)

		r.Get("/", recordHandler.Home)
		r.Post("/", userHandler.Login)
		r.Get("/logout", userHandler.Logout)
		r.Post("/logout", userHandler.Logout)
		r.Get("/register", userHandler.RegisterForm)
		r.Post("/register", userHandler.Register)

		r.Route("/records", func(r chi.Router) {
			r.Use(d.Gateway.RequireAuthenticated)

			r.Get("/add", recordHandler.CreateForm)
			r.Post("/add", recordHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", recordHandler.Get)
				r.Get("/update", recordHandler.UpdateForm)
				r.Post("/update", recordHandler.Update)
				r.Get("/delete", recordHandler.Delete)
				r.Post("/delete", recordHandler.Delete)
			})
		})
	})

	return r
}
