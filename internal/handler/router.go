package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/foxtrail/planner/internal/middleware"
	"github.com/foxtrail/planner/pkg/logger"
)

// RouterConfig carries what NewRouter needs to assemble the API.
type RouterConfig struct {
	Logger      *logger.Logger
	Itineraries *ItineraryHandler
	Health      *HealthHandler

	CORSAllowedOrigins []string

	// JWTSecret enables bearer authentication on /api when non-empty.
	JWTSecret string

	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter builds the HTTP routing tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", cfg.Health.Health)
	r.Get("/ready", cfg.Health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.JWTSecret != "" {
			r.Use(middleware.Auth(cfg.JWTSecret))
		}
		if cfg.RateLimitRequests > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}

		r.Route("/itineraries", cfg.Itineraries.Routes)
	})

	return r
}
