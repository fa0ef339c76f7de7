package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/sshrobotics-web/internal/contact"
	httpmiddleware "github.com/wolfman30/sshrobotics-web/internal/http/middleware"
	"github.com/wolfman30/sshrobotics-web/internal/observability/metrics"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ContactHandler     *contact.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// RateLimiter guards the submission endpoints. Nil disables limiting.
	RateLimiter httpmiddleware.Limiter
	Metrics     *metrics.FormMetrics
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	if cfg.ContactHandler == nil {
		panic("router: contact handler is required")
	}
	r := chi.NewRouter()

	// Middleware
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

	r.NotFound(jsonError(http.StatusNotFound, "not found"))
	r.MethodNotAllowed(jsonError(http.StatusMethodNotAllowed, "method not allowed"))

	h := cfg.ContactHandler
	r.Get("/health", h.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/database", h.DatabaseType)
		api.Get("/contact-submissions", h.ListContactSubmissions)
		api.Get("/service-inquiries", h.ListServiceInquiries)

		// Submissions come straight from the public site.
		api.Group(func(submit chi.Router) {
			submit.Use(httpmiddleware.RateLimit(cfg.RateLimiter, cfg.Logger, cfg.Metrics))
			submit.Post("/contact", h.SubmitContact)
			submit.Post("/service-inquiries", h.SubmitServiceInquiry)
		})
	})

	return r
}

func jsonError(status int, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": message})
	}
}
