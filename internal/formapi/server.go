// Package formapi is the standalone HTTP server that keeps form submissions
// in a local SQLite file. The site reaches it through the "sqlite" backend.
package formapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/sshrobotics-web/internal/database"
	"github.com/wolfman30/sshrobotics-web/internal/forms"
	httpmiddleware "github.com/wolfman30/sshrobotics-web/internal/http/middleware"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

const maxBodyBytes = 64 << 10

// Storage is what the server needs from its SQLite store.
type Storage interface {
	Ping(ctx context.Context) error
	InsertContactSubmission(ctx context.Context, in forms.ContactInput) (*forms.ContactSubmission, error)
	ListContactSubmissions(ctx context.Context, limit int) ([]forms.ContactSubmission, error)
	InsertServiceInquiry(ctx context.Context, in forms.ServiceInquiryInput) (*forms.ServiceInquiry, error)
	ListServiceInquiries(ctx context.Context, limit int) ([]forms.ServiceInquiry, error)
}

// Config configures a Server.
type Config struct {
	Store       Storage
	Logger      *logging.Logger
	CORSOrigins []string
	Now         func() time.Time
}

// Server serves the form API.
type Server struct {
	store  Storage
	logger *logging.Logger
	cors   []string
	now    func() time.Time
}

// New creates a Server. The store must already be initialized.
func New(cfg Config) *Server {
	if cfg.Store == nil {
		panic("formapi: store cannot be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Server{store: cfg.Store, logger: logger, cors: cfg.CORSOrigins, now: now}
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)
	if len(s.cors) > 0 {
		r.Use(httpmiddleware.CORS(s.cors))
	}
	r.Use(httpmiddleware.RequestLogger(s.logger))

	notFound := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Endpoint not found"})
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", s.health)
		api.Post("/contact-submissions", s.createContactSubmission)
		api.Get("/contact-submissions", s.listContactSubmissions)
		api.Post("/service-inquiries", s.createServiceInquiry)
		api.Get("/service-inquiries", s.listServiceInquiries)
	})
	return r
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("panic serving request", "panic", rec, "path", r.URL.Path)
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "healthy",
		Database:  "sqlite",
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		resp.Status = "unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createContactSubmission(w http.ResponseWriter, r *http.Request) {
	var in forms.ContactInput
	if !s.decode(w, r, &in) {
		return
	}
	in.Normalize()
	if len(in.MissingFields()) > 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "Missing required fields: first_name, last_name, email, project_type, project_description",
		})
		return
	}

	rec, err := s.store.InsertContactSubmission(r.Context(), in)
	if err != nil {
		s.logger.Error("error creating contact submission", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to create contact submission"})
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) listContactSubmissions(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListContactSubmissions(r.Context(), parseLimit(r))
	if err != nil {
		s.logger.Error("error fetching contact submissions", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch contact submissions"})
		return
	}
	if items == nil {
		items = []forms.ContactSubmission{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) createServiceInquiry(w http.ResponseWriter, r *http.Request) {
	var in forms.ServiceInquiryInput
	if !s.decode(w, r, &in) {
		return
	}
	in.Normalize()
	if len(in.MissingFields()) > 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing required fields: service_type, email"})
		return
	}
	if !in.ServiceType.Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: forms.ErrInvalidServiceType.Error()})
		return
	}

	rec, err := s.store.InsertServiceInquiry(r.Context(), in)
	if err != nil {
		s.logger.Error("error creating service inquiry", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to create service inquiry"})
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) listServiceInquiries(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListServiceInquiries(r.Context(), parseLimit(r))
	if err != nil {
		s.logger.Error("error fetching service inquiries", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch service inquiries"})
		return
	}
	if items == nil {
		items = []forms.ServiceInquiry{}
	}
	writeJSON(w, http.StatusOK, items)
}

// parseLimit reads ?limit=, defaulting to database.DefaultListLimit and
// clamping to 1..database.MaxListLimit.
func parseLimit(r *http.Request) int {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return database.DefaultListLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return database.DefaultListLimit
	}
	if n < 1 {
		return 1
	}
	if n > database.MaxListLimit {
		return database.MaxListLimit
	}
	return n
}

// decode reads a JSON object into dst. An empty body decodes as {} so the
// caller reports the missing fields.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request body too large"})
			return false
		}
		s.logger.Warn("failed to decode request", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
