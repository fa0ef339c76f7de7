// Package localapi stores form submissions through the local form API server
// over HTTP.
package localapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/wolfman30/sshrobotics-web/internal/forms"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

const unavailableMessage = "SQLite API backend not available. Please ensure the backend server is running."

// Config controls how the client reaches the form API server.
type Config struct {
	// BaseURL includes the /api prefix, e.g. http://localhost:3001/api.
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Store is a database.Store backed by the form API server.
type Store struct {
	baseURL string
	client  *resty.Client
	logger  *logging.Logger
}

// New creates a Store. Configuration is checked by Initialize.
func New(cfg Config) *Store {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &Store{
		baseURL: baseURL,
		client: resty.NewWithClient(httpClient).
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json").
			SetLogger(restyLogger{logger: logger}),
		logger: logger,
	}
}

// Initialize checks that the server answers its health endpoint.
func (s *Store) Initialize(ctx context.Context) error {
	if s.baseURL == "" {
		return forms.ConfigurationError("Missing SQLite API URL", nil)
	}
	if _, err := url.ParseRequestURI(s.baseURL); err != nil {
		return forms.ConfigurationError("Invalid SQLite API URL", err)
	}

	resp, err := s.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return forms.ConnectivityError(unavailableMessage, err)
	}
	if !resp.IsSuccess() {
		return forms.ConnectivityError(unavailableMessage, fmt.Errorf("SQLite API not available (%d)", resp.StatusCode()))
	}
	s.logger.Info("SQLite API provider initialized", "base_url", s.baseURL)
	return nil
}

func (s *Store) InsertContactSubmission(ctx context.Context, in forms.ContactInput) (*forms.ContactSubmission, error) {
	var out forms.ContactSubmission
	if err := s.invoke(ctx, http.MethodPost, "/contact-submissions", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) ListContactSubmissions(ctx context.Context, limit int) ([]forms.ContactSubmission, error) {
	var out []forms.ContactSubmission
	if err := s.invoke(ctx, http.MethodGet, "/contact-submissions", limitQuery(limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) InsertServiceInquiry(ctx context.Context, in forms.ServiceInquiryInput) (*forms.ServiceInquiry, error) {
	var out forms.ServiceInquiry
	if err := s.invoke(ctx, http.MethodPost, "/service-inquiries", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) ListServiceInquiries(ctx context.Context, limit int) ([]forms.ServiceInquiry, error) {
	var out []forms.ServiceInquiry
	if err := s.invoke(ctx, http.MethodGet, "/service-inquiries", limitQuery(limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Close is a no-op; the client holds no connections of its own.
func (s *Store) Close() error {
	return nil
}

func limitQuery(limit int) map[string]string {
	if limit <= 0 {
		return nil
	}
	return map[string]string{"limit": strconv.Itoa(limit)}
}

type apiError struct {
	Error string `json:"error"`
}

func (s *Store) invoke(ctx context.Context, method, path string, query map[string]string, body any, out any) error {
	if s.baseURL == "" {
		return forms.ConfigurationError("Missing SQLite API URL", nil)
	}

	var envelope apiError
	req := s.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(out).
		SetError(&envelope)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		// A response that arrived but did not decode is the server's fault,
		// not the network's.
		if resp != nil && resp.RawResponse != nil && resp.IsSuccess() {
			return forms.StoreError("invalid response from SQLite API", err)
		}
		return forms.ConnectivityError(unavailableMessage, err)
	}
	if !resp.IsSuccess() {
		return apiFailure(resp.StatusCode(), envelope.Error)
	}
	return nil
}

// apiFailure surfaces the server's {error} message, or HTTP <code> when the
// body has none.
func apiFailure(status int, serverMessage string) error {
	message := strings.TrimSpace(serverMessage)
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	cause := fmt.Errorf("localapi: status %d", status)
	if status >= 400 && status < 500 && status != http.StatusNotFound {
		return forms.ValidationError(message, cause)
	}
	return forms.StoreError(message, cause)
}

// restyLogger routes the client's own warnings into the service log.
type restyLogger struct {
	logger *logging.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...), "component", "localapi")
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "localapi")
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "localapi")
}
