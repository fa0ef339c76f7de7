// Package pocketbase stores form submissions in PocketBase collections through
// its records REST API.
package pocketbase

import (
	"context"
	"errors"
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

const (
	contactCollection = "contact_submissions"
	inquiryCollection = "service_inquiries"

	// maxPerPage is the largest page PocketBase serves.
	maxPerPage = 500
)

// Config controls how the store reaches the PocketBase server.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Store is a database.Store backed by PocketBase.
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
	client := resty.NewWithClient(httpClient).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{logger: logger})
	return &Store{
		baseURL: baseURL,
		client:  client,
		logger:  logger,
	}
}

// Initialize checks the server's health endpoint.
func (s *Store) Initialize(ctx context.Context) error {
	if s.baseURL == "" {
		return forms.ConfigurationError("Missing PocketBase environment variable POCKETBASE_URL", nil)
	}
	if _, err := url.ParseRequestURI(s.baseURL); err != nil {
		return forms.ConfigurationError("Invalid PocketBase URL", err)
	}
	if err := s.send(ctx, http.MethodGet, "/api/health", nil, nil, nil); err != nil {
		return forms.ConnectivityError("PocketBase database initialization failed", err)
	}
	s.logger.Info("PocketBase database initialized", "base_url", s.baseURL)
	return nil
}

type contactRecord struct {
	ID                 string `json:"id"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Email              string `json:"email"`
	Company            string `json:"company"`
	ProjectType        string `json:"project_type"`
	ProjectDescription string `json:"project_description"`
	Created            string `json:"created"`
}

func (r contactRecord) submission() forms.ContactSubmission {
	return forms.ContactSubmission{
		ID:                 r.ID,
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		Email:              r.Email,
		Company:            r.Company,
		ProjectType:        r.ProjectType,
		ProjectDescription: r.ProjectDescription,
		CreatedAt:          parseCreated(r.Created),
	}
}

type inquiryRecord struct {
	ID          string `json:"id"`
	ServiceType string `json:"service_type"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Message     string `json:"message"`
	Created     string `json:"created"`
}

func (r inquiryRecord) inquiry() forms.ServiceInquiry {
	return forms.ServiceInquiry{
		ID:          r.ID,
		ServiceType: forms.ServiceType(r.ServiceType),
		Email:       r.Email,
		Name:        r.Name,
		Message:     r.Message,
		CreatedAt:   parseCreated(r.Created),
	}
}

type listPage[T any] struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalPages int `json:"totalPages"`
	Items      []T `json:"items"`
}

func (s *Store) InsertContactSubmission(ctx context.Context, in forms.ContactInput) (*forms.ContactSubmission, error) {
	var rec contactRecord
	if err := s.send(ctx, http.MethodPost, recordsPath(contactCollection), nil, in, &rec); err != nil {
		return nil, storeError("Failed to submit contact form", err)
	}
	out := rec.submission()
	return &out, nil
}

func (s *Store) ListContactSubmissions(ctx context.Context, limit int) ([]forms.ContactSubmission, error) {
	records, err := listRecords[contactRecord](ctx, s, contactCollection, limit)
	if err != nil {
		return nil, storeError("Failed to fetch contact submissions", err)
	}
	out := make([]forms.ContactSubmission, 0, len(records))
	for _, r := range records {
		out = append(out, r.submission())
	}
	return out, nil
}

func (s *Store) InsertServiceInquiry(ctx context.Context, in forms.ServiceInquiryInput) (*forms.ServiceInquiry, error) {
	var rec inquiryRecord
	if err := s.send(ctx, http.MethodPost, recordsPath(inquiryCollection), nil, in, &rec); err != nil {
		return nil, storeError("Failed to submit service inquiry", err)
	}
	out := rec.inquiry()
	return &out, nil
}

func (s *Store) ListServiceInquiries(ctx context.Context, limit int) ([]forms.ServiceInquiry, error) {
	records, err := listRecords[inquiryRecord](ctx, s, inquiryCollection, limit)
	if err != nil {
		return nil, storeError("Failed to fetch service inquiries", err)
	}
	out := make([]forms.ServiceInquiry, 0, len(records))
	for _, r := range records {
		out = append(out, r.inquiry())
	}
	return out, nil
}

// Close is a no-op; PocketBase is stateless over HTTP.
func (s *Store) Close() error {
	return nil
}

func recordsPath(collection string) string {
	return "/api/collections/" + collection + "/records"
}

// listRecords pages through a collection newest first until limit records
// are collected or the collection is exhausted. The page size stays fixed
// across requests because PocketBase offsets by (page-1)*perPage.
func listRecords[T any](ctx context.Context, s *Store, collection string, limit int) ([]T, error) {
	perPage := maxPerPage
	if limit > 0 && limit < perPage {
		perPage = limit
	}
	out := []T{}
	for page := 1; limit <= 0 || len(out) < limit; page++ {
		query := map[string]string{
			"sort":    "-created",
			"page":    strconv.Itoa(page),
			"perPage": strconv.Itoa(perPage),
		}
		var resp listPage[T]
		if err := s.send(ctx, http.MethodGet, recordsPath(collection), query, nil, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Items...)
		if len(resp.Items) < perPage || page >= resp.TotalPages {
			break
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// apiError is PocketBase's error envelope.
type apiError struct {
	Status  int    `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// statusError carries a non-2xx response.
type statusError struct {
	StatusCode int
	Message    string
}

func (e *statusError) Error() string {
	return e.Message
}

func (s *Store) send(ctx context.Context, method, path string, query map[string]string, body any, out any) error {
	var envelope apiError
	req := s.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetError(&envelope)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("pocketbase: %s %s: %w", method, path, err)
	}
	if !resp.IsSuccess() {
		message := strings.TrimSpace(envelope.Message)
		if message == "" {
			message = fmt.Sprintf("HTTP %d", resp.StatusCode())
		}
		return &statusError{StatusCode: resp.StatusCode(), Message: message}
	}
	return nil
}

// restyLogger routes the client's own warnings into the service log.
type restyLogger struct {
	logger *logging.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...), "component", "pocketbase")
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "pocketbase")
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "pocketbase")
}

// storeError keeps PocketBase's own message for rejected records and falls
// back to detail otherwise.
func storeError(detail string, err error) error {
	var se *statusError
	if errors.As(err, &se) {
		if se.StatusCode == http.StatusBadRequest {
			return forms.ValidationError(se.Message, err)
		}
		return forms.StoreError(detail, err)
	}
	return forms.ConnectivityError(detail, err)
}

var createdLayouts = []string{
	"2006-01-02 15:04:05.000Z",
	"2006-01-02 15:04:05Z",
	time.RFC3339Nano,
}

func parseCreated(v string) time.Time {
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
