package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wolfman30/sshrobotics-web/internal/contact"
	"github.com/wolfman30/sshrobotics-web/internal/database"
	"github.com/wolfman30/sshrobotics-web/internal/database/sqlitestore"
	httpmiddleware "github.com/wolfman30/sshrobotics-web/internal/http/middleware"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

func newTestRouter(t *testing.T, limiter httpmiddleware.Limiter) http.Handler {
	t.Helper()

	logger := logging.New("error")
	path := filepath.Join(t.TempDir(), "forms.db")
	selector := database.NewSelector(database.SelectorConfig{
		DatabaseType: string(database.KindSQLiteFile),
		Logger:       logger,
		Build: func(context.Context, database.Kind) (database.Store, error) {
			return sqlitestore.New(sqlitestore.Config{Path: path, Logger: logger}), nil
		},
	})
	t.Cleanup(func() { _ = selector.Close(context.Background()) })

	handler := contact.NewHandler(contact.NewService(selector, logger), nil, logger)
	return New(&Config{
		Logger:             logger,
		ContactHandler:     handler,
		CORSAllowedOrigins: []string{"https://sshrobotics.com"},
		RateLimiter:        limiter,
	})
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
	if resp["database"] != "sqlite-file" {
		t.Errorf("expected database 'sqlite-file', got %q", resp["database"])
	}
}

func TestRouterContactRoundTrip(t *testing.T) {
	router := newTestRouter(t, nil)

	payload := `{"first_name":"John","last_name":"Doe","email":"john@example.com","company":"Acme","project_type":"robotics","project_description":"Palletizing cell"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}

	var created struct {
		Success bool `json:"success"`
		Data    struct {
			ID        string `json:"id"`
			Email     string `json:"email"`
			CreatedAt string `json:"created_at"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !created.Success || created.Data.ID == "" || created.Data.CreatedAt == "" {
		t.Fatalf("unexpected response %+v", created)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/contact-submissions", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var list struct {
		Success bool `json:"success"`
		Data    []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list.Data) != 1 || list.Data[0].ID != created.Data.ID {
		t.Fatalf("expected stored submission in list, got %+v", list)
	}
}

func TestRouterServiceInquiryValidation(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/service-inquiries", strings.NewReader(`{"service_type":"invalid","email":"a@b.com"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid service_type") {
		t.Fatalf("expected service type error, got %s", rr.Body.String())
	}
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (bool, error) { return false, nil }

func TestRouterRateLimitsSubmissionsOnly(t *testing.T) {
	router := newTestRouter(t, denyAll{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader("{}")))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/database", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("reads should not be rate limited, got %d", rr.Code)
	}
}

func TestRouterUnknownRouteIsJSON(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON response, got %s", ct)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	req.Header.Set("Origin", "https://sshrobotics.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://sshrobotics.com" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}
