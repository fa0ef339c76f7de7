package localapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/sshrobotics-web/internal/forms"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

func newTestStore(t *testing.T, server *httptest.Server) *Store {
	t.Helper()
	return New(Config{
		BaseURL:    server.URL + "/api/",
		HTTPClient: server.Client(),
		Logger:     logging.New("error"),
	})
}

func TestInitializeChecksHealth(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/api/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy","database":"sqlite"}`))
	}))
	defer server.Close()

	store := newTestStore(t, server)
	require.NoError(t, store.Initialize(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestInitializeFailsWhenUnhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	err := newTestStore(t, server).Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, forms.KindConnectivity, forms.KindOf(err))
	assert.Equal(t, unavailableMessage, forms.DetailOf(err))
}

func TestInitializeFailsWhenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL + "/api"
	server.Close()

	store := New(Config{BaseURL: baseURL, Timeout: time.Second, Logger: logging.New("error")})
	err := store.Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, forms.KindConnectivity, forms.KindOf(err))
}

func TestInitializeRequiresURL(t *testing.T) {
	err := New(Config{}).Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, forms.KindConfiguration, forms.KindOf(err))
}

func TestInsertContactSubmission(t *testing.T) {
	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/contact-submissions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in forms.ContactInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		rec := in.Record("3f2a9c", created)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(rec)
	}))
	defer server.Close()

	store := newTestStore(t, server)
	rec, err := store.InsertContactSubmission(context.Background(), forms.ContactInput{
		FirstName:          "John",
		LastName:           "Doe",
		Email:              "john@example.com",
		ProjectType:        "Robotics Engineering",
		ProjectDescription: "Need a gripper",
	})
	require.NoError(t, err)
	assert.Equal(t, "3f2a9c", rec.ID)
	assert.Equal(t, "Doe", rec.LastName)
	assert.True(t, rec.CreatedAt.Equal(created))
}

func TestInsertServiceInquirySurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Invalid service_type. Must be: robotics, automation, or electronics"}`))
	}))
	defer server.Close()

	_, err := newTestStore(t, server).InsertServiceInquiry(context.Background(), forms.ServiceInquiryInput{
		ServiceType: "invalid",
		Email:       "a@b.com",
	})
	require.Error(t, err)
	assert.Equal(t, forms.KindValidation, forms.KindOf(err))
	assert.Equal(t, "Invalid service_type. Must be: robotics, automation, or electronics", forms.DetailOf(err))
}

func TestListFallsBackToStatusMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	_, err := newTestStore(t, server).ListServiceInquiries(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, forms.KindStore, forms.KindOf(err))
	assert.Equal(t, "HTTP 502", forms.DetailOf(err))
}

func TestListContactSubmissionsSendsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"b","first_name":"B","last_name":"B","email":"b@x.io","project_type":"t","project_description":"d","created_at":"2026-05-02T10:00:00Z"},
			{"id":"a","first_name":"A","last_name":"A","email":"a@x.io","project_type":"t","project_description":"d","created_at":"2026-05-01T10:00:00Z"}
		]`))
	}))
	defer server.Close()

	items, err := newTestStore(t, server).ListContactSubmissions(context.Background(), 25)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
	assert.True(t, items[0].CreatedAt.After(items[1].CreatedAt))
}

func TestInsertUndecodableResponseIsStoreError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))
	defer server.Close()

	_, err := newTestStore(t, server).InsertServiceInquiry(context.Background(), forms.ServiceInquiryInput{ServiceType: forms.ServiceRobotics, Email: "a@b.com"})
	require.Error(t, err)
	assert.Equal(t, forms.KindStore, forms.KindOf(err))
	assert.Equal(t, "invalid response from SQLite API", forms.DetailOf(err))
}
