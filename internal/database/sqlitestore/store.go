// Package sqlitestore keeps form submissions in an embedded SQLite file.
package sqlitestore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/sshrobotics-web/internal/forms"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Config holds the SQLite file settings.
type Config struct {
	Path   string
	Logger *logging.Logger
	// Clock defaults to a wall clock seeded from the newest stored row.
	Clock *forms.Clock
}

// Store is a database.Store backed by a local SQLite file.
type Store struct {
	path   string
	logger *logging.Logger
	clock  *forms.Clock
	newID  func() string

	mu sync.RWMutex
	db *sql.DB
}

// New creates a Store. The file is opened by Initialize.
func New(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = forms.NewClock(nil)
	}
	return &Store{
		path:   strings.TrimSpace(cfg.Path),
		logger: logger,
		clock:  clock,
		newID:  uuid.NewString,
	}
}

// newWithDB wraps an already open handle, skipping Initialize.
func newWithDB(db *sql.DB, clock *forms.Clock) *Store {
	s := New(Config{Path: "test.db", Logger: logging.New("error"), Clock: clock})
	s.db = db
	return s
}

func dsn(path string) string {
	if path == ":memory:" {
		return "file::memory:?_pragma=foreign_keys(1)"
	}
	return "file:" + filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"
}

// Initialize opens the file, applies the schema and seeds the clock from the
// newest stored row. Calling it on an open store is a no-op.
func (s *Store) Initialize(ctx context.Context) error {
	if s.path == "" {
		return forms.ConfigurationError("Missing SQLite database path", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", dsn(s.path))
	if err != nil {
		return forms.ConfigurationError("SQLite database initialization failed", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return forms.ConnectivityError("SQLite database initialization failed", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return forms.ConfigurationError("SQLite database initialization failed", fmt.Errorf("apply schema: %w", err))
	}
	if err := seedClock(ctx, db, s.clock); err != nil {
		_ = db.Close()
		return forms.StoreError("SQLite database initialization failed", err)
	}

	s.db = db
	s.logger.Info("SQLite database initialized", "path", s.path)
	return nil
}

func seedClock(ctx context.Context, db *sql.DB, clock *forms.Clock) error {
	for _, table := range []string{"contact_submissions", "service_inquiries"} {
		var newest sql.NullInt64
		if err := db.QueryRowContext(ctx, "SELECT MAX(created_at) FROM "+table).Scan(&newest); err != nil {
			return fmt.Errorf("read newest %s: %w", table, err)
		}
		if newest.Valid {
			clock.Observe(fromNanos(newest.Int64))
		}
	}
	return nil
}

func toNanos(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromNanos(v int64) time.Time {
	return time.Unix(0, v).UTC()
}

func nullable(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func (s *Store) conn() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, forms.ConfigurationError("Database not initialized. Call Initialize first.", forms.ErrNotInitialized)
	}
	return s.db, nil
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (s *Store) InsertContactSubmission(ctx context.Context, in forms.ContactInput) (*forms.ContactSubmission, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rec := in.Record(s.newID(), s.clock.Next())
	_, err = db.ExecContext(ctx,
		`INSERT INTO contact_submissions (id, first_name, last_name, email, company, project_type, project_description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.FirstName,
		rec.LastName,
		rec.Email,
		nullable(rec.Company),
		rec.ProjectType,
		rec.ProjectDescription,
		toNanos(rec.CreatedAt),
	)
	if err != nil {
		return nil, forms.StoreError("Failed to submit contact form", err)
	}
	return &rec, nil
}

func (s *Store) ListContactSubmissions(ctx context.Context, limit int) ([]forms.ContactSubmission, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, first_name, last_name, email, company, project_type, project_description, created_at
		 FROM contact_submissions
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, forms.StoreError("Failed to fetch contact submissions", err)
	}
	defer rows.Close()

	out := []forms.ContactSubmission{}
	for rows.Next() {
		var (
			rec       forms.ContactSubmission
			company   sql.NullString
			createdAt int64
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.FirstName,
			&rec.LastName,
			&rec.Email,
			&company,
			&rec.ProjectType,
			&rec.ProjectDescription,
			&createdAt,
		); err != nil {
			return nil, forms.StoreError("Failed to fetch contact submissions", err)
		}
		rec.Company = company.String
		rec.CreatedAt = fromNanos(createdAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, forms.StoreError("Failed to fetch contact submissions", err)
	}
	return out, nil
}

func (s *Store) InsertServiceInquiry(ctx context.Context, in forms.ServiceInquiryInput) (*forms.ServiceInquiry, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rec := in.Record(s.newID(), s.clock.Next())
	_, err = db.ExecContext(ctx,
		`INSERT INTO service_inquiries (id, service_type, email, name, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID,
		string(rec.ServiceType),
		rec.Email,
		nullable(rec.Name),
		nullable(rec.Message),
		toNanos(rec.CreatedAt),
	)
	if err != nil {
		return nil, forms.StoreError("Failed to submit service inquiry", err)
	}
	return &rec, nil
}

func (s *Store) ListServiceInquiries(ctx context.Context, limit int) ([]forms.ServiceInquiry, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, service_type, email, name, message, created_at
		 FROM service_inquiries
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, forms.StoreError("Failed to fetch service inquiries", err)
	}
	defer rows.Close()

	out := []forms.ServiceInquiry{}
	for rows.Next() {
		var (
			rec         forms.ServiceInquiry
			serviceType string
			name        sql.NullString
			message     sql.NullString
			createdAt   int64
		)
		if err := rows.Scan(&rec.ID, &serviceType, &rec.Email, &name, &message, &createdAt); err != nil {
			return nil, forms.StoreError("Failed to fetch service inquiries", err)
		}
		rec.ServiceType = forms.ServiceType(serviceType)
		rec.Name = name.String
		rec.Message = message.String
		rec.CreatedAt = fromNanos(createdAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, forms.StoreError("Failed to fetch service inquiries", err)
	}
	return out, nil
}

// Close closes the SQLite handle. Safe to call repeatedly or before
// Initialize.
func (s *Store) Close() error {
	s.mu.Lock()
	db := s.db
	s.db = nil
	s.mu.Unlock()
	if db == nil {
		return nil
	}
	return db.Close()
}
