// Package supabase stores form submissions in the hosted Supabase Postgres
// database.
package supabase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfman30/sshrobotics-web/internal/forms"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

// pgxPool is the subset of pgxpool.Pool the store uses.
type pgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// Config holds the Supabase connection settings.
type Config struct {
	// DatabaseURL is the Postgres connection string from the Supabase
	// project settings; it carries the credentials.
	DatabaseURL string
	Logger      *logging.Logger
}

// Store is a database.Store backed by Supabase Postgres.
type Store struct {
	databaseURL string
	logger      *logging.Logger
	connect     func(ctx context.Context, databaseURL string) (pgxPool, error)

	mu   sync.RWMutex
	pool pgxPool
}

// New creates a Store. The pool is opened by Initialize.
func New(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		databaseURL: strings.TrimSpace(cfg.DatabaseURL),
		logger:      logger,
		connect:     connectPool,
	}
}

func connectPool(ctx context.Context, databaseURL string) (pgxPool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, forms.ConfigurationError("Invalid Supabase database URL", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, forms.ConnectivityError("Supabase database initialization failed", err)
	}
	return pool, nil
}

// Initialize opens the pool and pings the database.
func (s *Store) Initialize(ctx context.Context) error {
	if s.databaseURL == "" {
		return forms.ConfigurationError("Missing Supabase environment variables", nil)
	}
	pool, err := s.connect(ctx, s.databaseURL)
	if err != nil {
		return err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return forms.ConnectivityError("Supabase database initialization failed", err)
	}

	s.mu.Lock()
	s.pool = pool
	s.mu.Unlock()
	s.logger.Info("Supabase database initialized")
	return nil
}

func (s *Store) conn() (pgxPool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pool == nil {
		return nil, forms.ConfigurationError("Database not initialized. Call Initialize first.", forms.ErrNotInitialized)
	}
	return s.pool, nil
}

const insertContactSQL = `
	INSERT INTO contact_submissions (first_name, last_name, email, company, project_type, project_description)
	VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
	RETURNING id::text, created_at
`

func (s *Store) InsertContactSubmission(ctx context.Context, in forms.ContactInput) (*forms.ContactSubmission, error) {
	pool, err := s.conn()
	if err != nil {
		return nil, err
	}
	rec := in.Record("", time.Time{})
	if err := pool.QueryRow(ctx, insertContactSQL,
		in.FirstName,
		in.LastName,
		in.Email,
		in.Company,
		in.ProjectType,
		in.ProjectDescription,
	).Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return nil, forms.StoreError("Failed to submit contact form", err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}

const listContactSQL = `
	SELECT id::text, first_name, last_name, email, COALESCE(company, ''), project_type, project_description, created_at
	FROM contact_submissions
	ORDER BY created_at DESC
	LIMIT $1
`

func (s *Store) ListContactSubmissions(ctx context.Context, limit int) ([]forms.ContactSubmission, error) {
	pool, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, listContactSQL, limit)
	if err != nil {
		return nil, forms.StoreError("Failed to fetch contact submissions", err)
	}
	defer rows.Close()

	out := []forms.ContactSubmission{}
	for rows.Next() {
		var rec forms.ContactSubmission
		if err := rows.Scan(
			&rec.ID,
			&rec.FirstName,
			&rec.LastName,
			&rec.Email,
			&rec.Company,
			&rec.ProjectType,
			&rec.ProjectDescription,
			&rec.CreatedAt,
		); err != nil {
			return nil, forms.StoreError("Failed to fetch contact submissions", err)
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, forms.StoreError("Failed to fetch contact submissions", err)
	}
	return out, nil
}

const insertInquirySQL = `
	INSERT INTO service_inquiries (service_type, email, name, message)
	VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
	RETURNING id::text, created_at
`

func (s *Store) InsertServiceInquiry(ctx context.Context, in forms.ServiceInquiryInput) (*forms.ServiceInquiry, error) {
	pool, err := s.conn()
	if err != nil {
		return nil, err
	}
	rec := in.Record("", time.Time{})
	if err := pool.QueryRow(ctx, insertInquirySQL,
		string(in.ServiceType),
		in.Email,
		in.Name,
		in.Message,
	).Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return nil, forms.StoreError("Failed to submit service inquiry", err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}

const listInquirySQL = `
	SELECT id::text, service_type, email, COALESCE(name, ''), COALESCE(message, ''), created_at
	FROM service_inquiries
	ORDER BY created_at DESC
	LIMIT $1
`

func (s *Store) ListServiceInquiries(ctx context.Context, limit int) ([]forms.ServiceInquiry, error) {
	pool, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, listInquirySQL, limit)
	if err != nil {
		return nil, forms.StoreError("Failed to fetch service inquiries", err)
	}
	defer rows.Close()

	out := []forms.ServiceInquiry{}
	for rows.Next() {
		var (
			rec         forms.ServiceInquiry
			serviceType string
		)
		if err := rows.Scan(&rec.ID, &serviceType, &rec.Email, &rec.Name, &rec.Message, &rec.CreatedAt); err != nil {
			return nil, forms.StoreError("Failed to fetch service inquiries", err)
		}
		rec.ServiceType = forms.ServiceType(serviceType)
		rec.CreatedAt = rec.CreatedAt.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, forms.StoreError("Failed to fetch service inquiries", err)
	}
	return out, nil
}

// Close releases the pool. Safe to call repeatedly or before Initialize.
func (s *Store) Close() error {
	s.mu.Lock()
	pool := s.pool
	s.pool = nil
	s.mu.Unlock()
	if pool != nil {
		pool.Close()
	}
	return nil
}
