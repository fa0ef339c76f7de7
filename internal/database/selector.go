package database

import (
	"context"
	"sync"

	"github.com/wolfman30/sshrobotics-web/internal/forms"
	"github.com/wolfman30/sshrobotics-web/internal/observability/metrics"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

// Builder constructs the uninitialized Store for a backend kind.
type Builder func(ctx context.Context, kind Kind) (Store, error)

// SelectorConfig configures a Selector.
type SelectorConfig struct {
	// DatabaseType is the configured backend name, possibly empty or unknown.
	DatabaseType string
	Build        Builder
	Logger       *logging.Logger
	Metrics      *metrics.FormMetrics
	ListLimit    int
}

// Selector owns the process's active Provider. It resolves the configured
// backend lazily, caches the initialized provider and can be reset to switch
// backends at runtime.
type Selector struct {
	databaseType string
	build        Builder
	logger       *logging.Logger
	metrics      *metrics.FormMetrics
	listLimit    int

	mu         sync.Mutex
	current    Provider
	generation uint64
}

// NewSelector creates a Selector. Nothing is built until Provider is called.
func NewSelector(cfg SelectorConfig) *Selector {
	if cfg.Build == nil {
		panic("database: selector builder cannot be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Selector{
		databaseType: cfg.DatabaseType,
		build:        cfg.Build,
		logger:       logger,
		metrics:      cfg.Metrics,
		listLimit:    cfg.ListLimit,
	}
}

// CurrentKind reports the backend the selector resolves to without
// initializing anything.
func (s *Selector) CurrentKind() Kind {
	s.mu.Lock()
	databaseType := s.databaseType
	s.mu.Unlock()
	kind, _ := ResolveKind(databaseType)
	return kind
}

// Provider returns the cached provider, building and initializing it on first
// use. A failed initialization is returned to the caller and nothing is
// cached, so the next call starts over. Concurrent first calls may each
// initialize a backend; the first to finish is kept and the others are closed.
// A provider whose initialization straddles a Reset is closed and the
// resolution starts over against the new configuration.
func (s *Selector) Provider(ctx context.Context) (Provider, error) {
	for {
		s.mu.Lock()
		if s.current != nil {
			p := s.current
			s.mu.Unlock()
			return p, nil
		}
		databaseType := s.databaseType
		generation := s.generation
		s.mu.Unlock()

		p, err := s.open(ctx, databaseType)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		switch {
		case s.generation != generation:
			s.mu.Unlock()
			s.logger.Info("database selection changed during initialization, retrying", "backend", string(p.Kind()))
			_ = p.Close(ctx)
			if err := ctx.Err(); err != nil {
				return nil, forms.ConnectivityError("database initialization canceled", err)
			}
			continue
		case s.current != nil:
			winner := s.current
			s.mu.Unlock()
			s.logger.Debug("discarding redundant database provider", "backend", string(p.Kind()))
			_ = p.Close(ctx)
			return winner, nil
		default:
			s.current = p
			s.mu.Unlock()
			return p, nil
		}
	}
}

// open builds and initializes the provider for databaseType.
func (s *Selector) open(ctx context.Context, databaseType string) (Provider, error) {
	kind, recognized := ResolveKind(databaseType)
	if !recognized {
		s.logger.Warn("invalid database type, falling back to default",
			"database_type", databaseType,
			"fallback", string(DefaultKind),
		)
	}
	s.logger.Info("initializing database provider", "backend", string(kind))

	store, err := s.build(ctx, kind)
	if err != nil {
		s.metrics.ObserveInitialization(string(kind), false)
		s.logger.Error("failed to build database provider", "backend", string(kind), "error", err)
		return nil, err
	}
	if store == nil {
		return nil, forms.ConfigurationError("no store built for database type "+string(kind), nil)
	}

	p := NewProvider(kind, store, ProviderConfig{
		Logger:    s.logger,
		Metrics:   s.metrics,
		ListLimit: s.listLimit,
	})
	if err := p.Initialize(ctx); err != nil {
		_ = p.Close(ctx)
		return nil, err
	}
	return p, nil
}

// Reset closes and forgets the cached provider so the next Provider call
// resolves and initializes again. Safe to call when nothing is cached.
func (s *Selector) Reset(ctx context.Context) error {
	s.mu.Lock()
	p := s.current
	s.current = nil
	s.generation++
	s.mu.Unlock()

	if p == nil {
		return nil
	}
	return p.Close(ctx)
}

// SetDatabaseType changes the configured backend name and resets the cached
// provider.
func (s *Selector) SetDatabaseType(ctx context.Context, databaseType string) error {
	s.mu.Lock()
	s.databaseType = databaseType
	s.mu.Unlock()
	return s.Reset(ctx)
}

// Close releases the cached provider at shutdown.
func (s *Selector) Close(ctx context.Context) error {
	return s.Reset(ctx)
}
