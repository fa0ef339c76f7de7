package database

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wolfman30/sshrobotics-web/internal/forms"
	"github.com/wolfman30/sshrobotics-web/internal/observability/metrics"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("sshrobotics.internal.database")

const (
	// DefaultListLimit caps list queries when no limit is configured.
	DefaultListLimit = 500
	// MaxListLimit is the largest page any backend is asked for.
	MaxListLimit = 1000
)

// Store is the contract each backend package implements. Methods return
// *forms.Error values classified at the point of origin.
type Store interface {
	Initialize(ctx context.Context) error
	InsertContactSubmission(ctx context.Context, in forms.ContactInput) (*forms.ContactSubmission, error)
	ListContactSubmissions(ctx context.Context, limit int) ([]forms.ContactSubmission, error)
	InsertServiceInquiry(ctx context.Context, in forms.ServiceInquiryInput) (*forms.ServiceInquiry, error)
	ListServiceInquiries(ctx context.Context, limit int) ([]forms.ServiceInquiry, error)
	Close() error
}

// Provider is the storage contract callers use. Every operation reports its
// outcome as a Result rather than an error.
type Provider interface {
	Kind() Kind
	Initialize(ctx context.Context) error
	SubmitContactForm(ctx context.Context, in forms.ContactInput) Result[forms.ContactSubmission]
	GetContactSubmissions(ctx context.Context) Result[[]forms.ContactSubmission]
	SubmitServiceInquiry(ctx context.Context, in forms.ServiceInquiryInput) Result[forms.ServiceInquiry]
	GetServiceInquiries(ctx context.Context) Result[[]forms.ServiceInquiry]
	Close(ctx context.Context) error
}

// ProviderConfig carries the ambient dependencies of a Provider.
type ProviderConfig struct {
	Logger    *logging.Logger
	Metrics   *metrics.FormMetrics
	ListLimit int
}

type storeProvider struct {
	kind      Kind
	store     Store
	logger    *logging.Logger
	metrics   *metrics.FormMetrics
	listLimit int

	mu     sync.RWMutex
	ready  bool
	closed bool
}

var _ Provider = (*storeProvider)(nil)

// NewProvider adapts store into a Provider for the given backend kind.
func NewProvider(kind Kind, store Store, cfg ProviderConfig) Provider {
	if store == nil {
		panic("database: store cannot be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &storeProvider{
		kind:      kind,
		store:     store,
		logger:    logger.With("backend", string(kind)),
		metrics:   cfg.Metrics,
		listLimit: clampLimit(cfg.ListLimit),
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func (p *storeProvider) Kind() Kind {
	return p.kind
}

// Initialize connects the underlying store. Repeat calls after success are no-ops.
func (p *storeProvider) Initialize(ctx context.Context) error {
	p.mu.RLock()
	ready, closed := p.ready, p.closed
	p.mu.RUnlock()
	if closed {
		return forms.ConfigurationError("database provider is closed", nil)
	}
	if ready {
		return nil
	}

	ctx, span := tracer.Start(ctx, "database.initialize", trace.WithAttributes(attribute.String("db.backend", string(p.kind))))
	defer span.End()

	if err := p.store.Initialize(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, forms.DetailOf(err))
		p.metrics.ObserveInitialization(string(p.kind), false)
		p.logger.Error("failed to initialize database provider", "error", err, "kind", forms.KindOf(err))
		return err
	}

	p.mu.Lock()
	p.ready = true
	p.mu.Unlock()
	p.metrics.ObserveInitialization(string(p.kind), true)
	p.logger.Info("database provider initialized")
	return nil
}

func (p *storeProvider) SubmitContactForm(ctx context.Context, in forms.ContactInput) Result[forms.ContactSubmission] {
	return runSubmit(ctx, p, "submit_contact_form", func(ctx context.Context) (*forms.ContactSubmission, error) {
		return p.store.InsertContactSubmission(ctx, in)
	})
}

func (p *storeProvider) GetContactSubmissions(ctx context.Context) Result[[]forms.ContactSubmission] {
	return runList(ctx, p, "get_contact_submissions", func(ctx context.Context) ([]forms.ContactSubmission, error) {
		return p.store.ListContactSubmissions(ctx, p.listLimit)
	})
}

// SubmitServiceInquiry rejects an unknown service type before anything else,
// initialized or not.
func (p *storeProvider) SubmitServiceInquiry(ctx context.Context, in forms.ServiceInquiryInput) Result[forms.ServiceInquiry] {
	if !in.ServiceType.Valid() {
		p.logger.Warn("rejected service inquiry", "service_type", string(in.ServiceType))
		p.metrics.ObserveOperation(string(p.kind), "submit_service_inquiry", false, 0)
		return Fail[forms.ServiceInquiry](forms.ValidationError(forms.ErrInvalidServiceType.Error(), forms.ErrInvalidServiceType))
	}
	return runSubmit(ctx, p, "submit_service_inquiry", func(ctx context.Context) (*forms.ServiceInquiry, error) {
		return p.store.InsertServiceInquiry(ctx, in)
	})
}

func (p *storeProvider) GetServiceInquiries(ctx context.Context) Result[[]forms.ServiceInquiry] {
	return runList(ctx, p, "get_service_inquiries", func(ctx context.Context) ([]forms.ServiceInquiry, error) {
		return p.store.ListServiceInquiries(ctx, p.listLimit)
	})
}

// Close releases the store once; later calls and calls on a provider that
// never initialized are no-ops.
func (p *storeProvider) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.ready = false
	p.mu.Unlock()

	if err := p.store.Close(); err != nil {
		p.logger.Warn("failed to close database provider", "error", err)
		return err
	}
	p.logger.Info("database provider closed")
	return nil
}

func (p *storeProvider) isReady() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ready
}

func runSubmit[T any](ctx context.Context, p *storeProvider, op string, fn func(context.Context) (*T, error)) Result[T] {
	return observe(ctx, p, op, func(ctx context.Context) (T, error) {
		var zero T
		rec, err := fn(ctx)
		if err != nil {
			return zero, err
		}
		if rec == nil {
			return zero, forms.StoreError("store returned no record", nil)
		}
		return *rec, nil
	})
}

func runList[T any](ctx context.Context, p *storeProvider, op string, fn func(context.Context) ([]T, error)) Result[[]T] {
	return observe(ctx, p, op, func(ctx context.Context) ([]T, error) {
		items, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
		return items, nil
	})
}

func observe[T any](ctx context.Context, p *storeProvider, op string, fn func(context.Context) (T, error)) Result[T] {
	ctx, span := tracer.Start(ctx, "database."+op, trace.WithAttributes(attribute.String("db.backend", string(p.kind))))
	defer span.End()

	if !p.isReady() {
		err := forms.ConfigurationError("Database not initialized. Call Initialize first.", forms.ErrNotInitialized)
		span.SetStatus(codes.Error, err.Detail)
		p.logger.Error("database operation before initialization", "operation", op)
		return Fail[T](err)
	}

	start := time.Now()
	data, err := fn(ctx)
	p.metrics.ObserveOperation(string(p.kind), op, err == nil, time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, forms.DetailOf(err))
		level := p.logger.Error
		if errors.Is(err, forms.ErrInvalidServiceType) {
			level = p.logger.Warn
		}
		level("database operation failed", "operation", op, "error", err, "kind", forms.KindOf(err))
		return Fail[T](err)
	}
	return Ok(data)
}
