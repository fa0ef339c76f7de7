// Package contact is the application-facing entry point for the site's
// contact form and service inquiries.
package contact

import (
	"context"

	"github.com/wolfman30/sshrobotics-web/internal/database"
	"github.com/wolfman30/sshrobotics-web/internal/forms"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

// ProviderSource hands out the active storage provider.
type ProviderSource interface {
	Provider(ctx context.Context) (database.Provider, error)
	CurrentKind() database.Kind
}

// Service forwards form operations to whichever backend is active. Failures
// while resolving the backend come back as failed results, never as errors.
type Service struct {
	source ProviderSource
	logger *logging.Logger
}

// NewService creates a Service over source, normally a *database.Selector.
func NewService(source ProviderSource, logger *logging.Logger) *Service {
	if source == nil {
		panic("contact: provider source cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{source: source, logger: logger}
}

func (s *Service) SubmitContactForm(ctx context.Context, in forms.ContactInput) database.Result[forms.ContactSubmission] {
	p, err := s.source.Provider(ctx)
	if err != nil {
		s.logger.Error("contact form submission error", "error", err)
		return database.Fail[forms.ContactSubmission](err)
	}
	return p.SubmitContactForm(ctx, in)
}

func (s *Service) SubmitServiceInquiry(ctx context.Context, in forms.ServiceInquiryInput) database.Result[forms.ServiceInquiry] {
	p, err := s.source.Provider(ctx)
	if err != nil {
		s.logger.Error("service inquiry submission error", "error", err)
		return database.Fail[forms.ServiceInquiry](err)
	}
	return p.SubmitServiceInquiry(ctx, in)
}

func (s *Service) GetContactSubmissions(ctx context.Context) database.Result[[]forms.ContactSubmission] {
	p, err := s.source.Provider(ctx)
	if err != nil {
		s.logger.Error("fetch contact submissions error", "error", err)
		return database.Fail[[]forms.ContactSubmission](err)
	}
	return p.GetContactSubmissions(ctx)
}

func (s *Service) GetServiceInquiries(ctx context.Context) database.Result[[]forms.ServiceInquiry] {
	p, err := s.source.Provider(ctx)
	if err != nil {
		s.logger.Error("fetch service inquiries error", "error", err)
		return database.Fail[[]forms.ServiceInquiry](err)
	}
	return p.GetServiceInquiries(ctx)
}

// CurrentDatabaseType reports the configured backend without initializing it.
func (s *Service) CurrentDatabaseType() database.Kind {
	return s.source.CurrentKind()
}
