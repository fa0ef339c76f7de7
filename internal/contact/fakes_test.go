package contact

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/sshrobotics-web/internal/database"
	"github.com/wolfman30/sshrobotics-web/internal/forms"
)

type fakeProvider struct {
	mu        sync.Mutex
	submitErr error
	listErr   error
	contacts  []forms.ContactSubmission
	inquiries []forms.ServiceInquiry
}

func (p *fakeProvider) Kind() database.Kind              { return database.KindSQLiteFile }
func (p *fakeProvider) Initialize(context.Context) error { return nil }
func (p *fakeProvider) Close(context.Context) error      { return nil }

func (p *fakeProvider) SubmitContactForm(_ context.Context, in forms.ContactInput) database.Result[forms.ContactSubmission] {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.submitErr != nil {
		return database.Fail[forms.ContactSubmission](p.submitErr)
	}
	rec := in.Record("contact-1", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	p.contacts = append([]forms.ContactSubmission{rec}, p.contacts...)
	return database.Ok(rec)
}

func (p *fakeProvider) GetContactSubmissions(context.Context) database.Result[[]forms.ContactSubmission] {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listErr != nil {
		return database.Fail[[]forms.ContactSubmission](p.listErr)
	}
	return database.Ok(append([]forms.ContactSubmission{}, p.contacts...))
}

func (p *fakeProvider) SubmitServiceInquiry(_ context.Context, in forms.ServiceInquiryInput) database.Result[forms.ServiceInquiry] {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.submitErr != nil {
		return database.Fail[forms.ServiceInquiry](p.submitErr)
	}
	rec := in.Record("inquiry-1", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	p.inquiries = append([]forms.ServiceInquiry{rec}, p.inquiries...)
	return database.Ok(rec)
}

func (p *fakeProvider) GetServiceInquiries(context.Context) database.Result[[]forms.ServiceInquiry] {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listErr != nil {
		return database.Fail[[]forms.ServiceInquiry](p.listErr)
	}
	return database.Ok(append([]forms.ServiceInquiry{}, p.inquiries...))
}

type fakeSource struct {
	provider *fakeProvider
	err      error
	kind     database.Kind
}

func (s *fakeSource) Provider(context.Context) (database.Provider, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.provider, nil
}

func (s *fakeSource) CurrentKind() database.Kind {
	if s.kind == "" {
		return database.KindSQLiteFile
	}
	return s.kind
}

type recordingNotifier struct {
	mu        sync.Mutex
	err       error
	contacts  []forms.ContactSubmission
	inquiries []forms.ServiceInquiry
}

func (n *recordingNotifier) NotifyContactSubmission(_ context.Context, rec forms.ContactSubmission) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.contacts = append(n.contacts, rec)
	return n.err
}

func (n *recordingNotifier) NotifyServiceInquiry(_ context.Context, rec forms.ServiceInquiry) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.inquiries = append(n.inquiries, rec)
	return n.err
}
