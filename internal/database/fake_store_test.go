package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wolfman30/sshrobotics-web/internal/forms"
)

// fakeStore is an in-memory Store that counts calls.
type fakeStore struct {
	mu          sync.Mutex
	initErr     error
	opErr       error
	initCalls   int
	closeCalls  int
	insertCalls int
	lastLimit   int
	contacts    []forms.ContactSubmission
	inquiries   []forms.ServiceInquiry
	returnNil   bool
}

func (f *fakeStore) Initialize(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++
	return f.initErr
}

func (f *fakeStore) InsertContactSubmission(_ context.Context, in forms.ContactInput) (*forms.ContactSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.opErr != nil {
		return nil, f.opErr
	}
	rec := in.Record(fmt.Sprintf("c%d", len(f.contacts)+1), time.Date(2026, 1, 1, 0, 0, len(f.contacts), 0, time.UTC))
	f.contacts = append([]forms.ContactSubmission{rec}, f.contacts...)
	return &rec, nil
}

func (f *fakeStore) ListContactSubmissions(_ context.Context, limit int) ([]forms.ContactSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	if f.opErr != nil {
		return nil, f.opErr
	}
	if f.returnNil {
		return nil, nil
	}
	return append([]forms.ContactSubmission(nil), f.contacts...), nil
}

func (f *fakeStore) InsertServiceInquiry(_ context.Context, in forms.ServiceInquiryInput) (*forms.ServiceInquiry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.opErr != nil {
		return nil, f.opErr
	}
	rec := in.Record(fmt.Sprintf("s%d", len(f.inquiries)+1), time.Date(2026, 1, 1, 0, 0, len(f.inquiries), 0, time.UTC))
	f.inquiries = append([]forms.ServiceInquiry{rec}, f.inquiries...)
	return &rec, nil
}

func (f *fakeStore) ListServiceInquiries(_ context.Context, limit int) ([]forms.ServiceInquiry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	if f.opErr != nil {
		return nil, f.opErr
	}
	if f.returnNil {
		return nil, nil
	}
	return append([]forms.ServiceInquiry(nil), f.inquiries...), nil
}

func (f *fakeStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	return nil
}

func (f *fakeStore) counts() (initCalls, closeCalls, insertCalls int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initCalls, f.closeCalls, f.insertCalls
}
