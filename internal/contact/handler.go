package contact

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/wolfman30/sshrobotics-web/internal/database"
	"github.com/wolfman30/sshrobotics-web/internal/forms"
	"github.com/wolfman30/sshrobotics-web/internal/notify"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

// SubmitFailedMessage is what visitors see when a submission could not be
// stored; the cause is logged instead.
const SubmitFailedMessage = "We couldn't submit your request. Please try again or contact us directly."

const maxBodyBytes = 64 << 10

// Notifier tells the team about new submissions.
type Notifier interface {
	NotifyContactSubmission(ctx context.Context, rec forms.ContactSubmission) error
	NotifyServiceInquiry(ctx context.Context, rec forms.ServiceInquiry) error
}

// Handler serves the site's form API.
type Handler struct {
	service  *Service
	notifier Notifier
	logger   *logging.Logger
}

// NewHandler creates a Handler. notifier may be nil.
func NewHandler(service *Service, notifier Notifier, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service:  service,
		notifier: notifier,
		logger:   logger,
	}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": string(h.service.CurrentDatabaseType()),
	})
}

// DatabaseType handles GET /api/database
func (h *Handler) DatabaseType(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"database": string(h.service.CurrentDatabaseType()),
	})
}

// SubmitContact handles POST /api/contact
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var in forms.ContactInput
	if !h.decode(w, r, &in) {
		return
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, database.Fail[forms.ContactSubmission](err))
		return
	}

	res := h.service.SubmitContactForm(r.Context(), in)
	if !res.Success {
		status, body := submitFailure(h.logger, &res)
		writeJSON(w, status, body)
		return
	}

	h.logger.Info("contact submission stored",
		"id", res.Data.ID,
		"project_type", res.Data.ProjectType,
		"email_hash", notify.HashEmail(res.Data.Email),
	)
	if h.notifier != nil {
		if err := h.notifier.NotifyContactSubmission(r.Context(), res.Data); err != nil {
			h.logger.Warn("contact submission notification failed", "id", res.Data.ID, "error", err)
		}
	}
	writeJSON(w, http.StatusCreated, res)
}

// SubmitServiceInquiry handles POST /api/service-inquiries
func (h *Handler) SubmitServiceInquiry(w http.ResponseWriter, r *http.Request) {
	var in forms.ServiceInquiryInput
	if !h.decode(w, r, &in) {
		return
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, database.Fail[forms.ServiceInquiry](err))
		return
	}

	res := h.service.SubmitServiceInquiry(r.Context(), in)
	if !res.Success {
		status, body := submitFailure(h.logger, &res)
		writeJSON(w, status, body)
		return
	}

	h.logger.Info("service inquiry stored",
		"id", res.Data.ID,
		"service_type", string(res.Data.ServiceType),
		"email_hash", notify.HashEmail(res.Data.Email),
	)
	if h.notifier != nil {
		if err := h.notifier.NotifyServiceInquiry(r.Context(), res.Data); err != nil {
			h.logger.Warn("service inquiry notification failed", "id", res.Data.ID, "error", err)
		}
	}
	writeJSON(w, http.StatusCreated, res)
}

// ListContactSubmissions handles GET /api/contact-submissions
func (h *Handler) ListContactSubmissions(w http.ResponseWriter, r *http.Request) {
	res := h.service.GetContactSubmissions(r.Context())
	writeJSON(w, listStatus(res.Success), res)
}

// ListServiceInquiries handles GET /api/service-inquiries
func (h *Handler) ListServiceInquiries(w http.ResponseWriter, r *http.Request) {
	res := h.service.GetServiceInquiries(r.Context())
	writeJSON(w, listStatus(res.Success), res)
}

func listStatus(ok bool) int {
	if ok {
		return http.StatusOK
	}
	return http.StatusBadGateway
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("failed to decode request", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusBadRequest, database.Fail[any](forms.ValidationError("Invalid JSON body", err)))
		return false
	}
	return true
}

// submitFailure keeps validation messages but hides backend details behind
// the generic message.
func submitFailure[T any](logger *logging.Logger, res *database.Result[T]) (int, *database.Result[T]) {
	if res.ErrorKind == forms.KindValidation {
		return http.StatusBadRequest, res
	}
	logger.Error("submission failed", "error", res.Error, "kind", res.ErrorKind)
	res.Error = SubmitFailedMessage
	return http.StatusBadGateway, res
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
