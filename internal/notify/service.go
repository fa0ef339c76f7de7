package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/sshrobotics-web/internal/forms"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

// Service tells the team about new contact submissions and service
// inquiries.
type Service struct {
	email  EmailSender
	to     string
	logger *logging.Logger
}

// NewService creates a notification service that mails to. An empty to or a
// nil sender turns notifications off.
func NewService(email EmailSender, to string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:  email,
		to:     strings.TrimSpace(to),
		logger: logger,
	}
}

// Enabled reports whether notifications will be sent.
func (s *Service) Enabled() bool {
	return s != nil && s.email != nil && s.to != ""
}

// NotifyContactSubmission emails the team about a stored contact submission.
func (s *Service) NotifyContactSubmission(ctx context.Context, rec forms.ContactSubmission) error {
	if !s.Enabled() {
		if s != nil {
			s.logger.Debug("notify: notifications disabled, skipping contact submission", "id", rec.ID)
		}
		return nil
	}

	name := strings.TrimSpace(rec.FirstName + " " + rec.LastName)
	rows := [][2]string{
		{"Name", name},
		{"Email", rec.Email},
	}
	if rec.Company != "" {
		rows = append(rows, [2]string{"Company", rec.Company})
	}
	rows = append(rows,
		[2]string{"Project type", rec.ProjectType},
		[2]string{"Received", rec.CreatedAt.Format("January 2, 2006 at 3:04 PM MST")},
	)

	msg := EmailMessage{
		To:          s.to,
		Subject:     fmt.Sprintf("New contact submission: %s (%s)", name, rec.ProjectType),
		Body:        textBody(rows, rec.ProjectDescription),
		HTML:        htmlBody("New contact submission", rows, rec.ProjectDescription),
		ReplyTo:     rec.Email,
		ReplyToName: name,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: contact submission %s: %w", rec.ID, err)
	}
	s.logger.Info("notify: contact submission notification sent", "id", rec.ID)
	return nil
}

// NotifyServiceInquiry emails the team about a stored service inquiry.
func (s *Service) NotifyServiceInquiry(ctx context.Context, rec forms.ServiceInquiry) error {
	if !s.Enabled() {
		if s != nil {
			s.logger.Debug("notify: notifications disabled, skipping service inquiry", "id", rec.ID)
		}
		return nil
	}

	rows := [][2]string{{"Service", string(rec.ServiceType)}}
	if rec.Name != "" {
		rows = append(rows, [2]string{"Name", rec.Name})
	}
	rows = append(rows,
		[2]string{"Email", rec.Email},
		[2]string{"Received", rec.CreatedAt.Format("January 2, 2006 at 3:04 PM MST")},
	)

	msg := EmailMessage{
		To:          s.to,
		Subject:     fmt.Sprintf("New service inquiry: %s", rec.ServiceType),
		Body:        textBody(rows, rec.Message),
		HTML:        htmlBody("New service inquiry", rows, rec.Message),
		ReplyTo:     rec.Email,
		ReplyToName: rec.Name,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: service inquiry %s: %w", rec.ID, err)
	}
	s.logger.Info("notify: service inquiry notification sent", "id", rec.ID)
	return nil
}

func textBody(rows [][2]string, message string) string {
	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "%s: %s\n", row[0], row[1])
	}
	if message != "" {
		b.WriteString("\n")
		b.WriteString(message)
		b.WriteString("\n")
	}
	return b.String()
}

func htmlBody(title string, rows [][2]string, message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2><table>", html.EscapeString(title))
	for _, row := range rows {
		fmt.Fprintf(&b, "<tr><td><strong>%s</strong></td><td>%s</td></tr>", html.EscapeString(row[0]), html.EscapeString(row[1]))
	}
	b.WriteString("</table>")
	if message != "" {
		fmt.Fprintf(&b, "<p>%s</p>", strings.ReplaceAll(html.EscapeString(message), "\n", "<br>"))
	}
	return b.String()
}
