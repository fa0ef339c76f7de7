package forms

import (
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ServiceType is the closed set of services an inquiry can be about.
type ServiceType string

const (
	ServiceRobotics    ServiceType = "robotics"
	ServiceAutomation  ServiceType = "automation"
	ServiceElectronics ServiceType = "electronics"
)

// ServiceTypes lists every accepted service type in display order.
var ServiceTypes = []ServiceType{ServiceRobotics, ServiceAutomation, ServiceElectronics}

// Valid reports whether s is one of the offered services.
func (s ServiceType) Valid() bool {
	switch s {
	case ServiceRobotics, ServiceAutomation, ServiceElectronics:
		return true
	}
	return false
}

// ContactInput is a contact form submission before the store assigns an
// identifier and timestamp.
type ContactInput struct {
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Email              string `json:"email"`
	Company            string `json:"company,omitempty"`
	ProjectType        string `json:"project_type"`
	ProjectDescription string `json:"project_description"`
}

// ContactSubmission is a stored contact form submission.
type ContactSubmission struct {
	ID                 string    `json:"id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Email              string    `json:"email"`
	Company            string    `json:"company,omitempty"`
	ProjectType        string    `json:"project_type"`
	ProjectDescription string    `json:"project_description"`
	CreatedAt          time.Time `json:"created_at"`
}

// Normalize trims surrounding whitespace from every field.
func (in *ContactInput) Normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Company = strings.TrimSpace(in.Company)
	in.ProjectType = strings.TrimSpace(in.ProjectType)
	in.ProjectDescription = strings.TrimSpace(in.ProjectDescription)
}

// MissingFields returns the names of required fields that are blank.
func (in ContactInput) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"email", in.Email},
		{"project_type", in.ProjectType},
		{"project_description", in.ProjectDescription},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Validate checks required fields and the email pattern.
func (in ContactInput) Validate() error {
	if missing := in.MissingFields(); len(missing) > 0 {
		return MissingFieldsError(missing)
	}
	if !ValidEmail(in.Email) {
		return ValidationError(ErrInvalidEmail.Error(), ErrInvalidEmail)
	}
	return nil
}

// Record builds the stored form of in.
func (in ContactInput) Record(id string, createdAt time.Time) ContactSubmission {
	return ContactSubmission{
		ID:                 id,
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		Email:              in.Email,
		Company:            in.Company,
		ProjectType:        in.ProjectType,
		ProjectDescription: in.ProjectDescription,
		CreatedAt:          createdAt,
	}
}

// ServiceInquiryInput is a service inquiry before it is stored.
type ServiceInquiryInput struct {
	ServiceType ServiceType `json:"service_type"`
	Email       string      `json:"email"`
	Name        string      `json:"name,omitempty"`
	Message     string      `json:"message,omitempty"`
}

// ServiceInquiry is a stored service inquiry.
type ServiceInquiry struct {
	ID          string      `json:"id"`
	ServiceType ServiceType `json:"service_type"`
	Email       string      `json:"email"`
	Name        string      `json:"name,omitempty"`
	Message     string      `json:"message,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Normalize trims whitespace. The service type keeps its case and must match
// one of ServiceTypes exactly.
func (in *ServiceInquiryInput) Normalize() {
	in.ServiceType = ServiceType(strings.TrimSpace(string(in.ServiceType)))
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Message = strings.TrimSpace(in.Message)
}

// MissingFields returns the names of required fields that are blank.
func (in ServiceInquiryInput) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(string(in.ServiceType)) == "" {
		missing = append(missing, "service_type")
	}
	if strings.TrimSpace(in.Email) == "" {
		missing = append(missing, "email")
	}
	return missing
}

// Validate checks required fields, the service type and the email pattern.
func (in ServiceInquiryInput) Validate() error {
	if missing := in.MissingFields(); len(missing) > 0 {
		return MissingFieldsError(missing)
	}
	if !in.ServiceType.Valid() {
		return ValidationError(ErrInvalidServiceType.Error(), ErrInvalidServiceType)
	}
	if !ValidEmail(in.Email) {
		return ValidationError(ErrInvalidEmail.Error(), ErrInvalidEmail)
	}
	return nil
}

// Record builds the stored form of in.
func (in ServiceInquiryInput) Record(id string, createdAt time.Time) ServiceInquiry {
	return ServiceInquiry{
		ID:          id,
		ServiceType: in.ServiceType,
		Email:       in.Email,
		Name:        in.Name,
		Message:     in.Message,
		CreatedAt:   createdAt,
	}
}

// ValidEmail reports whether email looks like an address.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
