package forms

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidServiceType is returned when service_type is outside the offered services
	ErrInvalidServiceType = errors.New("Invalid service_type. Must be: robotics, automation, or electronics")

	// ErrInvalidEmail is returned when the email does not look like an address
	ErrInvalidEmail = errors.New("Invalid email address")

	// ErrMissingFields is returned when required fields are blank
	ErrMissingFields = errors.New("missing required fields")

	// ErrNotInitialized is returned when a provider is used before Initialize succeeds
	ErrNotInitialized = errors.New("database not initialized")
)

// ErrorKind classifies failures so every backend reports them the same way.
type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration"
	KindConnectivity  ErrorKind = "connectivity"
	KindValidation    ErrorKind = "validation"
	KindStore         ErrorKind = "store"
)

// Error is a classified failure with a human-readable detail.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil || e.Err.Error() == e.Detail {
		return e.Detail
	}
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Detail + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ConfigurationError reports missing or invalid settings or credentials.
func ConfigurationError(detail string, err error) *Error {
	return &Error{Kind: KindConfiguration, Detail: detail, Err: err}
}

// ConnectivityError reports an unreachable endpoint.
func ConnectivityError(detail string, err error) *Error {
	return &Error{Kind: KindConnectivity, Detail: detail, Err: err}
}

// ValidationError reports a missing or malformed field.
func ValidationError(detail string, err error) *Error {
	return &Error{Kind: KindValidation, Detail: detail, Err: err}
}

// StoreError reports a constraint or query failure in the underlying store.
func StoreError(detail string, err error) *Error {
	return &Error{Kind: KindStore, Detail: detail, Err: err}
}

// MissingFieldsError names the blank required fields.
func MissingFieldsError(fields []string) *Error {
	return ValidationError("Missing required fields: "+strings.Join(fields, ", "), ErrMissingFields)
}

// KindOf returns the kind carried by err, defaulting to KindStore for
// unclassified failures.
func KindOf(err error) ErrorKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindStore
}

// DetailOf returns the human-readable part of err.
func DetailOf(err error) string {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) && fe.Detail != "" {
		return fe.Detail
	}
	return err.Error()
}
