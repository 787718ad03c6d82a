package service

import (
	"errors"
	"net/http"

	"contact-relay-go/internal/mailer"
)

// Error codes returned to the client.
const (
	CodeInvalidJSON    = "invalid_json"
	CodeInvalidName    = "invalid_name"
	CodeInvalidEmail   = "invalid_email"
	CodeInvalidMessage = "invalid_message"
	CodeTooFast        = "too_fast"
	CodeRateLimited    = "rate_limited"
	CodeMissingToEmail = "missing_to_email"
)

// Category groups error codes by who has to act on them.
type Category int

const (
	// ClientInputError must be corrected by the user before resubmitting.
	ClientInputError Category = iota
	// AbuseRejection asks the user to wait.
	AbuseRejection
	// ConfigurationError must be fixed by the operator.
	ConfigurationError
	// DeliveryError means the email provider setup is broken.
	DeliveryError
)

// ContactError is a pipeline failure carrying a stable client-facing code.
type ContactError struct {
	Code string
}

// NewContactError creates an error for code.
func NewContactError(code string) *ContactError {
	return &ContactError{Code: code}
}

func (e *ContactError) Error() string {
	return e.Code
}

// Category classifies the error.
func (e *ContactError) Category() Category {
	switch e.Code {
	case CodeInvalidJSON, CodeInvalidName, CodeInvalidEmail, CodeInvalidMessage:
		return ClientInputError
	case CodeTooFast, CodeRateLimited:
		return AbuseRejection
	case CodeMissingToEmail, string(mailer.KindEmailNotConfigured):
		return ConfigurationError
	default:
		return DeliveryError
	}
}

// Status returns the HTTP status for the error.
func (e *ContactError) Status() int {
	switch e.Category() {
	case ClientInputError:
		return http.StatusBadRequest
	case AbuseRejection:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// AsContactError extracts a ContactError from err. Unknown errors map to a
// delivery failure.
func AsContactError(err error) *ContactError {
	var ce *ContactError
	if errors.As(err, &ce) {
		return ce
	}
	return NewContactError(string(mailer.KindEmailSendFailed))
}
