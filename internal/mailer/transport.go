package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"contact-relay-go/internal/config"
	"contact-relay-go/internal/model"
)

// Transport performs a single send attempt against an email provider and
// returns the provider message id when one is available.
type Transport interface {
	Name() string
	Send(ctx context.Context, msg model.EmailMessage) (string, error)
}

// SendError is returned by transports when the provider refused a message.
type SendError struct {
	StatusCode     int
	SenderRejected bool
	Body           string
	Err            error
}

func (e *SendError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("provider returned %d", e.StatusCode)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "send failed"
	}
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// IsSenderRejected reports whether err says the sender identity is not
// authorized for the configured credential.
func IsSenderRejected(err error) bool {
	var se *SendError
	return errors.As(err, &se) && se.SenderRejected
}

// NewTransport builds the transport for the configured provider. It returns
// a nil Transport when the provider has no credentials.
func NewTransport(ctx context.Context, cfg config.EmailConfig) (Transport, error) {
	if !cfg.HasCredentials() {
		return nil, nil
	}

	switch cfg.Provider {
	case config.ProviderGmail:
		t, err := NewGmailTransport(ctx, cfg.Gmail)
		if err != nil {
			return nil, err
		}
		return t, nil
	case config.ProviderSMTP:
		return NewSMTPTransport(cfg.SMTP), nil
	case config.ProviderResend:
		return NewResendTransport(cfg.APIKey, cfg.Endpoint, &http.Client{Timeout: cfg.Timeout}), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
