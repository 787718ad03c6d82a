package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jordan-wright/email"

	"contact-relay-go/internal/config"
	"contact-relay-go/internal/model"
)

// SMTPTransport sends through an SMTP relay.
type SMTPTransport struct {
	host string
	addr string
	auth smtp.Auth
	ssl  bool
}

// NewSMTPTransport creates a transport for the given relay. Authentication
// is only attempted when a user is configured.
func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}
	return &SMTPTransport{
		host: cfg.Host,
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		auth: auth,
		ssl:  cfg.SSL,
	}
}

// Name implements Transport.
func (t *SMTPTransport) Name() string {
	return "smtp"
}

// Send implements Transport. The returned id is the generated Message-Id.
func (t *SMTPTransport) Send(ctx context.Context, msg model.EmailMessage) (string, error) {
	e := email.NewEmail()
	e.From = msg.From
	e.To = []string{msg.To}
	if msg.ReplyTo != "" {
		e.ReplyTo = []string{msg.ReplyTo}
	}
	e.Subject = msg.Subject
	e.Text = []byte(msg.Text)
	e.HTML = []byte(msg.HTML)

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), t.host)
	e.Headers.Set("Message-Id", messageID)

	// net/smtp has no context support; the goroutine finishes on its own
	// once the relay answers or drops the connection.
	done := make(chan error, 1)
	go func() {
		if t.ssl {
			done <- e.SendWithTLS(t.addr, t.auth, &tls.Config{ServerName: t.host})
			return
		}
		done <- e.Send(t.addr, t.auth)
	}()

	select {
	case err := <-done:
		if err != nil {
			return "", classifySMTPError(err)
		}
		return messageID, nil
	case <-ctx.Done():
		return "", &SendError{Err: fmt.Errorf("smtp send: %w", ctx.Err())}
	}
}

// classifySMTPError marks 553 replies, and 550 replies naming the sender,
// as a rejected sender identity.
func classifySMTPError(err error) error {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		rejected := tpErr.Code == 553 ||
			(tpErr.Code == 550 && strings.Contains(strings.ToLower(tpErr.Msg), "sender"))
		return &SendError{
			StatusCode:     tpErr.Code,
			SenderRejected: rejected,
			Body:           tpErr.Msg,
			Err:            err,
		}
	}
	return &SendError{Err: fmt.Errorf("smtp send failed: %w", err)}
}
