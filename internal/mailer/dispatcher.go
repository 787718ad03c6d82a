package mailer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"contact-relay-go/internal/config"
	"contact-relay-go/internal/model"
)

const defaultSendTimeout = 10 * time.Second

// Options configures a Dispatcher.
type Options struct {
	FallbackFrom string
	Production   bool
	Timeout      time.Duration
}

// Dispatcher sends one email through a Transport, retrying once with the
// fallback sender when the provider rejects the requested sender.
type Dispatcher struct {
	transport    Transport
	fallbackFrom string
	production   bool
	timeout      time.Duration
}

// NewDispatcher creates a dispatcher. A nil transport means no provider
// credentials are configured.
func NewDispatcher(transport Transport, opts Options) *Dispatcher {
	if opts.FallbackFrom == "" {
		opts.FallbackFrom = config.DefaultFallbackSender
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultSendTimeout
	}
	return &Dispatcher{
		transport:    transport,
		fallbackFrom: opts.FallbackFrom,
		production:   opts.Production,
		timeout:      opts.Timeout,
	}
}

// Configured reports whether a provider transport is available.
func (d *Dispatcher) Configured() bool {
	return d.transport != nil
}

// FallbackFrom returns the sender used for the retry.
func (d *Dispatcher) FallbackFrom() string {
	return d.fallbackFrom
}

// Send delivers msg. The send is detached from ctx cancellation so a
// disconnecting client does not abort a message already in flight.
func (d *Dispatcher) Send(ctx context.Context, msg model.EmailMessage) Result {
	if d.transport == nil {
		if d.production {
			return Failed{Reason: KindEmailNotConfigured}
		}
		logrus.WithFields(logrus.Fields{
			"to":       msg.To,
			"from":     msg.From,
			"subject":  msg.Subject,
			"reply_to": msg.ReplyTo,
			"text":     msg.Text,
		}).Info("Email credentials missing; logging message instead")
		return Skipped{Reason: SkipMissingAPIKey}
	}

	ctx = context.WithoutCancel(ctx)

	id, err := d.attempt(ctx, msg)
	if err == nil {
		return Sent{ID: id, FromUsed: msg.From}
	}

	log := logrus.WithFields(logrus.Fields{
		"transport": d.transport.Name(),
		"to":        msg.To,
		"from":      msg.From,
	})
	log.WithError(err).Error("Email provider rejected message")

	if !IsSenderRejected(err) {
		return Failed{Reason: KindEmailSendFailed}
	}
	if msg.From == d.fallbackFrom {
		return Failed{Reason: KindSenderNotAuthorized}
	}

	log.Warnf("Sender not authorized; retrying with fallback sender %s", d.fallbackFrom)
	id, err = d.attempt(ctx, msg.WithFrom(d.fallbackFrom))
	if err != nil {
		log.WithError(err).Error("Email provider rejected fallback sender")
		return Failed{Reason: KindSenderNotAuthorized}
	}

	return SentViaFallback{ID: id, FromUsed: d.fallbackFrom}
}

func (d *Dispatcher) attempt(ctx context.Context, msg model.EmailMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.transport.Send(ctx, msg)
}
