package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"contact-relay-go/internal/config"
	"contact-relay-go/internal/mailer"
	"contact-relay-go/internal/metrics"
	"contact-relay-go/internal/model"
	"contact-relay-go/internal/ratelimit"
)

const (
	kindOwner        = "owner"
	kindConfirmation = "confirmation"

	skipSpamSuspected = "spam_suspected"
)

// Mailer sends a composed email and reports the outcome.
type Mailer interface {
	Send(ctx context.Context, msg model.EmailMessage) mailer.Result
}

// Limiter is the fixed-window rate limiter used per client key.
type Limiter interface {
	Check(key string, window time.Duration, limit int) ratelimit.Result
}

// Options configures a ContactService.
type Options struct {
	ToEmail    string
	FromEmail  string
	StudioName string
	MinElapsed time.Duration
	RateLimit  config.RateLimitConfig
	Production bool
	Now        func() time.Time
}

// DispatchDebug describes one dispatch in the non-production response body.
type DispatchDebug struct {
	ID       string `json:"id,omitempty"`
	FromUsed string `json:"fromUsed,omitempty"`
	Skipped  string `json:"skipped,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Debug is attached to successful responses outside production.
type Debug struct {
	Owner        DispatchDebug `json:"owner"`
	Confirmation DispatchDebug `json:"confirmation"`
}

// Outcome is the result of an accepted submission.
type Outcome struct {
	Debug *Debug
}

// ContactService runs a submission through spam checks, validation, rate
// limiting and delivery.
type ContactService struct {
	mailer   Mailer
	limiter  Limiter
	metrics  *metrics.Metrics
	composer Composer
	opts     Options
}

// NewContactService creates a new contact service
func NewContactService(m Mailer, l Limiter, mt *metrics.Metrics, opts Options) *ContactService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FromEmail == "" {
		opts.FromEmail = config.DefaultFallbackSender
	}
	return &ContactService{
		mailer:   m,
		limiter:  l,
		metrics:  mt,
		composer: Composer{StudioName: opts.StudioName},
		opts:     opts,
	}
}

// Submit processes one submission from clientKey. A nil error means the
// caller should answer 200; otherwise the error is a *ContactError.
func (s *ContactService) Submit(ctx context.Context, sub model.Submission, clientKey string) (*Outcome, error) {
	log := logrus.WithField("client", clientKey)

	spam := ClassifySpam(sub, s.opts.Now(), s.opts.MinElapsed)
	switch spam.Verdict {
	case VerdictBot:
		log.WithField("elapsed_ms", spam.Elapsed.Milliseconds()).Info("Dropping bot submission")
		s.countSubmission("bot")
		return &Outcome{}, nil
	case VerdictTooFast:
		log.WithField("elapsed_ms", spam.Elapsed.Milliseconds()).Info("Rejecting submission sent too fast")
		s.countSubmission(CodeTooFast)
		return nil, NewContactError(CodeTooFast)
	}

	contact, err := ValidateContact(sub.Name, sub.Email, sub.Message)
	if err != nil {
		s.countSubmission("invalid")
		return nil, err
	}

	if err := s.checkRateLimit(clientKey); err != nil {
		log.Warn("Client rate limited")
		s.countSubmission(CodeRateLimited)
		return nil, err
	}

	if s.opts.ToEmail == "" {
		log.Error("CONTACT_TO_EMAIL is not configured")
		s.countSubmission("error")
		return nil, NewContactError(CodeMissingToEmail)
	}

	owner := s.composer.OwnerEmail(s.opts.ToEmail, s.opts.FromEmail, clientKey, contact, spam)
	ownerResult := s.dispatch(ctx, kindOwner, owner)
	if failed, ok := ownerResult.(mailer.Failed); ok {
		s.countSubmission("error")
		return nil, NewContactError(string(failed.Reason))
	}

	debug := &Debug{Owner: debugFor(ownerResult)}
	if spam.Verdict == VerdictSuspicious {
		debug.Confirmation = DispatchDebug{Skipped: skipSpamSuspected}
		log.WithField("honeypot", spam.Honeypot).Info("Suspicious submission, skipping confirmation")
	} else {
		confirmation := s.composer.ConfirmationEmail(s.opts.ToEmail, s.opts.FromEmail, contact)
		confirmationResult := s.dispatch(ctx, kindConfirmation, confirmation)
		if failed, ok := confirmationResult.(mailer.Failed); ok {
			log.WithField("error", failed.Reason).Warn("Confirmation email failed")
		}
		debug.Confirmation = debugFor(confirmationResult)
	}

	s.countSubmission("sent")
	if s.opts.Production {
		return &Outcome{}, nil
	}
	return &Outcome{Debug: debug}, nil
}

func (s *ContactService) checkRateLimit(clientKey string) error {
	windows := []struct {
		name   string
		prefix string
		window time.Duration
		limit  int
	}{
		{"minute", "contact:minute:", s.opts.RateLimit.ShortWindow, s.opts.RateLimit.ShortMax},
		{"hour", "contact:hour:", s.opts.RateLimit.LongWindow, s.opts.RateLimit.LongMax},
	}
	for _, w := range windows {
		if res := s.limiter.Check(w.prefix+clientKey, w.window, w.limit); !res.Allowed {
			if s.metrics != nil {
				s.metrics.RateLimited.WithLabelValues(w.name).Inc()
			}
			return NewContactError(CodeRateLimited)
		}
	}
	return nil
}

func (s *ContactService) dispatch(ctx context.Context, kind string, msg model.EmailMessage) mailer.Result {
	start := time.Now()
	result := s.mailer.Send(ctx, msg)

	if s.metrics != nil {
		s.metrics.DispatchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		s.metrics.Dispatches.WithLabelValues(kind, mailer.Label(result)).Inc()
	}

	d := debugFor(result)
	logrus.WithFields(logrus.Fields{
		"kind":      kind,
		"to":        msg.To,
		"from_used": d.FromUsed,
		"id":        d.ID,
		"skipped":   d.Skipped,
		"result":    mailer.Label(result),
	}).Info("Email dispatched")

	return result
}

func (s *ContactService) countSubmission(outcome string) {
	if s.metrics != nil {
		s.metrics.Submissions.WithLabelValues(outcome).Inc()
	}
}

func debugFor(r mailer.Result) DispatchDebug {
	switch v := r.(type) {
	case mailer.Sent:
		return DispatchDebug{ID: v.ID, FromUsed: v.FromUsed}
	case mailer.SentViaFallback:
		return DispatchDebug{ID: v.ID, FromUsed: v.FromUsed}
	case mailer.Skipped:
		return DispatchDebug{Skipped: v.Reason}
	case mailer.Failed:
		return DispatchDebug{Error: string(v.Reason)}
	default:
		return DispatchDebug{}
	}
}
