package mailer

// ErrorKind is the stable code reported when a dispatch fails.
type ErrorKind string

const (
	KindEmailNotConfigured  ErrorKind = "email_not_configured"
	KindSenderNotAuthorized ErrorKind = "sender_not_authorized"
	KindEmailSendFailed     ErrorKind = "email_send_failed"
)

// SkipMissingAPIKey is the reason reported when no provider credential is set.
const SkipMissingAPIKey = "missing_api_key"

// Result is the outcome of Dispatcher.Send. It is one of Sent,
// SentViaFallback, Skipped or Failed.
type Result interface {
	// Delivered reports whether the caller may treat the dispatch as a success.
	Delivered() bool
	isResult()
}

// Sent means the provider accepted the message from the requested sender.
type Sent struct {
	ID       string
	FromUsed string
}

// SentViaFallback means the requested sender was rejected and the fallback
// sender was accepted instead.
type SentViaFallback struct {
	ID       string
	FromUsed string
}

// Skipped means nothing was sent because the provider is not configured
// outside production.
type Skipped struct {
	Reason string
}

// Failed means the message could not be delivered.
type Failed struct {
	Reason ErrorKind
}

func (Sent) Delivered() bool            { return true }
func (SentViaFallback) Delivered() bool { return true }
func (Skipped) Delivered() bool         { return true }
func (Failed) Delivered() bool          { return false }

func (Sent) isResult()            {}
func (SentViaFallback) isResult() {}
func (Skipped) isResult()         {}
func (Failed) isResult()          {}

// Label returns a short metric/log label for r.
func Label(r Result) string {
	switch v := r.(type) {
	case Sent:
		return "sent"
	case SentViaFallback:
		return "sent_via_fallback"
	case Skipped:
		return "skipped"
	case Failed:
		return string(v.Reason)
	default:
		return "unknown"
	}
}
