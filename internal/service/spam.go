package service

import (
	"time"

	"contact-relay-go/internal/model"
)

// Verdict is the spam classification of a submission.
type Verdict int

const (
	// VerdictClean is delivered normally with a confirmation.
	VerdictClean Verdict = iota
	// VerdictSuspicious is delivered flagged, without a confirmation.
	VerdictSuspicious
	// VerdictBot is silently absorbed.
	VerdictBot
	// VerdictTooFast is rejected with too_fast.
	VerdictTooFast
)

func (v Verdict) String() string {
	switch v {
	case VerdictSuspicious:
		return "suspicious"
	case VerdictBot:
		return "bot"
	case VerdictTooFast:
		return "too_fast"
	default:
		return "clean"
	}
}

// SpamCheck is the result of ClassifySpam.
type SpamCheck struct {
	Verdict      Verdict
	Honeypot     string
	Elapsed      time.Duration
	ElapsedKnown bool
}

// ClassifySpam combines the honeypot and the form timing token. A filled
// honeypot alone only flags the submission; it is dropped only when the
// submit was also instant.
func ClassifySpam(sub model.Submission, now time.Time, minElapsed time.Duration) SpamCheck {
	check := SpamCheck{Honeypot: sub.Honeypot()}
	check.Elapsed, check.ElapsedKnown = sub.FormStartedAt.Elapsed(now)

	switch {
	case check.ElapsedKnown && check.Elapsed < minElapsed && check.Honeypot != "":
		check.Verdict = VerdictBot
	case check.ElapsedKnown && check.Elapsed < minElapsed:
		check.Verdict = VerdictTooFast
	case check.Honeypot != "":
		check.Verdict = VerdictSuspicious
	default:
		check.Verdict = VerdictClean
	}
	return check
}
