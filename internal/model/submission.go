package model

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// elapsed values beyond this many milliseconds saturate the Duration
const maxDurationMillis = float64(math.MaxInt64 / int64(time.Millisecond))

// Submission is the JSON body posted by the contact form.
type Submission struct {
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Message       string      `json:"message"`
	Company       string      `json:"company,omitempty"` // honeypot (legacy)
	Website       string      `json:"website,omitempty"` // honeypot (preferred)
	FormStartedAt EpochMillis `json:"formStartedAt"`
}

// Honeypot returns the trimmed trap value, preferring website over company.
func (s Submission) Honeypot() string {
	if v := strings.TrimSpace(s.Website); v != "" {
		return v
	}
	return strings.TrimSpace(s.Company)
}

// EpochMillis is an optional client timestamp in milliseconds since the epoch.
// Anything other than a non-zero JSON number decodes as absent.
type EpochMillis struct {
	ms    float64
	valid bool
}

// NewEpochMillis returns a present timestamp for t.
func NewEpochMillis(t time.Time) EpochMillis {
	return EpochMillis{ms: float64(t.UnixMilli()), valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *EpochMillis) UnmarshalJSON(data []byte) error {
	*e = EpochMillis{}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return nil
	}
	if n == 0 {
		return nil
	}
	e.ms = n
	e.valid = true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e EpochMillis) MarshalJSON() ([]byte, error) {
	if !e.valid {
		return []byte("null"), nil
	}
	return json.Marshal(e.ms)
}

// Present reports whether the client supplied a usable timestamp.
func (e EpochMillis) Present() bool {
	return e.valid
}

// Elapsed returns how long ago the form was started, relative to now.
// Timestamps too far from now saturate at the Duration limits, keeping
// the sign of the difference.
func (e EpochMillis) Elapsed(now time.Time) (time.Duration, bool) {
	if !e.valid {
		return 0, false
	}
	ms := float64(now.UnixMilli()) - e.ms
	switch {
	case ms >= maxDurationMillis:
		return time.Duration(math.MaxInt64), true
	case ms <= -maxDurationMillis:
		return time.Duration(math.MinInt64), true
	}
	return time.Duration(ms) * time.Millisecond, true
}
