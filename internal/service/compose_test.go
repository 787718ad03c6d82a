package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;", EscapeHTML(`<script>alert("x")</script>`))
	assert.Equal(t, "Tom &amp; Jerry&#39;s", EscapeHTML("Tom & Jerry's"))
	assert.Equal(t, "&amp;lt;", EscapeHTML("&lt;"))
}

func TestOwnerEmail(t *testing.T) {
	c := Composer{StudioName: "PacNW Studio"}
	contact := Contact{Name: "Jo <b>", Email: "jo@x.com", Message: "line one\n<script>alert(1)</script>"}
	spam := SpamCheck{Verdict: VerdictClean, Elapsed: 3200 * time.Millisecond, ElapsedKnown: true}

	msg := c.OwnerEmail("owner@studio.test", "hello@studio.test", "203.0.113.9", contact, spam)

	assert.Equal(t, "owner@studio.test", msg.To)
	assert.Equal(t, "hello@studio.test", msg.From)
	assert.Equal(t, "jo@x.com", msg.ReplyTo)
	assert.Equal(t, "New inquiry — Jo <b>", msg.Subject)
	assert.Contains(t, msg.Text, "IP: 203.0.113.9")
	assert.Contains(t, msg.Text, "Elapsed: 3200ms")
	assert.NotContains(t, msg.Text, "Honeypot")
	assert.True(t, strings.HasSuffix(msg.Text, contact.Message))

	assert.Contains(t, msg.HTML, "Jo &lt;b&gt;")
	assert.Contains(t, msg.HTML, "line one<br/>&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestOwnerEmailSuspicious(t *testing.T) {
	c := Composer{StudioName: "PacNW Studio"}
	contact := Contact{Name: "Jo", Email: "jo@x.com", Message: "1234567890"}
	spam := SpamCheck{Verdict: VerdictSuspicious, Honeypot: `"spam"`}

	msg := c.OwnerEmail("owner@studio.test", "hello@studio.test", "unknown", contact, spam)

	assert.Equal(t, "[Possible spam] New inquiry — Jo", msg.Subject)
	assert.Contains(t, msg.Text, `Honeypot filled: "spam"`)
	assert.NotContains(t, msg.Text, "Elapsed")
	assert.Contains(t, msg.HTML, "&quot;spam&quot;")
}

func TestConfirmationEmail(t *testing.T) {
	c := Composer{StudioName: "Cedar & Co"}
	contact := Contact{Name: "Jo", Email: "jo@x.com", Message: "a\nb & c"}

	msg := c.ConfirmationEmail("owner@studio.test", "hello@studio.test", contact)

	assert.Equal(t, "jo@x.com", msg.To)
	assert.Equal(t, "owner@studio.test", msg.ReplyTo)
	assert.Equal(t, "Thanks for reaching out — Cedar & Co", msg.Subject)
	assert.Contains(t, msg.Text, "Hi Jo,")
	assert.Contains(t, msg.Text, "a\nb & c")
	assert.Contains(t, msg.HTML, "a<br/>b &amp; c")
	assert.Contains(t, msg.HTML, "Cedar &amp; Co")
}
