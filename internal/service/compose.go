package service

import (
	"fmt"
	"strings"

	"contact-relay-go/internal/model"
)

const (
	spamSubjectPrefix = "[Possible spam] "
	fontStack         = "font-family: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial;"
	boxStyle          = "padding:12px 14px; border:1px solid #e5e7eb; border-radius:12px;"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML replaces & < > " ' with their entities.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// escapeMultiline escapes s and turns newlines into <br/>.
func escapeMultiline(s string) string {
	return strings.ReplaceAll(EscapeHTML(s), "\n", "<br/>")
}

// Composer renders the owner notification and the submitter confirmation.
type Composer struct {
	StudioName string
}

// OwnerEmail builds the notification sent to the studio. Suspicious
// submissions get a flagged subject and the honeypot value in the body.
func (c Composer) OwnerEmail(to, from, clientKey string, contact Contact, spam SpamCheck) model.EmailMessage {
	suspicious := spam.Verdict == VerdictSuspicious

	subject := "New inquiry — " + contact.Name
	if suspicious {
		subject = spamSubjectPrefix + subject
	}

	var text strings.Builder
	fmt.Fprintf(&text, "New inquiry from %s\nReply-to: %s\nIP: %s", contact.Name, contact.Email, clientKey)
	if spam.ElapsedKnown {
		fmt.Fprintf(&text, "\nElapsed: %dms", spam.Elapsed.Milliseconds())
	}
	if suspicious {
		fmt.Fprintf(&text, "\nHoneypot filled: %s", spam.Honeypot)
	}
	fmt.Fprintf(&text, "\n\n%s", contact.Message)

	var html strings.Builder
	fmt.Fprintf(&html, `<div style="%s">`, fontStack)
	html.WriteString(`<h2 style="margin:0 0 12px;">New inquiry</h2>`)
	fmt.Fprintf(&html, `<p style="margin:0 0 12px;"><strong>Name:</strong> %s<br/>`, EscapeHTML(contact.Name))
	fmt.Fprintf(&html, `<strong>Email:</strong> %s<br/>`, EscapeHTML(contact.Email))
	fmt.Fprintf(&html, `<strong>IP:</strong> %s`, EscapeHTML(clientKey))
	if spam.ElapsedKnown {
		fmt.Fprintf(&html, `<br/><strong>Elapsed:</strong> %dms`, spam.Elapsed.Milliseconds())
	}
	if suspicious {
		fmt.Fprintf(&html, `<br/><strong style="color:#b45309;">Honeypot filled:</strong> %s`, EscapeHTML(spam.Honeypot))
	}
	html.WriteString(`</p>`)
	fmt.Fprintf(&html, `<div style="%s">%s</div>`, boxStyle, escapeMultiline(contact.Message))
	html.WriteString(`</div>`)

	return model.EmailMessage{
		To:      to,
		From:    from,
		Subject: subject,
		ReplyTo: contact.Email,
		Text:    text.String(),
		HTML:    html.String(),
	}
}

// ConfirmationEmail builds the thank-you note echoing the submitter's
// message. Replies go to the studio.
func (c Composer) ConfirmationEmail(ownerAddress, from string, contact Contact) model.EmailMessage {
	subject := "Thanks for reaching out — " + c.StudioName

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\n", contact.Name)
	text.WriteString("Thanks for reaching out. We received your message and will reply as soon as possible.\n\n")
	fmt.Fprintf(&text, "— %s\n\n", c.StudioName)
	fmt.Fprintf(&text, "Your message:\n%s\n", contact.Message)

	var html strings.Builder
	fmt.Fprintf(&html, `<div style="%s">`, fontStack)
	fmt.Fprintf(&html, `<p style="margin:0 0 12px;">Hi %s,</p>`, EscapeHTML(contact.Name))
	html.WriteString(`<p style="margin:0 0 12px;">Thanks for reaching out. We received your message and will reply as soon as possible.</p>`)
	fmt.Fprintf(&html, `<p style="margin:0 0 12px;">— %s</p>`, EscapeHTML(c.StudioName))
	fmt.Fprintf(&html, `<div style="margin-top:16px; %s">%s</div>`, boxStyle, escapeMultiline(contact.Message))
	html.WriteString(`</div>`)

	return model.EmailMessage{
		To:      contact.Email,
		From:    from,
		Subject: subject,
		ReplyTo: ownerAddress,
		Text:    text.String(),
		HTML:    html.String(),
	}
}
