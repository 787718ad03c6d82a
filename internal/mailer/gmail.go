package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/emersion/go-message/mail"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"contact-relay-go/internal/config"
	"contact-relay-go/internal/model"
)

// GmailTransport sends through the Gmail API on behalf of one account.
type GmailTransport struct {
	service *gmail.Service
	userID  string
}

// GmailOAuthConfig returns the OAuth client used both to mint a refresh
// token and to send. Only the send scope is requested.
func GmailOAuthConfig(cfg config.GmailConfig, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{gmail.GmailSendScope},
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
	}
}

// NewGmailTransport creates a transport authorized with a refresh token.
func NewGmailTransport(ctx context.Context, cfg config.GmailConfig) (*GmailTransport, error) {
	oauth2Config := GmailOAuthConfig(cfg, "")

	token := &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
	}

	service, err := gmail.NewService(ctx, option.WithTokenSource(oauth2Config.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return NewGmailTransportWithService(service, cfg.UserEmail), nil
}

// NewGmailTransportWithService wraps an existing Gmail service. An empty
// userID sends as the authorized account.
func NewGmailTransportWithService(service *gmail.Service, userID string) *GmailTransport {
	if userID == "" {
		userID = "me"
	}
	return &GmailTransport{service: service, userID: userID}
}

// Name implements Transport.
func (t *GmailTransport) Name() string {
	return "gmail"
}

// Send implements Transport. Gmail answers 403 when the From address is
// not an alias of the authorized account.
func (t *GmailTransport) Send(ctx context.Context, msg model.EmailMessage) (string, error) {
	raw, err := BuildMIME(msg, time.Now())
	if err != nil {
		return "", &SendError{Err: err}
	}

	sent, err := t.service.Users.Messages.Send(t.userID, &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return "", classifyGoogleError(err)
	}
	return sent.Id, nil
}

func classifyGoogleError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &SendError{
			StatusCode:     gerr.Code,
			SenderRejected: gerr.Code == http.StatusForbidden,
			Body:           gerr.Message,
			Err:            err,
		}
	}
	return &SendError{Err: fmt.Errorf("gmail send failed: %w", err)}
}

// BuildMIME renders msg as a multipart/alternative RFC 5322 message.
func BuildMIME(msg model.EmailMessage, date time.Time) ([]byte, error) {
	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}

	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*mail.Address{from})
	h.SetAddressList("To", []*mail.Address{to})
	if msg.ReplyTo != "" {
		replyTo, err := mail.ParseAddress(msg.ReplyTo)
		if err != nil {
			return nil, fmt.Errorf("invalid reply-to address: %w", err)
		}
		h.SetAddressList("Reply-To", []*mail.Address{replyTo})
	}
	h.SetSubject(msg.Subject)

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create message writer: %w", err)
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("failed to create inline writer: %w", err)
	}
	if err := writeInlinePart(tw, "text/plain", msg.Text); err != nil {
		return nil, err
	}
	if err := writeInlinePart(tw, "text/html", msg.HTML); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close inline writer: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close message writer: %w", err)
	}

	return buf.Bytes(), nil
}

func writeInlinePart(tw *mail.InlineWriter, contentType, body string) error {
	var h mail.InlineHeader
	h.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	w, err := tw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create %s part: %w", contentType, err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		w.Close()
		return fmt.Errorf("failed to write %s part: %w", contentType, err)
	}
	return w.Close()
}
