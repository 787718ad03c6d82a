package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"contact-relay-go/internal/config"
	"contact-relay-go/internal/model"
)

func sampleMessage() model.EmailMessage {
	return model.EmailMessage{
		To:      "owner@studio.test",
		From:    "PacNW Studio <hello@studio.test>",
		Subject: "New inquiry — Jo",
		ReplyTo: "jo@x.com",
		Text:    "New inquiry from Jo",
		HTML:    "<p>&lt;script&gt;</p>",
	}
}

func TestBuildMIME(t *testing.T) {
	raw, err := BuildMIME(sampleMessage(), time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)

	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "New inquiry — Jo", subject)

	replyTo, err := mr.Header.AddressList("Reply-To")
	require.NoError(t, err)
	require.Len(t, replyTo, 1)
	assert.Equal(t, "jo@x.com", replyTo[0].Address)

	from, err := mr.Header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "PacNW Studio", from[0].Name)

	bodies := map[string]string{}
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		h, ok := p.Header.(*mail.InlineHeader)
		require.True(t, ok)
		ct, _, err := h.ContentType()
		require.NoError(t, err)
		b, err := io.ReadAll(p.Body)
		require.NoError(t, err)
		bodies[ct] = string(b)
	}

	assert.Equal(t, "New inquiry from Jo", bodies["text/plain"])
	assert.Equal(t, "<p>&lt;script&gt;</p>", bodies["text/html"])
}

func TestBuildMIMERejectsBadAddress(t *testing.T) {
	msg := sampleMessage()
	msg.To = "not an address"
	_, err := BuildMIME(msg, time.Now())
	assert.Error(t, err)
}

func newTestGmailTransport(t *testing.T, handler http.HandlerFunc) *GmailTransport {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gmail.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return NewGmailTransportWithService(svc, "")
}

func TestGmailTransportSend(t *testing.T) {
	var raw string
	tr := newTestGmailTransport(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/users/me/messages/send"), r.URL.Path)
		var body gmail.Message
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		raw = body.Raw
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"gm-1"}`))
	})

	id, err := tr.Send(context.Background(), sampleMessage())

	require.NoError(t, err)
	assert.Equal(t, "gm-1", id)
	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "owner@studio.test")
}

func TestGmailTransportForbidden(t *testing.T) {
	tr := newTestGmailTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Delegation denied"}}`))
	})

	_, err := tr.Send(context.Background(), sampleMessage())

	require.Error(t, err)
	assert.True(t, IsSenderRejected(err))
}

func TestGmailTransportServerError(t *testing.T) {
	tr := newTestGmailTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Invalid To header"}}`))
	})

	_, err := tr.Send(context.Background(), sampleMessage())

	require.Error(t, err)
	assert.False(t, IsSenderRejected(err))
}

func TestGmailOAuthConfig(t *testing.T) {
	cfg := GmailOAuthConfig(config.GmailConfig{ClientID: "cid", ClientSecret: "secret"}, "http://localhost:8080/callback")

	assert.Equal(t, []string{gmail.GmailSendScope}, cfg.Scopes)
	url := cfg.AuthCodeURL("s")
	assert.Contains(t, url, "client_id=cid")
	assert.Contains(t, url, "redirect_uri=http%3A%2F%2Flocalhost%3A8080%2Fcallback")
}
