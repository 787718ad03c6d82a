package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"contact-relay-go/internal/model"
)

const maxErrorBody = 4 << 10

// ResendTransport sends through the Resend HTTP API.
type ResendTransport struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Text    string   `json:"text"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// NewResendTransport creates a transport posting to endpoint with apiKey.
func NewResendTransport(apiKey, endpoint string, client *http.Client) *ResendTransport {
	if client == nil {
		client = &http.Client{Timeout: defaultSendTimeout}
	}
	return &ResendTransport{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   client,
	}
}

// Name implements Transport.
func (t *ResendTransport) Name() string {
	return "resend"
}

// Send implements Transport. A 403 response marks the sender as rejected.
func (t *ResendTransport) Send(ctx context.Context, msg model.EmailMessage) (string, error) {
	payload, err := json.Marshal(resendRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		ReplyTo: msg.ReplyTo,
		Text:    msg.Text,
		HTML:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", &SendError{Err: fmt.Errorf("resend request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &SendError{
			StatusCode:     resp.StatusCode,
			SenderRejected: resp.StatusCode == http.StatusForbidden,
			Body:           strings.TrimSpace(string(body)),
		}
	}

	// an unreadable body still counts as sent, just without an id
	var out resendResponse
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return out.ID, nil
}
