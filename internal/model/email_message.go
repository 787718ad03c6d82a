package model

// EmailMessage represents one outbound email
type EmailMessage struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	ReplyTo string `json:"reply_to,omitempty"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// WithFrom returns a copy of the message sent from another identity.
func (m EmailMessage) WithFrom(from string) EmailMessage {
	m.From = from
	return m
}
