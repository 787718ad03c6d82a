package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validMessage = "1234567890"

func TestValidateContactName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"too short", "J", false},
		{"minimum", "Jo", true},
		{"maximum", strings.Repeat("a", 80), true},
		{"too long", strings.Repeat("a", 81), false},
		{"whitespace padded", "   J   ", false},
		{"multibyte counted as characters", "éé", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateContact(tt.input, "jo@x.com", validMessage)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, CodeInvalidName, AsContactError(err).Code)
		})
	}
}

func TestValidateContactEmail(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"a@b.c", true},
		{"  jo@x.com  ", true},
		{"a@b", false},
		{"a b@c.com", false},
		{"", false},
		{strings.Repeat("a", 250) + "@b.co", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ValidateContact("Jo", tt.input, validMessage)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, CodeInvalidEmail, AsContactError(err).Code)
		})
	}
}

func TestValidateContactMessage(t *testing.T) {
	_, err := ValidateContact("Jo", "jo@x.com", "123456789")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidMessage, AsContactError(err).Code)

	_, err = ValidateContact("Jo", "jo@x.com", validMessage)
	assert.NoError(t, err)

	_, err = ValidateContact("Jo", "jo@x.com", strings.Repeat("m", 4001))
	require.Error(t, err)
	assert.Equal(t, CodeInvalidMessage, AsContactError(err).Code)
}

func TestValidateContactOrderAndTrim(t *testing.T) {
	_, err := ValidateContact("J", "bad", "short")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidName, AsContactError(err).Code)

	c, err := ValidateContact("  Jo ", " jo@x.com\n", "\t"+validMessage+" ")
	require.NoError(t, err)
	assert.Equal(t, Contact{Name: "Jo", Email: "jo@x.com", Message: validMessage}, c)
}

func TestContactErrorStatus(t *testing.T) {
	tests := []struct {
		code     string
		status   int
		category Category
	}{
		{CodeInvalidJSON, 400, ClientInputError},
		{CodeInvalidMessage, 400, ClientInputError},
		{CodeTooFast, 429, AbuseRejection},
		{CodeRateLimited, 429, AbuseRejection},
		{CodeMissingToEmail, 500, ConfigurationError},
		{"email_not_configured", 500, ConfigurationError},
		{"sender_not_authorized", 500, DeliveryError},
		{"email_send_failed", 500, DeliveryError},
	}

	for _, tt := range tests {
		e := NewContactError(tt.code)
		assert.Equal(t, tt.status, e.Status(), tt.code)
		assert.Equal(t, tt.category, e.Category(), tt.code)
	}
}

func TestAsContactErrorUnknown(t *testing.T) {
	assert.Equal(t, "email_send_failed", AsContactError(assert.AnError).Code)
}
