package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minNameLength    = 2
	maxNameLength    = 80
	maxEmailLength   = 254
	minMessageLength = 10
	maxMessageLength = 4000
)

// pragmatic, not RFC 5322: catches typos, not deliverability
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Contact is a validated, trimmed submission.
type Contact struct {
	Name    string
	Email   string
	Message string
}

// ValidateContact trims the fields and checks them in order name, email,
// message. Lengths are counted in characters.
func ValidateContact(name, email, message string) (Contact, error) {
	c := Contact{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Message: strings.TrimSpace(message),
	}

	if n := utf8.RuneCountInString(c.Name); n < minNameLength || n > maxNameLength {
		return Contact{}, NewContactError(CodeInvalidName)
	}
	if !IsValidEmail(c.Email) {
		return Contact{}, NewContactError(CodeInvalidEmail)
	}
	if n := utf8.RuneCountInString(c.Message); n < minMessageLength || n > maxMessageLength {
		return Contact{}, NewContactError(CodeInvalidMessage)
	}

	return c, nil
}

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return utf8.RuneCountInString(s) <= maxEmailLength && emailPattern.MatchString(s)
}
