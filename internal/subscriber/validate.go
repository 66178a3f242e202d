// Package subscriber validates and records newsletter sign-ups.
package subscriber

import (
	"errors"
	"regexp"
	"strings"
)

// Validation errors. Their messages are returned to API clients verbatim.
var (
	ErrEmailRequired = errors.New("Email is required")
	ErrInvalidEmail  = errors.New("Invalid email format")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate checks an email address and returns it trimmed.
func Validate(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}
