// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPasswordMinLength is used when no policy is configured. The upstream
// system shipped a length check that could never fail; a sane floor is
// enforced here instead.
const DefaultPasswordMinLength = 8

// passwordMaxLength is bcrypt's input cap; GenerateFromPassword rejects
// anything longer, so the validator must too or the failure surfaces as a 500.
const passwordMaxLength = 72

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks that the address has a local@domain.tld shape.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(strings.ToLower(email)) {
		return fmt.Errorf("email is invalid")
	}
	return nil
}

// ValidatePassword checks the password against the configured minimum length.
// A non-positive minLen falls back to DefaultPasswordMinLength.
func ValidatePassword(password string, minLen int) error {
	if minLen <= 0 {
		minLen = DefaultPasswordMinLength
	}
	if len(password) < minLen {
		return fmt.Errorf("password must be at least %d characters long", minLen)
	}
	if len(password) > passwordMaxLength {
		return fmt.Errorf("password must not exceed %d characters", passwordMaxLength)
	}
	return nil
}
