package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid", email: "a@x.com", wantErr: false},
		{name: "subdomain", email: "alice@mail.example.org", wantErr: false},
		{name: "uppercase", email: "Alice@Example.COM", wantErr: false},
		{name: "missing at", email: "alice.example.com", wantErr: true},
		{name: "missing tld", email: "alice@example", wantErr: true},
		{name: "whitespace", email: "ali ce@example.com", wantErr: true},
		{name: "empty", email: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("short", 8))
	assert.NoError(t, ValidatePassword("longenough", 8))

	// bcrypt rejects inputs over 72 bytes; the validator must catch them first
	assert.NoError(t, ValidatePassword(strings.Repeat("x", 72), 8))
	assert.Error(t, ValidatePassword(strings.Repeat("x", 73), 8))
	assert.Error(t, ValidatePassword(strings.Repeat("x", 129), 8))

	// Non-positive minimum falls back to the default floor, never to "no check".
	assert.Error(t, ValidatePassword("", 0))
	assert.Error(t, ValidatePassword("1234567", -1))
	assert.NoError(t, ValidatePassword("12345678", 0))
}
