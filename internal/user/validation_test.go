package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM  "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{"valid", "alice@example.com", nil},
		{"valid with plus", "alice+tag@example.com", nil},
		{"empty", "", ErrEmailRequired},
		{"no at sign", "aliceexample.com", ErrInvalidEmailFormat},
		{"no domain", "alice@", ErrInvalidEmailFormat},
		{"spaces inside", "alice @example.com", ErrInvalidEmailFormat},
		{"too long", strings.Repeat("a", 250) + "@x.com", ErrInvalidEmailFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "Sup3rSecret", nil},
		{"exactly eight", "Abcdefg1", nil},
		{"empty", "", ErrPasswordRequired},
		{"too short", "Ab1", ErrPasswordTooShort},
		{"no uppercase", "sup3rsecret", ErrPasswordTooWeak},
		{"no lowercase", "SUP3RSECRET", ErrPasswordTooWeak},
		{"no digit", "SuperSecret", ErrPasswordTooWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
