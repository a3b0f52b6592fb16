package poller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases and trims", "  User@Gmail.COM ", "user@gmail.com"},
		{"collapses plus alias on gmail", "User+tag@gmail.com", "user@gmail.com"},
		{"collapses plus alias on googlemail", "user+ci-42@googlemail.com", "user@googlemail.com"},
		{"keeps plus on other domains", "A+b@example.com", "a+b@example.com"},
		{"no at sign passes through", "not-an-address", "not-an-address"},
		{"empty string", "", ""},
		{"plus at start of local part", "+all@gmail.com", "@gmail.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAddress(tt.in))
		})
	}
}

func TestNormalizeAddressIdempotent(t *testing.T) {
	inputs := []string{
		"User+tag@gmail.com",
		"A+b@example.com",
		"  MIXED@Case.Org  ",
		"plain",
	}
	for _, in := range inputs {
		once := NormalizeAddress(in)
		assert.Equal(t, once, NormalizeAddress(once), "normalize(%q) not idempotent", in)
	}
}
