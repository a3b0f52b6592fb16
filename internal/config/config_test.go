package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
account:
  protocol: imap
  host: imap.example.com
  port: 993
  username: jane@example.com
  password: secret
  use_tls: true
  mailbox: Verification
poll:
  timeout_seconds: 90
  interval_ms: 500
  since_minutes: 30
  unread_only: true
  limit: 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "imap", cfg.Account.Protocol)
	assert.Equal(t, "Verification", cfg.Account.GetMailbox())
	assert.Equal(t, 90*time.Second, cfg.Poll.Timeout())
	assert.Equal(t, 500*time.Millisecond, cfg.Poll.Interval())
	assert.Equal(t, 30*time.Minute, cfg.Poll.Since())
	assert.True(t, cfg.Poll.UnreadOnly)
	assert.Equal(t, 10, cfg.Poll.GetLimit())
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
account:
  protocol: pop3
  host: pop.example.com
  port: 995
  username: jane
  password: secret
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "INBOX", cfg.Account.GetMailbox())
	assert.Equal(t, 60*time.Second, cfg.Poll.Timeout())
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval())
	assert.Equal(t, time.Duration(0), cfg.Poll.Since())
	assert.Equal(t, 20, cfg.Poll.GetLimit())
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown protocol", "account:\n  protocol: smtp\n  host: h\n  port: 1\n  username: u\n  password: p\n"},
		{"missing host", "account:\n  protocol: imap\n  port: 1\n  username: u\n  password: p\n"},
		{"missing port", "account:\n  protocol: imap\n  host: h\n  username: u\n  password: p\n"},
		{"missing credentials", "account:\n  protocol: imap\n  host: h\n  port: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
