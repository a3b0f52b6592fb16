package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v4"
)

// Config is the top-level application configuration.
type Config struct {
	LogLevel string  `yaml:"log_level"`
	Account  Account `yaml:"account"`
	Poll     Poll    `yaml:"poll"`
}

// Account describes the monitored mail account.
type Account struct {
	Protocol string `yaml:"protocol"` // "pop3" or "imap"
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	UseTLS   bool   `yaml:"use_tls"`
	Mailbox  string `yaml:"mailbox"`
}

// Poll holds defaults for the poll loop; the CLI can override them per run.
type Poll struct {
	TimeoutSeconds int  `yaml:"timeout_seconds"`
	IntervalMS     int  `yaml:"interval_ms"`
	SinceMinutes   int  `yaml:"since_minutes"`
	UnreadOnly     bool `yaml:"unread_only"`
	Limit          int  `yaml:"limit"`
}

// GetMailbox returns the mailbox name, defaulting to "INBOX".
func (a *Account) GetMailbox() string {
	if a.Mailbox == "" {
		return "INBOX"
	}
	return a.Mailbox
}

// Timeout returns the total poll timeout as a time.Duration.
func (p *Poll) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Interval returns the wait between poll cycles as a time.Duration.
func (p *Poll) Interval() time.Duration {
	if p.IntervalMS <= 0 {
		return 2 * time.Second
	}
	return time.Duration(p.IntervalMS) * time.Millisecond
}

// Since returns the message-age window, or zero for no lower bound.
func (p *Poll) Since() time.Duration {
	if p.SinceMinutes <= 0 {
		return 0
	}
	return time.Duration(p.SinceMinutes) * time.Minute
}

// GetLimit returns the max messages considered per cycle, defaulting to 20.
func (p *Poll) GetLimit() int {
	if p.Limit <= 0 {
		return 20
	}
	return p.Limit
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{
		LogLevel: "info",
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	a := c.Account
	if a.Protocol != "pop3" && a.Protocol != "imap" {
		return fmt.Errorf("account.protocol must be pop3 or imap")
	}
	if a.Host == "" {
		return fmt.Errorf("account.host is required")
	}
	if a.Port == 0 {
		return fmt.Errorf("account.port is required")
	}
	if a.Username == "" {
		return fmt.Errorf("account.username is required")
	}
	if a.Password == "" {
		return fmt.Errorf("account.password is required")
	}
	return nil
}
