package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"linkwait/internal/config"
	"linkwait/internal/mailbox"
	"linkwait/internal/poller"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	recipient := flag.String("to", "", "recipient address the message was sent to")
	subject := flag.String("subject", "", "substring the subject must contain")
	urlKeyword := flag.String("url-keyword", "", "substring the extracted URL must contain")
	timeout := flag.Duration("timeout", 0, "total poll timeout (overrides config)")
	interval := flag.Duration("interval", 0, "wait between poll cycles (overrides config)")
	flag.Parse()

	if *recipient == "" || *urlKeyword == "" {
		fmt.Fprintln(os.Stderr, "error: -to and -url-keyword are required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel)

	gateway, err := newGateway(cfg.Account, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	req := poller.Request{
		Recipient:      *recipient,
		SubjectKeyword: *subject,
		URLKeyword:     *urlKeyword,
		Timeout:        cfg.Poll.Timeout(),
		Interval:       cfg.Poll.Interval(),
		Options: poller.Options{
			Since:      cfg.Poll.Since(),
			UnreadOnly: cfg.Poll.UnreadOnly,
			Limit:      cfg.Poll.GetLimit(),
			Mailbox:    cfg.Account.GetMailbox(),
		},
	}
	if *timeout > 0 {
		req.Timeout = *timeout
	}
	if *interval > 0 {
		req.Interval = *interval
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	url, err := poller.New(gateway, logger).PollForURL(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(url)
}

func newGateway(acct config.Account, logger *slog.Logger) (mailbox.Gateway, error) {
	switch acct.Protocol {
	case "pop3":
		return mailbox.NewPOP3(
			acct.Host, acct.Port,
			acct.Username, acct.Password,
			acct.UseTLS, logger,
		), nil
	case "imap":
		return mailbox.NewIMAP(
			acct.Host, acct.Port,
			acct.Username, acct.Password,
			acct.UseTLS, logger,
		), nil
	default:
		return nil, fmt.Errorf("unsupported protocol: %s", acct.Protocol)
	}
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
