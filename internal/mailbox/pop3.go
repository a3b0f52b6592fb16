package mailbox

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"

	pop3client "github.com/knadh/go-pop3"
)

// POP3Gateway queries a mailbox over POP3/POP3S. POP3 has no server-side
// search and no read flags, so every filter predicate is applied locally
// after downloading, and UnreadOnly is a no-op.
type POP3Gateway struct {
	host     string
	port     int
	username string
	password string
	useTLS   bool
	logger   *slog.Logger
}

// NewPOP3 creates a new POP3 gateway.
func NewPOP3(host string, port int, username, password string, useTLS bool, logger *slog.Logger) *POP3Gateway {
	return &POP3Gateway{
		host:     host,
		port:     port,
		username: username,
		password: password,
		useTLS:   useTLS,
		logger:   logger,
	}
}

func (g *POP3Gateway) Query(ctx context.Context, f Filter) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// POP3 exposes a single maildrop.
	if f.Mailbox != "" && !strings.EqualFold(f.Mailbox, "INBOX") {
		return nil, &NotFoundError{Mailbox: f.Mailbox}
	}

	addr := net.JoinHostPort(g.host, fmt.Sprintf("%d", g.port))

	client := pop3client.New(pop3client.Opt{
		Host:       g.host,
		Port:       g.port,
		TLSEnabled: g.useTLS,
	})
	conn, err := client.NewConn()
	if err != nil {
		return nil, &UnavailableError{Addr: addr, Err: err}
	}
	defer conn.Quit()

	if err := conn.Auth(g.username, g.password); err != nil {
		return nil, &UnavailableError{Addr: addr, Err: fmt.Errorf("auth %s: %w", g.username, err)}
	}

	msgs, err := conn.List(0)
	if err != nil {
		return nil, fmt.Errorf("pop3 list: %w", err)
	}

	var summaries []Summary
	for _, msg := range msgs {
		rawBuf, err := conn.RetrRaw(msg.ID)
		if err != nil {
			g.logger.Warn("pop3 retrieve failed", "msg_id", msg.ID, "error", err)
			continue
		}
		summary, err := summaryFromRaw(rawBuf.Bytes())
		if err != nil {
			g.logger.Warn("skipping unparseable message", "msg_id", msg.ID, "error", err)
			continue
		}
		summaries = append(summaries, summary)
	}

	g.logger.Debug("fetched messages", "count", len(summaries))
	return applyLocalFilter(summaries, f), nil
}
