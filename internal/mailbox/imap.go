package mailbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// IMAPGateway queries a mailbox over IMAP/IMAPS. Each Query opens its own
// session and closes it before returning.
type IMAPGateway struct {
	host     string
	port     int
	username string
	password string
	useTLS   bool
	logger   *slog.Logger
}

// NewIMAP creates a new IMAP gateway.
func NewIMAP(host string, port int, username, password string, useTLS bool, logger *slog.Logger) *IMAPGateway {
	return &IMAPGateway{
		host:     host,
		port:     port,
		username: username,
		password: password,
		useTLS:   useTLS,
		logger:   logger,
	}
}

func (g *IMAPGateway) Query(ctx context.Context, f Filter) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	addr := net.JoinHostPort(g.host, fmt.Sprintf("%d", g.port))

	var client *imapclient.Client
	var err error

	if g.useTLS {
		client, err = imapclient.DialTLS(addr, &imapclient.Options{
			TLSConfig: &tls.Config{ServerName: g.host},
		})
	} else {
		client, err = imapclient.DialInsecure(addr, nil)
	}
	if err != nil {
		return nil, &UnavailableError{Addr: addr, Err: err}
	}
	defer client.Close()

	if err := client.Login(g.username, g.password).Wait(); err != nil {
		return nil, &UnavailableError{Addr: addr, Err: fmt.Errorf("login %s: %w", g.username, err)}
	}
	defer client.Logout()

	name := f.Mailbox
	if name == "" {
		name = "INBOX"
	}
	if _, err := client.Select(name, nil).Wait(); err != nil {
		if !g.mailboxExists(client, name) {
			return nil, &NotFoundError{Mailbox: name}
		}
		return nil, fmt.Errorf("imap select %s: %w", name, err)
	}

	seqNums, err := g.search(client, f)
	if err != nil {
		return nil, err
	}
	if len(seqNums) == 0 {
		g.logger.Debug("no messages matched search", "mailbox", name)
		return nil, nil
	}

	// Newest messages have the highest sequence numbers; fetch only the
	// tail when a cap is set.
	if f.Limit > 0 && len(seqNums) > f.Limit {
		seqNums = seqNums[len(seqNums)-f.Limit:]
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOptions := &imap.FetchOptions{
		Envelope:     true,
		InternalDate: true,
		BodySection:  []*imap.FetchItemBodySection{bodySection},
	}

	buffers, err := client.Fetch(imap.SeqSetNum(seqNums...), fetchOptions).Collect()
	if err != nil {
		return nil, fmt.Errorf("imap fetch: %w", err)
	}

	var summaries []Summary
	for _, buf := range buffers {
		raw := buf.FindBodySection(bodySection)
		summary, err := summaryFromRaw(raw)
		if err != nil {
			g.logger.Warn("skipping unparseable message", "seq", buf.SeqNum, "error", err)
			continue
		}
		summary.InternalDate = buf.InternalDate
		if buf.Envelope != nil {
			if summary.Subject == "" {
				summary.Subject = buf.Envelope.Subject
			}
			if len(summary.ToAddrs) == 0 {
				for _, to := range buf.Envelope.To {
					summary.ToAddrs = append(summary.ToAddrs, to.Addr())
				}
			}
			if summary.HeaderDate.IsZero() {
				summary.HeaderDate = buf.Envelope.Date
			}
		}
		summaries = append(summaries, summary)
	}

	g.logger.Debug("fetched messages", "mailbox", name, "count", len(summaries))
	return applyLocalFilter(summaries, f), nil
}

// search runs the server-side search, relaxing the criteria when it comes
// back empty: first the since window is dropped, then the unseen flag.
// Date-based SEARCH is day-granular and flag state can be stale on some
// servers, so an empty result under those criteria is not trustworthy.
func (g *IMAPGateway) search(client *imapclient.Client, f Filter) ([]uint32, error) {
	criteria := &imap.SearchCriteria{}
	if !f.Since.IsZero() {
		criteria.Since = f.Since
	}
	if f.UnreadOnly {
		criteria.NotFlag = []imap.Flag{imap.FlagSeen}
	}
	if f.SubjectContains != "" {
		criteria.Header = []imap.SearchCriteriaHeaderField{
			{Key: "Subject", Value: f.SubjectContains},
		}
	}

	for {
		data, err := client.Search(criteria, nil).Wait()
		if err != nil {
			return nil, fmt.Errorf("imap search: %w", err)
		}
		seqNums := data.AllSeqNums()
		if len(seqNums) > 0 {
			return seqNums, nil
		}
		switch {
		case !criteria.Since.IsZero():
			g.logger.Debug("empty result, retrying search without since window")
			criteria.Since = time.Time{}
		case len(criteria.NotFlag) > 0:
			g.logger.Debug("empty result, retrying search without unseen flag")
			criteria.NotFlag = nil
		default:
			return nil, nil
		}
	}
}

// mailboxExists lists the account's mailboxes and reports whether name is
// among them. INBOX is matched case-insensitively per the protocol.
func (g *IMAPGateway) mailboxExists(client *imapclient.Client, name string) bool {
	boxes, err := client.List("", "*", nil).Collect()
	if err != nil {
		return true // can't tell, assume transport trouble instead
	}
	for _, box := range boxes {
		if box.Mailbox == name {
			return true
		}
		if strings.EqualFold(name, "INBOX") && strings.EqualFold(box.Mailbox, "INBOX") {
			return true
		}
	}
	return false
}
