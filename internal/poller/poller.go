package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"linkwait/internal/mailbox"
)

const (
	defaultTimeout  = 60 * time.Second
	defaultInterval = 2 * time.Second
	defaultLimit    = 20
)

// Options tunes the gateway query issued each poll cycle.
type Options struct {
	Since      time.Duration // only consider messages younger than this; zero means no bound
	UnreadOnly bool
	Limit      int    // max messages considered per cycle
	Mailbox    string // defaults to INBOX
}

// Request describes one poll-for-URL run.
type Request struct {
	Recipient      string
	SubjectKeyword string
	URLKeyword     string
	Timeout        time.Duration
	Interval       time.Duration
	Options
}

// TimeoutError is the expected terminal failure when no matching URL
// arrives before the deadline. It carries enough context to reproduce
// the run, plus the last gateway error seen, if any.
type TimeoutError struct {
	Recipient      string
	SubjectKeyword string
	URLKeyword     string
	Mailbox        string
	Elapsed        time.Duration
	LastErr        error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf(
		"no URL containing %q arrived for %s (subject %q, mailbox %s) within %s",
		e.URLKeyword, e.Recipient, e.SubjectKeyword, e.Mailbox, e.Elapsed.Round(time.Millisecond),
	)
	if e.LastErr != nil {
		msg += fmt.Sprintf("; last gateway error: %v", e.LastErr)
	}
	return msg
}

func (e *TimeoutError) Unwrap() error { return e.LastErr }

// Poller repeatedly queries a mail gateway until a matching verification
// URL shows up or the deadline passes. A Poller holds no per-run state;
// independent runs may use separate Poller values concurrently.
type Poller struct {
	gateway mailbox.Gateway
	logger  *slog.Logger

	// overridable in tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Poller backed by the given gateway.
func New(gateway mailbox.Gateway, logger *slog.Logger) *Poller {
	return &Poller{
		gateway: gateway,
		logger:  logger,
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// PollForURL polls the mailbox until a message matching the request's
// recipient and subject keyword contains a URL with the URL keyword, and
// returns that URL. A matched message without a matching URL is not
// fatal; polling continues in case a later message carries the link.
// Transient gateway failures are logged and retried on the next cycle;
// an unknown mailbox ends the run immediately.
func (p *Poller) PollForURL(ctx context.Context, req Request) (string, error) {
	recipient := NormalizeAddress(req.Recipient)
	subjectNeedle := strings.ToLower(req.SubjectKeyword)
	urlNeedle := strings.ToLower(req.URLKeyword)

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	interval := req.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	box := req.Options.Mailbox
	if box == "" {
		box = "INBOX"
	}

	start := p.now()
	deadline := start.Add(timeout)

	p.logger.Info("polling for url",
		"recipient", recipient,
		"subject", req.SubjectKeyword,
		"url_keyword", req.URLKeyword,
		"mailbox", box,
		"timeout", timeout,
	)

	var lastErr error
	for p.now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		filter := mailbox.Filter{
			Mailbox:         box,
			UnreadOnly:      req.UnreadOnly,
			Limit:           limit,
			NewestFirst:     true,
			SubjectContains: req.SubjectKeyword,
		}
		if req.Since > 0 {
			filter.Since = p.now().Add(-req.Since)
		}

		summaries, err := p.gateway.Query(ctx, filter)
		switch {
		case err == nil:
			if url, ok := p.matchURL(summaries, recipient, subjectNeedle, urlNeedle); ok {
				return url, nil
			}
		case isFatal(err):
			return "", err
		default:
			lastErr = err
			p.logger.Warn("gateway query failed, retrying next cycle", "error", err)
		}

		if err := p.sleep(ctx, interval); err != nil {
			return "", err
		}
	}

	return "", &TimeoutError{
		Recipient:      recipient,
		SubjectKeyword: req.SubjectKeyword,
		URLKeyword:     req.URLKeyword,
		Mailbox:        box,
		Elapsed:        p.now().Sub(start),
		LastErr:        lastErr,
	}
}

// matchURL selects the latest qualifying summary and scans its body for
// the first URL containing urlNeedle.
func (p *Poller) matchURL(summaries []mailbox.Summary, recipient, subjectNeedle, urlNeedle string) (string, bool) {
	match, ok := selectLatest(summaries, recipient, subjectNeedle)
	if !ok {
		p.logger.Debug("no qualifying message this cycle", "fetched", len(summaries))
		return "", false
	}
	urls := ExtractURLs(match.Body())
	for _, u := range urls {
		if strings.Contains(strings.ToLower(u), urlNeedle) {
			p.logger.Info("found matching url", "url", u, "subject", match.Subject)
			return u, true
		}
	}
	p.logger.Debug("qualifying message has no matching url yet",
		"subject", match.Subject, "urls", len(urls))
	return "", false
}

// isFatal reports whether a gateway error should end the whole poll. A
// missing mailbox is a configuration error; everything else is treated
// as a transient hiccup.
func isFatal(err error) bool {
	var notFound *mailbox.NotFoundError
	return errors.As(err, &notFound)
}

// sleepContext waits for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
