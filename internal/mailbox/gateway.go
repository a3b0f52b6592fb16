package mailbox

import (
	"context"
	"fmt"
	"time"
)

// Summary is a normalized view of one fetched message. Fields that the
// remote store did not provide are left at their zero value; consumers
// resolve fallbacks themselves (see EffectiveTime).
type Summary struct {
	Subject      string
	ToAddrs      []string  // recipient addresses in header order, may be empty
	ToHeader     string    // raw To header text, fallback when ToAddrs is empty
	InternalDate time.Time // server-assigned received time, zero if unknown
	HeaderDate   time.Time // parsed Date header, zero if absent or unparseable
	TextBody     string
	HTMLBody     string
}

// EffectiveTime resolves the best available received time: the server's
// internal date when present, else the Date header, else the zero time
// (treated as oldest possible).
func (s Summary) EffectiveTime() time.Time {
	if !s.InternalDate.IsZero() {
		return s.InternalDate
	}
	return s.HeaderDate
}

// Body returns the message body to scan for links: the HTML body when
// present, else the plain-text body, else the empty string.
func (s Summary) Body() string {
	if s.HTMLBody != "" {
		return s.HTMLBody
	}
	return s.TextBody
}

// Filter describes one query against the remote store. Server-side
// filtering is best-effort on many stores (date-window semantics, stale
// flags), so callers must re-check every predicate on the returned
// summaries themselves.
type Filter struct {
	Mailbox         string
	UnreadOnly      bool
	Since           time.Time // zero means no lower bound
	Limit           int       // zero means no cap
	NewestFirst     bool
	SubjectContains string // pre-filter hint only
}

// Gateway executes one search against a remote mail store and returns
// normalized message summaries. Each Query owns a single exclusive
// session; callers must not issue overlapping Query calls against the
// same instance.
type Gateway interface {
	Query(ctx context.Context, f Filter) ([]Summary, error)
}

// NotFoundError reports that the requested mailbox does not exist among
// the store's listed mailboxes. It is a configuration error and fatal to
// any poll in progress.
type NotFoundError struct {
	Mailbox string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("mailbox %q not found on server", e.Mailbox)
}

// UnavailableError reports that the remote store could not be reached or
// authenticated.
type UnavailableError struct {
	Addr string
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("mail store %s unavailable: %v", e.Addr, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }
