package poller

import (
	"strings"

	"linkwait/internal/mailbox"
)

// qualifies reports whether a summary satisfies both local predicates:
// the lowercased subject contains subjectNeedle, and the normalized
// recipient appears either in the address list or as a substring of the
// raw To header. Server-side filtering is best-effort, so these checks
// run on every summary regardless of what the gateway already filtered.
func qualifies(s mailbox.Summary, recipient, subjectNeedle string) bool {
	if !strings.Contains(strings.ToLower(s.Subject), subjectNeedle) {
		return false
	}
	for _, addr := range s.ToAddrs {
		if NormalizeAddress(addr) == recipient {
			return true
		}
	}
	return strings.Contains(strings.ToLower(s.ToHeader), recipient)
}

// selectLatest returns the qualifying summary with the greatest effective
// timestamp. Ties keep the earlier entry in the input order. The second
// return is false when nothing qualifies.
func selectLatest(summaries []mailbox.Summary, recipient, subjectNeedle string) (mailbox.Summary, bool) {
	var best mailbox.Summary
	found := false
	for _, s := range summaries {
		if !qualifies(s, recipient, subjectNeedle) {
			continue
		}
		if !found || s.EffectiveTime().After(best.EffectiveTime()) {
			best = s
			found = true
		}
	}
	return best, found
}
