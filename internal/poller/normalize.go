package poller

import "strings"

// plusAliasDomains are the personal-mail domains where everything from the
// first "+" in the local part is a delivery alias for the base address.
var plusAliasDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
}

// NormalizeAddress canonicalizes an email address for equality comparison:
// trimmed, lowercased, and with plus-aliases collapsed on the domains that
// use them. Malformed input without an "@" is returned trimmed and
// lowercased as-is. Idempotent.
func NormalizeAddress(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	local, domain, ok := strings.Cut(addr, "@")
	if !ok {
		return addr
	}
	if plusAliasDomains[domain] {
		if i := strings.Index(local, "+"); i >= 0 {
			local = local[:i]
		}
	}
	return local + "@" + domain
}
