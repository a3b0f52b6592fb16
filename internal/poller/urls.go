package poller

import (
	"regexp"
	"strings"
)

// urlPattern matches http/https URLs up to whitespace, angle brackets or
// quotes, which bounds links embedded in HTML attributes as well as prose.
var urlPattern = regexp.MustCompile(`(?i)https?://[^\s<>"']+`)

// trailingJunk is the set of characters stripped from the end of a match:
// closing punctuation that follows a URL in prose or markup but is not
// part of the link itself.
const trailingJunk = "),.;]>'\"‘’“”"

// ExtractURLs returns the distinct URLs found in text, in order of first
// appearance, with trailing punctuation stripped. Empty or URL-free input
// yields a nil slice.
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var urls []string
	for _, m := range matches {
		m = strings.TrimRight(m, trailingJunk)
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		urls = append(urls, m)
	}
	return urls
}
