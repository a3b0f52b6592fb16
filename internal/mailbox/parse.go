package mailbox

import (
	"bytes"
	"io"
	"sort"
	"strings"

	"github.com/emersion/go-message/mail"
)

// summaryFromRaw parses raw RFC 5322 message bytes into a Summary.
// Headers that fail to parse are left at their zero value rather than
// failing the whole message.
func summaryFromRaw(raw []byte) (Summary, error) {
	reader, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return Summary{}, err
	}
	defer reader.Close()

	var s Summary
	if subj, err := reader.Header.Subject(); err == nil {
		s.Subject = subj
	} else {
		s.Subject = reader.Header.Get("Subject")
	}
	s.ToHeader = reader.Header.Get("To")
	if addrs, err := reader.Header.AddressList("To"); err == nil {
		for _, a := range addrs {
			s.ToAddrs = append(s.ToAddrs, a.Address)
		}
	}
	if date, err := reader.Header.Date(); err == nil {
		s.HeaderDate = date
	}
	s.TextBody, s.HTMLBody = readBodies(reader)
	return s, nil
}

// readBodies walks the inline MIME parts collecting the first text/plain
// and text/html bodies. Attachments and unreadable parts are skipped.
func readBodies(reader *mail.Reader) (text, html string) {
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := header.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(contentType, "text/plain") && text == "":
			text = string(body)
		case strings.HasPrefix(contentType, "text/html") && html == "":
			html = string(body)
		}
	}
	return text, html
}

// applyLocalFilter re-applies the parts of a Filter that a backend could
// not push to the server: the since window, the subject hint, the result
// cap and the newest-first ordering.
func applyLocalFilter(summaries []Summary, f Filter) []Summary {
	needle := strings.ToLower(f.SubjectContains)
	var out []Summary
	for _, s := range summaries {
		if !f.Since.IsZero() {
			if t := s.EffectiveTime(); !t.IsZero() && t.Before(f.Since) {
				continue
			}
		}
		if needle != "" && !strings.Contains(strings.ToLower(s.Subject), needle) {
			continue
		}
		out = append(out, s)
	}
	if f.NewestFirst {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].EffectiveTime().After(out[j].EffectiveTime())
		})
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
