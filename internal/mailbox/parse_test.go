package mailbox

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

const multipartMessage = `From: noreply@example.com
To: "Jane Doe" <jane+test@gmail.com>
Subject: Please verify
Date: Sat, 01 Aug 2026 11:59:00 +0000
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="b1"

--b1
Content-Type: text/plain; charset=utf-8

confirm here: https://example.com/verify/abc123.
--b1
Content-Type: text/html; charset=utf-8

<p>confirm <a href="https://example.com/verify/abc123">here</a></p>
--b1--
`

func TestSummaryFromRawMultipart(t *testing.T) {
	s, err := summaryFromRaw(crlf(multipartMessage))
	require.NoError(t, err)

	assert.Equal(t, "Please verify", s.Subject)
	assert.Equal(t, []string{"jane+test@gmail.com"}, s.ToAddrs)
	assert.Contains(t, s.ToHeader, "jane+test@gmail.com")
	assert.Equal(t, time.Date(2026, 8, 1, 11, 59, 0, 0, time.UTC), s.HeaderDate.UTC())
	assert.Contains(t, s.TextBody, "https://example.com/verify/abc123")
	assert.Contains(t, s.HTMLBody, `href="https://example.com/verify/abc123"`)
	assert.True(t, s.InternalDate.IsZero())
}

func TestSummaryFromRawPlainMessage(t *testing.T) {
	raw := crlf(`From: noreply@example.com
To: jane@gmail.com
Subject: hello

just text, no links
`)
	s, err := summaryFromRaw(raw)
	require.NoError(t, err)
	assert.Equal(t, "hello", s.Subject)
	assert.Contains(t, s.TextBody, "just text")
	assert.Empty(t, s.HTMLBody)
	assert.True(t, s.HeaderDate.IsZero())
}

func TestSummaryFromRawMalformed(t *testing.T) {
	_, err := summaryFromRaw([]byte("this is not a message"))
	assert.Error(t, err)
}

func TestEffectiveTimeFallback(t *testing.T) {
	internal := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	header := time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC)

	assert.Equal(t, internal, Summary{InternalDate: internal, HeaderDate: header}.EffectiveTime())
	assert.Equal(t, header, Summary{HeaderDate: header}.EffectiveTime())
	assert.True(t, Summary{}.EffectiveTime().IsZero())
}

func TestBodyPreference(t *testing.T) {
	assert.Equal(t, "<b>html</b>", Summary{TextBody: "text", HTMLBody: "<b>html</b>"}.Body())
	assert.Equal(t, "text", Summary{TextBody: "text"}.Body())
	assert.Equal(t, "", Summary{}.Body())
}

func TestApplyLocalFilter(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	summaries := []Summary{
		{Subject: "verify old", InternalDate: base.Add(-2 * time.Hour)},
		{Subject: "verify new", InternalDate: base},
		{Subject: "undated verify"},
		{Subject: "unrelated", InternalDate: base},
	}

	t.Run("since drops old but keeps undated", func(t *testing.T) {
		out := applyLocalFilter(summaries, Filter{Since: base.Add(-time.Hour)})
		var subjects []string
		for _, s := range out {
			subjects = append(subjects, s.Subject)
		}
		assert.Equal(t, []string{"verify new", "undated verify", "unrelated"}, subjects)
	})

	t.Run("subject hint is case-insensitive substring", func(t *testing.T) {
		out := applyLocalFilter(summaries, Filter{SubjectContains: "VERIFY"})
		assert.Len(t, out, 3)
	})

	t.Run("newest first then limit", func(t *testing.T) {
		out := applyLocalFilter(summaries, Filter{NewestFirst: true, Limit: 2})
		require.Len(t, out, 2)
		assert.Equal(t, "verify new", out[0].Subject)
		assert.Equal(t, "unrelated", out[1].Subject)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, applyLocalFilter(nil, Filter{Limit: 5}))
	})
}
