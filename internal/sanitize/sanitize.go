// Package sanitize scrubs model-generated HTML before it is stored or
// served. Model output is untrusted input: tags outside the allow-list
// are stripped, and every text field is capped against runaway output.
package sanitize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

type Sanitizer struct {
	policy *bluemonday.Policy
}

func New() *Sanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("p", "h2", "h3", "blockquote", "figure", "figcaption")
	p.RequireNoFollowOnLinks(true)
	return &Sanitizer{policy: p}
}

func (s *Sanitizer) HTML(html string) string {
	return strings.TrimSpace(s.policy.Sanitize(html))
}

// PlainText renders HTML down to whitespace-normalized text, used for
// the web article's search/extract column.
func (s *Sanitizer) PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.policy.Sanitize(html)))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Truncate cuts s to at most max runes. Zero or negative max means no cap.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
