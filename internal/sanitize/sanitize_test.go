package sanitize

import (
	"strings"
	"testing"
)

func TestHTML_StripsScript(t *testing.T) {
	s := New()
	got := s.HTML(`<p>hello</p><script>alert("x")</script>`)
	if strings.Contains(got, "script") || strings.Contains(got, "alert") {
		t.Fatalf("script survived sanitation: %q", got)
	}
	if !strings.Contains(got, "<p>hello</p>") {
		t.Fatalf("allowed markup was removed: %q", got)
	}
}

func TestHTML_StripsEventHandlers(t *testing.T) {
	s := New()
	got := s.HTML(`<p onclick="steal()">text</p>`)
	if strings.Contains(got, "onclick") {
		t.Fatalf("event handler survived: %q", got)
	}
}

func TestPlainText_CollapsesMarkupAndWhitespace(t *testing.T) {
	s := New()
	got := s.PlainText("<h2>Head</h2>\n<p>one   two</p>\n<p>three</p>")
	if got != "Head one two three" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("ab", 3); got != "ab" {
		t.Fatalf("short input must pass through, got %q", got)
	}
	if got := Truncate("abcdef", 0); got != "abcdef" {
		t.Fatalf("zero cap must pass through, got %q", got)
	}
	// rune-safe on multibyte text
	if got := Truncate("తెలంగాణ", 3); got != "తెల" {
		t.Fatalf("got %q", got)
	}
}
