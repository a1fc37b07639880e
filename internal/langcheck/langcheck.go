// Package langcheck guards against the model answering in the wrong
// language: a Telugu submission that comes back in English prose must
// fall back to the reporter's original text, not get published as-is.
package langcheck

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// minLetters is the signal floor: below it the text is too short to
// judge. expectedFloor is the share of letters that must be in the
// expected script before the output counts as that language.
const (
	minLetters    = 20
	expectedFloor = 0.25
)

var scriptRanges = map[string]*unicode.RangeTable{
	"Deva": unicode.Devanagari,
	"Telu": unicode.Telugu,
	"Taml": unicode.Tamil,
	"Knda": unicode.Kannada,
	"Mlym": unicode.Malayalam,
	"Beng": unicode.Bengali,
	"Gujr": unicode.Gujarati,
	"Guru": unicode.Gurmukhi,
	"Orya": unicode.Oriya,
	"Arab": unicode.Arabic,
}

// Canonical parses a BCP-47 code and returns its canonical form.
func Canonical(code string) (string, bool) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return "", false
	}
	return tag.String(), true
}

// Matches reports whether text is plausibly written in the language
// identified by code. Latin-script languages and unparseable codes
// always pass; there is no reliable cheap signal for them.
func Matches(code, text string) bool {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return true
	}
	script, conf := tag.Script()
	if conf == language.No {
		return true
	}
	expected, ok := scriptRanges[script.String()]
	if !ok {
		return true
	}

	var total, inExpected int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		total++
		if unicode.Is(expected, r) {
			inExpected++
		}
	}
	if total < minLetters {
		return true
	}
	return float64(inExpected)/float64(total) >= expectedFloor
}
