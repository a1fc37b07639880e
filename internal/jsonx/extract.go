// Package jsonx recovers structured JSON from model output that wraps
// it in prose, markdown fences, or trailing commentary.
package jsonx

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrNoJSON = errors.New("no json content found")

// Extract returns the best JSON document embedded in text.
//
// Tiers, cheapest first: strip code fences and parse directly; take the
// first-to-last bracket substring; finally scan character by character
// tracking string-literal state and bracket depth, returning the largest
// balanced top-level region. Objects win over arrays when both exist.
func Extract(text string) (json.RawMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoJSON
	}

	if raw, ok := tryDirect(text); ok {
		return raw, nil
	}
	if raw, ok := tryBracketSpan(text); ok {
		return raw, nil
	}
	if raw, ok := tryScan(text); ok {
		return raw, nil
	}
	return nil, ErrNoJSON
}

// Unmarshal extracts and decodes in one step.
func Unmarshal(text string, v any) error {
	raw, err := Extract(text)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func tryDirect(text string) (json.RawMessage, bool) {
	candidate := stripFences(text)
	if candidate == "" {
		return nil, false
	}
	if json.Valid([]byte(candidate)) && isStructured(candidate) {
		return json.RawMessage(candidate), true
	}
	return nil, false
}

// stripFences unwraps a ```-fenced block, tolerating prose on either
// side of the fence and a language tag on the opening line.
func stripFences(s string) string {
	t := strings.TrimSpace(s)
	first := strings.Index(t, "```")
	if first < 0 {
		return t
	}
	inner := t[first+3:]
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		head := strings.TrimSpace(inner[:nl])
		if head == "" || isFenceTag(head) {
			inner = inner[nl+1:]
		}
	} else {
		inner = strings.TrimPrefix(inner, "json")
	}
	if end := strings.LastIndex(inner, "```"); end >= 0 {
		inner = inner[:end]
	}
	return strings.TrimSpace(inner)
}

func isFenceTag(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return len(s) <= 10
}

func tryBracketSpan(text string) (json.RawMessage, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		start = strings.IndexByte(text, '[')
		end = strings.LastIndexByte(text, ']')
	}
	if start < 0 || end <= start {
		return nil, false
	}
	candidate := text[start : end+1]
	if json.Valid([]byte(candidate)) {
		return json.RawMessage(candidate), true
	}
	return nil, false
}

type region struct {
	start, end int
	object     bool
}

func tryScan(text string) (json.RawMessage, bool) {
	var bestObj, bestArr *region
	for _, r := range scanRegions(text) {
		candidate := text[r.start:r.end]
		if !json.Valid([]byte(candidate)) {
			continue
		}
		r := r
		if r.object {
			if bestObj == nil || r.end-r.start > bestObj.end-bestObj.start {
				bestObj = &r
			}
		} else {
			if bestArr == nil || r.end-r.start > bestArr.end-bestArr.start {
				bestArr = &r
			}
		}
	}
	switch {
	case bestObj != nil:
		return json.RawMessage(text[bestObj.start:bestObj.end]), true
	case bestArr != nil:
		return json.RawMessage(text[bestArr.start:bestArr.end]), true
	default:
		return nil, false
	}
}

// scanRegions walks the text once and records every balanced top-level
// bracket region. Quote and escape state is honored so a brace inside a
// string literal never closes a region early.
func scanRegions(s string) []region {
	var regions []region
	var stack []byte
	inString := false
	escaped := false
	start := -1

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			// Quotes in surrounding prose stay inert; string state only
			// matters inside a candidate region.
			if len(stack) > 0 {
				inString = true
			}
		case '{', '[':
			if len(stack) == 0 {
				start = i
			}
			stack = append(stack, c)
		case '}', ']':
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			if (c == '}' && open == '{') || (c == ']' && open == '[') {
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					regions = append(regions, region{start: start, end: i + 1, object: s[start] == '{'})
					start = -1
				}
			} else {
				// Mismatched closer: the open run is prose, not JSON.
				stack = stack[:0]
				inString = false
				start = -1
			}
		}
	}
	return regions
}

func isStructured(s string) bool {
	return len(s) > 0 && (s[0] == '{' || s[0] == '[')
}
