// Package parser provides utilities for pulling structured content out of
// free-form LLM output.
package parser

import (
	"encoding/json"
	"strings"
)

const fence = "```"

// ExtractJSONObject returns the first JSON object found in s.
//
// Models asked for JSON still wrap it in Markdown fences or add a sentence
// before it. Three shapes are recognized, in order: the whole trimmed text
// is a valid object, the contents of the first fenced block, or the first
// balanced {...} span. Only the first shape is validated as JSON; callers
// still decode the others.
func ExtractJSONObject(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	if strings.HasPrefix(s, "{") && json.Valid([]byte(s)) {
		return s, true
	}

	if body, ok := fencedBlock(s); ok {
		if obj, ok := balancedObject(body); ok {
			return obj, true
		}
	}

	return balancedObject(s)
}

// fencedBlock returns the contents of the first ``` block, dropping an
// optional language tag on the opening line.
func fencedBlock(s string) (string, bool) {
	start := strings.Index(s, fence)
	if start == -1 {
		return "", false
	}
	rest := s[start+len(fence):]
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, fence)
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// balancedObject scans for the first '{' and returns the span up to its
// matching '}', ignoring braces inside JSON strings.
func balancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
