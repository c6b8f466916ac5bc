package knowledge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/pmchat/pkg/llm/parser"
)

// ErrMalformedUpdate is returned by ParseUpdate when model output does not
// contain a usable object of category objects.
var ErrMalformedUpdate = errors.New("knowledge: malformed update")

// Update is a set of proposed facts keyed by category name. Names are not
// validated; Merge drops the ones it does not know.
type Update map[string]map[string]string

// Len returns the number of facts in u.
func (u Update) Len() int {
	n := 0
	for _, entries := range u {
		n += len(entries)
	}
	return n
}

// ParseUpdate extracts an Update from raw model output. The JSON object
// may be bare, fenced, or surrounded by prose, but output that is itself a
// JSON value other than an object (an array, say) is malformed. Known
// categories must hold an object (or null, meaning no change); unknown
// categories are skipped whatever their shape. Legacy category names are
// folded into their category, where keys under the current name win.
// Non-string leaf values are kept as their JSON text.
func ParseUpdate(raw string) (Update, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") || (json.Valid([]byte(trimmed)) && !strings.HasPrefix(trimmed, "{")) {
		return nil, fmt.Errorf("%w: top-level value is %s, not an object", ErrMalformedUpdate, kindOf([]byte(trimmed)))
	}

	payload, ok := parser.ExtractJSONObject(trimmed)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in output", ErrMalformedUpdate)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedUpdate, err)
	}

	u := make(Update, len(top))
	legacy := make(map[string]map[string]string)
	for name, value := range top {
		category, known := canonicalCategory(name)
		if !known {
			continue
		}
		entries, err := decodeEntries(value)
		if err != nil {
			return nil, fmt.Errorf("%w: category %q: %v", ErrMalformedUpdate, name, err)
		}
		if len(entries) == 0 {
			continue
		}
		if category != name {
			legacy[category] = entries
			continue
		}
		u[category] = entries
	}

	for category, entries := range legacy {
		if u[category] == nil {
			u[category] = make(map[string]string, len(entries))
		}
		for k, v := range entries {
			if _, exists := u[category][k]; !exists {
				u[category][k] = v
			}
		}
	}
	return u, nil
}

// decodeKnowledgeBase parses a persisted knowledge base file. Known
// categories must hold an object or null; unknown names are dropped.
func decodeKnowledgeBase(data []byte) (KnowledgeBase, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}

	kb := make(KnowledgeBase, len(top))
	for name, value := range top {
		if _, known := canonicalCategory(name); !known {
			continue
		}
		entries, err := decodeEntries(value)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		kb[name] = entries
	}
	kb.Normalize()
	return kb, nil
}

// decodeEntries parses one category object, stringifying its leaf values.
func decodeEntries(value json.RawMessage) (map[string]string, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]string{}, nil
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("expected an object, got %s", kindOf(trimmed))
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, err
	}

	entries := make(map[string]string, len(raw))
	for k, v := range raw {
		s, err := leafString(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		entries[k] = s
	}
	return entries, nil
}

// leafString returns a JSON string's value, or the compact JSON text of
// any other value.
func leafString(v json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func kindOf(v []byte) string {
	switch v[0] {
	case '[':
		return "an array"
	case '"':
		return "a string"
	case 't', 'f':
		return "a boolean"
	case 'n':
		return "null"
	default:
		return "a number"
	}
}
