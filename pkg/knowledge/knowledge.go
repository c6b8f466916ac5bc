// Package knowledge implements the project knowledge base: a fixed set of
// project-management categories, each holding free-form key/value facts.
//
// A KnowledgeBase is loaded from a Store at the start of a turn, updated
// with facts the model extracted from the exchange, and written back whole.
package knowledge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Category names. The set is closed: nothing else is ever admitted as a
// top-level key.
const (
	CategoryOverview       = "overview"
	CategoryScope          = "scope"
	CategorySchedule       = "schedule"
	CategoryCost           = "cost"
	CategoryQuality        = "quality"
	CategoryResource       = "resource"
	CategoryCommunications = "communications"
	CategoryRisk           = "risk"
	CategoryProcurement    = "procurement"
	CategoryStakeholder    = "stakeholder"
)

// legacyAliases maps names written by earlier versions of the chatbot to
// their current category.
var legacyAliases = map[string]string{
	"project_overview": CategoryOverview,
}

var categories = []string{
	CategoryOverview,
	CategoryScope,
	CategorySchedule,
	CategoryCost,
	CategoryQuality,
	CategoryResource,
	CategoryCommunications,
	CategoryRisk,
	CategoryProcurement,
	CategoryStakeholder,
}

// Categories returns the category names in canonical order.
func Categories() []string {
	return slices.Clone(categories)
}

// IsCategory reports whether name is one of the fixed categories.
func IsCategory(name string) bool {
	return slices.Contains(categories, name)
}

// canonicalCategory resolves name, including legacy aliases, to a category.
func canonicalCategory(name string) (string, bool) {
	if IsCategory(name) {
		return name, true
	}
	if alias, ok := legacyAliases[name]; ok {
		return alias, true
	}
	return "", false
}

// KnowledgeBase maps each category to its key/value facts.
type KnowledgeBase map[string]map[string]string

// New returns a knowledge base with every category present and empty.
func New() KnowledgeBase {
	kb := make(KnowledgeBase, len(categories))
	for _, c := range categories {
		kb[c] = make(map[string]string)
	}
	return kb
}

// Normalize makes kb hold exactly the fixed categories: missing ones are
// created empty, legacy names are folded into their category without
// overwriting keys already present there, and unknown names are dropped.
func (kb KnowledgeBase) Normalize() {
	for name, entries := range kb {
		if IsCategory(name) {
			continue
		}
		delete(kb, name)
		target, ok := legacyAliases[name]
		if !ok {
			continue
		}
		if kb[target] == nil {
			kb[target] = make(map[string]string, len(entries))
		}
		for k, v := range entries {
			if _, exists := kb[target][k]; !exists {
				kb[target][k] = v
			}
		}
	}
	for _, c := range categories {
		if kb[c] == nil {
			kb[c] = make(map[string]string)
		}
	}
}

// Clone returns a deep copy of kb.
func (kb KnowledgeBase) Clone() KnowledgeBase {
	out := make(KnowledgeBase, len(kb))
	for c, entries := range kb {
		out[c] = maps.Clone(entries)
		if out[c] == nil {
			out[c] = make(map[string]string)
		}
	}
	return out
}

// Equal reports whether kb and other hold the same facts. Absent and empty
// categories compare equal.
func (kb KnowledgeBase) Equal(other KnowledgeBase) bool {
	names := make(map[string]struct{}, len(kb)+len(other))
	for c := range kb {
		names[c] = struct{}{}
	}
	for c := range other {
		names[c] = struct{}{}
	}
	for c := range names {
		if !maps.Equal(kb[c], other[c]) {
			return false
		}
	}
	return true
}

// Len returns the number of facts across all categories.
func (kb KnowledgeBase) Len() int {
	n := 0
	for _, entries := range kb {
		n += len(entries)
	}
	return n
}

// Merge applies u to kb in place. For every known category each key in
// the update overwrites the stored value; unknown categories are ignored.
// Legacy names are applied before current ones, so a key given under both
// takes the current name's value. The returned Update holds exactly what
// was applied.
func (kb KnowledgeBase) Merge(u Update) Update {
	applied := make(Update)
	apply := func(name string, entries map[string]string) {
		category, ok := canonicalCategory(name)
		if !ok || len(entries) == 0 {
			return
		}
		if kb[category] == nil {
			kb[category] = make(map[string]string, len(entries))
		}
		if applied[category] == nil {
			applied[category] = make(map[string]string, len(entries))
		}
		for k, v := range entries {
			kb[category][k] = v
			applied[category][k] = v
		}
	}

	for name, entries := range u {
		if !IsCategory(name) {
			apply(name, entries)
		}
	}
	for name, entries := range u {
		if IsCategory(name) {
			apply(name, entries)
		}
	}
	return applied
}

// MarshalJSON renders kb as an object with categories in canonical order
// and keys sorted within each category.
func (kb KnowledgeBase) MarshalJSON() ([]byte, error) {
	return kb.encode("", "")
}

// Context renders kb the way it is shown to the model and written to disk:
// two-space indented JSON, categories in canonical order.
func (kb KnowledgeBase) Context() string {
	// Encoding string maps cannot fail.
	b, _ := kb.encode("", "  ")
	return string(b)
}

func (kb KnowledgeBase) encode(prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	for _, c := range kb.orderedCategories() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if indent != "" {
			buf.WriteString("\n" + prefix + indent)
		}

		name, err := encodeJSON(c, "", "")
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if indent != "" {
			buf.WriteByte(' ')
		}

		entries := kb[c]
		if entries == nil {
			entries = map[string]string{}
		}
		body, err := encodeJSON(entries, prefix+indent, indent)
		if err != nil {
			return nil, fmt.Errorf("encode category %s: %w", c, err)
		}
		buf.Write(body)
	}

	if indent != "" && !first {
		buf.WriteString("\n" + prefix)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// orderedCategories lists the categories present in kb, known ones first
// in canonical order.
func (kb KnowledgeBase) orderedCategories() []string {
	out := make([]string, 0, len(kb))
	for _, c := range categories {
		if _, ok := kb[c]; ok {
			out = append(out, c)
		}
	}
	var extra []string
	for c := range kb {
		if !IsCategory(c) {
			extra = append(extra, c)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

// encodeJSON marshals v without HTML escaping so that stored text stays
// readable.
func encodeJSON(v any, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
