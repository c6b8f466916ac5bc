package knowledge

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Text renders kb as an indented outline, one category per block:
//
//	schedule:
//	  status: slipped two weeks
//
// Categories appear in canonical order and keys are sorted.
func (kb KnowledgeBase) Text() string {
	var sb strings.Builder
	for _, c := range kb.orderedCategories() {
		sb.WriteString(c + ":\n")
		for _, k := range sortedKeys(kb[c]) {
			fmt.Fprintf(&sb, "  %s: %s\n", k, kb[c][k])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// YAML renders kb as a YAML document with categories in canonical order.
func (kb KnowledgeBase) YAML() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, c := range kb.orderedCategories() {
		entries := &yaml.Node{Kind: yaml.MappingNode}
		if len(kb[c]) == 0 {
			entries.Style = yaml.FlowStyle
		}
		for _, k := range sortedKeys(kb[c]) {
			entries.Content = append(entries.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: kb[c][k]},
			)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c},
			entries,
		)
	}

	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("knowledge: render yaml: %w", err)
	}
	return out, nil
}

// Filter returns the facts whose "category.key" path matches pattern.
// A pattern without a dot selects whole categories, so "risk" and
// "sched*" work as expected. Categories with no match are omitted.
func (kb KnowledgeBase) Filter(pattern string) (KnowledgeBase, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return kb.Clone(), nil
	}
	if !strings.Contains(pattern, ".") {
		pattern += ".*"
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("knowledge: invalid pattern %q: %w", pattern, err)
	}

	out := make(KnowledgeBase)
	for c, entries := range kb {
		for k, v := range entries {
			if !g.Match(c + "." + k) {
				continue
			}
			if out[c] == nil {
				out[c] = make(map[string]string)
			}
			out[c][k] = v
		}
	}
	return out, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
