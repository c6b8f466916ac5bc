package tui

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/pmchat/pkg/knowledge"
)

// getRandomLoadingMessage returns a random loading message to display while a turn runs
func getRandomLoadingMessage() string {
	messages := []string{
		"Thinking...",
		"Checking the knowledge base...",
		"Reviewing the project notes...",
		"Consulting the schedule...",
		"Weighing the risks...",
		"Updating the project record...",
		"Reading the stakeholder register...",
		"Formulating response...",
		"Connecting the dots...",
		"Counting the budget twice...",
	}
	return messages[rand.Intn(len(messages))] //nolint:gosec
}

// formatTokenCount formats a token count with K/M suffixes for readability
func formatTokenCount(count int) string {
	if count >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(count)/1000000)
	}
	if count >= 1000 {
		return fmt.Sprintf("%.1fK", float64(count)/1000)
	}
	return fmt.Sprintf("%d", count)
}

// formatEntry renders "label text" wrapped to width with only the label styled
func formatEntry(label, text string, style lipgloss.Style, width int) string {
	if width <= 0 {
		width = 80
	}
	wrapped := lipgloss.NewStyle().Width(width).Render(label + text)
	return strings.Replace(wrapped, label, style.Render(label), 1)
}

// renderPanel renders the knowledge base side panel. Keys in highlight
// (the last applied update) are colored.
func renderPanel(kb knowledge.KnowledgeBase, highlight knowledge.Update, width int) string {
	if kb == nil {
		return panelEmptyStyle.Render("loading...")
	}
	if width <= 0 {
		width = 30
	}

	var sb strings.Builder
	for _, c := range knowledge.Categories() {
		entries := kb[c]
		sb.WriteString(panelCategoryStyle.Render(c))
		sb.WriteString("\n")
		if len(entries) == 0 {
			sb.WriteString(panelEmptyStyle.Render("  (empty)"))
			sb.WriteString("\n")
			continue
		}
		for _, k := range sortedKeys(entries) {
			line := lipgloss.NewStyle().Width(width).Render(fmt.Sprintf("  %s: %s", k, entries[k]))
			if _, ok := highlight[c][k]; ok {
				line = panelHighlightStyle.Render(line)
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatApplied summarizes an update as "risk.budget_overrun, schedule.status"
func formatApplied(u knowledge.Update) string {
	var paths []string
	for _, c := range knowledge.Categories() {
		for _, k := range sortedKeys(u[c]) {
			paths = append(paths, c+"."+k)
		}
	}
	return strings.Join(paths, ", ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
