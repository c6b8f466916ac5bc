package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(tipsStyle.Render("Enter to send • Alt+Enter for newline • Ctrl+B toggles panel • /help for commands"))
	b.WriteString("\n\n")

	b.WriteString(m.renderBody())
	b.WriteString("\n")

	if m.busy {
		b.WriteString(m.spinner.View() + " " + tipsStyle.Render(m.loadingMessage))
		b.WriteString("\n")
	}

	b.WriteString(inputBoxStyle.Width(m.width - 4).Render(m.textarea.View()))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	return b.String()
}

// renderBody lays the transcript and the knowledge panel side by side
func (m *model) renderBody() string {
	pw := m.panelWidth()
	if pw == 0 {
		return m.viewport.View()
	}
	panel := panelBoxStyle.
		Width(pw - 2).
		Render(panelTitleStyle.Render("Knowledge Base") + "\n" + m.panel.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), " ", panel)
}

func (m *model) renderStatusBar() string {
	left := m.kbPath
	if left == "" {
		left = "in-memory knowledge base"
	}

	facts := 0
	if m.kb != nil {
		facts = m.kb.Len()
	}
	right := fmt.Sprintf("◆ Context: %s tokens | Facts: %d | Turns: %d",
		formatTokenCount(m.contextTokens), facts, m.turns)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return statusBarStyle.Render(left + strings.Repeat(" ", gap) + right)
}
