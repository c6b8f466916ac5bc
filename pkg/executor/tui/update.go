package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/pmchat/pkg/agent"
	"github.com/entrhq/pmchat/pkg/agent/slash"
)

// minPanelWidth is the narrowest terminal that still shows the side panel.
const minPanelWidth = 70

// Update handles all state updates for the TUI model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case turnDoneMsg:
		return m.handleTurnDone(msg)
	case commandDoneMsg:
		return m.handleCommandDone(msg)
	case snapshotMsg:
		return m.handleSnapshot(msg)
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// handleKeyPress routes key presses. Enter is handled here so the textarea
// never sees it.
func (m *model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyCtrlB:
		m.showPanel = !m.showPanel
		m.recalculateLayout()
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyEnter:
		if msg.Alt {
			m.textarea.InsertString("\n")
			m.updateTextAreaHeight()
			return m, nil
		}
		return m.handleEnter()
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.updateTextAreaHeight()
	return m, cmd
}

// handleEnter sends the input as a message or slash command. Input is
// refused while a turn is running.
func (m *model) handleEnter() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return m, nil
	}
	if slash.IsExit(input) {
		return m, tea.Quit
	}

	m.textarea.Reset()
	m.updateTextAreaHeight()

	if cmd, ok := slash.Parse(input); ok {
		m.appendBlock(commandStyle.Render(input))
		return m, m.runCommand(cmd)
	}

	m.appendBlock(formatEntry("You: ", input, userStyle, m.viewport.Width))
	m.busy = true
	m.loadingMessage = getRandomLoadingMessage()
	m.recalculateLayout()

	return m, tea.Batch(m.spinner.Tick, m.runTurn(input))
}

func (m *model) handleTurnDone(msg turnDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	var cmd tea.Cmd

	if r := msg.result; r != nil {
		m.turns++
		m.contextTokens = r.ContextTokens
		m.handler.SetLastAnswer(r.Answer)
		m.appendBlock(assistantStyle.Render("AI:") + "\n" + m.renderMarkdown(r.Answer))

		if r.KB != nil {
			m.kb = r.KB
		}
		m.lastApplied = r.Applied
		if r.Applied.Len() > 0 {
			m.appendBlock(updateStyle.Render("Knowledge base updated: " + formatApplied(r.Applied)))
		}
	}

	if msg.err != nil {
		m.log.Errorf("turn failed: %v", msg.err)
		m.appendBlock(errorStyle.Render("Error: " + msg.err.Error()))
		if agent.IsPersistError(msg.err) {
			// Show what is actually on disk
			cmd = m.loadSnapshot()
		}
	}

	m.recalculateLayout()
	return m, cmd
}

func (m *model) handleCommandDone(msg commandDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.appendBlock(errorStyle.Render("Error: " + msg.err.Error()))
	} else {
		m.appendBlock(msg.output)
	}
	m.recalculateLayout()
	return m, nil
}

func (m *model) handleSnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Warnf("failed to load knowledge base: %v", msg.err)
		m.appendBlock(errorStyle.Render("Error: " + msg.err.Error()))
	} else {
		m.kb = msg.kb
	}
	m.recalculateLayout()
	return m, nil
}

// calculateBodyHeight computes the height shared by the transcript and the panel
func (m *model) calculateBodyHeight() int {
	headerHeight := 3                      // title + tips + blank line
	inputHeight := m.textarea.Height() + 2 // textarea height + border
	statusBarHeight := 1
	loadingHeight := 0
	if m.busy {
		loadingHeight = 1
	}

	h := m.height - headerHeight - inputHeight - statusBarHeight - loadingHeight
	if h < 5 {
		h = 5
	}
	return h
}

// panelWidth returns the total width of the side panel, or 0 when hidden.
func (m *model) panelWidth() int {
	if !m.showPanel || m.width < minPanelWidth {
		return 0
	}
	return m.width / 3
}

func (m *model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.textarea.SetWidth(m.width - 6)
	m.ready = true
	m.recalculateLayout()
	return m, nil
}

// recalculateLayout sizes both viewports and refreshes their content
func (m *model) recalculateLayout() {
	bodyHeight := m.calculateBodyHeight()
	panelWidth := m.panelWidth()

	transcriptWidth := m.width - panelWidth - 1
	if transcriptWidth < 20 {
		transcriptWidth = 20
	}
	if transcriptWidth != m.viewport.Width || m.renderer == nil {
		m.renderer = newRenderer(transcriptWidth - 2)
	}
	m.viewport.Width = transcriptWidth
	m.viewport.Height = bodyHeight
	m.viewport.SetContent(m.content.String())
	m.viewport.GotoBottom()

	if panelWidth > 0 {
		m.panel.Width = panelWidth - 4 // border + padding
		m.panel.Height = bodyHeight - 3
		m.panel.SetContent(renderPanel(m.kb, m.lastApplied, m.panel.Width))
	}
}

// updateTextAreaHeight grows the textarea with its content up to MaxHeight
func (m *model) updateTextAreaHeight() {
	lines := strings.Count(m.textarea.Value(), "\n") + 1
	if lines > m.textarea.MaxHeight {
		lines = m.textarea.MaxHeight
	}
	if lines != m.textarea.Height() {
		m.textarea.SetHeight(lines)
		m.recalculateLayout()
	}
}

func (m *model) appendBlock(s string) {
	m.content.WriteString(strings.TrimRight(s, "\n"))
	m.content.WriteString("\n\n")
	m.viewport.SetContent(m.content.String())
	m.viewport.GotoBottom()
}

// renderMarkdown renders an answer with glamour, falling back to plain
// wrapped text.
func (m *model) renderMarkdown(text string) string {
	if m.renderer != nil {
		if out, err := m.renderer.Render(text); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return lipgloss.NewStyle().Width(m.viewport.Width).Render(text)
}

func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}
