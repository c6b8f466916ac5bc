package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/entrhq/pmchat/pkg/agent"
	"github.com/entrhq/pmchat/pkg/agent/slash"
	"github.com/entrhq/pmchat/pkg/knowledge"
	"github.com/entrhq/pmchat/pkg/logging"
)

// Session is what the TUI drives. *agent.Processor implements it.
type Session interface {
	slash.Session
	Turn(ctx context.Context, message string) (*agent.TurnResult, error)
}

// model represents the state of the TUI application.
type model struct {
	// Bubble Tea components
	viewport viewport.Model // transcript
	panel    viewport.Model // knowledge base
	textarea textarea.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	// Turn processing
	ctx     context.Context
	session Session
	handler *slash.Handler
	log     *logging.Logger

	// Content buffers
	content *strings.Builder

	// Knowledge panel state
	kb          knowledge.KnowledgeBase
	lastApplied knowledge.Update
	showPanel   bool

	// Turn state
	busy           bool
	loadingMessage string
	contextTokens  int
	turns          int

	// Labels
	title  string
	kbPath string

	// Window dimensions
	width  int
	height int
	ready  bool
}

// turnDoneMsg carries the outcome of a turn run off the UI goroutine.
type turnDoneMsg struct {
	result *agent.TurnResult
	err    error
}

// commandDoneMsg carries the output of a slash command.
type commandDoneMsg struct {
	output string
	err    error
}

// snapshotMsg carries a freshly loaded knowledge base.
type snapshotMsg struct {
	kb  knowledge.KnowledgeBase
	err error
}

func newModel(ctx context.Context, session Session, handler *slash.Handler, log *logging.Logger) *model {
	ta := textarea.New()
	ta.Placeholder = "Ask about the project or share an update..."
	ta.Prompt = "> "
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(1)
	ta.MaxHeight = 6
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = headerStyle

	return &model{
		viewport:  viewport.New(80, 20),
		panel:     viewport.New(30, 20),
		textarea:  ta,
		spinner:   sp,
		ctx:       ctx,
		session:   session,
		handler:   handler,
		log:       log,
		content:   &strings.Builder{},
		showPanel: true,
		title:     "Project Assistant",
	}
}

// Init loads the knowledge base for the side panel.
func (m *model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.loadSnapshot())
}

func (m *model) loadSnapshot() tea.Cmd {
	return func() tea.Msg {
		kb, err := m.session.Snapshot(m.ctx)
		return snapshotMsg{kb: kb, err: err}
	}
}

// runTurn runs a turn in a tea.Cmd so the UI keeps redrawing.
func (m *model) runTurn(input string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.session.Turn(m.ctx, input)
		return turnDoneMsg{result: result, err: err}
	}
}

func (m *model) runCommand(cmd *slash.Command) tea.Cmd {
	return func() tea.Msg {
		out, err := m.handler.Execute(m.ctx, cmd)
		return commandDoneMsg{output: out, err: err}
	}
}
