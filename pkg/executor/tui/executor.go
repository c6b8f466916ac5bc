// Package tui provides a terminal user interface executor: a chat
// transcript with a live knowledge base side panel.
//
// The TUI codebase is split into multiple files:
// - executor.go: Executor and program lifecycle
// - model.go: Model state and turn commands
// - update.go: Bubble Tea Update function and message handling
// - view.go: Bubble Tea View function and rendering
// - helpers.go: Formatting utilities
// - styles.go: Color schemes and styling
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/pmchat/pkg/agent/slash"
	"github.com/entrhq/pmchat/pkg/logging"
)

// Executor runs the interactive chat interface.
type Executor struct {
	session     Session
	handler     *slash.Handler
	log         *logging.Logger
	title       string
	kbPath      string
	programOpts []tea.ProgramOption
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithTitle sets the header text.
func WithTitle(title string) ExecutorOption {
	return func(e *Executor) {
		e.title = title
	}
}

// WithKnowledgePath shows path in the status bar.
func WithKnowledgePath(path string) ExecutorOption {
	return func(e *Executor) {
		e.kbPath = path
	}
}

// WithLogger sets the executor's logger.
func WithLogger(l *logging.Logger) ExecutorOption {
	return func(e *Executor) {
		e.log = l
	}
}

// WithHandler sets the slash command handler.
func WithHandler(h *slash.Handler) ExecutorOption {
	return func(e *Executor) {
		e.handler = h
	}
}

// WithProgramOptions passes extra options to the Bubble Tea program.
func WithProgramOptions(opts ...tea.ProgramOption) ExecutorOption {
	return func(e *Executor) {
		e.programOpts = append(e.programOpts, opts...)
	}
}

// NewExecutor creates a new TUI executor for the given session.
func NewExecutor(session Session, opts ...ExecutorOption) *Executor {
	e := &Executor{
		session: session,
		title:   "Project Assistant",
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.handler == nil {
		e.handler = slash.NewHandler(session)
	}
	if e.log == nil {
		e.log = logging.NewNopLogger()
	}
	return e
}

// Run starts the TUI and blocks until the user exits or ctx is canceled.
func (e *Executor) Run(ctx context.Context) error {
	m := newModel(ctx, e.session, e.handler, e.log)
	m.title = e.title
	m.kbPath = e.kbPath

	opts := append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}, e.programOpts...)

	e.log.Infof("TUI starting")
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		if ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
			return ctx.Err()
		}
		return fmt.Errorf("failed to run TUI program: %w", err)
	}
	return nil
}
