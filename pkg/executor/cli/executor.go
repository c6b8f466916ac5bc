// Package cli provides a line-mode chat executor.
//
// Example usage:
//
//	provider, _ := openai.NewProvider(os.Getenv("OPENAI_API_KEY"))
//	assistant := agent.NewAssistant(provider)
//	processor := agent.NewProcessor(knowledge.NewFileStore(""), assistant, assistant)
//
//	executor := cli.NewExecutor(processor)
//	if err := executor.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/entrhq/pmchat/pkg/agent"
	"github.com/entrhq/pmchat/pkg/agent/slash"
	"github.com/entrhq/pmchat/pkg/logging"
)

// Session is what the executor drives: turns plus the slash command view
// of the processor. *agent.Processor implements it.
type Session interface {
	slash.Session
	Turn(ctx context.Context, message string) (*agent.TurnResult, error)
}

// Executor is a CLI-based executor that enables turn-by-turn conversation
// through terminal input/output.
type Executor struct {
	session Session
	handler *slash.Handler
	reader  *bufio.Reader
	writer  io.Writer
	log     *logging.Logger

	// Display options
	showUpdates bool
	banner      string
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithShowUpdates prints the facts merged into the knowledge base after
// each answer.
func WithShowUpdates(show bool) ExecutorOption {
	return func(e *Executor) {
		e.showUpdates = show
	}
}

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// WithReader sets a custom input reader (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.reader = bufio.NewReader(r)
	}
}

// WithLogger sets the executor's logger.
func WithLogger(l *logging.Logger) ExecutorOption {
	return func(e *Executor) {
		e.log = l
	}
}

// WithBanner replaces the first line printed on start.
func WithBanner(banner string) ExecutorOption {
	return func(e *Executor) {
		e.banner = banner
	}
}

// WithHandler sets the slash command handler.
func WithHandler(h *slash.Handler) ExecutorOption {
	return func(e *Executor) {
		e.handler = h
	}
}

// NewExecutor creates a new CLI executor for the given session.
func NewExecutor(session Session, opts ...ExecutorOption) *Executor {
	e := &Executor{
		session:     session,
		reader:      bufio.NewReader(os.Stdin),
		writer:      os.Stdout,
		showUpdates: true,
		banner:      "Project Assistant",
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

// Run starts the conversation loop. It returns nil when the user exits or
// input ends, and ctx.Err() if the context is canceled.
func (e *Executor) Run(ctx context.Context) error {
	fmt.Fprintln(e.writer, e.banner)
	fmt.Fprintln(e.writer, "Type your message and press Enter. Type /help for commands or 'exit' to end the conversation.")
	fmt.Fprintln(e.writer)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Fprint(e.writer, "You: ")
		input, err := e.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read input: %w", err)
		}
		eof := errors.Is(err, io.EOF)

		input = strings.TrimSpace(input)
		switch {
		case slash.IsExit(input):
			fmt.Fprintln(e.writer, "Goodbye.")
			return nil
		case input == "":
		case slash.ShouldIntercept(input):
			e.runCommand(ctx, input)
		default:
			e.runTurn(ctx, input)
		}

		if eof {
			fmt.Fprintln(e.writer)
			return nil
		}
	}
}

func (e *Executor) runCommand(ctx context.Context, input string) {
	cmd, _ := slash.Parse(input)
	out, err := e.handler.Execute(ctx, cmd)
	if err != nil {
		e.printError(err)
		return
	}
	fmt.Fprintln(e.writer, out)
	fmt.Fprintln(e.writer)
}

func (e *Executor) runTurn(ctx context.Context, input string) {
	result, err := e.session.Turn(ctx, input)
	if result != nil {
		fmt.Fprintf(e.writer, "AI: %s\n", result.Answer)
		e.handler.SetLastAnswer(result.Answer)
		if e.showUpdates && result.Applied.Len() > 0 {
			fmt.Fprintln(e.writer, formatApplied(result))
		}
	}
	if err != nil {
		e.log.Errorf("turn failed: %v", err)
		e.printError(err)
	}
	fmt.Fprintln(e.writer)
}

func (e *Executor) printError(err error) {
	fmt.Fprintf(e.writer, "Error: %v\n", err)
}

// formatApplied summarizes merged facts as "[updated risk.budget, schedule.status]".
func formatApplied(result *agent.TurnResult) string {
	var paths []string
	for category, entries := range result.Applied {
		for key := range entries {
			paths = append(paths, category+"."+key)
		}
	}
	sort.Strings(paths)
	return "[updated " + strings.Join(paths, ", ") + "]"
}
