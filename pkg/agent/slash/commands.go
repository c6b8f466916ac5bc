// Package slash implements the slash commands shared by the chat
// executors: viewing the knowledge base, copying answers and managing the
// conversation history.
package slash

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/entrhq/pmchat/pkg/agent"
	"github.com/entrhq/pmchat/pkg/knowledge"
)

// ErrNothingToCopy is returned by /copy before any answer was received.
var ErrNothingToCopy = errors.New("no answer to copy yet")

// Command is a parsed slash command.
type Command struct {
	Name string
	Arg  string
}

// Spec describes a registered command.
type Spec struct {
	Name        string
	Usage       string
	Description string
}

var registry = []Spec{
	{Name: "kb", Usage: "/kb [pattern]", Description: "Show the knowledge base, optionally filtered by a category.key glob"},
	{Name: "yaml", Usage: "/yaml [pattern]", Description: "Show the knowledge base as YAML"},
	{Name: "json", Usage: "/json [pattern]", Description: "Show the knowledge base as JSON"},
	{Name: "copy", Usage: "/copy", Description: "Copy the last answer to the clipboard"},
	{Name: "history", Usage: "/history", Description: "Show the exchanges sent along with each question"},
	{Name: "clear", Usage: "/clear", Description: "Forget the conversation history"},
	{Name: "help", Usage: "/help", Description: "List commands"},
}

// exitWords end a session when typed on their own.
var exitWords = []string{"exit", "quit", "bye"}

// Commands returns the registered commands in display order.
func Commands() []Spec {
	out := make([]Spec, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a registered command by name.
func Lookup(name string) (Spec, bool) {
	for _, s := range registry {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// Parse splits input of the form "/name rest of line". The argument keeps
// its inner spacing.
func Parse(input string) (*Command, bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return nil, false
	}
	trimmed = trimmed[1:]

	name, arg, _ := strings.Cut(trimmed, " ")
	return &Command{
		Name: strings.ToLower(name),
		Arg:  strings.TrimSpace(arg),
	}, true
}

// ShouldIntercept reports whether input is a slash command rather than a
// chat message.
func ShouldIntercept(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// IsExit reports whether input asks to end the session.
func IsExit(input string) bool {
	word := strings.ToLower(strings.TrimSpace(input))
	for _, w := range exitWords {
		if word == w {
			return true
		}
	}
	return false
}

// Session is the part of the turn processor the commands need.
type Session interface {
	Snapshot(ctx context.Context) (knowledge.KnowledgeBase, error)
	History() []agent.Exchange
	ClearHistory()
}

// Handler executes commands against a session.
type Handler struct {
	session    Session
	copyFn     func(string) error
	lastAnswer string
	mu         sync.Mutex
}

// HandlerOption is a function that configures a Handler
type HandlerOption func(*Handler)

// WithCopier replaces the system clipboard used by /copy.
func WithCopier(fn func(string) error) HandlerOption {
	return func(h *Handler) {
		h.copyFn = fn
	}
}

// NewHandler creates a handler for session.
func NewHandler(session Session, opts ...HandlerOption) *Handler {
	h := &Handler{
		session: session,
		copyFn:  clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetLastAnswer records the answer /copy will copy.
func (h *Handler) SetLastAnswer(answer string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastAnswer = answer
}

// Execute runs cmd and returns the text to show the user.
func (h *Handler) Execute(ctx context.Context, cmd *Command) (string, error) {
	switch cmd.Name {
	case "kb":
		return h.render(ctx, cmd.Arg, func(kb knowledge.KnowledgeBase) (string, error) {
			return strings.TrimRight(kb.Text(), "\n"), nil
		})
	case "yaml":
		return h.render(ctx, cmd.Arg, func(kb knowledge.KnowledgeBase) (string, error) {
			out, err := kb.YAML()
			return strings.TrimRight(string(out), "\n"), err
		})
	case "json":
		return h.render(ctx, cmd.Arg, func(kb knowledge.KnowledgeBase) (string, error) {
			return kb.Context(), nil
		})
	case "copy":
		return h.handleCopy()
	case "history":
		return h.handleHistory(), nil
	case "clear":
		h.session.ClearHistory()
		return "Conversation history cleared.", nil
	case "help":
		return Help(), nil
	default:
		return "", fmt.Errorf("unknown command /%s (type /help for a list)", cmd.Name)
	}
}

func (h *Handler) render(ctx context.Context, pattern string, format func(knowledge.KnowledgeBase) (string, error)) (string, error) {
	kb, err := h.session.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	if pattern != "" {
		kb, err = kb.Filter(pattern)
		if err != nil {
			return "", err
		}
		if kb.Len() == 0 {
			return fmt.Sprintf("No entries match %q.", pattern), nil
		}
	}
	return format(kb)
}

func (h *Handler) handleCopy() (string, error) {
	h.mu.Lock()
	answer := h.lastAnswer
	h.mu.Unlock()

	if answer == "" {
		return "", ErrNothingToCopy
	}
	if err := h.copyFn(answer); err != nil {
		return "", fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return "Copied last answer to clipboard.", nil
}

func (h *Handler) handleHistory() string {
	history := h.session.History()
	if len(history) == 0 {
		return "No conversation history (enable it with -history n)."
	}
	var sb strings.Builder
	for i, ex := range history {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. You: %s\n   AI: %s", i+1, ex.Message, ex.Answer)
	}
	return sb.String()
}

// Help lists the commands and exit words.
func Help() string {
	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, s := range registry {
		fmt.Fprintf(&sb, "  %-16s %s\n", s.Usage, s.Description)
	}
	fmt.Fprintf(&sb, "Type %s to leave.", strings.Join(exitWords, ", "))
	return sb.String()
}
