// Package agent runs chat turns against a project knowledge base.
//
// A turn answers the user's message using the persisted knowledge base as
// context, asks a second model call for structured facts found in the
// exchange, merges them and saves the result:
//
//	store := knowledge.NewFileStore("project_kb.json")
//	assistant := agent.NewAssistant(provider)
//	p := agent.NewProcessor(store, assistant, assistant)
//	answer, err := p.Process(ctx, "Our schedule slipped two weeks")
//
// The answering and extraction capabilities are interfaces so either can
// be replaced independently.
package agent

import (
	"context"
	"errors"

	"github.com/entrhq/pmchat/pkg/knowledge"
)

var (
	// ErrPersist wraps a failure to save the knowledge base after a turn
	// that produced an answer. The answer is still returned alongside it.
	ErrPersist = errors.New("agent: failed to persist knowledge base")

	// ErrEmptyMessage is returned for a blank user message.
	ErrEmptyMessage = errors.New("agent: empty message")
)

// Answerer produces a reply to a user message given the knowledge base
// rendered as a context blob.
type Answerer interface {
	Answer(ctx context.Context, kbContext, message string) (string, error)
}

// HistoryAnswerer is an Answerer that can also take earlier exchanges of
// the conversation into account.
type HistoryAnswerer interface {
	Answerer
	AnswerWithHistory(ctx context.Context, history []Exchange, kbContext, message string) (string, error)
}

// Extractor proposes knowledge base updates for one exchange. It returns
// the raw model output; knowledge.ParseUpdate interprets it.
type Extractor interface {
	Extract(ctx context.Context, message, answer, kbContext string) (string, error)
}

// Exchange is one user message and the answer it received.
type Exchange struct {
	Message string
	Answer  string
}

// TurnResult describes a completed turn.
type TurnResult struct {
	// Answer is the reply shown to the user.
	Answer string

	// Applied holds the facts merged into the knowledge base. It is empty
	// when extraction failed or proposed nothing usable.
	Applied knowledge.Update

	// Changed reports whether the merge altered any value.
	Changed bool

	// KB is a snapshot of the knowledge base after the turn.
	KB knowledge.KnowledgeBase

	// ContextTokens is the token count of the context blob sent with the
	// question.
	ContextTokens int

	// ExtractionErr is set when extraction failed or its output was
	// malformed. The turn itself still succeeds.
	ExtractionErr error
}
