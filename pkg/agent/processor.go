package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/pmchat/pkg/knowledge"
	"github.com/entrhq/pmchat/pkg/llm/tokenizer"
	"github.com/entrhq/pmchat/pkg/logging"
)

// Processor runs chat turns: answer, extract, merge, save.
// Turns are serialized; a Processor is safe for concurrent use.
type Processor struct {
	store     knowledge.Store
	answerer  Answerer
	extractor Extractor

	log       *logging.Logger
	tokenizer *tokenizer.Tokenizer

	// Conversation history, bounded by maxHistory exchanges
	maxHistory int
	history    []Exchange

	mu sync.Mutex
}

// ProcessorOption is a function that configures a Processor
type ProcessorOption func(*Processor)

// WithLogger sets the logger used for turn diagnostics
func WithLogger(l *logging.Logger) ProcessorOption {
	return func(p *Processor) {
		p.log = l
	}
}

// WithTokenizer sets the tokenizer used to measure the context blob
func WithTokenizer(t *tokenizer.Tokenizer) ProcessorOption {
	return func(p *Processor) {
		p.tokenizer = t
	}
}

// WithHistory keeps the last n exchanges and passes them to answerers that
// implement HistoryAnswerer. Zero disables history.
func WithHistory(n int) ProcessorOption {
	return func(p *Processor) {
		if n < 0 {
			n = 0
		}
		p.maxHistory = n
	}
}

// NewProcessor creates a Processor over store using the given capabilities.
func NewProcessor(store knowledge.Store, answerer Answerer, extractor Extractor, opts ...ProcessorOption) *Processor {
	p := &Processor{
		store:     store,
		answerer:  answerer,
		extractor: extractor,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.log == nil {
		p.log = logging.NewNopLogger()
	}
	if p.tokenizer == nil {
		// A nil tokenizer falls back to estimation
		if tok, err := tokenizer.New(); err == nil {
			p.tokenizer = tok
		}
	}

	return p
}

// Process runs one turn and returns the answer text. When the knowledge
// base cannot be saved the answer is returned together with an error
// wrapping ErrPersist.
func (p *Processor) Process(ctx context.Context, message string) (string, error) {
	result, err := p.Turn(ctx, message)
	if result == nil {
		return "", err
	}
	return result.Answer, err
}

// Turn runs one turn and reports what it did.
//
// A failed or malformed extraction does not fail the turn: the merge and
// save are skipped and TurnResult.ExtractionErr is set. A save failure
// returns the result together with an error wrapping ErrPersist.
func (p *Processor) Turn(ctx context.Context, message string) (*TurnResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()

	// Step 1: Load the knowledge base and render the context blob
	kb, err := p.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}
	kbContext := kb.Context()
	result := &TurnResult{
		ContextTokens: p.tokenizer.CountTokens(kbContext),
	}

	// Step 2: Answer
	answer, err := p.answer(ctx, kbContext, message)
	if err != nil {
		p.log.Errorf("answer failed: %v", err)
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	result.Answer = answer
	p.remember(message, answer)

	// Step 3: Extract. Failures here never block the answer.
	raw, err := p.extractor.Extract(ctx, message, answer, kbContext)
	if err != nil {
		p.log.Warnf("extraction failed, knowledge base unchanged: %v", err)
		result.ExtractionErr = err
		result.KB = kb
		return result, nil
	}

	update, err := knowledge.ParseUpdate(raw)
	if err != nil {
		p.log.Warnf("could not parse knowledge base updates: %v (output %q)", err, truncate(raw, 200))
		result.ExtractionErr = err
		result.KB = kb
		return result, nil
	}

	// Step 4: Merge
	before := kb.Clone()
	result.Applied = kb.Merge(update)
	result.Changed = !before.Equal(kb)
	result.KB = kb

	if dropped := update.Len() - result.Applied.Len(); dropped > 0 {
		p.log.Debugf("dropped %d facts in unknown categories", dropped)
	}

	// Step 5: Persist
	if err := p.store.Save(ctx, kb); err != nil {
		p.log.Errorf("save failed: %v", err)
		return result, fmt.Errorf("%w: %w", ErrPersist, err)
	}

	p.log.Infof("turn complete in %s: %d context tokens, %d facts applied, changed=%t",
		time.Since(start).Round(time.Millisecond), result.ContextTokens, result.Applied.Len(), result.Changed)
	return result, nil
}

func (p *Processor) answer(ctx context.Context, kbContext, message string) (string, error) {
	if p.maxHistory > 0 && len(p.history) > 0 {
		if ha, ok := p.answerer.(HistoryAnswerer); ok {
			history := make([]Exchange, len(p.history))
			copy(history, p.history)
			return ha.AnswerWithHistory(ctx, history, kbContext, message)
		}
	}
	return p.answerer.Answer(ctx, kbContext, message)
}

func (p *Processor) remember(message, answer string) {
	if p.maxHistory == 0 {
		return
	}
	p.history = append(p.history, Exchange{Message: message, Answer: answer})
	if over := len(p.history) - p.maxHistory; over > 0 {
		p.history = append([]Exchange(nil), p.history[over:]...)
	}
}

// History returns the remembered exchanges, oldest first.
func (p *Processor) History() []Exchange {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Exchange, len(p.history))
	copy(out, p.history)
	return out
}

// ClearHistory forgets all remembered exchanges.
func (p *Processor) ClearHistory() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = nil
}

// Snapshot loads the current knowledge base. It waits for any running
// turn to finish.
func (p *Processor) Snapshot(ctx context.Context) (knowledge.KnowledgeBase, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kb, err := p.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}
	return kb, nil
}

// IsPersistError reports whether err came from saving the knowledge base.
func IsPersistError(err error) bool {
	return errors.Is(err, ErrPersist)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
