package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/entrhq/pmchat/pkg/llm"
	"github.com/entrhq/pmchat/pkg/types"
)

// Assistant implements Answerer, HistoryAnswerer and Extractor on top of an
// LLM provider.
type Assistant struct {
	provider  llm.Provider
	extractor llm.Provider
}

// AssistantOption is a function that configures an Assistant
type AssistantOption func(*Assistant)

// WithExtractionModel directs extraction calls to a different model. It
// has no effect unless the provider implements llm.ModelCloner.
func WithExtractionModel(model string) AssistantOption {
	return func(a *Assistant) {
		if model == "" || model == a.provider.GetModel() {
			return
		}
		if cloner, ok := a.provider.(llm.ModelCloner); ok {
			a.extractor = cloner.CloneWithModel(model)
		}
	}
}

// NewAssistant creates an Assistant backed by provider.
func NewAssistant(provider llm.Provider, opts ...AssistantOption) *Assistant {
	a := &Assistant{
		provider:  provider,
		extractor: provider,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Answer asks the model to answer message using the knowledge base.
func (a *Assistant) Answer(ctx context.Context, kbContext, message string) (string, error) {
	return a.AnswerWithHistory(ctx, nil, kbContext, message)
}

// AnswerWithHistory is Answer with earlier exchanges placed between the
// system prompt and the question.
func (a *Assistant) AnswerWithHistory(ctx context.Context, history []Exchange, kbContext, message string) (string, error) {
	messages := make([]*types.Message, 0, 2+2*len(history))
	messages = append(messages, types.NewSystemMessage(AnswerSystemPrompt))
	for _, ex := range history {
		messages = append(messages,
			types.NewUserMessage(ex.Message),
			types.NewAssistantMessage(ex.Answer),
		)
	}
	messages = append(messages, types.NewUserMessage(answerInput(kbContext, message)))

	stream, err := a.provider.StreamCompletion(ctx, messages)
	if err != nil {
		return "", err
	}
	_, content, err := llm.Collect(stream)
	if err != nil {
		return "", err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("model %s returned an empty answer", a.provider.GetModel())
	}
	return content, nil
}

// Extract asks the model for knowledge base updates as JSON. JSON mode is
// used when the provider supports it.
func (a *Assistant) Extract(ctx context.Context, message, answer, kbContext string) (string, error) {
	messages := []*types.Message{
		types.NewSystemMessage(ExtractSystemPrompt),
		types.NewUserMessage(extractInput(message, answer, kbContext)),
	}

	var (
		resp *types.Message
		err  error
	)
	if jc, ok := a.extractor.(llm.JSONCompleter); ok {
		resp, err = jc.CompleteJSON(ctx, messages)
	} else {
		resp, err = a.extractor.Complete(ctx, messages)
	}
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Model returns the answering model name.
func (a *Assistant) Model() string {
	return a.provider.GetModel()
}

// ExtractionModel returns the extraction model name.
func (a *Assistant) ExtractionModel() string {
	return a.extractor.GetModel()
}
