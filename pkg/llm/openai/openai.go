// Package openai provides an OpenAI-compatible LLM provider implementation.
//
// Answers are streamed over raw SSE so that OpenAI-compatible gateways with
// slightly different event framing still work. JSON-mode completions go
// through the official openai-go SDK.
//
// Example usage:
//
//	provider, err := openai.NewProvider(
//	    os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o-mini"),
//	)
//	if err != nil {
//	    panic(err)
//	}
//
//	msg, err := provider.CompleteJSON(ctx, []*types.Message{
//	    types.NewSystemMessage("Reply with a JSON object."),
//	    types.NewUserMessage("List the project risks."),
//	})
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/entrhq/pmchat/pkg/llm"
	"github.com/entrhq/pmchat/pkg/types"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const (
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel matches the model the chatbot was first built against.
	DefaultModel = "gpt-3.5-turbo"
)

// Provider implements the LLM provider interface for OpenAI-compatible APIs.
type Provider struct {
	httpClient *http.Client
	client     openai.Client
	apiKey     string
	baseURL    string
	model      string
	modelInfo  *types.ModelInfo
}

// ProviderOption is a function that configures a Provider.
type ProviderOption func(*Provider)

// WithModel sets the model to use for completions.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		p.model = model
	}
}

// WithBaseURL sets a custom base URL for OpenAI-compatible APIs.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the HTTP client used for both streaming and SDK calls.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// NewProvider creates a new OpenAI provider with the given API key.
//
// If apiKey is empty, it will attempt to read from the OPENAI_API_KEY environment variable.
// If baseURL is not provided via WithBaseURL option, it will check OPENAI_BASE_URL environment variable.
func NewProvider(apiKey string, opts ...ProviderOption) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (provide via parameter or OPENAI_API_KEY environment variable)")
	}

	p := &Provider{
		model:      DefaultModel,
		apiKey:     apiKey,
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.baseURL == DefaultBaseURL {
		if envBaseURL := os.Getenv("OPENAI_BASE_URL"); envBaseURL != "" {
			p.baseURL = strings.TrimRight(envBaseURL, "/")
		}
	}

	// The SDK retries 429/5xx twice by default; turns are single-attempt.
	p.client = openai.NewClient(
		option.WithAPIKey(p.apiKey),
		option.WithBaseURL(p.baseURL+"/"),
		option.WithHTTPClient(p.httpClient),
		option.WithMaxRetries(0),
	)

	p.modelInfo = &types.ModelInfo{
		Metadata:          make(map[string]interface{}),
		Provider:          "openai",
		Name:              p.model,
		SupportsStreaming: true,
		SupportsJSONMode:  true,
		MaxTokens:         4096,
	}
	if p.baseURL != DefaultBaseURL {
		p.modelInfo.Metadata["base_url"] = p.baseURL
	}

	return p, nil
}

// CloneWithModel returns a shallow copy of p configured to use the given model.
// It implements llm.ModelCloner.
func (p *Provider) CloneWithModel(model string) llm.Provider {
	clone := *p
	clone.model = model
	if p.modelInfo != nil {
		mi := *p.modelInfo
		mi.Name = model
		clone.modelInfo = &mi
	}
	return &clone
}

// StreamCompletion sends messages to the chat completions endpoint and
// streams back response chunks.
func (p *Provider) StreamCompletion(ctx context.Context, messages []*types.Message) (<-chan *llm.StreamChunk, error) {
	resp, err := p.sendStreamRequest(ctx, messages)
	if err != nil {
		return nil, err
	}

	chunks := make(chan *llm.StreamChunk, 10)
	go p.processStreamResponse(ctx, resp, chunks)
	return chunks, nil
}

// sendStreamRequest creates and sends the HTTP request for streaming
func (p *Provider) sendStreamRequest(ctx context.Context, messages []*types.Message) (*http.Response, error) {
	reqBody := map[string]interface{}{
		"model":    p.model,
		"messages": convertToOpenAIMessages(messages),
		"stream":   true,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("API request failed with status %d (failed to read error body: %w)", resp.StatusCode, readErr)
		}
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return resp, nil
}

// processStreamResponse reads SSE lines and forwards content deltas.
func (p *Provider) processStreamResponse(ctx context.Context, resp *http.Response, chunks chan<- *llm.StreamChunk) {
	defer close(chunks)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	firstChunk := true

	for scanner.Scan() {
		line := scanner.Text()
		if !isDataLine(line) {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			p.send(ctx, &llm.StreamChunk{Finished: true}, chunks)
			return
		}

		chunk, ok := decodeSSEChunk(data, &firstChunk)
		if !ok {
			continue
		}
		if !p.send(ctx, chunk, chunks) {
			return
		}
		if chunk.Finished {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		chunks <- &llm.StreamChunk{Error: fmt.Errorf("stream read error: %w", err)}
	}
}

// isDataLine skips blank keep-alives and SSE comments.
func isDataLine(line string) bool {
	return line != "" && !strings.HasPrefix(line, ":") && strings.HasPrefix(line, "data:")
}

// decodeSSEChunk turns one SSE payload into a StreamChunk. Malformed or
// empty payloads are reported as !ok and skipped.
func decodeSSEChunk(data string, firstChunk *bool) (*llm.StreamChunk, bool) {
	var payload struct {
		Choices []struct {
			Delta struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"delta"`
			FinishReason *string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, false
	}
	if len(payload.Choices) == 0 {
		return nil, false
	}

	choice := payload.Choices[0]
	chunk := &llm.StreamChunk{Content: choice.Delta.Content}
	if *firstChunk && choice.Delta.Role != "" {
		chunk.Role = choice.Delta.Role
		*firstChunk = false
	}
	if choice.FinishReason != nil && *choice.FinishReason != "" {
		chunk.Finished = true
	}

	if chunk.Content == "" && chunk.Role == "" && !chunk.Finished {
		return nil, false
	}
	return chunk, true
}

// send delivers a chunk unless the context is done first.
func (p *Provider) send(ctx context.Context, chunk *llm.StreamChunk, chunks chan<- *llm.StreamChunk) bool {
	select {
	case chunks <- chunk:
		return true
	case <-ctx.Done():
		chunks <- &llm.StreamChunk{Error: ctx.Err()}
		return false
	}
}

// Complete sends messages and returns the accumulated streamed response.
func (p *Provider) Complete(ctx context.Context, messages []*types.Message) (*types.Message, error) {
	stream, err := p.StreamCompletion(ctx, messages)
	if err != nil {
		return nil, err
	}

	role, content, err := llm.Collect(stream)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = string(types.RoleAssistant)
	}

	return &types.Message{
		Role:    types.MessageRole(role),
		Content: content,
	}, nil
}

// CompleteJSON asks the model for a single JSON object using the API's
// json_object response format. It implements llm.JSONCompleter.
func (p *Provider) CompleteJSON(ctx context.Context, messages []*types.Message) (*types.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: convertToOpenAIMessages(messages),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai json completion: %w", err)
	}

	slog.DebugContext(ctx, "llm json completion finished",
		"model", p.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai json completion: no choices in response")
	}

	return &types.Message{
		Role:    types.RoleAssistant,
		Content: resp.Choices[0].Message.Content,
	}, nil
}

// GetModelInfo returns information about the model being used.
func (p *Provider) GetModelInfo() *types.ModelInfo {
	return p.modelInfo
}

// GetModel returns the model name being used.
func (p *Provider) GetModel() string {
	return p.model
}

// GetBaseURL returns the base URL being used.
func (p *Provider) GetBaseURL() string {
	return p.baseURL
}

// convertToOpenAIMessages converts our Message format to the SDK's
// ChatCompletionMessageParamUnion format.
func convertToOpenAIMessages(messages []*types.Message) []openai.ChatCompletionMessageParamUnion {
	openaiMessages := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case types.RoleSystem:
			openaiMessages = append(openaiMessages, openai.SystemMessage(msg.Content))
		case types.RoleAssistant:
			openaiMessages = append(openaiMessages, openai.AssistantMessage(msg.Content))
		default:
			openaiMessages = append(openaiMessages, openai.UserMessage(msg.Content))
		}
	}

	return openaiMessages
}
