// Package llm provides abstractions for LLM provider integration.
//
// Example usage:
//
//	provider, err := openai.NewProvider(
//	    os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o-mini"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stream, err := provider.StreamCompletion(ctx, []*types.Message{
//	    types.NewUserMessage("What is on the critical path?"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for chunk := range stream {
//	    if chunk.IsError() {
//	        log.Fatal(chunk.Error)
//	    }
//	    fmt.Print(chunk.Content)
//	}
package llm

import (
	"context"

	"github.com/entrhq/pmchat/pkg/types"
)

// ModelCloner is an optional interface that LLM providers can implement to
// support lightweight per-call model overrides without constructing a full
// second provider. The returned provider shares credentials and transport with
// the original but directs calls to the given model.
type ModelCloner interface {
	CloneWithModel(model string) Provider
}

// JSONCompleter is an optional interface for providers that can constrain
// a completion to a single JSON object.
type JSONCompleter interface {
	CompleteJSON(ctx context.Context, messages []*types.Message) (*types.Message, error)
}

// Provider defines the interface for LLM integrations.
//
// Providers handle API communication and hand back plain StreamChunks. The
// turn processor decides what a completion means; providers know nothing
// about the knowledge base.
type Provider interface {
	// StreamCompletion sends messages to the LLM and streams back response chunks.
	//
	// The channel is closed when streaming completes or an error occurs.
	// Callers should keep reading until it is closed. Returns an error only
	// if the request could not be started; stream-time errors arrive as
	// chunks with Error set.
	StreamCompletion(ctx context.Context, messages []*types.Message) (<-chan *StreamChunk, error)

	// Complete sends messages to the LLM and returns the full response.
	Complete(ctx context.Context, messages []*types.Message) (*types.Message, error)

	// GetModelInfo returns information about the LLM model being used.
	GetModelInfo() *types.ModelInfo

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string
}
