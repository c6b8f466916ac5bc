// Package tokenizer counts tokens the way OpenAI chat models do, so the
// size of the knowledge-base context can be reported before it is sent.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is used by every current OpenAI chat model we target.
const DefaultEncoding = "cl100k_base"

// Tokenizer wraps a tiktoken encoding. It is safe for concurrent use.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
	mu  sync.Mutex
}

// New creates a tokenizer for DefaultEncoding.
func New() (*Tokenizer, error) {
	return NewWithEncoding(DefaultEncoding)
}

// NewWithEncoding creates a tokenizer for the named tiktoken encoding.
func NewWithEncoding(encoding string) (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %s: %w", encoding, err)
	}
	return &Tokenizer{enc: enc}, nil
}

// CountTokens returns the number of tokens in text. A nil Tokenizer falls
// back to Estimate.
func (t *Tokenizer) CountTokens(text string) int {
	if t == nil || t.enc == nil {
		return Estimate(text)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.enc.Encode(text, nil, nil))
}

// Estimate approximates a token count at four bytes per token, rounding up.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}
