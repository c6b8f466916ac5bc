// Package types holds the message and model types shared by the LLM
// provider layer and the turn processor.
package types

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // RoleSystem marks instructions for the model.
	RoleUser      MessageRole = "user"      // RoleUser marks text typed by the user.
	RoleAssistant MessageRole = "assistant" // RoleAssistant marks text produced by the model.
)

// Message is a single chat message sent to or received from an LLM.
type Message struct {
	Role    MessageRole
	Content string
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) *Message {
	return &Message{Role: RoleAssistant, Content: content}
}

// ModelInfo describes the model behind a provider.
type ModelInfo struct {
	Metadata          map[string]interface{}
	Provider          string
	Name              string
	MaxTokens         int
	SupportsStreaming bool
	SupportsJSONMode  bool
}
