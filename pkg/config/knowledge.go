package config

import (
	"fmt"
	"sync"
)

const (
	// SectionIDKnowledge is the identifier for the knowledge base section
	SectionIDKnowledge = "knowledge"

	// MaxHistory caps how many previous exchanges may be sent with a question.
	MaxHistory = 20
)

// KnowledgeSection configures where the knowledge base lives and how much
// conversation history accompanies each question.
type KnowledgeSection struct {
	Path    string
	History int
	mu      sync.RWMutex
}

// NewKnowledgeSection creates a knowledge section with default settings.
func NewKnowledgeSection() *KnowledgeSection {
	return &KnowledgeSection{}
}

// ID returns the section identifier.
func (s *KnowledgeSection) ID() string {
	return SectionIDKnowledge
}

// Title returns the section title.
func (s *KnowledgeSection) Title() string {
	return "Knowledge Base"
}

// Description returns the section description.
func (s *KnowledgeSection) Description() string {
	return "path is the knowledge base JSON file (default project_kb.json in the working directory). history is the number of previous exchanges sent with each question (0 disables)."
}

// Data returns the current configuration data.
func (s *KnowledgeSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"path":    s.Path,
		"history": s.History,
	}
}

// SetData updates the configuration from the provided data. JSON numbers
// arrive as float64.
func (s *KnowledgeSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if path, ok := data["path"].(string); ok {
		s.Path = path
	}
	switch v := data["history"].(type) {
	case float64:
		s.History = int(v)
	case int:
		s.History = v
	case nil:
	default:
		return fmt.Errorf("history must be a number, got %T", v)
	}
	return nil
}

// Validate validates the current configuration.
func (s *KnowledgeSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.History < 0 || s.History > MaxHistory {
		return fmt.Errorf("history must be between 0 and %d, got %d", MaxHistory, s.History)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *KnowledgeSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Path = ""
	s.History = 0
}

// GetPath returns the configured knowledge base path, or "".
func (s *KnowledgeSection) GetPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Path
}

// GetHistory returns the configured history length.
func (s *KnowledgeSection) GetHistory() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.History
}
