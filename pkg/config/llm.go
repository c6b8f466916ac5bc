package config

import (
	"sync"
)

const (
	// SectionIDLLM is the identifier for the LLM settings section
	SectionIDLLM = "llm"
)

// LLMSection manages LLM provider configuration settings.
type LLMSection struct {
	Model           string
	BaseURL         string
	APIKey          string
	ExtractionModel string // optional; if empty, knowledge extraction uses Model
	mu              sync.RWMutex
}

// NewLLMSection creates a new LLM section with default settings.
func NewLLMSection() *LLMSection {
	return &LLMSection{}
}

// ID returns the section identifier.
func (s *LLMSection) ID() string {
	return SectionIDLLM
}

// Title returns the section title.
func (s *LLMSection) Title() string {
	return "LLM Settings"
}

// Description returns the section description.
func (s *LLMSection) Description() string {
	return "Configure the OpenAI-compatible provider. extraction_model is optional; if set, knowledge extraction uses it instead of the main model."
}

// Data returns the current configuration data.
func (s *LLMSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"model":            s.Model,
		"base_url":         s.BaseURL,
		"api_key":          s.APIKey,
		"extraction_model": s.ExtractionModel,
	}
}

// SetData updates the configuration from the provided data.
func (s *LLMSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if model, ok := data["model"].(string); ok {
		s.Model = model
	}
	if baseURL, ok := data["base_url"].(string); ok {
		s.BaseURL = baseURL
	}
	if apiKey, ok := data["api_key"].(string); ok {
		s.APIKey = apiKey
	}
	if extractionModel, ok := data["extraction_model"].(string); ok {
		s.ExtractionModel = extractionModel
	}
	return nil
}

// Validate validates the current configuration.
// Everything is optional here; a missing API key is reported when the
// provider is built.
func (s *LLMSection) Validate() error {
	return nil
}

// Reset resets the section to default configuration.
func (s *LLMSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Model = ""
	s.BaseURL = ""
	s.APIKey = ""
	s.ExtractionModel = ""
}

// GetModel returns the configured model name.
func (s *LLMSection) GetModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Model
}

// GetBaseURL returns the configured base URL.
func (s *LLMSection) GetBaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.BaseURL
}

// GetAPIKey returns the configured API key.
func (s *LLMSection) GetAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.APIKey
}

// GetExtractionModel returns the extraction model override, or "".
func (s *LLMSection) GetExtractionModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ExtractionModel
}
