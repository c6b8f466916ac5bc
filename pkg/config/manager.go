package config

import (
	"fmt"
	"sync"
)

// Section is one named block of the config file.
type Section interface {
	ID() string
	Title() string
	Description() string
	Data() map[string]any
	SetData(data map[string]any) error
	Validate() error
	Reset()
}

// Manager ties registered sections to a Store.
type Manager struct {
	store    Store
	sections map[string]Section
	order    []string
	mu       sync.RWMutex
}

// NewManager creates a manager backed by store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		sections: make(map[string]Section),
	}
}

// RegisterSection adds a section. IDs must be unique.
func (m *Manager) RegisterSection(section Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := section.ID()
	if _, exists := m.sections[id]; exists {
		return fmt.Errorf("section %q already registered", id)
	}
	m.sections[id] = section
	m.order = append(m.order, id)
	return nil
}

// GetSection returns the section registered under id.
func (m *Manager) GetSection(id string) (Section, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sections[id]
	return s, ok
}

// GetSections returns all sections in registration order.
func (m *Manager) GetSections() []Section {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Section, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.sections[id])
	}
	return out
}

// LoadAll pushes stored data into every section and validates it.
func (m *Manager) LoadAll() error {
	for _, section := range m.GetSections() {
		data, err := m.store.GetSection(section.ID())
		if err != nil {
			return fmt.Errorf("failed to read section %s: %w", section.ID(), err)
		}
		if len(data) == 0 {
			continue
		}
		if err := section.SetData(data); err != nil {
			return fmt.Errorf("failed to apply section %s: %w", section.ID(), err)
		}
		if err := section.Validate(); err != nil {
			return fmt.Errorf("invalid section %s: %w", section.ID(), err)
		}
	}
	return nil
}

// SaveAll validates every section and writes them to the store.
func (m *Manager) SaveAll() error {
	for _, section := range m.GetSections() {
		if err := section.Validate(); err != nil {
			return fmt.Errorf("invalid section %s: %w", section.ID(), err)
		}
		if err := m.store.SetSection(section.ID(), section.Data()); err != nil {
			return fmt.Errorf("failed to store section %s: %w", section.ID(), err)
		}
	}
	return m.store.Save()
}

// ResetAll restores every section to its defaults.
func (m *Manager) ResetAll() {
	for _, section := range m.GetSections() {
		section.Reset()
	}
}

// Store returns the underlying store.
func (m *Manager) Store() Store {
	return m.store
}
