package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store provides persistence for configuration data.
type Store interface {
	// Load loads the configuration from disk
	Load() error

	// Save saves the configuration to disk
	Save() error

	// GetSection retrieves configuration data for a specific section
	GetSection(sectionID string) (map[string]any, error)

	// SetSection stores configuration data for a specific section
	SetSection(sectionID string, data map[string]any) error
}

// fileFormat is the on-disk layout of the config file.
type fileFormat struct {
	Version  string                    `json:"version"`
	Sections map[string]map[string]any `json:"sections"`
}

// FileStore implements Store using a JSON file.
type FileStore struct {
	path     string
	data     map[string]map[string]any
	version  string
	modified bool
	mu       sync.RWMutex
}

// DefaultPath returns ~/.pmchat/config.json.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".pmchat", "config.json"), nil
}

// NewFileStore creates a new file-based configuration store and loads it
// if the file exists. If path is empty, DefaultPath is used.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	store := &FileStore{
		path:    path,
		data:    make(map[string]map[string]any),
		version: "1.0",
	}

	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	return store, nil
}

// Load loads the configuration from disk. A missing file leaves the store
// empty.
func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.data = make(map[string]map[string]any)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg fileFormat
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}

	if cfg.Version != "" {
		s.version = cfg.Version
	}
	s.data = cfg.Sections
	if s.data == nil {
		s.data = make(map[string]map[string]any)
	}
	s.modified = false
	return nil
}

// Save writes the configuration through a temp file and an atomic rename.
func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	body, err := json.MarshalIndent(fileFormat{Version: s.version, Sections: s.data}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, append(body, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write temp config file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.modified = false
	return nil
}

// GetSection returns a copy of the section's data, or an empty map.
func (s *FileStore) GetSection(sectionID string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySection(s.data[sectionID]), nil
}

// SetSection stores a copy of data for the section.
func (s *FileStore) SetSection(sectionID string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sectionID] = copySection(data)
	s.modified = true
	return nil
}

// IsModified returns true if the store has unsaved changes.
func (s *FileStore) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// Path returns the file path of the store.
func (s *FileStore) Path() string {
	return s.path
}

func copySection(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
