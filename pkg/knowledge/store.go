package knowledge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFileName is the knowledge base file used when no path is given.
const DefaultFileName = "project_kb.json"

// Store persists a knowledge base.
type Store interface {
	// Load returns the persisted knowledge base, or an empty one with every
	// category present if nothing has been saved yet.
	Load(ctx context.Context) (KnowledgeBase, error)

	// Save replaces the persisted knowledge base with kb. Readers never
	// observe a partially written state.
	Save(ctx context.Context, kb KnowledgeBase) error
}

// FileStore implements Store using a single pretty-printed JSON file.
//
// It assumes one writer process. Within a process, calls are serialized.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed store. If path is empty it defaults to
// DefaultFileName in the current directory. The file is not touched until
// the first Load or Save.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFileName
	}
	return &FileStore{path: path}
}

// Path returns the file path of the store.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and normalizes the knowledge base file. A missing file yields
// New(); a file that exists but cannot be parsed is an error so that a bad
// hand edit is never silently replaced by an empty knowledge base.
func (s *FileStore) Load(_ context.Context) (KnowledgeBase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("knowledge: read %s: %w", s.path, err)
	}

	kb, err := decodeKnowledgeBase(data)
	if err != nil {
		return nil, fmt.Errorf("knowledge: decode %s: %w", s.path, err)
	}
	return kb, nil
}

// Save writes kb to a temporary file next to the target and renames it
// into place.
func (s *FileStore) Save(_ context.Context, kb KnowledgeBase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := kb.Clone()
	normalized.Normalize()
	data := append([]byte(normalized.Context()), '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("knowledge: create directory %s: %w", dir, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("knowledge: write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("knowledge: atomic rename %s: %w", s.path, err)
	}
	return nil
}

// MemoryStore is an in-process Store. The zero value is ready to use.
type MemoryStore struct {
	kb    KnowledgeBase
	saves int
	mu    sync.Mutex
}

// NewMemoryStore creates a store seeded with a copy of kb (nil for empty).
func NewMemoryStore(kb KnowledgeBase) *MemoryStore {
	s := &MemoryStore{}
	if kb != nil {
		s.kb = kb.Clone()
		s.kb.Normalize()
	}
	return s
}

// Load returns a copy of the stored knowledge base.
func (s *MemoryStore) Load(_ context.Context) (KnowledgeBase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kb == nil {
		return New(), nil
	}
	return s.kb.Clone(), nil
}

// Save stores a normalized copy of kb.
func (s *MemoryStore) Save(_ context.Context, kb KnowledgeBase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kb = kb.Clone()
	s.kb.Normalize()
	s.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
