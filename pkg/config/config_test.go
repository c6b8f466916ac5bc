package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// mockStore is a test implementation of the Store interface
type mockStore struct {
	sections map[string]map[string]any
	saveErr  error
	saved    int
}

func newMockStore() *mockStore {
	return &mockStore{sections: make(map[string]map[string]any)}
}

func (m *mockStore) Load() error { return nil }

func (m *mockStore) Save() error {
	m.saved++
	return m.saveErr
}

func (m *mockStore) GetSection(sectionID string) (map[string]any, error) {
	if data, ok := m.sections[sectionID]; ok {
		return data, nil
	}
	return map[string]any{}, nil
}

func (m *mockStore) SetSection(sectionID string, data map[string]any) error {
	m.sections[sectionID] = data
	return nil
}

func TestManager_RegisterSection(t *testing.T) {
	manager := NewManager(newMockStore())

	if err := manager.RegisterSection(NewLLMSection()); err != nil {
		t.Fatalf("RegisterSection failed: %v", err)
	}
	if err := manager.RegisterSection(NewLLMSection()); err == nil {
		t.Error("Duplicate section should be rejected")
	}
	if err := manager.RegisterSection(NewKnowledgeSection()); err != nil {
		t.Fatalf("RegisterSection failed: %v", err)
	}

	sections := manager.GetSections()
	if len(sections) != 2 || sections[0].ID() != SectionIDLLM || sections[1].ID() != SectionIDKnowledge {
		t.Errorf("Sections not in registration order: %v", sections)
	}
}

func TestManager_LoadAll(t *testing.T) {
	t.Run("applies stored data", func(t *testing.T) {
		store := newMockStore()
		store.sections[SectionIDKnowledge] = map[string]any{"path": "/tmp/kb.json", "history": float64(3)}

		cfg, err := newConfig(store)
		if err != nil {
			t.Fatalf("newConfig failed: %v", err)
		}
		if cfg.Knowledge.GetPath() != "/tmp/kb.json" || cfg.Knowledge.GetHistory() != 3 {
			t.Errorf("Knowledge section not loaded: %+v", cfg.Knowledge.Data())
		}
	})

	t.Run("rejects invalid data", func(t *testing.T) {
		store := newMockStore()
		store.sections[SectionIDKnowledge] = map[string]any{"history": float64(MaxHistory + 1)}

		if _, err := newConfig(store); err == nil {
			t.Error("Expected validation error")
		}
	})

	t.Run("rejects wrong types", func(t *testing.T) {
		store := newMockStore()
		store.sections[SectionIDKnowledge] = map[string]any{"history": "lots"}

		if _, err := newConfig(store); err == nil {
			t.Error("Expected type error")
		}
	})
}

func TestManager_SaveAll(t *testing.T) {
	store := newMockStore()
	cfg, err := newConfig(store)
	if err != nil {
		t.Fatalf("newConfig failed: %v", err)
	}

	cfg.LLM.Model = "gpt-4o"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if store.saved != 1 {
		t.Errorf("Expected one store save, got %d", store.saved)
	}
	if store.sections[SectionIDLLM]["model"] != "gpt-4o" {
		t.Errorf("LLM section not written: %v", store.sections[SectionIDLLM])
	}

	store.saveErr = errors.New("disk full")
	if err := cfg.Save(); err == nil {
		t.Error("Expected store error to propagate")
	}
}

func TestManager_ResetAll(t *testing.T) {
	cfg, _ := newConfig(newMockStore())
	cfg.LLM.Model = "x"
	cfg.Knowledge.History = 4

	cfg.Manager.ResetAll()

	if cfg.LLM.GetModel() != "" || cfg.Knowledge.GetHistory() != 0 {
		t.Error("ResetAll should restore defaults")
	}
}

func TestOpen(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	content := `{"version": "1.0", "sections": {"llm": {"model": "gpt-4o", "extraction_model": "gpt-4o-mini"}}}`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Open(configPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if cfg.LLM.GetModel() != "gpt-4o" || cfg.LLM.GetExtractionModel() != "gpt-4o-mini" {
		t.Errorf("LLM section not loaded: %v", cfg.LLM.Data())
	}

	cfg.Knowledge.Path = "elsewhere.json"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reopened, err := Open(configPath)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	if reopened.Knowledge.GetPath() != "elsewhere.json" {
		t.Error("Saved knowledge path not persisted")
	}
	if reopened.LLM.GetModel() != "gpt-4o" {
		t.Error("Existing sections should survive a save")
	}
}
