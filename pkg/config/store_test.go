package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileStore(t *testing.T) {
	t.Run("creates store with custom path", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")

		store, err := NewFileStore(configPath)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}

		if store.Path() != configPath {
			t.Errorf("Expected path %s, got %s", configPath, store.Path())
		}
		if store.IsModified() {
			t.Error("New store should not be modified")
		}
	})

	t.Run("creates store with default path when empty", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())

		store, err := NewFileStore("")
		if err != nil {
			t.Fatalf("NewFileStore with empty path failed: %v", err)
		}

		expected, _ := DefaultPath()
		if store.Path() != expected {
			t.Errorf("Expected default path %s, got %s", expected, store.Path())
		}
	})

	t.Run("loads existing config file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")

		config := map[string]any{
			"version": "1.0",
			"sections": map[string]map[string]any{
				"llm": {"model": "gpt-4o-mini"},
			},
		}
		data, _ := json.MarshalIndent(config, "", "  ")
		if err := os.WriteFile(configPath, data, 0o644); err != nil {
			t.Fatalf("Failed to write test config: %v", err)
		}

		store, err := NewFileStore(configPath)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}

		section, _ := store.GetSection("llm")
		if section["model"] != "gpt-4o-mini" {
			t.Errorf("Expected model=gpt-4o-mini, got %v", section["model"])
		}
	})

	t.Run("fails on invalid JSON", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(configPath, []byte("{invalid json}"), 0o644); err != nil {
			t.Fatalf("Failed to write invalid JSON: %v", err)
		}

		if _, err := NewFileStore(configPath); err == nil {
			t.Error("NewFileStore should fail for invalid JSON")
		}
	})
}

func TestFileStore_Save(t *testing.T) {
	t.Run("saves config to file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "nested", "config.json")
		store, _ := NewFileStore(configPath)

		if err := store.SetSection("knowledge", map[string]any{"path": "kb.json", "history": 2}); err != nil {
			t.Fatalf("SetSection failed: %v", err)
		}
		if !store.IsModified() {
			t.Error("Store should be modified after SetSection")
		}
		if err := store.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if store.IsModified() {
			t.Error("Store should not be modified after Save")
		}

		data, err := os.ReadFile(configPath)
		if err != nil {
			t.Fatalf("Failed to read saved config: %v", err)
		}

		var saved fileFormat
		if err := json.Unmarshal(data, &saved); err != nil {
			t.Fatalf("Saved config is not valid JSON: %v", err)
		}
		if saved.Version != "1.0" {
			t.Errorf("Expected version 1.0, got %q", saved.Version)
		}
		if saved.Sections["knowledge"]["path"] != "kb.json" {
			t.Errorf("Section not saved correctly: %v", saved.Sections)
		}
		if _, err := os.Stat(configPath + ".tmp"); !os.IsNotExist(err) {
			t.Error("Temp file should be renamed away")
		}
	})
}

func TestFileStore_SectionCopies(t *testing.T) {
	store, _ := NewFileStore(filepath.Join(t.TempDir(), "config.json"))

	input := map[string]any{"model": "a"}
	_ = store.SetSection("llm", input)
	input["model"] = "b"

	got, _ := store.GetSection("llm")
	if got["model"] != "a" {
		t.Error("SetSection should store a copy")
	}

	got["model"] = "c"
	again, _ := store.GetSection("llm")
	if again["model"] != "a" {
		t.Error("GetSection should return a copy")
	}

	missing, _ := store.GetSection("nope")
	if missing == nil || len(missing) != 0 {
		t.Error("Missing section should be an empty map")
	}
}
