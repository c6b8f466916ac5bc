package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pmchat/pkg/knowledge"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"defaults", Config{Format: "text"}, false},
		{"yaml", Config{Format: "yaml", ShowKB: true}, false},
		{"both modes", Config{Format: "text", CLI: true, TUI: true}, true},
		{"bad format", Config{Format: "xml"}, true},
		{"show and message", Config{Format: "text", ShowKB: true, Message: "hi"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPrintKnowledgeBase(t *testing.T) {
	kb := knowledge.New()
	kb[knowledge.CategorySchedule]["status"] = "slipped two weeks"
	store := knowledge.NewMemoryStore(kb)

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, printKnowledgeBase(context.Background(), store, "text", &out))
		assert.Contains(t, out.String(), "schedule:\n  status: slipped two weeks")
	})

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, printKnowledgeBase(context.Background(), store, "json", &out))
		assert.Contains(t, out.String(), `"status": "slipped two weeks"`)
	})

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, printKnowledgeBase(context.Background(), store, "yaml", &out))
		assert.Contains(t, out.String(), "status: slipped two weeks")
	})
}
