package config

import (
	"testing"

	"github.com/entrhq/pmchat/pkg/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProvider(t *testing.T) {
	const defaultModel = "gpt-3.5-turbo"

	tests := []struct {
		name          string
		flags         Flags
		envAPIKey     string
		envBaseURL    string
		fileModel     string
		fileBaseURL   string
		fileAPIKey    string
		expectError   bool
		expectedModel string
		expectedURL   string
	}{
		{
			name:          "flags take precedence over env and file",
			flags:         Flags{Model: "gpt-4", BaseURL: "https://cli.example.com", APIKey: "cli-key"},
			envAPIKey:     "env-key",
			envBaseURL:    "https://env.example.com",
			fileModel:     "gpt-4o",
			fileBaseURL:   "https://file.example.com",
			expectedModel: "gpt-4",
			expectedURL:   "https://cli.example.com",
		},
		{
			name:          "env used when flags empty",
			envAPIKey:     "env-key",
			envBaseURL:    "https://env.example.com",
			fileBaseURL:   "https://file.example.com",
			expectedModel: defaultModel,
			expectedURL:   "https://env.example.com",
		},
		{
			name:          "file used when flags and env empty",
			fileModel:     "gpt-4o-mini",
			fileBaseURL:   "https://file.example.com",
			fileAPIKey:    "file-key",
			expectedModel: "gpt-4o-mini",
			expectedURL:   "https://file.example.com",
		},
		{
			name:          "explicit flag equal to the default beats file model",
			flags:         Flags{Model: defaultModel, APIKey: "k"},
			fileModel:     "gpt-4o",
			expectedModel: defaultModel,
			expectedURL:   "https://api.openai.com/v1",
		},
		{
			name:        "error when no API key anywhere",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", tt.envAPIKey)
			t.Setenv("OPENAI_BASE_URL", tt.envBaseURL)

			section := NewLLMSection()
			section.Model = tt.fileModel
			section.BaseURL = tt.fileBaseURL
			section.APIKey = tt.fileAPIKey

			provider, err := BuildProvider(section, tt.flags, defaultModel)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedModel, provider.GetModel())
			assert.Equal(t, tt.expectedURL, provider.GetBaseURL())
		})
	}
}

func TestResolveKnowledgePath(t *testing.T) {
	section := NewKnowledgeSection()
	section.Path = "from-file.json"

	t.Setenv("PMCHAT_KB", "")
	assert.Equal(t, "from-flag.json", ResolveKnowledgePath(section, Flags{KnowledgePath: "from-flag.json"}))
	assert.Equal(t, "from-file.json", ResolveKnowledgePath(section, Flags{}))
	assert.Equal(t, knowledge.DefaultFileName, ResolveKnowledgePath(NewKnowledgeSection(), Flags{}))

	t.Setenv("PMCHAT_KB", "from-env.json")
	assert.Equal(t, "from-env.json", ResolveKnowledgePath(section, Flags{}))
	assert.Equal(t, "from-flag.json", ResolveKnowledgePath(section, Flags{KnowledgePath: "from-flag.json"}))
}

func TestResolveHistory(t *testing.T) {
	section := NewKnowledgeSection()
	section.History = 5

	assert.Equal(t, 2, ResolveHistory(section, Flags{History: 2}))
	assert.Equal(t, 0, ResolveHistory(section, Flags{History: 0}))
	assert.Equal(t, 5, ResolveHistory(section, Flags{History: -1}))
	assert.Equal(t, 0, ResolveHistory(nil, Flags{History: -1}))
}
