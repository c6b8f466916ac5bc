package config

import (
	"fmt"
	"os"

	"github.com/entrhq/pmchat/pkg/knowledge"
	"github.com/entrhq/pmchat/pkg/llm/openai"
)

// Flags carries the command-line values that take part in resolution.
// Empty strings and negative History mean "not set".
type Flags struct {
	Model         string
	BaseURL       string
	APIKey        string
	KnowledgePath string
	History       int
}

// BuildProvider creates an LLM provider based on configuration precedence:
// CLI flags > Environment variables > Config file > Defaults
func BuildProvider(section *LLMSection, flags Flags, defaultModel string) (*openai.Provider, error) {
	finalModel := flags.Model
	finalBaseURL := flags.BaseURL
	finalAPIKey := flags.APIKey

	if finalAPIKey == "" {
		finalAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if finalBaseURL == "" {
		finalBaseURL = os.Getenv("OPENAI_BASE_URL")
	}

	if section != nil {
		if finalModel == "" {
			if m := section.GetModel(); m != "" {
				finalModel = m
			}
		}
		if finalBaseURL == "" {
			finalBaseURL = section.GetBaseURL()
		}
		if finalAPIKey == "" {
			finalAPIKey = section.GetAPIKey()
		}
	}

	if finalModel == "" {
		finalModel = defaultModel
	}

	if finalAPIKey == "" {
		return nil, fmt.Errorf("API key is required. Set OPENAI_API_KEY environment variable, use -api-key flag, or set llm.api_key in ~/.pmchat/config.json")
	}

	providerOpts := []openai.ProviderOption{
		openai.WithModel(finalModel),
	}
	if finalBaseURL != "" {
		providerOpts = append(providerOpts, openai.WithBaseURL(finalBaseURL))
	}

	provider, err := openai.NewProvider(finalAPIKey, providerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	return provider, nil
}

// ResolveKnowledgePath picks the knowledge base file: flag, then the
// PMCHAT_KB environment variable, then the config file, then the default.
func ResolveKnowledgePath(section *KnowledgeSection, flags Flags) string {
	if flags.KnowledgePath != "" {
		return flags.KnowledgePath
	}
	if env := os.Getenv("PMCHAT_KB"); env != "" {
		return env
	}
	if section != nil {
		if p := section.GetPath(); p != "" {
			return p
		}
	}
	return knowledge.DefaultFileName
}

// ResolveHistory picks the history length: flag if set, else config file.
func ResolveHistory(section *KnowledgeSection, flags Flags) int {
	if flags.History >= 0 {
		return flags.History
	}
	if section != nil {
		return section.GetHistory()
	}
	return 0
}
