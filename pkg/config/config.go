// Package config loads pmchat settings from ~/.pmchat/config.json and
// resolves them against command-line flags and environment variables.
package config

// Config is the loaded configuration file with its known sections.
type Config struct {
	Manager   *Manager
	LLM       *LLMSection
	Knowledge *KnowledgeSection
}

// Open loads the config file at path (DefaultPath if empty) and registers
// the default sections. A missing file yields defaults.
func Open(path string) (*Config, error) {
	store, err := NewFileStore(path)
	if err != nil {
		return nil, err
	}
	return newConfig(store)
}

func newConfig(store Store) (*Config, error) {
	cfg := &Config{
		Manager:   NewManager(store),
		LLM:       NewLLMSection(),
		Knowledge: NewKnowledgeSection(),
	}

	if err := cfg.Manager.RegisterSection(cfg.LLM); err != nil {
		return nil, err
	}
	if err := cfg.Manager.RegisterSection(cfg.Knowledge); err != nil {
		return nil, err
	}

	if err := cfg.Manager.LoadAll(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes every section back to the config file.
func (c *Config) Save() error {
	return c.Manager.SaveAll()
}
