// Package agent routes pipeline roles to model providers. Roles (extractor,
// summarizer) are configured in YAML so a deployment can point each role at
// a different backend without a rebuild.
package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"financial_analyst/pkg/core/llm"
)

// Config is the provider routing table.
type Config struct {
	ActiveProvider string                `yaml:"active_provider"`
	Roles          map[string]RoleConfig `yaml:"roles"`
}

// RoleConfig optionally overrides the provider and model for one role.
type RoleConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// DefaultConfig routes everything to Gemini.
func DefaultConfig() Config {
	return Config{ActiveProvider: "gemini"}
}

// LoadConfig reads the routing table from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read agent config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse agent config %s: %w", path, err)
	}
	if cfg.ActiveProvider == "" {
		cfg.ActiveProvider = "gemini"
	}
	return cfg, nil
}

// Manager resolves a role name to a concrete provider.
type Manager struct {
	config    Config
	providers map[string]llm.Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"gemini":   &llm.GeminiProvider{},
			"deepseek": &llm.DeepSeekProvider{},
		},
	}
}

// ProviderFor returns the provider for a role: role override first, then the
// globally active provider.
func (m *Manager) ProviderFor(role string) (llm.Provider, error) {
	if rc, ok := m.config.Roles[role]; ok && rc.Provider != "" {
		if p, ok := m.providers[rc.Provider]; ok {
			return p, nil
		}
		return nil, fmt.Errorf("role %q names unknown provider %q", role, rc.Provider)
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown active provider %q", m.config.ActiveProvider)
}

// ModelFor returns the role's model override, or empty for the provider
// default.
func (m *Manager) ModelFor(role string) string {
	if rc, ok := m.config.Roles[role]; ok {
		return rc.Model
	}
	return ""
}
