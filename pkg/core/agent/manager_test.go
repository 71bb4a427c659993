package agent

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProviderRouting(t *testing.T) {
	m := NewManager(Config{
		ActiveProvider: "gemini",
		Roles: map[string]RoleConfig{
			"extractor": {Provider: "deepseek", Model: "deepseek-chat"},
		},
	})

	p, err := m.ProviderFor("extractor")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "deepseek" {
		t.Errorf("role override ignored, got %s", p.Name())
	}
	if m.ModelFor("extractor") != "deepseek-chat" {
		t.Errorf("model override ignored, got %q", m.ModelFor("extractor"))
	}

	p, err = m.ProviderFor("summarizer")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "gemini" {
		t.Errorf("unrouted role must use the active provider, got %s", p.Name())
	}
}

func TestUnknownProviderIsAnError(t *testing.T) {
	m := NewManager(Config{ActiveProvider: "gpt5"})
	if _, err := m.ProviderFor("anything"); err == nil {
		t.Error("expected error for unknown active provider")
	}

	m = NewManager(Config{
		ActiveProvider: "gemini",
		Roles:          map[string]RoleConfig{"x": {Provider: "nope"}},
	})
	if _, err := m.ProviderFor("x"); err == nil {
		t.Error("expected error for unknown role provider")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	content := "active_provider: deepseek\nroles:\n  extractor:\n    provider: gemini\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ActiveProvider != "deepseek" {
		t.Errorf("got %q", cfg.ActiveProvider)
	}
	if cfg.Roles["extractor"].Provider != "gemini" {
		t.Errorf("got %+v", cfg.Roles)
	}
}
