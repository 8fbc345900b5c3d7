package models

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if len(cfg.Seeds) != 11 {
		t.Errorf("seeds = %d, want 11", len(cfg.Seeds))
	}
	if cfg.Rewrite.MaxTokens != 3000 || cfg.Rewrite.Temperature != 0.7 || cfg.Rewrite.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("rewrite config = %+v", cfg.Rewrite)
	}

	// Callers get their own seed slice.
	cfg.Seeds[0] = "changed"
	if DefaultSeeds[0] == "changed" {
		t.Error("DefaultConfig shares the DefaultSeeds backing array")
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
seeds:
  - https://docs.example.com/articles/
base_url: https://docs.example.com/articles
rewrite:
  model: gpt-4o-mini
selectors:
  content: main.article
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.Seeds) != 1 || cfg.BaseURL != "https://docs.example.com/articles" {
		t.Errorf("seeds/base = %v %q", cfg.Seeds, cfg.BaseURL)
	}
	if cfg.Rewrite.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", cfg.Rewrite.Model)
	}
	// Untouched keys keep their defaults.
	if cfg.Rewrite.MaxTokens != 3000 || cfg.LedgerFile != "hyperlinks.csv" {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Selectors.Content != "main.article" || cfg.Selectors.Title != ".article-title" {
		t.Errorf("selectors = %+v", cfg.Selectors)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	cfg, err := LoadConfig(path, false)
	if err != nil || cfg == nil {
		t.Fatalf("LoadConfig(optional) = %v, %v", cfg, err)
	}
	if _, err := LoadConfig(path, true); err == nil {
		t.Error("expected error for required missing file")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("seeds: [unterminated"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path, true); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "no seeds", mutate: func(c *Config) { c.Seeds = nil }},
		{name: "bad seed", mutate: func(c *Config) { c.Seeds = []string{"not a url"} }},
		{name: "bad base", mutate: func(c *Config) { c.BaseURL = "articles" }},
		{name: "no ledger", mutate: func(c *Config) { c.LedgerFile = "" }},
		{name: "no key env", mutate: func(c *Config) { c.Rewrite.APIKeyEnv = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestArticleUsable(t *testing.T) {
	tests := []struct {
		article Article
		want    bool
	}{
		{Article{Title: "T", Content: "C"}, true},
		{Article{Title: "Untitled", Content: "C"}, false},
		{Article{Title: "", Content: "C"}, false},
		{Article{Title: "T", Content: ""}, false},
	}
	for _, tt := range tests {
		if got := tt.article.Usable("Untitled"); got != tt.want {
			t.Errorf("Usable(%+v) = %v, want %v", tt.article, got, tt.want)
		}
	}
}
