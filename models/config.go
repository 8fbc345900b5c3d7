// Package models defines data structures for configuration, articles and links.
package models

import (
	"errors"
	"fmt"
	"os"

	"github.com/dtnitsch/article-pipeline/internal/common"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "config.yaml"

// DefaultSeeds are the category listing pages harvested for article links.
var DefaultSeeds = []string{
	"https://xometry.pro/en-eu/articles/",
	"https://xometry.pro/en-eu/articles/cnc-machining-eu/",
	"https://xometry.pro/en-eu/articles/3d-printing-eu/",
	"https://xometry.pro/en-eu/articles/sheet-metal-eu/",
	"https://xometry.pro/en-eu/articles/injection-moulding-eu/",
	"https://xometry.pro/en-eu/articles/die-casting-eu/",
	"https://xometry.pro/en-eu/articles/vacuum-casting-eu/",
	"https://xometry.pro/en-eu/articles/compression-molding-eu/",
	"https://xometry.pro/en-eu/articles/materials-eu/",
	"https://xometry.pro/en-eu/articles/design-eu/",
	"https://xometry.pro/en-eu/articles/post-processing-eu/",
}

// Config holds everything the two batch drivers need.
// Values start from DefaultConfig and may be overlaid by a YAML file and CLI flags.
type Config struct {
	Seeds   []string `yaml:"seeds"`
	BaseURL string   `yaml:"base_url"`

	ScrapedDir   string `yaml:"scraped_dir"`
	RewrittenDir string `yaml:"rewritten_dir"`
	LedgerFile   string `yaml:"ledger_file"`
	DatabasePath string `yaml:"database_path"`

	Selectors SelectorSpec  `yaml:"selectors"`
	Rewrite   RewriteConfig `yaml:"rewrite"`
}

// RewriteConfig holds the generation service parameters.
type RewriteConfig struct {
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	APIBaseURL  string  `yaml:"api_base_url"` // empty means the vendor default
	Platform    string  `yaml:"platform"`     // named in the rewritten conclusion
}

// DefaultConfig returns the configuration the pipeline ships with.
func DefaultConfig() *Config {
	seeds := make([]string, len(DefaultSeeds))
	copy(seeds, DefaultSeeds)

	return &Config{
		Seeds:        seeds,
		BaseURL:      "https://xometry.pro/en-eu/articles",
		ScrapedDir:   "Scraped_Articles",
		RewrittenDir: "Rewritten_Articles",
		LedgerFile:   "hyperlinks.csv",
		DatabasePath: "article-pipeline.db",
		Selectors:    DefaultSelectorSpec(),
		Rewrite: RewriteConfig{
			Model:       "gpt-3.5-turbo",
			MaxTokens:   3000,
			Temperature: 0.7,
			APIKeyEnv:   "OPENAI_API_KEY",
			Platform:    "MakerVerse",
		},
	}
}

// LoadConfig overlays the YAML file at path onto DefaultConfig.
// Keys absent from the file keep their defaults. A missing file is only an
// error when mustExist is set.
func LoadConfig(path string, mustExist bool) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields every command relies on.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return errors.New("config: no seed URLs")
	}
	if _, invalid := common.SanitizeAndValidateURLs(c.Seeds); len(invalid) > 0 {
		return fmt.Errorf("config: invalid seed URLs: %v", invalid)
	}
	if _, invalid := common.SanitizeAndValidateURLs([]string{c.BaseURL}); len(invalid) > 0 {
		return fmt.Errorf("config: invalid base_url %q", c.BaseURL)
	}
	if c.ScrapedDir == "" || c.RewrittenDir == "" || c.LedgerFile == "" {
		return errors.New("config: scraped_dir, rewritten_dir and ledger_file are required")
	}
	if c.Rewrite.APIKeyEnv == "" {
		return errors.New("config: rewrite.api_key_env is required")
	}
	return nil
}
