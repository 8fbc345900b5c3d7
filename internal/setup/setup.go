// Package setup turns global CLI flags into the logger, configuration and
// history store shared by every command.
package setup

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dtnitsch/article-pipeline/models"
	"github.com/dtnitsch/article-pipeline/pkg/db"
	"github.com/dtnitsch/article-pipeline/pkg/extractor"
	"github.com/urfave/cli/v2"
)

// Logger writes JSON logs to stderr; --quiet keeps only errors.
func Logger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// Config loads --config (or config.yaml when present) and applies flag overrides.
func Config(c *cli.Context) (*models.Config, error) {
	path := c.String("config")
	cfg, err := models.LoadConfig(path, c.IsSet("config"))
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"scraped-dir", &cfg.ScrapedDir},
		{"rewritten-dir", &cfg.RewrittenDir},
		{"ledger", &cfg.LedgerFile},
		{"db", &cfg.DatabasePath},
		{"model", &cfg.Rewrite.Model},
		{"base-url", &cfg.BaseURL},
		{"api-base-url", &cfg.Rewrite.APIBaseURL},
	}
	for _, o := range overrides {
		if c.IsSet(o.flag) {
			*o.dst = c.String(o.flag)
		}
	}

	if c.IsSet("seeds") {
		cfg.Seeds = c.StringSlice("seeds")
	}
	if c.IsSet("strategy") {
		cfg.Selectors.Strategy = c.String("strategy")
	}
	if c.IsSet("selectors") {
		spec, err := extractor.ParseSpec(cfg.Selectors, c.String("selectors"))
		if err != nil {
			return nil, fmt.Errorf("invalid --selectors: %w", err)
		}
		cfg.Selectors = spec
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// History opens the run database unless --no-history is set. The returned
// close function is always safe to call.
func History(c *cli.Context, cfg *models.Config) (db.Recorder, func(), error) {
	if c.Bool("no-history") {
		return db.NopRecorder{}, func() {}, nil
	}

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return database, func() { _ = database.Close() }, nil
}
