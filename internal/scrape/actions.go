package scrape

import (
	"fmt"
	"os"

	"github.com/dtnitsch/article-pipeline/internal/setup"
	"github.com/dtnitsch/article-pipeline/pkg/collector"
	"github.com/dtnitsch/article-pipeline/pkg/detector"
	"github.com/dtnitsch/article-pipeline/pkg/extractor"
	"github.com/dtnitsch/article-pipeline/pkg/fetcher"
	"github.com/dtnitsch/article-pipeline/pkg/storage"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// ScrapeAction runs the scrape-and-save stage.
func ScrapeAction(c *cli.Context) error {
	logger := setup.Logger(c)

	cfg, err := setup.Config(c)
	if err != nil {
		return err
	}

	ex, err := extractor.New(cfg.Selectors)
	if err != nil {
		return err
	}

	recorder, closeHistory, err := setup.History(c, cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	f := fetcher.NewFetcher(logger)
	p := &Pipeline{
		Config:    cfg,
		Collector: collector.NewCollector(f, cfg.BaseURL, logger),
		Scraper:   collector.NewScraper(f, ex),
		Storage:   &storage.Storage{Dir: cfg.ScrapedDir},
		Recorder:  recorder,
		Logger:    logger,
		Out:       os.Stdout,
	}
	if !c.Bool("no-language") {
		p.Detector = detector.New()
	}

	summary, err := p.Run(c.Context)
	if err != nil {
		logger.Error("scrape failed", "error", err)
		return err
	}

	yamlBytes, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	fmt.Print(string(yamlBytes))
	return nil
}
