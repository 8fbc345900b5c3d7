// Package scrape drives the first stage: collect links, write the ledger,
// and save every usable article as a document.
package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/dtnitsch/article-pipeline/internal/common"
	"github.com/dtnitsch/article-pipeline/models"
	"github.com/dtnitsch/article-pipeline/pkg/collector"
	"github.com/dtnitsch/article-pipeline/pkg/db"
	"github.com/dtnitsch/article-pipeline/pkg/ledger"
	"github.com/dtnitsch/article-pipeline/pkg/storage"
)

// LanguageDetector is satisfied by *detector.Detector.
type LanguageDetector interface {
	Language(text string) string
}

// Summary is printed as YAML when a run ends.
type Summary struct {
	RunID     int64    `yaml:"run_id,omitempty"`
	Seeds     int      `yaml:"seeds"`
	Links     int      `yaml:"links"`
	Saved     int      `yaml:"saved"`
	Skipped   int      `yaml:"skipped"`
	Ledger    string   `yaml:"ledger"`
	OutputDir string   `yaml:"output_dir"`
	Files     []string `yaml:"files,omitempty"`
}

// Pipeline holds the collaborators for one scrape run.
type Pipeline struct {
	Config    *models.Config
	Collector *collector.Collector
	Scraper   *collector.Scraper
	Storage   *storage.Storage
	Detector  LanguageDetector
	Recorder  db.Recorder
	Logger    *slog.Logger
	Out       io.Writer
}

// Run processes every link sequentially. The first fetch or write failure
// stops the run; pages without a title or content are skipped.
func (p *Pipeline) Run(ctx context.Context) (summary *Summary, err error) {
	cfg := p.Config
	summary = &Summary{
		Seeds:     len(cfg.Seeds),
		Ledger:    cfg.LedgerFile,
		OutputDir: cfg.ScrapedDir,
	}

	if err := storage.EnsureDirs(cfg.ScrapedDir, filepath.Dir(cfg.LedgerFile)); err != nil {
		return nil, err
	}

	runID, err := p.Recorder.StartRun(db.RunKindScrape)
	if err != nil {
		p.Logger.Warn("history unavailable", "error", err)
		p.Recorder = db.NopRecorder{}
	}
	summary.RunID = runID
	defer func() {
		if finishErr := p.Recorder.FinishRun(runID, err); finishErr != nil {
			p.Logger.Warn("failed to finish run", "run_id", runID, "error", finishErr)
		}
	}()

	p.Logger.Info("collecting links", "seeds", len(cfg.Seeds), "prefix", cfg.BaseURL)
	records, err := p.Collector.Collect(ctx, cfg.Seeds)
	if err != nil {
		return summary, err
	}
	summary.Links = len(records)

	if err := ledger.Write(cfg.LedgerFile, records); err != nil {
		return summary, err
	}
	p.Logger.Info("ledger written", "path", cfg.LedgerFile, "links", len(records))

	for _, rec := range records {
		article, ok, err := p.Scraper.Scrape(ctx, rec.Link)
		if err != nil {
			p.record(runID, db.RunItem{Source: rec.Link, Status: db.ItemFailed, Error: err.Error()})
			return summary, err
		}
		if !ok {
			p.Logger.Info("skipping article", "url", rec.Link, "title", article.Title, "content_len", len(article.Content))
			p.record(runID, db.RunItem{Source: rec.Link, Title: article.Title, Status: db.ItemSkipped})
			summary.Skipped++
			continue
		}

		fmt.Fprintf(p.Out, "Title: %s\n", article.Title)
		fmt.Fprintf(p.Out, "URL: %s\n", rec.Link)

		if existing := p.Storage.PathFor(article.Title); p.Storage.HasFile(existing) {
			p.Logger.Info("overwriting existing document", "path", existing)
		}
		path, err := p.Storage.SaveArticle(article.Title, article.Content)
		if err != nil {
			p.record(runID, db.RunItem{Source: rec.Link, Title: article.Title, Status: db.ItemFailed, Error: err.Error()})
			return summary, err
		}
		if stats, err := p.Storage.GetFileStats(path); err == nil {
			p.Logger.Info("document saved", "path", path, "size_bytes", stats.SizeBytes)
		}
		fmt.Fprintf(p.Out, "Saved file: %s\n", path)

		item := db.RunItem{
			Source:      rec.Link,
			Target:      path,
			Title:       article.Title,
			ContentHash: common.ContentHash([]byte(article.Content)),
			Status:      db.ItemSaved,
		}
		if p.Detector != nil {
			item.Language = p.Detector.Language(article.Content)
		}
		p.record(runID, item)

		summary.Saved++
		summary.Files = append(summary.Files, path)
	}

	return summary, nil
}

func (p *Pipeline) record(runID int64, item db.RunItem) {
	item.RunID = runID
	if err := p.Recorder.RecordItem(item); err != nil {
		p.Logger.Warn("failed to record item", "source", item.Source, "error", err)
	}
}
