// Package rewrite drives the second stage: paraphrase every scraped document
// and save the result as a new document.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dtnitsch/article-pipeline/internal/common"
	"github.com/dtnitsch/article-pipeline/models"
	"github.com/dtnitsch/article-pipeline/pkg/db"
	"github.com/dtnitsch/article-pipeline/pkg/docx"
	"github.com/dtnitsch/article-pipeline/pkg/rewriter"
	"github.com/dtnitsch/article-pipeline/pkg/storage"
)

// ErrEmptyDocument is returned for an input file with no paragraphs, which
// leaves nothing to use as a title.
var ErrEmptyDocument = errors.New("document has no paragraphs")

// Summary is printed as YAML when a run ends.
type Summary struct {
	RunID     int64    `yaml:"run_id,omitempty"`
	InputDir  string   `yaml:"input_dir"`
	OutputDir string   `yaml:"output_dir"`
	Found     int      `yaml:"found"`
	Rewritten int      `yaml:"rewritten"`
	Files     []string `yaml:"files,omitempty"`
}

// Pipeline holds the collaborators for one rewrite run.
type Pipeline struct {
	Config   *models.Config
	Rewriter *rewriter.Rewriter
	Storage  *storage.Storage
	Recorder db.Recorder
	Logger   *slog.Logger
	Out      io.Writer
}

// Run rewrites every .docx in the scraped directory, one completion call per
// file. The first failure stops the run.
func (p *Pipeline) Run(ctx context.Context) (summary *Summary, err error) {
	cfg := p.Config
	summary = &Summary{
		InputDir:  cfg.ScrapedDir,
		OutputDir: cfg.RewrittenDir,
	}

	if err := storage.EnsureDirs(cfg.ScrapedDir, cfg.RewrittenDir); err != nil {
		return nil, err
	}

	paths, err := storage.ListDocuments(cfg.ScrapedDir)
	if err != nil {
		return nil, err
	}
	summary.Found = len(paths)
	if len(paths) == 0 {
		fmt.Fprintf(p.Out, "No articles found in the %s directory.\n", cfg.ScrapedDir)
		return summary, nil
	}

	runID, err := p.Recorder.StartRun(db.RunKindRewrite)
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

	for _, path := range paths {
		target, title, rewritten, err := p.rewriteOne(ctx, path)
		if err != nil {
			p.record(runID, db.RunItem{Source: path, Title: title, Status: db.ItemFailed, Error: err.Error()})
			return summary, err
		}
		p.record(runID, db.RunItem{
			Source:      path,
			Target:      target,
			Title:       title,
			ContentHash: common.ContentHash([]byte(rewritten)),
			Status:      db.ItemSaved,
		})

		fmt.Fprintf(p.Out, "Processed and saved: %s\n", title)
		summary.Rewritten++
		summary.Files = append(summary.Files, target)
	}

	return summary, nil
}

// rewriteOne reads path, rewrites its full text (heading included) and saves
// the result under the original title.
func (p *Pipeline) rewriteOne(ctx context.Context, path string) (target, title, rewritten string, err error) {
	doc, err := docx.Open(path)
	if err != nil {
		return "", "", "", err
	}
	if len(doc.Paragraphs) == 0 {
		return "", "", "", fmt.Errorf("%s: %w", path, ErrEmptyDocument)
	}
	title = doc.Title()

	p.Logger.Info("rewriting article", "path", path, "title", title)
	rewritten, err = p.Rewriter.Rewrite(ctx, doc.Text())
	if err != nil {
		return "", title, "", err
	}

	if existing := p.Storage.PathFor(title); p.Storage.HasFile(existing) {
		p.Logger.Info("overwriting existing document", "path", existing)
	}
	target, err = p.Storage.SaveArticle(title, rewritten)
	if err != nil {
		return "", title, "", err
	}
	if stats, statErr := p.Storage.GetFileStats(target); statErr == nil {
		p.Logger.Info("document saved", "path", target, "size_bytes", stats.SizeBytes)
	}
	return target, title, rewritten, nil
}

func (p *Pipeline) record(runID int64, item db.RunItem) {
	item.RunID = runID
	if err := p.Recorder.RecordItem(item); err != nil {
		p.Logger.Warn("failed to record item", "source", item.Source, "error", err)
	}
}
