package rewrite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dtnitsch/article-pipeline/internal/setup"
	"github.com/dtnitsch/article-pipeline/models"
	"github.com/dtnitsch/article-pipeline/pkg/db"
	"github.com/dtnitsch/article-pipeline/pkg/rewriter"
	"github.com/dtnitsch/article-pipeline/pkg/storage"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Options carries the collaborators Execute does not build itself.
type Options struct {
	// Completer replaces the OpenAI client when set.
	Completer rewriter.Completer
	Recorder  db.Recorder
	Logger    *slog.Logger
	Out       io.Writer
}

// Execute checks the API key before touching the filesystem or network,
// then runs the rewrite stage.
func Execute(ctx context.Context, cfg *models.Config, opts Options) (*Summary, error) {
	apiKey, err := rewriter.APIKeyFromEnv(cfg.Rewrite.APIKeyEnv)
	if err != nil {
		return nil, err
	}

	completer := opts.Completer
	if completer == nil {
		completer = rewriter.NewOpenAICompleter(apiKey, cfg.Rewrite)
	}
	if opts.Recorder == nil {
		opts.Recorder = db.NopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	p := &Pipeline{
		Config:   cfg,
		Rewriter: rewriter.New(completer, cfg.Rewrite.Platform),
		Storage:  &storage.Storage{Dir: cfg.RewrittenDir, ReplaceSpaces: true},
		Recorder: opts.Recorder,
		Logger:   opts.Logger,
		Out:      opts.Out,
	}
	return p.Run(ctx)
}

// RewriteAction runs the rewrite stage.
func RewriteAction(c *cli.Context) error {
	logger := setup.Logger(c)

	cfg, err := setup.Config(c)
	if err != nil {
		return err
	}

	// Fail before opening anything else when the credential is missing.
	if _, err := rewriter.APIKeyFromEnv(cfg.Rewrite.APIKeyEnv); err != nil {
		logger.Error("configuration error", "error", err)
		return err
	}

	recorder, closeHistory, err := setup.History(c, cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	summary, err := Execute(c.Context, cfg, Options{
		Recorder: recorder,
		Logger:   logger,
		Out:      os.Stdout,
	})
	if err != nil {
		logger.Error("rewrite failed", "error", err)
		return err
	}

	yamlBytes, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	fmt.Print(string(yamlBytes))
	return nil
}
