package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dtnitsch/article-pipeline/internal/rewrite"
	"github.com/dtnitsch/article-pipeline/internal/runs"
	"github.com/dtnitsch/article-pipeline/internal/scrape"
	"github.com/dtnitsch/article-pipeline/models"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "arw",
		Usage: "Scrape documentation articles and rewrite them with a text-generation service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: models.DefaultConfigFile,
				Usage: "YAML config file (ignored when the default file is absent)",
			},
			&cli.StringFlag{Name: "scraped-dir", Usage: "directory for scraped articles"},
			&cli.StringFlag{Name: "rewritten-dir", Usage: "directory for rewritten articles"},
			&cli.StringFlag{Name: "db", Usage: "run history database path"},
			&cli.BoolFlag{Name: "no-history", Usage: "do not record runs in the history database"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors"},
		},
		Commands: []*cli.Command{
			{
				Name:  "scrape",
				Usage: "Collect article links from the seed pages and save each article as a .docx",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "seeds", Usage: "seed URLs (replaces the configured list)"},
					&cli.StringFlag{Name: "base-url", Usage: "only links starting with this prefix are collected"},
					&cli.StringFlag{Name: "ledger", Usage: "CSV file for (seed, hyperlink) pairs"},
					&cli.StringFlag{Name: "strategy", Usage: "extraction strategy: selector or readability"},
					&cli.StringFlag{
						Name:  "selectors",
						Usage: `selector overrides, e.g. "title:h1.headline,content:div.body"`,
					},
					&cli.BoolFlag{Name: "no-language", Usage: "skip language detection"},
				},
				Action: scrape.ScrapeAction,
			},
			{
				Name:  "rewrite",
				Usage: "Rewrite every scraped article and save the results",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "model", Usage: "chat-completion model"},
					&cli.StringFlag{Name: "api-base-url", Usage: "override the generation service endpoint"},
				},
				Action: rewrite.RewriteAction,
			},
			{
				Name:  "links",
				Usage: "Print the hyperlink ledger from the last scrape",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "ledger", Usage: "CSV file for (seed, hyperlink) pairs"},
				},
				Action: scrape.LinksAction,
			},
			{
				Name:  "runs",
				Usage: "List recent runs",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum runs to show (0 = all)"},
				},
				Action: runs.RunsAction,
			},
			{
				Name:      "run",
				Usage:     "Show one run and its items (latest when no ID is given)",
				ArgsUsage: "[run-id]",
				Action:    runs.RunAction,
			},
		},
	}
}
