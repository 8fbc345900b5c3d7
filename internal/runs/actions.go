// Package runs implements the history commands.
package runs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dtnitsch/article-pipeline/internal/setup"
	dbpkg "github.com/dtnitsch/article-pipeline/pkg/db"
	"github.com/urfave/cli/v2"
)

const timeLayout = "2006-01-02 15:04:05"

func openDatabase(c *cli.Context) (*dbpkg.DB, error) {
	cfg, err := setup.Config(c)
	if err != nil {
		return nil, err
	}
	database, err := dbpkg.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

func RunsAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return err
	}

	PrintRuns(os.Stdout, runs)
	return nil
}

// RunAction shows details for a specific run, or the latest one.
func RunAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	run, err := database.GetRunByID(runID)
	if err != nil {
		return err
	}
	items, err := database.GetRunItems(runID)
	if err != nil {
		return err
	}

	PrintRun(os.Stdout, run, items)
	return nil
}

// GetRunIDOrLatest returns the run ID from args, or the latest run if not provided
func GetRunIDOrLatest(c *cli.Context, database *dbpkg.DB) (int64, error) {
	if c.NArg() == 0 {
		runID, err := database.LatestRunID()
		if errors.Is(err, dbpkg.ErrRunNotFound) {
			return 0, fmt.Errorf("no runs found. Run 'arw scrape' first")
		}
		return runID, err
	}

	var runID int64
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &runID); err != nil {
		return 0, fmt.Errorf("invalid run ID: %s", c.Args().First())
	}
	return runID, nil
}

func PrintRuns(w io.Writer, runs []dbpkg.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found")
		return
	}

	fmt.Fprintf(w, "%-6s %-8s %-10s %-20s %-6s %-6s %-8s %-6s\n",
		"ID", "Kind", "Status", "Started", "Items", "Saved", "Skipped", "Failed")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, r := range runs {
		fmt.Fprintf(w, "%-6d %-8s %-10s %-20s %-6d %-6d %-8d %-6d\n",
			r.RunID,
			r.Kind,
			r.Status,
			r.StartedAt.Local().Format(timeLayout),
			r.ItemCount,
			r.SavedCount,
			r.SkippedCount,
			r.FailedCount,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
	fmt.Fprintf(w, "\nTip: Use 'arw run <id>' to see details\n")
}

func PrintRun(w io.Writer, run *dbpkg.Run, items []dbpkg.RunItem) {
	fmt.Fprintf(w, "Run %d (%s)\n", run.RunID, run.Kind)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Started:     %s\n", run.StartedAt.Local().Format(timeLayout))
	if run.FinishedAt != nil {
		fmt.Fprintf(w, "Finished:    %s\n", run.FinishedAt.Local().Format(timeLayout))
	}
	fmt.Fprintf(w, "Status:      %s\n", run.Status)
	fmt.Fprintf(w, "Items:       %d total (%d saved, %d skipped, %d failed)\n",
		run.ItemCount, run.SavedCount, run.SkippedCount, run.FailedCount)
	if run.Error != "" {
		fmt.Fprintf(w, "Error:       %s\n", run.Error)
	}

	if len(items) == 0 {
		return
	}

	fmt.Fprintf(w, "\nItems (%d):\n", len(items))
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for i, it := range items {
		fmt.Fprintf(w, "%2d. [%s] %s\n", i+1, it.Status, it.Source)
		switch it.Status {
		case dbpkg.ItemFailed:
			fmt.Fprintf(w, "    Error: %s\n", it.Error)
		case dbpkg.ItemSaved:
			lang := it.Language
			if lang == "" {
				lang = "-"
			}
			fmt.Fprintf(w, "    %s -> %s (lang: %s)\n", it.Title, it.Target, lang)
		}
	}
}
