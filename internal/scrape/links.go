package scrape

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dtnitsch/article-pipeline/internal/setup"
	"github.com/dtnitsch/article-pipeline/models"
	"github.com/dtnitsch/article-pipeline/pkg/ledger"
	"github.com/urfave/cli/v2"
)

// LinksAction prints the ledger from the last scrape, grouped by seed.
func LinksAction(c *cli.Context) error {
	cfg, err := setup.Config(c)
	if err != nil {
		return err
	}

	records, err := ledger.Read(cfg.LedgerFile)
	if err != nil {
		return err
	}
	PrintLinks(os.Stdout, records)
	return nil
}

func PrintLinks(w io.Writer, records []models.LinkRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No links recorded")
		return
	}

	current := ""
	for _, r := range records {
		if r.Seed != current {
			current = r.Seed
			fmt.Fprintf(w, "\n%s\n", current)
			fmt.Fprintln(w, strings.Repeat("-", len(current)))
		}
		fmt.Fprintf(w, "  %s\n", r.Link)
	}
	fmt.Fprintf(w, "\nTotal: %d links\n", len(records))
}
