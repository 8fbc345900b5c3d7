package runs

import (
	"bytes"
	"strings"
	"testing"
	"time"

	dbpkg "github.com/dtnitsch/article-pipeline/pkg/db"
)

func TestPrintRunsEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintRuns(&buf, nil)
	if buf.String() != "No runs found\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintRuns(t *testing.T) {
	var buf bytes.Buffer
	PrintRuns(&buf, []dbpkg.Run{
		{RunID: 2, Kind: "rewrite", Status: "failed", StartedAt: time.Now(), ItemCount: 1, FailedCount: 1},
		{RunID: 1, Kind: "scrape", Status: "completed", StartedAt: time.Now(), ItemCount: 3, SavedCount: 2, SkippedCount: 1},
	})

	out := buf.String()
	if !strings.Contains(out, "Total: 2 runs") {
		t.Errorf("missing total:\n%s", out)
	}
	if strings.Index(out, "rewrite") > strings.Index(out, "scrape") {
		t.Errorf("runs printed out of order:\n%s", out)
	}
}

func TestPrintRun(t *testing.T) {
	finished := time.Now()
	run := &dbpkg.Run{
		RunID: 7, Kind: "scrape", Status: "failed", StartedAt: time.Now(), FinishedAt: &finished,
		Error: "connection reset", ItemCount: 2, SavedCount: 1, FailedCount: 1,
	}
	items := []dbpkg.RunItem{
		{Source: "https://x.test/a", Target: "out/A.docx", Title: "A", Language: "en", Status: dbpkg.ItemSaved},
		{Source: "https://x.test/b", Status: dbpkg.ItemFailed, Error: "connection reset"},
	}

	var buf bytes.Buffer
	PrintRun(&buf, run, items)
	out := buf.String()

	for _, want := range []string{
		"Run 7 (scrape)",
		"Error:       connection reset",
		" 1. [saved] https://x.test/a",
		"A -> out/A.docx (lang: en)",
		" 2. [failed] https://x.test/b",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
