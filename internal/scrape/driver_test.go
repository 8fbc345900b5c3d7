package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dtnitsch/article-pipeline/models"
	"github.com/dtnitsch/article-pipeline/pkg/collector"
	"github.com/dtnitsch/article-pipeline/pkg/db"
	"github.com/dtnitsch/article-pipeline/pkg/docx"
	"github.com/dtnitsch/article-pipeline/pkg/extractor"
	"github.com/dtnitsch/article-pipeline/pkg/fetcher"
	"github.com/dtnitsch/article-pipeline/pkg/ledger"
	"github.com/dtnitsch/article-pipeline/pkg/storage"
)

type fixedLanguage string

func (f fixedLanguage) Language(string) string { return string(f) }

// site serves two seed pages and a handful of article pages.
func site(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/seed/one", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<a href="%[1]s/articles/cnc">CNC</a>
			<a href="%[1]s/articles/landing">Landing</a>
			<a href="https://elsewhere.example.com/articles/x">Elsewhere</a>
			<a name="no-href">anchor</a>
		</body></html>`, srv.URL)
	})
	mux.HandleFunc("/seed/two", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<a href="%[1]s/articles/cnc">CNC again</a>
			<a href="%[1]s/articles/odd">Odd title</a>
		</body></html>`, srv.URL)
	})
	mux.HandleFunc("/articles/cnc", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="article-title">Guide to CNC</div><div class="article-content"><p>Mills cut metal.</p></div>`)
	})
	mux.HandleFunc("/articles/landing", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Category</h1></body></html>`)
	})
	mux.HandleFunc("/articles/odd", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="article-title">A/B:C?</div><div class="article-content">Odd body</div>`)
	})
	mux.HandleFunc("/articles/broken", func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})
	return srv
}

func newPipeline(t *testing.T, srv *httptest.Server, seeds ...string) (*Pipeline, *bytes.Buffer, *db.DB) {
	t.Helper()
	dir := t.TempDir()

	cfg := models.DefaultConfig()
	cfg.Seeds = seeds
	cfg.BaseURL = srv.URL + "/articles"
	cfg.ScrapedDir = filepath.Join(dir, "Scraped_Articles")
	cfg.LedgerFile = filepath.Join(dir, "hyperlinks.csv")

	history, err := db.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { history.Close() })

	ex, err := extractor.New(cfg.Selectors)
	if err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := fetcher.NewFetcher(logger)
	out := &bytes.Buffer{}
	return &Pipeline{
		Config:    cfg,
		Collector: collector.NewCollector(f, cfg.BaseURL, logger),
		Scraper:   collector.NewScraper(f, ex),
		Storage:   &storage.Storage{Dir: cfg.ScrapedDir},
		Detector:  fixedLanguage("en"),
		Recorder:  history,
		Logger:    logger,
		Out:       out,
	}, out, history
}

func TestRun(t *testing.T) {
	srv := site(t)
	p, out, history := newPipeline(t, srv, srv.URL+"/seed/one", srv.URL+"/seed/two")

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Links != 3 || summary.Saved != 2 || summary.Skipped != 1 {
		t.Errorf("summary = %+v", summary)
	}

	records, err := ledger.Read(p.Config.LedgerFile)
	if err != nil {
		t.Fatal(err)
	}
	wantLinks := []models.LinkRecord{
		{Seed: srv.URL + "/seed/one", Link: srv.URL + "/articles/cnc"},
		{Seed: srv.URL + "/seed/one", Link: srv.URL + "/articles/landing"},
		{Seed: srv.URL + "/seed/two", Link: srv.URL + "/articles/odd"},
	}
	if len(records) != len(wantLinks) {
		t.Fatalf("ledger = %+v", records)
	}
	for i, r := range records {
		if r != wantLinks[i] {
			t.Errorf("ledger[%d] = %+v, want %+v", i, r, wantLinks[i])
		}
	}

	doc, err := docx.Open(filepath.Join(p.Config.ScrapedDir, "Guide to CNC.docx"))
	if err != nil {
		t.Fatalf("saved article missing: %v", err)
	}
	if doc.Title() != "Guide to CNC" || doc.Text() != "Guide to CNC\nMills cut metal." {
		t.Errorf("doc text = %q", doc.Text())
	}

	odd, err := docx.Open(filepath.Join(p.Config.ScrapedDir, "A_B_C_.docx"))
	if err != nil {
		t.Fatalf("sanitized article missing: %v", err)
	}
	if odd.Title() != "A/B:C?" {
		t.Errorf("heading = %q, want raw title", odd.Title())
	}

	entries, _ := os.ReadDir(p.Config.ScrapedDir)
	if len(entries) != 2 {
		t.Errorf("files written = %d, want 2", len(entries))
	}

	printed := out.String()
	for _, want := range []string{"Title: Guide to CNC", "URL: " + srv.URL + "/articles/cnc", "Saved file: "} {
		if !strings.Contains(printed, want) {
			t.Errorf("output missing %q:\n%s", want, printed)
		}
	}
	if strings.Contains(printed, "landing") {
		t.Errorf("skipped article reported as saved:\n%s", printed)
	}

	run, err := history.GetRunByID(summary.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != db.RunCompleted || run.SavedCount != 2 || run.SkippedCount != 1 {
		t.Errorf("history run = %+v", run)
	}
	items, err := history.GetRunItems(summary.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if items[0].Language != "en" || items[0].ContentHash == "" {
		t.Errorf("saved item = %+v", items[0])
	}
}

func TestRunStopsOnTransportFault(t *testing.T) {
	srv := site(t)

	// A seed listing a link whose server drops the connection, followed by
	// a healthy article that must never be fetched.
	mux := http.NewServeMux()
	seedSrv := httptest.NewServer(mux)
	defer seedSrv.Close()
	mux.HandleFunc("/seed", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<a href="%[1]s/articles/broken">x</a><a href="%[1]s/articles/cnc">y</a>`, srv.URL)
	})

	p, _, history := newPipeline(t, srv, seedSrv.URL+"/seed")

	summary, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	if summary.Saved != 0 {
		t.Errorf("Saved = %d, want 0", summary.Saved)
	}
	if _, statErr := os.Stat(filepath.Join(p.Config.ScrapedDir, "Guide to CNC.docx")); !os.IsNotExist(statErr) {
		t.Error("article after the failure was processed")
	}

	run, err := history.GetRunByID(summary.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != db.RunFailed || run.FailedCount != 1 {
		t.Errorf("history run = %+v", run)
	}
}

func TestRunSeedFailureAbortsBeforeLedger(t *testing.T) {
	srv := site(t)
	p, _, _ := newPipeline(t, srv, srv.URL+"/seed/one")

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	p.Config.Seeds = append(p.Config.Seeds, closed.URL+"/seed")

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected error for unreachable seed")
	}
	if _, err := os.Stat(p.Config.LedgerFile); !os.IsNotExist(err) {
		t.Error("ledger written despite collection failure")
	}
}
