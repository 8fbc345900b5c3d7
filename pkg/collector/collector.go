// Package collector harvests article links from seed pages and scrapes the
// articles they point at.
package collector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/article-pipeline/models"
	"github.com/dtnitsch/article-pipeline/pkg/extractor"
)

// PageFetcher is satisfied by *fetcher.Fetcher.
type PageFetcher interface {
	GetHtml(ctx context.Context, url string) (*goquery.Document, error)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Collector gathers links under a fixed prefix from a list of seed pages.
type Collector struct {
	fetcher PageFetcher
	prefix  string
	logger  *slog.Logger
}

func NewCollector(f PageFetcher, prefix string, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = discardLogger()
	}
	return &Collector{fetcher: f, prefix: prefix, logger: logger}
}

// Collect visits the seeds in order. Each link is recorded once, against the
// first seed it appeared on. A fetch failure aborts the whole collection.
func (c *Collector) Collect(ctx context.Context, seeds []string) ([]models.LinkRecord, error) {
	seen := make(map[string]struct{})
	var records []models.LinkRecord

	for _, seed := range seeds {
		doc, err := c.fetcher.GetHtml(ctx, seed)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch seed %s: %w", seed, err)
		}

		links := ExtractLinks(doc, c.prefix)
		added := 0
		for _, link := range links {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			records = append(records, models.LinkRecord{Seed: seed, Link: link})
			added++
		}
		c.logger.Info("collected links", "seed", seed, "matched", len(links), "new", added)
	}

	return records, nil
}

// ExtractLinks returns the href of every anchor that starts with prefix, in
// document order and without repeats.
func ExtractLinks(doc *goquery.Document, prefix string) []string {
	if doc == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.HasPrefix(href, prefix) {
			return
		}
		if _, ok := seen[href]; ok {
			return
		}
		seen[href] = struct{}{}
		links = append(links, href)
	})
	return links
}

// Scraper fetches one article page and extracts its fields.
type Scraper struct {
	fetcher   PageFetcher
	extractor extractor.Extractor
}

// NewScraper uses ex's default title for the skip decision, so the fallback
// title and the rule that rejects it always agree.
func NewScraper(f PageFetcher, ex extractor.Extractor) *Scraper {
	return &Scraper{fetcher: f, extractor: ex}
}

// Scrape returns the article and whether it has both a real title and
// content. Pages that miss either are soft-skipped by the caller.
func (s *Scraper) Scrape(ctx context.Context, link string) (models.Article, bool, error) {
	doc, err := s.fetcher.GetHtml(ctx, link)
	if err != nil {
		return models.Article{}, false, fmt.Errorf("failed to fetch article %s: %w", link, err)
	}

	article := s.extractor.Extract(doc, link)
	return article, article.Usable(s.extractor.DefaultTitle()), nil
}
