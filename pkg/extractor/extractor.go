// Package extractor pulls an article's title and body out of parsed markup
// according to a declarative models.SelectorSpec.
package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/dtnitsch/article-pipeline/internal/common"
	"github.com/dtnitsch/article-pipeline/models"
	"github.com/go-shiori/go-readability"
)

const (
	StrategySelector    = "selector"
	StrategyReadability = "readability"
)

// Extractor turns a parsed page into an Article. A missing field is not an
// error: the title falls back to DefaultTitle and the content to "".
type Extractor interface {
	Extract(doc *goquery.Document, pageURL string) models.Article
	DefaultTitle() string
}

// New builds the extractor named by spec.Strategy. An empty default title
// resolves to "Untitled"; selectors are compiled up front so a typo fails here
// instead of matching nothing on every page.
func New(spec models.SelectorSpec) (Extractor, error) {
	if strings.TrimSpace(spec.DefaultTitle) == "" {
		spec.DefaultTitle = models.DefaultSelectorSpec().DefaultTitle
	}

	switch spec.Strategy {
	case "", StrategySelector:
		if spec.Title == "" || spec.Content == "" {
			return nil, fmt.Errorf("selector strategy needs both title and content selectors")
		}
		title, err := cascadia.Compile(spec.Title)
		if err != nil {
			return nil, fmt.Errorf("invalid title selector %q: %w", spec.Title, err)
		}
		content, err := cascadia.Compile(spec.Content)
		if err != nil {
			return nil, fmt.Errorf("invalid content selector %q: %w", spec.Content, err)
		}
		return &SelectorExtractor{spec: spec, title: title, content: content}, nil
	case StrategyReadability:
		return &ReadabilityExtractor{defaultTitle: spec.DefaultTitle}, nil
	default:
		return nil, fmt.Errorf("unknown extraction strategy: %s", spec.Strategy)
	}
}

// ParseSpec overlays a flag value such as
// "title:div.article-title,content:div.article-content" onto base.
func ParseSpec(base models.SelectorSpec, specStr string) (models.SelectorSpec, error) {
	if specStr == "" {
		return base, nil
	}

	spec := base
	parts := strings.Split(specStr, ",")
	for _, part := range parts {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			return base, fmt.Errorf("invalid selector part: %s", part)
		}
		key := strings.TrimSpace(kv[0])
		value := strings.TrimSpace(kv[1])

		switch key {
		case "title":
			spec.Title = value
		case "content":
			spec.Content = value
		case "default":
			spec.DefaultTitle = value
		case "strategy":
			spec.Strategy = value
		default:
			return base, fmt.Errorf("unknown selector key: %s", key)
		}
	}

	return spec, nil
}

// SelectorExtractor reads the first element matching each CSS selector.
type SelectorExtractor struct {
	spec    models.SelectorSpec
	title   cascadia.Selector
	content cascadia.Selector
}

func (e *SelectorExtractor) DefaultTitle() string { return e.spec.DefaultTitle }

func (e *SelectorExtractor) Extract(doc *goquery.Document, pageURL string) models.Article {
	article := models.Article{
		URL:   pageURL,
		Title: e.spec.DefaultTitle,
	}
	if doc == nil {
		return article
	}

	if sel := doc.FindMatcher(e.title).First(); sel.Length() > 0 {
		article.Title = common.NormalizeText(sel.Text())
	}
	if sel := doc.FindMatcher(e.content).First(); sel.Length() > 0 {
		article.Content = common.NormalizeText(sel.Text())
	}
	return article
}

// ReadabilityExtractor lets go-readability locate the main content, for sites
// without stable class names.
type ReadabilityExtractor struct {
	defaultTitle string
}

func (e *ReadabilityExtractor) DefaultTitle() string { return e.defaultTitle }

func (e *ReadabilityExtractor) Extract(doc *goquery.Document, pageURL string) models.Article {
	article := models.Article{
		URL:   pageURL,
		Title: e.defaultTitle,
	}
	if doc == nil {
		return article
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return article
	}
	html, err := doc.Html()
	if err != nil {
		return article
	}

	parser := readability.NewParser()
	parsed, err := parser.Parse(strings.NewReader(html), parsedURL)
	if err != nil {
		return article
	}

	if title := common.NormalizeText(parsed.Title); title != "" {
		article.Title = title
	}

	body, err := goquery.NewDocumentFromReader(strings.NewReader(parsed.Content))
	if err != nil {
		return article
	}
	article.Content = common.NormalizeText(body.Text())
	return article
}
