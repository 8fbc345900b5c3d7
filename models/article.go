package models

// LinkRecord pairs a discovered hyperlink with the seed page it was first seen on.
type LinkRecord struct {
	Seed string
	Link string
}

// Article is a title and body pulled from a page or a document file.
type Article struct {
	URL     string `yaml:"url,omitempty"`
	Title   string `yaml:"title"`
	Content string `yaml:"-"`
}

// SelectorSpec declares how an article's fields are located in markup.
type SelectorSpec struct {
	Strategy     string `yaml:"strategy"` // selector | readability
	Title        string `yaml:"title"`
	Content      string `yaml:"content"`
	DefaultTitle string `yaml:"default_title"`
}

func DefaultSelectorSpec() SelectorSpec {
	return SelectorSpec{
		Strategy:     "selector",
		Title:        ".article-title",
		Content:      ".article-content",
		DefaultTitle: "Untitled",
	}
}

// Usable reports whether the article has both fields. Pages that fall back to
// the default title or have no content are skipped rather than saved.
func (a Article) Usable(defaultTitle string) bool {
	return a.Title != "" && a.Title != defaultTitle && a.Content != ""
}
