// Package docx reads and writes the small subset of WordprocessingML the
// pipeline needs: a sequence of paragraphs, optionally styled as headings.
package docx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	ooxml "github.com/fumiama/go-docx"
)

const StyleHeading1 = "Heading1"

// ErrNotDocument is returned when a file cannot be read as a .docx.
var ErrNotDocument = errors.New("not a docx document")

// Paragraph is one body-level paragraph. Line breaks inside the paragraph
// are represented as "\n" and tabs as "\t".
type Paragraph struct {
	Style string
	Text  string
}

// Document is an ordered list of paragraphs.
type Document struct {
	Paragraphs []Paragraph
}

// NewArticle returns a document with a level-1 heading followed by a single
// body paragraph holding content.
func NewArticle(title, content string) *Document {
	return &Document{Paragraphs: []Paragraph{
		{Style: StyleHeading1, Text: title},
		{Text: content},
	}}
}

// Title is the text of the first paragraph, or "" for an empty document.
func (d *Document) Title() string {
	if len(d.Paragraphs) == 0 {
		return ""
	}
	return d.Paragraphs[0].Text
}

// Text joins every paragraph's text with newlines, heading included.
func (d *Document) Text() string {
	texts := make([]string, len(d.Paragraphs))
	for i, p := range d.Paragraphs {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n")
}

// Open reads the document at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Read parses a .docx archive and keeps the paragraphs that are direct
// children of the body. Tables and text boxes are not included.
func Read(r io.ReaderAt, size int64) (*Document, error) {
	parsed, err := ooxml.Parse(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocument, err)
	}
	// The document part sets the root name while it is decoded.
	if parsed.Document.XMLName.Local != "document" {
		return nil, fmt.Errorf("%w: missing word/document.xml", ErrNotDocument)
	}

	doc := &Document{}
	for _, item := range parsed.Document.Body.Items {
		p, ok := item.(*ooxml.Paragraph)
		if !ok {
			continue
		}
		para := Paragraph{Text: paragraphText(p)}
		if p.Properties != nil && p.Properties.Style != nil {
			para.Style = p.Properties.Style.Val
		}
		doc.Paragraphs = append(doc.Paragraphs, para)
	}
	return doc, nil
}

// paragraphText concatenates the text of the paragraph's own runs,
// hyperlinks included. Drawings and their text boxes are left out.
func paragraphText(p *ooxml.Paragraph) string {
	var sb strings.Builder
	for _, child := range p.Children {
		switch c := child.(type) {
		case *ooxml.Run:
			writeRunText(&sb, c)
		case *ooxml.Hyperlink:
			writeRunText(&sb, &c.Run)
		}
	}
	return sb.String()
}

func writeRunText(sb *strings.Builder, r *ooxml.Run) {
	for _, child := range r.Children {
		switch c := child.(type) {
		case *ooxml.Text:
			sb.WriteString(c.Text)
		case *ooxml.Tab:
			sb.WriteByte('\t')
		case *ooxml.BarterRabbet:
			// Page and column breaks carry no text.
			if c.Type == "" || c.Type == "textWrapping" {
				sb.WriteByte('\n')
			}
		}
	}
}
