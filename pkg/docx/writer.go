package docx

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	ooxml "github.com/fumiama/go-docx"
)

const templateName = "article"

//go:embed template/styles.xml
var templateFiles embed.FS

// articleTemplate serves the library's default package parts with our
// styles.xml, which defines Heading1.
type articleTemplate struct{}

func (articleTemplate) Open(name string) (fs.File, error) {
	part := strings.TrimPrefix(name, "xml/"+templateName+"/")
	if part == "word/styles.xml" {
		return templateFiles.Open("template/styles.xml")
	}
	return ooxml.TemplateXMLFS.Open("xml/default/" + part)
}

// Save writes the document to path, replacing any existing file.
func (d *Document) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := d.Encode(f); err != nil {
		_ = f.Close() // Close error less important than encode error
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// Encode writes the document as a .docx archive.
func (d *Document) Encode(w io.Writer) error {
	out := ooxml.New().UseTemplate(templateName, ooxml.DefaultTemplateFilesList, articleTemplate{})

	for _, p := range d.Paragraphs {
		para := out.AddParagraph()
		if p.Style != "" {
			para.Style(p.Style)
		}
		addText(para, p.Text)
	}

	_, err := out.WriteTo(w)
	return err
}

// addText appends text as one run. Newlines become w:br and tabs w:tab;
// every w:t keeps its surrounding spaces.
func addText(para *ooxml.Paragraph, text string) {
	if text == "" {
		return
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	run := para.AddText(text)
	for _, child := range run.Children {
		if t, ok := child.(*ooxml.Text); ok {
			t.XMLSpace = "preserve"
		}
	}
}
