// Package detector guesses the natural language of article text. The result
// is recorded alongside each saved article; it never changes what is saved.
package detector

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

const Unknown = "unknown"

// Languages the seed site publishes in, plus its immediate neighbours.
var defaultLanguages = []lingua.Language{
	lingua.English,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Italian,
	lingua.Dutch,
	lingua.Polish,
	lingua.Turkish,
}

type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(defaultLanguages...).
			Build(),
	}
}

// Language returns the lowercase ISO 639-1 code, or Unknown.
func (d *Detector) Language(text string) string {
	if strings.TrimSpace(text) == "" {
		return Unknown
	}
	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return Unknown
	}
	return strings.ToLower(language.IsoCode639_1().String())
}
