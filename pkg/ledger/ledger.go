// Package ledger records which seed page each hyperlink was discovered on.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dtnitsch/article-pipeline/models"
)

var header = []string{"URL", "Hyperlink"}

// Write replaces the file at path with one row per record.
func Write(path string, records []models.LinkRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create ledger: %w", err)
	}

	if err := Encode(f, records); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write ledger %s: %w", path, err)
	}
	return f.Close()
}

// Encode writes the header and records as CSV.
func Encode(w io.Writer, records []models.LinkRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Seed, r.Link}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read loads a ledger written by Write.
func Read(path string) ([]models.LinkRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = len(header)

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger header: %w", err)
	}
	if first[0] != header[0] || first[1] != header[1] {
		return nil, fmt.Errorf("unexpected ledger header: %v", first)
	}

	var records []models.LinkRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger row: %w", err)
		}
		records = append(records, models.LinkRecord{Seed: row[0], Link: row[1]})
	}
	return records, nil
}
