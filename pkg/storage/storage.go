package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dtnitsch/article-pipeline/pkg/docx"
)

const DocumentExt = ".docx"

var (
	illegalChars = regexp.MustCompile(`[\\/*?:"<>|]`)
	whitespace   = regexp.MustCompile(`\s`)
)

// Storage writes article documents into a single directory.
type Storage struct {
	Dir string
	// ReplaceSpaces also turns whitespace in titles into underscores.
	ReplaceSpaces bool
}

// FileStats holds metadata about a file without reading its contents.
type FileStats struct {
	SizeBytes int64
	ModTime   time.Time
}

// SanitizeFilename replaces every character that is illegal in filenames
// with an underscore.
func SanitizeFilename(name string) string {
	return illegalChars.ReplaceAllString(name, "_")
}

// PathFor returns <Dir>/<sanitized title>.docx.
func (s *Storage) PathFor(title string) string {
	name := SanitizeFilename(title)
	if s.ReplaceSpaces {
		name = whitespace.ReplaceAllString(name, "_")
	}
	if strings.TrimSpace(name) == "" {
		name = "Untitled"
	}
	return filepath.Join(s.Dir, name+DocumentExt)
}

// SaveArticle writes a heading plus one body paragraph and returns the path.
// An existing file with the same name is replaced.
func (s *Storage) SaveArticle(title, content string) (string, error) {
	path := s.PathFor(title)
	if err := docx.NewArticle(title, content).Save(path); err != nil {
		return "", fmt.Errorf("error saving article: %w", err)
	}
	return path, nil
}

// EnsureDirs creates each directory if it does not exist.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ListDocuments returns the .docx files directly inside dir, sorted by name.
// Office lock files ("~$name.docx") are ignored.
func ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, DocumentExt) || strings.HasPrefix(name, "~$") {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// HasFile reports whether fn exists.
func (s *Storage) HasFile(fn string) bool {
	_, err := os.Stat(fn)
	return err == nil || !os.IsNotExist(err)
}

// GetFileStats returns metadata about a file using os.Stat (no I/O overhead).
func (s *Storage) GetFileStats(filePath string) (*FileStats, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error getting file stats: %w", err)
	}

	return &FileStats{
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}
