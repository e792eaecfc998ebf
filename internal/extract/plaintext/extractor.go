// Package plaintext extracts text files verbatim.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text and markdown files.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Supports reports whether the extension is handled.
func (e *Extractor) Supports(ext string) bool {
	switch ext {
	case ".txt", ".md", ".markdown", ".text":
		return true
	}
	return false
}

// Extract reads the file as UTF-8 text.
func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", domain.ErrExtractionFailed, path, err)
	}
	return string(content), nil
}

// Metadata returns filesystem metadata. Plain text carries no embedded
// title or author.
func (e *Extractor) Metadata(_ context.Context, path string) (domain.FileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.FileMetadata{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return domain.FileMetadata{
		FileName:     info.Name(),
		FileSize:     info.Size(),
		FileType:     strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		LastModified: info.ModTime(),
	}, nil
}
