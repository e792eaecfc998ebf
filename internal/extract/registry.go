package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driven"
)

// Registry selects an extractor by file extension.
type Registry struct {
	extractors []driven.Extractor
}

// NewRegistry creates a registry over the given extractors. Order matters:
// the first extractor that supports an extension wins.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	return &Registry{extractors: extractors}
}

// ForFile returns the extractor for a file, or domain.ErrUnsupportedFormat.
func (r *Registry) ForFile(path string) (driven.Extractor, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range r.extractors {
		if e.Supports(ext) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
}

// ExtractText extracts the full text of a file.
func (r *Registry) ExtractText(ctx context.Context, path string) (string, error) {
	extractor, err := r.ForFile(path)
	if err != nil {
		return "", err
	}
	return extractor.Extract(ctx, path)
}

// Metadata returns file metadata. Filesystem fields are always populated
// when the file exists; format-specific fields are best effort and
// silently omitted when the extractor cannot provide them.
func (r *Registry) Metadata(ctx context.Context, path string) (domain.FileMetadata, error) {
	extractor, err := r.ForFile(path)
	if err == nil {
		if meta, merr := extractor.Metadata(ctx, path); merr == nil {
			return meta, nil
		}
	}

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
