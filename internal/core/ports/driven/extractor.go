package driven

import (
	"context"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
)

// Extractor turns a file on disk into plain text plus file metadata.
// Implementations cover one or more formats; the registry dispatches on
// extension.
type Extractor interface {
	// Supports reports whether the extractor handles the given lowercase
	// file extension, including the leading dot.
	Supports(ext string) bool

	// Extract reads the file and returns its text content. Extraction
	// failures wrap domain.ErrExtractionFailed.
	Extract(ctx context.Context, path string) (string, error)

	// Metadata returns file metadata, best effort: filesystem fields are
	// always populated, format-specific fields (title, author, page
	// count) only when the format exposes them. A metadata failure never
	// fails an extraction.
	Metadata(ctx context.Context, path string) (domain.FileMetadata, error)
}

// CommandRunner abstracts external command execution so extractors that
// shell out (pdftotext) stay testable.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
