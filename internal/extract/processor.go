package extract

import (
	"context"
	"fmt"

	"github.com/bookwise-ai/bookwise/internal/chunker"
	"github.com/bookwise-ai/bookwise/internal/core/domain"
)

// Processor composes extraction, metadata and chunking for one file.
type Processor struct {
	registry *Registry
}

// NewProcessor creates a document processor over a registry.
func NewProcessor(registry *Registry) *Processor {
	return &Processor{registry: registry}
}

// ProcessDocument extracts a file's text, splits it with the given chunk
// parameters and merges file metadata into every chunk. Chunk IDs are left
// empty; the ingestion pipeline assigns them once it knows the document ID.
func (p *Processor) ProcessDocument(ctx context.Context, path string, chunkSize, overlap int) ([]domain.Chunk, domain.FileMetadata, error) {
	text, err := p.registry.ExtractText(ctx, path)
	if err != nil {
		return nil, domain.FileMetadata{}, fmt.Errorf("extract %s: %w", path, err)
	}

	meta, err := p.registry.Metadata(ctx, path)
	if err != nil {
		return nil, domain.FileMetadata{}, err
	}

	c := chunker.New(chunker.WithChunkSize(chunkSize), chunker.WithOverlap(overlap))
	chunks := c.ChunkText(text, domain.ChunkMetadata{
		FileName: meta.FileName,
		FileType: meta.FileType,
		FileSize: meta.FileSize,
		Title:    meta.Title,
		Author:   meta.Author,
	})

	return chunks, meta, nil
}
