package driven

import (
	"context"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
)

// VectorStore persists (id, content, metadata, embedding) tuples in named
// collections and answers nearest-neighbour queries. One collection per
// book; collections are created lazily on first Add.
//
// Search returns an error when the store itself fails, distinct from an
// empty result slice for "no matches"; callers choose their own fallback.
type VectorStore interface {
	// Add upserts a document into a collection. When doc.Embedding is nil
	// the store computes one from doc.Content using its configured
	// embedder; a provided embedding is used verbatim. Re-adding an
	// existing ID replaces it.
	Add(ctx context.Context, collection string, doc VectorDocument) error

	// Search embeds the query text and returns the n nearest documents,
	// ascending by cosine distance. A missing collection yields
	// domain.ErrCollectionNotFound.
	Search(ctx context.Context, collection, query string, n int) ([]VectorHit, error)

	// SearchByVector is Search with a caller-supplied query embedding.
	SearchByVector(ctx context.Context, collection string, vector []float32, n int) ([]VectorHit, error)

	// Get retrieves a stored document by ID, or domain.ErrNotFound.
	Get(ctx context.Context, collection, id string) (*VectorDocument, error)

	// Delete removes a document by ID. Deleting a missing ID is a no-op.
	Delete(ctx context.Context, collection, id string) error

	// ListIDs returns all document IDs in a collection. Used for
	// prefix-based cascade deletion of a source document's chunks.
	ListIDs(ctx context.Context, collection string) ([]string, error)

	// DeleteCollection drops an entire collection.
	DeleteCollection(ctx context.Context, collection string) error

	// Close releases resources.
	Close() error
}

// VectorDocument is a stored chunk with its vector.
type VectorDocument struct {
	// ID is the chunk ID, `{docID}_chunk_{n}`.
	ID string

	// Content is the chunk text.
	Content string

	// Metadata describes the chunk's position within its source.
	Metadata domain.ChunkMetadata

	// Embedding is the vector; nil lets the store compute its own.
	Embedding []float32
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// ID is the matched chunk ID.
	ID string

	// Content is the stored chunk text.
	Content string

	// Distance is the cosine distance (lower is better), bounded [0, 2].
	Distance float64

	// Metadata is the stored chunk metadata.
	Metadata domain.ChunkMetadata
}
