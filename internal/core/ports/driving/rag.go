package driving

import (
	"context"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
)

// RAGService is the retrieval-augmented question answering pipeline for a
// single collection: ingest documents, query them, inspect raw retrieval.
type RAGService interface {
	// AddDocument extracts, chunks, embeds and indexes a file under the
	// given document ID. It returns the number of chunks stored. A chunk
	// that fails to embed or store aborts the document; chunks written
	// before the failure remain and DeleteDocument cleans them up.
	AddDocument(ctx context.Context, collection, docID, path string) (int, error)

	// Query answers a question from the collection's content. It never
	// returns an error to the caller: retrieval or generation failures
	// produce a fixed fallback response instead.
	Query(ctx context.Context, collection, question string, nResults int) string

	// QueryWithSources is Query plus the retrieved passages that grounded
	// the answer, annotated with citations in retrieval order.
	QueryWithSources(ctx context.Context, collection, question string, nResults int) *domain.Answer

	// SearchSimilarContent returns the raw nearest-neighbour results for
	// a query without LLM generation.
	SearchSimilarContent(ctx context.Context, collection, query string, nResults int) ([]domain.SearchResult, error)

	// DeleteDocument removes a document's chunks from the collection by
	// chunk ID prefix. It returns the number of chunks removed.
	DeleteDocument(ctx context.Context, collection, docID string) (int, error)
}
