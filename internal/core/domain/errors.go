package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a file extension with no extractor.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtractionFailed indicates a format-specific parse failure.
	// Extraction never returns partial text; a corrupt file fails whole.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrLLMUnavailable indicates the generation service is not configured.
	// Query answering and study tools are disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Semantic search and ingestion are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is not
	// configured or unreachable. Distinct from an empty search result.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrCollectionNotFound indicates the named collection does not exist.
	// A book that was never indexed has no collection.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrDimensionMismatch indicates an embedding whose length does not
	// match the collection's configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIngestionAborted indicates ingestion stopped at a failed chunk.
	// Chunks written before the failure may remain in the store.
	ErrIngestionAborted = errors.New("ingestion aborted")

	// ErrInvalidTransition indicates an illegal book status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)
