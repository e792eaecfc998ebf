package domain

import (
	"fmt"
	"time"
)

// BookStatus tracks where a book is in the processing pipeline.
type BookStatus string

const (
	// StatusUnindexed means the book has been registered but not processed.
	StatusUnindexed BookStatus = "unindexed"

	// StatusChunking means text extraction and chunking is in progress.
	StatusChunking BookStatus = "chunking"

	// StatusEmbedding means chunk embeddings are being generated and stored.
	StatusEmbedding BookStatus = "embedding"

	// StatusIndexed means the book is fully searchable.
	StatusIndexed BookStatus = "indexed"

	// StatusFailed means processing failed; ProcessingError holds the cause.
	StatusFailed BookStatus = "failed"
)

// IsValid reports whether the status is one of the known pipeline states.
func (s BookStatus) IsValid() bool {
	switch s {
	case StatusUnindexed, StatusChunking, StatusEmbedding, StatusIndexed, StatusFailed:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving to the target status is a legal
// step of the processing state machine. Failed is reachable from any
// non-terminal state; a failed book may be retried from unindexed.
func (s BookStatus) CanTransitionTo(target BookStatus) bool {
	if target == StatusFailed {
		return s != StatusIndexed
	}
	switch s {
	case StatusUnindexed:
		return target == StatusChunking
	case StatusChunking:
		return target == StatusEmbedding
	case StatusEmbedding:
		return target == StatusIndexed
	case StatusFailed:
		return target == StatusUnindexed
	case StatusIndexed:
		return target == StatusUnindexed // re-index
	}
	return false
}

// Book represents an uploaded book and its processing state.
type Book struct {
	// ID is the unique identifier for the book.
	ID string

	// Title is the human-readable title.
	Title string

	// Author is the book author, if known.
	Author string

	// Year is the publication year; zero when unknown.
	Year int

	// FilePath is the location of the uploaded source file.
	FilePath string

	// Format is the source file format tag: pdf, docx, epub or txt.
	Format string

	// Status is the current processing state.
	Status BookStatus

	// ProcessingError holds the failure reason when Status is failed.
	ProcessingError string

	// ChunkCount is the number of chunks produced by the last indexing run.
	ChunkCount int

	// CreatedAt is when the book was registered.
	CreatedAt time.Time

	// UpdatedAt is when the book record last changed.
	UpdatedAt time.Time
}

// CollectionName returns the vector store collection for this book.
// One collection per book.
func (b Book) CollectionName() string {
	return CollectionForBook(b.ID)
}

// CollectionForBook builds the vector collection name for a book ID.
func CollectionForBook(bookID string) string {
	return fmt.Sprintf("book_%s", bookID)
}

// BookInfo is the metadata subset used for citation formatting.
type BookInfo struct {
	ID     string
	Title  string
	Author string
	// Year is zero when unknown; citations omit it rather than printing
	// a placeholder.
	Year      int
	Publisher string
	ISBN      string
}

// Info returns the citation metadata for the book.
func (b Book) Info() BookInfo {
	return BookInfo{
		ID:     b.ID,
		Title:  b.Title,
		Author: b.Author,
		Year:   b.Year,
	}
}
