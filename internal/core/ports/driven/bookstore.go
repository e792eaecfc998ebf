package driven

import (
	"context"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
)

// BookStore persists library records and their processing state.
type BookStore interface {
	// SaveBook inserts or updates a book by ID.
	SaveBook(ctx context.Context, book *domain.Book) error

	// GetBook fetches a book by ID, or domain.ErrNotFound.
	GetBook(ctx context.Context, id string) (*domain.Book, error)

	// GetBookByPath fetches a book by its source file path, or
	// domain.ErrNotFound.
	GetBookByPath(ctx context.Context, path string) (*domain.Book, error)

	// ListBooks returns all books ordered by creation time.
	ListBooks(ctx context.Context) ([]*domain.Book, error)

	// UpdateStatus records a state transition, along with the error
	// message when the new status is failed. Transitions are validated
	// against domain.BookStatus.CanTransitionTo; an illegal step returns
	// an error wrapping domain.ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id string, status domain.BookStatus, processingError string) error

	// DeleteBook removes a book record. Chunk rows cascade.
	DeleteBook(ctx context.Context, id string) error

	// Close releases the underlying store.
	Close() error
}

// DocumentStore persists extracted chunks relationally, alongside the
// vector store. It is the source of truth for chunk text and ordering;
// the vector store holds the searchable copies.
type DocumentStore interface {
	// SaveChunks stores a document's chunks, replacing any previous set
	// for the same document ID.
	SaveChunks(ctx context.Context, docID string, chunks []domain.Chunk) error

	// GetChunks returns a document's chunks ordered by chunk index.
	GetChunks(ctx context.Context, docID string) ([]domain.Chunk, error)

	// DeleteChunks removes all chunks for a document.
	DeleteChunks(ctx context.Context, docID string) error

	// CountChunks returns the number of stored chunks for a document.
	CountChunks(ctx context.Context, docID string) (int, error)
}
