package driving

import (
	"context"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
)

// LibraryService manages the collection of ingested books. Each book gets
// its own vector collection and a processing state machine tracking the
// ingestion pipeline.
type LibraryService interface {
	// AddBook registers a file and runs the ingestion pipeline: the book
	// moves unindexed -> chunking -> embedding -> indexed, or to failed
	// with the error recorded. Re-adding an already registered path
	// returns domain.ErrAlreadyExists.
	AddBook(ctx context.Context, path string, meta domain.BookInfo) (*domain.Book, error)

	// GetBook fetches a book by ID.
	GetBook(ctx context.Context, id string) (*domain.Book, error)

	// ListBooks returns all books in the library.
	ListBooks(ctx context.Context) ([]*domain.Book, error)

	// Ask answers a question against one book's content.
	Ask(ctx context.Context, bookID, question string, nResults int) (*domain.Answer, error)

	// Search returns raw retrieval results from one book.
	Search(ctx context.Context, bookID, query string, nResults int) ([]domain.SearchResult, error)

	// Reindex re-runs the ingestion pipeline for an existing book,
	// replacing its chunks and vectors.
	Reindex(ctx context.Context, bookID string) (*domain.Book, error)

	// RemoveBook deletes a book, its chunks and its vector collection.
	RemoveBook(ctx context.Context, bookID string) error
}
