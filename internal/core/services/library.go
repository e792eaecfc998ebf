package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driven"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driving"
	"github.com/bookwise-ai/bookwise/internal/embedding"
	"github.com/bookwise-ai/bookwise/internal/extract"
	"github.com/bookwise-ai/bookwise/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService manages the book library and drives each book through
// the ingestion state machine. Chunk text lives in the relational store,
// searchable copies in the vector store, one collection per book.
type LibraryService struct {
	books     driven.BookStore
	docs      driven.DocumentStore
	vectors   driven.VectorStore
	processor *extract.Processor
	embedder  *embedding.Generator
	rag       *RAGService
	citations *CitationService

	chunkSize int
	overlap   int
}

// NewLibraryService creates a new library service.
func NewLibraryService(
	books driven.BookStore,
	docs driven.DocumentStore,
	vectors driven.VectorStore,
	processor *extract.Processor,
	embedder *embedding.Generator,
	rag *RAGService,
) *LibraryService {
	return &LibraryService{
		books:     books,
		docs:      docs,
		vectors:   vectors,
		processor: processor,
		embedder:  embedder,
		rag:       rag,
		citations: NewCitationService(),
	}
}

// SetChunking overrides the default chunking parameters for ingestion.
// Zero values keep the defaults.
func (s *LibraryService) SetChunking(chunkSize, overlap int) {
	s.chunkSize = chunkSize
	s.overlap = overlap
}

// AddBook registers a file and runs the ingestion pipeline. Re-adding a
// path that is already in the library returns domain.ErrAlreadyExists.
func (s *LibraryService) AddBook(
	ctx context.Context, path string, meta domain.BookInfo,
) (*domain.Book, error) {
	logger.Section("Add Book")
	logger.Debug("Path: %s", path)

	if _, err := s.books.GetBookByPath(ctx, path); err == nil {
		return nil, fmt.Errorf("book at %s: %w", path, domain.ErrAlreadyExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing book: %w", err)
	}

	book := &domain.Book{
		ID:       uuid.NewString(),
		Title:    meta.Title,
		Author:   meta.Author,
		Year:     meta.Year,
		FilePath: path,
		Format:   formatTag(path),
		Status:   domain.StatusUnindexed,
	}
	if err := s.books.SaveBook(ctx, book); err != nil {
		return nil, fmt.Errorf("save book: %w", err)
	}

	if err := s.process(ctx, book); err != nil {
		return book, err
	}
	return s.books.GetBook(ctx, book.ID)
}

// GetBook fetches a book by ID.
func (s *LibraryService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	return s.books.GetBook(ctx, id)
}

// ListBooks returns all books in the library.
func (s *LibraryService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.books.ListBooks(ctx)
}

// Ask answers a question against one book's content.
func (s *LibraryService) Ask(
	ctx context.Context, bookID, question string, nResults int,
) (*domain.Answer, error) {
	book, err := s.indexedBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return s.rag.QueryWithSources(ctx, book.CollectionName(), question, nResults), nil
}

// Search returns raw retrieval results from one book, annotated with
// citations in retrieval order.
func (s *LibraryService) Search(
	ctx context.Context, bookID, query string, nResults int,
) ([]domain.SearchResult, error) {
	book, err := s.indexedBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	results, err := s.rag.SearchSimilarContent(ctx, book.CollectionName(), query, nResults)
	if err != nil {
		return nil, err
	}
	return s.citations.FormatMultipleCitations(results, book.Info(), CitationContextSearchResult), nil
}

// Reindex re-runs the ingestion pipeline for an existing book, replacing
// its chunks and vectors.
func (s *LibraryService) Reindex(ctx context.Context, bookID string) (*domain.Book, error) {
	logger.Section("Reindex Book")

	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	// Drop the previous index before re-ingesting.
	if err := s.vectors.DeleteCollection(ctx, book.CollectionName()); err != nil &&
		!errors.Is(err, domain.ErrCollectionNotFound) {
		return nil, fmt.Errorf("drop collection: %w", err)
	}
	if err := s.docs.DeleteChunks(ctx, book.ID); err != nil {
		return nil, fmt.Errorf("delete chunks: %w", err)
	}
	if err := s.books.UpdateStatus(ctx, book.ID, domain.StatusUnindexed, ""); err != nil {
		return nil, fmt.Errorf("reset status: %w", err)
	}
	book.Status = domain.StatusUnindexed

	if err := s.process(ctx, book); err != nil {
		return book, err
	}
	return s.books.GetBook(ctx, book.ID)
}

// RemoveBook deletes a book, its chunks and its vector collection.
func (s *LibraryService) RemoveBook(ctx context.Context, bookID string) error {
	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return err
	}

	if err := s.vectors.DeleteCollection(ctx, book.CollectionName()); err != nil &&
		!errors.Is(err, domain.ErrCollectionNotFound) {
		return fmt.Errorf("drop collection: %w", err)
	}

	// Chunk rows cascade with the book row.
	if err := s.books.DeleteBook(ctx, book.ID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	logger.Info("Removed book %s (%s)", book.ID, book.Title)
	return nil
}

// process drives a book through unindexed -> chunking -> embedding ->
// indexed. Any failure moves the book to failed with the cause recorded.
func (s *LibraryService) process(ctx context.Context, book *domain.Book) error {
	if err := s.run(ctx, book); err != nil {
		logger.Warn("Processing failed for book %s: %v", book.ID, err)
		if statusErr := s.books.UpdateStatus(ctx, book.ID, domain.StatusFailed, err.Error()); statusErr != nil {
			logger.Warn("Failed to record failure for book %s: %v", book.ID, statusErr)
		}
		return err
	}
	return nil
}

func (s *LibraryService) run(ctx context.Context, book *domain.Book) error {
	if err := s.books.UpdateStatus(ctx, book.ID, domain.StatusChunking, ""); err != nil {
		return fmt.Errorf("enter chunking: %w", err)
	}

	chunks, fileMeta, err := s.processor.ProcessDocument(ctx, book.FilePath, s.chunkSize, s.overlap)
	if err != nil {
		return fmt.Errorf("process document: %w", err)
	}
	logger.Debug("Book %s: %d chunks", book.ID, len(chunks))

	// Fill in metadata the caller did not provide.
	if book.Title == "" {
		book.Title = fileMeta.Title
	}
	if book.Author == "" {
		book.Author = fileMeta.Author
	}

	for i := range chunks {
		chunks[i].ID = domain.ChunkID(book.ID, i)
		chunks[i].DocumentID = book.ID
	}

	if err := s.books.UpdateStatus(ctx, book.ID, domain.StatusEmbedding, ""); err != nil {
		return fmt.Errorf("enter embedding: %w", err)
	}

	if s.embedder.Configured() {
		texts := make([]string, len(chunks))
		for i := range chunks {
			texts[i] = chunks[i].Content
		}
		vectors := s.embedder.GenerateBatch(ctx, texts)
		for i := range chunks {
			chunks[i].Embedding = vectors[i]
		}
	}

	// Relational store is the source of truth for chunk text; failed
	// embeddings are stored without a vector.
	if err := s.docs.SaveChunks(ctx, book.ID, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}

	collection := book.CollectionName()
	for i := range chunks {
		if s.embedder.Configured() && chunks[i].Embedding == nil {
			logger.Warn("Skipping unembedded chunk %s", chunks[i].ID)
			continue
		}
		err := s.vectors.Add(ctx, collection, driven.VectorDocument{
			ID:        chunks[i].ID,
			Content:   chunks[i].Content,
			Metadata:  chunks[i].Metadata,
			Embedding: chunks[i].Embedding,
		})
		if err != nil {
			return fmt.Errorf("index chunk %s: %w", chunks[i].ID, err)
		}
	}

	book.ChunkCount = len(chunks)
	book.Status = domain.StatusEmbedding
	if err := s.books.SaveBook(ctx, book); err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if err := s.books.UpdateStatus(ctx, book.ID, domain.StatusIndexed, ""); err != nil {
		return fmt.Errorf("enter indexed: %w", err)
	}

	logger.Info("Book %s indexed: %d chunks", book.ID, len(chunks))
	return nil
}

// indexedBook fetches a book and checks it is queryable.
func (s *LibraryService) indexedBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.Status != domain.StatusIndexed {
		return nil, fmt.Errorf("book %q has status %s: %w", book.Title, book.Status, domain.ErrInvalidInput)
	}
	return book, nil
}

// formatTag derives the stored format tag from a file extension.
func formatTag(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "markdown" {
		return "md"
	}
	return ext
}
