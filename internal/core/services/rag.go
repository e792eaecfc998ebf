package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driven"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driving"
	"github.com/bookwise-ai/bookwise/internal/extract"
	"github.com/bookwise-ai/bookwise/internal/logger"
)

// Ensure RAGService implements the interface.
var _ driving.RAGService = (*RAGService)(nil)

// Fixed responses for query answering. These are returned verbatim so
// callers and frontends can rely on them.
const (
	// NoResultsResponse is returned when retrieval finds nothing. The LLM
	// is not called in that case.
	NoResultsResponse = "I couldn't find any relevant information in the documents to answer your query."

	// ErrorFallbackResponse is returned when retrieval or generation
	// fails. Query never surfaces the underlying error to the caller.
	ErrorFallbackResponse = "I encountered an error while processing your query. Please try again."
)

// RAGService implements retrieval-augmented question answering over a
// vector collection: ingest documents, retrieve relevant chunks, ground
// the LLM on them.
type RAGService struct {
	processor *extract.Processor
	vectors   driven.VectorStore
	llm       driven.LLMService

	chunkSize int
	overlap   int
}

// NewRAGService creates a new RAG service. The llm parameter is optional;
// without it Query degrades to the error fallback and raw search still
// works.
func NewRAGService(
	processor *extract.Processor,
	vectors driven.VectorStore,
	llm driven.LLMService,
) *RAGService {
	return &RAGService{
		processor: processor,
		vectors:   vectors,
		llm:       llm,
	}
}

// SetChunking overrides the default chunking parameters for ingestion.
// Zero values keep the defaults.
func (s *RAGService) SetChunking(chunkSize, overlap int) {
	s.chunkSize = chunkSize
	s.overlap = overlap
}

// AddDocument processes a file into chunks and indexes them under the
// given document ID. Chunk IDs follow the `{docID}_chunk_{n}` convention
// that DeleteDocument relies on for cascade removal.
func (s *RAGService) AddDocument(ctx context.Context, collection, docID, path string) (int, error) {
	logger.Section("Document Ingestion")
	logger.Debug("Collection: %s, document: %s, path: %s", collection, docID, path)

	chunks, _, err := s.processor.ProcessDocument(ctx, path, s.chunkSize, s.overlap)
	if err != nil {
		return 0, fmt.Errorf("process document: %w", err)
	}
	logger.Debug("Produced %d chunks", len(chunks))

	for i := range chunks {
		chunks[i].ID = domain.ChunkID(docID, i)
		chunks[i].DocumentID = docID

		err := s.vectors.Add(ctx, collection, driven.VectorDocument{
			ID:        chunks[i].ID,
			Content:   chunks[i].Content,
			Metadata:  chunks[i].Metadata,
			Embedding: chunks[i].Embedding,
		})
		if err != nil {
			logger.Warn("Failed to index chunk %s: %v", chunks[i].ID, err)
			return i, fmt.Errorf("add chunk %s: %w", chunks[i].ID, domain.ErrIngestionAborted)
		}
	}

	logger.Info("Indexed %d chunks for document %s", len(chunks), docID)
	return len(chunks), nil
}

// Query answers a question from the collection's content. It never
// returns an error: zero retrieval results, including a collection that
// does not exist yet, yield NoResultsResponse without calling the LLM,
// and any failure yields ErrorFallbackResponse.
func (s *RAGService) Query(ctx context.Context, collection, question string, nResults int) string {
	logger.Section("RAG Query")
	logger.Debug("Collection: %s, question: %q", collection, question)

	hits, err := s.vectors.Search(ctx, collection, question, nResults)
	if err != nil {
		// A collection that was never written to is a book with no
		// indexed content, not a store failure.
		if errors.Is(err, domain.ErrCollectionNotFound) {
			logger.Debug("Collection %s does not exist", collection)
			return NoResultsResponse
		}
		logger.Warn("Retrieval failed: %v", err)
		return ErrorFallbackResponse
	}
	if len(hits) == 0 {
		logger.Debug("No relevant chunks found")
		return NoResultsResponse
	}

	// Tag each passage with its source file so the model can attribute.
	parts := make([]string, len(hits))
	for i, hit := range hits {
		if hit.Metadata.FileName != "" {
			parts[i] = fmt.Sprintf("%s (Source: %s)", hit.Content, hit.Metadata.FileName)
		} else {
			parts[i] = hit.Content
		}
	}

	response, err := s.generate(ctx, question, strings.Join(parts, "\n\n"))
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return ErrorFallbackResponse
	}
	return response
}

// QueryWithSources is Query plus the retrieved passages that grounded the
// answer. The fallback responses carry an empty source list.
func (s *RAGService) QueryWithSources(
	ctx context.Context, collection, question string, nResults int,
) *domain.Answer {
	logger.Section("RAG Query With Sources")
	logger.Debug("Collection: %s, question: %q", collection, question)

	hits, err := s.vectors.Search(ctx, collection, question, nResults)
	if err != nil {
		if errors.Is(err, domain.ErrCollectionNotFound) {
			return &domain.Answer{Response: NoResultsResponse, Sources: []domain.Source{}}
		}
		logger.Warn("Retrieval failed: %v", err)
		return &domain.Answer{Response: ErrorFallbackResponse, Sources: []domain.Source{}}
	}
	if len(hits) == 0 {
		return &domain.Answer{Response: NoResultsResponse, Sources: []domain.Source{}}
	}

	parts := make([]string, len(hits))
	sources := make([]domain.Source, len(hits))
	for i, hit := range hits {
		parts[i] = hit.Content
		sources[i] = domain.Source{
			ID:             hit.ID,
			Distance:       hit.Distance,
			FileName:       hit.Metadata.FileName,
			ChunkIndex:     hit.Metadata.ChunkIndex,
			PageNumber:     hit.Metadata.PageNumber,
			SectionTitle:   hit.Metadata.SectionTitle,
			ContentPreview: domain.Preview(hit.Content),
		}
	}

	response, err := s.generate(ctx, question, strings.Join(parts, "\n\n"))
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return &domain.Answer{Response: ErrorFallbackResponse, Sources: []domain.Source{}}
	}

	return &domain.Answer{Response: response, Sources: sources}
}

// SearchSimilarContent returns raw nearest-neighbour results without LLM
// generation. A collection that does not exist yet yields an empty result,
// not an error; store failures are returned.
func (s *RAGService) SearchSimilarContent(
	ctx context.Context, collection, query string, nResults int,
) ([]domain.SearchResult, error) {
	hits, err := s.vectors.Search(ctx, collection, query, nResults)
	if err != nil {
		if errors.Is(err, domain.ErrCollectionNotFound) {
			return []domain.SearchResult{}, nil
		}
		return nil, fmt.Errorf("search similar content: %w", err)
	}

	results := make([]domain.SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = domain.SearchResult{
			ID:       hit.ID,
			Content:  hit.Content,
			Distance: hit.Distance,
			Metadata: hit.Metadata,
		}
	}
	return results, nil
}

// DeleteDocument removes every chunk belonging to a document, identified
// by the chunk ID prefix. Returns the number of chunks removed.
func (s *RAGService) DeleteDocument(ctx context.Context, collection, docID string) (int, error) {
	ids, err := s.vectors.ListIDs(ctx, collection)
	if err != nil {
		if errors.Is(err, domain.ErrCollectionNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("list chunk ids: %w", err)
	}

	deleted := 0
	for _, id := range ids {
		if !domain.BelongsTo(id, docID) {
			continue
		}
		if err := s.vectors.Delete(ctx, collection, id); err != nil {
			return deleted, fmt.Errorf("delete chunk %s: %w", id, err)
		}
		deleted++
	}

	logger.Debug("Deleted %d chunks for document %s", deleted, docID)
	return deleted, nil
}

// generate runs grounded text generation with the default RAG parameters.
func (s *RAGService) generate(ctx context.Context, question, contextText string) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	return s.llm.Generate(ctx, question, driven.GenerateOptions{
		Context:     contextText,
		Temperature: driven.DefaultTemperature,
		MaxTokens:   driven.DefaultMaxTokens,
	})
}
