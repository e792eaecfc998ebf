// Package memory provides an in-process vector store. Suitable for tests
// and small libraries; everything lives in maps guarded by one RWMutex.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store keeps vector documents per collection in memory.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]driven.VectorDocument
	embedder    driven.EmbeddingService
}

// New creates a memory store. The embedder is used to compute embeddings
// for documents added without one and for text queries; it may be nil when
// callers always supply vectors.
func New(embedder driven.EmbeddingService) *Store {
	return &Store{
		collections: make(map[string]map[string]driven.VectorDocument),
		embedder:    embedder,
	}
}

// Add upserts a document, computing its embedding when absent.
func (s *Store) Add(ctx context.Context, collection string, doc driven.VectorDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document ID required", domain.ErrInvalidInput)
	}

	if doc.Embedding == nil {
		if s.embedder == nil {
			return fmt.Errorf("%w: no embedding provided and no embedder configured", domain.ErrEmbeddingUnavailable)
		}
		vector, err := s.embedder.Embed(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("embed document %s: %w", doc.ID, err)
		}
		doc.Embedding = vector
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]driven.VectorDocument)
		s.collections[collection] = docs
	}

	// All vectors in a collection share one dimension.
	for _, existing := range docs {
		if len(existing.Embedding) != len(doc.Embedding) {
			return fmt.Errorf("%w: collection %s holds %d-dimensional vectors, document %s has %d",
				domain.ErrDimensionMismatch, collection, len(existing.Embedding), doc.ID, len(doc.Embedding))
		}
		break
	}

	docs[doc.ID] = doc
	return nil
}

// Search embeds the query and returns the n nearest documents by cosine
// distance.
func (s *Store) Search(ctx context.Context, collection, query string, n int) ([]driven.VectorHit, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: text search requires an embedder", domain.ErrEmbeddingUnavailable)
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.SearchByVector(ctx, collection, vector, n)
}

// SearchByVector returns the n nearest documents to a query vector,
// ascending by cosine distance.
func (s *Store) SearchByVector(_ context.Context, collection string, vector []float32, n int) ([]driven.VectorHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
	}
	if n <= 0 {
		n = domain.DefaultSearchResults
	}

	hits := make([]driven.VectorHit, 0, len(docs))
	for _, doc := range docs {
		score := cosineSimilarity(vector, doc.Embedding)
		if math.IsNaN(score) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ID:       doc.ID,
			Content:  doc.Content,
			Distance: 1 - score,
			Metadata: doc.Metadata,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})

	if len(hits) > n {
		hits = hits[:n]
	}
	return hits, nil
}

// Get retrieves a stored document by ID.
func (s *Store) Get(_ context.Context, collection, id string) (*driven.VectorDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
	}
	doc, ok := docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return &doc, nil
}

// Delete removes a document. Deleting a missing ID is a no-op.
func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if docs, ok := s.collections[collection]; ok {
		delete(docs, id)
	}
	return nil
}

// ListIDs returns all document IDs in a collection, sorted for
// deterministic iteration.
func (s *Store) ListIDs(_ context.Context, collection string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
	}

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// DeleteCollection drops an entire collection.
func (s *Store) DeleteCollection(_ context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections, collection)
	return nil
}

// Close releases nothing; the store is garbage collected.
func (s *Store) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		na += av * av
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
