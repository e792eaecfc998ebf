// Package qdrant provides a vector store backed by a Qdrant server,
// accessed over its REST API. One Qdrant collection per book collection;
// collections are created on first write with the embedder's dimension
// and cosine distance.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// pointNamespace seeds deterministic point UUIDs. Qdrant only accepts
// UUID or integer point IDs, so chunk IDs live in the payload and the
// point ID is derived from them.
var pointNamespace = uuid.MustParse("8cb90b62-35a5-4b79-9cfa-2f1c65a3b901")

// Config holds Qdrant connection settings.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Store is a minimal REST client to Qdrant.
type Store struct {
	url      string
	apiKey   string
	client   *http.Client
	embedder driven.EmbeddingService

	mu      sync.Mutex
	created map[string]bool
}

// New creates a Qdrant store. The embedder supplies vectors for documents
// added without one and for text queries.
func New(cfg Config, embedder driven.EmbeddingService) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:      cfg.URL,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
		embedder: embedder,
		created:  make(map[string]bool),
	}
}

// payload is the wire format of a stored chunk.
type payload struct {
	ChunkID      string `json:"chunk_id"`
	Content      string `json:"content"`
	FileName     string `json:"file_name,omitempty"`
	FileType     string `json:"file_type,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	ChunkIndex   int    `json:"chunk_index"`
	TotalChunks  int    `json:"total_chunks,omitempty"`
	ChunkSize    int    `json:"chunk_size,omitempty"`
	StartPos     int    `json:"start_pos,omitempty"`
	EndPos       int    `json:"end_pos,omitempty"`
	PageNumber   int    `json:"page_number,omitempty"`
	SectionTitle string `json:"section_title,omitempty"`
	Chapter      string `json:"chapter,omitempty"`
	FirstChunk   bool   `json:"first_chunk,omitempty"`
	LastChunk    bool   `json:"last_chunk,omitempty"`
}

func toPayload(id, content string, m domain.ChunkMetadata) payload {
	return payload{
		ChunkID:      id,
		Content:      content,
		FileName:     m.FileName,
		FileType:     m.FileType,
		FileSize:     m.FileSize,
		Title:        m.Title,
		Author:       m.Author,
		ChunkIndex:   m.ChunkIndex,
		TotalChunks:  m.TotalChunks,
		ChunkSize:    m.ChunkSize,
		StartPos:     m.StartPos,
		EndPos:       m.EndPos,
		PageNumber:   m.PageNumber,
		SectionTitle: m.SectionTitle,
		Chapter:      m.Chapter,
		FirstChunk:   m.FirstChunk,
		LastChunk:    m.LastChunk,
	}
}

func (p payload) metadata() domain.ChunkMetadata {
	return domain.ChunkMetadata{
		FileName:     p.FileName,
		FileType:     p.FileType,
		FileSize:     p.FileSize,
		Title:        p.Title,
		Author:       p.Author,
		ChunkIndex:   p.ChunkIndex,
		TotalChunks:  p.TotalChunks,
		ChunkSize:    p.ChunkSize,
		StartPos:     p.StartPos,
		EndPos:       p.EndPos,
		PageNumber:   p.PageNumber,
		SectionTitle: p.SectionTitle,
		Chapter:      p.Chapter,
		FirstChunk:   p.FirstChunk,
		LastChunk:    p.LastChunk,
	}
}

// pointID derives the deterministic Qdrant point UUID for a chunk.
func pointID(collection, chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(collection+"/"+chunkID)).String()
}

// ensureCollection creates the collection if this process has not yet.
func (s *Store) ensureCollection(ctx context.Context, collection string) error {
	s.mu.Lock()
	already := s.created[collection]
	s.mu.Unlock()
	if already {
		return nil
	}

	if s.embedder == nil {
		return fmt.Errorf("%w: collection creation requires an embedder for its dimension", domain.ErrEmbeddingUnavailable)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.embedder.Dimensions(),
			"distance": "Cosine",
		},
	}
	// Qdrant returns 409 when the collection already exists; treat that
	// as success.
	if err := s.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", s.url, collection), body, nil, http.StatusConflict); err != nil {
		return err
	}

	s.mu.Lock()
	s.created[collection] = true
	s.mu.Unlock()
	return nil
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

	if err := s.ensureCollection(ctx, collection); err != nil {
		return err
	}

	body := map[string]any{
		"points": []map[string]any{{
			"id":      pointID(collection, doc.ID),
			"vector":  doc.Embedding,
			"payload": toPayload(doc.ID, doc.Content, doc.Metadata),
		}},
	}
	return s.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, collection), body, nil)
}

// Search embeds the query and returns the n nearest documents.
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

// SearchByVector returns the n nearest documents to a query vector.
func (s *Store) SearchByVector(ctx context.Context, collection string, vector []float32, n int) ([]driven.VectorHit, error) {
	if n <= 0 {
		n = domain.DefaultSearchResults
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        n,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload payload `json:"payload"`
		} `json:"result"`
	}
	err := s.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/search", s.url, collection), req, &resp)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
		}
		return nil, err
	}

	hits := make([]driven.VectorHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, driven.VectorHit{
			ID:      r.Payload.ChunkID,
			Content: r.Payload.Content,
			// Qdrant reports cosine similarity as the score.
			Distance: 1 - r.Score,
			Metadata: r.Payload.metadata(),
		})
	}
	return hits, nil
}

// Get retrieves a stored document by chunk ID.
func (s *Store) Get(ctx context.Context, collection, id string) (*driven.VectorDocument, error) {
	req := map[string]any{
		"ids":          []string{pointID(collection, id)},
		"with_payload": true,
		"with_vector":  true,
	}
	var resp struct {
		Result []struct {
			Vector  []float32 `json:"vector"`
			Payload payload   `json:"payload"`
		} `json:"result"`
	}
	err := s.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points", s.url, collection), req, &resp)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
		}
		return nil, err
	}
	if len(resp.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	r := resp.Result[0]
	return &driven.VectorDocument{
		ID:        r.Payload.ChunkID,
		Content:   r.Payload.Content,
		Metadata:  r.Payload.metadata(),
		Embedding: r.Vector,
	}, nil
}

// Delete removes a document by chunk ID. Missing IDs are a no-op.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	body := map[string]any{
		"points": []string{pointID(collection, id)},
	}
	err := s.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/delete?wait=true", s.url, collection), body, nil)
	if err != nil && isNotFound(err) {
		return nil
	}
	return err
}

// ListIDs scrolls the whole collection and returns every chunk ID.
func (s *Store) ListIDs(ctx context.Context, collection string) ([]string, error) {
	var ids []string
	var offset any

	for {
		req := map[string]any{
			"limit":        256,
			"with_payload": []string{"chunk_id"},
		}
		if offset != nil {
			req["offset"] = offset
		}

		var resp struct {
			Result struct {
				Points []struct {
					Payload payload `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		err := s.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/scroll", s.url, collection), req, &resp)
		if err != nil {
			if isNotFound(err) {
				return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
			}
			return nil, err
		}

		for _, p := range resp.Result.Points {
			ids = append(ids, p.Payload.ChunkID)
		}
		if resp.Result.NextPageOffset == nil {
			return ids, nil
		}
		offset = resp.Result.NextPageOffset
	}
}

// DeleteCollection drops the Qdrant collection.
func (s *Store) DeleteCollection(ctx context.Context, collection string) error {
	err := s.doJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, collection), nil, nil)
	if err != nil && isNotFound(err) {
		return nil
	}

	s.mu.Lock()
	delete(s.created, collection)
	s.mu.Unlock()
	return err
}

// Close shuts down idle connections.
func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// statusError carries the HTTP status of a failed Qdrant call.
type statusError struct {
	status int
	method string
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant %s %s failed: status %d", e.method, e.url, e.status)
}

func isNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.status == http.StatusNotFound
}

// doJSON performs one JSON request. Statuses listed in okStatuses are
// accepted in addition to 2xx.
func (s *Store) doJSON(ctx context.Context, method, url string, body, out any, okStatuses ...int) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrVectorStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		accepted := false
		for _, code := range okStatuses {
			if resp.StatusCode == code {
				accepted = true
				break
			}
		}
		if !accepted {
			return &statusError{status: resp.StatusCode, method: method, url: url}
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
