package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockVectorStore implements driven.VectorStore with configurable errors.
type mockVectorStore struct {
	mu        sync.Mutex
	docs      map[string]map[string]driven.VectorDocument
	hits      []driven.VectorHit
	addErr    error
	searchErr error
	deleteErr error
	listErr   error
}

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{docs: make(map[string]map[string]driven.VectorDocument)}
}

func (m *mockVectorStore) Add(_ context.Context, collection string, doc driven.VectorDocument) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]driven.VectorDocument)
	}
	m.docs[collection][doc.ID] = doc
	return nil
}

func (m *mockVectorStore) Search(_ context.Context, collection, _ string, n int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if n > 0 && n < len(m.hits) {
		return m.hits[:n], nil
	}
	return m.hits, nil
}

func (m *mockVectorStore) SearchByVector(ctx context.Context, collection string, _ []float32, n int) ([]driven.VectorHit, error) {
	return m.Search(ctx, collection, "", n)
}

func (m *mockVectorStore) Get(_ context.Context, collection, id string) (*driven.VectorDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (m *mockVectorStore) Delete(_ context.Context, collection, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs[collection], id)
	return nil
}

func (m *mockVectorStore) ListIDs(_ context.Context, collection string) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.docs[collection]))
	for id := range m.docs[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockVectorStore) DeleteCollection(_ context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, collection)
	return nil
}

func (m *mockVectorStore) Close() error { return nil }

func (m *mockVectorStore) stored(collection string) []string {
	ids, _ := m.ListIDs(context.Background(), collection)
	return ids
}

// mockLLM implements driven.LLMService and records the last request.
type mockLLM struct {
	response string
	err      error

	lastPrompt string
	lastOpts   driven.GenerateOptions
	calls      int
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	m.lastOpts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockEmbedder implements driven.EmbeddingService with word-overlap
// vectors: texts sharing words get similar embeddings.
type mockEmbedder struct {
	err error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	vec := make([]float32, 8)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		var sum int
		for _, r := range word {
			sum += int(r)
		}
		vec[sum%8]++
	}
	return vec, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return 8 }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockBookStore implements driven.BookStore in memory and records status
// transitions.
type mockBookStore struct {
	mu          sync.Mutex
	books       map[string]*domain.Book
	transitions []domain.BookStatus

	saveErr   error
	updateErr error
}

func newMockBookStore() *mockBookStore {
	return &mockBookStore{books: make(map[string]*domain.Book)}
}

func (m *mockBookStore) SaveBook(_ context.Context, book *domain.Book) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *book
	m.books[book.ID] = &copied
	return nil
}

func (m *mockBookStore) GetBook(_ context.Context, id string) (*domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	book, ok := m.books[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *book
	return &copied, nil
}

func (m *mockBookStore) GetBookByPath(_ context.Context, path string) (*domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, book := range m.books {
		if book.FilePath == path {
			copied := *book
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockBookStore) ListBooks(_ context.Context) ([]*domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	books := make([]*domain.Book, 0, len(m.books))
	for _, book := range m.books {
		copied := *book
		books = append(books, &copied)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

func (m *mockBookStore) UpdateStatus(_ context.Context, id string, status domain.BookStatus, processingError string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	book, ok := m.books[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !book.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, book.Status, status)
	}
	book.Status = status
	book.ProcessingError = processingError
	m.transitions = append(m.transitions, status)
	return nil
}

func (m *mockBookStore) DeleteBook(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *mockBookStore) Close() error { return nil }

// mockDocumentStore implements driven.DocumentStore in memory.
type mockDocumentStore struct {
	mu      sync.Mutex
	chunks  map[string][]domain.Chunk
	saveErr error
}

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{chunks: make(map[string][]domain.Chunk)}
}

func (m *mockDocumentStore) SaveChunks(_ context.Context, docID string, chunks []domain.Chunk) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[docID] = append([]domain.Chunk(nil), chunks...)
	return nil
}

func (m *mockDocumentStore) GetChunks(_ context.Context, docID string) ([]domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Chunk(nil), m.chunks[docID]...), nil
}

func (m *mockDocumentStore) DeleteChunks(_ context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chunks, docID)
	return nil
}

func (m *mockDocumentStore) CountChunks(_ context.Context, docID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks[docID]), nil
}

// mockPromptStore implements driven.PromptStore with fixed templates.
type mockPromptStore struct {
	prompts map[string]string
	loads   []string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	m.loads = append(m.loads, name)
	if tpl, ok := m.prompts[name]; ok {
		return tpl, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}
