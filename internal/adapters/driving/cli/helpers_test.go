package cli

import (
	"context"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driving"
)

// setupTestServices installs stub services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	oldLibrary := libraryService
	oldStudy := studyService
	oldWatcher := watchRunner

	libraryService = &stubLibrary{}
	studyService = &stubStudy{}
	watchRunner = &stubWatcher{}

	return func() {
		libraryService = oldLibrary
		studyService = oldStudy
		watchRunner = oldWatcher
	}
}

func stubBook() *domain.Book {
	return &domain.Book{
		ID:         "book-1",
		Title:      "The Odyssey",
		Author:     "Homer",
		FilePath:   "/books/odyssey.epub",
		Status:     domain.StatusIndexed,
		ChunkCount: 42,
	}
}

type stubLibrary struct {
	removed []string
	added   []string
}

func (s *stubLibrary) AddBook(_ context.Context, path string, meta domain.BookInfo) (*domain.Book, error) {
	s.added = append(s.added, path)
	book := stubBook()
	if meta.Title != "" {
		book.Title = meta.Title
	}
	if meta.Author != "" {
		book.Author = meta.Author
	}
	return book, nil
}

func (s *stubLibrary) GetBook(_ context.Context, id string) (*domain.Book, error) {
	if id != "book-1" {
		return nil, domain.ErrNotFound
	}
	return stubBook(), nil
}

func (s *stubLibrary) ListBooks(_ context.Context) ([]*domain.Book, error) {
	return []*domain.Book{stubBook()}, nil
}

func (s *stubLibrary) Ask(_ context.Context, _, _ string, _ int) (*domain.Answer, error) {
	return &domain.Answer{
		Response: "Odysseus returns to Ithaca.",
		Sources: []domain.Source{{
			ID:             "book-1_chunk_0",
			FileName:       "odyssey.epub",
			ChunkIndex:     0,
			PageNumber:     12,
			SectionTitle:   "Book XIII",
			ContentPreview: "Then Odysseus rose...",
		}},
	}, nil
}

func (s *stubLibrary) Search(_ context.Context, _, _ string, _ int) ([]domain.SearchResult, error) {
	return []domain.SearchResult{{
		ID:            "book-1_chunk_0",
		Content:       "Then Odysseus rose and spoke among them.",
		Distance:      0.12,
		Citation:      "Homer. Book: The Odyssey.",
		CitationOrder: 1,
	}}, nil
}

func (s *stubLibrary) Reindex(_ context.Context, _ string) (*domain.Book, error) {
	return stubBook(), nil
}

func (s *stubLibrary) RemoveBook(_ context.Context, id string) error {
	s.removed = append(s.removed, id)
	return nil
}

type stubStudy struct{}

func (s *stubStudy) Explain(_ context.Context, _, concept string) (string, error) {
	return "An explanation of " + concept + ".", nil
}

func (s *stubStudy) Summarise(_ context.Context, _, _ string) (string, error) {
	return "A short summary.", nil
}

func (s *stubStudy) Quiz(_ context.Context, _, _ string, n int) ([]driving.QuizItem, error) {
	items := make([]driving.QuizItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, driving.QuizItem{Question: "Who is Odysseus?", Answer: "King of Ithaca."})
	}
	return items, nil
}

func (s *stubStudy) Flashcards(_ context.Context, _, _ string, n int) ([]driving.Flashcard, error) {
	cards := make([]driving.Flashcard, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, driving.Flashcard{Front: "Ithaca", Back: "Odysseus' home island."})
	}
	return cards, nil
}

type stubWatcher struct {
	dirs []string
}

func (s *stubWatcher) Watch(_ context.Context, dir string) error {
	s.dirs = append(s.dirs, dir)
	return nil
}
