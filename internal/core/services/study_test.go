package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driven"
)

// newStudyFixture wires a study service over a mock vector store so
// retrieval results can be scripted.
func newStudyFixture(llm driven.LLMService) (*StudyService, *mockBookStore, *mockVectorStore) {
	books := newMockBookStore()
	vectors := newMockVectorStore()
	rag := NewRAGService(newTestProcessor(), vectors, llm)
	svc := NewStudyService(books, rag, llm)
	return svc, books, vectors
}

func indexedBook(t *testing.T, books *mockBookStore) *domain.Book {
	t.Helper()
	book := &domain.Book{
		ID:       "b1",
		Title:    "The Odyssey",
		Author:   "Homer",
		Year:     1996,
		FilePath: "/books/odyssey.epub",
		Status:   domain.StatusIndexed,
	}
	require.NoError(t, books.SaveBook(context.Background(), book))
	return book
}

func TestStudyService_Explain(t *testing.T) {
	llm := &mockLLM{response: "Xenia is the Greek custom of hospitality."}
	svc, books, vectors := newStudyFixture(llm)
	indexedBook(t, books)
	vectors.hits = sampleHits()

	response, err := svc.Explain(context.Background(), "b1", "xenia")

	require.NoError(t, err)
	assert.Contains(t, response, "Xenia is the Greek custom of hospitality.")
	assert.Contains(t, response, "Sources:")
	assert.Contains(t, response, "From: The Odyssey by Homer")
	assert.Contains(t, llm.lastPrompt, `"xenia"`)
	assert.Contains(t, llm.lastOpts.Context, "lightweight threads")
}

func TestStudyService_Explain_NoResults(t *testing.T) {
	llm := &mockLLM{response: "unused"}
	svc, books, _ := newStudyFixture(llm)
	indexedBook(t, books)

	response, err := svc.Explain(context.Background(), "b1", "xenia")

	require.NoError(t, err)
	assert.Equal(t, NoResultsResponse, response)
	assert.Zero(t, llm.calls)
}

func TestStudyService_Explain_LLMFailure(t *testing.T) {
	svc, books, vectors := newStudyFixture(&mockLLM{err: errors.New("overloaded")})
	indexedBook(t, books)
	vectors.hits = sampleHits()

	response, err := svc.Explain(context.Background(), "b1", "xenia")

	require.NoError(t, err)
	assert.Equal(t, ErrorFallbackResponse, response)
}

func TestStudyService_Explain_UnindexedBook(t *testing.T) {
	svc, books, _ := newStudyFixture(&mockLLM{})
	require.NoError(t, books.SaveBook(context.Background(), &domain.Book{
		ID: "b1", Status: domain.StatusChunking,
	}))

	_, err := svc.Explain(context.Background(), "b1", "xenia")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStudyService_Summarise(t *testing.T) {
	llm := &mockLLM{response: "A war veteran sails home for ten years."}
	svc, books, vectors := newStudyFixture(llm)
	indexedBook(t, books)
	vectors.hits = sampleHits()

	response, err := svc.Summarise(context.Background(), "b1", "the voyage")

	require.NoError(t, err)
	assert.Contains(t, response, "A war veteran sails home for ten years.")
	assert.Contains(t, response, "Source: The Odyssey")
	// Content travels inside the prompt for summaries
	assert.Contains(t, llm.lastPrompt, "lightweight threads")
	assert.Empty(t, llm.lastOpts.Context)
}

func TestStudyService_Summarise_EmptyTopicUsesTitle(t *testing.T) {
	llm := &mockLLM{response: "Summary."}
	svc, books, vectors := newStudyFixture(llm)
	indexedBook(t, books)
	vectors.hits = sampleHits()

	_, err := svc.Summarise(context.Background(), "b1", "")

	require.NoError(t, err)
	assert.Equal(t, 1, llm.calls)
}

func TestStudyService_Quiz(t *testing.T) {
	llm := &mockLLM{response: `Here you go:
[
  {"question": "Who blinded Polyphemus?", "answer": "Odysseus"},
  {"question": "Who wove a shroud by day?", "answer": "Penelope"}
]`}
	svc, books, vectors := newStudyFixture(llm)
	indexedBook(t, books)
	vectors.hits = sampleHits()

	items, err := svc.Quiz(context.Background(), "b1", "characters", 2)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Who blinded Polyphemus?", items[0].Question)
	assert.Equal(t, "Penelope", items[1].Answer)
	assert.Contains(t, llm.lastPrompt, "2 quiz questions")
}

func TestStudyService_Quiz_MalformedOutput(t *testing.T) {
	llm := &mockLLM{response: "Sorry, I can't produce JSON today."}
	svc, books, vectors := newStudyFixture(llm)
	indexedBook(t, books)
	vectors.hits = sampleHits()

	_, err := svc.Quiz(context.Background(), "b1", "characters", 2)

	assert.Error(t, err)
}

func TestStudyService_Quiz_NoContent(t *testing.T) {
	svc, books, _ := newStudyFixture(&mockLLM{})
	indexedBook(t, books)

	_, err := svc.Quiz(context.Background(), "b1", "characters", 2)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStudyService_Flashcards(t *testing.T) {
	llm := &mockLLM{response: "```json\n[{\"front\": \"Ithaca\", \"back\": \"Home island of Odysseus\"}]\n```"}
	svc, books, vectors := newStudyFixture(llm)
	indexedBook(t, books)
	vectors.hits = sampleHits()

	cards, err := svc.Flashcards(context.Background(), "b1", "places", 1)

	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Ithaca", cards[0].Front)
	assert.Equal(t, "Home island of Odysseus", cards[0].Back)
}

func TestStudyService_Flashcards_UnknownBook(t *testing.T) {
	svc, _, _ := newStudyFixture(&mockLLM{})

	_, err := svc.Flashcards(context.Background(), "missing", "places", 1)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStudyService_CustomPrompts(t *testing.T) {
	llm := &mockLLM{response: "Explained."}
	svc, books, vectors := newStudyFixture(llm)
	indexedBook(t, books)
	vectors.hits = sampleHits()

	prompts := &mockPromptStore{prompts: map[string]string{
		driven.PromptExplain: "Custom template for %s",
	}}
	svc.SetPromptStore(prompts)

	_, err := svc.Explain(context.Background(), "b1", "xenia")

	require.NoError(t, err)
	assert.Equal(t, "Custom template for xenia", llm.lastPrompt)
	assert.Contains(t, prompts.loads, driven.PromptExplain)
}

func TestStudyService_PromptStoreFailureFallsBack(t *testing.T) {
	llm := &mockLLM{response: "Explained."}
	svc, books, vectors := newStudyFixture(llm)
	indexedBook(t, books)
	vectors.hits = sampleHits()
	svc.SetPromptStore(&mockPromptStore{})

	_, err := svc.Explain(context.Background(), "b1", "xenia")

	require.NoError(t, err)
	assert.Contains(t, llm.lastPrompt, `"xenia"`)
}

func TestJSONArrayExtraction(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"bare array", `[1,2]`, `[1,2]`},
		{"fenced", "```json\n[1,2]\n```", `[1,2]`},
		{"prose around", "Sure: [1,2] hope that helps", `[1,2]`},
		{"no array", "nothing here", "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, string(jsonArray(tt.input)))
		})
	}
}
