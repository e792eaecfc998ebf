package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driven"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driving"
	"github.com/bookwise-ai/bookwise/internal/logger"
)

// Ensure StudyService implements the interfaces.
var (
	_ driving.StudyService    = (*StudyService)(nil)
	_ driven.PromptStoreAware = (*StudyService)(nil)
)

// StudyService builds study material from a book's indexed content. Every
// operation retrieves relevant passages and grounds the LLM on them; the
// string-returning operations mirror the query fallback policy, the
// structured ones return errors.
type StudyService struct {
	books     driven.BookStore
	rag       *RAGService
	llm       driven.LLMService
	prompts   driven.PromptStore
	citations *CitationService
}

// NewStudyService creates a new study service. The prompt store is
// optional; without it embedded default prompts are used.
func NewStudyService(books driven.BookStore, rag *RAGService, llm driven.LLMService) *StudyService {
	return &StudyService{
		books:     books,
		rag:       rag,
		llm:       llm,
		citations: NewCitationService(),
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *StudyService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Explain answers "explain this concept" using passages from the book
// that mention it.
func (s *StudyService) Explain(ctx context.Context, bookID, concept string) (string, error) {
	logger.Section("Explain")

	book, results, err := s.retrieve(ctx, bookID, concept)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return NoResultsResponse, nil
	}

	prompt := fmt.Sprintf(s.template(driven.PromptExplain), concept)
	response, err := s.generate(ctx, prompt, contextFrom(results))
	if err != nil {
		logger.Warn("Explanation failed: %v", err)
		return ErrorFallbackResponse, nil
	}

	return response + s.sourcesBlock(results, book.Info(), CitationContextExplanation), nil
}

// Summarise produces a summary of the book's retrieved content for a
// topic, or of the book overall when topic is empty.
func (s *StudyService) Summarise(ctx context.Context, bookID, topic string) (string, error) {
	logger.Section("Summarise")

	query := topic
	if query == "" {
		book, err := s.books.GetBook(ctx, bookID)
		if err != nil {
			return "", err
		}
		query = book.Title
	}

	book, results, err := s.retrieve(ctx, bookID, query)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return NoResultsResponse, nil
	}

	prompt := fmt.Sprintf(s.template(driven.PromptSummarise), contextFrom(results))
	response, err := s.generate(ctx, prompt, "")
	if err != nil {
		logger.Warn("Summary failed: %v", err)
		return ErrorFallbackResponse, nil
	}

	return response + s.sourcesBlock(results, book.Info(), CitationContextSummary), nil
}

// Quiz generates n open questions with answers from the book.
func (s *StudyService) Quiz(ctx context.Context, bookID, topic string, n int) ([]driving.QuizItem, error) {
	logger.Section("Quiz")

	output, err := s.generateStructured(ctx, bookID, topic, driven.PromptQuiz, n)
	if err != nil {
		return nil, err
	}

	var items []driving.QuizItem
	if err := json.Unmarshal(jsonArray(output), &items); err != nil {
		return nil, fmt.Errorf("parse quiz output: %w", err)
	}
	return items, nil
}

// Flashcards generates n front/back flashcards from the book.
func (s *StudyService) Flashcards(ctx context.Context, bookID, topic string, n int) ([]driving.Flashcard, error) {
	logger.Section("Flashcards")

	output, err := s.generateStructured(ctx, bookID, topic, driven.PromptFlashcards, n)
	if err != nil {
		return nil, err
	}

	var cards []driving.Flashcard
	if err := json.Unmarshal(jsonArray(output), &cards); err != nil {
		return nil, fmt.Errorf("parse flashcard output: %w", err)
	}
	return cards, nil
}

// generateStructured runs the retrieve-then-prompt flow for JSON-producing
// templates.
func (s *StudyService) generateStructured(
	ctx context.Context, bookID, topic, promptName string, n int,
) (string, error) {
	query := topic
	if query == "" {
		book, err := s.books.GetBook(ctx, bookID)
		if err != nil {
			return "", err
		}
		query = book.Title
	}

	_, results, err := s.retrieve(ctx, bookID, query)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", fmt.Errorf("no content for topic %q: %w", topic, domain.ErrNotFound)
	}

	prompt := fmt.Sprintf(s.template(promptName), n, contextFrom(results))
	output, err := s.generate(ctx, prompt, "")
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", promptName, err)
	}
	return output, nil
}

// retrieve fetches the book and its most relevant passages for a query.
func (s *StudyService) retrieve(
	ctx context.Context, bookID, query string,
) (*domain.Book, []domain.SearchResult, error) {
	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return nil, nil, err
	}
	if book.Status != domain.StatusIndexed {
		return nil, nil, fmt.Errorf("book %q has status %s: %w",
			book.Title, book.Status, domain.ErrInvalidInput)
	}

	results, err := s.rag.SearchSimilarContent(ctx, book.CollectionName(), query, domain.DefaultSearchResults)
	if err != nil {
		return nil, nil, err
	}
	return book, results, nil
}

func (s *StudyService) generate(ctx context.Context, prompt, contextText string) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	return s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		Context:     contextText,
		Temperature: driven.DefaultTemperature,
		MaxTokens:   driven.DefaultMaxTokens,
	})
}

// template loads a prompt template, falling back to the embedded default
// when no prompt store is configured.
func (s *StudyService) template(name string) string {
	if s.prompts != nil {
		if tpl, err := s.prompts.Load(name); err == nil && tpl != "" {
			return tpl
		}
	}
	return defaultTemplates[name]
}

// defaultTemplates are the prompts used when no prompt store is set.
var defaultTemplates = map[string]string{
	driven.PromptExplain: `Explain %q in clear, simple terms for a reader studying this book. Ground the explanation in the provided context.`,

	driven.PromptSummarise: `Summarise the following book content. Be concise and capture the key points, keeping the author's meaning intact.

Content:
%s

Summary:`,

	driven.PromptQuiz: `Create %d quiz questions from the following book content. Return ONLY a JSON array where each element has "question" and "answer" string fields.

Content:
%s`,

	driven.PromptFlashcards: `Create %d study flashcards from the following book content. Return ONLY a JSON array where each element has "front" and "back" string fields.

Content:
%s`,
}

// sourcesBlock appends formatted citations for the passages that grounded
// a response.
func (s *StudyService) sourcesBlock(
	results []domain.SearchResult, info domain.BookInfo, context string,
) string {
	cited := s.citations.FormatMultipleCitations(results, info, context)

	var b strings.Builder
	seen := make(map[string]bool)
	for _, r := range cited {
		if r.Citation == "" || seen[r.Citation] {
			continue
		}
		seen[r.Citation] = true
		b.WriteString("\n- ")
		b.WriteString(r.Citation)
	}
	if b.Len() == 0 {
		return ""
	}
	return "\n\nSources:" + b.String()
}

// contextFrom joins retrieved passages for prompting.
func contextFrom(results []domain.SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Content
	}
	return strings.Join(parts, "\n\n")
}

// jsonArray extracts the first JSON array from LLM output, tolerating
// code fences and surrounding prose.
func jsonArray(output string) []byte {
	start := strings.Index(output, "[")
	end := strings.LastIndex(output, "]")
	if start < 0 || end <= start {
		return []byte(output)
	}
	return []byte(output[start : end+1])
}
