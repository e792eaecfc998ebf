package driving

import "context"

// StudyService builds study material from a book's indexed content. All
// operations retrieve relevant passages and prompt the LLM with them; they
// require the book to be indexed and an LLM to be configured.
type StudyService interface {
	// Explain answers "explain this concept" using passages from the book
	// that mention it.
	Explain(ctx context.Context, bookID, concept string) (string, error)

	// Summarise produces a summary of the book's retrieved content for a
	// topic, or of the book overall when topic is empty.
	Summarise(ctx context.Context, bookID, topic string) (string, error)

	// Quiz generates n open questions with answers from the book.
	Quiz(ctx context.Context, bookID, topic string, n int) ([]QuizItem, error)

	// Flashcards generates n front/back flashcards from the book.
	Flashcards(ctx context.Context, bookID, topic string, n int) ([]Flashcard, error)
}

// QuizItem is one generated quiz question.
type QuizItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Flashcard is one generated flashcard.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}
