package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	studyTopic     string
	quizCount      int
	flashcardCount int
)

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Generate study material from a book",
}

var explainCmd = &cobra.Command{
	Use:   "explain [book-id] [concept]",
	Short: "Explain a concept using the book's content",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if studyService == nil {
			return errors.New("study service not configured")
		}
		response, err := studyService.Explain(context.Background(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("explain failed: %w", err)
		}
		cmd.Println(response)
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary [book-id]",
	Short: "Summarise a book or a topic within it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if studyService == nil {
			return errors.New("study service not configured")
		}
		response, err := studyService.Summarise(context.Background(), args[0], studyTopic)
		if err != nil {
			return fmt.Errorf("summary failed: %w", err)
		}
		cmd.Println(response)
		return nil
	},
}

var quizCmd = &cobra.Command{
	Use:   "quiz [book-id]",
	Short: "Generate quiz questions from a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if studyService == nil {
			return errors.New("study service not configured")
		}
		items, err := studyService.Quiz(context.Background(), args[0], studyTopic, quizCount)
		if err != nil {
			return fmt.Errorf("quiz failed: %w", err)
		}
		for i, item := range items {
			cmd.Printf("%d. %s\n", i+1, item.Question)
			cmd.Printf("   Answer: %s\n\n", item.Answer)
		}
		return nil
	},
}

var flashcardsCmd = &cobra.Command{
	Use:   "flashcards [book-id]",
	Short: "Generate flashcards from a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if studyService == nil {
			return errors.New("study service not configured")
		}
		cards, err := studyService.Flashcards(context.Background(), args[0], studyTopic, flashcardCount)
		if err != nil {
			return fmt.Errorf("flashcards failed: %w", err)
		}
		for i, card := range cards {
			cmd.Printf("Card %d\n", i+1)
			cmd.Printf("  Front: %s\n", card.Front)
			cmd.Printf("  Back:  %s\n\n", card.Back)
		}
		return nil
	},
}

func init() {
	summaryCmd.Flags().StringVar(&studyTopic, "topic", "", "focus on a topic (default: whole book)")
	quizCmd.Flags().StringVar(&studyTopic, "topic", "", "focus on a topic (default: whole book)")
	quizCmd.Flags().IntVarP(&quizCount, "count", "c", 5, "number of questions")
	flashcardsCmd.Flags().StringVar(&studyTopic, "topic", "", "focus on a topic (default: whole book)")
	flashcardsCmd.Flags().IntVarP(&flashcardCount, "count", "c", 10, "number of cards")

	studyCmd.AddCommand(explainCmd, summaryCmd, quizCmd, flashcardsCmd)
	rootCmd.AddCommand(studyCmd)
}
