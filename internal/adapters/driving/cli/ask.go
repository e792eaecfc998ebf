package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bookwise-ai/bookwise/internal/adapters/driving/tui"
	"github.com/bookwise-ai/bookwise/internal/core/domain"
)

var askResults int

var askCmd = &cobra.Command{
	Use:   "ask [book-id] [question]",
	Short: "Ask a question about a book",
	Long: `Answers a question from one book's indexed content, citing the
passages the answer was grounded on.

With no question argument, opens an interactive session for the book.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askResults, "results", "n", domain.DefaultSearchResults, "number of passages to retrieve")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	bookID := args[0]
	ctx := context.Background()

	book, err := libraryService.GetBook(ctx, bookID)
	if err != nil {
		return fmt.Errorf("book %s: %w", bookID, err)
	}

	// Interactive session when no question is given.
	if len(args) == 1 {
		model := tui.NewAskModel(libraryService, book, askResults)
		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("interactive session: %w", err)
		}
		return nil
	}

	answer, err := libraryService.Ask(ctx, bookID, args[1], askResults)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Response)
	printSources(cmd, answer.Sources)
	return nil
}

func printSources(cmd *cobra.Command, sources []domain.Source) {
	if len(sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i, src := range sources {
		cmd.Printf("  [%d] %s", i+1, src.FileName)
		if src.SectionTitle != "" {
			cmd.Printf(", %q", src.SectionTitle)
		}
		if src.PageNumber > 0 {
			cmd.Printf(", p. %d", src.PageNumber)
		}
		cmd.Printf(" (chunk %d)\n", src.ChunkIndex)
	}
}
