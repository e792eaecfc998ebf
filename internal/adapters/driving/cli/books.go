package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
)

var booksJSON bool

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "List books in the library",
	Args:  cobra.NoArgs,
	RunE:  runBooks,
}

func init() {
	booksCmd.Flags().BoolVar(&booksJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(booksCmd)
}

func runBooks(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	books, err := libraryService.ListBooks(context.Background())
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}

	if booksJSON {
		data, err := json.MarshalIndent(books, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal books: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(books) == 0 {
		cmd.Println("Library is empty. Add a book with: bookwise ingest <file>")
		return nil
	}

	cmd.Println("Library:")
	cmd.Println()
	for _, book := range books {
		title := book.Title
		if title == "" {
			title = book.FilePath
		}
		cmd.Printf("  %s  %s", book.ID, title)
		if book.Author != "" {
			cmd.Printf(" - %s", book.Author)
		}
		cmd.Println()
		cmd.Printf("      %s", book.Status)
		if book.Status == domain.StatusIndexed {
			cmd.Printf(" (%d chunks)", book.ChunkCount)
		}
		if book.Status == domain.StatusFailed && book.ProcessingError != "" {
			cmd.Printf(": %s", book.ProcessingError)
		}
		cmd.Println()
	}
	return nil
}
