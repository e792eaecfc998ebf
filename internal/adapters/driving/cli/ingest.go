package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
)

var (
	ingestTitle  string
	ingestAuthor string
	ingestYear   int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Add a book to the library",
	Long: `Extracts text from a book file, splits it into chunks, embeds them
and indexes the result for querying. Supported formats: PDF, EPUB, DOCX,
plain text and Markdown.

Title and author are read from the file's metadata when not given.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "book title (default: from file metadata)")
	ingestCmd.Flags().StringVar(&ingestAuthor, "author", "", "book author (default: from file metadata)")
	ingestCmd.Flags().IntVar(&ingestYear, "year", 0, "publication year")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	book, err := libraryService.AddBook(context.Background(), args[0], domain.BookInfo{
		Title:  ingestTitle,
		Author: ingestAuthor,
		Year:   ingestYear,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("already in library: %s", args[0])
		}
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Indexed %q", book.Title)
	if book.Author != "" {
		cmd.Printf(" by %s", book.Author)
	}
	cmd.Printf(" (%d chunks)\n", book.ChunkCount)
	cmd.Printf("Book ID: %s\n", book.ID)
	return nil
}
