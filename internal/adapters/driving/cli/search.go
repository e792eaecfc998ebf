package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [book-id] [query]",
	Short: "Search a book's content",
	Long: `Performs semantic search over one book's indexed chunks and prints
the matching passages with citations. No answer is generated; use ask for
that.`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchResults, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	results, err := libraryService.Search(context.Background(), args[0], args[1], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for _, result := range results {
		cmd.Printf("  [%d] relevance %.2f\n", result.CitationOrder, result.Relevance())
		cmd.Printf("      %s\n", domain.Preview(result.Content))
		if result.Citation != "" {
			cmd.Printf("      %s\n", result.Citation)
		}
		cmd.Println()
	}
	return nil
}
