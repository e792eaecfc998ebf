package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove [book-id]",
	Short: "Remove a book and its index from the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if libraryService == nil {
			return errors.New("library service not configured")
		}
		if err := libraryService.RemoveBook(context.Background(), args[0]); err != nil {
			return fmt.Errorf("remove failed: %w", err)
		}
		cmd.Printf("Removed book %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
