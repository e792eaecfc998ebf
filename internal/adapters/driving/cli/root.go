package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bookwise-ai/bookwise/internal/core/ports/driving"
	"github.com/bookwise-ai/bookwise/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// WatchRunner is the watch command's view of the directory watcher.
type WatchRunner interface {
	Watch(ctx context.Context, dir string) error
}

// Services injected by main before Execute. Commands nil-check the ones
// they need so partial wiring degrades with a clear message.
var (
	libraryService driving.LibraryService
	studyService   driving.StudyService
	watchRunner    WatchRunner
)

// Services bundles everything the CLI needs.
type Services struct {
	Library driving.LibraryService
	Study   driving.StudyService
	Watcher WatchRunner
}

// SetServices injects the service implementations.
func SetServices(s Services) {
	libraryService = s.Library
	studyService = s.Study
	watchRunner = s.Watcher
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "bookwise",
	Short: "Ask questions about your books",
	Long: `Bookwise ingests books (PDF, EPUB, DOCX, plain text) into a local
library and answers questions about their content using retrieval-augmented
generation. Every answer cites the passages it was grounded on.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
