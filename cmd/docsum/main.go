package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "docsum",
		Short:         "Summarize PDF, slide deck and Word documents with an LLM",
		SilenceUsage:  true,
		SilenceErrors: false,
		Long: `docsum extracts a document page by page, groups the pages into chunks that
fit the model's token budget, summarizes each chunk and joins the results.

Provider settings come from the same environment variables as the server
(LLM_PROVIDER, ANTHROPIC_API_KEY, GOOGLE_CLOUD_PROJECT, ...), read from .env
when present.`,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")

	logger := func() *slog.Logger {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewTextHandler(root.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	}

	root.AddCommand(
		newSummarizeCmd(logger),
		newPlanCmd(logger),
		newCompressCmd(logger),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
