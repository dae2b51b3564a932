package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsum/internal/llm"
	"github.com/dgallion1/docsum/internal/parser"
	"github.com/dgallion1/docsum/internal/summarize"
)

func newPlanCmd(logger func() *slog.Logger) *cobra.Command {
	var (
		flags    runFlags
		estimate bool
	)
	cmd := &cobra.Command{
		Use:   "plan FILE",
		Short: "Show how a document would be chunked, without generating summaries",
		Long: `plan runs page extraction and chunking and prints one line per chunk.
Token counts come from the configured provider unless --estimate is given,
in which case a local word-based estimate is used and no network calls are made.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var counter llm.TokenCounter = llm.HeuristicCounter{}
			if !estimate {
				client, err := newClient(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer client.Close()
				counter = client
			}

			f, format, err := openDocument(args[0], flags.format)
			if err != nil {
				return err
			}
			defer f.Close()

			deps := summarize.Deps{
				Counter: counter,
				Log:     logger().With("file", args[0]),
				Parser:  parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
			}
			runCfg := flags.apply(cfg.Summarize())
			chunks, stats, err := summarize.PlanDocument(cmd.Context(), f, format, deps, runCfg)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CHUNK\tPAGES\tTOKENS")
			for _, c := range chunks {
				fmt.Fprintf(tw, "%d\t%s\t%d\n", c.Index, pageRange(c.Pages), c.Tokens)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"\n%d pages, %d empty, %d low-value, %d chunks (limit %d tokens)\n",
				stats.Pages, stats.SkippedEmpty, stats.SkippedLowValue, stats.Chunks, runCfg.TokenLimit)
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&estimate, "estimate", false, "estimate tokens locally instead of asking the provider")
	return cmd
}

// pageRange formats page numbers compactly, e.g. "1-3,5".
func pageRange(pages []int) string {
	if len(pages) == 0 {
		return "-"
	}
	var out string
	start, prev := pages[0], pages[0]
	flush := func() {
		if out != "" {
			out += ","
		}
		if start == prev {
			out += fmt.Sprint(start)
		} else {
			out += fmt.Sprintf("%d-%d", start, prev)
		}
	}
	for _, p := range pages[1:] {
		if p == prev+1 {
			prev = p
			continue
		}
		flush()
		start, prev = p, p
	}
	flush()
	return out
}
