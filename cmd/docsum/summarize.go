package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsum/internal/parser"
	"github.com/dgallion1/docsum/internal/render"
	"github.com/dgallion1/docsum/internal/summarize"
)

func newSummarizeCmd(logger func() *slog.Logger) *cobra.Command {
	var (
		flags  runFlags
		html   bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "summarize FILE",
		Short: "Summarize a .pdf, .pptx or .docx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			f, format, err := openDocument(args[0], flags.format)
			if err != nil {
				return err
			}
			defer f.Close()

			log := logger().With("file", args[0])
			deps := summarize.Deps{
				Counter:   client,
				Generator: client,
				Log:       log,
				Parser:    parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
				OnChunk: func(c summarize.Chunk, _ string, failed bool) {
					log.Debug("chunk summarized", "chunk", c.Index, "pages", c.Pages, "tokens", c.Tokens, "failed", failed)
				},
			}
			res, err := summarize.Document(cmd.Context(), f, format, deps, flags.apply(cfg.Summarize()))
			if err != nil {
				return err
			}

			out := res.Summary
			if html {
				if out, err = render.Markdown(res.Summary); err != nil {
					return err
				}
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"summary": out, "stats": res.Stats})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&html, "html", false, "render the summary as HTML")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print summary and run stats as JSON")
	return cmd
}
