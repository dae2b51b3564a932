package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsum/internal/compress"
)

func newCompressCmd(logger func() *slog.Logger) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "compress FILE.pdf",
		Short: "Rewrite a PDF without duplicate or unused objects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			if !strings.EqualFold(filepath.Ext(in), ".pdf") {
				return fmt.Errorf("unsupported file type: %s", filepath.Ext(in))
			}
			src, err := os.Open(in)
			if err != nil {
				return fmt.Errorf("open %s: %w", in, err)
			}
			defer src.Close()

			dst, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			res, err := compress.PDF(src, dst)
			if cerr := dst.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(output)
				return err
			}

			logger().Info("compressed pdf", "input", in, "output", output)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d -> %d bytes (%.0f%%)\n",
				output, res.InputBytes, res.OutputBytes, res.Ratio()*100)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "compressed_file.pdf", "output path")
	return cmd
}
