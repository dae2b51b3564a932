package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsum/internal/config"
	"github.com/dgallion1/docsum/internal/document"
	"github.com/dgallion1/docsum/internal/llm"
	"github.com/dgallion1/docsum/internal/summarize"
)

// runFlags are the overrides shared by summarize and plan.
type runFlags struct {
	format            string
	tokenLimit        int
	lowValueThreshold int
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "", "document format: pdf, slide-deck or word-doc (default from the file extension)")
	cmd.Flags().IntVar(&f.tokenLimit, "token-limit", 0, "maximum tokens per chunk (default from TOKEN_LIMIT)")
	cmd.Flags().IntVar(&f.lowValueThreshold, "low-value-threshold", -1, "skip pages under this many tokens (default from LOW_VALUE_THRESHOLD)")
}

func (f runFlags) apply(cfg summarize.Config) summarize.Config {
	if f.tokenLimit > 0 {
		cfg.TokenLimit = f.tokenLimit
	}
	if f.lowValueThreshold >= 0 {
		cfg.LowValueThreshold = f.lowValueThreshold
	}
	return cfg
}

func loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, err
	}
	return config.Load(), nil
}

// newClient builds the rate-limited provider client from configuration.
func newClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := llm.New(ctx, cfg.LLMOptions())
	if err != nil {
		return nil, err
	}
	return llm.NewRateLimited(base, cfg.LLMRateLimit, cfg.LLMBurst), nil
}

func openDocument(path, formatTag string) (*os.File, document.Format, error) {
	format, err := document.Resolve(formatTag, path)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	return f, format, nil
}
