package summarize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgallion1/docsum/internal/document"
	"github.com/dgallion1/docsum/internal/llm"
	"github.com/dgallion1/docsum/internal/parser"
)

// Document extracts pages from r and summarizes them. It fails only for an
// unsupported format (before reading r) or a done context. A document that
// cannot be extracted yields an empty summary with Stats.ExtractionFailed set.
func Document(ctx context.Context, r io.Reader, format document.Format, deps Deps, cfg Config) (Result, error) {
	pages, failed, err := extractPages(r, format, deps)
	if err != nil {
		return Result{}, err
	}

	res, err := New(deps, cfg).Summarize(ctx, pages)
	res.Stats.ExtractionFailed = failed
	return res, err
}

// PlanDocument extracts pages from r and returns the chunk layout without
// calling a generator.
func PlanDocument(ctx context.Context, r io.Reader, format document.Format, deps Deps, cfg Config) ([]Chunk, Stats, error) {
	pages, failed, err := extractPages(r, format, deps)
	if err != nil {
		return nil, Stats{}, err
	}
	chunks, stats, err := New(deps, cfg).Plan(ctx, pages)
	stats.ExtractionFailed = failed
	return chunks, stats, err
}

func extractPages(r io.Reader, format document.Format, deps Deps) ([]document.Page, bool, error) {
	ex, err := parser.ForFormat(format, deps.Parser)
	if err != nil {
		return nil, false, err
	}

	pages, err := ex.ExtractPages(r)
	switch {
	case err == nil:
		return pages, false, nil
	case errors.Is(err, parser.ErrExtraction):
		log := deps.Log
		if log == nil {
			log = slog.New(slog.DiscardHandler)
		}
		log.Warn("extraction failed, treating document as empty", "format", format, "error", err)
		return nil, true, nil
	default:
		return nil, false, fmt.Errorf("extract %s: %w", format, err)
	}
}

// Chat answers prompt against caller-supplied context with one generation
// call. It does not go through the chunk accumulator.
func Chat(ctx context.Context, gen llm.TextGenerator, contextText, prompt string) (string, error) {
	out, err := gen.Generate(ctx, BuildChatPrompt(contextText, prompt))
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return out, nil
}
