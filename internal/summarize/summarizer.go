// Package summarize turns a document's pages into a single summary while
// keeping every generation request within a token budget.
package summarize

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dgallion1/docsum/internal/document"
	"github.com/dgallion1/docsum/internal/llm"
	"github.com/dgallion1/docsum/internal/parser"
)

// Deps are the collaborators a run needs. Counter and Generator are shared
// across runs and must be safe for concurrent use.
type Deps struct {
	Counter   llm.TokenCounter
	Generator llm.TextGenerator
	Log       *slog.Logger
	Parser    parser.Options

	// OnChunk, if set, is called after each chunk is summarized. failed
	// reports that partial is the failure sentinel.
	OnChunk func(c Chunk, partial string, failed bool)
}

// Stats describes what happened during one run.
type Stats struct {
	Pages              int  `json:"pages"`
	SkippedEmpty       int  `json:"skipped_empty"`
	SkippedLowValue    int  `json:"skipped_low_value"`
	TokenCountFailures int  `json:"token_count_failures"`
	ZeroTokenDiscards  int  `json:"zero_token_discards"`
	Chunks             int  `json:"chunks"`
	GenerationFailures int  `json:"generation_failures"`
	ExtractionFailed   bool `json:"extraction_failed"`
}

// Result is the outcome of a run.
type Result struct {
	Summary  string   `json:"summary"`
	Partials []string `json:"-"`
	Stats    Stats    `json:"stats"`
}

// Summarizer runs the chunk-and-summarize loop over a page sequence.
type Summarizer struct {
	deps Deps
	cfg  Config
	log  *slog.Logger
}

func New(deps Deps, cfg Config) *Summarizer {
	log := deps.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Summarizer{deps: deps, cfg: cfg.withDefaults(), log: log}
}

// Summarize processes pages in order and returns the aggregated summary.
// Collaborator failures degrade in place; only a done context aborts, in
// which case the partial result gathered so far is returned with the error.
func (s *Summarizer) Summarize(ctx context.Context, pages []document.Page) (Result, error) {
	var partials []string
	genFailures := 0

	acc := NewAccumulator(s.deps.Counter, s.cfg, func(ctx context.Context, c Chunk) error {
		partial, failed, err := s.summarizeChunk(ctx, c)
		if err != nil {
			return err
		}
		if failed {
			genFailures++
		}
		partials = append(partials, partial)
		if s.deps.OnChunk != nil {
			s.deps.OnChunk(c, partial, failed)
		}
		return nil
	}, s.log)

	result := func() Result {
		stats := acc.Stats()
		stats.GenerationFailures = genFailures
		return Result{Summary: Aggregate(partials), Partials: partials, Stats: stats}
	}

	for _, p := range pages {
		if _, err := acc.Add(ctx, p); err != nil {
			return result(), err
		}
	}
	if err := acc.Close(ctx); err != nil {
		return result(), err
	}

	res := result()
	s.log.Info("summarized document",
		"pages", res.Stats.Pages,
		"chunks", res.Stats.Chunks,
		"skipped_low_value", res.Stats.SkippedLowValue,
		"generation_failures", res.Stats.GenerationFailures,
	)
	return res, nil
}

// Plan runs the accumulator without generating anything and returns the
// chunks that Summarize would send.
func (s *Summarizer) Plan(ctx context.Context, pages []document.Page) ([]Chunk, Stats, error) {
	var chunks []Chunk
	acc := NewAccumulator(s.deps.Counter, s.cfg, func(_ context.Context, c Chunk) error {
		chunks = append(chunks, c)
		return nil
	}, s.log)

	for _, p := range pages {
		if _, err := acc.Add(ctx, p); err != nil {
			return chunks, acc.Stats(), err
		}
	}
	err := acc.Close(ctx)
	return chunks, acc.Stats(), err
}

// summarizeChunk returns the partial summary for c, or the failure sentinel
// (failed=true) when generation fails.
func (s *Summarizer) summarizeChunk(ctx context.Context, c Chunk) (partial string, failed bool, err error) {
	if strings.TrimSpace(c.Text) == "" {
		return "", false, nil
	}

	out, err := s.deps.Generator.Generate(ctx, SummaryPrompt+c.Text)
	switch {
	case err == nil:
		return out, false, nil
	case ctx.Err() != nil:
		return "", false, ctx.Err()
	default:
		s.log.Warn("chunk summarization failed", "chunk", c.Index, "pages", len(c.Pages), "tokens", c.Tokens, "error", err)
		return FailureSentinel, true, nil
	}
}

// Aggregate joins partial summaries in order with no separator.
func Aggregate(partials []string) string {
	return strings.Join(partials, "")
}
