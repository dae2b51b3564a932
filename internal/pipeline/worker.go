package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/docsum/internal/llm"
	"github.com/dgallion1/docsum/internal/metrics"
	"github.com/dgallion1/docsum/internal/summarize"
)

// Worker processes one run at a time.
type Worker struct {
	client  llm.Client
	metrics *metrics.Metrics
	log     *slog.Logger
	opts    Options
}

func NewWorker(client llm.Client, m *metrics.Metrics, log *slog.Logger, opts Options) *Worker {
	return &Worker{
		client:  client,
		metrics: m,
		log:     log,
		opts:    opts,
	}
}

// Process extracts and summarizes the run's document, then finishes the run.
func (w *Worker) Process(ctx context.Context, run *Run) {
	log := w.log.With("run_id", run.ID, "filename", run.Filename, "format", run.Format)
	start := time.Now()
	w.metrics.RunStarted()

	if w.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.RunTimeout)
		defer cancel()
	}

	run.SetStatus(StatusSummarizing, "summarizing")
	deps := summarize.Deps{
		Counter:   w.client,
		Generator: w.client,
		Log:       log,
		Parser:    w.opts.Parser,
		OnChunk: func(c summarize.Chunk, _ string, failed bool) {
			run.ChunkSummarized(len(c.Pages), failed)
			w.metrics.ObserveChunk(failed)
		},
	}

	res, err := summarize.Document(ctx, bytes.NewReader(run.FileData()), run.Format, deps, w.opts.Summarize)
	elapsed := time.Since(start)

	st := res.Stats
	w.metrics.ObservePages(st.Pages-st.SkippedEmpty-st.SkippedLowValue, st.SkippedEmpty, st.SkippedLowValue)
	if st.ExtractionFailed {
		run.AddError("text extraction failed; document treated as empty")
	}

	if err != nil {
		log.Error("run failed", "error", err, "duration_ms", elapsed.Milliseconds())
		w.metrics.RunFinished(string(run.Format), string(StatusFailed), elapsed)
		run.finish(res, err)
		return
	}

	log.Info("run complete",
		"chunks", st.Chunks,
		"generation_failures", st.GenerationFailures,
		"summary_len", len(res.Summary),
		"duration_ms", elapsed.Milliseconds(),
	)
	w.metrics.RunFinished(string(run.Format), string(StatusCompleted), elapsed)
	run.finish(res, nil)
}
