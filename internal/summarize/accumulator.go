package summarize

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dgallion1/docsum/internal/document"
	"github.com/dgallion1/docsum/internal/llm"
)

// Decision classifies a page as it enters the accumulator.
type Decision int

const (
	DecisionKeep Decision = iota
	DecisionSkipEmpty
	DecisionSkipLowValue
)

func (d Decision) String() string {
	switch d {
	case DecisionKeep:
		return "keep"
	case DecisionSkipEmpty:
		return "skip_empty"
	case DecisionSkipLowValue:
		return "skip_low_value"
	}
	return "unknown"
}

// Chunk is a group of kept pages summarized as one unit.
type Chunk struct {
	Index  int    // Creation order, starting at 0
	Pages  []int  // Page numbers in the chunk
	Text   string // Page texts, space separated
	Tokens int    // Sum of the page token counts
}

// FlushFunc receives each completed chunk, in creation order, exactly once.
// A non-nil error aborts the run.
type FlushFunc func(ctx context.Context, c Chunk) error

// Accumulator groups pages into token-bounded chunks. Pages must be added in
// document order. It is not safe for concurrent use; each run owns one.
type Accumulator struct {
	counter llm.TokenCounter
	cfg     Config
	flush   FlushFunc
	log     *slog.Logger

	buf    strings.Builder
	tokens int
	pages  []int
	next   int
	closed bool
	stats  Stats
}

func NewAccumulator(counter llm.TokenCounter, cfg Config, flush FlushFunc, log *slog.Logger) *Accumulator {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Accumulator{
		counter: counter,
		cfg:     cfg.withDefaults(),
		flush:   flush,
		log:     log,
	}
}

// Add examines one page and either skips it, appends it to the current
// chunk, or flushes the current chunk and starts a new one with it.
func (a *Accumulator) Add(ctx context.Context, p document.Page) (Decision, error) {
	a.stats.Pages++
	if strings.TrimSpace(p.Text) == "" {
		a.stats.SkippedEmpty++
		return DecisionSkipEmpty, nil
	}

	n, measured, err := a.count(ctx, p)
	if err != nil {
		return DecisionKeep, err
	}
	if measured && n < a.cfg.LowValueThreshold {
		a.stats.SkippedLowValue++
		return DecisionSkipLowValue, nil
	}

	if a.tokens+n > a.cfg.TokenLimit {
		if a.tokens == 0 {
			a.discard()
		} else if err := a.emit(ctx); err != nil {
			return DecisionKeep, err
		}
		a.buf.WriteString(p.Text)
		a.tokens = n
		a.pages = append(a.pages, p.Number)
		return DecisionKeep, nil
	}

	a.buf.WriteString(" ")
	a.buf.WriteString(p.Text)
	a.tokens += n
	a.pages = append(a.pages, p.Number)
	return DecisionKeep, nil
}

// Close flushes whatever text remains, regardless of its token total.
// Calling Close more than once is a no-op.
func (a *Accumulator) Close(ctx context.Context) error {
	if a.closed {
		return nil
	}
	a.closed = true
	return a.emit(ctx)
}

// Stats returns the counters gathered so far.
func (a *Accumulator) Stats() Stats {
	return a.stats
}

// count returns the page's token count. A failed count degrades to an
// unmeasured zero; only a done context aborts.
func (a *Accumulator) count(ctx context.Context, p document.Page) (int, bool, error) {
	n, err := a.counter.CountTokens(ctx, p.Text)
	switch {
	case err == nil:
		return max(n, 0), true, nil
	case ctx.Err() != nil:
		return 0, false, ctx.Err()
	default:
		a.stats.TokenCountFailures++
		a.log.Warn("token count failed, admitting page with zero tokens", "page", p.Number, "error", err)
		return 0, false, nil
	}
}

// discard drops a chunk whose pages carry no counted tokens. It is only
// reached on an overflow, so the chunk is never summarized.
func (a *Accumulator) discard() {
	if len(a.pages) > 0 {
		a.stats.ZeroTokenDiscards += len(a.pages)
		a.log.Warn("dropping chunk with zero counted tokens", "pages", a.pages)
	}
	a.buf.Reset()
	a.tokens = 0
	a.pages = nil
}

// emit hands the current chunk to the flush func and resets the buffer.
// An empty buffer produces no chunk.
func (a *Accumulator) emit(ctx context.Context) error {
	text := a.buf.String()
	c := Chunk{
		Index:  a.next,
		Pages:  a.pages,
		Text:   text,
		Tokens: a.tokens,
	}
	a.buf.Reset()
	a.tokens = 0
	a.pages = nil

	if strings.TrimSpace(text) == "" {
		return nil
	}
	a.next++
	a.stats.Chunks++
	return a.flush(ctx, c)
}
