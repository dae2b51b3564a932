package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/docsum/internal/document"
	"github.com/dgallion1/docsum/internal/summarize"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewRun(t *testing.T) {
	r1 := NewRun("deck.pptx", document.FormatSlideDeck, []byte("abc"))
	r2 := NewRun("deck.pptx", document.FormatSlideDeck, []byte("abc"))

	if r1.ID == "" || r1.ID == r2.ID {
		t.Errorf("expected unique non-empty run IDs, got %q and %q", r1.ID, r2.ID)
	}
	if r1.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, r1.Status)
	}
	if r1.ContentHash != r2.ContentHash {
		t.Error("expected identical content hashes for identical uploads")
	}
	if string(r1.FileData()) != "abc" {
		t.Errorf("expected file data kept until the run finishes, got %q", r1.FileData())
	}
}

func TestRun_SetStatus(t *testing.T) {
	run := NewRun("a.pdf", document.FormatPDF, nil)
	before := run.UpdatedAt
	time.Sleep(time.Millisecond)

	run.SetStatus(StatusSummarizing, "summarizing")
	if run.Status != StatusSummarizing || run.Phase != "summarizing" {
		t.Errorf("unexpected state %q/%q", run.Status, run.Phase)
	}
	if !run.UpdatedAt.After(before) {
		t.Error("expected UpdatedAt to advance after SetStatus")
	}
}

func TestRun_ChunkSummarized(t *testing.T) {
	run := NewRun("a.pdf", document.FormatPDF, nil)
	run.ChunkSummarized(3, false)
	run.ChunkSummarized(2, true)

	snap := run.Snapshot()
	if snap.Progress.ChunksSummarized != 2 {
		t.Errorf("expected 2 chunks, got %d", snap.Progress.ChunksSummarized)
	}
	if snap.Progress.PagesSummarized != 5 {
		t.Errorf("expected 5 pages, got %d", snap.Progress.PagesSummarized)
	}
	if snap.Progress.GenerationFailures != 1 {
		t.Errorf("expected 1 generation failure, got %d", snap.Progress.GenerationFailures)
	}
}

func TestRun_FinishAndWait(t *testing.T) {
	run := NewRun("a.pdf", document.FormatPDF, []byte("data"))
	want := summarize.Result{Summary: "done", Stats: summarize.Stats{Chunks: 1}}

	go run.finish(want, nil)

	got, err := run.Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Summary != "done" {
		t.Errorf("expected summary %q, got %q", "done", got.Summary)
	}
	if run.FileData() != nil {
		t.Error("expected file data released after finish")
	}

	snap := run.Snapshot()
	if snap.Status != StatusCompleted || snap.Summary != "done" || snap.Stats == nil {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	// A second finish is ignored.
	run.finish(summarize.Result{}, errors.New("late"))
	if run.Snapshot().Status != StatusCompleted {
		t.Error("expected first outcome to stick")
	}
}

func TestRun_FinishWithError(t *testing.T) {
	run := NewRun("a.pdf", document.FormatPDF, nil)
	run.finish(summarize.Result{}, context.DeadlineExceeded)

	if _, err := run.Wait(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
	snap := run.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, snap.Status)
	}
	if snap.Summary != "" || snap.Stats != nil {
		t.Errorf("expected no result on failed snapshot, got %+v", snap)
	}
	if len(snap.Progress.Errors) != 1 {
		t.Errorf("expected the error recorded, got %v", snap.Progress.Errors)
	}
}

func TestRun_WaitHonorsContext(t *testing.T) {
	run := NewRun("a.pdf", document.FormatPDF, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := run.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
}

func TestRun_SnapshotErrorsNotNil(t *testing.T) {
	run := NewRun("a.pdf", document.FormatPDF, nil)
	snap := run.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
}

func TestRunStore_PutGet(t *testing.T) {
	store := NewRunStore(time.Hour)
	run := NewRun("a.pdf", document.FormatPDF, nil)
	store.Put(run)

	got := store.Get(run.ID)
	if got == nil || got.ID != run.ID {
		t.Fatalf("expected to get run %q back, got %+v", run.ID, got)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing run")
	}
}

func TestRunStore_TTLCleanup(t *testing.T) {
	store := NewRunStore(50 * time.Millisecond)

	old := NewRun("old.pdf", document.FormatPDF, nil)
	old.finish(summarize.Result{}, nil)
	inFlight := NewRun("busy.pdf", document.FormatPDF, nil)
	store.Put(old)
	store.Put(inFlight)

	time.Sleep(100 * time.Millisecond)

	fresh := NewRun("new.pdf", document.FormatPDF, nil)
	fresh.finish(summarize.Result{}, nil)
	store.Put(fresh)

	store.Cleanup()

	if store.Get(old.ID) != nil {
		t.Error("expected expired run to be cleaned up")
	}
	if store.Get(inFlight.ID) == nil {
		t.Error("expected unfinished run to survive cleanup")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh run to survive cleanup")
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 runs left, got %d", store.Len())
	}
}
