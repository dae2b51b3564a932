package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docsum/internal/document"
	"github.com/dgallion1/docsum/internal/summarize"
)

// RunStatus represents the state of a summarization run.
type RunStatus string

const (
	StatusQueued      RunStatus = "queued"
	StatusSummarizing RunStatus = "summarizing"
	StatusCompleted   RunStatus = "completed"
	StatusFailed      RunStatus = "failed"
)

// Run tracks the state of a single document summarization.
type Run struct {
	mu sync.Mutex

	ID       string          `json:"run_id"`
	Filename string          `json:"filename"`
	Format   document.Format `json:"format"`

	Status RunStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
	result   summarize.Result
	err      error
	done     chan struct{}
}

// Progress tracks processing progress.
type Progress struct {
	PagesSummarized    int      `json:"pages_summarized"`
	ChunksSummarized   int      `json:"chunks_summarized"`
	GenerationFailures int      `json:"generation_failures"`
	Errors             []string `json:"errors"`
}

// NewRun creates a queued run for the given upload.
func NewRun(filename string, format document.Format, data []byte) *Run {
	now := time.Now()
	return &Run{
		ID:          uuid.NewString(),
		Filename:    filename,
		Format:      format,
		Status:      StatusQueued,
		Phase:       "queued",
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
		done:        make(chan struct{}),
	}
}

// RunStore is a thread-safe in-memory run registry with TTL eviction.
type RunStore struct {
	mu   sync.Mutex
	runs map[string]*Run
	ttl  time.Duration
}

func NewRunStore(ttl time.Duration) *RunStore {
	return &RunStore{
		runs: make(map[string]*Run),
		ttl:  ttl,
	}
}

func (s *RunStore) Put(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
}

func (s *RunStore) Get(id string) *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}

// Len returns the number of tracked runs.
func (s *RunStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

// Cleanup removes finished runs that have not changed within the TTL.
func (s *RunStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, run := range s.runs {
		if run.finished() && now.Sub(run.updatedAt()) > s.ttl {
			delete(s.runs, id)
		}
	}
}

// SetStatus updates run status atomically.
func (r *Run) SetStatus(status RunStatus, phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = status
	r.Phase = phase
	r.UpdatedAt = time.Now()
}

// AddError records an error.
func (r *Run) AddError(err string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
	r.Progress.Errors = r.errors
	r.UpdatedAt = time.Now()
}

// ChunkSummarized records one flushed chunk and how many pages it held.
func (r *Run) ChunkSummarized(pages int, failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Progress.ChunksSummarized++
	r.Progress.PagesSummarized += pages
	if failed {
		r.Progress.GenerationFailures++
	}
	r.UpdatedAt = time.Now()
}

// FileData returns the raw file bytes.
func (r *Run) FileData() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fileData
}

// finish stores the outcome, drops the upload bytes and wakes waiters.
// Only the first call has any effect.
func (r *Run) finish(res summarize.Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-r.done:
		return
	default:
	}
	r.result = res
	r.err = err
	r.fileData = nil
	if err != nil {
		r.Status = StatusFailed
		r.errors = append(r.errors, err.Error())
		r.Progress.Errors = r.errors
	} else {
		r.Status = StatusCompleted
		r.Phase = "done"
	}
	r.UpdatedAt = time.Now()
	close(r.done)
}

// Wait blocks until the run finishes or ctx is done.
func (r *Run) Wait(ctx context.Context) (summarize.Result, error) {
	select {
	case <-r.done:
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.result, r.err
	case <-ctx.Done():
		return summarize.Result{}, ctx.Err()
	}
}

func (r *Run) finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

func (r *Run) updatedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.UpdatedAt
}

// RunSnapshot is a read-only, JSON-safe copy of run state.
type RunSnapshot struct {
	ID        string           `json:"run_id"`
	Filename  string           `json:"filename"`
	Format    document.Format  `json:"format"`
	Status    RunStatus        `json:"status"`
	Phase     string           `json:"phase"`
	Progress  Progress         `json:"progress"`
	Summary   string           `json:"summary,omitempty"`
	Stats     *summarize.Stats `json:"stats,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the run state. Summary and Stats are
// set only once the run has completed.
func (r *Run) Snapshot() RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	errs := r.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	snap := RunSnapshot{
		ID:       r.ID,
		Filename: r.Filename,
		Format:   r.Format,
		Status:   r.Status,
		Phase:    r.Phase,
		Progress: Progress{
			PagesSummarized:    r.Progress.PagesSummarized,
			ChunksSummarized:   r.Progress.ChunksSummarized,
			GenerationFailures: r.Progress.GenerationFailures,
			Errors:             errs,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Status == StatusCompleted {
		stats := r.result.Stats
		snap.Summary = r.result.Summary
		snap.Stats = &stats
	}
	return snap
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
