package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docsum/internal/llm"
	"github.com/dgallion1/docsum/internal/metrics"
	"github.com/dgallion1/docsum/internal/parser"
	"github.com/dgallion1/docsum/internal/summarize"
)

// ErrQueueFull is returned by Submit when no queue slot is free.
var ErrQueueFull = errors.New("run queue is full")

// ErrShuttingDown finishes runs still queued when the orchestrator stops.
var ErrShuttingDown = errors.New("server shutting down")

// Options sizes the worker pool and sets per-run defaults.
type Options struct {
	Workers    int
	QueueSize  int
	RunTTL     time.Duration
	RunTimeout time.Duration // zero means no per-run deadline

	Summarize summarize.Config
	Parser    parser.Options
}

// Orchestrator runs uploads through a fixed pool of summarization workers.
type Orchestrator struct {
	runs    *RunStore
	queue   chan *Run
	client  llm.Client
	metrics *metrics.Metrics
	log     *slog.Logger
	opts    Options

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrchestrator(opts Options, client llm.Client, m *metrics.Metrics, log *slog.Logger) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1
	}
	if opts.RunTTL <= 0 {
		opts.RunTTL = time.Hour
	}
	return &Orchestrator{
		runs:    NewRunStore(opts.RunTTL),
		queue:   make(chan *Run, opts.QueueSize),
		client:  client,
		metrics: m,
		log:     log,
		opts:    opts,
	}
}

// Start launches worker goroutines. Workers keep ctx's values but not its
// cancellation: in-flight runs are only cancelled by Stop.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.cancel = cancel

	for range o.opts.Workers {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.client, o.metrics, o.log, o.opts)
			for {
				select {
				case <-workerCtx.Done():
					return
				case run, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, run)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.runs.Cleanup()
			}
		}
	}()
}

// Stop cancels in-flight runs, fails queued ones and waits for the workers.
// Submit must not be called after Stop.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
	for run := range o.queue {
		run.finish(summarize.Result{}, ErrShuttingDown)
	}
}

// Submit queues a run for processing.
func (o *Orchestrator) Submit(run *Run) error {
	o.runs.Put(run)
	select {
	case o.queue <- run:
		return nil
	default:
		run.finish(summarize.Result{}, ErrQueueFull)
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.opts.QueueSize)
	}
}

// GetRun returns a run by ID, or nil.
func (o *Orchestrator) GetRun(id string) *Run {
	return o.runs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Model names the model serving the runs.
func (o *Orchestrator) Model() string {
	return o.client.Model()
}
