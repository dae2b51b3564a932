package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docsum/internal/api"
	"github.com/dgallion1/docsum/internal/config"
	"github.com/dgallion1/docsum/internal/llm"
	"github.com/dgallion1/docsum/internal/metrics"
	"github.com/dgallion1/docsum/internal/parser"
	"github.com/dgallion1/docsum/internal/pipeline"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("load .env", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	// Initialize the model client: provider, then stats, then rate limit.
	base, err := llm.New(ctx, cfg.LLMOptions())
	if err != nil {
		return err
	}
	defer base.Close()

	m := metrics.New()
	stats := llm.NewLLMStats(time.Hour)
	client := llm.NewRateLimited(&llm.Instrumented{Client: base, Stats: stats, Observer: m}, cfg.LLMRateLimit, cfg.LLMBurst)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(pipeline.Options{
		Workers:    cfg.WorkerCount,
		QueueSize:  cfg.MaxQueueSize,
		RunTTL:     cfg.RunTTL,
		RunTimeout: cfg.RunTimeout,
		Summarize:  cfg.Summarize(),
		Parser:     parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
	}, client, m, log)
	// Runs drain during HTTP shutdown; orch.Stop cancels what is left.
	orch.Start(context.Background())

	// Initialize HTTP server.
	srv := api.NewServer(api.Deps{
		Orchestrator: orch,
		Generator:    client,
		LLMStats:     stats,
		Metrics:      m,
		Log:          log,
	}, cfg)

	httpServer := &http.Server{
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RunTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return err
	}
	if cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConnections)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting docsum",
			"port", cfg.Port,
			"provider", cfg.LLMProvider,
			"model", base.Model(),
			"token_limit", cfg.TokenLimit,
			"low_value_threshold", cfg.LowValueThreshold,
		)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown.
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		orch.Stop()
		return err
	})

	return g.Wait()
}
