// Command worker runs the screening workflows and activities.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.temporal.io/sdk/client"
	sdklog "go.temporal.io/sdk/log"
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/jackwill99/temporal-hr/internal/activity"
	"github.com/jackwill99/temporal-hr/internal/config"
	"github.com/jackwill99/temporal-hr/internal/metrics"
	"github.com/jackwill99/temporal-hr/internal/worker"
	"github.com/jackwill99/temporal-hr/pkg/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := worker.NewLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, closer, err := worker.OpenLedger(ctx, cfg.Ledger, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	scorer, err := worker.NewScorer(cfg, logger)
	if err != nil {
		return err
	}
	sender, err := worker.NewSender(ctx, cfg, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.Target,
		Namespace: cfg.Temporal.Namespace,
		Logger:    sdklog.NewStructuredLogger(logger),
	})
	if err != nil {
		return err
	}
	defer c.Close()

	w := sdkworker.New(c, cfg.Temporal.TaskQueue, sdkworker.Options{})
	worker.RegisterAll(w, activity.Deps{
		Ledger:  l,
		Scorer:  scorer,
		Sender:  sender,
		Events:  events.NewLogSink(logger),
		Metrics: m,
	})

	srv := &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           metricsMux(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "addr", cfg.Metrics.Addr, "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Worker started",
		"target", cfg.Temporal.Target,
		"task_queue", cfg.Temporal.TaskQueue,
		"ledger", cfg.Ledger.Backend,
		"metrics_addr", cfg.Metrics.Addr)

	interrupt := make(chan interface{})
	go func() {
		<-ctx.Done()
		close(interrupt)
	}()
	return w.Run(interrupt)
}

func metricsMux(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(g))
	return mux
}
