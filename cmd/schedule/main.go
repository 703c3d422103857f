// Command schedule creates the schedule that runs NotifyFailedWorkflow every
// minute.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	sdklog "go.temporal.io/sdk/log"

	"github.com/jackwill99/temporal-hr/internal/config"
	"github.com/jackwill99/temporal-hr/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := worker.NewLogger(os.Stderr, cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.Target,
		Namespace: cfg.Temporal.Namespace,
		Logger:    sdklog.NewStructuredLogger(logger),
	})
	if err != nil {
		logger.Error("Failed to connect to Temporal", "target", cfg.Temporal.Target, "error", err)
		os.Exit(1)
	}
	defer c.Close()

	created, err := worker.EnsureSweepSchedule(ctx, c.ScheduleClient(), cfg)
	if err != nil {
		logger.Error("Failed to create schedule", "error", err)
		os.Exit(1)
	}
	if !created {
		logger.Info("Schedule already exists", "schedule_id", worker.SweepScheduleID)
		return
	}
	logger.Info("Schedule created",
		"schedule_id", worker.SweepScheduleID,
		"cron", worker.SweepCron,
		"overlap", cfg.Schedule.OverlapPolicy)
}
