// Command submit starts one ApplicationWorkflow and optionally waits for its
// result.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	sdklog "go.temporal.io/sdk/log"

	"github.com/jackwill99/temporal-hr/internal/config"
	"github.com/jackwill99/temporal-hr/internal/domain"
	"github.com/jackwill99/temporal-hr/internal/worker"
	"github.com/jackwill99/temporal-hr/internal/workflow"
)

func main() {
	var (
		sub  domain.ApplicationSubmission
		wait bool
	)
	flag.StringVar(&sub.Email, "email", "", "applicant email (required)")
	flag.StringVar(&sub.Title, "title", "", "position title (required)")
	flag.StringVar(&sub.Description, "description", "", "experience description (required)")
	flag.StringVar(&sub.FilePath, "resume", "", "path to a PDF resume readable by the worker")
	flag.StringVar(&sub.Source, "source", domain.SourceOperator, "submission source")
	flag.BoolVar(&wait, "wait", false, "wait for the workflow result and print it")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := worker.NewLogger(os.Stderr, cfg.Log)

	sub = sub.Normalized()
	if err := sub.Validate(); err != nil {
		logger.Error("Invalid submission", "error", err)
		os.Exit(2)
	}

	if err := submit(context.Background(), cfg, logger, sub, wait); err != nil {
		logger.Error("Submission failed", "error", err)
		os.Exit(1)
	}
}

func submit(ctx context.Context, cfg *config.Config, logger *slog.Logger, sub domain.ApplicationSubmission, wait bool) error {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.Target,
		Namespace: cfg.Temporal.Namespace,
		Logger:    sdklog.NewStructuredLogger(logger),
	})
	if err != nil {
		return fmt.Errorf("connect to temporal: %w", err)
	}
	defer c.Close()

	workflowID := fmt.Sprintf("application-%s-%s", sub.Email, uuid.NewString())
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: cfg.Temporal.TaskQueue,
	}, workflow.ApplicationWorkflowName, sub)
	if err != nil {
		return fmt.Errorf("start workflow: %w", err)
	}
	logger.Info("Application submitted", "workflow_id", run.GetID(), "run_id", run.GetRunID())

	if !wait {
		return nil
	}
	var res domain.PipelineResult
	if err := run.Get(ctx, &res); err != nil {
		return fmt.Errorf("workflow %s: %w", workflowID, err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
