package events

import (
	"context"
	"log/slog"
)

// LogSink writes each envelope as one structured log record.
type LogSink struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogSink logs events at Info level through logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "events"), level: slog.LevelInfo}
}

// Append implements EventSink.
func (s *LogSink) Append(ctx context.Context, envelope Envelope) error {
	s.logger.LogAttrs(ctx, s.level, "domain event",
		slog.String("event_id", envelope.ID),
		slog.String("event_type", envelope.Type),
		slog.String("source", envelope.Source),
		slog.String("version", envelope.Version),
		slog.Time("timestamp", envelope.Timestamp),
		slog.String("idempotency_key", envelope.IdempotencyKey),
		slog.String("workflow_id", envelope.WorkflowID),
		slog.String("run_id", envelope.RunID),
		slog.String("payload", string(envelope.Payload)),
	)
	return nil
}
