// Package events carries domain events out of activities. Emission is best
// effort: a sink failure never fails the activity that produced the event.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Envelope wraps a domain event payload with routing and correlation
// metadata.
type Envelope struct {
	// ID uniquely identifies this emission.
	ID string `json:"id"`

	// Type routes the event, e.g. "screening.application_recorded".
	Type string `json:"type"`

	// Source names the emitting component.
	Source string `json:"source"`

	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`

	// IdempotencyKey is stable across activity retries so consumers can drop
	// duplicates.
	IdempotencyKey string `json:"idempotency_key"`

	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`

	Payload json.RawMessage `json:"payload"`
}

// EventSink receives envelopes.
type EventSink interface {
	// Append should return quickly. Callers log and drop errors.
	Append(ctx context.Context, envelope Envelope) error
}

// NoOpEventSink discards every event.
type NoOpEventSink struct{}

// Append implements EventSink.
func (n *NoOpEventSink) Append(_ context.Context, _ Envelope) error {
	return nil
}

// NewNoOpEventSink returns a sink that discards events.
func NewNoOpEventSink() EventSink {
	return &NoOpEventSink{}
}
