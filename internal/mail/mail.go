// Package mail delivers applicant notifications.
//
// Senders report failure as an error; the notification activities turn that
// error into a delivery result instead of failing. Nothing in this package
// retries.
package mail

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by senders that have no transport configured.
var ErrNotConfigured = errors.New("mail: transport not configured")

// NotConfiguredCode is the delivery error reported for ErrNotConfigured.
const NotConfiguredCode = "smtp_not_configured"

// Message is a plain-text email to a single recipient.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ErrorCode renders a send error as the string stored in a delivery result.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return NotConfiguredCode
	default:
		return err.Error()
	}
}

// DisabledSender rejects every message with ErrNotConfigured.
type DisabledSender struct{}

// Send implements Sender.
func (DisabledSender) Send(context.Context, Message) error { return ErrNotConfigured }
