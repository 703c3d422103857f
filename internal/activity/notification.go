package activity

import (
	"context"
	"strings"

	"github.com/jackwill99/temporal-hr/internal/domain"
	"github.com/jackwill99/temporal-hr/internal/mail"
	"github.com/jackwill99/temporal-hr/internal/metrics"
	baseactivity "github.com/jackwill99/temporal-hr/pkg/activity"
)

// errMissingRecipient is reported when a notification has no address.
const errMissingRecipient = "missing_recipient"

// SendApplicantEmail tells a qualified applicant they passed screening.
func (a *Activities) SendApplicantEmail(
	ctx context.Context,
	in domain.NotifyInput,
) (*domain.NotificationResult, error) {
	return a.deliver(ctx, metrics.KindQualified, mail.QualifiedMessage(in.Email, in.Reason)), nil
}

// SendFailedEmail tells a rejected applicant the outcome.
func (a *Activities) SendFailedEmail(
	ctx context.Context,
	in domain.NotifyInput,
) (*domain.NotificationResult, error) {
	return a.deliver(ctx, metrics.KindRejected, mail.RejectedMessage(in.Email, in.Reason)), nil
}

// deliver makes a single delivery attempt. Transport failures become the
// result's Error; they are never returned.
func (a *Activities) deliver(ctx context.Context, kind string, msg mail.Message) *domain.NotificationResult {
	msg.To = strings.TrimSpace(msg.To)
	if msg.To == "" {
		a.metrics.Notified(kind, errMissingRecipient)
		baseactivity.SafeLogWarn(ctx, "Notification skipped, no recipient", "kind", kind)
		return &domain.NotificationResult{Sent: false, Error: errMissingRecipient}
	}

	err := a.sender.Send(ctx, msg)
	code := mail.ErrorCode(err)
	a.metrics.Notified(kind, code)
	if err != nil {
		baseactivity.SafeLogWarn(ctx, "Notification not delivered",
			"kind", kind,
			"to", msg.To,
			"error", code)
		return &domain.NotificationResult{Sent: false, Error: code}
	}

	baseactivity.SafeLog(ctx, "Notification delivered", "kind", kind, "to", msg.To)
	return &domain.NotificationResult{Sent: true}
}
