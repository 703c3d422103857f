package mail

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedSender waits for a limiter token before each delivery.
type RateLimitedSender struct {
	next    Sender
	limiter *rate.Limiter
}

// NewRateLimitedSender allows perSecond messages per second with the given
// burst. A non-positive rate returns next unchanged.
func NewRateLimitedSender(next Sender, perSecond float64, burst int) Sender {
	if perSecond <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedSender{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Send implements Sender.
func (s *RateLimitedSender) Send(ctx context.Context, msg Message) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail: rate limit wait: %w", err)
	}
	return s.next.Send(ctx, msg)
}
