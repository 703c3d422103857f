// Package metrics exposes Prometheus instruments for the screening pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jackwill99/temporal-hr/internal/mail"
)

const namespace = "screening"

// Notification kinds.
const (
	KindQualified = "qualified"
	KindRejected  = "rejected"
)

// Metrics groups the pipeline's instruments. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	screenings        *prometheus.CounterVec
	screeningDuration *prometheus.HistogramVec
	notifications     *prometheus.CounterVec
	ledgerMarked      prometheus.Counter
	activityErrors    *prometheus.CounterVec
}

// New registers the instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		screenings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "applications_screened_total",
				Help:      "Applications screened, by outcome and whether the result was replayed from the ledger.",
			},
			[]string{"outcome", "replayed"},
		),
		screeningDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scoring_duration_seconds",
				Help:      "Time spent in the scorer.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"external"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Notification delivery attempts, by kind and result.",
			},
			[]string{"kind", "result"},
		),
		ledgerMarked: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failed_records_marked_total",
				Help:      "Failed records transitioned to notified.",
			},
		),
		activityErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "activity_errors_total",
				Help:      "Activity errors, by activity and error type.",
			},
			[]string{"activity", "type"},
		),
	}
}

// Screened counts one screening outcome.
func (m *Metrics) Screened(outcome string, replayed bool) {
	if m == nil {
		return
	}
	r := "false"
	if replayed {
		r = "true"
	}
	m.screenings.WithLabelValues(outcome, r).Inc()
}

// ObserveScoring records scorer latency.
func (m *Metrics) ObserveScoring(d time.Duration, external bool) {
	if m == nil {
		return
	}
	e := "false"
	if external {
		e = "true"
	}
	m.screeningDuration.WithLabelValues(e).Observe(d.Seconds())
}

// Notified counts one delivery attempt. errCode is mail.ErrorCode of the
// send error, empty on success.
func (m *Metrics) Notified(kind, errCode string) {
	if m == nil {
		return
	}
	result := "sent"
	if errCode != "" {
		result = "failed"
		if errCode == mail.NotConfiguredCode {
			result = "not_configured"
		}
	}
	m.notifications.WithLabelValues(kind, result).Inc()
}

// Marked adds n transitioned records.
func (m *Metrics) Marked(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ledgerMarked.Add(float64(n))
}

// ActivityError counts an activity failure by error type.
func (m *Metrics) ActivityError(activity, errType string) {
	if m == nil {
		return
	}
	m.activityErrors.WithLabelValues(activity, errType).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
