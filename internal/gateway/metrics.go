package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	refreshOutcomeSuccess string = "success"
	refreshOutcomeFailure string = "failure"
	// the session was cleared or replaced while the refresh was in flight
	refreshOutcomeSuperseded string = "superseded"
	replayReasonRefreshed    string = "refreshed"
	replayReasonStale        string = "stale"
)

// Metrics holds the prometheus metrics recorded by the gateway.
type Metrics struct {
	RefreshesTotal      *prometheus.CounterVec
	RefreshDuration     prometheus.Histogram
	QueuedRequestsTotal prometheus.Counter
	ReplaysTotal        *prometheus.CounterVec
	SessionsLostTotal   prometheus.Counter
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RefreshesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coursehub_gateway",
				Name:      "refreshes_total",
				Help:      "Total number of credential refresh calls",
			},
			[]string{"outcome"}, // outcome=success/failure/superseded
		),
		RefreshDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "coursehub_gateway",
				Name:      "refresh_duration_seconds",
				Help:      "Duration of the credential refresh calls in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		QueuedRequestsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "coursehub_gateway",
				Name:      "queued_requests_total",
				Help:      "Total number of requests that waited for an ongoing refresh",
			},
		),
		ReplaysTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coursehub_gateway",
				Name:      "replays_total",
				Help:      "Total number of requests replayed after an unauthorized response",
			},
			[]string{"reason"}, // reason=refreshed/stale
		),
		SessionsLostTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "coursehub_gateway",
				Name:      "sessions_lost_total",
				Help:      "Total number of sessions that could not be recovered",
			},
		),
	}
}
