package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for Promotrack.
type Metrics struct {
	// Attribution event metrics
	EventsRecorded *prometheus.CounterVec
	EventsDropped  *prometheus.CounterVec
	QueueDepth     prometheus.Gauge

	// Report metrics
	ReportFetches  *prometheus.CounterVec
	ReportLatency  *prometheus.HistogramVec
	ReconcileFills *prometheus.CounterVec
	ReconcileMiss  *prometheus.CounterVec

	// Subscription metrics
	SubscriptionPurchases   *prometheus.CounterVec
	SubscriptionActivations prometheus.Counter

	// Store metrics
	StoreErrors *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		EventsRecorded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_recorded_total",
				Help:      "Attribution events recorded per type",
			},
			[]string{"type"},
		),
		EventsDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_dropped_total",
				Help:      "Attribution events dropped, by reason",
			},
			[]string{"reason"},
		),
		QueueDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "event_queue_depth",
				Help:      "Current depth of the event dispatch queue",
			},
		),
		ReportFetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_fetches_total",
				Help:      "Report aggregations, by outcome",
			},
			[]string{"outcome"},
		),
		ReportLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "report_latency_seconds",
				Help:      "Report aggregation latency in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"outcome"},
		),
		ReconcileFills: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconcile_fills_total",
				Help:      "Metadata fields filled per reconciliation pass",
			},
			[]string{"pass"},
		),
		ReconcileMiss: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconcile_pass_misses_total",
				Help:      "Reconciliation passes that contributed nothing, by reason",
			},
			[]string{"pass", "reason"},
		),
		SubscriptionPurchases: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscription_purchases_total",
				Help:      "Campaign subscription purchases per tier",
			},
			[]string{"tier"},
		),
		SubscriptionActivations: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscription_activations_total",
				Help:      "Campaign subscriptions activated after payment",
			},
		),
		StoreErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_errors_total",
				Help:      "Document store failures, by operation",
			},
			[]string{"op"},
		),
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected by rate limiting",
			},
			[]string{"path"},
		),
	}
}

// RecordEvent counts a successfully recorded attribution event.
func (m *Metrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.EventsRecorded.WithLabelValues(eventType).Inc()
}

// RecordDrop counts a dropped attribution event.
func (m *Metrics) RecordDrop(reason string) {
	if m == nil {
		return
	}
	m.EventsDropped.WithLabelValues(reason).Inc()
}

// RecordReport counts a report aggregation and observes its latency.
func (m *Metrics) RecordReport(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ReportFetches.WithLabelValues(outcome).Inc()
	m.ReportLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
