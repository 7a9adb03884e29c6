// Package metrics defines data-source-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Feed client counters
var (
	FeedRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "footy_better",
		Name:      "feed_requests_total",
		Help:      "Total number of fixture feed requests by endpoint and status",
	}, []string{"endpoint", "status"})
	FeedRateLimitWaitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "footy_better",
		Name:      "feed_rate_limit_waits_total",
		Help:      "Total number of requests delayed by the rate limiter",
	})
)

// Feed client histograms
var (
	FeedRequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "footy_better",
		Name:      "feed_request_duration_seconds",
		Help:      "Duration of fixture feed requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// Feed client gauges
var (
	FeedBreakerOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "footy_better",
		Name:      "feed_breaker_open",
		Help:      "Whether the feed circuit breaker is open (1) or closed (0)",
	})
)

// Odds stream counters
var (
	StreamMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "footy_better",
		Name:      "stream_messages_total",
		Help:      "Total number of odds stream messages received",
	})
	StreamReconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "footy_better",
		Name:      "stream_reconnects_total",
		Help:      "Total number of odds stream reconnections",
	})
	OddsUpdatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "footy_better",
		Name:      "odds_updates_total",
		Help:      "Total number of applied odds snapshot updates",
	})
)

// RecordFeedRequest records a fixture feed request.
// status should be one of: "success", "error", "breaker_open"
func RecordFeedRequest(endpoint, status string, durationSeconds float64) {
	FeedRequestsTotal.WithLabelValues(endpoint, status).Inc()
	FeedRequestDuration.Observe(durationSeconds)
}

// RecordRateLimitWait records a request delayed by the rate limiter.
func RecordRateLimitWait() {
	FeedRateLimitWaitsTotal.Inc()
}

// SetBreakerOpen updates the circuit breaker state gauge.
func SetBreakerOpen(open bool) {
	if open {
		FeedBreakerOpen.Set(1)
	} else {
		FeedBreakerOpen.Set(0)
	}
}

// RecordStreamMessage records a received odds stream message.
func RecordStreamMessage() {
	StreamMessagesTotal.Inc()
}

// RecordStreamReconnect records an odds stream reconnection.
func RecordStreamReconnect() {
	StreamReconnectsTotal.Inc()
}

// RecordOddsUpdate records an applied odds snapshot update.
func RecordOddsUpdate() {
	OddsUpdatesTotal.Inc()
}
