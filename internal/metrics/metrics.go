// Package metrics provides the centralized Prometheus registry for the
// prediction engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "footy_better",
		Name:      "predictions_total",
		Help:      "Total number of match predictions computed",
	})
	PredictionsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "footy_better",
		Name:      "predictions_skipped_total",
		Help:      "Total number of fixtures skipped by reason",
	}, []string{"reason"})
	PicksGeneratedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "footy_better",
		Name:      "picks_generated_total",
		Help:      "Total number of market picks generated by market key",
	}, []string{"market"})
	PicksRecommendedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "footy_better",
		Name:      "picks_recommended_total",
		Help:      "Total number of picks passing the recommendation threshold",
	})
	PicksResolvedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "footy_better",
		Name:      "picks_resolved_total",
		Help:      "Total number of picks resolved by result",
	}, []string{"result"})
)

// Gauge metrics
var (
	DayExposure = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "footy_better",
		Name:      "day_exposure_fraction",
		Help:      "Bankroll fraction committed to today's approved picks",
	})
	PendingPicks = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "footy_better",
		Name:      "pending_picks",
		Help:      "Number of persisted picks awaiting resolution",
	})
)

// Histogram metrics
var (
	PredictionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "footy_better",
		Name:      "prediction_duration_seconds",
		Help:      "Duration of single-match prediction computation in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	PickConfidence = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "footy_better",
		Name:      "pick_confidence_score",
		Help:      "Confidence scores of generated picks",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(PredictionsSkippedTotal)
		registry.MustRegister(PicksGeneratedTotal)
		registry.MustRegister(PicksRecommendedTotal)
		registry.MustRegister(PicksResolvedTotal)

		// Register gauge metrics
		registry.MustRegister(DayExposure)
		registry.MustRegister(PendingPicks)

		// Register histogram metrics
		registry.MustRegister(PredictionDuration)
		registry.MustRegister(PickConfidence)

		// Register backtest metrics
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestDuration)
		registry.MustRegister(LastBacktestROI)
		registry.MustRegister(LastBacktestAccuracy)
		registry.MustRegister(BacktestBetsTotal)

		// Register datasource metrics
		registry.MustRegister(FeedRequestsTotal)
		registry.MustRegister(FeedRequestDuration)
		registry.MustRegister(FeedRateLimitWaitsTotal)
		registry.MustRegister(FeedBreakerOpen)
		registry.MustRegister(StreamMessagesTotal)
		registry.MustRegister(StreamReconnectsTotal)
		registry.MustRegister(OddsUpdatesTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPrediction records a completed match prediction.
func RecordPrediction(durationSeconds float64) {
	PredictionsTotal.Inc()
	PredictionDuration.Observe(durationSeconds)
}

// RecordPredictionSkipped records a fixture skipped before prediction.
// reason should be one of: "insufficient_data", "error"
func RecordPredictionSkipped(reason string) {
	PredictionsSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordPickGenerated records a generated pick for a market.
func RecordPickGenerated(market string) {
	PicksGeneratedTotal.WithLabelValues(market).Inc()
}

// RecordPickRecommended records a pick passing the recommendation threshold.
func RecordPickRecommended() {
	PicksRecommendedTotal.Inc()
}

// RecordPickResolved records a resolved pick.
// result should be one of: "WIN", "LOSS", "VOID", "UNKNOWN"
func RecordPickResolved(result string) {
	PicksResolvedTotal.WithLabelValues(result).Inc()
}

// RecordPickConfidence records the confidence score of a generated pick.
func RecordPickConfidence(score float64) {
	PickConfidence.Observe(score)
}

// UpdateDayExposure updates the committed day exposure gauge.
func UpdateDayExposure(fraction float64) {
	DayExposure.Set(fraction)
}

// UpdatePendingPicks updates the pending picks gauge.
func UpdatePendingPicks(count float64) {
	PendingPicks.Set(count)
}
