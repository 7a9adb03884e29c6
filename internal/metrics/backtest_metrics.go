// Package metrics defines backtesting-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counters
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "footy_better",
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by terminal status",
	}, []string{"status"})
	BacktestBetsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "footy_better",
		Name:      "backtest_bets_total",
		Help:      "Total number of simulated bets across all backtest runs",
	})
)

// Backtest histograms
var (
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "footy_better",
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// Backtest gauges
var (
	LastBacktestROI = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "footy_better",
		Name:      "last_backtest_roi",
		Help:      "ROI of the most recent completed backtest run",
	})
	LastBacktestAccuracy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "footy_better",
		Name:      "last_backtest_accuracy",
		Help:      "Hit rate of the most recent completed backtest run",
	})
)

// RecordBacktestRun records a backtest run event.
// status should be one of: "COMPLETED", "ERROR"
func RecordBacktestRun(status string, durationSeconds float64) {
	BacktestRunsTotal.WithLabelValues(status).Inc()
	BacktestDuration.Observe(durationSeconds)
}

// RecordBacktestOutcome records the aggregate outcome of a completed run.
func RecordBacktestOutcome(roi, accuracy float64, bets int) {
	LastBacktestROI.Set(roi)
	LastBacktestAccuracy.Set(accuracy)
	BacktestBetsTotal.Add(float64(bets))
}
