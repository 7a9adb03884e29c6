package metrics

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestInitRegistryIsIdempotent(t *testing.T) {
	first := InitRegistry()
	second := InitRegistry()
	assert.Same(t, first, second)
}

func TestRecordPrediction(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordPrediction(0.012)
	})
	assert.NotPanics(t, func() {
		RecordPredictionSkipped("insufficient_data")
	})
}

func TestRecordPickLifecycle(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordPickGenerated("under_2.5")
		RecordPickRecommended()
		RecordPickConfidence(0.61)
		RecordPickResolved("WIN")
	})
}

func TestUpdateDayExposure(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name     string
		exposure float64
	}{
		{name: "committed day", exposure: 0.05},
		{name: "empty day", exposure: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateDayExposure(tt.exposure)
			})
		})
	}
}

func TestBacktestMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordBacktestRun("COMPLETED", 42.5)
	})
	assert.NotPanics(t, func() {
		RecordBacktestOutcome(0.083, 0.58, 31)
	})
}

func TestDatasourceMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordFeedRequest("/matches", "success", 0.21)
		RecordRateLimitWait()
		SetBreakerOpen(true)
		SetBreakerOpen(false)
		RecordStreamMessage()
		RecordStreamReconnect()
		RecordOddsUpdate()
	})
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()

	handler := Handler()
	assert.NotNil(t, handler)
	assert.Implements(t, (*http.Handler)(nil), handler)
}

func BenchmarkRecordPrediction(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordPrediction(0.01)
	}
}

func BenchmarkRecordPickGenerated(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordPickGenerated("winner")
	}
}
