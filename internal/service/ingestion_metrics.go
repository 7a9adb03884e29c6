package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionMetrics tracks statistics about one result-sync cycle. Counts
// exported to Prometheus live in internal/metrics; this struct is for run
// summaries and log lines.
type IngestionMetrics struct {
	mu               sync.RWMutex
	StartTime        time.Time
	Duration         time.Duration
	TotalFetched     int
	UpsertedMatches  int
	CompletedMatches int
	ValidationErrors int
	Errors           int
	ResolvedPicks    int
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{
		StartTime: time.Now(),
	}
}

// Reset resets all metrics
func (m *IngestionMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.TotalFetched = 0
	m.UpsertedMatches = 0
	m.CompletedMatches = 0
	m.ValidationErrors = 0
	m.Errors = 0
	m.ResolvedPicks = 0
}

// RecordFetched adds to the fetched fixture count
func (m *IngestionMetrics) RecordFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalFetched += n
}

// RecordUpserted adds to the persisted fixture count
func (m *IngestionMetrics) RecordUpserted(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertedMatches += n
}

// RecordCompleted increments the finished-match count
func (m *IngestionMetrics) RecordCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompletedMatches++
}

// RecordValidationError increments validation error count
func (m *IngestionMetrics) RecordValidationError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidationErrors++
}

// RecordError increments error count
func (m *IngestionMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// RecordResolved increments the settled pick count
func (m *IngestionMetrics) RecordResolved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResolvedPicks++
}

// SetDuration records the elapsed time of the cycle
func (m *IngestionMetrics) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duration = d
}

// String returns a formatted string representation of metrics
func (m *IngestionMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fmt.Sprintf(
		"IngestionMetrics{Fetched=%d, Upserted=%d, Completed=%d, ValidationErrors=%d, Errors=%d, Resolved=%d, Duration=%v}",
		m.TotalFetched,
		m.UpsertedMatches,
		m.CompletedMatches,
		m.ValidationErrors,
		m.Errors,
		m.ResolvedPicks,
		m.Duration,
	)
}
