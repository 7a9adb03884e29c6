package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewParsesLevel(t *testing.T) {
	log := New("debug", "development")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNewFallsBackToInfoOnBadLevel(t *testing.T) {
	log := New("verbose", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewUsesJSONInProduction(t *testing.T) {
	log := New("info", "production")
	_, ok := log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok, "production logger should emit JSON")

	log = New("info", "development")
	_, ok = log.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok, "development logger should emit text")
}

func TestEngineLoggerPrediction(t *testing.T) {
	log, buf := setupTestLogger()
	engineLogger := NewEngineLogger(log)

	engineLogger.LogPrediction(
		"match_123",
		"Arsenal",
		"Chelsea",
		0.48,
		0.27,
		0.25,
		0.61,
		12.5,
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "match_123", logEntry["match_id"])
	assert.Equal(t, "engine", logEntry["component"])
	assert.Equal(t, 0.48, logEntry["p_home_win"])
}

func TestEngineLoggerPickGenerated(t *testing.T) {
	log, buf := setupTestLogger()
	engineLogger := NewEngineLogger(log)

	engineLogger.LogPickGenerated(
		"pick_001",
		"match_123",
		"under_2.5",
		"UNDER",
		0.71,
		1.48,
		"market",
		0.0508,
		true,
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "under_2.5", logEntry["market"])
	assert.Equal(t, true, logEntry["recommended"])
	assert.Equal(t, "market", logEntry["odds_source"])
}

func TestEngineLoggerPredictionSkipped(t *testing.T) {
	log, buf := setupTestLogger()
	engineLogger := NewEngineLogger(log)

	engineLogger.LogPredictionSkipped("match_9", "Newly Promoted", "Arsenal", "insufficient history")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "insufficient history", logEntry["reason"])
	assert.Equal(t, "debug", logEntry["level"])
}

func TestEngineLoggerPipelineRun(t *testing.T) {
	log, buf := setupTestLogger()
	engineLogger := NewEngineLogger(log)

	engineLogger.LogPipelineRun("premier-league", 10, 8, 14, 3, 420.0)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "premier-league", logEntry["competition_id"])
	assert.Equal(t, float64(3), logEntry["approved"])
}

func TestAuditLoggerPickRecorded(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogPickRecorded(
		"pick_001",
		"match_123",
		"winner",
		"HOME",
		2.0,
		2.10,
		0.52,
		time.Date(2025, 8, 3, 12, 0, 0, 0, time.UTC),
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "pick_001", logEntry["pick_id"])
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, float64(2.0), logEntry["stake_units"])
}

func TestAuditLoggerPickResolved(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogPickResolved("pick_001", "match_123", "WIN", 2.10)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "WIN", logEntry["result"])
	assert.Equal(t, 2.10, logEntry["payout"])
}

func TestAuditLoggerPortfolioDecision(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogPortfolioDecision("2025-08-03", 9, 3, 1, 5, 0.05)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "2025-08-03", logEntry["day"])
	assert.Equal(t, float64(5), logEntry["dropped"])
}

func TestAuditLoggerTrainingRun(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogTrainingRun("run_42", "COMPLETED", 31, 0.083, true)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "COMPLETED", logEntry["status"])
	assert.Equal(t, true, logEntry["classifier_trained"])
}
