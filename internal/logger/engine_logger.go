// Package logger provides engine-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// EngineLogger provides dedicated logging for the prediction pipeline.
type EngineLogger struct {
	*logrus.Entry
}

// NewEngineLogger creates a new engine logger.
func NewEngineLogger(baseLogger *logrus.Logger) *EngineLogger {
	return &EngineLogger{
		Entry: baseLogger.WithField("component", "engine"),
	}
}

// LogPrediction logs a completed match prediction.
func (el *EngineLogger) LogPrediction(matchID, homeTeam, awayTeam string, homeWin, draw, awayWin, confidence float64, durationMs float64) {
	el.WithFields(logrus.Fields{
		"match_id":    matchID,
		"home_team":   homeTeam,
		"away_team":   awayTeam,
		"p_home_win":  homeWin,
		"p_draw":      draw,
		"p_away_win":  awayWin,
		"confidence":  confidence,
		"duration_ms": durationMs,
	}).Info("Match prediction completed")
}

// LogPickGenerated logs a generated market pick.
func (el *EngineLogger) LogPickGenerated(pickID, matchID, marketKey, selection string, probability, odds float64, oddsSource string, expectedValue float64, recommended bool) {
	el.WithFields(logrus.Fields{
		"pick_id":        pickID,
		"match_id":       matchID,
		"market":         marketKey,
		"selection":      selection,
		"probability":    probability,
		"odds":           odds,
		"odds_source":    oddsSource,
		"expected_value": expectedValue,
		"recommended":    recommended,
	}).Info("Market pick generated")
}

// LogPredictionSkipped logs a fixture the engine could not price.
func (el *EngineLogger) LogPredictionSkipped(matchID, homeTeam, awayTeam, reason string) {
	el.WithFields(logrus.Fields{
		"match_id":  matchID,
		"home_team": homeTeam,
		"away_team": awayTeam,
		"reason":    reason,
	}).Debug("Fixture skipped")
}

// LogPipelineRun logs a completed end-to-end pick pipeline run.
func (el *EngineLogger) LogPipelineRun(competitionID string, fixtures, predictions, picks, approved int, durationMs float64) {
	el.WithFields(logrus.Fields{
		"competition_id": competitionID,
		"fixtures":       fixtures,
		"predictions":    predictions,
		"picks":          picks,
		"approved":       approved,
		"duration_ms":    durationMs,
	}).Info("Pick pipeline run completed")
}
