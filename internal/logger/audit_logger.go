// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for staking decisions.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogPickRecorded logs a persisted pick with its staking context.
func (al *AuditLogger) LogPickRecorded(pickID, matchID, marketKey, selection string, stakeUnits, odds, probability float64, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"pick_id":     pickID,
		"match_id":    matchID,
		"market":      marketKey,
		"selection":   selection,
		"stake_units": stakeUnits,
		"odds":        odds,
		"probability": probability,
		"timestamp":   timestamp.Unix(),
	}).Info("Pick recorded")
}

// LogPickResolved logs a settled pick.
func (al *AuditLogger) LogPickResolved(pickID, matchID, result string, payout float64) {
	al.WithFields(logrus.Fields{
		"pick_id":  pickID,
		"match_id": matchID,
		"result":   result,
		"payout":   payout,
	}).Info("Pick resolved")
}

// LogPortfolioDecision logs the outcome of a bankroll constraint pass.
func (al *AuditLogger) LogPortfolioDecision(day string, candidates, approved, trimmed, dropped int, dayExposure float64) {
	al.WithFields(logrus.Fields{
		"day":          day,
		"candidates":   candidates,
		"approved":     approved,
		"trimmed":      trimmed,
		"dropped":      dropped,
		"day_exposure": dayExposure,
	}).Info("Portfolio constraints applied")
}

// LogTrainingRun logs the terminal state of a backtest run.
func (al *AuditLogger) LogTrainingRun(runID, status string, bets int, roi float64, classifierTrained bool) {
	al.WithFields(logrus.Fields{
		"run_id":             runID,
		"status":             status,
		"bets":               bets,
		"roi":                roi,
		"classifier_trained": classifierTrained,
	}).Info("Backtest run recorded")
}
