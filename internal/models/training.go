package models

import (
	"time"

	"github.com/google/uuid"
)

// MarketEfficiency aggregates realized performance of one market key across
// a backtest run.
type MarketEfficiency struct {
	MarketKey string  `json:"market_key"`
	Bets      int     `json:"bets"`
	Wins      int     `json:"wins"`
	Voids     int     `json:"voids"`
	Staked    float64 `json:"staked"`
	Returned  float64 `json:"returned"`
}

// HitRate returns wins over decided bets (voids excluded).
func (e *MarketEfficiency) HitRate() float64 {
	decided := e.Bets - e.Voids
	if decided == 0 {
		return 0.0
	}
	return float64(e.Wins) / float64(decided)
}

// ROI returns net return over amount staked.
func (e *MarketEfficiency) ROI() float64 {
	if e.Staked == 0 {
		return 0.0
	}
	return (e.Returned - e.Staked) / e.Staked
}

// DailyROI is one point of the day-indexed ROI evolution curve.
type DailyROI struct {
	Day           time.Time `json:"day"`
	Matches       int       `json:"matches"`
	Bets          int       `json:"bets"`
	Staked        float64   `json:"staked"`
	Returned      float64   `json:"returned"`
	CumulativeROI float64   `json:"cumulative_roi"`
}

// ClassifierSummary describes the refinement-classifier training step of a
// run.
type ClassifierSummary struct {
	Trained       bool    `json:"trained"`
	Samples       int     `json:"samples"`
	TrainAccuracy float64 `json:"train_accuracy"`
	ModelPath     string  `json:"model_path,omitempty"`
	SkipReason    string  `json:"skip_reason,omitempty"`
}

// TrainingResult is the terminal, immutable artifact of one backtest run.
type TrainingResult struct {
	RunID            uuid.UUID                    `json:"run_id"`
	CompetitionIDs   []string                     `json:"competition_ids"`
	StartDay         time.Time                    `json:"start_day"`
	EndDay           time.Time                    `json:"end_day"`
	MatchesProcessed int                          `json:"matches_processed"`
	BetCount         int                          `json:"bet_count"`
	Wins             int                          `json:"wins"`
	Losses           int                          `json:"losses"`
	Voids            int                          `json:"voids"`
	TotalStaked      float64                      `json:"total_staked"`
	TotalReturned    float64                      `json:"total_returned"`
	MarketEfficiency map[string]*MarketEfficiency `json:"market_efficiency"`
	ROICurve         []DailyROI                   `json:"roi_curve"`
	Classifier       ClassifierSummary            `json:"classifier"`

	// FinalStats snapshots every team's rolling statistics at the end of the
	// replay, reusable as a warm starting point for live inference.
	FinalStats map[string]*TeamStatistics `json:"final_stats"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Accuracy returns wins over decided bets.
func (r *TrainingResult) Accuracy() float64 {
	decided := r.Wins + r.Losses
	if decided == 0 {
		return 0.0
	}
	return float64(r.Wins) / float64(decided)
}

// ROI returns net return over total staked across the whole run.
func (r *TrainingResult) ROI() float64 {
	if r.TotalStaked == 0 {
		return 0.0
	}
	return (r.TotalReturned - r.TotalStaked) / r.TotalStaked
}

// ProfitUnits returns net profit expressed in stake units.
func (r *TrainingResult) ProfitUnits() float64 {
	return r.TotalReturned - r.TotalStaked
}
