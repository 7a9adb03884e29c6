package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ProbabilitySumTolerance bounds how far a 1X2 triple may drift from 1.0
// after grid normalization.
const ProbabilitySumTolerance = 0.01

// Prediction is the probability model's output for one fixture.
type Prediction struct {
	MatchID     uuid.UUID `db:"match_id" json:"match_id"`
	GeneratedAt time.Time `db:"generated_at" json:"generated_at"`

	HomeWin float64 `db:"home_win" json:"home_win" validate:"gte=0,lte=1"`
	Draw    float64 `db:"draw" json:"draw" validate:"gte=0,lte=1"`
	AwayWin float64 `db:"away_win" json:"away_win" validate:"gte=0,lte=1"`

	Over25  float64 `db:"over_2_5" json:"over_2_5" validate:"gte=0,lte=1"`
	Under25 float64 `db:"under_2_5" json:"under_2_5" validate:"gte=0,lte=1"`
	BTTS    float64 `db:"btts" json:"btts" validate:"gte=0,lte=1"`

	ExpectedHomeGoals float64 `db:"expected_home_goals" json:"expected_home_goals" validate:"gte=0"`
	ExpectedAwayGoals float64 `db:"expected_away_goals" json:"expected_away_goals" validate:"gte=0"`
	ExpectedCorners   float64 `db:"expected_corners" json:"expected_corners" validate:"gte=0"`
	ExpectedCards     float64 `db:"expected_cards" json:"expected_cards" validate:"gte=0"`

	Confidence float64 `db:"confidence" json:"confidence" validate:"gte=0,lte=1"`

	HomeSampleSize int      `db:"home_sample_size" json:"home_sample_size"`
	AwaySampleSize int      `db:"away_sample_size" json:"away_sample_size"`
	DataSources    []string `db:"-" json:"data_sources"`
}

// TotalExpectedGoals returns the combined goal expectation.
func (p *Prediction) TotalExpectedGoals() float64 {
	return p.ExpectedHomeGoals + p.ExpectedAwayGoals
}

// MostLikelyOutcome returns the modal 1X2 outcome and its probability.
func (p *Prediction) MostLikelyOutcome() (MatchOutcome, float64) {
	outcome, prob := OutcomeHome, p.HomeWin
	if p.Draw > prob {
		outcome, prob = OutcomeDraw, p.Draw
	}
	if p.AwayWin > prob {
		outcome, prob = OutcomeAway, p.AwayWin
	}
	return outcome, prob
}

// OutcomeProbability returns the modeled probability of a 1X2 outcome.
func (p *Prediction) OutcomeProbability(outcome MatchOutcome) float64 {
	switch outcome {
	case OutcomeHome:
		return p.HomeWin
	case OutcomeDraw:
		return p.Draw
	case OutcomeAway:
		return p.AwayWin
	}
	return 0
}

// Validate checks the structural invariants: every probability in [0,1] and
// the 1X2 triple summing to 1 within tolerance.
func (p *Prediction) Validate() error {
	for name, v := range map[string]float64{
		"home_win":   p.HomeWin,
		"draw":       p.Draw,
		"away_win":   p.AwayWin,
		"over_2_5":   p.Over25,
		"under_2_5":  p.Under25,
		"btts":       p.BTTS,
		"confidence": p.Confidence,
	} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("probability %s out of range: %f", name, v)
		}
	}
	if sum := p.HomeWin + p.Draw + p.AwayWin; math.Abs(sum-1.0) > ProbabilitySumTolerance {
		return fmt.Errorf("outcome probabilities sum to %f, want 1.0", sum)
	}
	return nil
}
