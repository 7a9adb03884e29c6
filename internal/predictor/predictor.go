// Package predictor converts team and league statistics into expected
// goals, outcome and market probabilities, and an overall confidence score.
package predictor

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-better/internal/models"
)

// Config holds the model parameters. Zero values are not usable; start from
// DefaultConfig.
type Config struct {
	// MinMatches is the sample floor below which Predict refuses to run.
	MinMatches int `json:"min_matches"`

	MaxGoals       int     `json:"max_goals"`
	Rho            float64 `json:"rho"`
	MinVenueSample int     `json:"min_venue_sample"`

	FormSteepness        float64 `json:"form_steepness"`
	AvailabilityDecay    float64 `json:"availability_decay"`
	AvailabilityFloor    float64 `json:"availability_floor"`
	SentimentSensitivity float64 `json:"sentiment_sensitivity"`

	QualityMidpoint     float64 `json:"quality_midpoint"`
	QualityScale        float64 `json:"quality_scale"`
	LowQualityThreshold float64 `json:"low_quality_threshold"`
	LowQualityCap       float64 `json:"low_quality_cap"`
}

// DefaultConfig returns the production parameters.
func DefaultConfig() Config {
	return Config{
		MinMatches:           6,
		MaxGoals:             DefaultMaxGoals,
		Rho:                  DefaultRho,
		MinVenueSample:       3,
		FormSteepness:        6.0,
		AvailabilityDecay:    0.07,
		AvailabilityFloor:    0.7,
		SentimentSensitivity: 0.5,
		QualityMidpoint:      21.0,
		QualityScale:         4.0,
		LowQualityThreshold:  0.2,
		LowQualityCap:        0.45,
	}
}

// Predictor is the probability model. It is stateless across calls and safe
// for concurrent use.
type Predictor struct {
	cfg    Config
	logger *logrus.Logger
}

// New creates a Predictor.
func New(cfg Config, logger *logrus.Logger) *Predictor {
	if cfg.MinMatches <= 0 {
		cfg.MinMatches = DefaultConfig().MinMatches
	}
	if cfg.MaxGoals <= 0 {
		cfg.MaxGoals = DefaultMaxGoals
	}
	return &Predictor{cfg: cfg, logger: logger}
}

// Predict models a fixture from both teams' statistics and a league (or
// global fallback) baseline. It returns ErrInsufficientData when either
// sample is below the minimum or no usable baseline exists; it never
// fabricates a prediction.
func (p *Predictor) Predict(match *models.Match, homeStats, awayStats *models.TeamStatistics, league, global *models.LeagueAverages) (*models.Prediction, error) {
	return p.PredictWithLineups(match, homeStats, awayStats, league, global, nil, nil)
}

// PredictWithLineups is Predict with optional lineup-availability reports.
func (p *Predictor) PredictWithLineups(match *models.Match, homeStats, awayStats *models.TeamStatistics, league, global *models.LeagueAverages, homeLineup, awayLineup *models.LineupReport) (*models.Prediction, error) {
	if match == nil {
		return nil, fmt.Errorf("%w: no match", models.ErrInsufficientData)
	}
	if homeStats == nil || awayStats == nil {
		return nil, fmt.Errorf("%w: missing team statistics for %s vs %s", models.ErrInsufficientData, match.HomeTeam, match.AwayTeam)
	}
	if homeStats.MatchesPlayed < p.cfg.MinMatches {
		return nil, fmt.Errorf("%w: %s has played %d matches, need %d", models.ErrInsufficientData, homeStats.TeamName, homeStats.MatchesPlayed, p.cfg.MinMatches)
	}
	if awayStats.MatchesPlayed < p.cfg.MinMatches {
		return nil, fmt.Errorf("%w: %s has played %d matches, need %d", models.ErrInsufficientData, awayStats.TeamName, awayStats.MatchesPlayed, p.cfg.MinMatches)
	}

	sources := []string{"team_statistics"}
	baseline := league
	switch {
	case league.Usable():
		sources = append(sources, "league_averages")
	case global.Usable():
		baseline = global
		sources = append(sources, "global_averages")
	default:
		return nil, fmt.Errorf("%w: no usable goal baselines for competition %s", models.ErrInsufficientData, match.CompetitionID)
	}

	homeStrength := p.strengths(true, homeStats, baseline)
	awayStrength := p.strengths(false, awayStats, baseline)

	homeStrength.Availability = p.availabilityFactor(homeLineup)
	awayStrength.Availability = p.availabilityFactor(awayLineup)
	if homeLineup != nil || awayLineup != nil {
		sources = append(sources, "lineups")
	}

	if match.Odds.Valid() {
		homeStrength.Sentiment = p.sentimentFactor(match.Odds.HomeDrift())
		awayStrength.Sentiment = p.sentimentFactor(match.Odds.AwayDrift())
		sources = append(sources, "market_odds")
	}

	lambdaHome := baseline.HomeGoals * homeStrength.AttackMultiplier() * awayStrength.Defense
	lambdaAway := baseline.AwayGoals * awayStrength.AttackMultiplier() * homeStrength.Defense

	grid := NewScoreGridSized(lambdaHome, lambdaAway, p.cfg.MaxGoals, p.cfg.Rho)
	home, draw, away := grid.Outcomes()

	sample := homeStats.MatchesPlayed
	if awayStats.MatchesPlayed < sample {
		sample = awayStats.MatchesPlayed
	}

	pred := &models.Prediction{
		MatchID:           match.ID,
		GeneratedAt:       time.Now().UTC(),
		HomeWin:           home,
		Draw:              draw,
		AwayWin:           away,
		Over25:            grid.TotalOver(2.5),
		Under25:           grid.TotalUnder(2.5),
		BTTS:              grid.BothTeamsScore(),
		ExpectedHomeGoals: clampLambda(lambdaHome),
		ExpectedAwayGoals: clampLambda(lambdaAway),
		ExpectedCorners:   p.cornerExpectation(homeStats, awayStats, baseline),
		ExpectedCards:     p.cardExpectation(homeStats, awayStats, baseline),
		Confidence: p.confidence(confidenceInput{
			homeWin:    home,
			draw:       draw,
			awayWin:    away,
			sampleSize: sample,
			odds:       match.Odds,
			homeForm:   homeStats.RecentForm,
			awayForm:   awayStats.RecentForm,
		}),
		HomeSampleSize: homeStats.MatchesPlayed,
		AwaySampleSize: awayStats.MatchesPlayed,
		DataSources:    sources,
	}

	if p.logger != nil {
		p.logger.WithFields(logrus.Fields{
			"match_id":    match.ID,
			"home_team":   match.HomeTeam,
			"away_team":   match.AwayTeam,
			"lambda_home": pred.ExpectedHomeGoals,
			"lambda_away": pred.ExpectedAwayGoals,
			"home_win":    pred.HomeWin,
			"draw":        pred.Draw,
			"away_win":    pred.AwayWin,
			"confidence":  pred.Confidence,
		}).Debug("Prediction generated")
	}

	return pred, nil
}

// cornerExpectation sums both sides' corner rates, standing the league
// baseline in for a side with no recorded corner samples.
func (p *Predictor) cornerExpectation(homeStats, awayStats *models.TeamStatistics, baseline *models.LeagueAverages) float64 {
	return teamRateOr(homeStats.CornersPerMatch(), homeStats.CornerSamples, baseline.Corners/2) +
		teamRateOr(awayStats.CornersPerMatch(), awayStats.CornerSamples, baseline.Corners/2)
}

// cardExpectation does the same for bookings.
func (p *Predictor) cardExpectation(homeStats, awayStats *models.TeamStatistics, baseline *models.LeagueAverages) float64 {
	return teamRateOr(homeStats.CardsPerMatch(), homeStats.CardSamples, baseline.Cards/2) +
		teamRateOr(awayStats.CardsPerMatch(), awayStats.CardSamples, baseline.Cards/2)
}

// CountRate picks a side's corner or card rate, standing the fallback in
// when the side has no recorded samples. Shared with the market generator so
// both layers see the same per-side rates.
func CountRate(rate float64, samples int, fallback float64) float64 {
	return teamRateOr(rate, samples, fallback)
}

func teamRateOr(rate float64, samples int, fallback float64) float64 {
	if samples > 0 {
		return rate
	}
	if fallback > 0 {
		return fallback
	}
	return 0
}
