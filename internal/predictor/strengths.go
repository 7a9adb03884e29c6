package predictor

import (
	"math"

	"github.com/yourusername/footy-better/internal/models"
)

// strengthFloor and strengthCeiling bound the attack/defense multipliers so
// one freak spell of results cannot explode the goal expectation.
const (
	strengthFloor   = 0.2
	strengthCeiling = 3.0
)

// strengths derives a side's venue-specific multipliers. Attack relates what
// the team scores at this venue to what the average side scores there;
// defense relates what it concedes to what the average opponent scores.
// Below minVenueSample venue matches, overall rates stand in for the venue
// split.
func (p *Predictor) strengths(home bool, ts *models.TeamStatistics, baseline *models.LeagueAverages) models.TeamStrength {
	var scoredRate, concededRate float64
	var attackBase, defenseBase float64

	if home {
		attackBase, defenseBase = baseline.HomeGoals, baseline.AwayGoals
		if ts.HomePlayed >= p.cfg.MinVenueSample {
			scoredRate = ts.HomeGoalsScoredPerMatch()
			concededRate = ts.HomeGoalsConcededPerMatch()
		} else {
			scoredRate = ts.GoalsScoredPerMatch()
			concededRate = ts.GoalsConcededPerMatch()
		}
	} else {
		attackBase, defenseBase = baseline.AwayGoals, baseline.HomeGoals
		if ts.AwayPlayed >= p.cfg.MinVenueSample {
			scoredRate = ts.AwayGoalsScoredPerMatch()
			concededRate = ts.AwayGoalsConcededPerMatch()
		} else {
			scoredRate = ts.GoalsScoredPerMatch()
			concededRate = ts.GoalsConcededPerMatch()
		}
	}

	return models.TeamStrength{
		Attack:       clampStrength(scoredRate / attackBase),
		Defense:      clampStrength(concededRate / defenseBase),
		Form:         p.formFactor(ts.RecentForm),
		Availability: 1.0,
		Sentiment:    1.0,
	}
}

// formFactor converts the recent-form string into a sigmoid-bounded
// multiplier in [0.8, 1.2]. Results are recency-weighted: the newest letter
// counts most. An empty string is neutral.
func (p *Predictor) formFactor(form string) float64 {
	if len(form) == 0 {
		return 1.0
	}
	var score, weightSum float64
	for i, r := range form {
		w := float64(i + 1)
		weightSum += w
		switch r {
		case 'W':
			score += w
		case 'D':
			score += w * 0.5
		}
	}
	normalized := score / weightSum
	return 0.8 + 0.4*sigmoid(p.cfg.FormSteepness*(normalized-0.5))
}

// availabilityFactor discounts a side for confirmed missing key players,
// roughly 7% each, floored so a decimated lineup still fields eleven.
func (p *Predictor) availabilityFactor(lineup *models.LineupReport) float64 {
	if lineup == nil || lineup.MissingKeyPlayers <= 0 {
		return 1.0
	}
	factor := math.Pow(1.0-p.cfg.AvailabilityDecay, float64(lineup.MissingKeyPlayers))
	if factor < p.cfg.AvailabilityFloor {
		return p.cfg.AvailabilityFloor
	}
	return factor
}

// sentimentFactor turns odds drift into a multiplier. A shortening price
// (negative drift) means money arriving on that side, nudging the
// expectation up; a drifting price nudges it down. Capped at ±15%.
func (p *Predictor) sentimentFactor(drift float64) float64 {
	factor := 1.0 - drift*p.cfg.SentimentSensitivity
	if factor > 1.15 {
		return 1.15
	}
	if factor < 0.85 {
		return 0.85
	}
	return factor
}

func clampStrength(v float64) float64 {
	if math.IsNaN(v) || v < strengthFloor {
		return strengthFloor
	}
	if v > strengthCeiling {
		return strengthCeiling
	}
	return v
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
