package markets

import (
	"github.com/yourusername/footy-better/internal/models"
)

// Context rules reshape pick priorities when the match profile clearly
// favors or contradicts a market family. They touch priority only, never
// the modeled probability.
const (
	defensiveGoalRate      = 1.5
	oneSidedProbabilityGap = 0.35
	oneSidedFormGap        = 0.40
	rulePriorityBoost      = 1.25
	rulePriorityDiscount   = 0.80
)

func (g *Generator) applyContextRules(picks []*models.SuggestedPick, homeStats, awayStats *models.TeamStatistics, pred *models.Prediction) {
	if homeStats == nil || awayStats == nil {
		return
	}

	if isDefensiveStruggle(homeStats, awayStats) {
		for _, p := range picks {
			switch {
			case favorsLowScoring(p.Market):
				p.PriorityScore *= rulePriorityBoost
				p.AddNote("defensive struggle favors this market")
			case favorsHighScoring(p.Market):
				p.PriorityScore *= rulePriorityDiscount
			}
		}
	}

	if strongSide, ok := oneSidedSide(homeStats, awayStats, pred); ok {
		for _, p := range picks {
			switch {
			case favorsSide(p.Market, strongSide):
				p.PriorityScore *= rulePriorityBoost
				p.AddNote("one-sided matchup favors this market")
			case contradictsSide(p.Market, strongSide):
				p.PriorityScore *= rulePriorityDiscount
			}
		}
	}
}

// isDefensiveStruggle holds when both sides average under 1.5 goals scored.
func isDefensiveStruggle(homeStats, awayStats *models.TeamStatistics) bool {
	return homeStats.MatchesPlayed > 0 && awayStats.MatchesPlayed > 0 &&
		homeStats.GoalsScoredPerMatch() < defensiveGoalRate &&
		awayStats.GoalsScoredPerMatch() < defensiveGoalRate
}

// oneSidedSide detects a large gap in either outcome probability or recent
// form, returning the stronger side.
func oneSidedSide(homeStats, awayStats *models.TeamStatistics, pred *models.Prediction) (models.TeamSide, bool) {
	probGap := pred.HomeWin - pred.AwayWin
	formGap := homeStats.FormPoints() - awayStats.FormPoints()

	if probGap >= oneSidedProbabilityGap || (formGap >= oneSidedFormGap && probGap > 0) {
		return models.SideHome, true
	}
	if -probGap >= oneSidedProbabilityGap || (-formGap >= oneSidedFormGap && probGap < 0) {
		return models.SideAway, true
	}
	return models.SideNone, false
}

func favorsLowScoring(m models.Market) bool {
	switch m.Kind {
	case models.MarketTotalGoals, models.MarketTeamGoals:
		return m.Selection == models.SelectUnder
	case models.MarketBTTS:
		return m.Selection == models.SelectNo
	case models.MarketAsianHandicap:
		return true
	}
	return false
}

func favorsHighScoring(m models.Market) bool {
	switch m.Kind {
	case models.MarketTotalGoals, models.MarketTeamGoals:
		return m.Selection == models.SelectOver
	case models.MarketBTTS:
		return m.Selection == models.SelectYes
	}
	return false
}

func favorsSide(m models.Market, side models.TeamSide) bool {
	switch m.Kind {
	case models.MarketWinner:
		return (side == models.SideHome && m.Selection == models.SelectHome) ||
			(side == models.SideAway && m.Selection == models.SelectAway)
	case models.MarketDoubleChance:
		return (side == models.SideHome && m.Selection == models.SelectHomeOrDraw) ||
			(side == models.SideAway && m.Selection == models.SelectDrawOrAway)
	case models.MarketAsianHandicap:
		return m.Side == side
	case models.MarketTeamGoals:
		return m.Side == side && m.Selection == models.SelectOver
	}
	return false
}

func contradictsSide(m models.Market, side models.TeamSide) bool {
	switch m.Kind {
	case models.MarketWinner:
		if m.Selection == models.SelectDraw {
			return true
		}
		return (side == models.SideHome && m.Selection == models.SelectAway) ||
			(side == models.SideAway && m.Selection == models.SelectHome)
	case models.MarketAsianHandicap:
		return m.Side != side && m.Side != models.SideNone
	}
	return false
}
