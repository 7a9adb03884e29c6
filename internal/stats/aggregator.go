// Package stats reduces raw match histories into per-team and per-league
// rate statistics. Everything here is a pure function of its inputs; the
// replay engine and the live pipeline share these reducers.
package stats

import (
	"sort"
	"strings"

	"github.com/yourusername/footy-better/internal/models"
)

// FormLength is the number of trailing results kept in the recent-form
// string, oldest first.
const FormLength = 5

// ComputeTeamStatistics reduces a match history into one team's aggregate
// record. Matches are attributed by exact name first, then by
// case-insensitive substring containment to absorb source-naming variance
// ("Manchester United" vs "Manchester United FC"). Unplayed matches and
// matches not involving the team are skipped. An empty history yields an
// all-zero record.
func ComputeTeamStatistics(teamName string, history []*models.Match) *models.TeamStatistics {
	ts := &models.TeamStatistics{TeamName: teamName}

	ordered := make([]*models.Match, len(history))
	copy(ordered, history)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].KickoffTime.Before(ordered[j].KickoffTime)
	})

	for _, m := range ordered {
		Apply(ts, m)
	}
	return ts
}

// Apply folds one finished match into a running record. It is the shared
// accumulation step: the batch reducer above and the replay engine's
// after-resolution update both go through here, so the two can never drift.
func Apply(ts *models.TeamStatistics, m *models.Match) {
	if m == nil || !m.IsPlayed() {
		return
	}
	home, plays := SideOf(ts.TeamName, m)
	if !plays {
		return
	}
	if ts.CompetitionID == "" {
		ts.CompetitionID = m.CompetitionID
	}

	var scored, conceded int
	if home {
		scored, conceded = *m.HomeGoals, *m.AwayGoals
	} else {
		scored, conceded = *m.AwayGoals, *m.HomeGoals
	}

	ts.MatchesPlayed++
	ts.GoalsScored += scored
	ts.GoalsConceded += conceded

	var letter byte
	switch {
	case scored > conceded:
		ts.Wins++
		letter = 'W'
	case scored < conceded:
		ts.Losses++
		letter = 'L'
	default:
		ts.Draws++
		letter = 'D'
	}
	ts.RecentForm = appendForm(ts.RecentForm, letter)

	if home {
		ts.HomePlayed++
		ts.HomeGoalsScored += scored
		ts.HomeGoalsConceded += conceded
	} else {
		ts.AwayPlayed++
		ts.AwayGoalsScored += scored
		ts.AwayGoalsConceded += conceded
	}

	if m.HasCornerCounts() {
		ts.CornerSamples++
		if home {
			ts.CornersFor += *m.HomeCorners
		} else {
			ts.CornersFor += *m.AwayCorners
		}
	}
	if m.HasCardCounts() {
		ts.CardSamples++
		if home {
			ts.CardsFor += *m.HomeCards
		} else {
			ts.CardsFor += *m.AwayCards
		}
	}
}

// ComputeLeagueAverages reduces finished matches into a competition's
// baseline rates. Corner and card baselines average over the subset of
// matches where those counts were recorded.
func ComputeLeagueAverages(competitionID string, matches []*models.Match) *models.LeagueAverages {
	la := &models.LeagueAverages{CompetitionID: competitionID}

	var homeGoals, awayGoals int
	var corners, cornerSamples int
	var cards, cardSamples int
	for _, m := range matches {
		if m == nil || !m.IsPlayed() {
			continue
		}
		if competitionID != "" && m.CompetitionID != competitionID {
			continue
		}
		la.SampleSize++
		homeGoals += *m.HomeGoals
		awayGoals += *m.AwayGoals
		if m.HasCornerCounts() {
			cornerSamples++
			corners += m.TotalCorners()
		}
		if m.HasCardCounts() {
			cardSamples++
			cards += m.TotalCards()
		}
	}

	if la.SampleSize > 0 {
		la.HomeGoals = float64(homeGoals) / float64(la.SampleSize)
		la.AwayGoals = float64(awayGoals) / float64(la.SampleSize)
		la.TotalGoals = la.HomeGoals + la.AwayGoals
	}
	if cornerSamples > 0 {
		la.Corners = float64(corners) / float64(cornerSamples)
	}
	if cardSamples > 0 {
		la.Cards = float64(cards) / float64(cardSamples)
	}
	return la
}

// SideOf attributes a match to a team name. Exact match wins; otherwise a
// case-insensitive containment check either way absorbs feed suffixes. An
// empty name never matches.
func SideOf(team string, m *models.Match) (home bool, plays bool) {
	if team == "" {
		return false, false
	}
	if m.HomeTeam == team {
		return true, true
	}
	if m.AwayTeam == team {
		return false, true
	}
	lower := strings.ToLower(team)
	if nameContains(strings.ToLower(m.HomeTeam), lower) {
		return true, true
	}
	if nameContains(strings.ToLower(m.AwayTeam), lower) {
		return false, true
	}
	return false, false
}

func nameContains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func appendForm(form string, letter byte) string {
	form += string(letter)
	if len(form) > FormLength {
		form = form[len(form)-FormLength:]
	}
	return form
}
