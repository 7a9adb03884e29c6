package stats

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/footy-better/internal/models"
)

var statsBase = time.Date(2025, time.March, 1, 15, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func playedMatch(home, away string, homeGoals, awayGoals, day int) *models.Match {
	return &models.Match{
		ID:            uuid.New(),
		CompetitionID: "premier-league",
		HomeTeam:      home,
		AwayTeam:      away,
		KickoffTime:   statsBase.AddDate(0, 0, day),
		HomeGoals:     intPtr(homeGoals),
		AwayGoals:     intPtr(awayGoals),
	}
}

func TestComputeTeamStatisticsAggregatesRecord(t *testing.T) {
	// Deliberately out of kickoff order; the reducer must sort before folding
	// so the form string reads oldest first.
	history := []*models.Match{
		playedMatch("Arsenal", "Spurs", 0, 3, 2),
		playedMatch("Arsenal", "Chelsea", 2, 0, 0),
		playedMatch("Everton", "Arsenal", 0, 2, 3),
		playedMatch("Leeds", "Arsenal", 1, 1, 1),
	}

	ts := ComputeTeamStatistics("Arsenal", history)

	assert.Equal(t, 4, ts.MatchesPlayed)
	assert.Equal(t, 2, ts.Wins)
	assert.Equal(t, 1, ts.Draws)
	assert.Equal(t, 1, ts.Losses)
	assert.Equal(t, 5, ts.GoalsScored)
	assert.Equal(t, 4, ts.GoalsConceded)
	assert.Equal(t, "premier-league", ts.CompetitionID)

	assert.Equal(t, 2, ts.HomePlayed)
	assert.Equal(t, 2, ts.HomeGoalsScored)
	assert.Equal(t, 3, ts.HomeGoalsConceded)
	assert.Equal(t, 2, ts.AwayPlayed)
	assert.Equal(t, 3, ts.AwayGoalsScored)
	assert.Equal(t, 1, ts.AwayGoalsConceded)

	assert.Equal(t, "WDLW", ts.RecentForm)
	assert.InDelta(t, 1.25, ts.GoalsScoredPerMatch(), 1e-9)
	assert.InDelta(t, 0.5, ts.WinRate(), 1e-9)
}

func TestComputeTeamStatisticsFuzzyNameAttribution(t *testing.T) {
	history := []*models.Match{
		playedMatch("Manchester United FC", "Chelsea", 1, 0, 0),
		playedMatch("Chelsea", "Manchester United FC", 0, 0, 1),
	}

	ts := ComputeTeamStatistics("Manchester United", history)

	assert.Equal(t, 2, ts.MatchesPlayed)
	assert.Equal(t, 1, ts.Wins)
	assert.Equal(t, 1, ts.Draws)
}

func TestComputeTeamStatisticsSkipsUnplayedAndForeign(t *testing.T) {
	upcoming := &models.Match{
		ID:            uuid.New(),
		CompetitionID: "premier-league",
		HomeTeam:      "Arsenal",
		AwayTeam:      "Chelsea",
		KickoffTime:   statsBase.AddDate(0, 0, 30),
	}
	history := []*models.Match{
		upcoming,
		playedMatch("Leeds", "Spurs", 2, 2, 0),
	}

	ts := ComputeTeamStatistics("Arsenal", history)

	assert.Equal(t, 0, ts.MatchesPlayed)
	assert.Zero(t, ts.GoalsScoredPerMatch())
	assert.Zero(t, ts.WinRate())
	assert.Empty(t, ts.RecentForm)
}

func TestApplyKeepsFormWindow(t *testing.T) {
	ts := &models.TeamStatistics{TeamName: "Arsenal"}

	// D W W L W W W, one result per day.
	scores := [][2]int{{1, 1}, {2, 0}, {3, 1}, {0, 1}, {2, 1}, {1, 0}, {4, 2}}
	for i, s := range scores {
		Apply(ts, playedMatch("Arsenal", "Chelsea", s[0], s[1], i))
	}

	assert.Equal(t, 7, ts.MatchesPlayed)
	assert.Len(t, ts.RecentForm, FormLength)
	assert.Equal(t, "WLWWW", ts.RecentForm)
	assert.InDelta(t, float64(4*3)/float64(3*5), ts.FormPoints(), 1e-9)
}

func TestComputeTeamStatisticsCornerAndCardSamples(t *testing.T) {
	withCounts := playedMatch("Arsenal", "Chelsea", 2, 1, 0)
	withCounts.HomeCorners = intPtr(7)
	withCounts.AwayCorners = intPtr(3)
	withCounts.HomeCards = intPtr(2)
	withCounts.AwayCards = intPtr(1)

	// Second match carries no supplementary counts; the averages must divide
	// by the sample counters, not by matches played.
	bare := playedMatch("Leeds", "Arsenal", 0, 1, 1)

	ts := ComputeTeamStatistics("Arsenal", []*models.Match{withCounts, bare})

	assert.Equal(t, 2, ts.MatchesPlayed)
	assert.Equal(t, 1, ts.CornerSamples)
	assert.Equal(t, 7, ts.CornersFor)
	assert.InDelta(t, 7.0, ts.CornersPerMatch(), 1e-9)
	assert.Equal(t, 1, ts.CardSamples)
	assert.Equal(t, 2, ts.CardsFor)
	assert.InDelta(t, 2.0, ts.CardsPerMatch(), 1e-9)
}

func TestComputeLeagueAveragesBaselines(t *testing.T) {
	m1 := playedMatch("A", "B", 2, 0, 0)
	m1.HomeCorners, m1.AwayCorners = intPtr(6), intPtr(4)
	m2 := playedMatch("C", "D", 1, 1, 1)
	m2.HomeCorners, m2.AwayCorners = intPtr(5), intPtr(3)
	m3 := playedMatch("A", "C", 3, 1, 2)
	m4 := playedMatch("B", "D", 0, 0, 3)

	other := playedMatch("X", "Y", 5, 5, 0)
	other.CompetitionID = "championship"

	unplayed := &models.Match{
		ID:            uuid.New(),
		CompetitionID: "premier-league",
		HomeTeam:      "A",
		AwayTeam:      "D",
		KickoffTime:   statsBase.AddDate(0, 0, 10),
	}

	matches := []*models.Match{m1, m2, m3, m4, other, unplayed}

	la := ComputeLeagueAverages("premier-league", matches)
	require.True(t, la.Usable())
	assert.Equal(t, 4, la.SampleSize)
	assert.InDelta(t, 1.5, la.HomeGoals, 1e-9)
	assert.InDelta(t, 0.5, la.AwayGoals, 1e-9)
	assert.InDelta(t, 2.0, la.TotalGoals, 1e-9)
	assert.InDelta(t, 9.0, la.Corners, 1e-9)

	// An empty competition filter pools every played match.
	pooled := ComputeLeagueAverages("", matches)
	assert.Equal(t, 5, pooled.SampleSize)
}

func TestComputeLeagueAveragesEmptyIsUnusable(t *testing.T) {
	la := ComputeLeagueAverages("premier-league", nil)

	assert.False(t, la.Usable())
	assert.Zero(t, la.SampleSize)
	assert.Zero(t, la.TotalGoals)
}

func TestSideOf(t *testing.T) {
	m := playedMatch("Manchester United FC", "Brighton & Hove Albion", 1, 0, 0)

	tests := []struct {
		name      string
		team      string
		wantHome  bool
		wantPlays bool
	}{
		{"exact home", "Manchester United FC", true, true},
		{"exact away", "Brighton & Hove Albion", false, true},
		{"home without suffix", "Manchester United", true, true},
		{"query longer than stored", "Brighton & Hove Albion FC", false, true},
		{"case insensitive", "manchester united fc", true, true},
		{"uninvolved team", "Chelsea", false, false},
		{"empty name", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home, plays := SideOf(tt.team, m)
			assert.Equal(t, tt.wantPlays, plays)
			if plays {
				assert.Equal(t, tt.wantHome, home)
			}
		})
	}
}
