package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/footy-better/internal/models"
)

func day(offset int) time.Time {
	return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestSnapshotStoreAsOfIsStrictlyBefore(t *testing.T) {
	store := NewSnapshotStore()
	store.Commit("league", day(0), map[string]*models.TeamStatistics{
		"Arsenal": {TeamName: "Arsenal", MatchesPlayed: 5},
	}, &models.LeagueAverages{CompetitionID: "league", HomeGoals: 1.4, AwayGoals: 1.1, SampleSize: 10})

	// The committing day itself must not see its own snapshot.
	teams, league := store.AsOf("league", day(0))
	assert.Empty(t, teams)
	assert.Nil(t, league)

	teams, league = store.AsOf("league", day(1))
	require.Contains(t, teams, "Arsenal")
	assert.Equal(t, 5, teams["Arsenal"].MatchesPlayed)
	require.NotNil(t, league)
	assert.Equal(t, 10, league.SampleSize)
}

func TestSnapshotStorePicksLatestPriorDay(t *testing.T) {
	store := NewSnapshotStore()
	store.Commit("league", day(0), map[string]*models.TeamStatistics{
		"Arsenal": {TeamName: "Arsenal", MatchesPlayed: 5},
	}, nil)
	store.Commit("league", day(1), map[string]*models.TeamStatistics{
		"Arsenal": {TeamName: "Arsenal", MatchesPlayed: 6},
	}, nil)

	teams, _ := store.AsOf("league", day(1))
	assert.Equal(t, 5, teams["Arsenal"].MatchesPlayed)

	teams, _ = store.AsOf("league", day(5))
	assert.Equal(t, 6, teams["Arsenal"].MatchesPlayed)
}

func TestSnapshotStoreReturnsClones(t *testing.T) {
	store := NewSnapshotStore()
	store.Commit("league", day(0), map[string]*models.TeamStatistics{
		"Arsenal": {TeamName: "Arsenal", MatchesPlayed: 5},
	}, nil)

	teams, _ := store.AsOf("league", day(1))
	teams["Arsenal"].MatchesPlayed = 99
	teams["Chelsea"] = &models.TeamStatistics{TeamName: "Chelsea"}

	fresh, _ := store.AsOf("league", day(1))
	assert.Equal(t, 5, fresh["Arsenal"].MatchesPlayed, "mutating a read must not corrupt history")
	assert.NotContains(t, fresh, "Chelsea")
}

func TestSnapshotStoreRecommitReplacesDay(t *testing.T) {
	store := NewSnapshotStore()
	store.Commit("league", day(0), map[string]*models.TeamStatistics{
		"Arsenal": {TeamName: "Arsenal", MatchesPlayed: 5},
	}, nil)
	store.Commit("league", day(0), map[string]*models.TeamStatistics{
		"Arsenal": {TeamName: "Arsenal", MatchesPlayed: 7},
	}, nil)

	teams, _ := store.Latest("league")
	assert.Equal(t, 7, teams["Arsenal"].MatchesPlayed)
}

func TestSnapshotStoreUnknownCompetition(t *testing.T) {
	store := NewSnapshotStore()

	teams, league := store.Latest("nowhere")
	assert.Empty(t, teams)
	assert.Nil(t, league)
	assert.Empty(t, store.Competitions())
}
