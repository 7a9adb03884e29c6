package backtest

import (
	"sort"
	"sync"
	"time"

	"github.com/yourusername/footy-better/internal/models"
)

// SnapshotStore versions team statistics and league averages by
// (competition, day). Reads return the snapshot committed strictly before
// the requested day and commits never touch earlier entries, so the
// read-before-mutate ordering of the replay is enforced by the store rather
// than by caller discipline. All returned data is cloned; mutating it never
// corrupts history.
type SnapshotStore struct {
	mu           sync.RWMutex
	competitions map[string][]*statsSnapshot
}

type statsSnapshot struct {
	day    time.Time
	teams  map[string]*models.TeamStatistics
	league *models.LeagueAverages
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{competitions: make(map[string][]*statsSnapshot)}
}

// Commit freezes the statistics known at the end of the given day.
// Committing the same day twice replaces the earlier snapshot.
func (s *SnapshotStore) Commit(competitionID string, day time.Time, teams map[string]*models.TeamStatistics, league *models.LeagueAverages) {
	day = normalizeDay(day)
	snapshot := &statsSnapshot{
		day:    day,
		teams:  cloneTeams(teams),
		league: cloneLeague(league),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.competitions[competitionID]
	idx := sort.Search(len(entries), func(i int) bool { return !entries[i].day.Before(day) })
	if idx < len(entries) && entries[idx].day.Equal(day) {
		entries[idx] = snapshot
	} else {
		entries = append(entries, nil)
		copy(entries[idx+1:], entries[idx:])
		entries[idx] = snapshot
	}
	s.competitions[competitionID] = entries
}

// AsOf returns the statistics committed strictly before the given day. With
// no prior snapshot it returns an empty team map and a nil league baseline,
// which downstream code treats as insufficient data.
func (s *SnapshotStore) AsOf(competitionID string, day time.Time) (map[string]*models.TeamStatistics, *models.LeagueAverages) {
	day = normalizeDay(day)

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.competitions[competitionID]
	idx := sort.Search(len(entries), func(i int) bool { return !entries[i].day.Before(day) })
	if idx == 0 {
		return map[string]*models.TeamStatistics{}, nil
	}
	snapshot := entries[idx-1]
	return cloneTeams(snapshot.teams), cloneLeague(snapshot.league)
}

// Latest returns the most recently committed statistics for a competition.
func (s *SnapshotStore) Latest(competitionID string) (map[string]*models.TeamStatistics, *models.LeagueAverages) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.competitions[competitionID]
	if len(entries) == 0 {
		return map[string]*models.TeamStatistics{}, nil
	}
	snapshot := entries[len(entries)-1]
	return cloneTeams(snapshot.teams), cloneLeague(snapshot.league)
}

// Competitions lists every competition with at least one committed snapshot.
func (s *SnapshotStore) Competitions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.competitions))
	for id := range s.competitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func cloneTeams(teams map[string]*models.TeamStatistics) map[string]*models.TeamStatistics {
	cloned := make(map[string]*models.TeamStatistics, len(teams))
	for name, ts := range teams {
		cloned[name] = ts.Clone()
	}
	return cloned
}

func cloneLeague(league *models.LeagueAverages) *models.LeagueAverages {
	if league == nil {
		return nil
	}
	copied := *league
	return &copied
}

func normalizeDay(day time.Time) time.Time {
	day = day.UTC()
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}
