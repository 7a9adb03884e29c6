package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-better/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// fakeFixtureSource serves fixtures falling inside the requested window.
type fakeFixtureSource struct {
	matches []*models.Match
	err     error
	calls   int
}

func (f *fakeFixtureSource) Matches(ctx context.Context, competitionID string, from, to time.Time, forceRefresh bool) ([]*models.Match, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Match
	for _, m := range f.matches {
		if m.CompetitionID != competitionID {
			continue
		}
		if m.KickoffTime.Before(from) || !m.KickoffTime.Before(to) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeFixtureSource) Name() string { return "fake" }

// fakeMatchRepo stores matches in memory keyed by ID.
type fakeMatchRepo struct {
	mu        sync.Mutex
	matches   map[uuid.UUID]*models.Match
	batches   int
	upsertErr error
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[uuid.UUID]*models.Match)}
}

func (f *fakeMatchRepo) seed(matches []*models.Match) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range matches {
		f.matches[m.ID] = m
	}
}

func (f *fakeMatchRepo) Upsert(ctx context.Context, match *models.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.storeLocked(match)
	return nil
}

func (f *fakeMatchRepo) UpsertBatch(ctx context.Context, matches []*models.Match) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++
	for _, m := range matches {
		f.storeLocked(m)
	}
	return nil
}

// storeLocked mirrors the store contract: the odds row is only touched when
// the incoming match carries prices, and opening prices never move once set.
func (f *fakeMatchRepo) storeLocked(match *models.Match) {
	stored := *match
	prev := f.matches[match.ID]
	switch {
	case stored.Odds == nil && prev != nil:
		stored.Odds = prev.Odds
	case stored.Odds != nil && prev != nil:
		stored.Odds = mergeStoredOdds(stored.Odds, prev.Odds)
	case stored.Odds != nil:
		stored.Odds = mergeStoredOdds(stored.Odds, nil)
	}
	f.matches[match.ID] = &stored
}

func (f *fakeMatchRepo) UpsertOdds(ctx context.Context, matchID uuid.UUID, odds *models.MatchOdds) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.matches[matchID]; ok {
		m.Odds = mergeStoredOdds(odds, m.Odds)
	}
	return nil
}

// mergeStoredOdds applies the opening-price rules of the odds table: the
// first stored prices seed the openings and later writes never move them.
func mergeStoredOdds(next, prev *models.MatchOdds) *models.MatchOdds {
	merged := *next
	if merged.OpeningHome == nil {
		merged.OpeningHome = floatPtr(merged.Home)
	}
	if merged.OpeningDraw == nil {
		merged.OpeningDraw = floatPtr(merged.Draw)
	}
	if merged.OpeningAway == nil {
		merged.OpeningAway = floatPtr(merged.Away)
	}
	if prev != nil {
		if prev.OpeningHome != nil {
			merged.OpeningHome = prev.OpeningHome
		}
		if prev.OpeningDraw != nil {
			merged.OpeningDraw = prev.OpeningDraw
		}
		if prev.OpeningAway != nil {
			merged.OpeningAway = prev.OpeningAway
		}
	}
	return &merged
}

func (f *fakeMatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.matches[id]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: match %s", models.ErrNotFound, id)
}

func (f *fakeMatchRepo) GetPlayedByCompetition(ctx context.Context, competitionID string, from, to time.Time) ([]*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Match
	for _, m := range f.matches {
		if m.CompetitionID != competitionID || !m.IsPlayed() {
			continue
		}
		if m.KickoffTime.Before(from) || !m.KickoffTime.Before(to) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].KickoffTime.Before(out[j].KickoffTime) })
	return out, nil
}

func (f *fakeMatchRepo) GetUpcoming(ctx context.Context, competitionID string, from, to time.Time) ([]*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Match
	for _, m := range f.matches {
		if m.CompetitionID != competitionID || m.IsPlayed() {
			continue
		}
		if m.KickoffTime.Before(from) || !m.KickoffTime.Before(to) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].KickoffTime.Before(out[j].KickoffTime) })
	return out, nil
}

// fakePickRepo stores pick records in memory keyed by ID.
type fakePickRepo struct {
	mu        sync.Mutex
	records   map[uuid.UUID]*models.PickRecord
	inserts   int
	recordErr error
}

func newFakePickRepo() *fakePickRepo {
	return &fakePickRepo{records: make(map[uuid.UUID]*models.PickRecord)}
}

func (f *fakePickRepo) seed(records []*models.PickRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range records {
		f.records[r.ID] = r
	}
}

func (f *fakePickRepo) RecordPicks(ctx context.Context, picks []*models.PickRecord) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range picks {
		f.records[p.ID] = p
		f.inserts++
	}
	return nil
}

func (f *fakePickRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PickRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.records[id]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: pick %s", models.ErrNotFound, id)
}

func (f *fakePickRepo) GetPending(ctx context.Context) ([]*models.PickRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PickRecord
	for _, r := range f.records {
		if r.Result == string(models.PickPending) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakePickRepo) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.PickRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PickRecord
	for _, r := range f.records {
		if r.RunID != nil && *r.RunID == runID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakePickRepo) UpdateResolution(ctx context.Context, id uuid.UUID, result string, payout float64, settledAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return fmt.Errorf("%w: pick %s", models.ErrNotFound, id)
	}
	r.Result = result
	r.Payout = decimal.NewFromFloat(payout)
	r.SettledAt = &settledAt
	return nil
}

// fakeTrainingRepo holds at most a handful of training run records.
type fakeTrainingRepo struct {
	mu     sync.Mutex
	runs   []*models.TrainingRunRecord
	latest *models.TrainingRunRecord
}

func (f *fakeTrainingRepo) RecordTrainingRun(ctx context.Context, run *models.TrainingRunRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	f.latest = run
	return nil
}

func (f *fakeTrainingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.TrainingRunRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: training run %s", models.ErrNotFound, id)
}

func (f *fakeTrainingRepo) GetLatest(ctx context.Context) (*models.TrainingRunRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest == nil {
		return nil, fmt.Errorf("%w: no training runs recorded", models.ErrNotFound)
	}
	return f.latest, nil
}

var leagueTeams = []string{"Alpha United", "Beta City", "Gamma Rovers", "Delta Athletic"}

func testPairings(day int) [][2]int {
	switch day % 3 {
	case 0:
		return [][2]int{{0, 1}, {2, 3}}
	case 1:
		return [][2]int{{0, 2}, {1, 3}}
	default:
		return [][2]int{{0, 3}, {1, 2}}
	}
}

// playedHistory builds a low-scoring round-robin ending the day before now:
// two matches per day, every team playing daily. Four of the five scorelines
// stay under 2.5 goals, so the under market is the model's strong suit.
func playedHistory(days int) []*models.Match {
	base := time.Now().UTC().AddDate(0, 0, -days)
	base = time.Date(base.Year(), base.Month(), base.Day(), 15, 0, 0, 0, time.UTC)
	scores := [][2]int{{1, 0}, {0, 1}, {1, 1}, {0, 0}, {2, 1}}

	var matches []*models.Match
	for d := 0; d < days; d++ {
		kickoff := base.AddDate(0, 0, d)
		for i, pair := range testPairings(d) {
			score := scores[(2*d+i)%len(scores)]
			matches = append(matches, &models.Match{
				ID:            uuid.New(),
				CompetitionID: "test-league",
				Season:        "2025",
				HomeTeam:      leagueTeams[pair[0]],
				AwayTeam:      leagueTeams[pair[1]],
				KickoffTime:   kickoff,
				HomeGoals:     intPtr(score[0]),
				AwayGoals:     intPtr(score[1]),
			})
		}
	}
	return matches
}

// upcomingFixtures returns tomorrow's fixtures with a priced book. The
// under-2.5 price is generous against a low-scoring league.
func upcomingFixtures(count int) []*models.Match {
	kickoff := time.Now().UTC().AddDate(0, 0, 1)
	kickoff = time.Date(kickoff.Year(), kickoff.Month(), kickoff.Day(), 15, 0, 0, 0, time.UTC)

	var out []*models.Match
	for i, pair := range testPairings(0) {
		if i >= count {
			break
		}
		out = append(out, &models.Match{
			ID:            uuid.New(),
			CompetitionID: "test-league",
			Season:        "2025",
			HomeTeam:      leagueTeams[pair[0]],
			AwayTeam:      leagueTeams[pair[1]],
			KickoffTime:   kickoff,
			Odds: &models.MatchOdds{
				Home:    2.8,
				Draw:    3.1,
				Away:    2.9,
				Over25:  floatPtr(3.0),
				Under25: floatPtr(1.35),
			},
		})
	}
	return out
}
