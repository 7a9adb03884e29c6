package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/footy-better/internal/markets"
	"github.com/yourusername/footy-better/internal/models"
	"github.com/yourusername/footy-better/internal/predictor"
	"github.com/yourusername/footy-better/internal/repository"
	"github.com/yourusername/footy-better/internal/risk"
	"github.com/yourusername/footy-better/internal/stats"
)

func newTestPickService(source *fakeFixtureSource, matchRepo *fakeMatchRepo,
	pickRepo *fakePickRepo, trainingRepo *fakeTrainingRepo) *PickService {

	log := testLogger()
	repos := &repository.Repositories{
		Match:       matchRepo,
		Pick:        pickRepo,
		TrainingRun: trainingRepo,
	}
	cfg := PickConfig{
		Competitions: []string{"test-league"},
		UpcomingDays: 3,
		MinMatches:   6,
		CacheTTL:     time.Minute,
		CacheSize:    100,
	}
	pred := predictor.New(predictor.DefaultConfig(), log)
	generator := markets.NewGenerator(markets.DefaultConfig(), nil, nil, log)
	riskManager := risk.NewManager(risk.DefaultConfig(), log)
	return NewPickService(cfg, source, nil, repos, pred, generator, riskManager, log)
}

func TestGenerateUpcomingPicksPersistsApproved(t *testing.T) {
	source := &fakeFixtureSource{matches: upcomingFixtures(2)}
	matchRepo := newFakeMatchRepo()
	matchRepo.seed(playedHistory(36))
	pickRepo := newFakePickRepo()

	svc := newTestPickService(source, matchRepo, pickRepo, &fakeTrainingRepo{})
	summary, err := svc.GenerateUpcomingPicks(context.Background())
	if err != nil {
		t.Fatalf("GenerateUpcomingPicks failed: %v", err)
	}

	if summary.Fixtures != 2 {
		t.Fatalf("expected 2 fixtures, got %d", summary.Fixtures)
	}
	if summary.Predictions != 2 {
		t.Fatalf("expected 2 predictions with a full season of history, got %d (skipped %d)",
			summary.Predictions, summary.Skipped)
	}
	if summary.Candidates == 0 {
		t.Fatal("expected candidate picks from a generously priced under market")
	}
	if summary.Approved == 0 {
		t.Fatal("expected at least one approved pick")
	}
	if len(summary.Picks) != summary.Approved {
		t.Fatalf("summary lists %d picks but reports %d approved", len(summary.Picks), summary.Approved)
	}
	if pickRepo.inserts != summary.Approved {
		t.Fatalf("expected %d persisted records, got %d", summary.Approved, pickRepo.inserts)
	}

	upcomingIDs := map[uuid.UUID]bool{}
	for _, m := range source.matches {
		upcomingIDs[m.ID] = true
	}
	for _, record := range pickRepo.records {
		if record.RunID != nil {
			t.Errorf("live pick %s carries a training run id", record.ID)
		}
		if record.Result != string(models.PickPending) {
			t.Errorf("expected pick %s to be pending, got %s", record.ID, record.Result)
		}
		if !upcomingIDs[record.MatchID] {
			t.Errorf("pick %s references unknown fixture %s", record.ID, record.MatchID)
		}
		if _, err := record.ToPick(); err != nil {
			t.Errorf("stored pick %s does not round-trip: %v", record.ID, err)
		}
	}
}

func TestGenerateUpcomingPicksSkipsAlreadyPicked(t *testing.T) {
	upcoming := upcomingFixtures(2)
	source := &fakeFixtureSource{matches: upcoming}
	matchRepo := newFakeMatchRepo()
	matchRepo.seed(playedHistory(36))

	open := &models.SuggestedPick{
		ID:            uuid.New(),
		MatchID:       upcoming[0].ID,
		CompetitionID: "test-league",
		Market:        models.Market{Kind: models.MarketTotalGoals, Selection: models.SelectUnder, Line: 2.5},
		Odds:          1.4,
		StakeFraction: 0.01,
		StakeUnits:    1,
		Result:        models.PickPending,
		CreatedAt:     time.Now().UTC(),
	}
	pickRepo := newFakePickRepo()
	pickRepo.seed([]*models.PickRecord{models.NewPickRecord(open, nil)})

	svc := newTestPickService(source, matchRepo, pickRepo, &fakeTrainingRepo{})
	summary, err := svc.GenerateUpcomingPicks(context.Background())
	if err != nil {
		t.Fatalf("GenerateUpcomingPicks failed: %v", err)
	}

	if summary.Fixtures != 1 {
		t.Fatalf("expected the fixture with an open pick to be skipped, processed %d", summary.Fixtures)
	}
	for _, record := range pickRepo.records {
		if record.MatchID == upcoming[0].ID && record.ID != open.ID {
			t.Errorf("new pick %s placed on a fixture that already had one open", record.ID)
		}
	}
}

func TestGenerateUpcomingPicksInsufficientHistory(t *testing.T) {
	source := &fakeFixtureSource{matches: upcomingFixtures(2)}
	matchRepo := newFakeMatchRepo()
	matchRepo.seed(playedHistory(4))
	pickRepo := newFakePickRepo()

	svc := newTestPickService(source, matchRepo, pickRepo, &fakeTrainingRepo{})
	summary, err := svc.GenerateUpcomingPicks(context.Background())
	if err != nil {
		t.Fatalf("GenerateUpcomingPicks failed: %v", err)
	}

	if summary.Predictions != 0 {
		t.Fatalf("expected no predictions from 4 matches of history, got %d", summary.Predictions)
	}
	if summary.Skipped != summary.Fixtures {
		t.Fatalf("expected all %d fixtures skipped, got %d", summary.Fixtures, summary.Skipped)
	}
	if pickRepo.inserts != 0 {
		t.Fatalf("expected no persisted picks, got %d", pickRepo.inserts)
	}
}

func TestGenerateUpcomingPicksWarmStartsFromTrainingRun(t *testing.T) {
	source := &fakeFixtureSource{matches: upcomingFixtures(2)}
	matchRepo := newFakeMatchRepo()
	matchRepo.seed(playedHistory(4))
	pickRepo := newFakePickRepo()

	// The stored window alone is too thin to predict from; the statistics
	// snapshot from a full-season training run fills the gap.
	fullSeason := playedHistory(36)
	finalStats := make(map[string]*models.TeamStatistics, len(leagueTeams))
	for _, team := range leagueTeams {
		finalStats[team] = stats.ComputeTeamStatistics(team, fullSeason)
	}
	result := &models.TrainingResult{RunID: uuid.New(), FinalStats: finalStats}
	record, err := models.NewTrainingRunRecord(result)
	if err != nil {
		t.Fatalf("NewTrainingRunRecord failed: %v", err)
	}
	trainingRepo := &fakeTrainingRepo{}
	if err := trainingRepo.RecordTrainingRun(context.Background(), record); err != nil {
		t.Fatalf("RecordTrainingRun failed: %v", err)
	}

	svc := newTestPickService(source, matchRepo, pickRepo, trainingRepo)
	summary, err := svc.GenerateUpcomingPicks(context.Background())
	if err != nil {
		t.Fatalf("GenerateUpcomingPicks failed: %v", err)
	}

	if summary.Predictions != 2 {
		t.Fatalf("expected warm-started predictions for both fixtures, got %d (skipped %d)",
			summary.Predictions, summary.Skipped)
	}
}

func TestGenerateUpcomingPicksAllCompetitionsFailing(t *testing.T) {
	source := &fakeFixtureSource{err: errors.New("feed unavailable")}
	svc := newTestPickService(source, newFakeMatchRepo(), newFakePickRepo(), &fakeTrainingRepo{})

	if _, err := svc.GenerateUpcomingPicks(context.Background()); err == nil {
		t.Fatal("expected an error when every competition fetch fails")
	}
}

func TestGenerateUpcomingPicksUsesStoredBookWhenFeedDropsPrices(t *testing.T) {
	upcoming := upcomingFixtures(1)
	matchRepo := newFakeMatchRepo()
	matchRepo.seed(playedHistory(36))
	if err := matchRepo.UpsertBatch(context.Background(), upcoming); err != nil {
		t.Fatalf("UpsertBatch failed: %v", err)
	}

	// This cycle the feed returns the fixture without prices. The book
	// stored by the earlier sync should price the picks instead.
	bare := *upcoming[0]
	bare.Odds = nil
	source := &fakeFixtureSource{matches: []*models.Match{&bare}}
	pickRepo := newFakePickRepo()

	svc := newTestPickService(source, matchRepo, pickRepo, &fakeTrainingRepo{})
	summary, err := svc.GenerateUpcomingPicks(context.Background())
	if err != nil {
		t.Fatalf("GenerateUpcomingPicks failed: %v", err)
	}

	if summary.Predictions != 1 {
		t.Fatalf("expected a prediction backed by the stored book, got %d (skipped %d)",
			summary.Predictions, summary.Skipped)
	}

	underKey := models.Market{Kind: models.MarketTotalGoals, Selection: models.SelectUnder, Line: 2.5}.Key()
	var under *models.PickRecord
	for _, record := range pickRepo.records {
		if record.MarketKey == underKey {
			under = record
			break
		}
	}
	if under == nil {
		t.Fatal("expected an under 2.5 pick priced from the stored book")
	}
	if under.OddsSource != string(models.OddsSourceMarket) {
		t.Errorf("expected a market price, got source %q", under.OddsSource)
	}
	if !under.Odds.Equal(decimal.NewFromFloat(1.35)) {
		t.Errorf("expected the stored under price 1.35, got %s", under.Odds)
	}
}

func TestGenerateUpcomingPicksReSyncKeepsOpeningPrices(t *testing.T) {
	upcoming := upcomingFixtures(1)
	matchRepo := newFakeMatchRepo()
	matchRepo.seed(playedHistory(36))
	if err := matchRepo.UpsertBatch(context.Background(), upcoming); err != nil {
		t.Fatalf("UpsertBatch failed: %v", err)
	}

	// The home price has shortened since the first sync.
	shifted := *upcoming[0]
	shifted.Odds = &models.MatchOdds{
		Home:    2.4,
		Draw:    3.2,
		Away:    3.4,
		Over25:  floatPtr(3.1),
		Under25: floatPtr(1.32),
	}
	source := &fakeFixtureSource{matches: []*models.Match{&shifted}}

	svc := newTestPickService(source, matchRepo, newFakePickRepo(), &fakeTrainingRepo{})
	if _, err := svc.GenerateUpcomingPicks(context.Background()); err != nil {
		t.Fatalf("GenerateUpcomingPicks failed: %v", err)
	}

	stored, err := matchRepo.GetByID(context.Background(), upcoming[0].ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Odds == nil || stored.Odds.Home != 2.4 {
		t.Fatalf("expected the stored book to carry the latest prices, got %+v", stored.Odds)
	}
	if stored.Odds.OpeningHome == nil || *stored.Odds.OpeningHome != 2.8 {
		t.Errorf("expected the opening home price to stay at 2.8, got %v", stored.Odds.OpeningHome)
	}
	if drift := stored.Odds.HomeDrift(); drift >= 0 {
		t.Errorf("expected negative drift on a shortening home price, got %f", drift)
	}
}

func TestOverlayStreamedOddsKeepsOpenings(t *testing.T) {
	stored := &models.MatchOdds{
		Home:        2.8,
		Draw:        3.1,
		Away:        2.9,
		OpeningHome: floatPtr(2.8),
		OpeningDraw: floatPtr(3.1),
		OpeningAway: floatPtr(2.9),
		Under25:     floatPtr(1.35),
	}
	snap := &models.MatchOdds{Home: 2.4, Draw: 3.3, Away: 3.2}

	merged := overlayStreamedOdds(snap, stored)
	if merged.Home != 2.4 {
		t.Errorf("expected the streamed home price 2.4, got %f", merged.Home)
	}
	if merged.OpeningHome == nil || *merged.OpeningHome != 2.8 {
		t.Errorf("expected the stored opening home price 2.8, got %v", merged.OpeningHome)
	}
	if merged.Under25 != nil {
		t.Error("a streamed book without totals should not inherit stored totals")
	}
	if merged.HomeDrift() >= 0 {
		t.Errorf("expected negative drift on a shortening home price, got %f", merged.HomeDrift())
	}
	if snap.OpeningHome != nil {
		t.Error("the shared snapshot must not be mutated by the overlay")
	}

	bare := overlayStreamedOdds(snap, nil)
	if bare.OpeningHome != nil {
		t.Errorf("expected no opening price without a stored book, got %v", bare.OpeningHome)
	}
}
