package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/footy-better/internal/models"
)

func TestSyncResultsPersistsValidFixtures(t *testing.T) {
	played := playedHistory(3)

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	invalid := &models.Match{
		ID:            uuid.New(),
		CompetitionID: "test-league",
		HomeTeam:      "Alpha United",
		AwayTeam:      "Alpha United",
		KickoffTime:   yesterday,
		HomeGoals:     intPtr(1),
		AwayGoals:     intPtr(0),
	}

	source := &fakeFixtureSource{matches: append(played, invalid)}
	matchRepo := newFakeMatchRepo()
	svc := NewIngestionService([]string{"test-league"}, source, matchRepo, newFakePickRepo(), testLogger())

	m, err := svc.SyncResults(context.Background())
	if err != nil {
		t.Fatalf("SyncResults failed: %v", err)
	}

	if m.TotalFetched != 7 {
		t.Errorf("expected 7 fetched fixtures, got %d", m.TotalFetched)
	}
	if m.UpsertedMatches != 6 {
		t.Errorf("expected 6 upserted fixtures, got %d", m.UpsertedMatches)
	}
	if m.CompletedMatches != 6 {
		t.Errorf("expected 6 completed fixtures, got %d", m.CompletedMatches)
	}
	if m.ValidationErrors != 1 {
		t.Errorf("expected 1 validation error, got %d", m.ValidationErrors)
	}
	if len(matchRepo.matches) != 6 {
		t.Errorf("expected 6 stored fixtures, got %d", len(matchRepo.matches))
	}
	if _, stored := matchRepo.matches[invalid.ID]; stored {
		t.Error("invalid fixture was persisted")
	}
}

func TestSyncResultsAllCompetitionsFailing(t *testing.T) {
	source := &fakeFixtureSource{err: errors.New("feed unavailable")}
	svc := NewIngestionService([]string{"test-league"}, source, newFakeMatchRepo(), newFakePickRepo(), testLogger())

	m, err := svc.SyncResults(context.Background())
	if err == nil {
		t.Fatal("expected an error when every competition fetch fails")
	}
	if m.Errors != 1 {
		t.Errorf("expected 1 recorded error, got %d", m.Errors)
	}
}

func TestResolvePendingPicksSettlesFinishedFixtures(t *testing.T) {
	now := time.Now().UTC()

	playedMatch := &models.Match{
		ID:            uuid.New(),
		CompetitionID: "test-league",
		HomeTeam:      "Alpha United",
		AwayTeam:      "Beta City",
		KickoffTime:   now.AddDate(0, 0, -1),
		HomeGoals:     intPtr(2),
		AwayGoals:     intPtr(0),
	}
	futureMatch := &models.Match{
		ID:            uuid.New(),
		CompetitionID: "test-league",
		HomeTeam:      "Gamma Rovers",
		AwayTeam:      "Delta Athletic",
		KickoffTime:   now.AddDate(0, 0, 1),
	}
	matchRepo := newFakeMatchRepo()
	matchRepo.seed([]*models.Match{playedMatch, futureMatch})

	newPending := func(matchID uuid.UUID, market models.Market, odds float64) *models.PickRecord {
		pick := &models.SuggestedPick{
			ID:            uuid.New(),
			MatchID:       matchID,
			CompetitionID: "test-league",
			Market:        market,
			Odds:          odds,
			StakeFraction: 0.01,
			StakeUnits:    1,
			Result:        models.PickPending,
			CreatedAt:     now.AddDate(0, 0, -2),
		}
		return models.NewPickRecord(pick, nil)
	}

	winRecord := newPending(playedMatch.ID, models.Market{Kind: models.MarketWinner, Selection: models.SelectHome}, 2.1)
	lossRecord := newPending(playedMatch.ID, models.Market{Kind: models.MarketWinner, Selection: models.SelectAway}, 3.4)
	openRecord := newPending(futureMatch.ID, models.Market{Kind: models.MarketTotalGoals, Selection: models.SelectUnder, Line: 2.5}, 1.5)
	malformed := &models.PickRecord{
		ID:        uuid.New(),
		MatchID:   playedMatch.ID,
		MarketKey: "not_a_market",
		Result:    string(models.PickPending),
		CreatedAt: now.AddDate(0, 0, -2),
	}

	pickRepo := newFakePickRepo()
	pickRepo.seed([]*models.PickRecord{winRecord, lossRecord, openRecord, malformed})

	svc := NewIngestionService([]string{"test-league"}, &fakeFixtureSource{}, matchRepo, pickRepo, testLogger())

	resolved, err := svc.ResolvePendingPicks(context.Background())
	if err != nil {
		t.Fatalf("ResolvePendingPicks failed: %v", err)
	}
	if resolved != 3 {
		t.Fatalf("expected 3 settled picks, got %d", resolved)
	}

	assertResult := func(id uuid.UUID, result models.PickResult, payout float64) {
		t.Helper()
		record := pickRepo.records[id]
		if record.Result != string(result) {
			t.Errorf("pick %s: expected %s, got %s", id, result, record.Result)
		}
		if got := record.Payout.InexactFloat64(); got != payout {
			t.Errorf("pick %s: expected payout %.2f, got %.2f", id, payout, got)
		}
		if record.SettledAt == nil {
			t.Errorf("pick %s: settled without a timestamp", id)
		}
	}

	assertResult(winRecord.ID, models.PickWin, 2.1)
	assertResult(lossRecord.ID, models.PickLoss, 0)
	assertResult(malformed.ID, models.PickUnknown, 0)

	open := pickRepo.records[openRecord.ID]
	if open.Result != string(models.PickPending) {
		t.Errorf("pick on unplayed fixture settled early as %s", open.Result)
	}
	if open.SettledAt != nil {
		t.Error("pick on unplayed fixture carries a settled timestamp")
	}

	// Settlement is terminal; a second pass finds nothing new.
	resolved, err = svc.ResolvePendingPicks(context.Background())
	if err != nil {
		t.Fatalf("second ResolvePendingPicks failed: %v", err)
	}
	if resolved != 0 {
		t.Fatalf("expected idempotent resolution, settled %d again", resolved)
	}
}

func TestResolvePendingPicksMissingFixture(t *testing.T) {
	pick := &models.SuggestedPick{
		ID:            uuid.New(),
		MatchID:       uuid.New(),
		CompetitionID: "test-league",
		Market:        models.Market{Kind: models.MarketWinner, Selection: models.SelectHome},
		Odds:          2.0,
		Result:        models.PickPending,
		CreatedAt:     time.Now().UTC(),
	}
	pickRepo := newFakePickRepo()
	pickRepo.seed([]*models.PickRecord{models.NewPickRecord(pick, nil)})

	svc := NewIngestionService([]string{"test-league"}, &fakeFixtureSource{}, newFakeMatchRepo(), pickRepo, testLogger())

	resolved, err := svc.ResolvePendingPicks(context.Background())
	if err != nil {
		t.Fatalf("ResolvePendingPicks failed: %v", err)
	}
	if resolved != 0 {
		t.Fatalf("expected pick with missing fixture to stay pending, settled %d", resolved)
	}
}
