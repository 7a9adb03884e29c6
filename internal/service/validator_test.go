package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/footy-better/internal/models"
)

func validTestMatch() *models.Match {
	return &models.Match{
		ID:            uuid.New(),
		CompetitionID: "test-league",
		HomeTeam:      "Alpha United",
		AwayTeam:      "Beta City",
		KickoffTime:   time.Now().UTC().AddDate(0, 0, -1),
		HomeGoals:     intPtr(2),
		AwayGoals:     intPtr(1),
		Odds: &models.MatchOdds{
			Home: 2.1,
			Draw: 3.3,
			Away: 3.6,
		},
	}
}

func TestValidateMatchAcceptsCompleteFixture(t *testing.T) {
	v := NewMatchValidator(testLogger())
	if problems := v.ValidateMatch(validTestMatch()); len(problems) > 0 {
		t.Fatalf("expected no validation errors, got %v", problems)
	}
}

func TestValidateMatchRejectsBadFixtures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *models.Match)
	}{
		{
			name:   "missing home team",
			mutate: func(m *models.Match) { m.HomeTeam = "" },
		},
		{
			name:   "identical teams",
			mutate: func(m *models.Match) { m.AwayTeam = m.HomeTeam },
		},
		{
			name:   "missing competition",
			mutate: func(m *models.Match) { m.CompetitionID = "" },
		},
		{
			name:   "zero kickoff",
			mutate: func(m *models.Match) { m.KickoffTime = time.Time{} },
		},
		{
			name:   "kickoff before 1990",
			mutate: func(m *models.Match) { m.KickoffTime = time.Date(1972, 5, 1, 15, 0, 0, 0, time.UTC) },
		},
		{
			name:   "kickoff beyond a year ahead",
			mutate: func(m *models.Match) { m.KickoffTime = time.Now().UTC().AddDate(2, 0, 0) },
		},
		{
			name:   "one-sided score",
			mutate: func(m *models.Match) { m.AwayGoals = nil },
		},
		{
			name:   "negative goals",
			mutate: func(m *models.Match) { m.HomeGoals = intPtr(-1) },
		},
		{
			name:   "absurd goal count",
			mutate: func(m *models.Match) { m.HomeGoals = intPtr(28) },
		},
		{
			name:   "absurd corner count",
			mutate: func(m *models.Match) { m.HomeCorners = intPtr(55) },
		},
		{
			name:   "odds below even money floor",
			mutate: func(m *models.Match) { m.Odds.Home = 0.9 },
		},
		{
			name: "implied probabilities far above one",
			mutate: func(m *models.Match) {
				m.Odds = &models.MatchOdds{Home: 1.1, Draw: 1.2, Away: 1.3}
			},
		},
	}

	v := NewMatchValidator(testLogger())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := validTestMatch()
			tc.mutate(m)
			if problems := v.ValidateMatch(m); len(problems) == 0 {
				t.Error("expected validation errors, got none")
			}
		})
	}
}

func TestValidateOddsNilIsClean(t *testing.T) {
	v := NewMatchValidator(testLogger())
	if problems := v.ValidateOdds(nil); problems != nil {
		t.Fatalf("expected nil for absent odds, got %v", problems)
	}
}

func TestIsValidScoreline(t *testing.T) {
	v := NewMatchValidator(testLogger())
	if !v.IsValidScoreline(0, 0) || !v.IsValidScoreline(10, 2) {
		t.Error("plausible scorelines rejected")
	}
	if v.IsValidScoreline(-1, 0) || v.IsValidScoreline(0, 21) {
		t.Error("implausible scorelines accepted")
	}
}
