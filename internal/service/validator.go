package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-better/internal/models"
)

// MatchValidator validates fixture and odds data before persistence
type MatchValidator struct {
	logger *logrus.Logger
}

// NewMatchValidator creates a new match validator
func NewMatchValidator(logger *logrus.Logger) *MatchValidator {
	return &MatchValidator{logger: logger}
}

// ValidateMatch validates fixture data for required fields and constraints
func (v *MatchValidator) ValidateMatch(match *models.Match) []string {
	var errors []string

	// Check required fields
	if match.HomeTeam == "" {
		errors = append(errors, "home_team is required")
	}

	if match.AwayTeam == "" {
		errors = append(errors, "away_team is required")
	}

	if match.HomeTeam != "" && match.HomeTeam == match.AwayTeam {
		errors = append(errors, fmt.Sprintf("home and away team are identical: %s", match.HomeTeam))
	}

	if match.CompetitionID == "" {
		errors = append(errors, "competition_id is required")
	}

	if match.KickoffTime.IsZero() {
		errors = append(errors, "kickoff_time is required")
	}

	// Historical backfill is allowed, but reject kickoffs outside any
	// plausible season window
	now := time.Now().UTC()
	if !match.KickoffTime.IsZero() {
		if match.KickoffTime.Year() < 1990 {
			errors = append(errors, fmt.Sprintf("kickoff_time implausibly old: %s", match.KickoffTime.Format("2006-01-02")))
		}
		if match.KickoffTime.After(now.Add(365 * 24 * time.Hour)) {
			errors = append(errors, "kickoff_time more than 1 year in future")
		}
	}

	// Score fields arrive in pairs
	if (match.HomeGoals == nil) != (match.AwayGoals == nil) {
		errors = append(errors, "goals must be set for both sides or neither")
	}

	if match.HomeGoals != nil && match.AwayGoals != nil {
		if !v.IsValidScoreline(*match.HomeGoals, *match.AwayGoals) {
			errors = append(errors, fmt.Sprintf("scoreline out of range, got %d-%d", *match.HomeGoals, *match.AwayGoals))
		}
	}

	if match.HomeCorners != nil && (*match.HomeCorners < 0 || *match.HomeCorners > 40) {
		errors = append(errors, fmt.Sprintf("home corners out of range (0-40), got %d", *match.HomeCorners))
	}

	if match.AwayCorners != nil && (*match.AwayCorners < 0 || *match.AwayCorners > 40) {
		errors = append(errors, fmt.Sprintf("away corners out of range (0-40), got %d", *match.AwayCorners))
	}

	if match.HomeCards != nil && (*match.HomeCards < 0 || *match.HomeCards > 15) {
		errors = append(errors, fmt.Sprintf("home cards out of range (0-15), got %d", *match.HomeCards))
	}

	if match.AwayCards != nil && (*match.AwayCards < 0 || *match.AwayCards > 15) {
		errors = append(errors, fmt.Sprintf("away cards out of range (0-15), got %d", *match.AwayCards))
	}

	errors = append(errors, v.ValidateOdds(match.Odds)...)

	return errors
}

// ValidateOdds validates market prices when present
func (v *MatchValidator) ValidateOdds(odds *models.MatchOdds) []string {
	if odds == nil {
		return nil
	}

	var errors []string

	if !odds.Valid() {
		errors = append(errors, fmt.Sprintf("match odds must all exceed 1.0, got %.2f/%.2f/%.2f", odds.Home, odds.Draw, odds.Away))
		return errors
	}

	// A fair book sums to 1.0; bookmaker margin pushes it above. Values far
	// outside that band indicate corrupt prices rather than a real market.
	overround := 1/odds.Home + 1/odds.Draw + 1/odds.Away
	if overround < 0.85 || overround > 1.35 {
		errors = append(errors, fmt.Sprintf("implied probability sum out of range (0.85-1.35), got %.3f", overround))
	} else if overround < 0.98 {
		v.logger.WithFields(logrus.Fields{
			"overround": overround,
		}).Warn("Odds imply negative bookmaker margin")
	}

	if odds.Over25 != nil && *odds.Over25 <= 1.0 {
		errors = append(errors, fmt.Sprintf("over 2.5 odds must exceed 1.0, got %.2f", *odds.Over25))
	}

	if odds.Under25 != nil && *odds.Under25 <= 1.0 {
		errors = append(errors, fmt.Sprintf("under 2.5 odds must exceed 1.0, got %.2f", *odds.Under25))
	}

	return errors
}

// IsValidScoreline checks if a final score is plausible for football
func (v *MatchValidator) IsValidScoreline(homeGoals, awayGoals int) bool {
	if homeGoals < 0 || awayGoals < 0 {
		return false
	}
	return homeGoals <= 20 && awayGoals <= 20
}

// IsValidTeamName checks if team name is in expected format
func (v *MatchValidator) IsValidTeamName(name string) bool {
	return len(name) > 0 && len(name) < 100
}
