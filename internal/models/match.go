package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchOutcome is the 1X2 result of a finished match.
type MatchOutcome string

const (
	OutcomeHome    MatchOutcome = "home"
	OutcomeDraw    MatchOutcome = "draw"
	OutcomeAway    MatchOutcome = "away"
	OutcomeUnknown MatchOutcome = ""
)

// Match represents a single fixture, played or upcoming.
type Match struct {
	ID            uuid.UUID  `db:"id" json:"id" validate:"required"`
	CompetitionID string     `db:"competition_id" json:"competition_id" validate:"required"`
	Season        string     `db:"season" json:"season"`
	HomeTeam      string     `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam      string     `db:"away_team" json:"away_team" validate:"required"`
	KickoffTime   time.Time  `db:"kickoff_time" json:"kickoff_time" validate:"required"`
	HomeGoals     *int       `db:"home_goals" json:"home_goals"`
	AwayGoals     *int       `db:"away_goals" json:"away_goals"`
	HomeCorners   *int       `db:"home_corners" json:"home_corners"`
	AwayCorners   *int       `db:"away_corners" json:"away_corners"`
	HomeCards     *int       `db:"home_cards" json:"home_cards"`
	AwayCards     *int       `db:"away_cards" json:"away_cards"`
	Odds          *MatchOdds `db:"-" json:"odds,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// IsPlayed reports whether the final score is known. Both goal counts must be
// present; supplementary counts (corners, cards) may still be missing.
func (m *Match) IsPlayed() bool {
	return m.HomeGoals != nil && m.AwayGoals != nil
}

// Outcome derives the 1X2 result from the score. Unplayed matches yield
// OutcomeUnknown.
func (m *Match) Outcome() MatchOutcome {
	if !m.IsPlayed() {
		return OutcomeUnknown
	}
	switch {
	case *m.HomeGoals > *m.AwayGoals:
		return OutcomeHome
	case *m.HomeGoals < *m.AwayGoals:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}

// TotalGoals returns the combined goal count, or 0 for unplayed matches.
func (m *Match) TotalGoals() int {
	if !m.IsPlayed() {
		return 0
	}
	return *m.HomeGoals + *m.AwayGoals
}

// HasCornerCounts reports whether corner totals were recorded.
func (m *Match) HasCornerCounts() bool {
	return m.HomeCorners != nil && m.AwayCorners != nil
}

// TotalCorners returns the combined corner count, or 0 when not recorded.
func (m *Match) TotalCorners() int {
	if !m.HasCornerCounts() {
		return 0
	}
	return *m.HomeCorners + *m.AwayCorners
}

// HasCardCounts reports whether booking counts were recorded.
func (m *Match) HasCardCounts() bool {
	return m.HomeCards != nil && m.AwayCards != nil
}

// TotalCards returns the combined booking count, or 0 when not recorded.
func (m *Match) TotalCards() int {
	if !m.HasCardCounts() {
		return 0
	}
	return *m.HomeCards + *m.AwayCards
}

// Day returns the UTC calendar day of kickoff, used as the replay grouping key.
func (m *Match) Day() time.Time {
	t := m.KickoffTime.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Involves reports whether the named team plays in this match, by exact name.
func (m *Match) Involves(team string) bool {
	return m.HomeTeam == team || m.AwayTeam == team
}
