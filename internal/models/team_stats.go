package models

// TeamStatistics aggregates a team's record over a match set. Totals are
// stored; every rate is derived through a method so a zero-match record can
// never surface NaN.
type TeamStatistics struct {
	TeamName      string `db:"team_name" json:"team_name" validate:"required"`
	CompetitionID string `db:"competition_id" json:"competition_id"`
	MatchesPlayed int    `db:"matches_played" json:"matches_played" validate:"gte=0"`
	Wins          int    `db:"wins" json:"wins"`
	Draws         int    `db:"draws" json:"draws"`
	Losses        int    `db:"losses" json:"losses"`
	GoalsScored   int    `db:"goals_scored" json:"goals_scored"`
	GoalsConceded int    `db:"goals_conceded" json:"goals_conceded"`

	HomePlayed        int `db:"home_played" json:"home_played"`
	HomeGoalsScored   int `db:"home_goals_scored" json:"home_goals_scored"`
	HomeGoalsConceded int `db:"home_goals_conceded" json:"home_goals_conceded"`
	AwayPlayed        int `db:"away_played" json:"away_played"`
	AwayGoalsScored   int `db:"away_goals_scored" json:"away_goals_scored"`
	AwayGoalsConceded int `db:"away_goals_conceded" json:"away_goals_conceded"`

	// Corners and cards are missing from part of the historical feed, so they
	// carry their own sample counters.
	CornerSamples int `db:"corner_samples" json:"corner_samples"`
	CornersFor    int `db:"corners_for" json:"corners_for"`
	CardSamples   int `db:"card_samples" json:"card_samples"`
	CardsFor      int `db:"cards_for" json:"cards_for"`

	// RecentForm holds the last five results, oldest first, e.g. "WWDLW".
	RecentForm string `db:"recent_form" json:"recent_form" validate:"max=5"`
}

// WinRate returns wins over matches played.
func (s *TeamStatistics) WinRate() float64 {
	if s.MatchesPlayed == 0 {
		return 0.0
	}
	return float64(s.Wins) / float64(s.MatchesPlayed)
}

// DrawRate returns draws over matches played.
func (s *TeamStatistics) DrawRate() float64 {
	if s.MatchesPlayed == 0 {
		return 0.0
	}
	return float64(s.Draws) / float64(s.MatchesPlayed)
}

// GoalDifference returns goals scored minus conceded.
func (s *TeamStatistics) GoalDifference() int {
	return s.GoalsScored - s.GoalsConceded
}

// GoalsScoredPerMatch returns the overall scoring average.
func (s *TeamStatistics) GoalsScoredPerMatch() float64 {
	if s.MatchesPlayed == 0 {
		return 0.0
	}
	return float64(s.GoalsScored) / float64(s.MatchesPlayed)
}

// GoalsConcededPerMatch returns the overall concession average.
func (s *TeamStatistics) GoalsConcededPerMatch() float64 {
	if s.MatchesPlayed == 0 {
		return 0.0
	}
	return float64(s.GoalsConceded) / float64(s.MatchesPlayed)
}

// HomeGoalsScoredPerMatch returns the scoring average at home.
func (s *TeamStatistics) HomeGoalsScoredPerMatch() float64 {
	if s.HomePlayed == 0 {
		return 0.0
	}
	return float64(s.HomeGoalsScored) / float64(s.HomePlayed)
}

// HomeGoalsConcededPerMatch returns the concession average at home.
func (s *TeamStatistics) HomeGoalsConcededPerMatch() float64 {
	if s.HomePlayed == 0 {
		return 0.0
	}
	return float64(s.HomeGoalsConceded) / float64(s.HomePlayed)
}

// AwayGoalsScoredPerMatch returns the scoring average away from home.
func (s *TeamStatistics) AwayGoalsScoredPerMatch() float64 {
	if s.AwayPlayed == 0 {
		return 0.0
	}
	return float64(s.AwayGoalsScored) / float64(s.AwayPlayed)
}

// AwayGoalsConcededPerMatch returns the concession average away from home.
func (s *TeamStatistics) AwayGoalsConcededPerMatch() float64 {
	if s.AwayPlayed == 0 {
		return 0.0
	}
	return float64(s.AwayGoalsConceded) / float64(s.AwayPlayed)
}

// CornersPerMatch returns the team's corner average over matches where
// corners were recorded.
func (s *TeamStatistics) CornersPerMatch() float64 {
	if s.CornerSamples == 0 {
		return 0.0
	}
	return float64(s.CornersFor) / float64(s.CornerSamples)
}

// CardsPerMatch returns the team's booking average over matches where cards
// were recorded.
func (s *TeamStatistics) CardsPerMatch() float64 {
	if s.CardSamples == 0 {
		return 0.0
	}
	return float64(s.CardsFor) / float64(s.CardSamples)
}

// FormPoints scores the recent-form string on a 0-1 scale, 3 points per win
// and 1 per draw over the maximum available.
func (s *TeamStatistics) FormPoints() float64 {
	if len(s.RecentForm) == 0 {
		return 0.0
	}
	points := 0
	for _, r := range s.RecentForm {
		switch r {
		case 'W':
			points += 3
		case 'D':
			points++
		}
	}
	return float64(points) / float64(3*len(s.RecentForm))
}

// Clone returns a deep copy, used by the snapshot store to fence replay
// versions from each other.
func (s *TeamStatistics) Clone() *TeamStatistics {
	if s == nil {
		return nil
	}
	dup := *s
	return &dup
}
