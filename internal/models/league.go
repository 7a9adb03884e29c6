package models

// LeagueAverages holds the baseline scoring rates of a competition. They seed
// the Poisson model and act as the fallback when team data is thin.
type LeagueAverages struct {
	CompetitionID string  `db:"competition_id" json:"competition_id"`
	HomeGoals     float64 `db:"home_goals" json:"home_goals" validate:"gte=0"`
	AwayGoals     float64 `db:"away_goals" json:"away_goals" validate:"gte=0"`
	TotalGoals    float64 `db:"total_goals" json:"total_goals" validate:"gte=0"`
	Corners       float64 `db:"corners" json:"corners" validate:"gte=0"`
	Cards         float64 `db:"cards" json:"cards" validate:"gte=0"`
	SampleSize    int     `db:"sample_size" json:"sample_size" validate:"gte=0"`
}

// Usable reports whether the baselines were measured over any matches at all.
// The model refuses to invent baselines when this is false.
func (l *LeagueAverages) Usable() bool {
	return l != nil && l.SampleSize > 0 && l.HomeGoals > 0 && l.AwayGoals > 0
}

// TeamStrength holds a side's multipliers relative to the league baseline,
// 1.0 meaning exactly league-average. Defense above 1.0 means the side
// concedes more than average.
type TeamStrength struct {
	Attack       float64 `json:"attack"`
	Defense      float64 `json:"defense"`
	Form         float64 `json:"form"`
	Availability float64 `json:"availability"`
	Sentiment    float64 `json:"sentiment"`
}

// AttackMultiplier folds form, lineup availability and market sentiment into
// the side's attacking strength.
func (t TeamStrength) AttackMultiplier() float64 {
	return t.Attack * t.Form * t.Availability * t.Sentiment
}

// LineupReport carries the availability input for one side of a fixture.
// MissingKeyPlayers counts confirmed absentees from the first-choice lineup.
type LineupReport struct {
	Team              string `json:"team"`
	MissingKeyPlayers int    `json:"missing_key_players" validate:"gte=0"`
}
