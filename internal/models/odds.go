package models

import "time"

// MatchOdds represents decimal 1X2 prices for a fixture, with the opening
// prices retained so odds drift is observable.
type MatchOdds struct {
	Home        float64    `db:"home" json:"home"`
	Draw        float64    `db:"draw" json:"draw"`
	Away        float64    `db:"away" json:"away"`
	OpeningHome *float64   `db:"opening_home" json:"opening_home"`
	OpeningDraw *float64   `db:"opening_draw" json:"opening_draw"`
	OpeningAway *float64   `db:"opening_away" json:"opening_away"`
	Over25      *float64   `db:"over_2_5" json:"over_2_5"`
	Under25     *float64   `db:"under_2_5" json:"under_2_5"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at"`
}

// Valid reports whether the 1X2 prices are usable decimal odds (>1.0).
func (o *MatchOdds) Valid() bool {
	return o != nil && o.Home > 1.0 && o.Draw > 1.0 && o.Away > 1.0
}

// ImpliedProbabilities returns the overround-free 1X2 probabilities implied
// by the current prices. Returns zeros when the prices are unusable.
func (o *MatchOdds) ImpliedProbabilities() (home, draw, away float64) {
	if !o.Valid() {
		return 0, 0, 0
	}
	h := 1.0 / o.Home
	d := 1.0 / o.Draw
	a := 1.0 / o.Away
	total := h + d + a
	return h / total, d / total, a / total
}

// HomeDrift returns the relative movement of the home price since opening,
// negative when the price has shortened. Zero when no opening price exists.
func (o *MatchOdds) HomeDrift() float64 {
	if o == nil || o.OpeningHome == nil || *o.OpeningHome <= 1.0 || o.Home <= 1.0 {
		return 0
	}
	return (o.Home - *o.OpeningHome) / *o.OpeningHome
}

// AwayDrift returns the relative movement of the away price since opening.
func (o *MatchOdds) AwayDrift() float64 {
	if o == nil || o.OpeningAway == nil || *o.OpeningAway <= 1.0 || o.Away <= 1.0 {
		return 0
	}
	return (o.Away - *o.OpeningAway) / *o.OpeningAway
}

// PriceFor returns the current price for a 1X2 outcome, or 0 when absent.
func (o *MatchOdds) PriceFor(outcome MatchOutcome) float64 {
	if !o.Valid() {
		return 0
	}
	switch outcome {
	case OutcomeHome:
		return o.Home
	case OutcomeDraw:
		return o.Draw
	case OutcomeAway:
		return o.Away
	}
	return 0
}
