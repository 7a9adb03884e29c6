package predictor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/footy-better/internal/models"
)

func TestScoreGridProbabilityMassSumsToOne(t *testing.T) {
	grid := NewScoreGrid(1.4, 1.1)

	home, draw, away := grid.Outcomes()
	assert.InDelta(t, 1.0, home+draw+away, 1e-9)
	assert.InDelta(t, 1.0, grid.TotalOver(2.5)+grid.TotalUnder(2.5), 1e-9)
}

func TestScoreGridSymmetricLambdas(t *testing.T) {
	// No low-score correction, equal rates: the triangle must be symmetric.
	grid := NewScoreGridSized(1.25, 1.25, DefaultMaxGoals, 0)

	home, draw, away := grid.Outcomes()
	assert.InDelta(t, home, away, 1e-12)
	assert.Greater(t, draw, 0.2)
}

func TestScoreGridFavoriteCarriesTheTriangle(t *testing.T) {
	grid := NewScoreGrid(2.1, 0.8)

	home, _, away := grid.Outcomes()
	assert.Greater(t, home, 0.55)
	assert.Less(t, away, 0.15)
	assert.InDelta(t, 2.9, grid.ExpectedTotal(), 0.05)

	home, _, away = NewScoreGrid(1.8, 1.0).Outcomes()
	assert.Greater(t, home, away)
}

func TestScoreGridExactCell(t *testing.T) {
	grid := NewCountGrid(1.0, 1.0, 10)

	// Independent unit Poissons: P(0,0) = e^-2.
	assert.InDelta(t, math.Exp(-2), grid.Probability(0, 0), 1e-6)
	assert.Zero(t, grid.Probability(-1, 0))
	assert.Zero(t, grid.Probability(0, 11))
}

func TestDixonColesFavorsLowScoringDraws(t *testing.T) {
	indep := NewScoreGridSized(1.3, 1.1, DefaultMaxGoals, 0)
	corr := NewScoreGridSized(1.3, 1.1, DefaultMaxGoals, DefaultRho)

	// Negative rho lifts 0-0 and 1-1 and shaves 1-0 and 0-1.
	assert.Greater(t, corr.Probability(0, 0), indep.Probability(0, 0))
	assert.Greater(t, corr.Probability(1, 1), indep.Probability(1, 1))
	assert.Less(t, corr.Probability(1, 0), indep.Probability(1, 0))
	assert.Less(t, corr.Probability(0, 1), indep.Probability(0, 1))

	_, drawIndep, _ := indep.Outcomes()
	_, drawCorr, _ := corr.Outcomes()
	assert.Greater(t, drawCorr, drawIndep)
}

func TestTeamLinesAndBothTeamsScore(t *testing.T) {
	grid := NewCountGrid(1.0, 1.0, 10)

	// P(home ≥ 1) = 1 − e^-1.
	assert.InDelta(t, 1-math.Exp(-1), grid.TeamOver(models.SideHome, 0.5), 1e-6)
	assert.InDelta(t, 1.0, grid.TeamOver(models.SideAway, 0.5)+grid.TeamUnder(models.SideAway, 0.5), 1e-9)

	// Under independence BTTS factorizes.
	want := (1 - math.Exp(-1)) * (1 - math.Exp(-1))
	assert.InDelta(t, want, grid.BothTeamsScore(), 1e-6)
}

func TestHandicapCoverProbability(t *testing.T) {
	assert.InDelta(t, 0.5, HandicapCoverProbability(0, 0, 2.6), 1e-9)
	assert.Greater(t, HandicapCoverProbability(0.8, 0, 2.6), 0.5)
	assert.Less(t, HandicapCoverProbability(-0.8, 0, 2.6), 0.5)

	// A more generous line raises the cover chance.
	assert.Greater(t,
		HandicapCoverProbability(0.3, 0.5, 2.6),
		HandicapCoverProbability(0.3, -0.5, 2.6))

	// Degenerate goal expectation falls back to a coin flip.
	assert.InDelta(t, 0.5, HandicapCoverProbability(1.0, 0, 0), 1e-9)
}

func TestScoreGridClampsDegenerateLambdas(t *testing.T) {
	grid := NewScoreGrid(-3.0, math.NaN())

	home, draw, away := grid.Outcomes()
	assert.InDelta(t, 1.0, home+draw+away, 1e-9)
	// Both rates clamp to the 0.05 floor.
	assert.InDelta(t, 0.1, grid.ExpectedTotal(), 1e-6)
}
