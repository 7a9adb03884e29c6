package predictor

import (
	"math"

	"github.com/yourusername/footy-better/internal/models"
)

const (
	// DefaultMaxGoals bounds the score grid per side. Probability mass above
	// ten goals is negligible for association football.
	DefaultMaxGoals = 10

	// DefaultRho is the Dixon-Coles low-score correlation parameter.
	DefaultRho = -0.03
)

// ScoreGrid holds the joint probability of every scoreline up to a maximum
// count per side, renormalized so the cells sum to exactly 1. The same grid
// serves goals (with the Dixon-Coles correction) and corner or card counts
// (without it).
type ScoreGrid struct {
	lambdaHome float64
	lambdaAway float64
	maxCount   int
	cells      [][]float64
}

// NewScoreGrid builds a goal grid with the default size and Dixon-Coles
// correction.
func NewScoreGrid(lambdaHome, lambdaAway float64) *ScoreGrid {
	return NewScoreGridSized(lambdaHome, lambdaAway, DefaultMaxGoals, DefaultRho)
}

// NewCountGrid builds a grid for corner or card counts. No low-score
// correction applies to those.
func NewCountGrid(lambdaHome, lambdaAway float64, maxCount int) *ScoreGrid {
	return NewScoreGridSized(lambdaHome, lambdaAway, maxCount, 0)
}

// NewScoreGridSized builds a grid over 0..maxCount each side from
// independent Poisson marginals, applies the Dixon-Coles adjustment to the
// four low-score cells when rho is non-zero, and renormalizes.
func NewScoreGridSized(lambdaHome, lambdaAway float64, maxCount int, rho float64) *ScoreGrid {
	if maxCount < 1 {
		maxCount = 1
	}
	lambdaHome = clampLambda(lambdaHome)
	lambdaAway = clampLambda(lambdaAway)

	g := &ScoreGrid{
		lambdaHome: lambdaHome,
		lambdaAway: lambdaAway,
		maxCount:   maxCount,
		cells:      make([][]float64, maxCount+1),
	}

	homePMF := make([]float64, maxCount+1)
	awayPMF := make([]float64, maxCount+1)
	for k := 0; k <= maxCount; k++ {
		homePMF[k] = poissonPMF(lambdaHome, k)
		awayPMF[k] = poissonPMF(lambdaAway, k)
	}

	for h := 0; h <= maxCount; h++ {
		g.cells[h] = make([]float64, maxCount+1)
		for a := 0; a <= maxCount; a++ {
			p := homePMF[h] * awayPMF[a]
			if rho != 0 {
				p *= dixonColesTau(h, a, lambdaHome, lambdaAway, rho)
			}
			if p < 0 {
				p = 0
			}
			g.cells[h][a] = p
		}
	}
	g.normalize()
	return g
}

// Probability returns the chance of an exact count pair. Out-of-range pairs
// return 0.
func (g *ScoreGrid) Probability(home, away int) float64 {
	if home < 0 || away < 0 || home > g.maxCount || away > g.maxCount {
		return 0
	}
	return g.cells[home][away]
}

// Outcomes sums the grid triangles into 1X2 probabilities.
func (g *ScoreGrid) Outcomes() (home, draw, away float64) {
	for h := 0; h <= g.maxCount; h++ {
		for a := 0; a <= g.maxCount; a++ {
			switch {
			case h > a:
				home += g.cells[h][a]
			case h == a:
				draw += g.cells[h][a]
			default:
				away += g.cells[h][a]
			}
		}
	}
	return home, draw, away
}

// TotalOver returns P(home+away > line) for a half-integer line.
func (g *ScoreGrid) TotalOver(line float64) float64 {
	var p float64
	for h := 0; h <= g.maxCount; h++ {
		for a := 0; a <= g.maxCount; a++ {
			if float64(h+a) > line {
				p += g.cells[h][a]
			}
		}
	}
	return p
}

// TotalUnder returns P(home+away < line) for a half-integer line.
func (g *ScoreGrid) TotalUnder(line float64) float64 {
	var p float64
	for h := 0; h <= g.maxCount; h++ {
		for a := 0; a <= g.maxCount; a++ {
			if float64(h+a) < line {
				p += g.cells[h][a]
			}
		}
	}
	return p
}

// TeamOver returns P(side's count > line).
func (g *ScoreGrid) TeamOver(side models.TeamSide, line float64) float64 {
	var p float64
	for h := 0; h <= g.maxCount; h++ {
		for a := 0; a <= g.maxCount; a++ {
			count := h
			if side == models.SideAway {
				count = a
			}
			if float64(count) > line {
				p += g.cells[h][a]
			}
		}
	}
	return p
}

// TeamUnder returns P(side's count < line).
func (g *ScoreGrid) TeamUnder(side models.TeamSide, line float64) float64 {
	return 1.0 - g.TeamOver(side, line)
}

// BothTeamsScore returns P(home ≥ 1 and away ≥ 1).
func (g *ScoreGrid) BothTeamsScore() float64 {
	var p float64
	for h := 1; h <= g.maxCount; h++ {
		for a := 1; a <= g.maxCount; a++ {
			p += g.cells[h][a]
		}
	}
	return p
}

// ExpectedTotal returns the mean combined count implied by the grid.
func (g *ScoreGrid) ExpectedTotal() float64 {
	var total float64
	for h := 0; h <= g.maxCount; h++ {
		for a := 0; a <= g.maxCount; a++ {
			total += float64(h+a) * g.cells[h][a]
		}
	}
	return total
}

func (g *ScoreGrid) normalize() {
	var sum float64
	for h := range g.cells {
		for a := range g.cells[h] {
			sum += g.cells[h][a]
		}
	}
	if sum <= 0 {
		return
	}
	for h := range g.cells {
		for a := range g.cells[h] {
			g.cells[h][a] /= sum
		}
	}
}

// HandicapCoverProbability approximates P(homeGoals − awayGoals + line > 0)
// with a normal approximation to the Skellam difference distribution:
// z = (meanDiff + line) / sqrt(totalExpectedGoals).
func HandicapCoverProbability(meanGoalDiff, line, totalExpectedGoals float64) float64 {
	if totalExpectedGoals <= 0 {
		return 0.5
	}
	z := (meanGoalDiff + line) / math.Sqrt(totalExpectedGoals)
	return normalCDF(z)
}

// dixonColesTau adjusts the four low-score cells where the independence
// assumption is weakest.
func dixonColesTau(home, away int, lambdaHome, lambdaAway, rho float64) float64 {
	switch {
	case home == 0 && away == 0:
		return 1 - lambdaHome*lambdaAway*rho
	case home == 0 && away == 1:
		return 1 + lambdaHome*rho
	case home == 1 && away == 0:
		return 1 + lambdaAway*rho
	case home == 1 && away == 1:
		return 1 - rho
	default:
		return 1
	}
}

func poissonPMF(lambda float64, k int) float64 {
	if lambda <= 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	logP := -lambda + float64(k)*math.Log(lambda) - logFactorial(k)
	return math.Exp(logP)
}

func logFactorial(k int) float64 {
	var sum float64
	for i := 2; i <= k; i++ {
		sum += math.Log(float64(i))
	}
	return sum
}

func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

func clampLambda(lambda float64) float64 {
	if math.IsNaN(lambda) || lambda < 0.05 {
		return 0.05
	}
	if lambda > 8.0 {
		return 8.0
	}
	return lambda
}
