// Package markets expands match predictions into a catalog of priced,
// confidence-scored betting picks, and resolves settled picks against final
// scores. Market behavior is table-driven off the closed market enum.
package markets

import "github.com/yourusername/footy-better/internal/models"

// AdjustmentProvider supplies the learned per-market confidence multiplier,
// keyed by canonical market key. Implementations live outside the engine;
// absent providers and unknown keys both mean 1.0.
type AdjustmentProvider interface {
	AdjustmentFor(marketKey string) float64
}

// Classifier scores a pick's standardized feature vector with a probability
// that the pick wins. It is an optional capability: a nil Classifier leaves
// the catalog ordering purely statistical.
type Classifier interface {
	PredictProbability(features []float64) float64
}

// basePriorities weights each market family before context rules apply.
// Mainstream, liquid families rank above niche ones.
var basePriorities = map[models.MarketKind]float64{
	models.MarketWinner:        1.00,
	models.MarketDoubleChance:  0.90,
	models.MarketTotalGoals:    1.00,
	models.MarketTeamGoals:     0.85,
	models.MarketBTTS:          0.95,
	models.MarketAsianHandicap: 0.90,
	models.MarketTotalCorners:  0.70,
	models.MarketTeamCorners:   0.60,
	models.MarketTotalCards:    0.65,
	models.MarketTeamCards:     0.55,
}

// BasePriority returns the family's base priority weight, 0 for unknown
// kinds.
func BasePriority(kind models.MarketKind) float64 {
	return basePriorities[kind]
}
