package markets

import (
	"hash/fnv"
	"math"

	"github.com/yourusername/footy-better/internal/models"
)

// FeatureCount is the width of the standardized pick feature vector consumed
// by the refinement classifier.
const FeatureCount = 4

// Features standardizes a pick into the classifier's feature vector:
// probability, expected value clamped to [−1,1], risk level scaled to [0,1],
// and a stable hash of the market identifier. The same extraction feeds both
// training and inference, so the two can never disagree on encoding.
func Features(pick *models.SuggestedPick) []float64 {
	ev := pick.ExpectedValue
	if ev > 1 {
		ev = 1
	}
	if ev < -1 {
		ev = -1
	}
	return []float64{
		pick.Probability,
		ev,
		float64(pick.RiskLevel-1) / 4.0,
		marketHash(pick.Market.Key()),
	}
}

// marketHash maps a market key to a stable value in [0,1).
func marketHash(key string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return float64(h.Sum32()) / float64(math.MaxUint32)
}
