// Package adjust supplies the learned per-market confidence multipliers
// applied during pick generation. Multipliers accumulate from settled-pick
// feedback; an unknown market always maps to the neutral 1.0.
package adjust

import (
	"github.com/yourusername/footy-better/internal/models"
)

const (
	// feedbackMinBets is the settled-bet floor below which a market's
	// realized performance is too noisy to move its multiplier.
	feedbackMinBets = 10

	// feedbackScale converts realized ROI into a multiplier delta.
	feedbackScale = 0.5

	minMultiplier = 0.8
	maxMultiplier = 1.2
)

// Static is a fixed multiplier table keyed by canonical market key. The
// zero value behaves neutrally.
type Static map[string]float64

// AdjustmentFor returns the stored multiplier for the market key, or 1.0
// when the key is absent or holds a non-positive value.
func (s Static) AdjustmentFor(marketKey string) float64 {
	if v, ok := s[marketKey]; ok && v > 0 {
		return v
	}
	return 1.0
}

// Neutral returns an empty table, useful as the default collaborator.
func Neutral() Static {
	return Static{}
}

// FromEfficiency derives a multiplier table from per-market realized
// results. Markets with enough settled bets move by half their realized
// ROI, bounded to [0.8, 1.2]; thin markets stay neutral and are omitted.
func FromEfficiency(efficiency map[string]*models.MarketEfficiency) Static {
	table := Static{}
	for key, e := range efficiency {
		if e == nil || e.Bets < feedbackMinBets {
			continue
		}
		multiplier := 1.0 + e.ROI()*feedbackScale
		if multiplier < minMultiplier {
			multiplier = minMultiplier
		}
		if multiplier > maxMultiplier {
			multiplier = maxMultiplier
		}
		table[key] = multiplier
	}
	return table
}
