package markets

// Bankroll mathematics shared by the generator and the risk manager. One
// stake unit is 1% of bankroll.
const (
	// DefaultKellyFraction is the safety multiplier applied to the full
	// Kelly stake.
	DefaultKellyFraction = 0.25

	// MaxStakeFraction is the hard per-pick cap, as a bankroll fraction.
	MaxStakeFraction = 0.05

	// UnitFraction converts between stake units and bankroll fractions.
	UnitFraction = 0.01
)

// ExpectedValue returns probability×odds − 1.
func ExpectedValue(probability, odds float64) float64 {
	return probability*odds - 1.0
}

// KellyStake returns the fractional-Kelly stake as a bankroll fraction:
// max(0, fraction × (b·p − q)/b) with b = odds−1, capped at
// MaxStakeFraction. A non-positive edge stakes nothing.
func KellyStake(probability, odds, fraction float64) float64 {
	b := odds - 1.0
	if b <= 0 || probability <= 0 {
		return 0
	}
	full := (b*probability - (1.0 - probability)) / b
	if full <= 0 {
		return 0
	}
	stake := fraction * full
	if stake > MaxStakeFraction {
		return MaxStakeFraction
	}
	return stake
}

// SyntheticOdds estimates a fair-minus-margin price from a probability, used
// only so value ranking works without a bookmaker feed.
func SyntheticOdds(probability, margin float64) float64 {
	if probability <= 0 {
		return 0
	}
	return margin / probability
}

// Units converts a bankroll fraction into stake units.
func Units(stakeFraction float64) float64 {
	return stakeFraction / UnitFraction
}
