package markets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedValue(t *testing.T) {
	assert.InDelta(t, 0.04, ExpectedValue(0.52, 2.0), 1e-9)
	assert.InDelta(t, -0.10, ExpectedValue(0.45, 2.0), 1e-9)
	assert.InDelta(t, 0.0, ExpectedValue(0.50, 2.0), 1e-9)
}

func TestKellyStake(t *testing.T) {
	// Even-money edge: b = 1, full Kelly = 2p − 1, quartered.
	assert.InDelta(t, 0.025, KellyStake(0.55, 2.0, 0.25), 1e-9)

	// No edge or negative edge stakes nothing.
	assert.Zero(t, KellyStake(0.50, 2.0, 0.25))
	assert.Zero(t, KellyStake(0.30, 1.2, 0.25))

	// A huge edge still respects the per-pick cap.
	assert.InDelta(t, MaxStakeFraction, KellyStake(0.90, 2.0, 0.25), 1e-9)

	// Degenerate inputs.
	assert.Zero(t, KellyStake(0.90, 1.0, 0.25))
	assert.Zero(t, KellyStake(0, 2.0, 0.25))
}

func TestSyntheticOdds(t *testing.T) {
	assert.InDelta(t, 1.9, SyntheticOdds(0.5, 0.95), 1e-9)
	assert.Zero(t, SyntheticOdds(0, 0.95))
}

func TestUnits(t *testing.T) {
	assert.InDelta(t, 2.5, Units(0.025), 1e-9)
	assert.Zero(t, Units(0))
}
