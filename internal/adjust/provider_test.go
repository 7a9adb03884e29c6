package adjust

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/footy-better/internal/models"
)

func TestStaticAdjustmentFor(t *testing.T) {
	table := Static{
		"goals_over_2.5": 1.1,
		"btts_yes":       0.0,
	}

	assert.Equal(t, 1.1, table.AdjustmentFor("goals_over_2.5"))
	assert.Equal(t, 1.0, table.AdjustmentFor("btts_yes"), "non-positive values fall back to neutral")
	assert.Equal(t, 1.0, table.AdjustmentFor("winner_home"), "unknown keys are neutral")
	assert.Equal(t, 1.0, Neutral().AdjustmentFor("anything"))
}

func TestFromEfficiency(t *testing.T) {
	efficiency := map[string]*models.MarketEfficiency{
		"goals_over_2.5": {MarketKey: "goals_over_2.5", Bets: 20, Wins: 14, Staked: 20, Returned: 24},
		"btts_yes":       {MarketKey: "btts_yes", Bets: 20, Wins: 4, Staked: 20, Returned: 6},
		"winner_home":    {MarketKey: "winner_home", Bets: 5, Wins: 5, Staked: 5, Returned: 12},
		"cards_over_3.5": nil,
	}

	table := FromEfficiency(efficiency)

	// ROI +20% moves the multiplier up by half of that.
	assert.InDelta(t, 1.1, table["goals_over_2.5"], 1e-9)
	// ROI -70% would push below the floor; it clamps at 0.8.
	assert.InDelta(t, 0.8, table["btts_yes"], 1e-9)

	_, thin := table["winner_home"]
	assert.False(t, thin, "markets under the bet floor stay neutral")
	_, broken := table["cards_over_3.5"]
	assert.False(t, broken)
}

type stubStore struct {
	table map[string]float64
	err   error
	calls int
}

func (s *stubStore) GetAdjustments(ctx context.Context) (map[string]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.table, nil
}

func cacheTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestCachedAdjustmentFor(t *testing.T) {
	store := &stubStore{table: map[string]float64{"goals_over_2.5": 1.15}}
	cached := NewCached(store, time.Minute, cacheTestLogger())

	assert.Equal(t, 1.15, cached.AdjustmentFor("goals_over_2.5"))
	assert.Equal(t, 1.0, cached.AdjustmentFor("winner_home"))
	assert.Equal(t, 1, store.calls, "snapshot should be loaded once and reused")
}

func TestCachedFallsBackNeutralOnStoreError(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	cached := NewCached(store, time.Minute, cacheTestLogger())

	assert.Equal(t, 1.0, cached.AdjustmentFor("goals_over_2.5"))
	assert.Equal(t, 1, store.calls)

	// The empty snapshot is cached, so repeated lookups do not hammer the
	// failing store.
	assert.Equal(t, 1.0, cached.AdjustmentFor("goals_over_2.5"))
	assert.Equal(t, 1, store.calls)
}

func TestCachedRefresh(t *testing.T) {
	store := &stubStore{table: map[string]float64{"btts_yes": 1.05}}
	cached := NewCached(store, time.Minute, cacheTestLogger())
	require.Equal(t, 1.05, cached.AdjustmentFor("btts_yes"))

	store.table = map[string]float64{"btts_yes": 0.9}
	require.NoError(t, cached.Refresh(context.Background()))

	assert.Equal(t, 0.9, cached.AdjustmentFor("btts_yes"))
}
