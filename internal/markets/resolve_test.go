package markets

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/footy-better/internal/models"
)

func intPtr(v int) *int { return &v }

// settledMatch finished 3-1 with 7-4 corners and 2-3 cards.
func settledMatch() *models.Match {
	return &models.Match{
		ID:            uuid.New(),
		CompetitionID: "premier-league",
		HomeTeam:      "Arsenal",
		AwayTeam:      "Chelsea",
		KickoffTime:   time.Date(2025, time.September, 13, 15, 0, 0, 0, time.UTC),
		HomeGoals:     intPtr(3),
		AwayGoals:     intPtr(1),
		HomeCorners:   intPtr(7),
		AwayCorners:   intPtr(4),
		HomeCards:     intPtr(2),
		AwayCards:     intPtr(3),
	}
}

func TestResolveSettlementTable(t *testing.T) {
	match := settledMatch()

	tests := []struct {
		name   string
		market models.Market
		want   models.PickResult
	}{
		{"winner home", models.Market{Kind: models.MarketWinner, Selection: models.SelectHome}, models.PickWin},
		{"winner draw", models.Market{Kind: models.MarketWinner, Selection: models.SelectDraw}, models.PickLoss},
		{"winner away", models.Market{Kind: models.MarketWinner, Selection: models.SelectAway}, models.PickLoss},

		{"double chance 1x", models.Market{Kind: models.MarketDoubleChance, Selection: models.SelectHomeOrDraw}, models.PickWin},
		{"double chance 12", models.Market{Kind: models.MarketDoubleChance, Selection: models.SelectHomeOrAway}, models.PickWin},
		{"double chance x2", models.Market{Kind: models.MarketDoubleChance, Selection: models.SelectDrawOrAway}, models.PickLoss},

		{"over 2.5 goals", models.Market{Kind: models.MarketTotalGoals, Selection: models.SelectOver, Line: 2.5}, models.PickWin},
		{"over 4.5 goals", models.Market{Kind: models.MarketTotalGoals, Selection: models.SelectOver, Line: 4.5}, models.PickLoss},
		{"under 4.5 goals", models.Market{Kind: models.MarketTotalGoals, Selection: models.SelectUnder, Line: 4.5}, models.PickWin},
		{"integer goal line push", models.Market{Kind: models.MarketTotalGoals, Selection: models.SelectOver, Line: 4.0}, models.PickVoid},

		{"home team over 2.5", models.Market{Kind: models.MarketTeamGoals, Side: models.SideHome, Selection: models.SelectOver, Line: 2.5}, models.PickWin},
		{"away team under 0.5", models.Market{Kind: models.MarketTeamGoals, Side: models.SideAway, Selection: models.SelectUnder, Line: 0.5}, models.PickLoss},

		{"btts yes", models.Market{Kind: models.MarketBTTS, Selection: models.SelectYes}, models.PickWin},
		{"btts no", models.Market{Kind: models.MarketBTTS, Selection: models.SelectNo}, models.PickLoss},

		{"corners over 9.5", models.Market{Kind: models.MarketTotalCorners, Selection: models.SelectOver, Line: 9.5}, models.PickWin},
		{"away corners over 4.5", models.Market{Kind: models.MarketTeamCorners, Side: models.SideAway, Selection: models.SelectOver, Line: 4.5}, models.PickLoss},
		{"cards under 6.5", models.Market{Kind: models.MarketTotalCards, Selection: models.SelectUnder, Line: 6.5}, models.PickWin},
		{"home cards over 2.5", models.Market{Kind: models.MarketTeamCards, Side: models.SideHome, Selection: models.SelectOver, Line: 2.5}, models.PickLoss},

		{"handicap home -1.5", models.Market{Kind: models.MarketAsianHandicap, Side: models.SideHome, Line: -1.5}, models.PickWin},
		{"handicap home -2 push", models.Market{Kind: models.MarketAsianHandicap, Side: models.SideHome, Line: -2.0}, models.PickVoid},
		{"handicap away +1.5", models.Market{Kind: models.MarketAsianHandicap, Side: models.SideAway, Line: 1.5}, models.PickLoss},
		{"handicap away +2.25", models.Market{Kind: models.MarketAsianHandicap, Side: models.SideAway, Line: 2.25}, models.PickWin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pick := &models.SuggestedPick{Market: tt.market, Odds: 2.0}
			result, payout := Resolve(pick, match)
			assert.Equal(t, tt.want, result)
			assert.Equal(t, PayoutFor(tt.want, 2.0), payout)
		})
	}
}

func TestResolveRefusesUnresolvable(t *testing.T) {
	pick := &models.SuggestedPick{Market: models.Market{Kind: models.MarketWinner, Selection: models.SelectHome}}

	result, payout := Resolve(pick, nil)
	assert.Equal(t, models.PickUnknown, result)
	assert.Zero(t, payout)

	result, _ = Resolve(nil, settledMatch())
	assert.Equal(t, models.PickUnknown, result)

	unplayed := settledMatch()
	unplayed.HomeGoals, unplayed.AwayGoals = nil, nil
	result, _ = Resolve(pick, unplayed)
	assert.Equal(t, models.PickUnknown, result)

	result, _ = Resolve(&models.SuggestedPick{Market: models.Market{Kind: models.MarketUnknown}}, settledMatch())
	assert.Equal(t, models.PickUnknown, result)

	// Corner and card markets need the supplementary counts.
	bare := settledMatch()
	bare.HomeCorners, bare.AwayCorners = nil, nil
	corners := &models.SuggestedPick{Market: models.Market{Kind: models.MarketTotalCorners, Selection: models.SelectOver, Line: 9.5}}
	result, _ = Resolve(corners, bare)
	assert.Equal(t, models.PickUnknown, result)

	// A team market without a side cannot settle.
	sideless := &models.SuggestedPick{Market: models.Market{Kind: models.MarketTeamGoals, Selection: models.SelectOver, Line: 1.5}}
	result, _ = Resolve(sideless, settledMatch())
	assert.Equal(t, models.PickUnknown, result)
}

func TestResolveIsPure(t *testing.T) {
	pick := &models.SuggestedPick{Market: models.Market{Kind: models.MarketWinner, Selection: models.SelectHome}, Odds: 2.1}
	match := settledMatch()

	r1, p1 := Resolve(pick, match)
	r2, p2 := Resolve(pick, match)
	assert.Equal(t, r1, r2)
	assert.Equal(t, p1, p2)
	// Resolve never writes back.
	assert.Empty(t, pick.Result)
	assert.Nil(t, pick.SettledAt)
}

func TestSettleWritesTerminalState(t *testing.T) {
	at := time.Date(2025, time.September, 14, 9, 0, 0, 0, time.UTC)

	pick := &models.SuggestedPick{
		Market: models.Market{Kind: models.MarketWinner, Selection: models.SelectHome},
		Odds:   2.1,
		Result: models.PickPending,
	}
	result, payout := Settle(pick, settledMatch(), at)

	assert.Equal(t, models.PickWin, result)
	assert.InDelta(t, 2.1, payout, 1e-9)
	assert.Equal(t, models.PickWin, pick.Result)
	assert.InDelta(t, 2.1, pick.Payout, 1e-9)
	require.NotNil(t, pick.SettledAt)
	assert.Equal(t, at, *pick.SettledAt)

	// An unresolvable pick keeps its settlement timestamp clear so a later
	// pass can retry once counts arrive.
	bare := settledMatch()
	bare.HomeCards, bare.AwayCards = nil, nil
	cards := &models.SuggestedPick{
		Market: models.Market{Kind: models.MarketTotalCards, Selection: models.SelectOver, Line: 3.5},
		Odds:   1.9,
		Result: models.PickPending,
	}
	result, payout = Settle(cards, bare, at)
	assert.Equal(t, models.PickUnknown, result)
	assert.Zero(t, payout)
	assert.Nil(t, cards.SettledAt)
}

func TestPayoutFor(t *testing.T) {
	assert.InDelta(t, 2.4, PayoutFor(models.PickWin, 2.4), 1e-9)
	assert.InDelta(t, 1.0, PayoutFor(models.PickVoid, 2.4), 1e-9)
	assert.Zero(t, PayoutFor(models.PickLoss, 2.4))
	assert.Zero(t, PayoutFor(models.PickUnknown, 2.4))
	assert.Zero(t, PayoutFor(models.PickPending, 2.4))
}
