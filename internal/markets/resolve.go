package markets

import (
	"math"
	"time"

	"github.com/yourusername/footy-better/internal/models"
)

// lineEpsilon guards float comparison against integer lines, where a push
// (VOID) is possible.
const lineEpsilon = 1e-9

// resolveFunc is one family's settlement rule. The caller has already
// verified the match is played; rules needing supplementary counts check
// those themselves.
type resolveFunc func(m models.Market, match *models.Match) models.PickResult

// resolvers is the closed settlement table. A kind missing here cannot be
// settled and resolves UNKNOWN.
var resolvers = map[models.MarketKind]resolveFunc{
	models.MarketWinner:        resolveWinner,
	models.MarketDoubleChance:  resolveDoubleChance,
	models.MarketTotalGoals:    resolveTotalGoals,
	models.MarketTeamGoals:     resolveTeamGoals,
	models.MarketTotalCorners:  resolveTotalCorners,
	models.MarketTeamCorners:   resolveTeamCorners,
	models.MarketTotalCards:    resolveTotalCards,
	models.MarketTeamCards:     resolveTeamCards,
	models.MarketBTTS:          resolveBTTS,
	models.MarketAsianHandicap: resolveHandicap,
}

// Resolve settles a pick against a finished match. The payout is a stake
// multiplier: the recorded odds on WIN, 1.0 on VOID, 0 otherwise. Malformed
// or unresolvable picks settle UNKNOWN with zero payout instead of raising;
// resolution runs inside large batch loops and one bad record must not
// abort them. The function is pure: resolving the same pair twice yields
// the same result.
func Resolve(pick *models.SuggestedPick, match *models.Match) (models.PickResult, float64) {
	if pick == nil || match == nil || !match.IsPlayed() {
		return models.PickUnknown, 0
	}
	rule, ok := resolvers[pick.Market.Kind]
	if !ok {
		return models.PickUnknown, 0
	}
	result := rule(pick.Market, match)
	return result, PayoutFor(result, pick.Odds)
}

// Settle resolves a pick and writes the terminal result back onto it.
func Settle(pick *models.SuggestedPick, match *models.Match, at time.Time) (models.PickResult, float64) {
	result, payout := Resolve(pick, match)
	pick.Result = result
	pick.Payout = payout
	if result != models.PickUnknown {
		settled := at
		pick.SettledAt = &settled
	}
	return result, payout
}

// PayoutFor maps a settled result to its stake multiplier.
func PayoutFor(result models.PickResult, odds float64) float64 {
	switch result {
	case models.PickWin:
		return odds
	case models.PickVoid:
		return 1.0
	default:
		return 0
	}
}

func resolveWinner(m models.Market, match *models.Match) models.PickResult {
	outcome := match.Outcome()
	switch m.Selection {
	case models.SelectHome:
		return winIf(outcome == models.OutcomeHome)
	case models.SelectDraw:
		return winIf(outcome == models.OutcomeDraw)
	case models.SelectAway:
		return winIf(outcome == models.OutcomeAway)
	}
	return models.PickUnknown
}

func resolveDoubleChance(m models.Market, match *models.Match) models.PickResult {
	outcome := match.Outcome()
	switch m.Selection {
	case models.SelectHomeOrDraw:
		return winIf(outcome == models.OutcomeHome || outcome == models.OutcomeDraw)
	case models.SelectHomeOrAway:
		return winIf(outcome == models.OutcomeHome || outcome == models.OutcomeAway)
	case models.SelectDrawOrAway:
		return winIf(outcome == models.OutcomeDraw || outcome == models.OutcomeAway)
	}
	return models.PickUnknown
}

func resolveTotalGoals(m models.Market, match *models.Match) models.PickResult {
	return resolveLine(float64(match.TotalGoals()), m.Line, m.Selection)
}

func resolveTeamGoals(m models.Market, match *models.Match) models.PickResult {
	count, ok := sideGoals(m.Side, match)
	if !ok {
		return models.PickUnknown
	}
	return resolveLine(float64(count), m.Line, m.Selection)
}

func resolveTotalCorners(m models.Market, match *models.Match) models.PickResult {
	if !match.HasCornerCounts() {
		return models.PickUnknown
	}
	return resolveLine(float64(match.TotalCorners()), m.Line, m.Selection)
}

func resolveTeamCorners(m models.Market, match *models.Match) models.PickResult {
	if !match.HasCornerCounts() {
		return models.PickUnknown
	}
	count := *match.HomeCorners
	if m.Side == models.SideAway {
		count = *match.AwayCorners
	} else if m.Side != models.SideHome {
		return models.PickUnknown
	}
	return resolveLine(float64(count), m.Line, m.Selection)
}

func resolveTotalCards(m models.Market, match *models.Match) models.PickResult {
	if !match.HasCardCounts() {
		return models.PickUnknown
	}
	return resolveLine(float64(match.TotalCards()), m.Line, m.Selection)
}

func resolveTeamCards(m models.Market, match *models.Match) models.PickResult {
	if !match.HasCardCounts() {
		return models.PickUnknown
	}
	count := *match.HomeCards
	if m.Side == models.SideAway {
		count = *match.AwayCards
	} else if m.Side != models.SideHome {
		return models.PickUnknown
	}
	return resolveLine(float64(count), m.Line, m.Selection)
}

func resolveBTTS(m models.Market, match *models.Match) models.PickResult {
	both := *match.HomeGoals > 0 && *match.AwayGoals > 0
	switch m.Selection {
	case models.SelectYes:
		return winIf(both)
	case models.SelectNo:
		return winIf(!both)
	}
	return models.PickUnknown
}

// resolveHandicap settles an Asian line: the side's goal difference plus the
// line decides it, a zero margin pushes. Quarter lines can never land on
// zero, so VOID arises only on integer lines.
func resolveHandicap(m models.Market, match *models.Match) models.PickResult {
	var margin float64
	switch m.Side {
	case models.SideHome:
		margin = float64(*match.HomeGoals-*match.AwayGoals) + m.Line
	case models.SideAway:
		margin = float64(*match.AwayGoals-*match.HomeGoals) + m.Line
	default:
		return models.PickUnknown
	}
	if math.Abs(margin) < lineEpsilon {
		return models.PickVoid
	}
	return winIf(margin > 0)
}

// resolveLine settles an over/under selection against an actual count.
// Integer lines push on an exact landing.
func resolveLine(actual, line float64, sel models.Selection) models.PickResult {
	diff := actual - line
	if math.Abs(diff) < lineEpsilon {
		return models.PickVoid
	}
	switch sel {
	case models.SelectOver:
		return winIf(diff > 0)
	case models.SelectUnder:
		return winIf(diff < 0)
	}
	return models.PickUnknown
}

func sideGoals(side models.TeamSide, match *models.Match) (int, bool) {
	switch side {
	case models.SideHome:
		return *match.HomeGoals, true
	case models.SideAway:
		return *match.AwayGoals, true
	}
	return 0, false
}

func winIf(won bool) models.PickResult {
	if won {
		return models.PickWin
	}
	return models.PickLoss
}
