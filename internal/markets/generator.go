package markets

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-better/internal/models"
	"github.com/yourusername/footy-better/internal/predictor"
)

// Picks outside these probability bounds are not worth cataloging: the long
// tail prices to nothing and the near-certainties price to nothing either.
const (
	minPickProbability = 0.02
	maxPickProbability = 0.985
)

// Config holds the generator parameters.
type Config struct {
	// BaseThreshold is the probability above which a pick is flagged
	// recommended before contextual adjustment.
	BaseThreshold      float64 `json:"base_threshold"`
	VolatileTightening float64 `json:"volatile_tightening"`
	EVLoosening        float64 `json:"ev_loosening"`
	EVLooseningStrong  float64 `json:"ev_loosening_strong"`

	SeparationPivot float64 `json:"separation_pivot"`
	SeparationGain  float64 `json:"separation_gain"`

	SyntheticMargin float64 `json:"synthetic_margin"`
	KellyFraction   float64 `json:"kelly_fraction"`

	GoalLines     []float64 `json:"goal_lines"`
	TeamGoalLines []float64 `json:"team_goal_lines"`
	HandicapSteps int       `json:"handicap_steps"`
	MaxCornerGrid int       `json:"max_corner_grid"`
	MaxCardGrid   int       `json:"max_card_grid"`

	// VolatileTotalGoals and VolatileConfidence define a volatile match: a
	// high combined goal expectation or a low-confidence model read.
	VolatileTotalGoals float64 `json:"volatile_total_goals"`
	VolatileConfidence float64 `json:"volatile_confidence"`
}

// DefaultConfig returns the production generator parameters.
func DefaultConfig() Config {
	return Config{
		BaseThreshold:      0.65,
		VolatileTightening: 0.05,
		EVLoosening:        0.03,
		EVLooseningStrong:  0.06,
		SeparationPivot:    0.55,
		SeparationGain:     1.0,
		SyntheticMargin:    0.95,
		KellyFraction:      DefaultKellyFraction,
		GoalLines:          []float64{0.5, 1.5, 2.5, 3.5, 4.5, 5.5},
		TeamGoalLines:      []float64{0.5, 1.5, 2.5},
		HandicapSteps:      1,
		MaxCornerGrid:      15,
		MaxCardGrid:        10,
		VolatileTotalGoals: 3.2,
		VolatileConfidence: 0.40,
	}
}

// Generator expands one match prediction into the pick catalog. The
// adjustment provider and classifier are injected capabilities; both may be
// absent.
type Generator struct {
	cfg         Config
	adjustments AdjustmentProvider
	classifier  Classifier
	logger      *logrus.Logger
}

// NewGenerator creates a Generator. A nil adjustments provider means every
// multiplier is 1.0; a nil classifier skips re-ranking.
func NewGenerator(cfg Config, adjustments AdjustmentProvider, classifier Classifier, logger *logrus.Logger) *Generator {
	if cfg.BaseThreshold <= 0 {
		cfg = DefaultConfig()
	}
	return &Generator{cfg: cfg, adjustments: adjustments, classifier: classifier, logger: logger}
}

// SetClassifier installs or replaces the refinement classifier, e.g. after a
// training run.
func (g *Generator) SetClassifier(c Classifier) {
	g.classifier = c
}

// GeneratePicks builds the full candidate catalog for one fixture: winner
// and double chance, fixed and team goal lines, corners, cards, both teams
// to score, and Asian handicaps centered on the modeled goal difference.
// Output is sorted by probability descending. Stakes here are suggestions;
// portfolio admission happens in the risk manager.
func (g *Generator) GeneratePicks(match *models.Match, homeStats, awayStats *models.TeamStatistics, league *models.LeagueAverages, pred *models.Prediction) []*models.SuggestedPick {
	if match == nil || pred == nil {
		return nil
	}

	volatile := g.isVolatile(pred)
	b := &catalog{g: g, match: match, pred: pred, volatile: volatile}

	g.addOutcomePicks(b, match, pred)
	g.addGoalLinePicks(b, pred)
	g.addTeamGoalPicks(b, match, pred)
	g.addBTTSPicks(b, pred)
	g.addCornerPicks(b, match, homeStats, awayStats, league, pred)
	g.addCardPicks(b, match, homeStats, awayStats, league, pred)
	g.addHandicapPicks(b, match, pred)

	g.applyContextRules(b.picks, homeStats, awayStats, pred)
	g.applyClassifier(b.picks)

	sort.SliceStable(b.picks, func(i, j int) bool {
		return b.picks[i].Probability > b.picks[j].Probability
	})

	if g.logger != nil {
		recommended := 0
		for _, p := range b.picks {
			if p.Recommended {
				recommended++
			}
		}
		g.logger.WithFields(logrus.Fields{
			"match_id":    match.ID,
			"picks":       len(b.picks),
			"recommended": recommended,
			"volatile":    volatile,
		}).Debug("Pick catalog generated")
	}

	return b.picks
}

// catalog accumulates picks for one fixture.
type catalog struct {
	g        *Generator
	match    *models.Match
	pred     *models.Prediction
	volatile bool
	picks    []*models.SuggestedPick
}

// add builds one pick and appends it unless its probability falls outside
// the catalog bounds. marketOdds of 0 means no bookmaker price exists for
// this market and a synthetic one is derived.
func (c *catalog) add(market models.Market, label string, probability, marketOdds float64, note string) {
	pick := c.g.buildPick(c.match, c.pred, c.volatile, market, label, probability, marketOdds)
	if pick == nil {
		return
	}
	if note != "" {
		pick.AddNote(note)
	}
	c.picks = append(c.picks, pick)
}

func (g *Generator) buildPick(match *models.Match, pred *models.Prediction, volatile bool, market models.Market, label string, probability, marketOdds float64) *models.SuggestedPick {
	if math.IsNaN(probability) || probability < minPickProbability || probability > maxPickProbability {
		return nil
	}

	probability = g.separate(probability)

	confidence := pred.Confidence
	if g.adjustments != nil {
		confidence = clampProbability(confidence * g.adjustments.AdjustmentFor(market.Key()))
	}

	odds := marketOdds
	source := models.OddsSourceMarket
	if odds <= 1.0 {
		odds = SyntheticOdds(probability, g.cfg.SyntheticMargin)
		source = models.OddsSourceSynthetic
	}

	ev := ExpectedValue(probability, odds)
	stake := KellyStake(probability, odds, g.cfg.KellyFraction)

	threshold := g.cfg.BaseThreshold
	if volatile {
		threshold += g.cfg.VolatileTightening
	}
	switch {
	case ev >= 0.10:
		threshold -= g.cfg.EVLooseningStrong
	case ev >= 0.05:
		threshold -= g.cfg.EVLoosening
	}

	pick := &models.SuggestedPick{
		ID:            uuid.New(),
		MatchID:       match.ID,
		CompetitionID: match.CompetitionID,
		Market:        market,
		Label:         label,
		Probability:   probability,
		Confidence:    confidence,
		Tier:          models.TierFor(probability),
		RiskLevel:     models.RiskLevelFor(probability),
		Odds:          odds,
		OddsSource:    source,
		ExpectedValue: ev,
		StakeFraction: stake,
		StakeUnits:    Units(stake),
		PriorityScore: BasePriority(market.Kind),
		Recommended:   probability >= threshold,
		Result:        models.PickPending,
		CreatedAt:     time.Now().UTC(),
	}
	pick.AddNote(fmt.Sprintf("model probability %.1f%%", probability*100))
	return pick
}

// separate applies the non-linear boost above the pivot, widening the gap
// between strong and weak picks.
func (g *Generator) separate(probability float64) float64 {
	if probability <= g.cfg.SeparationPivot {
		return probability
	}
	excess := probability - g.cfg.SeparationPivot
	boosted := probability + g.cfg.SeparationGain*excess*excess
	if boosted > maxPickProbability {
		return maxPickProbability
	}
	return boosted
}

func (g *Generator) isVolatile(pred *models.Prediction) bool {
	return pred.TotalExpectedGoals() > g.cfg.VolatileTotalGoals || pred.Confidence < g.cfg.VolatileConfidence
}

func (g *Generator) addOutcomePicks(b *catalog, match *models.Match, pred *models.Prediction) {
	b.add(models.Market{Kind: models.MarketWinner, Selection: models.SelectHome},
		fmt.Sprintf("%s Win", match.HomeTeam), pred.HomeWin, match.Odds.PriceFor(models.OutcomeHome), "")
	b.add(models.Market{Kind: models.MarketWinner, Selection: models.SelectDraw},
		"Draw", pred.Draw, match.Odds.PriceFor(models.OutcomeDraw), "")
	b.add(models.Market{Kind: models.MarketWinner, Selection: models.SelectAway},
		fmt.Sprintf("%s Win", match.AwayTeam), pred.AwayWin, match.Odds.PriceFor(models.OutcomeAway), "")

	b.add(models.Market{Kind: models.MarketDoubleChance, Selection: models.SelectHomeOrDraw},
		fmt.Sprintf("%s or Draw", match.HomeTeam), pred.HomeWin+pred.Draw, 0, "")
	b.add(models.Market{Kind: models.MarketDoubleChance, Selection: models.SelectHomeOrAway},
		fmt.Sprintf("%s or %s", match.HomeTeam, match.AwayTeam), pred.HomeWin+pred.AwayWin, 0, "")
	b.add(models.Market{Kind: models.MarketDoubleChance, Selection: models.SelectDrawOrAway},
		fmt.Sprintf("Draw or %s", match.AwayTeam), pred.Draw+pred.AwayWin, 0, "")
}

func (g *Generator) addGoalLinePicks(b *catalog, pred *models.Prediction) {
	grid := predictor.NewScoreGrid(pred.ExpectedHomeGoals, pred.ExpectedAwayGoals)
	note := fmt.Sprintf("expected goals %.1f - %.1f", pred.ExpectedHomeGoals, pred.ExpectedAwayGoals)
	for _, line := range g.cfg.GoalLines {
		var overOdds, underOdds float64
		// The bookmaker feed quotes only the 2.5 totals line.
		if line == 2.5 && b.match.Odds != nil {
			if b.match.Odds.Over25 != nil {
				overOdds = *b.match.Odds.Over25
			}
			if b.match.Odds.Under25 != nil {
				underOdds = *b.match.Odds.Under25
			}
		}
		b.add(models.Market{Kind: models.MarketTotalGoals, Selection: models.SelectOver, Line: line},
			fmt.Sprintf("Over %.1f Goals", line), grid.TotalOver(line), overOdds, note)
		b.add(models.Market{Kind: models.MarketTotalGoals, Selection: models.SelectUnder, Line: line},
			fmt.Sprintf("Under %.1f Goals", line), grid.TotalUnder(line), underOdds, note)
	}
}

func (g *Generator) addTeamGoalPicks(b *catalog, match *models.Match, pred *models.Prediction) {
	grid := predictor.NewScoreGrid(pred.ExpectedHomeGoals, pred.ExpectedAwayGoals)
	for _, line := range g.cfg.TeamGoalLines {
		b.add(models.Market{Kind: models.MarketTeamGoals, Side: models.SideHome, Selection: models.SelectOver, Line: line},
			fmt.Sprintf("%s Over %.1f Goals", match.HomeTeam, line), grid.TeamOver(models.SideHome, line), 0, "")
		b.add(models.Market{Kind: models.MarketTeamGoals, Side: models.SideHome, Selection: models.SelectUnder, Line: line},
			fmt.Sprintf("%s Under %.1f Goals", match.HomeTeam, line), grid.TeamUnder(models.SideHome, line), 0, "")
		b.add(models.Market{Kind: models.MarketTeamGoals, Side: models.SideAway, Selection: models.SelectOver, Line: line},
			fmt.Sprintf("%s Over %.1f Goals", match.AwayTeam, line), grid.TeamOver(models.SideAway, line), 0, "")
		b.add(models.Market{Kind: models.MarketTeamGoals, Side: models.SideAway, Selection: models.SelectUnder, Line: line},
			fmt.Sprintf("%s Under %.1f Goals", match.AwayTeam, line), grid.TeamUnder(models.SideAway, line), 0, "")
	}
}

func (g *Generator) addBTTSPicks(b *catalog, pred *models.Prediction) {
	b.add(models.Market{Kind: models.MarketBTTS, Selection: models.SelectYes},
		"Both Teams To Score", pred.BTTS, 0, "")
	b.add(models.Market{Kind: models.MarketBTTS, Selection: models.SelectNo},
		"Both Teams To Score - No", 1.0-pred.BTTS, 0, "")
}

func (g *Generator) addCornerPicks(b *catalog, match *models.Match, homeStats, awayStats *models.TeamStatistics, league *models.LeagueAverages, pred *models.Prediction) {
	homeRate, awayRate := countRates(homeStats, awayStats, league, true)
	if homeRate+awayRate <= 0 {
		return
	}
	grid := predictor.NewCountGrid(homeRate, awayRate, g.cfg.MaxCornerGrid)
	note := fmt.Sprintf("expected corners %.1f", pred.ExpectedCorners)

	for _, line := range centeredLines(homeRate+awayRate, 1) {
		b.add(models.Market{Kind: models.MarketTotalCorners, Selection: models.SelectOver, Line: line},
			fmt.Sprintf("Over %.1f Corners", line), grid.TotalOver(line), 0, note)
		b.add(models.Market{Kind: models.MarketTotalCorners, Selection: models.SelectUnder, Line: line},
			fmt.Sprintf("Under %.1f Corners", line), grid.TotalUnder(line), 0, note)
	}

	homeLine := halfLine(homeRate)
	awayLine := halfLine(awayRate)
	b.add(models.Market{Kind: models.MarketTeamCorners, Side: models.SideHome, Selection: models.SelectOver, Line: homeLine},
		fmt.Sprintf("%s Over %.1f Corners", match.HomeTeam, homeLine), grid.TeamOver(models.SideHome, homeLine), 0, "")
	b.add(models.Market{Kind: models.MarketTeamCorners, Side: models.SideAway, Selection: models.SelectOver, Line: awayLine},
		fmt.Sprintf("%s Over %.1f Corners", match.AwayTeam, awayLine), grid.TeamOver(models.SideAway, awayLine), 0, "")
}

func (g *Generator) addCardPicks(b *catalog, match *models.Match, homeStats, awayStats *models.TeamStatistics, league *models.LeagueAverages, pred *models.Prediction) {
	homeRate, awayRate := countRates(homeStats, awayStats, league, false)
	if homeRate+awayRate <= 0 {
		return
	}
	grid := predictor.NewCountGrid(homeRate, awayRate, g.cfg.MaxCardGrid)
	note := fmt.Sprintf("expected cards %.1f", pred.ExpectedCards)

	for _, line := range centeredLines(homeRate+awayRate, 1) {
		b.add(models.Market{Kind: models.MarketTotalCards, Selection: models.SelectOver, Line: line},
			fmt.Sprintf("Over %.1f Cards", line), grid.TotalOver(line), 0, note)
		b.add(models.Market{Kind: models.MarketTotalCards, Selection: models.SelectUnder, Line: line},
			fmt.Sprintf("Under %.1f Cards", line), grid.TotalUnder(line), 0, note)
	}

	homeLine := halfLine(homeRate)
	awayLine := halfLine(awayRate)
	b.add(models.Market{Kind: models.MarketTeamCards, Side: models.SideHome, Selection: models.SelectOver, Line: homeLine},
		fmt.Sprintf("%s Over %.1f Cards", match.HomeTeam, homeLine), grid.TeamOver(models.SideHome, homeLine), 0, "")
	b.add(models.Market{Kind: models.MarketTeamCards, Side: models.SideAway, Selection: models.SelectOver, Line: awayLine},
		fmt.Sprintf("%s Over %.1f Cards", match.AwayTeam, awayLine), grid.TeamOver(models.SideAway, awayLine), 0, "")
}

func (g *Generator) addHandicapPicks(b *catalog, match *models.Match, pred *models.Prediction) {
	meanDiff := pred.ExpectedHomeGoals - pred.ExpectedAwayGoals
	total := pred.TotalExpectedGoals()
	note := fmt.Sprintf("modeled goal difference %+.2f", meanDiff)

	homeCenter := quarterRound(-meanDiff)
	awayCenter := quarterRound(meanDiff)
	for step := -g.cfg.HandicapSteps; step <= g.cfg.HandicapSteps; step++ {
		offset := 0.25 * float64(step)

		homeLine := homeCenter + offset
		b.add(models.Market{Kind: models.MarketAsianHandicap, Side: models.SideHome, Line: homeLine},
			fmt.Sprintf("%s %+.2f", match.HomeTeam, homeLine),
			predictor.HandicapCoverProbability(meanDiff, homeLine, total), 0, note)

		awayLine := awayCenter + offset
		b.add(models.Market{Kind: models.MarketAsianHandicap, Side: models.SideAway, Line: awayLine},
			fmt.Sprintf("%s %+.2f", match.AwayTeam, awayLine),
			predictor.HandicapCoverProbability(-meanDiff, awayLine, total), 0, note)
	}
}

func (g *Generator) applyClassifier(picks []*models.SuggestedPick) {
	if g.classifier == nil {
		return
	}
	for _, p := range picks {
		score := g.classifier.PredictProbability(Features(p))
		switch {
		case score > 0.65:
			p.PriorityScore *= 1.0 + (score - 0.65)
			p.AddNote(fmt.Sprintf("classifier confirms (%.2f)", score))
		case score < 0.40:
			p.PriorityScore *= 0.5
			p.AddNote(fmt.Sprintf("classifier skeptical (%.2f)", score))
		}
	}
}

// countRates returns per-side corner or card rates, standing the league
// baseline in for a side with no recorded samples.
func countRates(homeStats, awayStats *models.TeamStatistics, league *models.LeagueAverages, corners bool) (home, away float64) {
	var baseline float64
	if league != nil {
		if corners {
			baseline = league.Corners
		} else {
			baseline = league.Cards
		}
	}
	if homeStats != nil {
		if corners {
			home = predictor.CountRate(homeStats.CornersPerMatch(), homeStats.CornerSamples, baseline/2)
		} else {
			home = predictor.CountRate(homeStats.CardsPerMatch(), homeStats.CardSamples, baseline/2)
		}
	} else {
		home = baseline / 2
	}
	if awayStats != nil {
		if corners {
			away = predictor.CountRate(awayStats.CornersPerMatch(), awayStats.CornerSamples, baseline/2)
		} else {
			away = predictor.CountRate(awayStats.CardsPerMatch(), awayStats.CardSamples, baseline/2)
		}
	} else {
		away = baseline / 2
	}
	return home, away
}

// centeredLines returns half-integer lines around an expected total: the
// nearest half line plus spread lines either side.
func centeredLines(expected float64, spread int) []float64 {
	center := halfLine(expected)
	lines := make([]float64, 0, 2*spread+1)
	for i := -spread; i <= spread; i++ {
		line := center + float64(i)
		if line > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}

// halfLine returns the half-integer line just below the expectation.
func halfLine(expected float64) float64 {
	line := math.Floor(expected) + 0.5
	if line < 0.5 {
		return 0.5
	}
	return line
}

func quarterRound(v float64) float64 {
	return math.Round(v*4) / 4
}

func clampProbability(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
