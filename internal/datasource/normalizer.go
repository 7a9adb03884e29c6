package datasource

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-better/internal/models"
)

// matchIDNamespace seeds the deterministic UUIDs for provider fixtures, so
// repeated ingestion of the same fixture upserts the same row.
var matchIDNamespace = uuid.MustParse("8f1c6f33-9c34-4d0b-a1e5-2c7b5d1f0a42")

// Odds outside this range are provider glitches, not prices.
var (
	minPrice = decimal.RequireFromString("1.01")
	maxPrice = decimal.RequireFromString("1000")
)

// MatchID derives the stable engine UUID for a provider fixture.
func MatchID(source string, sourceID int64) uuid.UUID {
	return uuid.NewSHA1(matchIDNamespace, []byte(fmt.Sprintf("%s:%d", source, sourceID)))
}

// Normalizer converts provider payloads into engine models
type Normalizer struct {
	logger *logrus.Logger
}

// NewNormalizer creates a new normalizer
func NewNormalizer(logger *logrus.Logger) *Normalizer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Normalizer{logger: logger}
}

// NormalizeMatch converts a feed fixture into a Match. A malformed fixture
// returns an error so the caller can skip it; it never panics.
func (n *Normalizer) NormalizeMatch(source string, fm *feedMatch) (*models.Match, error) {
	if fm == nil {
		return nil, NewDataSourceError(source, ErrCodeInvalidData, "fixture is nil", nil)
	}

	home := sanitizeTeamName(fm.HomeTeam.Name)
	away := sanitizeTeamName(fm.AwayTeam.Name)
	if home == "" || away == "" {
		return nil, NewDataSourceError(source, ErrCodeInvalidData,
			fmt.Sprintf("fixture %d is missing a team name", fm.ID), nil)
	}

	kickoff, err := time.Parse(time.RFC3339, fm.UTCDate)
	if err != nil {
		return nil, NewDataSourceError(source, ErrCodeInvalidData,
			fmt.Sprintf("fixture %d has unparseable kickoff %q", fm.ID, fm.UTCDate), err)
	}

	now := time.Now().UTC()
	match := &models.Match{
		ID:            MatchID(source, fm.ID),
		CompetitionID: fm.Competition.Code,
		Season:        fm.Season.Label,
		HomeTeam:      home,
		AwayTeam:      away,
		KickoffTime:   kickoff.UTC(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if fm.Score.FullTime.Home != nil && fm.Score.FullTime.Away != nil {
		match.HomeGoals = fm.Score.FullTime.Home
		match.AwayGoals = fm.Score.FullTime.Away
	}
	if fm.Statistics != nil {
		match.HomeCorners = fm.Statistics.HomeCorners
		match.AwayCorners = fm.Statistics.AwayCorners
		match.HomeCards = fm.Statistics.HomeCards
		match.AwayCards = fm.Statistics.AwayCards
	}

	if fm.Odds != nil {
		if odds := n.NormalizeOdds(fm.Odds); odds != nil {
			match.Odds = odds
		} else {
			n.logger.WithFields(logrus.Fields{
				"source":     source,
				"fixture_id": fm.ID,
			}).Warn("Dropping unusable odds on fixture")
		}
	}

	return match, nil
}

// NormalizeOdds parses quoted decimal prices into MatchOdds. When any 1X2
// leg is missing or out of range the whole set is dropped (nil); the totals
// prices are optional and dropped individually.
func (n *Normalizer) NormalizeOdds(fo *feedOdds) *models.MatchOdds {
	if fo == nil {
		return nil
	}

	home, okH := parsePrice(fo.Home)
	draw, okD := parsePrice(fo.Draw)
	away, okA := parsePrice(fo.Away)
	if !okH || !okD || !okA {
		return nil
	}

	odds := &models.MatchOdds{
		Home: home,
		Draw: draw,
		Away: away,
	}

	if fo.Over25 != nil {
		if v, ok := parsePrice(*fo.Over25); ok {
			odds.Over25 = &v
		}
	}
	if fo.Under25 != nil {
		if v, ok := parsePrice(*fo.Under25); ok {
			odds.Under25 = &v
		}
	}
	if fo.UpdatedAt != nil {
		if ts, err := time.Parse(time.RFC3339, *fo.UpdatedAt); err == nil {
			utc := ts.UTC()
			odds.UpdatedAt = &utc
		}
	}

	return odds
}

// parsePrice parses a quoted decimal price, rejecting values outside
// [1.01, 1000].
func parsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if d.LessThan(minPrice) || d.GreaterThan(maxPrice) {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// sanitizeTeamName trims and collapses whitespace. Provider spelling is
// otherwise kept; downstream statistics matching handles name variants.
func sanitizeTeamName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
