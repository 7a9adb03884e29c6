package models

import (
	"fmt"
	"strconv"
	"strings"
)

// MarketKind enumerates the supported market families. The set is closed:
// resolution and priority rules are driven off the kind through explicit
// tables, never by inspecting label text.
type MarketKind int

const (
	MarketUnknown MarketKind = iota
	MarketWinner
	MarketDoubleChance
	MarketTotalGoals
	MarketTeamGoals
	MarketTotalCorners
	MarketTeamCorners
	MarketTotalCards
	MarketTeamCards
	MarketBTTS
	MarketAsianHandicap
)

// String returns the kind's key prefix.
func (k MarketKind) String() string {
	switch k {
	case MarketWinner:
		return "winner"
	case MarketDoubleChance:
		return "double_chance"
	case MarketTotalGoals:
		return "goals"
	case MarketTeamGoals:
		return "team_goals"
	case MarketTotalCorners:
		return "corners"
	case MarketTeamCorners:
		return "team_corners"
	case MarketTotalCards:
		return "cards"
	case MarketTeamCards:
		return "team_cards"
	case MarketBTTS:
		return "btts"
	case MarketAsianHandicap:
		return "handicap"
	}
	return "unknown"
}

// TeamSide distinguishes team-specific markets from combined ones.
type TeamSide string

const (
	SideNone TeamSide = ""
	SideHome TeamSide = "home"
	SideAway TeamSide = "away"
)

// Selection is the chosen side of a market.
type Selection string

const (
	SelectHome       Selection = "home"
	SelectDraw       Selection = "draw"
	SelectAway       Selection = "away"
	SelectHomeOrDraw Selection = "1x"
	SelectHomeOrAway Selection = "12"
	SelectDrawOrAway Selection = "x2"
	SelectOver       Selection = "over"
	SelectUnder      Selection = "under"
	SelectYes        Selection = "yes"
	SelectNo         Selection = "no"
)

// Market identifies one concrete market: a family plus the selection, side
// and line that parameterize it. The zero value is invalid.
type Market struct {
	Kind      MarketKind `db:"kind" json:"kind"`
	Selection Selection  `db:"selection" json:"selection"`
	Side      TeamSide   `db:"side" json:"side,omitempty"`
	Line      float64    `db:"line" json:"line,omitempty"`
}

// Key returns the canonical identifier, stable across runs. It keys the
// per-market adjustment lookup, the efficiency table and pick persistence.
func (m Market) Key() string {
	switch m.Kind {
	case MarketWinner, MarketDoubleChance, MarketBTTS:
		return fmt.Sprintf("%s_%s", m.Kind, m.Selection)
	case MarketTotalGoals, MarketTotalCorners, MarketTotalCards:
		return fmt.Sprintf("%s_%s_%s", m.Kind, m.Selection, formatLine(m.Line))
	case MarketTeamGoals, MarketTeamCorners, MarketTeamCards:
		return fmt.Sprintf("%s_%s_%s_%s", m.Kind, m.Side, m.Selection, formatLine(m.Line))
	case MarketAsianHandicap:
		return fmt.Sprintf("%s_%s_%s", m.Kind, m.Side, formatLine(m.Line))
	}
	return "unknown"
}

// Label returns a generic human-readable description, without team names.
func (m Market) Label() string {
	switch m.Kind {
	case MarketWinner:
		switch m.Selection {
		case SelectHome:
			return "Home Win"
		case SelectDraw:
			return "Draw"
		case SelectAway:
			return "Away Win"
		}
	case MarketDoubleChance:
		switch m.Selection {
		case SelectHomeOrDraw:
			return "Double Chance 1X"
		case SelectHomeOrAway:
			return "Double Chance 12"
		case SelectDrawOrAway:
			return "Double Chance X2"
		}
	case MarketTotalGoals:
		return fmt.Sprintf("%s %s Goals", titleSelection(m.Selection), formatLine(m.Line))
	case MarketTeamGoals:
		return fmt.Sprintf("%s Team %s %s Goals", titleSide(m.Side), titleSelection(m.Selection), formatLine(m.Line))
	case MarketTotalCorners:
		return fmt.Sprintf("%s %s Corners", titleSelection(m.Selection), formatLine(m.Line))
	case MarketTeamCorners:
		return fmt.Sprintf("%s Team %s %s Corners", titleSide(m.Side), titleSelection(m.Selection), formatLine(m.Line))
	case MarketTotalCards:
		return fmt.Sprintf("%s %s Cards", titleSelection(m.Selection), formatLine(m.Line))
	case MarketTeamCards:
		return fmt.Sprintf("%s Team %s %s Cards", titleSide(m.Side), titleSelection(m.Selection), formatLine(m.Line))
	case MarketBTTS:
		if m.Selection == SelectYes {
			return "Both Teams To Score"
		}
		return "Both Teams To Score - No"
	case MarketAsianHandicap:
		return fmt.Sprintf("%s %+.2f Asian Handicap", titleSide(m.Side), m.Line)
	}
	return "Unknown Market"
}

// ParseMarketKey rebuilds a Market from its canonical key. Picks rehydrated
// from storage pass through here; anything unrecognizable maps to
// ErrUnknownMarket so batch callers can skip it.
func ParseMarketKey(key string) (Market, error) {
	var m Market
	switch {
	case strings.HasPrefix(key, "winner_"):
		m.Kind = MarketWinner
		m.Selection = Selection(strings.TrimPrefix(key, "winner_"))
		if m.Selection != SelectHome && m.Selection != SelectDraw && m.Selection != SelectAway {
			return Market{}, fmt.Errorf("%w: %s", ErrUnknownMarket, key)
		}
	case strings.HasPrefix(key, "double_chance_"):
		m.Kind = MarketDoubleChance
		m.Selection = Selection(strings.TrimPrefix(key, "double_chance_"))
		if m.Selection != SelectHomeOrDraw && m.Selection != SelectHomeOrAway && m.Selection != SelectDrawOrAway {
			return Market{}, fmt.Errorf("%w: %s", ErrUnknownMarket, key)
		}
	case strings.HasPrefix(key, "team_goals_"):
		return parseSidedLineKey(key, MarketTeamGoals, "team_goals_")
	case strings.HasPrefix(key, "goals_"):
		return parseLineKey(key, MarketTotalGoals, "goals_")
	case strings.HasPrefix(key, "team_corners_"):
		return parseSidedLineKey(key, MarketTeamCorners, "team_corners_")
	case strings.HasPrefix(key, "corners_"):
		return parseLineKey(key, MarketTotalCorners, "corners_")
	case strings.HasPrefix(key, "team_cards_"):
		return parseSidedLineKey(key, MarketTeamCards, "team_cards_")
	case strings.HasPrefix(key, "cards_"):
		return parseLineKey(key, MarketTotalCards, "cards_")
	case strings.HasPrefix(key, "btts_"):
		m.Kind = MarketBTTS
		m.Selection = Selection(strings.TrimPrefix(key, "btts_"))
		if m.Selection != SelectYes && m.Selection != SelectNo {
			return Market{}, fmt.Errorf("%w: %s", ErrUnknownMarket, key)
		}
	case strings.HasPrefix(key, "handicap_"):
		rest := strings.TrimPrefix(key, "handicap_")
		parts := strings.SplitN(rest, "_", 2)
		if len(parts) != 2 {
			return Market{}, fmt.Errorf("%w: %s", ErrUnknownMarket, key)
		}
		side := TeamSide(parts[0])
		if side != SideHome && side != SideAway {
			return Market{}, fmt.Errorf("%w: %s", ErrUnknownMarket, key)
		}
		line, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return Market{}, fmt.Errorf("%w: %s", ErrUnknownMarket, key)
		}
		m.Kind = MarketAsianHandicap
		m.Side = side
		m.Line = line
	default:
		return Market{}, fmt.Errorf("%w: %s", ErrUnknownMarket, key)
	}
	return m, nil
}

func parseLineKey(key string, kind MarketKind, prefix string) (Market, error) {
	rest := strings.TrimPrefix(key, prefix)
	parts := strings.SplitN(rest, "_", 2)
	if len(parts) != 2 {
		return Market{}, fmt.Errorf("%w: %s", ErrUnknownMarket, key)
	}
	sel := Selection(parts[0])
	if sel != SelectOver && sel != SelectUnder {
		return Market{}, fmt.Errorf("%w: %s", ErrUnknownMarket, key)
	}
	line, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Market{}, fmt.Errorf("%w: %s", ErrUnknownMarket, key)
	}
	return Market{Kind: kind, Selection: sel, Line: line}, nil
}

func parseSidedLineKey(key string, kind MarketKind, prefix string) (Market, error) {
	rest := strings.TrimPrefix(key, prefix)
	parts := strings.SplitN(rest, "_", 3)
	if len(parts) != 3 {
		return Market{}, fmt.Errorf("%w: %s", ErrUnknownMarket, key)
	}
	side := TeamSide(parts[0])
	if side != SideHome && side != SideAway {
		return Market{}, fmt.Errorf("%w: %s", ErrUnknownMarket, key)
	}
	sel := Selection(parts[1])
	if sel != SelectOver && sel != SelectUnder {
		return Market{}, fmt.Errorf("%w: %s", ErrUnknownMarket, key)
	}
	line, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Market{}, fmt.Errorf("%w: %s", ErrUnknownMarket, key)
	}
	return Market{Kind: kind, Selection: sel, Side: side, Line: line}, nil
}

func formatLine(line float64) string {
	return strconv.FormatFloat(line, 'f', -1, 64)
}

func titleSelection(s Selection) string {
	if s == SelectOver {
		return "Over"
	}
	return "Under"
}

func titleSide(s TeamSide) string {
	if s == SideHome {
		return "Home"
	}
	return "Away"
}
