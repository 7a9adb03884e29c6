package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConfidenceTier buckets a pick by its modeled probability.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
)

// TierFor maps a probability to its confidence tier.
func TierFor(probability float64) ConfidenceTier {
	switch {
	case probability > 0.80:
		return TierHigh
	case probability > 0.60:
		return TierMedium
	default:
		return TierLow
	}
}

// RiskLevelFor maps a probability to an integer risk level 1 (safest) to 5.
func RiskLevelFor(probability float64) int {
	switch {
	case probability >= 0.80:
		return 1
	case probability >= 0.65:
		return 2
	case probability >= 0.50:
		return 3
	case probability >= 0.35:
		return 4
	default:
		return 5
	}
}

// PickResult is the settled state of a pick.
type PickResult string

const (
	PickPending PickResult = "PENDING"
	PickWin     PickResult = "WIN"
	PickLoss    PickResult = "LOSS"
	PickVoid    PickResult = "VOID"
	PickUnknown PickResult = "UNKNOWN"
)

// OddsSource records where a pick's price came from. Synthetic prices exist
// only so value ranking works without a bookmaker feed; they are never
// presented as market prices.
type OddsSource string

const (
	OddsSourceMarket    OddsSource = "market"
	OddsSourceSynthetic OddsSource = "synthetic"
)

// SuggestedPick is one candidate market bet produced by the generator,
// shaped by context rules, admitted or dropped by the risk manager, and
// finally resolved against the full-time score.
type SuggestedPick struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	MatchID       uuid.UUID      `db:"match_id" json:"match_id"`
	CompetitionID string         `db:"competition_id" json:"competition_id"`
	Market        Market         `db:"-" json:"market"`
	Label         string         `db:"label" json:"label"`
	Probability   float64        `db:"probability" json:"probability" validate:"gte=0,lte=1"`
	Confidence    float64        `db:"confidence" json:"confidence" validate:"gte=0,lte=1"`
	Tier          ConfidenceTier `db:"tier" json:"tier"`
	RiskLevel     int            `db:"risk_level" json:"risk_level" validate:"gte=1,lte=5"`
	Odds          float64        `db:"odds" json:"odds"`
	OddsSource    OddsSource     `db:"odds_source" json:"odds_source"`
	ExpectedValue float64        `db:"expected_value" json:"expected_value"`
	StakeFraction float64        `db:"stake_fraction" json:"stake_fraction" validate:"gte=0,lte=0.05"`
	StakeUnits    float64        `db:"stake_units" json:"stake_units" validate:"gte=0"`
	PriorityScore float64        `db:"priority_score" json:"priority_score"`
	Recommended   bool           `db:"recommended" json:"recommended"`
	Rationale     []string       `db:"-" json:"rationale"`
	Result        PickResult     `db:"result" json:"result"`
	Payout        float64        `db:"payout" json:"payout"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	SettledAt     *time.Time     `db:"settled_at" json:"settled_at"`
}

// AddNote appends one rationale line.
func (p *SuggestedPick) AddNote(note string) {
	p.Rationale = append(p.Rationale, note)
}

// RationaleText joins the rationale lines for display and persistence.
func (p *SuggestedPick) RationaleText() string {
	return strings.Join(p.Rationale, "; ")
}

// IsSettled reports whether resolution produced a terminal result.
func (p *SuggestedPick) IsSettled() bool {
	return p.Result == PickWin || p.Result == PickLoss || p.Result == PickVoid
}

// Profit returns the realized profit in stake-fraction terms for a settled
// pick: payout minus the stake itself.
func (p *SuggestedPick) Profit() float64 {
	if !p.IsSettled() {
		return 0
	}
	return p.StakeFraction * (p.Payout - 1.0)
}
