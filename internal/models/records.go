package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PickRecord is the persisted form of a SuggestedPick. Monetary columns are
// decimal so ledger arithmetic in SQL stays exact; engine math stays float.
type PickRecord struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	RunID         *uuid.UUID      `db:"run_id" json:"run_id"`
	MatchID       uuid.UUID       `db:"match_id" json:"match_id"`
	CompetitionID string          `db:"competition_id" json:"competition_id"`
	MarketKey     string          `db:"market_key" json:"market_key"`
	Label         string          `db:"label" json:"label"`
	Probability   float64         `db:"probability" json:"probability"`
	Confidence    float64         `db:"confidence" json:"confidence"`
	Tier          string          `db:"tier" json:"tier"`
	RiskLevel     int             `db:"risk_level" json:"risk_level"`
	Odds          decimal.Decimal `db:"odds" json:"odds"`
	OddsSource    string          `db:"odds_source" json:"odds_source"`
	ExpectedValue float64         `db:"expected_value" json:"expected_value"`
	StakeFraction float64         `db:"stake_fraction" json:"stake_fraction"`
	StakeUnits    decimal.Decimal `db:"stake_units" json:"stake_units"`
	Recommended   bool            `db:"recommended" json:"recommended"`
	Rationale     string          `db:"rationale" json:"rationale"`
	Result        string          `db:"result" json:"result"`
	Payout        decimal.Decimal `db:"payout" json:"payout"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	SettledAt     *time.Time      `db:"settled_at" json:"settled_at"`
}

// NewPickRecord converts an engine pick into its persisted form.
func NewPickRecord(pick *SuggestedPick, runID *uuid.UUID) *PickRecord {
	return &PickRecord{
		ID:            pick.ID,
		RunID:         runID,
		MatchID:       pick.MatchID,
		CompetitionID: pick.CompetitionID,
		MarketKey:     pick.Market.Key(),
		Label:         pick.Label,
		Probability:   pick.Probability,
		Confidence:    pick.Confidence,
		Tier:          string(pick.Tier),
		RiskLevel:     pick.RiskLevel,
		Odds:          decimal.NewFromFloat(pick.Odds),
		OddsSource:    string(pick.OddsSource),
		ExpectedValue: pick.ExpectedValue,
		StakeFraction: pick.StakeFraction,
		StakeUnits:    decimal.NewFromFloat(pick.StakeUnits),
		Recommended:   pick.Recommended,
		Rationale:     pick.RationaleText(),
		Result:        string(pick.Result),
		Payout:        decimal.NewFromFloat(pick.Payout),
		CreatedAt:     pick.CreatedAt,
		SettledAt:     pick.SettledAt,
	}
}

// ToPick rebuilds the engine form of a stored pick. The market key is parsed
// strictly; a record with an unknown key is reported malformed so batch
// callers can skip it.
func (r *PickRecord) ToPick() (*SuggestedPick, error) {
	market, err := ParseMarketKey(r.MarketKey)
	if err != nil {
		return nil, err
	}
	odds, _ := r.Odds.Float64()
	units, _ := r.StakeUnits.Float64()
	payout, _ := r.Payout.Float64()
	pick := &SuggestedPick{
		ID:            r.ID,
		MatchID:       r.MatchID,
		CompetitionID: r.CompetitionID,
		Market:        market,
		Label:         r.Label,
		Probability:   r.Probability,
		Confidence:    r.Confidence,
		Tier:          ConfidenceTier(r.Tier),
		RiskLevel:     r.RiskLevel,
		Odds:          odds,
		OddsSource:    OddsSource(r.OddsSource),
		ExpectedValue: r.ExpectedValue,
		StakeFraction: r.StakeFraction,
		StakeUnits:    units,
		Recommended:   r.Recommended,
		Result:        PickResult(r.Result),
		Payout:        payout,
		CreatedAt:     r.CreatedAt,
		SettledAt:     r.SettledAt,
	}
	if r.Rationale != "" {
		pick.Rationale = []string{r.Rationale}
	}
	return pick, nil
}

// TrainingRunRecord is the persisted form of a TrainingResult, with the full
// artifact stored as JSON alongside the headline figures.
type TrainingRunRecord struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	CompetitionIDs   []string        `db:"competition_ids" json:"competition_ids"`
	StartDay         time.Time       `db:"start_day" json:"start_day"`
	EndDay           time.Time       `db:"end_day" json:"end_day"`
	MatchesProcessed int             `db:"matches_processed" json:"matches_processed"`
	BetCount         int             `db:"bet_count" json:"bet_count"`
	Accuracy         float64         `db:"accuracy" json:"accuracy"`
	ROI              float64         `db:"roi" json:"roi"`
	ProfitUnits      decimal.Decimal `db:"profit_units" json:"profit_units"`
	FullResult       json.RawMessage `db:"full_result" json:"full_result"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// NewTrainingRunRecord flattens a TrainingResult for storage.
func NewTrainingRunRecord(result *TrainingResult) (*TrainingRunRecord, error) {
	full, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &TrainingRunRecord{
		ID:               result.RunID,
		CompetitionIDs:   result.CompetitionIDs,
		StartDay:         result.StartDay,
		EndDay:           result.EndDay,
		MatchesProcessed: result.MatchesProcessed,
		BetCount:         result.BetCount,
		Accuracy:         result.Accuracy(),
		ROI:              result.ROI(),
		ProfitUnits:      decimal.NewFromFloat(result.ProfitUnits()),
		FullResult:       full,
		CreatedAt:        time.Now().UTC(),
	}, nil
}
