// Package risk applies bankroll-level constraints to candidate picks.
// Stakes are expressed as fractions of bankroll, so a daily cap of 0.05
// means at most 5% of the bankroll is placed across one day's fixtures.
package risk

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-better/internal/markets"
	"github.com/yourusername/footy-better/internal/models"
)

// Config holds the portfolio limits enforced by the Manager.
type Config struct {
	DailyCap         float64 `json:"daily_cap"`
	CompetitionCap   float64 `json:"competition_cap"`
	MaxStakeFraction float64 `json:"max_stake_fraction"`
	MinStakeFraction float64 `json:"min_stake_fraction"`
	KellyFraction    float64 `json:"kelly_fraction"`
}

// DefaultConfig returns the standard portfolio limits: 5% of bankroll per
// day, 3% per competition, 5% per pick, and no stakes below 0.5%.
func DefaultConfig() Config {
	return Config{
		DailyCap:         0.05,
		CompetitionCap:   0.03,
		MaxStakeFraction: markets.MaxStakeFraction,
		MinStakeFraction: 0.005,
		KellyFraction:    markets.DefaultKellyFraction,
	}
}

// Metrics is a snapshot of the exposure committed by the most recent
// portfolio pass.
type Metrics struct {
	DayExposure         float64            `json:"day_exposure"`
	CompetitionExposure map[string]float64 `json:"competition_exposure"`
	Candidates          int                `json:"candidates"`
	Approved            int                `json:"approved"`
	Trimmed             int                `json:"trimmed"`
	Dropped             int                `json:"dropped"`
	LastUpdate          time.Time          `json:"last_update"`
}

// Manager admits candidate picks against daily and per-competition stake
// budgets. Budget state lives only for the duration of a single
// ApplyPortfolioConstraints call; each call is one betting day.
type Manager struct {
	config  Config
	logger  *logrus.Logger
	mu      sync.RWMutex
	metrics Metrics
}

// NewManager creates a portfolio manager with the given limits. Zero-valued
// limits fall back to the defaults.
func NewManager(cfg Config, logger *logrus.Logger) *Manager {
	def := DefaultConfig()
	if cfg.DailyCap <= 0 {
		cfg.DailyCap = def.DailyCap
	}
	if cfg.CompetitionCap <= 0 {
		cfg.CompetitionCap = def.CompetitionCap
	}
	if cfg.MaxStakeFraction <= 0 {
		cfg.MaxStakeFraction = def.MaxStakeFraction
	}
	if cfg.MinStakeFraction <= 0 {
		cfg.MinStakeFraction = def.MinStakeFraction
	}
	if cfg.KellyFraction <= 0 {
		cfg.KellyFraction = def.KellyFraction
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Manager{config: cfg, logger: logger}
}

// ApplyPortfolioConstraints takes one day's candidate picks and returns the
// subset that fits within the portfolio budgets. Candidates are considered
// in descending expectedValue * priorityScore order and admitted greedily:
// an oversized stake is trimmed to whatever budget remains for its day and
// its competition, and a candidate whose remaining budget is below the
// minimum stake is dropped with a rationale note and a zero stake. The
// stake fraction of each admitted pick is recomputed from its probability
// and odds, so callers do not need to pre-size stakes.
func (m *Manager) ApplyPortfolioConstraints(candidates []*models.SuggestedPick) []*models.SuggestedPick {
	ordered := make([]*models.SuggestedPick, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ExpectedValue*ordered[i].PriorityScore >
			ordered[j].ExpectedValue*ordered[j].PriorityScore
	})

	day := newDayLedger()
	approved := make([]*models.SuggestedPick, 0, len(ordered))
	trimmed := 0
	dropped := 0

	for _, pick := range ordered {
		stake := markets.KellyStake(pick.Probability, pick.Odds, m.config.KellyFraction)
		if stake > m.config.MaxStakeFraction {
			stake = m.config.MaxStakeFraction
		}
		if stake <= 0 {
			m.reject(pick, "no positive staking edge at current odds")
			dropped++
			continue
		}

		committed := day.byCompetition[pick.CompetitionID]
		dailyRemaining := m.config.DailyCap - day.total
		competitionRemaining := m.config.CompetitionCap - committed
		remaining := math.Min(dailyRemaining, competitionRemaining)

		if remaining < m.config.MinStakeFraction {
			if competitionRemaining <= dailyRemaining {
				m.reject(pick, fmt.Sprintf("competition exposure cap reached (%.2f%% committed to %s)",
					committed*100, pick.CompetitionID))
			} else {
				m.reject(pick, fmt.Sprintf("daily stake budget exhausted (%.2f%% committed)", day.total*100))
			}
			dropped++
			continue
		}

		if stake > remaining {
			stake = remaining
			if competitionRemaining < dailyRemaining {
				pick.AddNote(fmt.Sprintf("stake trimmed to remaining competition budget (%.2f%%)", stake*100))
			} else {
				pick.AddNote(fmt.Sprintf("stake trimmed to remaining daily budget (%.2f%%)", stake*100))
			}
			trimmed++
		}

		pick.StakeFraction = stake
		pick.StakeUnits = markets.Units(stake)
		day.commit(pick.CompetitionID, stake)
		approved = append(approved, pick)
	}

	m.record(day, len(candidates), len(approved), trimmed, dropped)

	m.logger.WithFields(logrus.Fields{
		"candidates":   len(candidates),
		"approved":     len(approved),
		"trimmed":      trimmed,
		"dropped":      dropped,
		"day_exposure": day.total,
		"daily_cap":    m.config.DailyCap,
	}).Info("Portfolio constraints applied")

	return approved
}

// Metrics returns a copy of the exposure snapshot from the most recent
// portfolio pass.
func (m *Manager) Metrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := m.metrics
	snapshot.CompetitionExposure = make(map[string]float64, len(m.metrics.CompetitionExposure))
	for competition, exposure := range m.metrics.CompetitionExposure {
		snapshot.CompetitionExposure[competition] = exposure
	}
	return snapshot
}

func (m *Manager) reject(pick *models.SuggestedPick, reason string) {
	pick.StakeFraction = 0
	pick.StakeUnits = 0
	pick.AddNote("dropped: " + reason)

	m.logger.WithFields(logrus.Fields{
		"match_id":    pick.MatchID,
		"market":      pick.Label,
		"competition": pick.CompetitionID,
		"reason":      reason,
	}).Debug("Pick rejected by portfolio constraints")
}

func (m *Manager) record(day *dayLedger, candidates, approved, trimmed, dropped int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics = Metrics{
		DayExposure:         day.total,
		CompetitionExposure: day.byCompetition,
		Candidates:          candidates,
		Approved:            approved,
		Trimmed:             trimmed,
		Dropped:             dropped,
		LastUpdate:          time.Now(),
	}
}

// dayLedger tracks stake fractions committed within a single betting day.
type dayLedger struct {
	total         float64
	byCompetition map[string]float64
}

func newDayLedger() *dayLedger {
	return &dayLedger{byCompetition: make(map[string]float64)}
}

func (d *dayLedger) commit(competitionID string, stake float64) {
	d.total += stake
	d.byCompetition[competitionID] += stake
}
