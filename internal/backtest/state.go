package backtest

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/footy-better/internal/classifier"
	"github.com/yourusername/footy-better/internal/markets"
	"github.com/yourusername/footy-better/internal/models"
)

// Status is the externally visible state of the orchestrator.
type Status string

const (
	StatusIdle       Status = "IDLE"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusError      Status = "ERROR"
)

// Phase is the step of the replay state machine currently executing.
type Phase string

const (
	PhaseIdle               Phase = "IDLE"
	PhaseFetching           Phase = "FETCHING"
	PhaseGroupingByDay      Phase = "GROUPING_BY_DAY"
	PhaseGenerating         Phase = "GENERATING"
	PhaseConstraining       Phase = "CONSTRAINING"
	PhaseResolving          Phase = "RESOLVING"
	PhaseUpdatingStats      Phase = "UPDATING_STATS"
	PhaseTrainingClassifier Phase = "TRAINING_CLASSIFIER"
	PhaseAggregating        Phase = "AGGREGATING"
	PhaseCompleted          Phase = "COMPLETED"
	PhaseError              Phase = "ERROR"
)

// Progress is a point-in-time view of a run, safe to expose to callers
// polling from other goroutines.
type Progress struct {
	Status    Status    `json:"status"`
	Phase     Phase     `json:"phase"`
	Day       time.Time `json:"day,omitempty"`
	DaysTotal int       `json:"days_total"`
	DaysDone  int       `json:"days_done"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// runState accumulates realized results while days are replayed. It belongs
// to a single run and is folded into the TrainingResult at the end.
type runState struct {
	result  *models.TrainingResult
	samples []classifier.Sample

	dayMatches  int
	dayBets     int
	dayStaked   float64
	dayReturned float64
	unknown     int
}

func newRunState(competitionIDs []string, startDay, endDay time.Time) *runState {
	return &runState{
		result: &models.TrainingResult{
			RunID:            uuid.New(),
			CompetitionIDs:   competitionIDs,
			StartDay:         startDay,
			EndDay:           endDay,
			MarketEfficiency: make(map[string]*models.MarketEfficiency),
			FinalStats:       make(map[string]*models.TeamStatistics),
			StartedAt:        time.Now().UTC(),
		},
	}
}

// recordSettled books one settled pick into the run totals. UNKNOWN picks
// carry no realized stake and produce no training label, so they only bump
// the unknown counter.
func (s *runState) recordSettled(pick *models.SuggestedPick) {
	if pick.Result == models.PickUnknown {
		s.unknown++
		return
	}

	staked := pick.StakeUnits
	returned := pick.StakeUnits * pick.Payout

	s.result.BetCount++
	s.result.TotalStaked += staked
	s.result.TotalReturned += returned
	s.dayBets++
	s.dayStaked += staked
	s.dayReturned += returned

	key := pick.Market.Key()
	eff := s.result.MarketEfficiency[key]
	if eff == nil {
		eff = &models.MarketEfficiency{MarketKey: key}
		s.result.MarketEfficiency[key] = eff
	}
	eff.Bets++
	eff.Staked += staked
	eff.Returned += returned

	switch pick.Result {
	case models.PickWin:
		s.result.Wins++
		eff.Wins++
		s.samples = append(s.samples, classifier.Sample{Features: markets.Features(pick), Won: true})
	case models.PickLoss:
		s.result.Losses++
		s.samples = append(s.samples, classifier.Sample{Features: markets.Features(pick), Won: false})
	case models.PickVoid:
		s.result.Voids++
		eff.Voids++
	}
}

// closeDay appends the day's point to the ROI curve and resets the per-day
// accumulators.
func (s *runState) closeDay(day time.Time) {
	s.result.MatchesProcessed += s.dayMatches

	cumulative := 0.0
	if s.result.TotalStaked > 0 {
		cumulative = (s.result.TotalReturned - s.result.TotalStaked) / s.result.TotalStaked
	}
	s.result.ROICurve = append(s.result.ROICurve, models.DailyROI{
		Day:           day,
		Matches:       s.dayMatches,
		Bets:          s.dayBets,
		Staked:        s.dayStaked,
		Returned:      s.dayReturned,
		CumulativeROI: cumulative,
	})

	s.dayMatches = 0
	s.dayBets = 0
	s.dayStaked = 0
	s.dayReturned = 0
}
