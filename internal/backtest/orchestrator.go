// Package backtest replays historical fixtures day by day, driving the
// prediction, market-generation and risk components against statistics as
// they stood on each simulated day, and trains the refinement classifier on
// the realized outcomes.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-better/internal/classifier"
	"github.com/yourusername/footy-better/internal/markets"
	"github.com/yourusername/footy-better/internal/models"
	"github.com/yourusername/footy-better/internal/predictor"
	"github.com/yourusername/footy-better/internal/risk"
	"github.com/yourusername/footy-better/internal/stats"
)

// MatchSource loads the fixture history a replay runs over. forceRefresh
// asks the source to bypass any cache it keeps.
type MatchSource interface {
	Matches(ctx context.Context, competitionID string, from, to time.Time, forceRefresh bool) ([]*models.Match, error)
}

// Recorder persists the picks and the finished run. It is optional; without
// one the run stays entirely in memory.
type Recorder interface {
	RecordPicks(ctx context.Context, picks []*models.PickRecord) error
	RecordTrainingRun(ctx context.Context, run *models.TrainingRunRecord) error
}

// Config holds orchestrator settings.
type Config struct {
	ModelPath  string            `json:"model_path"`
	Classifier classifier.Config `json:"classifier"`
}

// DefaultConfig returns the standard orchestrator settings.
func DefaultConfig() Config {
	return Config{
		ModelPath:  "models/pick_classifier.json",
		Classifier: classifier.DefaultConfig(),
	}
}

// Orchestrator drives a full backtest run through its state machine.
type Orchestrator struct {
	config    Config
	source    MatchSource
	predictor *predictor.Predictor
	generator *markets.Generator
	risk      *risk.Manager
	recorder  Recorder
	logger    *logrus.Logger

	mu       sync.RWMutex
	running  bool
	progress Progress
}

// NewOrchestrator wires the replay pipeline together.
func NewOrchestrator(cfg Config, source MatchSource, pred *predictor.Predictor, generator *markets.Generator, riskManager *risk.Manager, logger *logrus.Logger) (*Orchestrator, error) {
	if source == nil {
		return nil, fmt.Errorf("match source is required")
	}
	if pred == nil {
		return nil, fmt.Errorf("predictor is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("market generator is required")
	}
	if riskManager == nil {
		return nil, fmt.Errorf("risk manager is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Orchestrator{
		config:    cfg,
		source:    source,
		predictor: pred,
		generator: generator,
		risk:      riskManager,
		logger:    logger,
		progress:  Progress{Status: StatusIdle, Phase: PhaseIdle, UpdatedAt: time.Now().UTC()},
	}, nil
}

// SetRecorder attaches an optional persistence sink for picks and runs.
func (o *Orchestrator) SetRecorder(r Recorder) {
	o.recorder = r
}

// Progress returns a snapshot of the current run state, safe to call from
// any goroutine.
func (o *Orchestrator) Progress() Progress {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.progress
}

// RunBacktest replays the last daysBack days of the given competitions and
// returns the aggregated TrainingResult. On a fatal error the partial
// result computed so far is returned alongside the error; it is not final
// but is not discarded either.
func (o *Orchestrator) RunBacktest(ctx context.Context, competitionIDs []string, daysBack int, forceRefresh bool) (*models.TrainingResult, error) {
	if len(competitionIDs) == 0 {
		return nil, fmt.Errorf("at least one competition is required")
	}
	if daysBack <= 0 {
		return nil, fmt.Errorf("daysBack must be positive")
	}
	if err := o.begin(); err != nil {
		return nil, err
	}
	defer o.end()

	endDay := normalizeDay(time.Now().UTC())
	startDay := endDay.AddDate(0, 0, -daysBack)
	state := newRunState(competitionIDs, startDay, endDay)
	snapshots := NewSnapshotStore()
	history := newReplayHistory()

	o.logger.WithFields(logrus.Fields{
		"run_id":        state.result.RunID,
		"competitions":  competitionIDs,
		"days_back":     daysBack,
		"force_refresh": forceRefresh,
	}).Info("Starting backtest run")

	matches, err := o.fetchMatches(ctx, competitionIDs, startDay, endDay, forceRefresh)
	if err != nil {
		return o.abort(state, snapshots, err)
	}

	o.setPhase(PhaseGroupingByDay, time.Time{})
	days := groupByDay(matches)
	o.setDaysTotal(len(days))

	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return o.abort(state, snapshots, fmt.Errorf("backtest cancelled: %w", err))
		}
		o.processDay(ctx, day, state, snapshots, history)
		o.markDayDone()
	}

	summary, err := o.trainClassifier(ctx, state)
	state.result.Classifier = summary
	if err != nil {
		return o.abort(state, snapshots, err)
	}

	o.setPhase(PhaseAggregating, time.Time{})
	o.finalize(state, snapshots)
	o.recordRun(ctx, state)

	o.complete()
	o.logger.WithFields(logrus.Fields{
		"run_id":    state.result.RunID,
		"matches":   state.result.MatchesProcessed,
		"bets":      state.result.BetCount,
		"roi":       state.result.ROI(),
		"accuracy":  state.result.Accuracy(),
		"unknown":   state.unknown,
		"days_done": len(days),
	}).Info("Backtest run completed")

	return state.result, nil
}

func (o *Orchestrator) fetchMatches(ctx context.Context, competitionIDs []string, from, to time.Time, forceRefresh bool) ([]*models.Match, error) {
	o.setPhase(PhaseFetching, time.Time{})

	var all []*models.Match
	for _, competitionID := range competitionIDs {
		matches, err := o.source.Matches(ctx, competitionID, from, to, forceRefresh)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch match history for %s: %w", competitionID, err)
		}
		for _, m := range matches {
			if m == nil || !m.IsPlayed() {
				continue
			}
			all = append(all, m)
		}
	}
	return all, nil
}

// processDay runs one simulated day: predictions and picks from the
// statistics committed before the day, portfolio constraints across the
// whole day, resolution against final scores, and only then the statistics
// update. Per-match errors are logged and skipped so one bad record cannot
// abort a multi-year replay.
func (o *Orchestrator) processDay(ctx context.Context, day replayDay, state *runState, snapshots *SnapshotStore, history *replayHistory) {
	o.setPhase(PhaseGenerating, day.date)

	candidates := make([]*models.SuggestedPick, 0)
	matchByID := make(map[uuid.UUID]*models.Match, len(day.matches))

	for _, match := range day.matches {
		matchByID[match.ID] = match
		state.dayMatches++

		teams, league := snapshots.AsOf(match.CompetitionID, day.date)
		homeStats := teamOrZero(teams, match.HomeTeam)
		awayStats := teamOrZero(teams, match.AwayTeam)

		pred, err := o.predictor.Predict(match, homeStats, awayStats, league, history.global)
		if err != nil {
			if errors.Is(err, models.ErrInsufficientData) {
				o.logger.WithFields(logrus.Fields{
					"match_id": match.ID,
					"home":     match.HomeTeam,
					"away":     match.AwayTeam,
				}).Debug("Skipping match, not enough history yet")
			} else {
				o.logger.WithError(err).WithField("match_id", match.ID).Warn("Prediction failed, skipping match")
			}
			continue
		}

		for _, pick := range o.generator.GeneratePicks(match, homeStats, awayStats, league, pred) {
			if pick.Recommended {
				candidates = append(candidates, pick)
			}
		}
	}

	o.setPhase(PhaseConstraining, day.date)
	approved := o.risk.ApplyPortfolioConstraints(candidates)

	o.setPhase(PhaseResolving, day.date)
	for _, pick := range approved {
		markets.Settle(pick, matchByID[pick.MatchID], day.date)
		state.recordSettled(pick)
	}
	state.closeDay(day.date)

	if o.recorder != nil && len(approved) > 0 {
		runID := state.result.RunID
		records := make([]*models.PickRecord, 0, len(approved))
		for _, pick := range approved {
			records = append(records, models.NewPickRecord(pick, &runID))
		}
		if err := o.recorder.RecordPicks(ctx, records); err != nil {
			o.logger.WithError(err).Warn("Failed to persist day picks")
		}
	}

	o.setPhase(PhaseUpdatingStats, day.date)
	o.updateStatistics(day, snapshots, history)
}

// updateStatistics folds the day's finished matches into each involved
// team's rolling statistics and commits the new snapshots. This runs
// strictly after resolution; earlier phases of the same day can only see
// the previous day's commit.
func (o *Orchestrator) updateStatistics(day replayDay, snapshots *SnapshotStore, history *replayHistory) {
	byCompetition := make(map[string][]*models.Match)
	for _, m := range day.matches {
		byCompetition[m.CompetitionID] = append(byCompetition[m.CompetitionID], m)
		history.all = append(history.all, m)
	}

	for competitionID, matches := range byCompetition {
		teams, _ := snapshots.AsOf(competitionID, day.date)
		for _, m := range matches {
			home := teamOrZero(teams, m.HomeTeam)
			teams[m.HomeTeam] = home
			stats.Apply(home, m)

			away := teamOrZero(teams, m.AwayTeam)
			teams[m.AwayTeam] = away
			stats.Apply(away, m)
		}

		history.perCompetition[competitionID] = append(history.perCompetition[competitionID], matches...)
		league := stats.ComputeLeagueAverages(competitionID, history.perCompetition[competitionID])
		snapshots.Commit(competitionID, day.date, teams, league)
	}

	history.global = stats.ComputeLeagueAverages("", history.all)
}

// trainClassifier runs the training step on its own goroutine so a large
// sample set never blocks cancellation. Too few samples is a skip, not a
// failure; anything else aborts the run.
func (o *Orchestrator) trainClassifier(ctx context.Context, state *runState) (models.ClassifierSummary, error) {
	o.setPhase(PhaseTrainingClassifier, time.Time{})
	summary := models.ClassifierSummary{Samples: len(state.samples)}

	type outcome struct {
		ensemble *classifier.Ensemble
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		ensemble, err := classifier.Train(state.samples, o.config.Classifier)
		done <- outcome{ensemble: ensemble, err: err}
	}()

	select {
	case <-ctx.Done():
		return summary, fmt.Errorf("classifier training cancelled: %w", ctx.Err())
	case out := <-done:
		if errors.Is(out.err, classifier.ErrTooFewSamples) {
			summary.SkipReason = out.err.Error()
			o.logger.WithField("samples", len(state.samples)).Info("Skipping classifier training, not enough labeled samples")
			return summary, nil
		}
		if out.err != nil {
			return summary, fmt.Errorf("classifier training failed: %w", out.err)
		}

		summary.Trained = true
		summary.TrainAccuracy = out.ensemble.TrainAccuracy
		if o.config.ModelPath != "" {
			if err := classifier.Save(out.ensemble, o.config.ModelPath); err != nil {
				return summary, fmt.Errorf("failed to persist classifier: %w", err)
			}
			summary.ModelPath = o.config.ModelPath
		}
		o.logger.WithFields(logrus.Fields{
			"samples":        summary.Samples,
			"train_accuracy": summary.TrainAccuracy,
			"model_path":     summary.ModelPath,
		}).Info("Classifier trained")
		return summary, nil
	}
}

// finalize fills the end-of-run snapshot fields. It also runs on the abort
// path so partial results carry whatever was computed.
func (o *Orchestrator) finalize(state *runState, snapshots *SnapshotStore) {
	for _, competitionID := range snapshots.Competitions() {
		teams, _ := snapshots.Latest(competitionID)
		for name, ts := range teams {
			state.result.FinalStats[name] = ts
		}
	}
	state.result.FinishedAt = time.Now().UTC()
}

func (o *Orchestrator) recordRun(ctx context.Context, state *runState) {
	if o.recorder == nil {
		return
	}
	record, err := models.NewTrainingRunRecord(state.result)
	if err != nil {
		o.logger.WithError(err).Warn("Failed to encode training run")
		return
	}
	if err := o.recorder.RecordTrainingRun(ctx, record); err != nil {
		o.logger.WithError(err).Warn("Failed to persist training run")
	}
}

func (o *Orchestrator) abort(state *runState, snapshots *SnapshotStore, err error) (*models.TrainingResult, error) {
	o.finalize(state, snapshots)
	o.fail(err)
	return state.result, err
}

func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return fmt.Errorf("a backtest is already in progress")
	}
	o.running = true
	o.progress = Progress{Status: StatusInProgress, Phase: PhaseFetching, UpdatedAt: time.Now().UTC()}
	return nil
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.running = false
}

func (o *Orchestrator) setPhase(phase Phase, day time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress.Phase = phase
	if !day.IsZero() {
		o.progress.Day = day
	}
	o.progress.UpdatedAt = time.Now().UTC()
}

func (o *Orchestrator) setDaysTotal(total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress.DaysTotal = total
	o.progress.UpdatedAt = time.Now().UTC()
}

func (o *Orchestrator) markDayDone() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress.DaysDone++
	o.progress.UpdatedAt = time.Now().UTC()
}

func (o *Orchestrator) complete() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress.Status = StatusCompleted
	o.progress.Phase = PhaseCompleted
	o.progress.UpdatedAt = time.Now().UTC()
}

func (o *Orchestrator) fail(err error) {
	o.logger.WithError(err).Error("Backtest run failed")
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progress.Status = StatusError
	o.progress.Phase = PhaseError
	o.progress.Message = err.Error()
	o.progress.UpdatedAt = time.Now().UTC()
}

type replayDay struct {
	date    time.Time
	matches []*models.Match
}

type replayHistory struct {
	perCompetition map[string][]*models.Match
	all            []*models.Match
	global         *models.LeagueAverages
}

func newReplayHistory() *replayHistory {
	return &replayHistory{perCompetition: make(map[string][]*models.Match)}
}

// groupByDay sorts matches chronologically and buckets them by calendar
// date.
func groupByDay(matches []*models.Match) []replayDay {
	sorted := make([]*models.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].KickoffTime.Before(sorted[j].KickoffTime)
	})

	var days []replayDay
	for _, m := range sorted {
		date := m.Day()
		if len(days) == 0 || !days[len(days)-1].date.Equal(date) {
			days = append(days, replayDay{date: date})
		}
		days[len(days)-1].matches = append(days[len(days)-1].matches, m)
	}
	return days
}

func teamOrZero(teams map[string]*models.TeamStatistics, name string) *models.TeamStatistics {
	if ts, ok := teams[name]; ok {
		return ts
	}
	return &models.TeamStatistics{TeamName: name}
}
