package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-better/internal/datasource"
	"github.com/yourusername/footy-better/internal/logger"
	"github.com/yourusername/footy-better/internal/markets"
	"github.com/yourusername/footy-better/internal/metrics"
	"github.com/yourusername/footy-better/internal/models"
	"github.com/yourusername/footy-better/internal/predictor"
	"github.com/yourusername/footy-better/internal/repository"
	"github.com/yourusername/footy-better/internal/risk"
	"github.com/yourusername/footy-better/internal/stats"
)

// defaultHistoryDays covers the current and most of the previous season
// when computing team statistics for live predictions.
const defaultHistoryDays = 540

// PickConfig holds the scheduling knobs of the live pick pipeline. Model
// and staking parameters live on the injected predictor, generator, and
// risk manager.
type PickConfig struct {
	Competitions []string
	UpcomingDays int
	HistoryDays  int
	MinMatches   int
	CacheTTL     time.Duration
	CacheSize    int
}

// PickRunSummary reports one pipeline run.
type PickRunSummary struct {
	Fixtures    int
	Predictions int
	Skipped     int
	Candidates  int
	Approved    int
	Errors      int
	Duration    time.Duration
	Picks       []*models.SuggestedPick
}

// PickService runs the live pick pipeline: refresh the upcoming fixture
// window, compute team statistics from stored history, predict each match,
// expand predictions into market picks, apply portfolio limits per betting
// day, and persist what survives.
type PickService struct {
	cfg          PickConfig
	source       datasource.FixtureSource
	oddsFeed     datasource.OddsSnapshotter
	matchRepo    repository.MatchRepository
	pickRepo     repository.PickRepository
	trainingRepo repository.TrainingRunRepository
	predictor    *predictor.Predictor
	generator    *markets.Generator
	risk         *risk.Manager
	cache        *PredictionCache
	engineLog    *logger.EngineLogger
	audit        *logger.AuditLogger
	logger       *logrus.Logger
}

// NewPickService creates a new pick service. The odds snapshotter is
// optional; when present its prices take precedence over the synced book.
func NewPickService(
	cfg PickConfig,
	source datasource.FixtureSource,
	oddsFeed datasource.OddsSnapshotter,
	repos *repository.Repositories,
	pred *predictor.Predictor,
	generator *markets.Generator,
	riskManager *risk.Manager,
	log *logrus.Logger,
) *PickService {
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = defaultHistoryDays
	}
	return &PickService{
		cfg:          cfg,
		source:       source,
		oddsFeed:     oddsFeed,
		matchRepo:    repos.Match,
		pickRepo:     repos.Pick,
		trainingRepo: repos.TrainingRun,
		predictor:    pred,
		generator:    generator,
		risk:         riskManager,
		cache:        NewPredictionCache(cfg.CacheTTL, cfg.CacheSize),
		engineLog:    logger.NewEngineLogger(log),
		audit:        logger.NewAuditLogger(log),
		logger:       log,
	}
}

// GenerateUpcomingPicks runs the pipeline over every configured competition
// and returns a summary of what it produced. Fixtures that already carry an
// open pick are left alone, so repeated runs do not double up.
func (s *PickService) GenerateUpcomingPicks(ctx context.Context) (*PickRunSummary, error) {
	start := time.Now()
	now := start.UTC()
	horizon := now.AddDate(0, 0, s.cfg.UpcomingDays)
	summary := &PickRunSummary{}

	type competitionData struct {
		id       string
		upcoming []*models.Match
		history  []*models.Match
	}

	var competitions []*competitionData
	var allHistory []*models.Match
	failed := 0
	for _, competitionID := range s.cfg.Competitions {
		upcoming, err := s.source.Matches(ctx, competitionID, now, horizon, false)
		if err != nil {
			failed++
			summary.Errors++
			s.logger.WithError(err).WithFields(logrus.Fields{
				"competition_id": competitionID,
			}).Warn("Failed to fetch upcoming fixtures")
			continue
		}
		if len(upcoming) == 0 {
			continue
		}

		// Persist the window so odds and schedule changes survive restarts.
		// A storage failure is not fatal to pick generation itself.
		if err := s.matchRepo.UpsertBatch(ctx, upcoming); err != nil {
			summary.Errors++
			s.logger.WithError(err).WithFields(logrus.Fields{
				"competition_id": competitionID,
			}).Warn("Failed to persist upcoming fixtures")
		} else if stored, err := s.matchRepo.GetUpcoming(ctx, competitionID, now, horizon); err != nil {
			summary.Errors++
			s.logger.WithError(err).WithFields(logrus.Fields{
				"competition_id": competitionID,
			}).Warn("Failed to reload stored fixtures, predicting from feed prices")
		} else if len(stored) > 0 {
			// Predict from the stored rows: they carry the opening prices
			// the feed does not quote, and a book the feed dropped this
			// cycle survives from earlier syncs.
			upcoming = stored
		}

		history, err := s.matchRepo.GetPlayedByCompetition(ctx, competitionID, now.AddDate(0, 0, -s.cfg.HistoryDays), now)
		if err != nil {
			failed++
			summary.Errors++
			s.logger.WithError(err).WithFields(logrus.Fields{
				"competition_id": competitionID,
			}).Warn("Failed to load match history")
			continue
		}

		competitions = append(competitions, &competitionData{id: competitionID, upcoming: upcoming, history: history})
		allHistory = append(allHistory, history...)
	}

	if len(s.cfg.Competitions) > 0 && failed == len(s.cfg.Competitions) {
		return summary, fmt.Errorf("pick pipeline failed for all %d competitions", len(s.cfg.Competitions))
	}

	warmStats := s.loadWarmStats(ctx)
	globalAverages := stats.ComputeLeagueAverages("", allHistory)

	alreadyPicked, err := s.pendingMatchSet(ctx)
	if err != nil {
		summary.Errors++
		s.logger.WithError(err).Warn("Failed to load pending picks, reruns may duplicate")
		alreadyPicked = map[uuid.UUID]bool{}
	}

	candidatesByDay := make(map[string][]*models.SuggestedPick)
	for _, comp := range competitions {
		league := stats.ComputeLeagueAverages(comp.id, comp.history)
		teamStats := make(map[string]*models.TeamStatistics)

		for _, match := range comp.upcoming {
			if alreadyPicked[match.ID] {
				continue
			}
			summary.Fixtures++

			if s.oddsFeed != nil {
				if snap, ok := s.oddsFeed.Snapshot(match.ID); ok {
					match.Odds = overlayStreamedOdds(snap, match.Odds)
				}
			}

			home := s.teamStatistics(teamStats, comp.history, warmStats, match.HomeTeam)
			away := s.teamStatistics(teamStats, comp.history, warmStats, match.AwayTeam)

			pred := s.predictMatch(match, home, away, league, globalAverages, now, summary)
			if pred == nil {
				continue
			}
			summary.Predictions++

			picks := s.generator.GeneratePicks(match, home, away, league, pred)
			for _, pick := range picks {
				metrics.RecordPickGenerated(pick.Market.Key())
				s.engineLog.LogPickGenerated(pick.ID.String(), match.ID.String(), pick.Market.Key(), pick.Label,
					pick.Probability, pick.Odds, string(pick.OddsSource), pick.ExpectedValue, pick.Recommended)
				if !pick.Recommended {
					continue
				}
				metrics.RecordPickRecommended()
				day := match.KickoffTime.UTC().Format("2006-01-02")
				candidatesByDay[day] = append(candidatesByDay[day], pick)
				summary.Candidates++
			}
		}
	}

	days := make([]string, 0, len(candidatesByDay))
	for day := range candidatesByDay {
		days = append(days, day)
	}
	sort.Strings(days)

	for _, day := range days {
		approved := s.risk.ApplyPortfolioConstraints(candidatesByDay[day])
		riskMetrics := s.risk.Metrics()
		metrics.UpdateDayExposure(riskMetrics.DayExposure)
		s.audit.LogPortfolioDecision(day, riskMetrics.Candidates, riskMetrics.Approved,
			riskMetrics.Trimmed, riskMetrics.Dropped, riskMetrics.DayExposure)
		if len(approved) == 0 {
			continue
		}

		records := make([]*models.PickRecord, 0, len(approved))
		for _, pick := range approved {
			records = append(records, models.NewPickRecord(pick, nil))
		}
		if err := s.pickRepo.RecordPicks(ctx, records); err != nil {
			summary.Errors++
			s.logger.WithError(err).WithFields(logrus.Fields{
				"day":   day,
				"picks": len(records),
			}).Error("Failed to persist approved picks")
			continue
		}

		for _, pick := range approved {
			s.audit.LogPickRecorded(pick.ID.String(), pick.MatchID.String(), pick.Market.Key(), pick.Label,
				pick.StakeUnits, pick.Odds, pick.Probability, pick.CreatedAt)
			metrics.RecordPickConfidence(pick.Confidence)
		}
		summary.Approved += len(approved)
		summary.Picks = append(summary.Picks, approved...)
	}

	summary.Duration = time.Since(start)
	s.engineLog.LogPipelineRun(strings.Join(s.cfg.Competitions, ","),
		summary.Fixtures, summary.Predictions, summary.Candidates, summary.Approved,
		float64(summary.Duration.Milliseconds()))

	return summary, nil
}

// overlayStreamedOdds replaces the stored book with the latest streamed
// prices. Opening prices never arrive on the stream, so the stored ones are
// kept and drift stays measured against the first observation.
func overlayStreamedOdds(snap, stored *models.MatchOdds) *models.MatchOdds {
	merged := *snap
	if stored != nil {
		if merged.OpeningHome == nil {
			merged.OpeningHome = stored.OpeningHome
		}
		if merged.OpeningDraw == nil {
			merged.OpeningDraw = stored.OpeningDraw
		}
		if merged.OpeningAway == nil {
			merged.OpeningAway = stored.OpeningAway
		}
	}
	return &merged
}

// predictMatch returns the model output for one fixture, consulting the
// prediction cache first. A nil return means the fixture was skipped.
func (s *PickService) predictMatch(match *models.Match, home, away *models.TeamStatistics,
	league, global *models.LeagueAverages, statsDay time.Time, summary *PickRunSummary) *models.Prediction {

	key := NewPredictionCacheKey(match, statsDay)
	if cached := s.cache.Get(key); cached != nil {
		return cached
	}

	predStart := time.Now()
	pred, err := s.predictor.Predict(match, home, away, league, global)
	if err != nil {
		summary.Skipped++
		reason := "model_error"
		if errors.Is(err, models.ErrInsufficientData) {
			reason = "insufficient_data"
		} else {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"match_id": match.ID,
			}).Warn("Prediction failed")
		}
		metrics.RecordPredictionSkipped(reason)
		s.engineLog.LogPredictionSkipped(match.ID.String(), match.HomeTeam, match.AwayTeam, reason)
		return nil
	}

	elapsed := time.Since(predStart)
	metrics.RecordPrediction(elapsed.Seconds())
	s.engineLog.LogPrediction(match.ID.String(), match.HomeTeam, match.AwayTeam,
		pred.HomeWin, pred.Draw, pred.AwayWin, pred.Confidence, elapsed.Seconds()*1000)
	s.cache.Set(key, pred)
	return pred
}

// teamStatistics computes a team's rolling statistics from stored history,
// memoized per competition. When the stored window is too thin to predict
// from, the snapshot persisted with the last training run stands in.
func (s *PickService) teamStatistics(cache map[string]*models.TeamStatistics, history []*models.Match,
	warm map[string]*models.TeamStatistics, team string) *models.TeamStatistics {

	if ts, ok := cache[team]; ok {
		return ts
	}
	ts := stats.ComputeTeamStatistics(team, history)
	if ts.MatchesPlayed < s.cfg.MinMatches {
		if snap, ok := warm[team]; ok && snap.MatchesPlayed > ts.MatchesPlayed {
			ts = snap
		}
	}
	cache[team] = ts
	return ts
}

// loadWarmStats recovers the per-team statistics snapshot stored with the
// most recent training run. Nil when no run exists or the artifact cannot
// be decoded.
func (s *PickService) loadWarmStats(ctx context.Context) map[string]*models.TeamStatistics {
	run, err := s.trainingRepo.GetLatest(ctx)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.WithError(err).Warn("Failed to load last training run")
		}
		return nil
	}
	var result models.TrainingResult
	if err := json.Unmarshal(run.FullResult, &result); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"run_id": run.ID,
		}).Warn("Failed to decode stored training result")
		return nil
	}
	return result.FinalStats
}

// pendingMatchSet lists fixtures that already carry an open pick.
func (s *PickService) pendingMatchSet(ctx context.Context) (map[uuid.UUID]bool, error) {
	pending, err := s.pickRepo.GetPending(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(pending))
	for _, record := range pending {
		set[record.MatchID] = true
	}
	return set, nil
}

// CacheStats exposes prediction cache hit counts for health reporting.
func (s *PickService) CacheStats() (hits, misses uint64) {
	return s.cache.Stats()
}
