package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-better/internal/datasource"
	"github.com/yourusername/footy-better/internal/logger"
	"github.com/yourusername/footy-better/internal/markets"
	"github.com/yourusername/footy-better/internal/metrics"
	"github.com/yourusername/footy-better/internal/models"
	"github.com/yourusername/footy-better/internal/repository"
)

// resultsLookbackDays bounds the result-sync fetch window. Postponed
// fixtures and late stat corrections land within days, not weeks.
const resultsLookbackDays = 10

// IngestionService keeps stored fixtures current and settles pending picks
// against finished matches.
type IngestionService struct {
	competitions []string
	source       datasource.FixtureSource
	matchRepo    repository.MatchRepository
	pickRepo     repository.PickRepository
	validator    *MatchValidator
	metrics      *IngestionMetrics
	audit        *logger.AuditLogger
	logger       *logrus.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	competitions []string,
	source datasource.FixtureSource,
	matchRepo repository.MatchRepository,
	pickRepo repository.PickRepository,
	log *logrus.Logger,
) *IngestionService {
	return &IngestionService{
		competitions: competitions,
		source:       source,
		matchRepo:    matchRepo,
		pickRepo:     pickRepo,
		validator:    NewMatchValidator(log),
		metrics:      NewIngestionMetrics(),
		audit:        logger.NewAuditLogger(log),
		logger:       log,
	}
}

// SyncResults refreshes recently played fixtures from the upstream feed so
// stored matches carry final scores and supplementary counts.
func (s *IngestionService) SyncResults(ctx context.Context) (*IngestionMetrics, error) {
	s.metrics.Reset()
	start := time.Now()

	from := start.UTC().AddDate(0, 0, -resultsLookbackDays)
	to := start.UTC().Add(24 * time.Hour)

	s.logger.WithFields(logrus.Fields{
		"from":         from.Format("2006-01-02"),
		"to":           to.Format("2006-01-02"),
		"competitions": len(s.competitions),
	}).Info("Starting results sync")

	failed := 0
	for _, competitionID := range s.competitions {
		matches, err := s.source.Matches(ctx, competitionID, from, to, true)
		if err != nil {
			failed++
			s.metrics.RecordError()
			s.logger.WithError(err).WithFields(logrus.Fields{
				"competition_id": competitionID,
			}).Warn("Failed to fetch results window")
			continue
		}
		s.metrics.RecordFetched(len(matches))

		valid := make([]*models.Match, 0, len(matches))
		for _, match := range matches {
			if problems := s.validator.ValidateMatch(match); len(problems) > 0 {
				s.metrics.RecordValidationError()
				s.logger.WithFields(logrus.Fields{
					"match_id":  match.ID,
					"home_team": match.HomeTeam,
					"away_team": match.AwayTeam,
					"problems":  problems,
				}).Warn("Skipping fixture that failed validation")
				continue
			}
			valid = append(valid, match)
			if match.IsPlayed() {
				s.metrics.RecordCompleted()
			}
		}

		if len(valid) == 0 {
			continue
		}

		if err := s.matchRepo.UpsertBatch(ctx, valid); err != nil {
			failed++
			s.metrics.RecordError()
			s.logger.WithError(err).WithFields(logrus.Fields{
				"competition_id": competitionID,
				"batch_size":     len(valid),
			}).Error("Failed to persist results batch")
			continue
		}
		s.metrics.RecordUpserted(len(valid))
	}

	s.metrics.SetDuration(time.Since(start))

	if len(s.competitions) > 0 && failed == len(s.competitions) {
		return s.metrics, fmt.Errorf("results sync failed for all %d competitions", len(s.competitions))
	}

	s.logger.WithFields(logrus.Fields{
		"fetched":           s.metrics.TotalFetched,
		"upserted":          s.metrics.UpsertedMatches,
		"completed":         s.metrics.CompletedMatches,
		"validation_errors": s.metrics.ValidationErrors,
		"duration":          s.metrics.Duration.String(),
	}).Info("Results sync complete")

	return s.metrics, nil
}

// ResolvePendingPicks settles pending picks whose fixtures have finished.
// Picks on unplayed fixtures stay pending; picks on played fixtures always
// settle, as UNKNOWN when the market cannot be decided from stored counts.
func (s *IngestionService) ResolvePendingPicks(ctx context.Context) (int, error) {
	pending, err := s.pickRepo.GetPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending picks: %w", err)
	}
	if len(pending) == 0 {
		metrics.UpdatePendingPicks(0)
		return 0, nil
	}

	matchCache := make(map[uuid.UUID]*models.Match)
	resolved := 0
	remaining := 0

	for _, record := range pending {
		match, ok := matchCache[record.MatchID]
		if !ok {
			match, err = s.matchRepo.GetByID(ctx, record.MatchID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					remaining++
					s.logger.WithFields(logrus.Fields{
						"pick_id":  record.ID,
						"match_id": record.MatchID,
					}).Warn("Pending pick references missing fixture")
					continue
				}
				return resolved, fmt.Errorf("failed to load fixture for pick %s: %w", record.ID, err)
			}
			matchCache[record.MatchID] = match
		}

		if !match.IsPlayed() {
			remaining++
			continue
		}

		result := models.PickUnknown
		payout := 0.0
		if pick, convErr := record.ToPick(); convErr != nil {
			s.logger.WithError(convErr).WithFields(logrus.Fields{
				"pick_id":    record.ID,
				"market_key": record.MarketKey,
			}).Warn("Settling unparseable pick as unknown")
		} else {
			result, payout = markets.Resolve(pick, match)
		}

		if err := s.pickRepo.UpdateResolution(ctx, record.ID, string(result), payout, time.Now().UTC()); err != nil {
			remaining++
			s.metrics.RecordError()
			s.logger.WithError(err).WithFields(logrus.Fields{
				"pick_id": record.ID,
			}).Error("Failed to persist pick resolution")
			continue
		}

		s.audit.LogPickResolved(record.ID.String(), record.MatchID.String(), string(result), payout)
		metrics.RecordPickResolved(string(result))
		s.metrics.RecordResolved()
		resolved++
	}

	metrics.UpdatePendingPicks(float64(remaining))

	if resolved > 0 {
		s.logger.WithFields(logrus.Fields{
			"resolved":  resolved,
			"remaining": remaining,
		}).Info("Settled pending picks")
	}

	return resolved, nil
}

// RunCycle performs one full ingestion pass: refresh results, then settle
// whatever those results decide.
func (s *IngestionService) RunCycle(ctx context.Context) error {
	if _, err := s.SyncResults(ctx); err != nil {
		return err
	}
	_, err := s.ResolvePendingPicks(ctx)
	return err
}

// GetMetrics returns current ingestion metrics
func (s *IngestionService) GetMetrics() *IngestionMetrics {
	return s.metrics
}
