package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-better/internal/service"
)

// Scheduler manages the engine's recurring jobs: result ingestion with pick
// settlement, pick generation over the upcoming window, and model retraining.
type Scheduler struct {
	cron            *cron.Cron
	ingestionSvc    *service.IngestionService
	pickSvc         *service.PickService
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(ingestionSvc *service.IngestionService, pickSvc *service.PickService, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		ingestionSvc:    ingestionSvc,
		pickSvc:         pickSvc,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleIngestion schedules the result sync and settlement cycle
func (s *Scheduler) ScheduleIngestion(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		s.logger.Info("Starting scheduled ingestion cycle")
		if err := s.ingestionSvc.RunCycle(ctx); err != nil {
			s.logger.WithError(err).Error("Scheduled ingestion cycle failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"metrics": s.ingestionSvc.GetMetrics().String(),
		}).Info("Scheduled ingestion cycle completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron": cronExpression,
	}).Info("Scheduled ingestion job")

	return nil
}

// SchedulePicks schedules pick generation over the upcoming fixture window
func (s *Scheduler) SchedulePicks(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		s.logger.Info("Starting scheduled pick generation")
		summary, err := s.pickSvc.GenerateUpcomingPicks(ctx)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled pick generation failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"fixtures":    summary.Fixtures,
			"predictions": summary.Predictions,
			"candidates":  summary.Candidates,
			"approved":    summary.Approved,
			"duration":    summary.Duration.String(),
		}).Info("Scheduled pick generation completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron": cronExpression,
	}).Info("Scheduled pick generation job")

	return nil
}

// ScheduleRetrain schedules a long-running training job. The job body is
// injected so wiring against the backtest orchestrator stays in cmd.
func (s *Scheduler) ScheduleRetrain(cronExpression string, job func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Hour)
		defer cancel()

		s.logger.Info("Starting scheduled retraining")
		if err := job(ctx); err != nil {
			s.logger.WithError(err).Error("Scheduled retraining failed")
			return
		}
		s.logger.Info("Scheduled retraining completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron": cronExpression,
	}).Info("Scheduled retraining job")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithFields(logrus.Fields{
		"jobs": len(s.jobIDs),
	}).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler, waiting up to the graceful timeout for running
// jobs to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
	case <-time.After(s.gracefulTimeout):
		s.logger.Warn("Scheduler stop timed out with jobs still running")
	}
	s.isRunning = false

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
