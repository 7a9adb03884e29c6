// Package repository provides PostgreSQL persistence for matches, picks,
// and training runs.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/footy-better/internal/models"
)

// MatchRepository defines the interface for fixture data access
type MatchRepository interface {
	Upsert(ctx context.Context, match *models.Match) error
	UpsertBatch(ctx context.Context, matches []*models.Match) error
	UpsertOdds(ctx context.Context, matchID uuid.UUID, odds *models.MatchOdds) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	GetPlayedByCompetition(ctx context.Context, competitionID string, from, to time.Time) ([]*models.Match, error)
	GetUpcoming(ctx context.Context, competitionID string, from, to time.Time) ([]*models.Match, error)
}

// PickRepository defines the interface for pick data access
type PickRepository interface {
	RecordPicks(ctx context.Context, picks []*models.PickRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PickRecord, error)
	GetPending(ctx context.Context) ([]*models.PickRecord, error)
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.PickRecord, error)
	UpdateResolution(ctx context.Context, id uuid.UUID, result string, payout float64, settledAt time.Time) error
}

// TrainingRunRepository defines the interface for backtest run data access
type TrainingRunRepository interface {
	RecordTrainingRun(ctx context.Context, run *models.TrainingRunRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TrainingRunRecord, error)
	GetLatest(ctx context.Context) (*models.TrainingRunRecord, error)
}

// AdjustmentRepository computes per-market efficiency multipliers from the
// settled pick ledger
type AdjustmentRepository interface {
	GetAdjustments(ctx context.Context) (map[string]float64, error)
	GetMarketEfficiency(ctx context.Context, since time.Time) (map[string]*models.MarketEfficiency, error)
}
