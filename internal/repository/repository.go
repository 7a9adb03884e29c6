package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/footy-better/internal/database"
	"github.com/yourusername/footy-better/internal/models"
)

// Repositories holds all repository implementations
type Repositories struct {
	Match       MatchRepository
	Pick        PickRepository
	TrainingRun TrainingRunRepository
	Adjustment  AdjustmentRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Match:       NewPostgresMatchRepository(db),
		Pick:        NewPostgresPickRepository(db),
		TrainingRun: NewPostgresTrainingRunRepository(db),
		Adjustment:  NewPostgresAdjustmentRepository(db),
	}, nil
}

// RecordPicks delegates to the pick repository, letting Repositories act as
// a single recorder for backtest runs.
func (r *Repositories) RecordPicks(ctx context.Context, picks []*models.PickRecord) error {
	return r.Pick.RecordPicks(ctx, picks)
}

// RecordTrainingRun delegates to the training run repository.
func (r *Repositories) RecordTrainingRun(ctx context.Context, run *models.TrainingRunRecord) error {
	return r.TrainingRun.RecordTrainingRun(ctx, run)
}
