package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/footy-better/internal/database"
	"github.com/yourusername/footy-better/internal/models"
)

// PostgresTrainingRunRepository implements TrainingRunRepository for PostgreSQL
type PostgresTrainingRunRepository struct {
	db *database.DB
}

// NewPostgresTrainingRunRepository creates a new training run repository
func NewPostgresTrainingRunRepository(db *database.DB) TrainingRunRepository {
	return &PostgresTrainingRunRepository{db: db}
}

const trainingRunColumns = `
	id, competition_ids, start_day, end_day, matches_processed, bet_count,
	accuracy, roi, profit_units, full_result, created_at`

// RecordTrainingRun persists a completed backtest run
func (r *PostgresTrainingRunRepository) RecordTrainingRun(ctx context.Context, run *models.TrainingRunRecord) error {
	query := `
		INSERT INTO training_runs (` + trainingRunColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		run.ID, run.CompetitionIDs, run.StartDay, run.EndDay, run.MatchesProcessed,
		run.BetCount, run.Accuracy, run.ROI, run.ProfitUnits, run.FullResult, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record training run: %w", err)
	}

	return nil
}

// GetByID retrieves a training run by ID
func (r *PostgresTrainingRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TrainingRunRecord, error) {
	query := `SELECT ` + trainingRunColumns + ` FROM training_runs WHERE id = $1`

	run, err := scanTrainingRun(r.db.Pool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: training run %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get training run: %w", err)
	}

	return run, nil
}

// GetLatest retrieves the most recent training run
func (r *PostgresTrainingRunRepository) GetLatest(ctx context.Context) (*models.TrainingRunRecord, error) {
	query := `
		SELECT ` + trainingRunColumns + `
		FROM training_runs
		ORDER BY created_at DESC
		LIMIT 1
	`

	run, err := scanTrainingRun(r.db.Pool().QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: no training runs recorded", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest training run: %w", err)
	}

	return run, nil
}

func scanTrainingRun(row pgx.Row) (*models.TrainingRunRecord, error) {
	run := &models.TrainingRunRecord{}
	err := row.Scan(
		&run.ID, &run.CompetitionIDs, &run.StartDay, &run.EndDay, &run.MatchesProcessed,
		&run.BetCount, &run.Accuracy, &run.ROI, &run.ProfitUnits, &run.FullResult, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}
