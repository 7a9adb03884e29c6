package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/footy-better/internal/database"
	"github.com/yourusername/footy-better/internal/models"
)

// PostgresPickRepository implements PickRepository for PostgreSQL
type PostgresPickRepository struct {
	db *database.DB
}

// NewPostgresPickRepository creates a new pick repository
func NewPostgresPickRepository(db *database.DB) PickRepository {
	return &PostgresPickRepository{db: db}
}

const pickColumns = `
	id, run_id, match_id, competition_id, market_key, label, probability, confidence,
	tier, risk_level, odds, odds_source, expected_value, stake_fraction, stake_units,
	recommended, rationale, result, payout, created_at, settled_at`

// RecordPicks bulk-inserts a batch of pick records
func (r *PostgresPickRepository) RecordPicks(ctx context.Context, picks []*models.PickRecord) error {
	if len(picks) == 0 {
		return nil
	}

	columns := []string{
		"id", "run_id", "match_id", "competition_id", "market_key", "label", "probability", "confidence",
		"tier", "risk_level", "odds", "odds_source", "expected_value", "stake_fraction", "stake_units",
		"recommended", "rationale", "result", "payout", "created_at", "settled_at",
	}

	copyFromSource := make([][]interface{}, len(picks))
	for i, p := range picks {
		copyFromSource[i] = []interface{}{
			p.ID, p.RunID, p.MatchID, p.CompetitionID, p.MarketKey, p.Label, p.Probability, p.Confidence,
			p.Tier, p.RiskLevel, p.Odds, p.OddsSource, p.ExpectedValue, p.StakeFraction, p.StakeUnits,
			p.Recommended, p.Rationale, p.Result, p.Payout, p.CreatedAt, p.SettledAt,
		}
	}

	count, err := r.db.Pool().CopyFrom(ctx, pgx.Identifier{"picks"}, columns, pgx.CopyFromRows(copyFromSource))
	if err != nil {
		return fmt.Errorf("failed to batch insert picks: %w", err)
	}

	if count != int64(len(picks)) {
		return fmt.Errorf("inserted %d picks, expected %d", count, len(picks))
	}

	return nil
}

// GetByID retrieves a pick record by ID
func (r *PostgresPickRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PickRecord, error) {
	query := `SELECT ` + pickColumns + ` FROM picks WHERE id = $1`

	pick, err := scanPick(r.db.Pool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: pick %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pick: %w", err)
	}

	return pick, nil
}

// GetPending retrieves picks that have not been settled yet, oldest first
func (r *PostgresPickRepository) GetPending(ctx context.Context) ([]*models.PickRecord, error) {
	query := `
		SELECT ` + pickColumns + `
		FROM picks
		WHERE result = $1
		ORDER BY created_at ASC
	`

	return r.queryPicks(ctx, query, string(models.PickPending))
}

// GetByRunID retrieves every pick produced by a backtest run
func (r *PostgresPickRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.PickRecord, error) {
	query := `
		SELECT ` + pickColumns + `
		FROM picks
		WHERE run_id = $1
		ORDER BY created_at ASC
	`

	return r.queryPicks(ctx, query, runID)
}

// UpdateResolution settles a pick with its result and payout
func (r *PostgresPickRepository) UpdateResolution(ctx context.Context, id uuid.UUID, result string, payout float64, settledAt time.Time) error {
	query := `
		UPDATE picks
		SET result = $2, payout = $3, settled_at = $4
		WHERE id = $1
	`

	tag, err := r.db.Pool().Exec(ctx, query, id, result, payout, settledAt)
	if err != nil {
		return fmt.Errorf("failed to update pick resolution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: pick %s", models.ErrNotFound, id)
	}

	return nil
}

func (r *PostgresPickRepository) queryPicks(ctx context.Context, query string, args ...interface{}) ([]*models.PickRecord, error) {
	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query picks: %w", err)
	}
	defer rows.Close()

	var picks []*models.PickRecord
	for rows.Next() {
		pick, err := scanPick(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		picks = append(picks, pick)
	}

	return picks, rows.Err()
}

func scanPick(row pgx.Row) (*models.PickRecord, error) {
	pick := &models.PickRecord{}
	err := row.Scan(
		&pick.ID, &pick.RunID, &pick.MatchID, &pick.CompetitionID, &pick.MarketKey, &pick.Label,
		&pick.Probability, &pick.Confidence, &pick.Tier, &pick.RiskLevel, &pick.Odds, &pick.OddsSource,
		&pick.ExpectedValue, &pick.StakeFraction, &pick.StakeUnits, &pick.Recommended, &pick.Rationale,
		&pick.Result, &pick.Payout, &pick.CreatedAt, &pick.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	return pick, nil
}
