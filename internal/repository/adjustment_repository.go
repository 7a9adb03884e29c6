package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/footy-better/internal/adjust"
	"github.com/yourusername/footy-better/internal/database"
	"github.com/yourusername/footy-better/internal/models"
)

// feedbackWindowDays bounds how far back settled picks feed the multiplier
// table.
const feedbackWindowDays = 90

// PostgresAdjustmentRepository implements AdjustmentRepository for PostgreSQL
type PostgresAdjustmentRepository struct {
	db *database.DB
}

// NewPostgresAdjustmentRepository creates a new adjustment repository
func NewPostgresAdjustmentRepository(db *database.DB) AdjustmentRepository {
	return &PostgresAdjustmentRepository{db: db}
}

// GetAdjustments derives the per-market multiplier table from recent
// settled picks.
func (r *PostgresAdjustmentRepository) GetAdjustments(ctx context.Context) (map[string]float64, error) {
	since := time.Now().UTC().AddDate(0, 0, -feedbackWindowDays)

	efficiency, err := r.GetMarketEfficiency(ctx, since)
	if err != nil {
		return nil, err
	}

	return adjust.FromEfficiency(efficiency), nil
}

// GetMarketEfficiency aggregates realized performance per market key over
// staked picks settled since the given time.
func (r *PostgresAdjustmentRepository) GetMarketEfficiency(ctx context.Context, since time.Time) (map[string]*models.MarketEfficiency, error) {
	query := `
		SELECT
			market_key,
			COUNT(*) AS bets,
			COUNT(*) FILTER (WHERE result = 'WIN') AS wins,
			COUNT(*) FILTER (WHERE result = 'VOID') AS voids,
			COALESCE(SUM(stake_units), 0) AS staked,
			COALESCE(SUM(stake_units * payout), 0) AS returned
		FROM picks
		WHERE settled_at IS NOT NULL
			AND settled_at >= $1
			AND result IN ('WIN', 'LOSS', 'VOID')
			AND stake_units > 0
		GROUP BY market_key
	`

	rows, err := r.db.Pool().Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query market efficiency: %w", err)
	}
	defer rows.Close()

	efficiency := make(map[string]*models.MarketEfficiency)
	for rows.Next() {
		e := &models.MarketEfficiency{}
		if err := rows.Scan(&e.MarketKey, &e.Bets, &e.Wins, &e.Voids, &e.Staked, &e.Returned); err != nil {
			return nil, fmt.Errorf("failed to scan market efficiency: %w", err)
		}
		efficiency[e.MarketKey] = e
	}

	return efficiency, rows.Err()
}
