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

// PostgresMatchRepository implements MatchRepository for PostgreSQL
type PostgresMatchRepository struct {
	db *database.DB
}

// NewPostgresMatchRepository creates a new match repository
func NewPostgresMatchRepository(db *database.DB) MatchRepository {
	return &PostgresMatchRepository{db: db}
}

const matchColumns = `
	m.id, m.competition_id, m.season, m.home_team, m.away_team, m.kickoff_time,
	m.home_goals, m.away_goals, m.home_corners, m.away_corners, m.home_cards, m.away_cards,
	m.created_at, m.updated_at,
	o.home, o.draw, o.away, o.opening_home, o.opening_draw, o.opening_away,
	o.over_2_5, o.under_2_5, o.updated_at`

// Upsert inserts a match or refreshes its result columns
func (r *PostgresMatchRepository) Upsert(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (id, competition_id, season, home_team, away_team, kickoff_time,
		                     home_goals, away_goals, home_corners, away_corners, home_cards, away_cards,
		                     created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			kickoff_time = EXCLUDED.kickoff_time,
			home_goals   = EXCLUDED.home_goals,
			away_goals   = EXCLUDED.away_goals,
			home_corners = EXCLUDED.home_corners,
			away_corners = EXCLUDED.away_corners,
			home_cards   = EXCLUDED.home_cards,
			away_cards   = EXCLUDED.away_cards,
			updated_at   = now()
	`

	_, err := r.db.Pool().Exec(ctx, query,
		match.ID, match.CompetitionID, match.Season, match.HomeTeam, match.AwayTeam, match.KickoffTime,
		match.HomeGoals, match.AwayGoals, match.HomeCorners, match.AwayCorners, match.HomeCards, match.AwayCards,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}

	if match.Odds != nil {
		return r.UpsertOdds(ctx, match.ID, match.Odds)
	}
	return nil
}

// UpsertBatch upserts a sync batch inside one transaction
func (r *PostgresMatchRepository) UpsertBatch(ctx context.Context, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}

	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, match := range matches {
			if err := r.Upsert(ctx, match); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpsertOdds inserts or refreshes the odds row for a match. The first
// prices ever stored become the opening prices unless the source quoted
// openings explicitly; later updates never move them, so drift is always
// measured against the first observation.
func (r *PostgresMatchRepository) UpsertOdds(ctx context.Context, matchID uuid.UUID, odds *models.MatchOdds) error {
	query := `
		INSERT INTO match_odds (match_id, home, draw, away, opening_home, opening_draw, opening_away,
		                        over_2_5, under_2_5, updated_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, $2), COALESCE($6, $3), COALESCE($7, $4), $8, $9, now())
		ON CONFLICT (match_id) DO UPDATE SET
			home         = EXCLUDED.home,
			draw         = EXCLUDED.draw,
			away         = EXCLUDED.away,
			opening_home = COALESCE(match_odds.opening_home, EXCLUDED.opening_home),
			opening_draw = COALESCE(match_odds.opening_draw, EXCLUDED.opening_draw),
			opening_away = COALESCE(match_odds.opening_away, EXCLUDED.opening_away),
			over_2_5     = EXCLUDED.over_2_5,
			under_2_5    = EXCLUDED.under_2_5,
			updated_at   = now()
	`

	_, err := r.db.Pool().Exec(ctx, query,
		matchID, odds.Home, odds.Draw, odds.Away,
		odds.OpeningHome, odds.OpeningDraw, odds.OpeningAway,
		odds.Over25, odds.Under25,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert match odds: %w", err)
	}

	return nil
}

// GetByID retrieves a match with its odds by ID
func (r *PostgresMatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches m
		LEFT JOIN match_odds o ON o.match_id = m.id
		WHERE m.id = $1
	`

	match, err := scanMatch(r.db.Pool().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: match %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return match, nil
}

// GetPlayedByCompetition retrieves finished matches for a competition in a
// kickoff window, oldest first
func (r *PostgresMatchRepository) GetPlayedByCompetition(ctx context.Context, competitionID string, from, to time.Time) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches m
		LEFT JOIN match_odds o ON o.match_id = m.id
		WHERE m.competition_id = $1
		  AND m.kickoff_time >= $2 AND m.kickoff_time < $3
		  AND m.home_goals IS NOT NULL AND m.away_goals IS NOT NULL
		ORDER BY m.kickoff_time ASC
	`

	return r.queryMatches(ctx, query, competitionID, from, to)
}

// GetUpcoming retrieves unplayed matches for a competition in a kickoff
// window, soonest first
func (r *PostgresMatchRepository) GetUpcoming(ctx context.Context, competitionID string, from, to time.Time) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches m
		LEFT JOIN match_odds o ON o.match_id = m.id
		WHERE m.competition_id = $1
		  AND m.kickoff_time >= $2 AND m.kickoff_time < $3
		  AND m.home_goals IS NULL
		ORDER BY m.kickoff_time ASC
	`

	return r.queryMatches(ctx, query, competitionID, from, to)
}

func (r *PostgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}

	return matches, rows.Err()
}

// scanMatch reads a joined matches+match_odds row. Odds columns are nullable
// because the join is outer; a match without prices comes back with nil Odds.
func scanMatch(row pgx.Row) (*models.Match, error) {
	match := &models.Match{}
	var (
		home, draw, away    *float64
		openH, openD, openA *float64
		over25, under25     *float64
		oddsUpdatedAt       *time.Time
	)

	err := row.Scan(
		&match.ID, &match.CompetitionID, &match.Season, &match.HomeTeam, &match.AwayTeam, &match.KickoffTime,
		&match.HomeGoals, &match.AwayGoals, &match.HomeCorners, &match.AwayCorners, &match.HomeCards, &match.AwayCards,
		&match.CreatedAt, &match.UpdatedAt,
		&home, &draw, &away, &openH, &openD, &openA,
		&over25, &under25, &oddsUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if home != nil && draw != nil && away != nil {
		match.Odds = &models.MatchOdds{
			Home:        *home,
			Draw:        *draw,
			Away:        *away,
			OpeningHome: openH,
			OpeningDraw: openD,
			OpeningAway: openA,
			Over25:      over25,
			Under25:     under25,
			UpdatedAt:   oddsUpdatedAt,
		}
	}

	return match, nil
}
