package database

import (
	"context"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS matches (
	id UUID PRIMARY KEY,
	competition_id TEXT NOT NULL,
	season TEXT NOT NULL DEFAULT '',
	home_team TEXT NOT NULL,
	away_team TEXT NOT NULL,
	kickoff_time TIMESTAMPTZ NOT NULL,
	home_goals INTEGER,
	away_goals INTEGER,
	home_corners INTEGER,
	away_corners INTEGER,
	home_cards INTEGER,
	away_cards INTEGER,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_matches_competition_kickoff ON matches (competition_id, kickoff_time);

CREATE TABLE IF NOT EXISTS match_odds (
	match_id UUID PRIMARY KEY REFERENCES matches(id) ON DELETE CASCADE,
	home DOUBLE PRECISION NOT NULL,
	draw DOUBLE PRECISION NOT NULL,
	away DOUBLE PRECISION NOT NULL,
	opening_home DOUBLE PRECISION,
	opening_draw DOUBLE PRECISION,
	opening_away DOUBLE PRECISION,
	over_2_5 DOUBLE PRECISION,
	under_2_5 DOUBLE PRECISION,
	updated_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS picks (
	id UUID PRIMARY KEY,
	run_id UUID,
	match_id UUID NOT NULL,
	competition_id TEXT NOT NULL,
	market_key TEXT NOT NULL,
	label TEXT NOT NULL,
	probability DOUBLE PRECISION NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	tier TEXT NOT NULL,
	risk_level INTEGER NOT NULL,
	odds NUMERIC(8,3) NOT NULL,
	odds_source TEXT NOT NULL,
	expected_value DOUBLE PRECISION NOT NULL,
	stake_fraction DOUBLE PRECISION NOT NULL,
	stake_units NUMERIC(12,4) NOT NULL,
	recommended BOOLEAN NOT NULL,
	rationale TEXT NOT NULL DEFAULT '',
	result TEXT NOT NULL DEFAULT 'PENDING',
	payout NUMERIC(8,3) NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	settled_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_picks_pending ON picks (created_at) WHERE result = 'PENDING';
CREATE INDEX IF NOT EXISTS idx_picks_run ON picks (run_id);
CREATE INDEX IF NOT EXISTS idx_picks_settled_market ON picks (settled_at, market_key);

CREATE TABLE IF NOT EXISTS training_runs (
	id UUID PRIMARY KEY,
	competition_ids TEXT[] NOT NULL,
	start_day TIMESTAMPTZ NOT NULL,
	end_day TIMESTAMPTZ NOT NULL,
	matches_processed INTEGER NOT NULL,
	bet_count INTEGER NOT NULL,
	accuracy DOUBLE PRECISION NOT NULL,
	roi DOUBLE PRECISION NOT NULL,
	profit_units NUMERIC(12,4) NOT NULL,
	full_result JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_training_runs_created ON training_runs (created_at DESC);
`

// InitSchema creates the tables and indexes if they do not exist yet. Safe
// to run on every startup.
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
