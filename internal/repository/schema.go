package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema holds the idempotent bootstrap DDL. The service owns its own tables,
// so it creates them on startup instead of shipping separate migrations.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id             UUID PRIMARY KEY,
		status         TEXT NOT NULL,
		total_bets     INTEGER NOT NULL,
		processed_bets INTEGER NOT NULL DEFAULT 0,
		error_message  TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status)`,

	`CREATE TABLE IF NOT EXISTS bet_requests (
		id         BIGSERIAL PRIMARY KEY,
		job_id     UUID NOT NULL REFERENCES jobs(id),
		bet_id     TEXT NOT NULL,
		sport      TEXT NOT NULL,
		home_team  TEXT NOT NULL,
		away_team  TEXT NOT NULL,
		market     TEXT NOT NULL,
		event_date TIMESTAMPTZ NOT NULL,
		bookmaker  TEXT NOT NULL,
		tournament TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bet_requests_job ON bet_requests (job_id)`,

	`CREATE TABLE IF NOT EXISTS bet_results (
		id              BIGSERIAL PRIMARY KEY,
		job_id          UUID NOT NULL REFERENCES jobs(id),
		bet_id          TEXT NOT NULL,
		closing_odds    NUMERIC(12,4),
		bookmaker_used  TEXT,
		fallback_type   TEXT NOT NULL,
		confidence      DOUBLE PRECISION NOT NULL,
		match_score     DOUBLE PRECISION NOT NULL,
		bookmaker_count INTEGER,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bet_results_job ON bet_results (job_id)`,

	`CREATE TABLE IF NOT EXISTS league_cache (
		sport      TEXT NOT NULL,
		league     TEXT NOT NULL,
		season     TEXT NOT NULL,
		payload    JSONB NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (sport, league, season)
	)`,

	`CREATE TABLE IF NOT EXISTS league_overrides (
		tournament TEXT PRIMARY KEY,
		league     TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS unmapped_leagues (
		key        TEXT PRIMARY KEY,
		sport      TEXT NOT NULL,
		tournament TEXT NOT NULL,
		home_team  TEXT NOT NULL,
		away_team  TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS metadata (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS failure_events (
		id         BIGSERIAL PRIMARY KEY,
		job_id     UUID NOT NULL,
		kind       TEXT NOT NULL,
		message    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_failure_events_created ON failure_events (created_at)`,
}

// InitSchema creates all tables and indexes if they do not exist yet.
func InitSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("repository.InitSchema: %w", err)
		}
	}
	return nil
}
