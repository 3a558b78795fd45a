package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/oddscope/clvserver/internal/domain"
)

// MappingRepository stores the user-editable league overrides, the unmapped
// input log, and arbitrary string metadata.
type MappingRepository struct {
	db *sqlx.DB
}

// NewMappingRepository creates a new MappingRepository.
func NewMappingRepository(db *sqlx.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// Overrides returns the full custom tournament→league override table.
func (r *MappingRepository) Overrides(ctx context.Context) (map[string]string, error) {
	rows := []struct {
		Tournament string `db:"tournament"`
		League     string `db:"league"`
	}{}
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT tournament, league FROM league_overrides`); err != nil {
		return nil, fmt.Errorf("mapping_repo.Overrides: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Tournament] = row.League
	}
	return out, nil
}

// MergeOverrides upserts the given entries; new values win on key conflict.
func (r *MappingRepository) MergeOverrides(ctx context.Context, entries map[string]string) error {
	for tournament, league := range entries {
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO league_overrides (tournament, league, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (tournament)
			DO UPDATE SET league = EXCLUDED.league, updated_at = EXCLUDED.updated_at`,
			tournament, league, time.Now().UTC()); err != nil {
			return fmt.Errorf("mapping_repo.MergeOverrides: %w", err)
		}
	}
	return nil
}

// LogUnmapped appends an unmapped input, deduplicated by its composite key.
// The log is capped at domain.UnmappedLogCap entries; the oldest are evicted.
func (r *MappingRepository) LogUnmapped(ctx context.Context, entry domain.UnmappedEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO unmapped_leagues (key, sport, tournament, home_team, away_team, created_at)
		VALUES (:key, :sport, :tournament, :home_team, :away_team, :created_at)
		ON CONFLICT (key) DO NOTHING`, &entry)
	if err != nil {
		return fmt.Errorf("mapping_repo.LogUnmapped: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Already logged; nothing to trim.
		return nil
	}

	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM unmapped_leagues
		WHERE key IN (
			SELECT key FROM unmapped_leagues
			ORDER BY created_at DESC
			OFFSET $1
		)`, domain.UnmappedLogCap); err != nil {
		return fmt.Errorf("mapping_repo.LogUnmapped: trim: %w", err)
	}
	return nil
}

// Unmapped returns the most recent unmapped entries, newest first.
func (r *MappingRepository) Unmapped(ctx context.Context, limit int) ([]domain.UnmappedEntry, error) {
	if limit <= 0 || limit > domain.UnmappedLogCap {
		limit = domain.UnmappedLogCap
	}
	var entries []domain.UnmappedEntry
	if err := r.db.SelectContext(ctx, &entries,
		`SELECT * FROM unmapped_leagues ORDER BY created_at DESC LIMIT $1`, limit); err != nil {
		return nil, fmt.Errorf("mapping_repo.Unmapped: %w", err)
	}
	return entries, nil
}

// GetMetadata returns the value for a metadata key, or "" when unset.
func (r *MappingRepository) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value,
		`SELECT value FROM metadata WHERE key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("mapping_repo.GetMetadata: %w", err)
	}
	return value, nil
}

// SetMetadata upserts a metadata key/value pair.
func (r *MappingRepository) SetMetadata(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("mapping_repo.SetMetadata: %w", err)
	}
	return nil
}
