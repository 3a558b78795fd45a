package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/oddscope/clvserver/internal/domain"
)

// CacheRepository stores scraped league data keyed by (sport, league, season).
// Entries are replaced whole on write and evicted by age.
type CacheRepository struct {
	db *sqlx.DB
}

// NewCacheRepository creates a new CacheRepository.
func NewCacheRepository(db *sqlx.DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// Get returns the cached block for a key, or domain.ErrCacheMiss.
func (r *CacheRepository) Get(ctx context.Context, key domain.CacheKey) (*domain.ScrapedLeagueData, error) {
	var payload []byte
	err := r.db.GetContext(ctx, &payload,
		`SELECT payload FROM league_cache WHERE sport = $1 AND league = $2 AND season = $3`,
		key.Sport, key.League, key.Season)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("cache_repo.Get: %w", err)
	}

	var data domain.ScrapedLeagueData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("cache_repo.Get: decode %s: %w", key, err)
	}
	return &data, nil
}

// Put stores a freshly scraped block, replacing any previous entry for the key.
func (r *CacheRepository) Put(ctx context.Context, key domain.CacheKey, data *domain.ScrapedLeagueData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("cache_repo.Put: encode %s: %w", key, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO league_cache (sport, league, season, payload, fetched_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sport, league, season)
		DO UPDATE SET payload = EXCLUDED.payload, fetched_at = EXCLUDED.fetched_at`,
		key.Sport, key.League, key.Season, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cache_repo.Put: %w", err)
	}
	return nil
}

// EvictOlderThan removes entries fetched more than retentionDays ago and
// returns how many were deleted. retentionDays == 0 clears the whole cache.
func (r *CacheRepository) EvictOlderThan(ctx context.Context, retentionDays int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM league_cache WHERE fetched_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cache_repo.EvictOlderThan: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Stats summarises the cache for the stats and health endpoints.
func (r *CacheRepository) Stats(ctx context.Context) (domain.CacheStats, error) {
	var row struct {
		Count  int        `db:"count"`
		Oldest *time.Time `db:"oldest"`
		Newest *time.Time `db:"newest"`
		Bytes  *int64     `db:"bytes"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT COUNT(*)                   AS count,
		       MIN(fetched_at)            AS oldest,
		       MAX(fetched_at)            AS newest,
		       SUM(length(payload::text)) AS bytes
		FROM league_cache`)
	if err != nil {
		return domain.CacheStats{}, fmt.Errorf("cache_repo.Stats: %w", err)
	}

	stats := domain.CacheStats{
		EntryCount:  row.Count,
		OldestEntry: row.Oldest,
		NewestEntry: row.Newest,
	}
	if row.Bytes != nil {
		stats.TotalSizeMB = float64(*row.Bytes) / (1024 * 1024)
	}
	return stats, nil
}

// DatabaseSizeMB reports the size of the whole backing database, matching the
// health endpoint's dbSize field.
func (r *CacheRepository) DatabaseSizeMB(ctx context.Context) (float64, error) {
	var bytes int64
	err := r.db.GetContext(ctx, &bytes,
		`SELECT pg_database_size(current_database())`)
	if err != nil {
		return 0, fmt.Errorf("cache_repo.DatabaseSizeMB: %w", err)
	}
	return float64(bytes) / (1024 * 1024), nil
}
