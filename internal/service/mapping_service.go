package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oddscope/clvserver/internal/domain"
	"github.com/oddscope/clvserver/internal/fuzzy"
	"github.com/oddscope/clvserver/internal/league"
	"github.com/oddscope/clvserver/internal/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// MappingService
// ──────────────────────────────────────────────────────────────────────────────

// MappingService exposes the league-mapping tables and the scraped-data cache
// to the admin endpoints: reading the merged mapping view, merging custom
// overrides, and clearing or inspecting the cache.
type MappingService struct {
	mappingRepo *repository.MappingRepository
	cacheRepo   *repository.CacheRepository
	logger      *slog.Logger
}

// NewMappingService creates a MappingService.
func NewMappingService(mappingRepo *repository.MappingRepository, cacheRepo *repository.CacheRepository, logger *slog.Logger) *MappingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MappingService{
		mappingRepo: mappingRepo,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// MappingView is the full mapping picture: the static tables, the custom
// overrides layered on top, and the recent unmapped inputs.
type MappingView struct {
	Aliases     map[string]string      `json:"aliases"`
	TeamLeagues map[string]string      `json:"teamLeagues"`
	Custom      map[string]string      `json:"custom"`
	Unmapped    []domain.UnmappedEntry `json:"unmapped"`
}

// Mappings assembles the current mapping view.
func (s *MappingService) Mappings(ctx context.Context) (*MappingView, error) {
	custom, err := s.mappingRepo.Overrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("mapping_service.Mappings: %w", err)
	}
	unmapped, err := s.mappingRepo.Unmapped(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("mapping_service.Mappings: %w", err)
	}
	return &MappingView{
		Aliases:     league.Aliases(),
		TeamLeagues: league.TeamLeagues(),
		Custom:      custom,
		Unmapped:    unmapped,
	}, nil
}

// MergeMappings upserts custom overrides. Keys are normalized before storage
// so the resolver's verbatim lookup finds them regardless of input casing.
func (s *MappingService) MergeMappings(ctx context.Context, entries map[string]string) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	normalized := make(map[string]string, len(entries))
	for tournament, slug := range entries {
		normalized[fuzzy.Normalize(tournament)] = slug
	}
	if err := s.mappingRepo.MergeOverrides(ctx, normalized); err != nil {
		return 0, fmt.Errorf("mapping_service.MergeMappings: %w", err)
	}
	s.logger.Info("custom league mappings merged", "entries", len(normalized))
	return len(normalized), nil
}

// ClearCache evicts cached league data older than retentionDays. Zero clears
// everything. Returns how many entries were removed.
func (s *MappingService) ClearCache(ctx context.Context, retentionDays int) (int, error) {
	n, err := s.cacheRepo.EvictOlderThan(ctx, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("mapping_service.ClearCache: %w", err)
	}
	s.logger.Info("cache cleared", "evicted", n, "retention_days", retentionDays)
	return n, nil
}

// CacheStats returns the cache summary for the stats endpoint.
func (s *MappingService) CacheStats(ctx context.Context) (domain.CacheStats, error) {
	stats, err := s.cacheRepo.Stats(ctx)
	if err != nil {
		return domain.CacheStats{}, fmt.Errorf("mapping_service.CacheStats: %w", err)
	}
	return stats, nil
}
