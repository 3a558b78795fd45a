// Package scraper invokes the external odds-harvester process and parses its
// JSON output. Scraping mechanics live entirely in that process; this package
// only owns the command line, the hard timeout, and the output-file contract.
package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/oddscope/clvserver/internal/config"
	"github.com/oddscope/clvserver/internal/domain"
)

// outputFile is where the harvester writes its scraped document, relative to
// its working directory.
const outputFile = "output.json"

// Harvester runs the external scraping process for one league/season block
// at a time. Safe for concurrent use: each fetch runs its own process.
type Harvester struct {
	path          string
	pythonBin     string
	scrapeTimeout time.Duration
	probeTimeout  time.Duration
	logger        *slog.Logger
}

// NewHarvester creates a Harvester from configuration.
func NewHarvester(cfg *config.Config, logger *slog.Logger) *Harvester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Harvester{
		path:          cfg.Harvester.Path,
		pythonBin:     cfg.Harvester.PythonBin,
		scrapeTimeout: cfg.Harvester.ScrapeTimeout,
		probeTimeout:  cfg.Harvester.ProbeTimeout,
		logger:        logger,
	}
}

// FetchLeague invokes the harvester for one (sport, league, season) block and
// returns the parsed document. A timeout maps to domain.ErrFetchTimeout and a
// non-zero exit to domain.ErrFetchFailed — both are group-level failures the
// engine recovers from, never crashes.
func (h *Harvester) FetchLeague(ctx context.Context, key domain.CacheKey) (*domain.ScrapedLeagueData, error) {
	ctx, cancel := context.WithTimeout(ctx, h.scrapeTimeout)
	defer cancel()

	start := time.Now()
	h.logger.Info("harvester: fetching league data",
		"sport", key.Sport, "league", key.League, "season", key.Season)

	cmd := exec.CommandContext(ctx, h.pythonBin,
		"-m", "src.main",
		"scrape_historic",
		"--sport", strings.ToLower(key.Sport),
		"--leagues", key.League,
		"--season", key.Season,
		"--headless",
		"--format", "json",
		"--scrape_odds_history",
	)
	cmd.Dir = h.path

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			h.logger.Error("harvester: fetch timed out",
				"key", key.String(), "timeout", h.scrapeTimeout)
			return nil, fmt.Errorf("%w: %s after %s", domain.ErrFetchTimeout, key, h.scrapeTimeout)
		}
		h.logger.Error("harvester: process failed",
			"key", key.String(), "err", err, "stderr", truncate(stderr.String(), 500))
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrFetchFailed, key, err)
	}

	data, err := h.readOutput()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrFetchFailed, key, err)
	}

	h.logger.Info("harvester: fetch complete",
		"key", key.String(), "events", len(data.Matches), "elapsed", time.Since(start).Round(time.Second))
	return data, nil
}

// readOutput parses and removes the harvester's output file.
func (h *Harvester) readOutput() (*domain.ScrapedLeagueData, error) {
	path := filepath.Join(h.path, outputFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	// Clean up regardless of parse outcome so a stale file never serves a
	// future fetch.
	defer os.Remove(path)

	var data domain.ScrapedLeagueData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode output: %w", err)
	}
	return &data, nil
}

// Probe runs a lightweight invocation to verify the harvester responds.
// Used by the periodic health check; failure means degraded, not down.
func (h *Harvester) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, h.pythonBin, "-m", "src.main", "--help")
	cmd.Dir = h.path
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("harvester probe: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
