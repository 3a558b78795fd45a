package domain

import (
	"fmt"
	"time"
)

// ──────────────────────────────────────────────────────────────────────────────
// League assignment
// ──────────────────────────────────────────────────────────────────────────────

// LeagueSource identifies which stage of the resolution cascade classified a
// bet's league.
type LeagueSource string

const (
	SourceCustom           LeagueSource = "custom"            // user override table
	SourceTournamentAlias  LeagueSource = "tournament_alias"  // static alias containment
	SourceTeamLookup       LeagueSource = "team_lookup"       // team→league table
	SourceFuzzyMatch       LeagueSource = "fuzzy_match"       // scored alias match
	SourceCountryInference LeagueSource = "country_inference" // country keyword heuristic
)

// UnknownLeague is the sentinel group for bets whose league could not be
// resolved; they still receive a failed result instead of being dropped.
const UnknownLeague = "unknown"

// LeagueAssignment maps free-text match information to a canonical league
// slug with a confidence score and its provenance. Transient — never persisted
// as its own entity.
type LeagueAssignment struct {
	League     string       `json:"league"`
	Confidence float64      `json:"confidence"`
	Source     LeagueSource `json:"source"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Scraped market data
// ──────────────────────────────────────────────────────────────────────────────

// MarketOdds is one market's per-bookmaker closing prices inside a scraped
// event. Keys are bookmaker names as emitted by the harvester.
type MarketOdds struct {
	Bookmakers map[string]float64 `json:"bookmakers"`
}

// ScrapedEvent is a single event row from the harvester output.
type ScrapedEvent struct {
	HomeTeam string                `json:"home_team"`
	AwayTeam string                `json:"away_team"`
	Odds     map[string]MarketOdds `json:"odds"`
}

// ScrapedLeagueData is the harvester's JSON document for one
// (sport, league, season) block.
type ScrapedLeagueData struct {
	Matches []ScrapedEvent `json:"matches"`
}

// CacheKey identifies one cached block of scraped league data.
type CacheKey struct {
	Sport  string
	League string
	Season string
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Sport, k.League, k.Season)
}

// SeasonFromDate derives the cache season label from an event date. Months
// July onward belong to the season starting that year; this anchors cache
// keys to typical Northern-hemisphere sport calendars.
func SeasonFromDate(t time.Time) string {
	year := t.Year()
	if t.Month() >= time.July {
		return fmt.Sprintf("%d-%d", year, year+1)
	}
	return fmt.Sprintf("%d-%d", year-1, year)
}

// CacheStats summarises the league-data cache for the stats endpoint.
type CacheStats struct {
	EntryCount  int        `json:"entryCount"`
	TotalSizeMB float64    `json:"totalSizeMB"`
	OldestEntry *time.Time `json:"oldestEntry"`
	NewestEntry *time.Time `json:"newestEntry"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Unmapped log
// ──────────────────────────────────────────────────────────────────────────────

// UnmappedEntry records an input the league resolver could not classify.
// Deduplicated by Key; used purely for offline improvement of the alias
// tables, never consulted at resolution time.
type UnmappedEntry struct {
	Key        string    `json:"key"        db:"key"`
	Sport      string    `json:"sport"      db:"sport"`
	Tournament string    `json:"tournament" db:"tournament"`
	HomeTeam   string    `json:"home_team"  db:"home_team"`
	AwayTeam   string    `json:"away_team"  db:"away_team"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// UnmappedKey builds the composite dedup key for an unmapped input.
func UnmappedKey(sport, tournament, home, away string) string {
	return fmt.Sprintf("%s|%s|%s|%s", sport, tournament, home, away)
}

// UnmappedLogCap is the maximum number of unmapped entries retained; the
// oldest are evicted first.
const UnmappedLogCap = 1000
