// Package league classifies free-text match descriptions into canonical
// league slugs. Resolution is a fixed five-stage cascade; the first stage
// that produces an answer wins, and unresolvable inputs are recorded on a
// side channel for offline alias-table improvement.
package league

import (
	"context"
	"log/slog"
	"strings"

	"github.com/oddscope/clvserver/internal/domain"
	"github.com/oddscope/clvserver/internal/fuzzy"
)

// fuzzyMinScore is the acceptance threshold for the fuzzy-tournament stage.
const fuzzyMinScore = 0.7

// Stage confidence levels. Fuzzy matches carry their own score instead.
const (
	confidenceCustom    = 1.0
	confidenceAlias     = 0.95
	confidenceBothTeams = 0.95
	confidenceOneTeam   = 0.80
	confidenceCountry   = 0.6
)

// OverrideSource supplies the user-editable tournament→league override table.
// Keys are expected normalized; the resolver normalizes defensively anyway.
type OverrideSource interface {
	Overrides(ctx context.Context) (map[string]string, error)
}

// UnmappedSink records inputs the cascade could not classify.
type UnmappedSink interface {
	LogUnmapped(ctx context.Context, entry domain.UnmappedEntry) error
}

// Resolver runs the league-classification cascade. Stateless with respect to
// jobs: stages 1–5 are pure reads, only the no-match stage writes (to the
// unmapped side channel).
type Resolver struct {
	overrides OverrideSource
	unmapped  UnmappedSink
	logger    *slog.Logger

	aliasNames []string // normalized alias names, table order, for fuzzy stage
}

// NewResolver creates a Resolver. overrides and unmapped may be nil, in which
// case the custom stage is skipped and misses are not recorded.
func NewResolver(overrides OverrideSource, unmapped UnmappedSink, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	names := make([]string, len(aliases))
	for i, a := range aliases {
		names[i] = a.Name
	}
	return &Resolver{
		overrides:  overrides,
		unmapped:   unmapped,
		logger:     logger,
		aliasNames: names,
	}
}

// Resolve classifies a (home, away, tournament, sport) tuple into a league
// assignment, or nil when no stage matches. The cascade order is fixed:
// custom override, alias containment, team lookup, fuzzy tournament match,
// country inference. No blending across stages.
func (r *Resolver) Resolve(ctx context.Context, homeTeam, awayTeam, tournament, sport string) *domain.LeagueAssignment {
	homeNorm := fuzzy.Normalize(homeTeam)
	awayNorm := fuzzy.Normalize(awayTeam)
	tournamentNorm := fuzzy.Normalize(tournament)
	sportNorm := fuzzy.Normalize(sport)

	// 1. Custom override — verbatim lookup in the user-editable table.
	if r.overrides != nil {
		custom, err := r.overrides.Overrides(ctx)
		if err != nil {
			// An unreadable override table degrades to the static cascade.
			r.logger.Warn("league: override table unavailable", "err", err)
		} else if slug, ok := custom[tournamentNorm]; ok {
			return &domain.LeagueAssignment{League: slug, Confidence: confidenceCustom, Source: domain.SourceCustom}
		}
	}

	// 2. Tournament alias — substring containment in either direction.
	// Upstream tournament names are inconsistently abbreviated or padded, so
	// exact equality is too strict here and fuzzy scoring too expensive.
	if tournamentNorm != "" {
		for _, a := range aliases {
			if strings.Contains(tournamentNorm, a.Name) || strings.Contains(a.Name, tournamentNorm) {
				return &domain.LeagueAssignment{League: a.League, Confidence: confidenceAlias, Source: domain.SourceTournamentAlias}
			}
		}
	}

	// 3. Team lookup — home is checked first, so on disagreement the home
	// side's league wins.
	homeLeague, homeOK := teamLeagues[homeNorm]
	awayLeague, awayOK := teamLeagues[awayNorm]
	switch {
	case homeOK && awayOK && homeLeague == awayLeague:
		return &domain.LeagueAssignment{League: homeLeague, Confidence: confidenceBothTeams, Source: domain.SourceTeamLookup}
	case homeOK:
		return &domain.LeagueAssignment{League: homeLeague, Confidence: confidenceOneTeam, Source: domain.SourceTeamLookup}
	case awayOK:
		return &domain.LeagueAssignment{League: awayLeague, Confidence: confidenceOneTeam, Source: domain.SourceTeamLookup}
	}

	// 4. Fuzzy tournament match against every alias name.
	if m := fuzzy.BestMatch(tournamentNorm, r.aliasNames, fuzzyMinScore); m != nil {
		if slug, ok := aliasLeague(m.Value); ok {
			return &domain.LeagueAssignment{League: slug, Confidence: m.Score, Source: domain.SourceFuzzyMatch}
		}
	}

	// 5. Country/sport inference. First country keyword hit, then first alias
	// whose slug contains the country and whose name contains the sport.
	// The nested first-match-wins order is load-bearing for ambiguous inputs.
	for _, cp := range countryPatterns {
		if !strings.Contains(tournamentNorm, cp.Keyword) {
			continue
		}
		for _, a := range aliases {
			if strings.Contains(a.League, cp.Country) && strings.Contains(a.Name, sportNorm) {
				return &domain.LeagueAssignment{League: a.League, Confidence: confidenceCountry, Source: domain.SourceCountryInference}
			}
		}
	}

	// 6. No match — record for offline table improvement and return absent.
	r.recordUnmapped(ctx, homeTeam, awayTeam, tournament, sport)
	return nil
}

// recordUnmapped writes the miss to the side channel. Failures are logged,
// never surfaced: an unwritable log must not turn a miss into an error.
func (r *Resolver) recordUnmapped(ctx context.Context, home, away, tournament, sport string) {
	if r.unmapped == nil {
		return
	}
	entry := domain.UnmappedEntry{
		Key:        domain.UnmappedKey(sport, tournament, home, away),
		Sport:      sport,
		Tournament: tournament,
		HomeTeam:   home,
		AwayTeam:   away,
	}
	if err := r.unmapped.LogUnmapped(ctx, entry); err != nil {
		r.logger.Warn("league: failed to log unmapped input", "key", entry.Key, "err", err)
	}
}

// aliasLeague resolves a normalized alias name back to its league slug.
func aliasLeague(name string) (string, bool) {
	for _, a := range aliases {
		if a.Name == name {
			return a.League, true
		}
	}
	return "", false
}

// Aliases returns the static alias table for the mappings endpoint. The
// returned map is a fresh copy; mutating it does not affect resolution.
func Aliases() map[string]string {
	out := make(map[string]string, len(aliases))
	for _, a := range aliases {
		out[a.Name] = a.League
	}
	return out
}

// TeamLeagues returns a copy of the static team→league table.
func TeamLeagues() map[string]string {
	out := make(map[string]string, len(teamLeagues))
	for k, v := range teamLeagues {
		out[k] = v
	}
	return out
}
