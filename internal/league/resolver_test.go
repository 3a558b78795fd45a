package league_test

import (
	"context"
	"errors"
	"testing"

	"github.com/oddscope/clvserver/internal/domain"
	"github.com/oddscope/clvserver/internal/league"
)

// ── Fakes ─────────────────────────────────────────────────────────────────────

type fakeOverrides struct {
	overrides map[string]string
	err       error
}

func (f *fakeOverrides) Overrides(context.Context) (map[string]string, error) {
	return f.overrides, f.err
}

type fakeSink struct {
	entries []domain.UnmappedEntry
}

func (f *fakeSink) LogUnmapped(_ context.Context, entry domain.UnmappedEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func newResolver(overrides map[string]string, sink *fakeSink) *league.Resolver {
	var src league.OverrideSource
	if overrides != nil {
		src = &fakeOverrides{overrides: overrides}
	}
	var snk league.UnmappedSink
	if sink != nil {
		snk = sink
	}
	return league.NewResolver(src, snk, nil)
}

// ── Cascade stages ────────────────────────────────────────────────────────────

func TestResolve_CustomOverrideWins(t *testing.T) {
	r := newResolver(map[string]string{"premier league": "my-custom-league"}, nil)

	a := r.Resolve(context.Background(), "Arsenal", "Chelsea", "Premier League", "football")
	if a == nil {
		t.Fatal("expected an assignment")
	}
	if a.League != "my-custom-league" || a.Confidence != 1.0 || a.Source != domain.SourceCustom {
		t.Errorf("got %+v, want custom my-custom-league at 1.0", a)
	}
}

func TestResolve_AliasContainment(t *testing.T) {
	r := newResolver(nil, nil)

	a := r.Resolve(context.Background(), "Foo", "Bar", "English Premier League 2023/24", "football")
	if a == nil {
		t.Fatal("expected an assignment")
	}
	if a.League != "england-premier-league" || a.Confidence != 0.95 || a.Source != domain.SourceTournamentAlias {
		t.Errorf("got %+v, want england-premier-league via alias at 0.95", a)
	}
}

func TestResolve_AliasContainment_Reversed(t *testing.T) {
	// The short form "epl" is contained by no alias, but equals one.
	r := newResolver(nil, nil)

	a := r.Resolve(context.Background(), "Foo", "Bar", "EPL", "football")
	if a == nil || a.League != "england-premier-league" {
		t.Fatalf("got %+v, want england-premier-league", a)
	}
}

func TestResolve_TeamLookup_BothAgree(t *testing.T) {
	r := newResolver(nil, nil)

	a := r.Resolve(context.Background(), "Arsenal", "Chelsea", "", "football")
	if a == nil {
		t.Fatal("expected an assignment")
	}
	if a.League != "england-premier-league" || a.Confidence != 0.95 || a.Source != domain.SourceTeamLookup {
		t.Errorf("got %+v, want england-premier-league via teams at 0.95", a)
	}
}

func TestResolve_TeamLookup_DisagreementPrefersHome(t *testing.T) {
	r := newResolver(nil, nil)

	a := r.Resolve(context.Background(), "Arsenal", "Juventus", "", "football")
	if a == nil {
		t.Fatal("expected an assignment")
	}
	if a.League != "england-premier-league" || a.Confidence != 0.80 {
		t.Errorf("got %+v, want home side england-premier-league at 0.80", a)
	}
}

func TestResolve_TeamLookup_AwayOnly(t *testing.T) {
	r := newResolver(nil, nil)

	a := r.Resolve(context.Background(), "Nobody United", "Juventus", "", "football")
	if a == nil {
		t.Fatal("expected an assignment")
	}
	if a.League != "italy-serie-a" || a.Confidence != 0.80 || a.Source != domain.SourceTeamLookup {
		t.Errorf("got %+v, want italy-serie-a at 0.80", a)
	}
}

func TestResolve_FuzzyTournament(t *testing.T) {
	// Misspelled so neither containment direction fires.
	r := newResolver(nil, nil)

	a := r.Resolve(context.Background(), "Foo", "Bar", "Premier Legue", "football")
	if a == nil {
		t.Fatal("expected an assignment")
	}
	if a.League != "england-premier-league" || a.Source != domain.SourceFuzzyMatch {
		t.Errorf("got %+v, want england-premier-league via fuzzy", a)
	}
	if a.Confidence < 0.7 || a.Confidence >= 1.0 {
		t.Errorf("fuzzy confidence %v outside (0.7, 1.0)", a.Confidence)
	}
}

func TestResolve_CountryInference(t *testing.T) {
	// No alias, team, or fuzzy hit; "english" keyword plus the sport appearing
	// in an alias name selects the first english rugby league.
	r := newResolver(nil, nil)

	a := r.Resolve(context.Background(), "Foo", "Bar", "English Domestic Competition", "rugby")
	if a == nil {
		t.Fatal("expected an assignment")
	}
	if a.League != "england-premiership-rugby" || a.Confidence != 0.6 || a.Source != domain.SourceCountryInference {
		t.Errorf("got %+v, want england-premiership-rugby at 0.6", a)
	}
}

func TestResolve_NoMatch_RecordsUnmapped(t *testing.T) {
	sink := &fakeSink{}
	r := newResolver(nil, sink)

	a := r.Resolve(context.Background(), "Foo", "Bar", "Obscure Cup", "curling")
	if a != nil {
		t.Fatalf("expected no assignment, got %+v", a)
	}
	if len(sink.entries) != 1 {
		t.Fatalf("expected 1 unmapped entry, got %d", len(sink.entries))
	}
	e := sink.entries[0]
	want := domain.UnmappedKey("curling", "Obscure Cup", "Foo", "Bar")
	if e.Key != want {
		t.Errorf("unmapped key = %q, want %q", e.Key, want)
	}
}

func TestResolve_OverrideErrorDegrades(t *testing.T) {
	// An unreadable override table must not block the static cascade.
	r := league.NewResolver(&fakeOverrides{err: errors.New("db down")}, nil, nil)

	a := r.Resolve(context.Background(), "Arsenal", "Chelsea", "Premier League", "football")
	if a == nil {
		t.Fatal("expected an assignment despite override error")
	}
	if a.Source != domain.SourceTournamentAlias {
		t.Errorf("got source %v, want tournament_alias", a.Source)
	}
}

func TestResolve_EmptyTournamentSkipsAliases(t *testing.T) {
	// An empty tournament must not containment-match every alias.
	r := newResolver(nil, nil)

	a := r.Resolve(context.Background(), "Barcelona", "Real Madrid", "", "football")
	if a == nil {
		t.Fatal("expected an assignment")
	}
	if a.Source != domain.SourceTeamLookup || a.League != "spain-laliga" {
		t.Errorf("got %+v, want spain-laliga via team lookup", a)
	}
}

func TestAliases_ReturnsCopy(t *testing.T) {
	m := league.Aliases()
	if m["premier league"] != "england-premier-league" {
		t.Fatalf("missing expected alias, got %q", m["premier league"])
	}
	m["premier league"] = "tampered"

	if league.Aliases()["premier league"] != "england-premier-league" {
		t.Error("mutating the returned map leaked into the table")
	}
}
