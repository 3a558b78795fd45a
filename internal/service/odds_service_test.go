package service_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/oddscope/clvserver/internal/domain"
	"github.com/oddscope/clvserver/internal/service"
)

// ── Test helpers ──────────────────────────────────────────────────────────────

func bet(bookmaker string) *domain.BetRequest {
	return &domain.BetRequest{
		BetID:     "bet-1",
		Sport:     "football",
		HomeTeam:  "Arsenal",
		AwayTeam:  "Chelsea",
		Market:    "1X2_home",
		Bookmaker: bookmaker,
	}
}

func leagueData(bookmakers map[string]float64) *domain.ScrapedLeagueData {
	return &domain.ScrapedLeagueData{
		Matches: []domain.ScrapedEvent{
			{
				HomeTeam: "Arsenal",
				AwayTeam: "Chelsea",
				Odds: map[string]domain.MarketOdds{
					"1X2_home": {Bookmakers: bookmakers},
				},
			},
		},
	}
}

func wantOdds(t *testing.T, res domain.BetResult, want string) {
	t.Helper()
	if res.ClosingOdds == nil {
		t.Fatalf("ClosingOdds is nil, want %s", want)
	}
	if !res.ClosingOdds.Equal(decimal.RequireFromString(want)) {
		t.Errorf("ClosingOdds = %s, want %s", res.ClosingOdds, want)
	}
}

// ── Fallback hierarchy ────────────────────────────────────────────────────────

func TestResolveClosingOdds_ExactBookmaker(t *testing.T) {
	svc := service.NewOddsService(nil)
	data := leagueData(map[string]float64{"Bet365": 2.1, "pinnacle": 1.95})

	res := svc.ResolveClosingOdds(bet("bet365"), data)

	if res.FallbackType != domain.FallbackExact {
		t.Fatalf("FallbackType = %v, want exact", res.FallbackType)
	}
	wantOdds(t, res, "2.1")
	if res.BookmakerUsed == nil || *res.BookmakerUsed != "bet365" {
		t.Errorf("BookmakerUsed = %v, want the request's bookmaker", res.BookmakerUsed)
	}
	if res.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", res.Confidence)
	}
	if res.MatchScore != 1.0 {
		t.Errorf("MatchScore = %v, want 1.0 for identical teams", res.MatchScore)
	}
}

func TestResolveClosingOdds_ReferenceBookmakerFallback(t *testing.T) {
	svc := service.NewOddsService(nil)
	data := leagueData(map[string]float64{"Pinnacle": 1.95, "betfair": 2.0})

	res := svc.ResolveClosingOdds(bet("unibet"), data)

	if res.FallbackType != domain.FallbackPinnacle {
		t.Fatalf("FallbackType = %v, want pinnacle", res.FallbackType)
	}
	wantOdds(t, res, "1.95")
	if res.BookmakerUsed == nil || *res.BookmakerUsed != "Pinnacle" {
		t.Errorf("BookmakerUsed = %v, want Pinnacle", res.BookmakerUsed)
	}
	if res.Confidence != 0.85 {
		t.Errorf("Confidence = %v, want 0.85", res.Confidence)
	}
}

func TestResolveClosingOdds_ReferenceVariantSpelling(t *testing.T) {
	svc := service.NewOddsService(nil)
	data := leagueData(map[string]float64{"PinnacleSports": 1.9})

	res := svc.ResolveClosingOdds(bet("unibet"), data)

	if res.FallbackType != domain.FallbackPinnacle {
		t.Fatalf("FallbackType = %v, want pinnacle for variant spelling", res.FallbackType)
	}
	wantOdds(t, res, "1.9")
}

func TestResolveClosingOdds_WeightedAverage(t *testing.T) {
	svc := service.NewOddsService(nil)
	// betfair 2.5, bet365 1.5, unknown book 1.0:
	// (2.0*2.5 + 2.1*1.5 + 1.9*1.0) / 5.0 = 2.01
	data := leagueData(map[string]float64{
		"betfair":     2.0,
		"bet365":      2.1,
		"localbookie": 1.9,
	})

	res := svc.ResolveClosingOdds(bet("unibet"), data)

	if res.FallbackType != domain.FallbackWeightedAvg {
		t.Fatalf("FallbackType = %v, want weighted_avg", res.FallbackType)
	}
	wantOdds(t, res, "2.01")
	if res.BookmakerUsed == nil || *res.BookmakerUsed != "Weighted Average" {
		t.Errorf("BookmakerUsed = %v, want Weighted Average", res.BookmakerUsed)
	}
	if res.Confidence != 0.7 {
		t.Errorf("Confidence = %v, want 0.7", res.Confidence)
	}
	if res.BookmakerCount == nil || *res.BookmakerCount != 3 {
		t.Errorf("BookmakerCount = %v, want 3", res.BookmakerCount)
	}
}

func TestResolveClosingOdds_WeightedAverageSkipsPlaceholders(t *testing.T) {
	svc := service.NewOddsService(nil)
	data := leagueData(map[string]float64{
		"betfair": 1.0, // placeholder price, not usable
		"bet365":  2.0,
	})

	res := svc.ResolveClosingOdds(bet("unibet"), data)

	if res.FallbackType != domain.FallbackWeightedAvg {
		t.Fatalf("FallbackType = %v, want weighted_avg", res.FallbackType)
	}
	wantOdds(t, res, "2")
	if res.BookmakerCount == nil || *res.BookmakerCount != 1 {
		t.Errorf("BookmakerCount = %v, want 1", res.BookmakerCount)
	}
}

func TestResolveClosingOdds_AllPlaceholdersFails(t *testing.T) {
	svc := service.NewOddsService(nil)
	data := leagueData(map[string]float64{"betfair": 1.0, "bet365": 1.01})

	res := svc.ResolveClosingOdds(bet("unibet"), data)

	if res.FallbackType != domain.FallbackFailed {
		t.Fatalf("FallbackType = %v, want failed", res.FallbackType)
	}
	if res.ClosingOdds != nil {
		t.Error("failed result must not carry closing odds")
	}
}

// ── Event matching ────────────────────────────────────────────────────────────

func TestResolveClosingOdds_NilData(t *testing.T) {
	svc := service.NewOddsService(nil)

	res := svc.ResolveClosingOdds(bet("bet365"), nil)

	if res.FallbackType != domain.FallbackFailed {
		t.Fatalf("FallbackType = %v, want failed", res.FallbackType)
	}
	if res.MatchScore != 0 {
		t.Errorf("MatchScore = %v, want 0", res.MatchScore)
	}
}

func TestResolveClosingOdds_NoSimilarEvent(t *testing.T) {
	svc := service.NewOddsService(nil)
	data := &domain.ScrapedLeagueData{
		Matches: []domain.ScrapedEvent{
			{HomeTeam: "Bayern Munich", AwayTeam: "Dortmund"},
		},
	}

	res := svc.ResolveClosingOdds(bet("bet365"), data)

	if res.FallbackType != domain.FallbackFailed {
		t.Fatalf("FallbackType = %v, want failed", res.FallbackType)
	}
	if res.MatchScore >= 0.75 {
		t.Errorf("MatchScore = %v, want below the gate", res.MatchScore)
	}
	if res.BetID != "bet-1" {
		t.Errorf("BetID = %q, want bet-1", res.BetID)
	}
}

func TestResolveClosingOdds_PicksBestEvent(t *testing.T) {
	svc := service.NewOddsService(nil)
	data := &domain.ScrapedLeagueData{
		Matches: []domain.ScrapedEvent{
			{
				HomeTeam: "Aston Villa",
				AwayTeam: "Everton",
				Odds: map[string]domain.MarketOdds{
					"1X2_home": {Bookmakers: map[string]float64{"bet365": 3.5}},
				},
			},
			{
				HomeTeam: "Arsenal",
				AwayTeam: "Chelsea",
				Odds: map[string]domain.MarketOdds{
					"1X2_home": {Bookmakers: map[string]float64{"bet365": 2.2}},
				},
			},
		},
	}

	res := svc.ResolveClosingOdds(bet("bet365"), data)

	if res.FallbackType != domain.FallbackExact {
		t.Fatalf("FallbackType = %v, want exact", res.FallbackType)
	}
	wantOdds(t, res, "2.2")
}

func TestResolveClosingOdds_MatchedEventMissingMarket(t *testing.T) {
	svc := service.NewOddsService(nil)
	data := &domain.ScrapedLeagueData{
		Matches: []domain.ScrapedEvent{
			{
				HomeTeam: "Arsenal",
				AwayTeam: "Chelsea",
				Odds: map[string]domain.MarketOdds{
					"over_under_2_5": {Bookmakers: map[string]float64{"bet365": 1.8}},
				},
			},
		},
	}

	res := svc.ResolveClosingOdds(bet("bet365"), data)

	if res.FallbackType != domain.FallbackFailed {
		t.Fatalf("FallbackType = %v, want failed for missing market", res.FallbackType)
	}
	if res.MatchScore != 1.0 {
		t.Errorf("MatchScore = %v, want the retained event score 1.0", res.MatchScore)
	}
}
