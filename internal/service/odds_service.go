package service

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/oddscope/clvserver/internal/domain"
	"github.com/oddscope/clvserver/internal/fuzzy"
)

// ──────────────────────────────────────────────────────────────────────────────
// Constants
// ──────────────────────────────────────────────────────────────────────────────

// eventMatchThreshold gates the winning event's average team-name similarity.
// Below it the bet is treated as unmatched even when odds are available.
const eventMatchThreshold = 0.75

// minUsableOdds excludes placeholder prices from the weighted average.
var minUsableOdds = decimal.NewFromFloat(1.01)

// Confidence attached to each fallback stage.
const (
	confidenceExact       = 0.95
	confidencePinnacle    = 0.85
	confidenceWeightedAvg = 0.7
)

// referenceBookmaker is the canonical display name used when the reference-
// bookmaker fallback supplies the price.
const referenceBookmaker = "Pinnacle"

// referenceVariants are the normalized spellings the reference bookmaker
// appears under in scraped data, checked in order.
var referenceVariants = []string{"pinnacle", "pinnaclesports", "pinnacle com"}

// weightedAvgLabel is the BookmakerUsed value for synthetic averaged prices.
const weightedAvgLabel = "Weighted Average"

// bookmakerWeights holds the fixed per-bookmaker weights for the averaged
// fallback. Sharper books weigh more; unknown books default to 1.0.
var bookmakerWeights = map[string]decimal.Decimal{
	"pinnacle":  decimal.NewFromFloat(3.0),
	"betfair":   decimal.NewFromFloat(2.5),
	"smarkets":  decimal.NewFromFloat(2.0),
	"bet365":    decimal.NewFromFloat(1.5),
	"matchbook": decimal.NewFromFloat(1.5),
}

var defaultWeight = decimal.NewFromFloat(1.0)

// ──────────────────────────────────────────────────────────────────────────────
// OddsService
// ──────────────────────────────────────────────────────────────────────────────

// OddsService matches a bet against a block of scraped league data and
// derives a closing price through the fallback hierarchy:
// exact bookmaker → reference bookmaker → weighted average → failed.
// Stateless; safe for concurrent use.
type OddsService struct {
	logger *slog.Logger
}

// NewOddsService creates an OddsService.
func NewOddsService(logger *slog.Logger) *OddsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OddsService{logger: logger}
}

// ResolveClosingOdds finds the scraped event best matching the bet's teams,
// extracts the requested market, and walks the fallback hierarchy. Always
// returns a result; misses are represented as FallbackFailed, never errors.
func (s *OddsService) ResolveClosingOdds(bet *domain.BetRequest, data *domain.ScrapedLeagueData) domain.BetResult {
	if data == nil {
		return domain.FailedResult(bet.BetID, 0)
	}

	// ── 1. Find the best-matching event ──────────────────────────────────────
	// The maximum average similarity is always selected while scanning; the
	// gate below is applied to the winner only, so a failed result still
	// reports how close the nearest event came.
	var (
		bestEvent *domain.ScrapedEvent
		bestScore float64
	)
	for i := range data.Matches {
		ev := &data.Matches[i]
		homeScore := fuzzy.Similarity(bet.HomeTeam, ev.HomeTeam)
		awayScore := fuzzy.Similarity(bet.AwayTeam, ev.AwayTeam)
		score := (homeScore + awayScore) / 2
		if score > bestScore {
			bestScore = score
			bestEvent = ev
		}
	}

	if bestEvent == nil || bestScore < eventMatchThreshold {
		return domain.FailedResult(bet.BetID, bestScore)
	}

	// ── 2. Extract the requested market ──────────────────────────────────────
	market, ok := bestEvent.Odds[bet.Market]
	if !ok || len(market.Bookmakers) == 0 {
		s.logger.Debug("odds: matched event has no market",
			"bet", bet.BetID, "market", bet.Market, "score", bestScore)
		return domain.FailedResult(bet.BetID, bestScore)
	}

	// Scraped bookmaker keys are compared in normalized form so "Bet365" and
	// "bet365" are the same book.
	normalized := make(map[string]float64, len(market.Bookmakers))
	for name, price := range market.Bookmakers {
		normalized[fuzzy.Normalize(name)] = price
	}

	// ── 3a. Exact bookmaker ──────────────────────────────────────────────────
	target := fuzzy.Normalize(bet.Bookmaker)
	if price, ok := normalized[target]; ok {
		odds := decimal.NewFromFloat(price)
		bookmaker := bet.Bookmaker
		return domain.BetResult{
			BetID:         bet.BetID,
			ClosingOdds:   &odds,
			BookmakerUsed: &bookmaker,
			FallbackType:  domain.FallbackExact,
			Confidence:    confidenceExact,
			MatchScore:    bestScore,
		}
	}

	// ── 3b. Reference bookmaker ──────────────────────────────────────────────
	for _, variant := range referenceVariants {
		if price, ok := normalized[variant]; ok {
			odds := decimal.NewFromFloat(price)
			bookmaker := referenceBookmaker
			return domain.BetResult{
				BetID:         bet.BetID,
				ClosingOdds:   &odds,
				BookmakerUsed: &bookmaker,
				FallbackType:  domain.FallbackPinnacle,
				Confidence:    confidencePinnacle,
				MatchScore:    bestScore,
			}
		}
	}

	// ── 3c. Weighted average ─────────────────────────────────────────────────
	if result, ok := s.weightedAverage(bet.BetID, bestScore, normalized); ok {
		return result
	}

	// ── 3d. Failed ───────────────────────────────────────────────────────────
	return domain.FailedResult(bet.BetID, bestScore)
}

// weightedAverage computes the weighted mean over all bookmakers with a
// usable price (> 1.01), rounded to 3 decimal places. Returns ok=false when
// no bookmaker is weight-eligible.
func (s *OddsService) weightedAverage(betID string, matchScore float64, odds map[string]float64) (domain.BetResult, bool) {
	var sumWeighted, sumWeights decimal.Decimal
	count := 0

	for name, price := range odds {
		p := decimal.NewFromFloat(price)
		if !p.GreaterThan(minUsableOdds) {
			continue
		}
		weight, ok := bookmakerWeights[name]
		if !ok {
			weight = defaultWeight
		}
		sumWeighted = sumWeighted.Add(p.Mul(weight))
		sumWeights = sumWeights.Add(weight)
		count++
	}

	if sumWeights.IsZero() {
		return domain.BetResult{}, false
	}

	avg := sumWeighted.Div(sumWeights).Round(3)
	bookmaker := weightedAvgLabel
	return domain.BetResult{
		BetID:          betID,
		ClosingOdds:    &avg,
		BookmakerUsed:  &bookmaker,
		FallbackType:   domain.FallbackWeightedAvg,
		Confidence:     confidenceWeightedAvg,
		MatchScore:     matchScore,
		BookmakerCount: &count,
	}, true
}
