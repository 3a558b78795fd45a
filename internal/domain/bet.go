package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// FallbackType identifies which strategy of the fallback hierarchy produced a
// bet's closing price.
type FallbackType string

const (
	FallbackExact       FallbackType = "exact"        // bettor's own bookmaker found
	FallbackPinnacle    FallbackType = "pinnacle"     // reference bookmaker found
	FallbackWeightedAvg FallbackType = "weighted_avg" // weighted mean over known books
	FallbackFailed      FallbackType = "failed"       // no usable price
)

// IsValid returns true if the fallback type is a recognised variant.
func (f FallbackType) IsValid() bool {
	switch f {
	case FallbackExact, FallbackPinnacle, FallbackWeightedAvg, FallbackFailed:
		return true
	}
	return false
}

// ──────────────────────────────────────────────────────────────────────────────
// BetRequest
// ──────────────────────────────────────────────────────────────────────────────

// BetRequest is a single previously placed wager whose closing odds the
// client wants resolved. Immutable once submitted; belongs to exactly one Job.
type BetRequest struct {
	ID         int64     `json:"-"           db:"id"`
	JobID      uuid.UUID `json:"-"           db:"job_id"`
	BetID      string    `json:"betId"       db:"bet_id"` // client-supplied, opaque
	Sport      string    `json:"sport"       db:"sport"`
	HomeTeam   string    `json:"homeTeam"    db:"home_team"`
	AwayTeam   string    `json:"awayTeam"    db:"away_team"`
	Market     string    `json:"market"      db:"market"`
	EventDate  time.Time `json:"eventDate"   db:"event_date"`
	Bookmaker  string    `json:"bookmaker"   db:"bookmaker"`
	Tournament string    `json:"tournament"  db:"tournament"` // free text, may be empty
}

// ──────────────────────────────────────────────────────────────────────────────
// BetResult
// ──────────────────────────────────────────────────────────────────────────────

// BetResult is the per-bet outcome of the odds-matching resolver, created
// lazily as each bet is resolved.
//
// Invariant: FallbackType == FallbackFailed ⇔ ClosingOdds is nil.
type BetResult struct {
	ID             int64            `json:"-"                        db:"id"`
	JobID          uuid.UUID        `json:"-"                        db:"job_id"`
	BetID          string           `json:"betId"                    db:"bet_id"`
	ClosingOdds    *decimal.Decimal `json:"closingOdds,omitempty"    db:"closing_odds"`
	BookmakerUsed  *string          `json:"bookmakerUsed,omitempty"  db:"bookmaker_used"`
	FallbackType   FallbackType     `json:"fallbackType"             db:"fallback_type"`
	Confidence     float64          `json:"confidence"               db:"confidence"`
	MatchScore     float64          `json:"matchScore"               db:"match_score"`
	BookmakerCount *int             `json:"bookmakerCount,omitempty" db:"bookmaker_count"`
	CreatedAt      time.Time        `json:"-"                        db:"created_at"`
}

// FailedResult builds a failed BetResult carrying the best match score seen.
func FailedResult(betID string, matchScore float64) BetResult {
	return BetResult{
		BetID:        betID,
		FallbackType: FallbackFailed,
		Confidence:   0,
		MatchScore:   matchScore,
	}
}

// IsResolved returns true when the result carries a usable closing price.
func (r *BetResult) IsResolved() bool {
	return r.FallbackType != FallbackFailed && r.ClosingOdds != nil
}
