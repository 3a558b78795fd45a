// Package fuzzy provides the string normalization and best-match primitives
// used by the league resolver and the odds matcher. All comparisons happen on
// normalized text, so callers can feed raw scraped names directly.
package fuzzy

import (
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deaccent decomposes text and drops combining marks, so "Atlético" and
// "Atletico" normalize identically.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lower-cases, strips diacritics and punctuation, and collapses
// whitespace. Deterministic and idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	if folded, _, err := transform.String(deaccent, lowered); err == nil {
		lowered = folded
	}

	var b strings.Builder
	b.Grow(len(lowered))
	lastSpace := true // leading whitespace is dropped
	for _, r := range lowered {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			// Punctuation separates words rather than vanishing, so
			// "dfb-pokal" and "dfb pokal" collapse to the same form.
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// sorensenDice compares bigram sets, the closest analogue to the ratio the
// original matcher produced. Bounded in [0,1] and symmetric.
var sorensenDice = metrics.NewSorensenDice()

// Similarity scores two strings after normalization. Returns 1.0 only for
// exact normalized equality.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0.0
	}
	score := strutil.Similarity(na, nb, sorensenDice)
	// Unequal strings must not report a perfect score.
	if score >= 1.0 {
		score = 0.99
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Match is the outcome of a successful BestMatch call.
type Match struct {
	Value string  // the winning candidate, as passed in
	Score float64 // similarity in [0,1]
}

// BestMatch returns the candidate most similar to query, or nil when the best
// score is strictly below minScore. Ties are broken by first occurrence in
// candidates.
func BestMatch(query string, candidates []string, minScore float64) *Match {
	var best *Match
	for _, c := range candidates {
		score := Similarity(query, c)
		if best == nil || score > best.Score {
			best = &Match{Value: c, Score: score}
		}
	}
	if best == nil || best.Score < minScore {
		return nil
	}
	return best
}
