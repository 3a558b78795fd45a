package fuzzy_test

import (
	"testing"

	"github.com/oddscope/clvserver/internal/fuzzy"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Inter   Milan", "inter milan"},
		{"DFB-Pokal", "dfb pokal"},
		{"Atlético Madrid", "atletico madrid"},
		{"  Paris Saint-Germain  ", "paris saint germain"},
		{"BAYERN MÜNCHEN", "bayern munchen"},
		{"F.C. Porto", "f c porto"},
		{"", ""},
		{"---", ""},
	}
	for _, c := range cases {
		if got := fuzzy.Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Inter   Milan", "DFB-Pokal", "Atlético Madrid", "epl"}
	for _, in := range inputs {
		once := fuzzy.Normalize(in)
		twice := fuzzy.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestSimilarity_ExactAfterNormalization(t *testing.T) {
	if got := fuzzy.Similarity("Inter Milan", "inter   MILAN"); got != 1.0 {
		t.Errorf("Similarity = %v, want 1.0", got)
	}
}

func TestSimilarity_Empty(t *testing.T) {
	if got := fuzzy.Similarity("", "arsenal"); got != 0 {
		t.Errorf("Similarity with empty side = %v, want 0", got)
	}
}

func TestSimilarity_UnequalNeverPerfect(t *testing.T) {
	got := fuzzy.Similarity("arsenal", "arsenal fc")
	if got >= 1.0 {
		t.Errorf("Similarity for unequal strings = %v, want < 1.0", got)
	}
	if got <= 0 {
		t.Errorf("Similarity for near-identical strings = %v, want > 0", got)
	}
}

func TestSimilarity_Ordering(t *testing.T) {
	near := fuzzy.Similarity("arsenal", "arsenal fc")
	far := fuzzy.Similarity("arsenal", "chelsea")
	if near <= far {
		t.Errorf("expected %v (near) > %v (far)", near, far)
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	ab := fuzzy.Similarity("manchester united", "manchester utd")
	ba := fuzzy.Similarity("manchester utd", "manchester united")
	if ab != ba {
		t.Errorf("Similarity not symmetric: %v vs %v", ab, ba)
	}
}

func TestBestMatch(t *testing.T) {
	candidates := []string{"premier league", "serie a", "la liga"}

	m := fuzzy.BestMatch("premier league", candidates, 0.7)
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Value != "premier league" || m.Score != 1.0 {
		t.Errorf("got %+v, want premier league at 1.0", m)
	}
}

func TestBestMatch_BelowThreshold(t *testing.T) {
	if m := fuzzy.BestMatch("snooker world cup", []string{"premier league"}, 0.7); m != nil {
		t.Errorf("expected nil below threshold, got %+v", m)
	}
}

func TestBestMatch_TieKeepsFirst(t *testing.T) {
	// Identical candidates score identically; the first occurrence must win.
	m := fuzzy.BestMatch("serie a", []string{"serie a", "serie a"}, 0.5)
	if m == nil || m.Score != 1.0 {
		t.Fatalf("expected perfect match, got %+v", m)
	}
}

func TestBestMatch_NoCandidates(t *testing.T) {
	if m := fuzzy.BestMatch("anything", nil, 0.1); m != nil {
		t.Errorf("expected nil for empty candidates, got %+v", m)
	}
}
