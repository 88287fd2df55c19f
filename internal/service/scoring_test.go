package service

import (
	"testing"

	"psyscreen/internal/domain"
)

func phq9Instrument(t *testing.T) domain.Instrument {
	t.Helper()
	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("default catalog failed: %v", err)
	}
	in, err := catalog.Get("phq9")
	if err != nil {
		t.Fatalf("get phq9: %v", err)
	}
	return in
}

func tti12Instrument(t *testing.T) domain.Instrument {
	t.Helper()
	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("default catalog failed: %v", err)
	}
	in, err := catalog.Get("tti12")
	if err != nil {
		t.Fatalf("get tti12: %v", err)
	}
	return in
}

// phq9Answers spreads a target total over the nine items with per-item
// values in [0,3].
func phq9Answers(t *testing.T, total int) map[string]int {
	t.Helper()
	if total < 0 || total > 27 {
		t.Fatalf("total %d outside [0,27]", total)
	}
	answers := make(map[string]int, 9)
	remaining := total
	for i := 1; i <= 9; i++ {
		v := remaining
		if v > 3 {
			v = 3
		}
		answers[questionID("phq9", i)] = v
		remaining -= v
	}
	return answers
}

func TestScoreSummed_TierBoundaries(t *testing.T) {
	in := phq9Instrument(t)

	cases := []struct {
		total int
		want  string
	}{
		{4, "minimal"},
		{5, "mild"},
		{9, "mild"},
		{10, "moderate"},
		{14, "moderate"},
		{15, "moderately-severe"},
		{19, "moderately-severe"},
		{20, "severe"},
		{27, "severe"},
	}
	for _, tc := range cases {
		classification, _, err := Score(in, phq9Answers(t, tc.total))
		if err != nil {
			t.Fatalf("total %d: %v", tc.total, err)
		}
		if classification != tc.want {
			t.Fatalf("total %d: expected %q, got %q", tc.total, tc.want, classification)
		}
	}
}

func TestScore_CriticalFlagIndependentOfTotal(t *testing.T) {
	in := phq9Instrument(t)

	answers := phq9Answers(t, 0)
	answers["phq9_q9"] = 1

	classification, flags, err := Score(in, answers)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if classification != "minimal" {
		t.Fatalf("expected minimal classification, got %q", classification)
	}
	if len(flags) != 1 || flags[0] != domain.RiskFlagCritical {
		t.Fatalf("expected critical indicator, got %v", flags)
	}
}

func TestScore_NoCriticalFlagAtNeutralValue(t *testing.T) {
	in := phq9Instrument(t)

	_, flags, err := Score(in, phq9Answers(t, 0))
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if len(flags) != 0 {
		t.Fatalf("expected no flags, got %v", flags)
	}
}

func TestScoreDimensional_TypeCode(t *testing.T) {
	in := tti12Instrument(t)

	// Letter counts E:2 I:1, S:2 N:1, T:1 F:2, J:2 P:1 -> ESFJ.
	answers := map[string]int{
		"tti12_q1": 0, "tti12_q2": 0, "tti12_q3": 1,
		"tti12_q4": 0, "tti12_q5": 0, "tti12_q6": 1,
		"tti12_q7": 0, "tti12_q8": 1, "tti12_q9": 1,
		"tti12_q10": 0, "tti12_q11": 0, "tti12_q12": 1,
	}

	classification, flags, err := Score(in, answers)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if classification != "ESFJ" {
		t.Fatalf("expected ESFJ, got %q", classification)
	}
	if len(flags) != 0 {
		t.Fatalf("expected no flags, got %v", flags)
	}
}

func TestScoreDimensional_TieResolvesToDefault(t *testing.T) {
	in := tti12Instrument(t)

	// One E and one I, third extraversion item unanswered; other pairs full.
	answers := map[string]int{
		"tti12_q1": 0, "tti12_q2": 1,
		"tti12_q4": 0, "tti12_q5": 0, "tti12_q6": 0,
		"tti12_q7": 0, "tti12_q8": 0, "tti12_q9": 0,
		"tti12_q10": 0, "tti12_q11": 0, "tti12_q12": 0,
	}

	classification, _, err := Score(in, answers)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if classification != "ISTJ" {
		t.Fatalf("expected tie to resolve to I (ISTJ), got %q", classification)
	}
}
