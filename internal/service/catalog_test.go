package service

import (
	"errors"
	"testing"

	"psyscreen/internal/domain"
)

func TestDefaultCatalog_LoadsBuiltins(t *testing.T) {
	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("default catalog failed: %v", err)
	}

	if got := len(catalog.List()); got != 3 {
		t.Fatalf("expected 3 instruments, got %d", got)
	}

	phq, err := catalog.Get("phq9")
	if err != nil {
		t.Fatalf("get phq9: %v", err)
	}
	if len(phq.Questions) != 9 {
		t.Fatalf("expected 9 phq9 questions, got %d", len(phq.Questions))
	}
	if !phq.IsCritical("phq9_q9") {
		t.Fatalf("expected phq9_q9 to be critical")
	}

	tti, err := catalog.Get("tti12")
	if err != nil {
		t.Fatalf("get tti12: %v", err)
	}
	if len(tti.Pairs) != 4 {
		t.Fatalf("expected 4 pairs, got %d", len(tti.Pairs))
	}
	for _, pair := range tti.Pairs {
		if pair.Default != pair.Second {
			t.Fatalf("expected tie default to be second letter of %s/%s, got %q", pair.First, pair.Second, pair.Default)
		}
	}
}

func TestCatalogGet_UnknownInstrument(t *testing.T) {
	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("default catalog failed: %v", err)
	}
	if _, err := catalog.Get("mmpi"); !errors.Is(err, ErrInstrumentNotFound) {
		t.Fatalf("expected ErrInstrumentNotFound, got %v", err)
	}
}

func TestTierFor_InclusiveUpperBounds(t *testing.T) {
	catalog, _ := DefaultCatalog()
	phq, _ := catalog.Get("phq9")

	cases := []struct {
		total int
		want  string
	}{
		{0, "minimal"},
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
		got, err := TierFor(phq, tc.total)
		if err != nil {
			t.Fatalf("total %d: %v", tc.total, err)
		}
		if got != tc.want {
			t.Fatalf("total %d: expected %q, got %q", tc.total, tc.want, got)
		}
	}

	if _, err := TierFor(phq, 28); err == nil {
		t.Fatalf("expected error for total above the table")
	}
}

func TestNewCatalog_RejectsMalformedInstruments(t *testing.T) {
	options := []domain.Option{{Label: "No", Value: 0}, {Label: "Yes", Value: 1}}
	base := func() domain.Instrument {
		return domain.Instrument{
			ID:   "test",
			Mode: domain.ScoringSummed,
			Questions: []domain.Question{
				{ID: "q1", Prompt: "first", Options: options},
				{ID: "q2", Prompt: "second", Options: options},
			},
			Tiers: []domain.SeverityTier{{MaxScore: 2, Label: "ok"}},
		}
	}

	t.Run("valid baseline", func(t *testing.T) {
		if _, err := NewCatalog(base()); err != nil {
			t.Fatalf("expected baseline to validate, got %v", err)
		}
	})

	t.Run("duplicate question id", func(t *testing.T) {
		in := base()
		in.Questions[1].ID = "q1"
		if _, err := NewCatalog(in); err == nil {
			t.Fatalf("expected duplicate id rejection")
		}
	})

	t.Run("tiers not covering max total", func(t *testing.T) {
		in := base()
		in.Tiers = []domain.SeverityTier{{MaxScore: 1, Label: "low"}}
		if _, err := NewCatalog(in); err == nil {
			t.Fatalf("expected short threshold table rejection")
		}
	})

	t.Run("descending tiers", func(t *testing.T) {
		in := base()
		in.Tiers = []domain.SeverityTier{{MaxScore: 2, Label: "high"}, {MaxScore: 1, Label: "low"}}
		if _, err := NewCatalog(in); err == nil {
			t.Fatalf("expected descending tiers rejection")
		}
	})

	t.Run("critical id outside instrument", func(t *testing.T) {
		in := base()
		in.CriticalQuestionIDs = []string{"q9"}
		if _, err := NewCatalog(in); err == nil {
			t.Fatalf("expected unknown critical id rejection")
		}
	})

	t.Run("undeclared dimension letter", func(t *testing.T) {
		in := base()
		in.Mode = domain.ScoringDimensional
		in.Tiers = nil
		in.Pairs = []domain.DimensionPair{{First: "A", Second: "B", Default: "B"}}
		in.Questions[0].Options = []domain.Option{{Label: "a", Value: 0, Letter: "A"}, {Label: "x", Value: 1, Letter: "X"}}
		if _, err := NewCatalog(in); err == nil {
			t.Fatalf("expected undeclared letter rejection")
		}
	})

	t.Run("default outside pair", func(t *testing.T) {
		in := base()
		in.Mode = domain.ScoringDimensional
		in.Tiers = nil
		in.Pairs = []domain.DimensionPair{{First: "A", Second: "B", Default: "C"}}
		if _, err := NewCatalog(in); err == nil {
			t.Fatalf("expected foreign default rejection")
		}
	})
}
