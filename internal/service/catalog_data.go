package service

import (
	"fmt"

	"psyscreen/internal/domain"
)

// Frequency scale shared by the symptom screeners ("over the last two weeks,
// how often have you been bothered by...").
var frequencyOptions = []domain.Option{
	{Label: "Not at all", Value: 0},
	{Label: "Several days", Value: 1},
	{Label: "More than half the days", Value: 2},
	{Label: "Nearly every day", Value: 3},
}

// DefaultCatalog returns the built-in instrument registry: the PHQ-9
// depression screener, the GAD-7 anxiety screener, and a short
// personality-type indicator.
func DefaultCatalog() (*Catalog, error) {
	return NewCatalog(phq9(), gad7(), tti12())
}

func phq9() domain.Instrument {
	prompts := []string{
		"Little interest or pleasure in doing things",
		"Feeling down, depressed, or hopeless",
		"Trouble falling or staying asleep, or sleeping too much",
		"Feeling tired or having little energy",
		"Poor appetite or overeating",
		"Feeling bad about yourself",
		"Trouble concentrating on things",
		"Moving or speaking noticeably slowly, or the opposite",
		"Thoughts of self-harm or that you would be better off dead",
	}
	questions := make([]domain.Question, len(prompts))
	for i, p := range prompts {
		questions[i] = domain.Question{
			ID:      questionID("phq9", i+1),
			Prompt:  p,
			Options: frequencyOptions,
		}
	}
	return domain.Instrument{
		ID:          "phq9",
		Title:       "PHQ-9 Depression Screener",
		Description: "Nine-item screener for depressive symptoms over the past two weeks.",
		Mode:        domain.ScoringSummed,
		Questions:   questions,
		Tiers: []domain.SeverityTier{
			{MaxScore: 4, Label: "minimal"},
			{MaxScore: 9, Label: "mild"},
			{MaxScore: 14, Label: "moderate"},
			{MaxScore: 19, Label: "moderately-severe"},
			{MaxScore: 27, Label: "severe"},
		},
		CriticalQuestionIDs: []string{"phq9_q9"},
	}
}

func gad7() domain.Instrument {
	prompts := []string{
		"Feeling nervous, anxious, or on edge",
		"Not being able to stop or control worrying",
		"Worrying too much about different things",
		"Trouble relaxing",
		"Being so restless that it is hard to sit still",
		"Becoming easily annoyed or irritable",
		"Feeling afraid, as if something awful might happen",
	}
	questions := make([]domain.Question, len(prompts))
	for i, p := range prompts {
		questions[i] = domain.Question{
			ID:      questionID("gad7", i+1),
			Prompt:  p,
			Options: frequencyOptions,
		}
	}
	return domain.Instrument{
		ID:          "gad7",
		Title:       "GAD-7 Anxiety Screener",
		Description: "Seven-item screener for generalized anxiety over the past two weeks.",
		Mode:        domain.ScoringSummed,
		Questions:   questions,
		Tiers: []domain.SeverityTier{
			{MaxScore: 4, Label: "minimal"},
			{MaxScore: 9, Label: "mild"},
			{MaxScore: 14, Label: "moderate"},
			{MaxScore: 21, Label: "severe"},
		},
	}
}

// tti12 is a twelve-item type indicator: three questions per dimension in
// canonical pair order. Ties resolve toward the second letter of each pair.
func tti12() domain.Instrument {
	type item struct {
		prompt string
		first  string // option label counting toward the pair's first letter
		second string
		pair   int
	}
	items := []item{
		{"After a busy social day, you usually feel", "Energized", "Drained", 0},
		{"In group conversations you tend to", "Speak up early", "Listen first", 0},
		{"Meeting new people is something you find", "Exciting", "Tiring", 0},
		{"When learning something new, you prefer", "Concrete examples", "Big-picture theory", 1},
		{"You trust information that is", "Tested in practice", "Imagined as possibility", 1},
		{"Your attention usually goes to", "What is in front of you", "What could be", 1},
		{"When deciding, you weigh most heavily", "Consistency and logic", "Impact on people", 2},
		{"Honest criticism should above all be", "Accurate", "Kind", 2},
		{"In a disagreement you first look for", "The flaw in the argument", "Common ground", 2},
		{"Your workspace is usually", "Planned and tidy", "Flexible and improvised", 3},
		{"Deadlines are for you", "Fixed commitments", "Helpful suggestions", 3},
		{"Before a trip you prefer", "A detailed itinerary", "Seeing where the day goes", 3},
	}
	pairs := []domain.DimensionPair{
		{First: "E", Second: "I", Default: "I"},
		{First: "S", Second: "N", Default: "N"},
		{First: "T", Second: "F", Default: "F"},
		{First: "J", Second: "P", Default: "P"},
	}
	questions := make([]domain.Question, len(items))
	for i, it := range items {
		p := pairs[it.pair]
		questions[i] = domain.Question{
			ID:     questionID("tti12", i+1),
			Prompt: it.prompt,
			Options: []domain.Option{
				{Label: it.first, Value: 0, Letter: p.First},
				{Label: it.second, Value: 1, Letter: p.Second},
			},
		}
	}
	return domain.Instrument{
		ID:          "tti12",
		Title:       "Type Indicator (12 items)",
		Description: "Short personality-typing instrument across four opposing dimensions.",
		Mode:        domain.ScoringDimensional,
		Questions:   questions,
		Pairs:       pairs,
	}
}

func questionID(instrumentID string, number int) string {
	return fmt.Sprintf("%s_q%d", instrumentID, number)
}
