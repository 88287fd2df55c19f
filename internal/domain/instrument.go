package domain

// ScoringMode selects how a completed answer set is classified.
type ScoringMode string

const (
	// ScoringSummed totals the answer values and maps the total to a severity tier.
	ScoringSummed ScoringMode = "summed"
	// ScoringDimensional counts dimension letters per opposing pair and
	// concatenates the winning letters into a type code.
	ScoringDimensional ScoringMode = "dimensional"
)

// Option is one selectable answer for a question. Letter is only set for
// dimensional instruments and names the dimension the option counts toward.
type Option struct {
	Label  string `json:"label"`
	Value  int    `json:"value"`
	Letter string `json:"letter,omitempty"`
}

// Question is a single prompt within an instrument.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
}

// SeverityTier is one band of a summed instrument's threshold table.
// Bounds are inclusive and evaluated in ascending order.
type SeverityTier struct {
	MaxScore int    `json:"max_score"`
	Label    string `json:"label"`
}

// DimensionPair is one opposing letter pair of a dimensional instrument.
// Default resolves equal counts deterministically.
type DimensionPair struct {
	First   string `json:"first"`
	Second  string `json:"second"`
	Default string `json:"default"`
}

// Instrument is an ordered questionnaire definition with its scoring rule.
// Instances are immutable after catalog load.
type Instrument struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Mode        ScoringMode `json:"mode"`

	Questions []Question `json:"questions"`

	// Tiers applies to summed instruments only.
	Tiers []SeverityTier `json:"tiers,omitempty"`
	// Pairs applies to dimensional instruments only; slice order is the
	// canonical order of letters in the resulting type code.
	Pairs []DimensionPair `json:"pairs,omitempty"`

	// CriticalQuestionIDs lists questions whose answer above NeutralValue
	// forces an escalation flag regardless of the total score.
	CriticalQuestionIDs []string `json:"critical_question_ids,omitempty"`
	NeutralValue        int      `json:"neutral_value"`
}

// QuestionAt returns the question at a zero-based position, or nil when the
// position is past the end of the sequence.
func (in Instrument) QuestionAt(position int) *Question {
	if position < 0 || position >= len(in.Questions) {
		return nil
	}
	q := in.Questions[position]
	return &q
}

// IsCritical reports whether a question id is flagged as critical.
func (in Instrument) IsCritical(questionID string) bool {
	for _, id := range in.CriticalQuestionIDs {
		if id == questionID {
			return true
		}
	}
	return false
}

// AllowsValue reports whether value is among the question's option values.
func (q Question) AllowsValue(value int) bool {
	for _, opt := range q.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// LetterFor returns the dimension letter attached to the option with the
// given value, or the empty string if none matches.
func (q Question) LetterFor(value int) string {
	for _, opt := range q.Options {
		if opt.Value == value {
			return opt.Letter
		}
	}
	return ""
}
