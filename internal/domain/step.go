package domain

// NextQuestion is the outbound view of the prompt the channel should render
// next. Number is one-based for display.
type NextQuestion struct {
	QuestionID string   `json:"question_id"`
	Prompt     string   `json:"prompt"`
	Options    []Option `json:"options"`
	Number     int      `json:"number"`
	Total      int      `json:"total"`
}

// AssessmentComplete is the terminal view returned once a session finishes.
type AssessmentComplete struct {
	Classification  string   `json:"classification"`
	RiskFlags       []string `json:"risk_flags"`
	Recommendations []string `json:"recommendations"`
}

// StepResult is the outcome of a session event: exactly one of Next or Done
// is set.
type StepResult struct {
	SessionID string              `json:"session_id"`
	Next      *NextQuestion       `json:"next,omitempty"`
	Done      *AssessmentComplete `json:"done,omitempty"`
}

// NextQuestionView builds the outbound view for the question at a position.
func NextQuestionView(in Instrument, position int) *NextQuestion {
	q := in.QuestionAt(position)
	if q == nil {
		return nil
	}
	return &NextQuestion{
		QuestionID: q.ID,
		Prompt:     q.Prompt,
		Options:    q.Options,
		Number:     position + 1,
		Total:      len(in.Questions),
	}
}
