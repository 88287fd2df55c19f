package domain

import "time"

// SessionStatus is the lifecycle state of an assessment session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// Answer is one recorded response; insertion order is answer order.
type Answer struct {
	QuestionID string `json:"question_id"`
	Value      int    `json:"value"`
}

// AssessmentSession is one user's pass through an instrument. A session is
// bound to exactly one instrument for its lifetime and each question id is
// recorded at most once.
type AssessmentSession struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	InstrumentID string        `json:"instrument_id"`
	Answers      []Answer      `json:"answers"`
	Position     int           `json:"position"`
	Status       SessionStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// AnswerValue returns the recorded value for a question id.
func (s AssessmentSession) AnswerValue(questionID string) (int, bool) {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return a.Value, true
		}
	}
	return 0, false
}

// AnswerMap returns the answers as a map keyed by question id.
func (s AssessmentSession) AnswerMap() map[string]int {
	m := make(map[string]int, len(s.Answers))
	for _, a := range s.Answers {
		m[a.QuestionID] = a.Value
	}
	return m
}
