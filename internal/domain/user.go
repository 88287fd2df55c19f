package domain

import "time"

// UserProfile is the denormalized per-user view maintained as a side effect
// of persisting results. TotalAssessments equals the count of stored results
// for the user.
type UserProfile struct {
	UserID           string     `json:"user_id"`
	DisplayName      string     `json:"display_name,omitempty"`
	LastAssessmentAt *time.Time `json:"last_assessment_at,omitempty"`
	RiskLevel        string     `json:"risk_level,omitempty"`
	TotalAssessments int        `json:"total_assessments"`
}
