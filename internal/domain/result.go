package domain

import "time"

// RiskFlagCritical marks an answer pattern requiring escalation regardless of
// the computed classification.
const RiskFlagCritical = "critical_indicator"

// AssessmentResult is the persisted outcome of one completed session.
// Results are append-only; SessionID is unique and enforces at-most-once
// persistence per session.
type AssessmentResult struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	InstrumentID    string    `json:"instrument_id"`
	SessionID       string    `json:"session_id"`
	Answers         []Answer  `json:"answers"`
	Classification  string    `json:"classification"`
	RiskFlags       []string  `json:"risk_flags"`
	Recommendations []string  `json:"recommendations"`
	CreatedAt       time.Time `json:"created_at"`
}

// HasRiskFlag reports whether the result carries the named flag.
func (r AssessmentResult) HasRiskFlag(flag string) bool {
	for _, f := range r.RiskFlags {
		if f == flag {
			return true
		}
	}
	return false
}
