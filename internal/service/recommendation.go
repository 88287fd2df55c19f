package service

import "psyscreen/internal/domain"

// maxRecommendations caps the advice list the channel renders.
const maxRecommendations = 6

// criticalRecommendation is always the first entry when the critical
// indicator is raised.
const criticalRecommendation = "Seek immediate help: contact a mental health professional or a crisis helpline right now."

// tierAdvice maps severity tiers and type codes to ordered advice, mildest
// tiers first within each list.
var tierAdvice = map[string][]string{
	"minimal": {
		"Keep up the positive activities that work for you.",
		"Maintain a healthy sleep routine.",
		"Stay socially connected with friends and family.",
	},
	"mild": {
		"Build small daily routines that lift your mood.",
		"Get regular physical exercise.",
		"Practice relaxation techniques such as breathing exercises.",
		"Talk about how you feel with someone you trust.",
	},
	"moderate": {
		"Consider talking to a mental health professional.",
		"Exercise daily, even a short walk helps.",
		"Learn and practice relaxation techniques.",
		"Keep a regular sleep schedule.",
	},
	"moderately-severe": {
		"Consult a mental health professional soon.",
		"Discuss treatment options with a clinician.",
		"Ask family or friends for support.",
		"Avoid making major decisions while feeling this way.",
	},
	"severe": {
		"Consult a psychiatrist or psychologist promptly.",
		"Discuss medication and therapy options with a clinician.",
		"Ask family or friends for support.",
		"Do not face this alone; professional help works.",
	},
}

// typeAdvice is the generic guidance attached to dimensional classifications.
var typeAdvice = []string{
	"Your type reflects preferences, not abilities or limits.",
	"Lean on your natural strengths in work and relationships.",
	"Practice the opposite preference in low-stakes situations to stay flexible.",
}

// Recommend maps a classification and risk flags to an ordered advice list of
// at most maxRecommendations entries. The critical entry, when present, is
// always first.
func Recommend(classification string, flags []string) []string {
	base, ok := tierAdvice[classification]
	if !ok {
		base = typeAdvice
	}

	out := make([]string, 0, len(base)+1)
	if hasFlag(flags, domain.RiskFlagCritical) {
		out = append(out, criticalRecommendation)
	}
	out = append(out, base...)
	if len(out) > maxRecommendations {
		out = out[:maxRecommendations]
	}
	return out
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}
