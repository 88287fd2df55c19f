package service

import (
	"fmt"
	"strings"

	"psyscreen/internal/domain"
)

// Score turns a completed answer set into a classification plus risk flags.
// It is a pure function over the instrument definition and the answers.
func Score(in domain.Instrument, answers map[string]int) (string, []string, error) {
	var classification string
	var err error

	switch in.Mode {
	case domain.ScoringSummed:
		classification, err = scoreSummed(in, answers)
	case domain.ScoringDimensional:
		classification, err = scoreDimensional(in, answers)
	default:
		err = fmt.Errorf("unknown scoring mode %q", in.Mode)
	}
	if err != nil {
		return "", nil, err
	}

	return classification, riskFlags(in, answers), nil
}

func scoreSummed(in domain.Instrument, answers map[string]int) (string, error) {
	total := 0
	for _, v := range answers {
		total += v
	}
	return TierFor(in, total)
}

func scoreDimensional(in domain.Instrument, answers map[string]int) (string, error) {
	counts := make(map[string]int)
	for _, q := range in.Questions {
		value, ok := answers[q.ID]
		if !ok {
			continue
		}
		if letter := q.LetterFor(value); letter != "" {
			counts[letter]++
		}
	}

	var code strings.Builder
	for _, pair := range in.Pairs {
		switch {
		case counts[pair.First] > counts[pair.Second]:
			code.WriteString(pair.First)
		case counts[pair.Second] > counts[pair.First]:
			code.WriteString(pair.Second)
		default:
			code.WriteString(pair.Default)
		}
	}
	return code.String(), nil
}

// riskFlags raises the critical indicator when any critical question was
// answered above the instrument's neutral value, independent of the score.
func riskFlags(in domain.Instrument, answers map[string]int) []string {
	var flags []string
	for _, id := range in.CriticalQuestionIDs {
		if v, ok := answers[id]; ok && v > in.NeutralValue {
			flags = append(flags, domain.RiskFlagCritical)
			break
		}
	}
	return flags
}
