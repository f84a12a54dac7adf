package score

import "math"

// Scoring tables for the enum questions of the dev-profile questionnaire.
// Unknown but answered values fall back to the middle-of-the-road default.
var (
	experienceScores = map[string]int{
		"junior":       4,
		"intermediate": 7,
		"senior":       9,
		"expert":       10,
	}
	specializationScores = map[string]int{
		"frontend":  8,
		"backend":   8,
		"fullstack": 10,
		"mobile":    7,
		"devops":    9,
	}
	projectScores = map[string]int{
		"startup":     3,
		"product":     4,
		"agency":      2,
		"open-source": 5,
		"enterprise":  3,
	}
)

// Every answered question is normalized against a flat 10-point ceiling,
// even where its own cap is lower. Observable behavior of the original
// scoring, kept as-is.
const maxScorePerQuestion = 10

// TotalScore maps a response set to a score in [0,100]. It only looks at
// the questions that carry weight (q1-q3, q4, q7, q8, q10, q14); unknown
// keys are ignored. Pure and total: malformed values degrade to their
// default branch, an empty map scores 0, and the same input always yields
// the same output.
func TotalScore(responses map[string]any) int {
	total := 0
	answered := 0

	// q1: name, fixed credit for answering
	if v := Extract(responses["q1"], false); v.Answered() {
		total += 2
		answered++
	}

	// q2: experience level
	if v := Extract(responses["q2"], false); v.Answered() {
		total += lookup(experienceScores, v.Scalar, 5)
		answered++
	}

	// q3: specialization
	if v := Extract(responses["q3"], false); v.Answered() {
		total += lookup(specializationScores, v.Scalar, 6)
		answered++
	}

	// q4: frontend technologies
	if v := Extract(responses["q4"], true); v.Answered() {
		total += TechStackScore(v.AsList(), 8)
		answered++
	}

	// q7: backend technologies
	if v := Extract(responses["q7"], true); v.Answered() {
		total += TechStackScore(v.AsList(), 8)
		answered++
	}

	// q8: databases
	if v := Extract(responses["q8"], true); v.Answered() {
		total += TechStackScore(v.AsList(), 6)
		answered++
	}

	// q10: devops tooling
	if v := Extract(responses["q10"], true); v.Answered() {
		total += TechStackScore(v.AsList(), 4)
		answered++
	}

	// q14: project type
	if v := Extract(responses["q14"], false); v.Answered() {
		total += lookup(projectScores, v.Scalar, 2)
		answered++
	}

	maxPossible := answered * maxScorePerQuestion
	normalized := 0
	if maxPossible > 0 {
		normalized = int(math.Round(float64(total) / float64(maxPossible) * 100))
	}

	final := normalized + completionBonus(answered)
	if final > 100 {
		final = 100
	}
	return final
}

// TechStackScore scores a multi-select technology question: two points per
// selection up to limit, plus a two-point bonus for three or more
// selections, the sum capped at limit again.
func TechStackScore(techs []string, limit int) int {
	if len(techs) == 0 {
		return 0
	}
	base := len(techs) * 2
	if base > limit {
		base = limit
	}
	bonus := 0
	if len(techs) >= 3 {
		bonus = 2
	}
	if base+bonus > limit {
		return limit
	}
	return base + bonus
}

func completionBonus(answered int) int {
	switch {
	case answered >= 8:
		return 10
	case answered >= 6:
		return 5
	case answered >= 4:
		return 2
	default:
		return 0
	}
}

func lookup(table map[string]int, key string, fallback int) int {
	if s, ok := table[key]; ok {
		return s
	}
	return fallback
}
