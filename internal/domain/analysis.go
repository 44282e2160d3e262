package domain

import "strings"

// Action identifies one of the analyses the service performs on a submission.
type Action string

const (
	ActionExplain  Action = "explain"
	ActionFix      Action = "fix"
	ActionPractice Action = "practice"
)

// LineExplanation annotates a single source line. LineNumber always refers to
// a line present in the submission's line index.
type LineExplanation struct {
	LineNumber  int    `json:"line_number"`
	Code        string `json:"code"`
	Explanation string `json:"explanation"`
}

// Explanation is the outcome of explaining a submission. Lines may be empty
// when the provider answered with prose only; Summary then carries the whole
// explanation.
type Explanation struct {
	Summary string
	Lines   []LineExplanation
}

// IssuePatch describes one detected issue together with its suggested fix.
type IssuePatch struct {
	Issue       string `json:"issue"`
	Explanation string `json:"explanation"`
	Patch       string `json:"patch"`
}

// Fix is the outcome of a fix run. Both fields empty means the provider found
// nothing to change, which is a valid result.
type Fix struct {
	Patches   []IssuePatch
	FixedCode string
}

// Difficulty grades a practice question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// NormalizeDifficulty maps a raw grade onto the known set. Unknown or empty
// grades become medium.
func NormalizeDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// PracticeQuestion is one generated exercise derived from a submission.
type PracticeQuestion struct {
	Title          string     `json:"title"`
	Prompt         string     `json:"prompt"`
	Difficulty     Difficulty `json:"difficulty"`
	SampleSolution string     `json:"sample_solution"`
}

// VideoResource points at an external walkthrough video related to a
// submission.
type VideoResource struct {
	Title   string `json:"title"`
	VideoID string `json:"video_id"`
	URL     string `json:"url"`
}
