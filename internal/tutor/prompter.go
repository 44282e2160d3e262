package tutor

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/gloss/internal/domain"
)

// Prompter builds prompts for the LLM
type Prompter struct{}

// NewPrompter creates a new prompter
func NewPrompter() *Prompter {
	return &Prompter{}
}

// SystemPrompt returns the system prompt for a given skill level
func (p *Prompter) SystemPrompt(level domain.SkillLevel) string {
	base := `You are a patient programming tutor helping a learner understand code.
Answer with a single JSON object and nothing else: no prose around it, no code fences.

TONE based on learner skill level:`

	switch level {
	case domain.SkillBeginner:
		return base + `
- Assume no prior exposure to programming jargon
- Define every term the first time it appears
- Use short sentences and everyday analogies
- Never skip a step because it seems obvious`

	case domain.SkillIntermediate:
		return base + `
- Assume working knowledge of basic syntax and control flow
- Focus on intent, idioms and common pitfalls
- Point out standard library alternatives where they simplify the code`

	case domain.SkillAdvanced:
		return base + `
- Be concise and technical
- Focus on design trade-offs, complexity and edge cases
- Skip syntax explanations entirely`

	default:
		return base + `
- Match the depth of the explanation to the code at hand
- Prefer clarity over completeness`
	}
}

// BuildPrompt constructs the user prompt for an analysis
func (p *Prompter) BuildPrompt(action domain.Action, sub *domain.Submission) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## Language: %s\n\n", sub.Language))
	sb.WriteString(fmt.Sprintf("## Learner Level: %s\n\n", sub.Level))

	switch action {
	case domain.ActionExplain:
		// Numbered listing so line references stay verifiable
		sb.WriteString("## Source (numbered, blank lines omitted)\n\n")
		for line := range domain.Lines(sub.Source) {
			sb.WriteString(fmt.Sprintf("%d: %s\n", line.Number, line.Text))
		}
		sb.WriteString("\n")
	default:
		sb.WriteString(fmt.Sprintf("## Source\n\n```%s\n%s\n```\n\n", sub.Language, sub.Source))
	}

	sb.WriteString("## Your Task\n\n")
	sb.WriteString(p.taskInstruction(action))

	return sb.String()
}

func (p *Prompter) taskInstruction(action domain.Action) string {
	switch action {
	case domain.ActionExplain:
		return `Explain this code to the learner, line by line.
Return a JSON object with exactly these fields:
{"summary": "<one paragraph overview>", "lines": [{"line_number": <number from the listing>, "code": "<the line>", "explanation": "<what it does and why>"}]}
Cover every numbered line. Use only line numbers that appear in the listing.`

	case domain.ActionFix:
		return `Find bugs, risky constructs and style problems in this code.
Return a JSON object with exactly these fields:
{"patches": [{"issue": "<short name of the problem>", "explanation": "<why it is a problem>", "patch": "<diff or corrected snippet>"}], "fixed_code": "<the whole corrected source>"}
If the code needs no changes, return {"patches": [], "fixed_code": ""}.`

	case domain.ActionPractice:
		return `Write practice questions that exercise the concepts used in this code.
Return a JSON object with exactly these fields:
{"questions": [{"title": "<short name>", "prompt": "<the exercise text>", "difficulty": "easy|medium|hard", "sample_solution": "<reference solution>"}]}
Aim the difficulty at the learner's level.`

	default:
		return `Analyze this code for the learner and return your findings as a JSON object.`
	}
}
