package tutor

import (
	"strings"
	"testing"

	"github.com/felixgeelhaar/gloss/internal/domain"
)

func TestPrompter_SystemPrompt(t *testing.T) {
	p := NewPrompter()

	tests := []struct {
		name  string
		level domain.SkillLevel
		want  string
	}{
		{"beginner defines terms", domain.SkillBeginner, "Define every term"},
		{"intermediate focuses on idioms", domain.SkillIntermediate, "common pitfalls"},
		{"advanced skips syntax", domain.SkillAdvanced, "Skip syntax explanations"},
		{"unknown level gets neutral tone", domain.SkillLevel("wizard"), "Match the depth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.SystemPrompt(tt.level)
			if !strings.Contains(got, "single JSON object") {
				t.Error("system prompt should demand a JSON-only answer")
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("system prompt for %s missing %q", tt.level, tt.want)
			}
		})
	}
}

func TestPrompter_BuildPrompt_Explain(t *testing.T) {
	p := NewPrompter()
	sub := &domain.Submission{
		Source:   "x = 1\n\nprint(x)",
		Language: domain.LanguagePython,
		Level:    domain.SkillBeginner,
	}

	got := p.BuildPrompt(domain.ActionExplain, sub)

	for _, want := range []string{
		"## Language: python",
		"## Learner Level: beginner",
		"## Source (numbered, blank lines omitted)",
		"1: x = 1",
		"3: print(x)",
		"## Your Task",
		"line_number",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("explain prompt missing %q", want)
		}
	}
	if strings.Contains(got, "2:") {
		t.Error("blank line should not appear in the listing")
	}
	if strings.Contains(got, "```") {
		t.Error("explain prompt should list lines, not fence the source")
	}
}

func TestPrompter_BuildPrompt_Fix(t *testing.T) {
	p := NewPrompter()
	sub := &domain.Submission{
		Source:   "def f():\n    pass",
		Language: domain.LanguagePython,
		Level:    domain.SkillIntermediate,
	}

	got := p.BuildPrompt(domain.ActionFix, sub)

	if !strings.Contains(got, "```python\ndef f():\n    pass\n```") {
		t.Error("fix prompt should fence the source with its language")
	}
	if !strings.Contains(got, "fixed_code") {
		t.Error("fix prompt missing the reply schema")
	}
	if !strings.Contains(got, `{"patches": [], "fixed_code": ""}`) {
		t.Error("fix prompt should spell out the no-changes reply")
	}
}

func TestPrompter_BuildPrompt_Practice(t *testing.T) {
	p := NewPrompter()
	sub := &domain.Submission{
		Source:   "for i in range(3): print(i)",
		Language: domain.LanguagePython,
		Level:    domain.SkillAdvanced,
	}

	got := p.BuildPrompt(domain.ActionPractice, sub)

	if !strings.Contains(got, "sample_solution") {
		t.Error("practice prompt missing the reply schema")
	}
	if !strings.Contains(got, "easy|medium|hard") {
		t.Error("practice prompt should constrain difficulty values")
	}
	if !strings.Contains(got, "Aim the difficulty at the learner's level.") {
		t.Error("practice prompt should tie difficulty to the learner")
	}
}
