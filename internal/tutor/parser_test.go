package tutor

import (
	"errors"
	"testing"

	"github.com/felixgeelhaar/gloss/internal/domain"
)

const parserSource = "a = 1\nb = 2\nprint(a + b)"

func TestParser_ParseExplanation(t *testing.T) {
	p := NewParser()
	index := domain.LineIndex(parserSource)

	t.Run("valid reply", func(t *testing.T) {
		reply := `{
			"summary": "Adds two numbers and prints the result.",
			"lines": [
				{"line_number": 3, "code": "stale", "explanation": "prints the sum"},
				{"line_number": 1, "code": "stale", "explanation": "assigns 1 to a"}
			]
		}`

		got, err := p.ParseExplanation(reply, index)
		if err != nil {
			t.Fatalf("ParseExplanation() error = %v", err)
		}
		if got.Summary != "Adds two numbers and prints the result." {
			t.Errorf("Summary = %q", got.Summary)
		}
		if len(got.Lines) != 2 {
			t.Fatalf("len(Lines) = %d, want 2", len(got.Lines))
		}
		if got.Lines[0].LineNumber != 1 || got.Lines[1].LineNumber != 3 {
			t.Errorf("lines not sorted by number: %+v", got.Lines)
		}
		if got.Lines[0].Code != "a = 1" {
			t.Errorf("Code = %q, want the submission's text, not the reply's", got.Lines[0].Code)
		}
	})

	t.Run("unknown and duplicate line numbers dropped", func(t *testing.T) {
		reply := `{
			"summary": "s",
			"lines": [
				{"line_number": 1, "explanation": "first"},
				{"line_number": 1, "explanation": "again"},
				{"line_number": 99, "explanation": "not in the source"}
			]
		}`

		got, err := p.ParseExplanation(reply, index)
		if err != nil {
			t.Fatalf("ParseExplanation() error = %v", err)
		}
		if len(got.Lines) != 1 {
			t.Fatalf("len(Lines) = %d, want 1", len(got.Lines))
		}
		if got.Lines[0].Explanation != "first" {
			t.Errorf("Explanation = %q, want the first occurrence kept", got.Lines[0].Explanation)
		}
	})

	t.Run("fenced reply unwrapped", func(t *testing.T) {
		reply := "```json\n{\"summary\": \"fenced\", \"lines\": []}\n```"

		got, err := p.ParseExplanation(reply, index)
		if err != nil {
			t.Fatalf("ParseExplanation() error = %v", err)
		}
		if got.Summary != "fenced" {
			t.Errorf("Summary = %q, want %q", got.Summary, "fenced")
		}
	})

	t.Run("summary only is valid", func(t *testing.T) {
		got, err := p.ParseExplanation(`{"summary": "prose only"}`, index)
		if err != nil {
			t.Fatalf("ParseExplanation() error = %v", err)
		}
		if len(got.Lines) != 0 {
			t.Errorf("len(Lines) = %d, want 0", len(got.Lines))
		}
	})

	t.Run("not JSON", func(t *testing.T) {
		_, err := p.ParseExplanation("Sure! Here is the explanation:", index)
		if !errors.Is(err, domain.ErrMalformedReply) {
			t.Errorf("error = %v, want ErrMalformedReply", err)
		}
	})

	t.Run("empty reply object", func(t *testing.T) {
		_, err := p.ParseExplanation(`{"summary": "", "lines": []}`, index)
		if !errors.Is(err, domain.ErrMalformedReply) {
			t.Errorf("error = %v, want ErrMalformedReply", err)
		}
	})

	t.Run("all line references unknown", func(t *testing.T) {
		reply := `{"summary": "", "lines": [{"line_number": 42, "explanation": "x"}]}`
		_, err := p.ParseExplanation(reply, index)
		if !errors.Is(err, domain.ErrMalformedReply) {
			t.Errorf("error = %v, want ErrMalformedReply", err)
		}
	})
}

func TestParser_ParseFix(t *testing.T) {
	p := NewParser()

	t.Run("valid reply", func(t *testing.T) {
		reply := `{
			"patches": [{"issue": "off by one", "explanation": "loop stops early", "patch": "use range(n + 1)"}],
			"fixed_code": "for i in range(n + 1):\n    print(i)"
		}`

		got, err := p.ParseFix(reply)
		if err != nil {
			t.Fatalf("ParseFix() error = %v", err)
		}
		if len(got.Patches) != 1 {
			t.Fatalf("len(Patches) = %d, want 1", len(got.Patches))
		}
		if got.Patches[0].Issue != "off by one" {
			t.Errorf("Issue = %q", got.Patches[0].Issue)
		}
		if got.FixedCode != "for i in range(n + 1):\n    print(i)" {
			t.Errorf("FixedCode = %q", got.FixedCode)
		}
	})

	t.Run("fenced fixed code unwrapped", func(t *testing.T) {
		reply := "{\"patches\": [], \"fixed_code\": \"```python\\nprint(1)\\n```\"}"

		got, err := p.ParseFix(reply)
		if err != nil {
			t.Fatalf("ParseFix() error = %v", err)
		}
		if got.FixedCode != "print(1)" {
			t.Errorf("FixedCode = %q, want fences stripped", got.FixedCode)
		}
	})

	t.Run("empty result is valid", func(t *testing.T) {
		got, err := p.ParseFix(`{"patches": [], "fixed_code": ""}`)
		if err != nil {
			t.Fatalf("ParseFix() error = %v", err)
		}
		if len(got.Patches) != 0 || got.FixedCode != "" {
			t.Errorf("got %+v, want empty fix", got)
		}
	})

	t.Run("hollow patch entries skipped", func(t *testing.T) {
		reply := `{"patches": [{"issue": "", "explanation": "", "patch": ""}], "fixed_code": ""}`

		got, err := p.ParseFix(reply)
		if err != nil {
			t.Fatalf("ParseFix() error = %v", err)
		}
		if len(got.Patches) != 0 {
			t.Errorf("len(Patches) = %d, want 0", len(got.Patches))
		}
	})

	t.Run("not JSON", func(t *testing.T) {
		_, err := p.ParseFix("I could not find any bugs.")
		if !errors.Is(err, domain.ErrMalformedReply) {
			t.Errorf("error = %v, want ErrMalformedReply", err)
		}
	})
}

func TestParser_ParsePractice(t *testing.T) {
	p := NewParser()

	t.Run("valid reply", func(t *testing.T) {
		reply := `{
			"questions": [
				{"title": "Sum a list", "prompt": "Write a function that sums a list.", "difficulty": "easy", "sample_solution": "sum(xs)"},
				{"title": "Reverse in place", "prompt": "Reverse a list without allocating.", "difficulty": "HARD", "sample_solution": "xs.reverse()"}
			]
		}`

		got, err := p.ParsePractice(reply)
		if err != nil {
			t.Fatalf("ParsePractice() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len(questions) = %d, want 2", len(got))
		}
		if got[0].Difficulty != domain.DifficultyEasy {
			t.Errorf("Difficulty = %q, want easy", got[0].Difficulty)
		}
		if got[1].Difficulty != domain.DifficultyHard {
			t.Errorf("Difficulty = %q, want hard after case folding", got[1].Difficulty)
		}
	})

	t.Run("unknown difficulty becomes medium", func(t *testing.T) {
		reply := `{"questions": [{"title": "t", "prompt": "p", "difficulty": "tricky"}]}`

		got, err := p.ParsePractice(reply)
		if err != nil {
			t.Fatalf("ParsePractice() error = %v", err)
		}
		if got[0].Difficulty != domain.DifficultyMedium {
			t.Errorf("Difficulty = %q, want medium", got[0].Difficulty)
		}
	})

	t.Run("hollow questions skipped", func(t *testing.T) {
		reply := `{"questions": [{"title": "", "prompt": "", "difficulty": "easy"}, {"title": "kept", "prompt": "p"}]}`

		got, err := p.ParsePractice(reply)
		if err != nil {
			t.Fatalf("ParsePractice() error = %v", err)
		}
		if len(got) != 1 || got[0].Title != "kept" {
			t.Errorf("got %+v, want only the non-empty question", got)
		}
	})

	t.Run("fenced sample solution unwrapped", func(t *testing.T) {
		reply := "{\"questions\": [{\"title\": \"t\", \"prompt\": \"p\", \"sample_solution\": \"```go\\nreturn n\\n```\"}]}"

		got, err := p.ParsePractice(reply)
		if err != nil {
			t.Fatalf("ParsePractice() error = %v", err)
		}
		if got[0].SampleSolution != "return n" {
			t.Errorf("SampleSolution = %q, want fences stripped", got[0].SampleSolution)
		}
	})

	t.Run("empty list is valid", func(t *testing.T) {
		got, err := p.ParsePractice(`{"questions": []}`)
		if err != nil {
			t.Fatalf("ParsePractice() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("len(questions) = %d, want 0", len(got))
		}
	})

	t.Run("not JSON", func(t *testing.T) {
		_, err := p.ParsePractice("Here are some questions:")
		if !errors.Is(err, domain.ErrMalformedReply) {
			t.Errorf("error = %v, want ErrMalformedReply", err)
		}
	})
}
