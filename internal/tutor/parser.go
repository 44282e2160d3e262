package tutor

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/felixgeelhaar/gloss/internal/domain"
	"github.com/felixgeelhaar/gloss/internal/patch"
)

// Parser turns raw model replies into domain results. Replies that do not
// honor the JSON contract count as provider failures, not user errors.
type Parser struct {
	extractor *patch.Extractor
}

// NewParser creates a new reply parser
func NewParser() *Parser {
	return &Parser{
		extractor: patch.NewExtractor(),
	}
}

type explainReply struct {
	Summary string `json:"summary"`
	Lines   []struct {
		LineNumber  int    `json:"line_number"`
		Code        string `json:"code"`
		Explanation string `json:"explanation"`
	} `json:"lines"`
}

type fixReply struct {
	Patches []struct {
		Issue       string `json:"issue"`
		Explanation string `json:"explanation"`
		Patch       string `json:"patch"`
	} `json:"patches"`
	FixedCode string `json:"fixed_code"`
}

type practiceReply struct {
	Questions []struct {
		Title          string `json:"title"`
		Prompt         string `json:"prompt"`
		Difficulty     string `json:"difficulty"`
		SampleSolution string `json:"sample_solution"`
	} `json:"questions"`
}

// ParseExplanation decodes an explain reply. Line entries whose number is not
// in the submission's line index are dropped, and the code text is taken from
// the index rather than the reply so it always matches the submission.
func (p *Parser) ParseExplanation(reply string, index map[int]domain.Line) (*domain.Explanation, error) {
	var parsed explainReply
	if err := p.unmarshal(reply, &parsed); err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(parsed.Lines))
	lines := make([]domain.LineExplanation, 0, len(parsed.Lines))
	for _, l := range parsed.Lines {
		src, ok := index[l.LineNumber]
		if !ok || seen[l.LineNumber] {
			continue
		}
		seen[l.LineNumber] = true
		lines = append(lines, domain.LineExplanation{
			LineNumber:  l.LineNumber,
			Code:        src.Text,
			Explanation: l.Explanation,
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].LineNumber < lines[j].LineNumber })

	if parsed.Summary == "" && len(lines) == 0 {
		return nil, fmt.Errorf("%w: reply carried no explanation", domain.ErrMalformedReply)
	}

	return &domain.Explanation{
		Summary: parsed.Summary,
		Lines:   lines,
	}, nil
}

// ParseFix decodes a fix reply. An empty result is valid: it means the
// provider found nothing to change.
func (p *Parser) ParseFix(reply string) (*domain.Fix, error) {
	var parsed fixReply
	if err := p.unmarshal(reply, &parsed); err != nil {
		return nil, err
	}

	patches := make([]domain.IssuePatch, 0, len(parsed.Patches))
	for _, pr := range parsed.Patches {
		if pr.Issue == "" && pr.Explanation == "" && pr.Patch == "" {
			continue
		}
		patches = append(patches, domain.IssuePatch{
			Issue:       pr.Issue,
			Explanation: pr.Explanation,
			Patch:       p.extractor.StripFences(pr.Patch),
		})
	}

	return &domain.Fix{
		Patches:   patches,
		FixedCode: p.extractor.StripFences(parsed.FixedCode),
	}, nil
}

// ParsePractice decodes a practice reply. An empty question list is valid.
func (p *Parser) ParsePractice(reply string) ([]domain.PracticeQuestion, error) {
	var parsed practiceReply
	if err := p.unmarshal(reply, &parsed); err != nil {
		return nil, err
	}

	questions := make([]domain.PracticeQuestion, 0, len(parsed.Questions))
	for _, q := range parsed.Questions {
		if q.Title == "" && q.Prompt == "" {
			continue
		}
		questions = append(questions, domain.PracticeQuestion{
			Title:          q.Title,
			Prompt:         q.Prompt,
			Difficulty:     domain.NormalizeDifficulty(q.Difficulty),
			SampleSolution: p.extractor.StripFences(q.SampleSolution),
		})
	}

	return questions, nil
}

func (p *Parser) unmarshal(reply string, v any) error {
	raw := p.extractor.StripFences(reply)
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}
	return nil
}
