package tutor

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/gloss/internal/domain"
	"github.com/felixgeelhaar/gloss/internal/patch"
)

// ExplainResponse is the wire shape of an explanation. Explanation is only
// set when no per-line entries exist, so prose-only replies still surface.
type ExplainResponse struct {
	Summary       string                   `json:"summary"`
	Lines         []domain.LineExplanation `json:"lines"`
	Explanation   string                   `json:"explanation,omitempty"`
	RelatedVideos []domain.VideoResource   `json:"related_videos"`
}

// FixResponse is the wire shape of a fix analysis
type FixResponse struct {
	Patches   []domain.IssuePatch `json:"patches"`
	FixedCode string              `json:"fixed_code"`
}

// PracticeResponse is the wire shape of a practice analysis
type PracticeResponse struct {
	Questions []domain.PracticeQuestion `json:"questions"`
}

// Assembler builds wire responses out of parsed analysis results
type Assembler struct {
	synthesizer *patch.Synthesizer
}

// NewAssembler creates a new response assembler
func NewAssembler() *Assembler {
	return &Assembler{
		synthesizer: patch.NewSynthesizer(),
	}
}

// AssembleExplain combines an explanation with the optional video results.
// Collections are never nil so they marshal as [] instead of null.
func (a *Assembler) AssembleExplain(exp *domain.Explanation, videos []domain.VideoResource) (*ExplainResponse, error) {
	if exp == nil {
		return nil, fmt.Errorf("%w: missing explanation", domain.ErrAssembly)
	}

	lines := exp.Lines
	if lines == nil {
		lines = []domain.LineExplanation{}
	}
	for i := 1; i < len(lines); i++ {
		if lines[i].LineNumber <= lines[i-1].LineNumber {
			return nil, fmt.Errorf("%w: line numbers out of order", domain.ErrAssembly)
		}
	}

	if videos == nil {
		videos = []domain.VideoResource{}
	}

	resp := &ExplainResponse{
		Summary:       exp.Summary,
		Lines:         lines,
		RelatedVideos: videos,
	}
	if len(lines) == 0 {
		resp.Explanation = exp.Summary
	}

	return resp, nil
}

// AssembleFix builds the fix response. When the provider only returned a
// rewritten source, a unified diff patch is synthesized from it so the
// patches list still describes the change.
func (a *Assembler) AssembleFix(fix *domain.Fix, sub *domain.Submission) *FixResponse {
	patches := fix.Patches
	if len(patches) == 0 && strings.TrimSpace(fix.FixedCode) != "" {
		if p := a.synthesizer.Synthesize(sub.Language, sub.Source, fix.FixedCode); p != nil {
			patches = append(patches, *p)
		}
	}
	if patches == nil {
		patches = []domain.IssuePatch{}
	}

	return &FixResponse{
		Patches:   patches,
		FixedCode: fix.FixedCode,
	}
}

// AssemblePractice builds the practice response
func (a *Assembler) AssemblePractice(questions []domain.PracticeQuestion) *PracticeResponse {
	if questions == nil {
		questions = []domain.PracticeQuestion{}
	}
	return &PracticeResponse{Questions: questions}
}
