package tutor

import (
	"context"

	"github.com/felixgeelhaar/gloss/internal/domain"
)

// TutorService defines the analyses exposed to transports
type TutorService interface {
	// Explain produces a line-by-line explanation of the submission
	Explain(ctx context.Context, sub *domain.Submission) (*ExplainResponse, error)

	// Fix reviews the submission and proposes corrections
	Fix(ctx context.Context, sub *domain.Submission) (*FixResponse, error)

	// Practice generates exercises derived from the submission
	Practice(ctx context.Context, sub *domain.Submission) (*PracticeResponse, error)
}

// Ensure Service implements TutorService
var _ TutorService = (*Service)(nil)
