package video

import (
	"context"
	"strings"

	"github.com/felixgeelhaar/gloss/internal/domain"
)

// Provider finds tutorial videos related to a code submission
type Provider interface {
	// Name returns the provider name
	Name() string

	// Search returns up to maxResults videos matching the query
	Search(ctx context.Context, query string, maxResults int) ([]domain.VideoResource, error)
}

const maxQueryLen = 50

// SearchQuery derives a search query from a submission: the first non-blank
// line of the source, truncated. Validated submissions always have one.
func SearchQuery(sub *domain.Submission) string {
	for line := range domain.Lines(sub.Source) {
		return truncate(strings.TrimSpace(line.Text), maxQueryLen)
	}
	return string(sub.Language)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
