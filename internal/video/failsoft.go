package video

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/gloss/internal/domain"
)

// FailSoft wraps a Provider so search failures degrade to an empty result
// instead of failing the analysis
type FailSoft struct {
	provider Provider
	logger   *slog.Logger
}

// NewFailSoft creates a fail-soft wrapper around a provider
func NewFailSoft(p Provider) *FailSoft {
	return &FailSoft{
		provider: p,
		logger:   slog.Default(),
	}
}

func (f *FailSoft) Name() string {
	return f.provider.Name()
}

func (f *FailSoft) Search(ctx context.Context, query string, maxResults int) ([]domain.VideoResource, error) {
	videos, err := f.provider.Search(ctx, query, maxResults)
	if err != nil {
		f.logger.Warn("video search failed",
			"provider", f.provider.Name(),
			"query", query,
			"error", err)
		return nil, nil
	}
	return videos, nil
}

var _ Provider = (*FailSoft)(nil)
