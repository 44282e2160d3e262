package video

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/felixgeelhaar/gloss/internal/domain"
)

const (
	defaultMaxResults = 3
	maxResultsCap     = 5
)

// YouTubeProvider implements the Provider interface using the YouTube Data API
type YouTubeProvider struct {
	opts []option.ClientOption
}

// YouTubeConfig holds configuration for the YouTube provider
type YouTubeConfig struct {
	APIKey   string
	Endpoint string // overrides the API endpoint, for tests
}

// NewYouTubeProvider creates a new YouTube provider
func NewYouTubeProvider(cfg YouTubeConfig) *YouTubeProvider {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	return &YouTubeProvider{opts: opts}
}

func (p *YouTubeProvider) Name() string {
	return "youtube"
}

// Search queries the YouTube Data API for videos matching the query.
// The service client is cheap to construct, so one is built per call and
// the request context governs its lifetime.
func (p *YouTubeProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.VideoResource, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if maxResults > maxResultsCap {
		maxResults = maxResultsCap
	}

	svc, err := youtube.NewService(ctx, p.opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	resp, err := svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("search videos: %w", err)
	}

	videos := make([]domain.VideoResource, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		title := ""
		if item.Snippet != nil {
			title = item.Snippet.Title
		}
		videos = append(videos, domain.VideoResource{
			Title:   title,
			VideoID: item.Id.VideoId,
			URL:     watchURL(item.Id.VideoId),
		})
	}

	return videos, nil
}

// watchURL builds a playable URL. Some feeds return full URLs as IDs, keep
// those verbatim.
func watchURL(id string) string {
	if strings.HasPrefix(id, "http") {
		return id
	}
	return "https://www.youtube.com/watch?v=" + id
}

var _ Provider = (*YouTubeProvider)(nil)
