package tutor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/gloss/internal/domain"
	"github.com/felixgeelhaar/gloss/internal/llm"
	"github.com/felixgeelhaar/gloss/internal/video"
)

const (
	defaultTimeout     = 60 * time.Second
	videoTimeout       = 10 * time.Second
	defaultTemperature = 0.7
	defaultMaxVideos   = 3
)

// Config tunes a tutoring service
type Config struct {
	// Actions pins an action to a provider name; unlisted actions use the
	// registry default
	Actions map[string]string

	// Timeout bounds the mandatory provider call per analysis
	Timeout time.Duration

	// MaxVideos caps video results per explanation
	MaxVideos int
}

// Service orchestrates code analyses across providers
type Service struct {
	registry  llm.LLMRegistry
	actions   map[string]string
	timeout   time.Duration
	maxVideos int

	prompter  *Prompter
	parser    *Parser
	assembler *Assembler

	video  video.Provider
	events *domain.EventDispatcher
	logger *slog.Logger
}

// NewService creates a new tutoring service
func NewService(registry llm.LLMRegistry, cfg Config) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxVideos := cfg.MaxVideos
	if maxVideos <= 0 {
		maxVideos = defaultMaxVideos
	}

	return &Service{
		registry:  registry,
		actions:   cfg.Actions,
		timeout:   timeout,
		maxVideos: maxVideos,
		prompter:  NewPrompter(),
		parser:    NewParser(),
		assembler: NewAssembler(),
		events:    domain.NewEventDispatcher(),
		logger:    slog.Default(),
	}
}

// SetVideoProvider enables related-video lookup for explanations
func (s *Service) SetVideoProvider(p video.Provider) {
	s.video = p
}

// Events returns the dispatcher analyses publish their lifecycle events on
func (s *Service) Events() *domain.EventDispatcher {
	return s.events
}

// Explain produces a line-by-line explanation of the submission. Video
// lookup runs concurrently with the provider call and never fails the
// analysis.
func (s *Service) Explain(ctx context.Context, sub *domain.Submission) (*ExplainResponse, error) {
	t := NewTracker(domain.ActionExplain)

	provider, err := s.admit(t, sub)
	if err != nil {
		s.finish(t, sub, "", err)
		return nil, err
	}

	var videoCh chan []domain.VideoResource
	if s.video != nil && sub.Options.IncludeVideos {
		videoCh = make(chan []domain.VideoResource, 1)
		vctx, vcancel := context.WithTimeout(ctx, videoTimeout)
		go func() {
			defer vcancel()
			videos, _ := s.video.Search(vctx, video.SearchQuery(sub), s.maxVideos)
			videoCh <- videos
		}()
	}

	reply, err := s.generate(ctx, t, provider, sub)
	if err != nil {
		s.finish(t, sub, provider.Name(), err)
		return nil, err
	}

	explanation, err := s.parser.ParseExplanation(reply, domain.LineIndex(sub.Source))
	if err != nil {
		s.finish(t, sub, provider.Name(), err)
		return nil, err
	}

	var videos []domain.VideoResource
	if videoCh != nil {
		videos = <-videoCh
	}

	resp, err := s.assembler.AssembleExplain(explanation, videos)
	if err != nil {
		s.finish(t, sub, provider.Name(), err)
		return nil, err
	}
	t.To(StateAssembled)

	s.finish(t, sub, provider.Name(), nil)
	return resp, nil
}

// Fix reviews the submission and proposes corrections
func (s *Service) Fix(ctx context.Context, sub *domain.Submission) (*FixResponse, error) {
	t := NewTracker(domain.ActionFix)

	provider, err := s.admit(t, sub)
	if err != nil {
		s.finish(t, sub, "", err)
		return nil, err
	}

	reply, err := s.generate(ctx, t, provider, sub)
	if err != nil {
		s.finish(t, sub, provider.Name(), err)
		return nil, err
	}

	fix, err := s.parser.ParseFix(reply)
	if err != nil {
		s.finish(t, sub, provider.Name(), err)
		return nil, err
	}

	resp := s.assembler.AssembleFix(fix, sub)
	t.To(StateAssembled)

	s.finish(t, sub, provider.Name(), nil)
	return resp, nil
}

// Practice generates exercises derived from the submission
func (s *Service) Practice(ctx context.Context, sub *domain.Submission) (*PracticeResponse, error) {
	t := NewTracker(domain.ActionPractice)

	provider, err := s.admit(t, sub)
	if err != nil {
		s.finish(t, sub, "", err)
		return nil, err
	}

	reply, err := s.generate(ctx, t, provider, sub)
	if err != nil {
		s.finish(t, sub, provider.Name(), err)
		return nil, err
	}

	questions, err := s.parser.ParsePractice(reply)
	if err != nil {
		s.finish(t, sub, provider.Name(), err)
		return nil, err
	}

	resp := s.assembler.AssemblePractice(questions)
	t.To(StateAssembled)

	s.finish(t, sub, provider.Name(), nil)
	return resp, nil
}

// admit validates the submission and picks the provider for the analysis
func (s *Service) admit(t *Tracker, sub *domain.Submission) (llm.Provider, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	t.To(StateValidated)

	if sub.Options.SafeRun {
		s.logger.Debug("code execution not enabled, ignoring safe_run",
			"analysis_id", t.ID())
	}

	return s.resolve(t.Action())
}

// resolve picks the provider for an action: the pinned one when configured
// and registered, otherwise the registry default
func (s *Service) resolve(action domain.Action) (llm.Provider, error) {
	if name := s.actions[string(action)]; name != "" {
		p, err := s.registry.Get(name)
		if err == nil {
			return p, nil
		}
		s.logger.Warn("pinned provider not registered, using default",
			"action", action,
			"provider", name)
	}

	p, err := s.registry.Default()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	return p, nil
}

// generate runs the mandatory provider call under the analysis timeout
func (s *Service) generate(ctx context.Context, t *Tracker, provider llm.Provider, sub *domain.Submission) (string, error) {
	prompt := s.prompter.BuildPrompt(t.Action(), sub)

	gctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	t.To(StateDispatched)
	resp, err := provider.Generate(gctx, &llm.Request{
		System:      s.prompter.SystemPrompt(sub.Level),
		Prompt:      prompt,
		MaxTokens:   sub.Options.MaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return "", fmt.Errorf("%w after %s", domain.ErrProviderTimeout, s.timeout)
		case errors.Is(err, context.Canceled):
			return "", err
		default:
			return "", fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
		}
	}

	return resp.Content, nil
}

// finish closes out an analysis: final state, log line, lifecycle event
func (s *Service) finish(t *Tracker, sub *domain.Submission, provider string, err error) {
	elapsed := t.Elapsed()

	if err != nil {
		t.To(StateErrored)
		s.logger.Error("analysis failed",
			"analysis_id", t.ID(),
			"action", t.Action(),
			"language", sub.Language,
			"provider", provider,
			"duration_ms", elapsed.Milliseconds(),
			"error", err)
		s.events.Publish(domain.NewAnalysisFailedEvent(t.ID(), t.Action(), sub.Language, sub.Level, provider, err.Error(), elapsed))
		return
	}

	t.To(StateSent)
	s.logger.Info("analysis completed",
		"analysis_id", t.ID(),
		"action", t.Action(),
		"language", sub.Language,
		"level", sub.Level,
		"provider", provider,
		"duration_ms", elapsed.Milliseconds())
	s.events.Publish(domain.NewAnalysisCompletedEvent(t.ID(), t.Action(), sub.Language, sub.Level, provider, elapsed))
}
