package main

import (
	"log/slog"

	"github.com/felixgeelhaar/gloss/internal/config"
	"github.com/felixgeelhaar/gloss/internal/llm"
	"github.com/felixgeelhaar/gloss/internal/tutor"
	"github.com/felixgeelhaar/gloss/internal/video"
)

// buildRegistry registers every enabled, credentialed provider, each wrapped
// with the shared resilience policy
func buildRegistry(cfg *config.Config) *llm.Registry {
	registry := llm.NewRegistry()

	for name, providerCfg := range cfg.LLM.Providers {
		if !providerCfg.Enabled {
			continue
		}

		var provider llm.Provider
		switch name {
		case "claude":
			if providerCfg.APIKey == "" {
				slog.Debug("claude provider enabled but no API key set")
				continue
			}
			provider = llm.NewClaudeProvider(llm.ClaudeConfig{
				APIKey: providerCfg.APIKey,
				Model:  providerCfg.Model,
			})

		case "openai":
			if providerCfg.APIKey == "" {
				slog.Debug("openai provider enabled but no API key set")
				continue
			}
			provider = llm.NewOpenAIProvider(llm.OpenAIConfig{
				APIKey: providerCfg.APIKey,
				Model:  providerCfg.Model,
			})

		case "gemini":
			if providerCfg.APIKey == "" {
				slog.Debug("gemini provider enabled but no API key set")
				continue
			}
			provider = llm.NewGeminiProvider(llm.GeminiConfig{
				APIKey: providerCfg.APIKey,
				Model:  providerCfg.Model,
			})

		case "ollama":
			provider = llm.NewOllamaProvider(llm.OllamaConfig{
				BaseURL: providerCfg.URL,
				Model:   providerCfg.Model,
			})

		default:
			slog.Warn("unknown provider in config, skipping", "name", name)
			continue
		}

		registry.Register(name, llm.NewResilientProvider(provider, llm.DefaultResilientConfig()))
		slog.Info("registered LLM provider", "name", name, "model", providerCfg.Model)
	}

	if name := cfg.LLM.DefaultProvider; name != "" && name != "auto" {
		if err := registry.SetDefault(name); err != nil {
			slog.Warn("default provider not registered, falling back to auto", "provider", name)
		}
	}

	return registry
}

// buildTutor assembles the tutor service with its providers from config
func buildTutor(cfg *config.Config) (*tutor.Service, error) {
	registry := buildRegistry(cfg)

	svc := tutor.NewService(registry, tutor.Config{
		Actions:   cfg.LLM.Actions,
		MaxVideos: cfg.Video.MaxResults,
	})

	if cfg.Video.Configured() {
		provider := video.NewYouTubeProvider(video.YouTubeConfig{APIKey: cfg.Video.APIKey})
		svc.SetVideoProvider(video.NewFailSoft(provider))
		slog.Info("video lookup enabled", "provider", provider.Name())
	} else {
		slog.Info("video lookup disabled, explanations will carry no videos")
	}

	return svc, nil
}
