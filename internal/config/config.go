package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the gloss daemon. Values come from
// ~/.gloss/config.yaml with environment variables layered on top; API keys
// come from ~/.gloss/secrets.yaml or the environment, never from the main
// config file.
type Config struct {
	Daemon DaemonConfig `yaml:"daemon"`
	LLM    LLMConfig    `yaml:"llm"`
	Video  VideoConfig  `yaml:"video"`
	Events EventsConfig `yaml:"events"`
}

// DaemonConfig holds HTTP server settings
type DaemonConfig struct {
	Port     int    `yaml:"port"`
	Bind     string `yaml:"bind"`
	LogLevel string `yaml:"log_level"`
}

// LLMConfig holds LLM provider settings
type LLMConfig struct {
	// DefaultProvider names the provider used when an action has no pin.
	// "auto" picks any registered provider.
	DefaultProvider string `yaml:"default_provider"`
	// Actions optionally pins an action (explain, fix, practice) to a
	// specific provider.
	Actions   map[string]string          `yaml:"actions,omitempty"`
	Providers map[string]*ProviderConfig `yaml:"providers"`
}

// ProviderConfig holds settings for a single LLM provider
type ProviderConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
	URL     string `yaml:"url,omitempty"` // For Ollama
	APIKey  string `yaml:"-"`             // Loaded from secrets.yaml or env
}

// VideoConfig holds related-video lookup settings
type VideoConfig struct {
	Enabled    bool   `yaml:"enabled"`
	MaxResults int    `yaml:"max_results"`
	APIKey     string `yaml:"-"` // Loaded from secrets.yaml or env
}

// Configured reports whether video lookups can actually run: the feature is
// switched on and a key is present. Without a key the service degrades to
// empty video lists rather than failing.
func (v VideoConfig) Configured() bool {
	return v.Enabled && v.APIKey != ""
}

// EventsConfig holds analysis event publishing settings. Publishing is off
// unless a broker URL is configured.
type EventsConfig struct {
	URL   string `yaml:"url,omitempty"`
	Queue string `yaml:"queue"`
}

// Enabled reports whether lifecycle events should be published.
func (e EventsConfig) Enabled() bool {
	return e.URL != ""
}

// Secrets holds API keys loaded from secrets.yaml. The youtube entry feeds
// the video provider; every other entry feeds the LLM provider of the same
// name.
type Secrets struct {
	Providers map[string]struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"providers"`
}

// GlossDir returns the path to ~/.gloss
func GlossDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".gloss"), nil
}

// EnsureGlossDir creates ~/.gloss and its subdirectories if they don't exist
func EnsureGlossDir() (string, error) {
	dir, err := GlossDir()
	if err != nil {
		return "", err
	}

	for _, subdir := range []string{"", "logs"} {
		path := filepath.Join(dir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}

	return dir, nil
}

// Default returns sensible defaults for a local deployment
func Default() *Config {
	return &Config{
		Daemon: DaemonConfig{
			Port:     8000,
			Bind:     "127.0.0.1",
			LogLevel: "info",
		},
		LLM: LLMConfig{
			DefaultProvider: "auto",
			Providers: map[string]*ProviderConfig{
				"claude": {
					Enabled: true,
					Model:   "claude-sonnet-4-20250514",
				},
				"openai": {
					Enabled: false,
					Model:   "gpt-4o",
				},
				"gemini": {
					Enabled: true,
					Model:   "gemini-2.5-flash",
				},
				"ollama": {
					Enabled: true,
					URL:     "http://localhost:11434",
					Model:   "llama2",
				},
			},
		},
		Video: VideoConfig{
			Enabled:    true,
			MaxResults: 3,
		},
		Events: EventsConfig{
			Queue: "gloss.events",
		},
	}
}

// Load reads configuration from ~/.gloss/config.yaml, applies secrets, then
// overlays environment variables. A missing config file means defaults. A
// .env file in the working directory is read first so that local deployments
// can keep keys out of their shell profile.
func Load() (*Config, error) {
	_ = godotenv.Load() // missing .env is fine

	dir, err := GlossDir()
	if err != nil {
		return nil, err
	}

	cfg := Default()

	configPath := filepath.Join(dir, "config.yaml")
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := loadSecrets(dir, cfg); err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

// loadSecrets loads API keys from secrets.yaml
func loadSecrets(dir string, cfg *Config) error {
	secretsPath := filepath.Join(dir, "secrets.yaml")

	data, err := os.ReadFile(secretsPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read secrets: %w", err)
	}

	var secrets Secrets
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return fmt.Errorf("parse secrets: %w", err)
	}

	for name, secret := range secrets.Providers {
		if name == "youtube" {
			cfg.Video.APIKey = secret.APIKey
			continue
		}
		if provider, ok := cfg.LLM.Providers[name]; ok {
			provider.APIKey = secret.APIKey
		}
	}

	return nil
}

// applyEnv overlays environment variables onto the loaded config. Keys set in
// the environment win over secrets.yaml.
func applyEnv(cfg *Config) {
	cfg.Daemon.Port = getEnvInt("GLOSS_PORT", cfg.Daemon.Port)
	cfg.Daemon.Bind = getEnv("GLOSS_BIND", cfg.Daemon.Bind)
	cfg.Daemon.LogLevel = getEnv("GLOSS_LOG_LEVEL", cfg.Daemon.LogLevel)
	cfg.LLM.DefaultProvider = getEnv("GLOSS_DEFAULT_PROVIDER", cfg.LLM.DefaultProvider)

	keyEnvs := map[string]string{
		"claude": "ANTHROPIC_API_KEY",
		"openai": "OPENAI_API_KEY",
		"gemini": "GEMINI_API_KEY",
	}
	for name, env := range keyEnvs {
		if provider, ok := cfg.LLM.Providers[name]; ok {
			provider.APIKey = getEnv(env, provider.APIKey)
		}
	}
	if provider, ok := cfg.LLM.Providers["ollama"]; ok {
		provider.URL = getEnv("OLLAMA_URL", provider.URL)
	}

	cfg.Video.APIKey = getEnv("YOUTUBE_API_KEY", cfg.Video.APIKey)
	cfg.Video.Enabled = getEnvBool("GLOSS_VIDEO_ENABLED", cfg.Video.Enabled)
	cfg.Events.URL = getEnv("GLOSS_AMQP_URL", cfg.Events.URL)
}

// Save writes configuration to ~/.gloss/config.yaml
func Save(cfg *Config) error {
	dir, err := EnsureGlossDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// SaveSecrets writes API keys to ~/.gloss/secrets.yaml
func SaveSecrets(keys map[string]string) error {
	dir, err := EnsureGlossDir()
	if err != nil {
		return err
	}

	secrets := Secrets{
		Providers: make(map[string]struct {
			APIKey string `yaml:"api_key"`
		}),
	}
	for name, key := range keys {
		secrets.Providers[name] = struct {
			APIKey string `yaml:"api_key"`
		}{APIKey: key}
	}

	data, err := yaml.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("marshal secrets: %w", err)
	}

	// Owner read/write only
	secretsPath := filepath.Join(dir, "secrets.yaml")
	if err := os.WriteFile(secretsPath, data, 0600); err != nil {
		return fmt.Errorf("write secrets: %w", err)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}
