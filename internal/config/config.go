// Package config loads the application's configuration from environment
// variables and an optional .env file using Viper. Configuration is resolved
// once at process start into a typed struct that is passed explicitly down
// the pipeline; no component below the orchestrator reads environment state.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// GitHubConfig holds credentials for the GitHub collaborators. A personal
// access token serves the CLI; the App fields serve webhook server mode.
type GitHubConfig struct {
	Token          string
	AppID          int64
	WebhookSecret  string
	PrivateKeyPath string
}

// LLMConfig selects and tunes the model backend.
type LLMConfig struct {
	Provider       string // "ollama" or "gemini"
	Model          string
	OllamaHost     string
	GeminiAPIKey   string
	Retries        int
	RetryBaseDelay time.Duration
	Timeout        time.Duration
}

// ReviewConfig holds the review policy limits and rule configuration.
type ReviewConfig struct {
	MaxFiles          int
	MaxChangesPerFile int
	Concurrency       int
	Categories        []string
	IgnorePatterns    []string
	LanguageRules     map[string][]string
}

// ServerConfig holds webhook server settings.
type ServerConfig struct {
	Port       string
	MaxWorkers int
}

// Config holds the application's configuration values.
type Config struct {
	LogLevel  slog.Level
	LogFormat string
	GitHub    GitHubConfig
	LLM       LLMConfig
	Review    ReviewConfig
	Server    ServerConfig
}

// Built-in per-language review rules. Unknown languages fall back to the
// generic set; repo-level .diffsentry.yml entries merge on top.
func defaultLanguageRules() map[string][]string {
	return map[string][]string{
		"python": {
			"PEP 8 compliance",
			"Type hints on public functions",
			"Docstrings for modules and public APIs",
			"Error handling and exception specificity",
			"Code complexity",
		},
		"javascript": {
			"ESLint-style correctness issues",
			"Modern ES6+ features over legacy patterns",
			"Error handling in async code",
			"Code organization and module boundaries",
		},
		"go": {
			"Idiomatic error wrapping and sentinel usage",
			"Goroutine and channel lifecycle safety",
			"Context propagation on blocking calls",
			"Exported identifier documentation",
		},
	}
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates value ranges. Credential presence is
// validated per command, since CLI and server modes need different secrets.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetEnvPrefix("DS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("MAX_WORKERS", 5)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("LLM_PROVIDER", "ollama")
	viper.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	viper.SetDefault("GENERATOR_MODEL_NAME", "gemma3:latest")
	viper.SetDefault("GITHUB_PRIVATE_KEY_PATH", "keys/diffsentry-app.private-key.pem")
	viper.SetDefault("MAX_FILES", 50)
	viper.SetDefault("MAX_CHANGES_PER_FILE", 500)
	viper.SetDefault("CONCURRENCY", 5)
	viper.SetDefault("RETRIES", 2)
	viper.SetDefault("RETRY_BASE_DELAY", "1s")
	viper.SetDefault("TIMEOUT_SECONDS", 120)
	viper.SetDefault("CATEGORIES", []string{
		"quality", "security", "performance", "maintainability", "testing",
	})
	viper.SetDefault("IGNORE_PATTERNS", []string{"*.lock", "*.md", "*.txt"})

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Debug("no .env file loaded", "error", err)
		}
	}

	cfg := &Config{
		LogLevel:  parseLogLevel(viper.GetString("LOG_LEVEL")),
		LogFormat: viper.GetString("LOG_FORMAT"),
		GitHub: GitHubConfig{
			Token:          viper.GetString("GITHUB_TOKEN"),
			AppID:          viper.GetInt64("GITHUB_APP_ID"),
			WebhookSecret:  viper.GetString("GITHUB_WEBHOOK_SECRET"),
			PrivateKeyPath: viper.GetString("GITHUB_PRIVATE_KEY_PATH"),
		},
		LLM: LLMConfig{
			Provider:       viper.GetString("LLM_PROVIDER"),
			Model:          viper.GetString("GENERATOR_MODEL_NAME"),
			OllamaHost:     viper.GetString("OLLAMA_HOST"),
			GeminiAPIKey:   viper.GetString("GEMINI_API_KEY"),
			Retries:        viper.GetInt("RETRIES"),
			RetryBaseDelay: viper.GetDuration("RETRY_BASE_DELAY"),
			Timeout:        time.Duration(viper.GetInt("TIMEOUT_SECONDS")) * time.Second,
		},
		Review: ReviewConfig{
			MaxFiles:          viper.GetInt("MAX_FILES"),
			MaxChangesPerFile: viper.GetInt("MAX_CHANGES_PER_FILE"),
			Concurrency:       viper.GetInt("CONCURRENCY"),
			Categories:        viper.GetStringSlice("CATEGORIES"),
			IgnorePatterns:    viper.GetStringSlice("IGNORE_PATTERNS"),
			LanguageRules:     defaultLanguageRules(),
		},
		Server: ServerConfig{
			Port:       viper.GetString("SERVER_PORT"),
			MaxWorkers: viper.GetInt("MAX_WORKERS"),
		},
	}

	if err := cfg.Review.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.LLM.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the review limits for usable ranges.
func (c ReviewConfig) Validate() error {
	if c.MaxFiles <= 0 {
		return fmt.Errorf("MAX_FILES must be positive, got %d", c.MaxFiles)
	}
	if c.MaxChangesPerFile <= 0 {
		return fmt.Errorf("MAX_CHANGES_PER_FILE must be positive, got %d", c.MaxChangesPerFile)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("CONCURRENCY must be positive, got %d", c.Concurrency)
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("at least one review category must be enabled")
	}
	return nil
}

// Validate checks the model backend settings.
func (c LLMConfig) Validate() error {
	switch c.Provider {
	case "ollama", "gemini":
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.Provider)
	}
	if c.Retries < 0 {
		return fmt.Errorf("RETRIES cannot be negative, got %d", c.Retries)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("TIMEOUT_SECONDS must be positive")
	}
	return nil
}

// RequireToken verifies that a GitHub personal access token is configured.
// Called by CLI commands before starting the pipeline.
func (c GitHubConfig) RequireToken() error {
	if c.Token == "" {
		return fmt.Errorf("GITHUB_TOKEN must be set (env DS_GITHUB_TOKEN or --github-token flag)")
	}
	return nil
}

// RequireApp verifies the GitHub App credentials used by server mode.
func (c GitHubConfig) RequireApp() error {
	if c.AppID == 0 {
		return fmt.Errorf("GITHUB_APP_ID must be set")
	}
	if c.WebhookSecret == "" {
		return fmt.Errorf("GITHUB_WEBHOOK_SECRET must be set")
	}
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	default:
		slog.Warn("unrecognized log level, defaulting to info", "provided", s)
		return slog.LevelInfo
	}
}
