// Package llm sends rendered review prompts to the model backend and parses
// the structured responses into findings. Each call is independent and
// carries its own timeout and retry budget, so per-file failures stay
// isolated from the rest of the run.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/mkraev/diffsentry/internal/config"
)

// NewModel creates the model backend selected by configuration.
func NewModel(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (llms.Model, error) {
	switch cfg.Provider {
	case "gemini":
		logger.Info("using Gemini LLM provider", "model", cfg.Model)
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set in environment for gemini provider")
		}
		return gemini.New(ctx,
			gemini.WithModel(cfg.Model),
			gemini.WithAPIKey(cfg.GeminiAPIKey),
		)

	case "ollama":
		logger.Info("using Ollama LLM provider", "model", cfg.Model, "host", cfg.OllamaHost)
		return ollama.New(
			ollama.WithServerURL(cfg.OllamaHost),
			ollama.WithHTTPClient(newOllamaHTTPClient()),
			ollama.WithModel(cfg.Model),
			ollama.WithLogger(logger),
		)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// newOllamaHTTPClient creates an HTTP client with longer timeouts for Ollama
// requests. Local models can take a while to produce a full review.
func newOllamaHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   5 * time.Minute,
	}
}
