package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chainwork/interviewd/internal/config"
	"github.com/chainwork/interviewd/internal/domain"
	anthropicprov "github.com/chainwork/interviewd/internal/provider/anthropic"
	ollamaprov "github.com/chainwork/interviewd/internal/provider/ollama"
	openaiprov "github.com/chainwork/interviewd/internal/provider/openai"
	"github.com/chainwork/interviewd/internal/tokens"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// Router exposes exactly one configured backend behind the Completer
// contract. The backend is resolved once at construction and never
// re-evaluated per call; fallback-only mode holds none at all.
type Router struct {
	backend   Completer
	logger    *slog.Logger
	estimator *tokens.Estimator
}

// New builds a Router from configuration. A resolved backend of none is not
// an error: the router then answers every call with domain.ErrNoBackend and
// the pipeline serves fallback content.
func New(cfg config.LLMConfig, logger *slog.Logger) *Router {
	r := &Router{
		logger:    logger,
		estimator: tokens.NewEstimator(),
	}

	switch cfg.ResolveBackend() {
	case config.BackendOpenAI:
		r.backend = openaiprov.New(cfg.OpenAI.APIKey, openaiprov.WithModel(cfg.OpenAI.Model))
	case config.BackendOpenRouter:
		baseURL := openRouterBaseURL
		if cfg.OpenRouter.BaseURL != "" {
			baseURL = cfg.OpenRouter.BaseURL
		}
		r.backend = openaiprov.New(cfg.OpenRouter.APIKey,
			openaiprov.WithName("openrouter"),
			openaiprov.WithBaseURL(baseURL),
			openaiprov.WithModel(cfg.OpenRouter.Model),
		)
	case config.BackendAnthropic:
		r.backend = anthropicprov.New(cfg.Anthropic.APIKey, anthropicprov.WithModel(cfg.Anthropic.Model))
	case config.BackendOllama:
		r.backend = ollamaprov.New(cfg.Ollama.Host, ollamaprov.WithModel(cfg.Ollama.Model))
	case config.BackendNone:
		logger.Warn("no llm backend configured, running in fallback-only mode")
	}

	if r.backend != nil {
		logger.Info("llm backend configured", slog.String("backend", r.backend.Name()))
	}
	return r
}

// NewWithBackend builds a Router around an explicit backend. Tests inject
// fakes through here.
func NewWithBackend(backend Completer, logger *slog.Logger) *Router {
	return &Router{
		backend:   backend,
		logger:    logger,
		estimator: tokens.NewEstimator(),
	}
}

// Backend reports the active backend name, "none" when unconfigured.
func (r *Router) Backend() string {
	if r.backend == nil {
		return "none"
	}
	return r.backend.Name()
}

// Complete forwards the prompt to the active backend. When no backend is
// configured it returns domain.ErrNoBackend; any other error is a real
// transport or API failure and propagates loudly so the caller decides what
// to do with it.
func (r *Router) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	if r.backend == nil {
		return "", domain.ErrNoBackend
	}

	r.logger.Debug("completing prompt",
		slog.String("backend", r.backend.Name()),
		slog.Float64("temperature", temperature),
		slog.Int("prompt_tokens_estimate", r.estimator.Estimate(prompt)),
	)

	text, err := r.backend.Complete(ctx, prompt, temperature)
	if err != nil {
		return "", fmt.Errorf("%s: %w", r.backend.Name(), err)
	}
	return text, nil
}
