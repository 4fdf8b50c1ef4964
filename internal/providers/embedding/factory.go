package embedding

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/slimctx/internal/config"
	"github.com/sandevgo/slimctx/internal/core"
	"github.com/sandevgo/slimctx/pkg/retry"
)

// NewEmbedder builds the configured embedding provider. A missing
// credential or unknown provider name is ErrEmbeddingUnavailable: the
// pipeline has no implicit fallback.
func NewEmbedder(cfg *config.EmbeddingConfig) (core.Embedder, error) {
	retryCfg := retry.NewDefaultConfig()
	if cfg.MaxRetries >= 0 {
		retryCfg.MaxRetries = cfg.MaxRetries
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAI(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
			Retry:   retryCfg,
		})
	case "ollama":
		return NewOllama(OllamaConfig{
			BaseURL: cfg.OllamaBaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
			Retry:   retryCfg,
		}), nil
	case "hash":
		return NewHash(0), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", core.ErrEmbeddingUnavailable, cfg.Provider)
	}
}
