package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/slimctx/pkg/log"
)

type EmbeddingConfig struct {
	// Provider selects the embedding backend: openai, ollama or hash.
	Provider string `env:"SLIMCTX_EMBEDDING_PROVIDER" envDefault:"openai"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"SLIMCTX_OPENAI_BASE_URL"`
	OllamaBaseURL string `env:"SLIMCTX_OLLAMA_BASE_URL"`
	Model         string `env:"SLIMCTX_EMBEDDING_MODEL"`

	TimeoutSeconds int `env:"SLIMCTX_EMBEDDING_TIMEOUT" envDefault:"60"`
	MaxRetries     int `env:"SLIMCTX_EMBEDDING_RETRIES" envDefault:"3"`
}

func NewEmbeddingConfig(ctx context.Context) *EmbeddingConfig {
	cfg := &EmbeddingConfig{}
	if err := env.Parse(cfg); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Embedding config")
	}
	return cfg
}
