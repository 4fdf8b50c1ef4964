package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/slimctx/pkg/log"
)

type TokenizerConfig struct {
	// Counter selects the token counter: tiktoken or heuristic.
	Counter  string `env:"SLIMCTX_TOKEN_COUNTER" envDefault:"tiktoken"`
	Encoding string `env:"SLIMCTX_TOKEN_ENCODING" envDefault:"cl100k_base"`
}

func NewTokenizerConfig(ctx context.Context) *TokenizerConfig {
	cfg := &TokenizerConfig{}
	if err := env.Parse(cfg); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Tokenizer config")
	}
	return cfg
}
