package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/slimctx/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"SLIMCTX_RUNTIME_PATH" envDefault:".slimctx"`

	// Optimization defaults, overridable per call by tool/CLI arguments.
	DefaultBudget   int     `env:"SLIMCTX_DEFAULT_BUDGET" envDefault:"4000"`
	DedupThreshold  float64 `env:"SLIMCTX_DEDUP_THRESHOLD" envDefault:"0.9"`
	DefaultStrategy string  `env:"SLIMCTX_STRATEGY" envDefault:"hybrid"`
	PreserveSystem  bool    `env:"SLIMCTX_PRESERVE_SYSTEM" envDefault:"true"`
	PreserveLastN   int     `env:"SLIMCTX_PRESERVE_LAST_N" envDefault:"0"`
	LexicalFallback bool    `env:"SLIMCTX_LEXICAL_FALLBACK" envDefault:"false"`

	// Transport flags
	EnableHTTP bool   `env:"SLIMCTX_ENABLE_HTTP" envDefault:"false"`
	HTTPAddr   string `env:"SLIMCTX_HTTP_ADDR" envDefault:"localhost:8093"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetEnvPath() string {
	return filepath.Join(c.RuntimePath, ".env")
}
