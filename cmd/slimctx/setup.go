package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/slimctx/internal/config"
	"github.com/sandevgo/slimctx/internal/core"
	"github.com/sandevgo/slimctx/internal/optimizer"
	"github.com/sandevgo/slimctx/internal/providers/embedding"
	"github.com/sandevgo/slimctx/internal/providers/tokenizer"
	"github.com/sandevgo/slimctx/internal/transport/mcp"
	"github.com/sandevgo/slimctx/pkg/log"
	"github.com/sandevgo/slimctx/pkg/srv"
	"github.com/spf13/pflag"
)

// deps bundles everything a command needs to run the pipeline.
type deps struct {
	appCfg   *config.AppConfig
	opt      *optimizer.Optimizer
	counter  core.TokenCounter
	embedder core.Embedder
}

// newDeps loads .env, parses configuration and wires the optimizer. When
// the embedder cannot be constructed the error is fatal unless the lexical
// fallback was explicitly enabled.
func newDeps(ctx context.Context) *deps {
	logger := log.FromCtx(ctx)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	appCfg := config.NewAppConfig(ctx)
	embedCfg := config.NewEmbeddingConfig(ctx)
	tokenCfg := config.NewTokenizerConfig(ctx)

	counter, err := tokenizer.NewCounter(tokenCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize token counter")
	}

	embedder, err := embedding.NewEmbedder(embedCfg)
	if err != nil {
		if !appCfg.LexicalFallback {
			logger.Fatal().Err(err).Msg("failed to initialize embedding provider")
		}
		logger.Warn().Err(err).Msg("no embedding provider, using lexical fallback")
		embedder = nil
	}

	var opt *optimizer.Optimizer
	if appCfg.LexicalFallback {
		opt = optimizer.NewWithLexicalFallback(embedder, counter)
	} else {
		opt = optimizer.New(embedder, counter)
	}

	return &deps{
		appCfg:   appCfg,
		opt:      opt,
		counter:  counter,
		embedder: embedder,
	}
}

// NewServices wires the long-running services for the serve command.
func NewServices(ctx context.Context) []srv.Service {
	d := newDeps(ctx)

	httpAddr := ""
	if d.appCfg.EnableHTTP {
		httpAddr = d.appCfg.HTTPAddr
	}

	return []srv.Service{
		mcp.NewServer(d.opt, d.counter, d.appCfg, httpAddr),
	}
}

// boolFlagOr returns the flag value when the user set the flag explicitly,
// otherwise the configured default. Needed for bool flags whose default is
// true: the zero-value convention used for budget/strategy cannot tell
// "--flag=false" apart from "not given".
func boolFlagOr(flags *pflag.FlagSet, name string, flagValue, configValue bool) bool {
	if flags.Changed(name) {
		return flagValue
	}
	return configValue
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
