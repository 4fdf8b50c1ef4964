package tokenizer

import (
	"fmt"
	"strings"

	"github.com/sandevgo/slimctx/internal/config"
	"github.com/sandevgo/slimctx/internal/core"
)

func NewCounter(cfg *config.TokenizerConfig) (core.TokenCounter, error) {
	switch strings.ToLower(cfg.Counter) {
	case "", "tiktoken":
		return NewTiktoken(cfg.Encoding)
	case "heuristic":
		return Heuristic{}, nil
	default:
		return nil, fmt.Errorf("unknown token counter %q", cfg.Counter)
	}
}
