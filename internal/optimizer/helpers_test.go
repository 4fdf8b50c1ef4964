package optimizer

import (
	"context"
	"fmt"
	"strings"
)

// stubEmbedder returns canned vectors keyed by exact text. Tests fail fast
// on any text without a fixture.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := s.vectors[text]
		if !ok {
			return nil, fmt.Errorf("no stub vector for %q", text)
		}
		out[i] = vec
	}
	return out, nil
}

// wordCounter makes token arithmetic predictable in tests: one token per
// whitespace-separated word.
type wordCounter struct{}

func (wordCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Fields(text))
}

func newTestOptimizer(vectors map[string][]float32) *Optimizer {
	return New(&stubEmbedder{vectors: vectors}, wordCounter{})
}
