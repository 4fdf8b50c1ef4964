package tokenizer

import (
	"testing"

	"github.com/sandevgo/slimctx/internal/config"
)

func TestHeuristic_Count(t *testing.T) {
	h := Heuristic{}

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "short word rounds up", text: "hi", want: 1},
		{name: "exact multiple", text: "12345678", want: 2},
		{name: "one over rounds up", text: "123456789", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Count(tt.text); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestNewCounter(t *testing.T) {
	counter, err := NewCounter(&config.TokenizerConfig{Counter: "heuristic"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := counter.(Heuristic); !ok {
		t.Errorf("expected a Heuristic counter, got %T", counter)
	}

	if _, err := NewCounter(&config.TokenizerConfig{Counter: "bogus"}); err == nil {
		t.Error("expected an error for an unknown counter")
	}
}
