package optimizer

import (
	"reflect"
	"testing"

	"github.com/sandevgo/slimctx/internal/core"
)

func TestTrimChunks(t *testing.T) {
	o := New(nil, wordCounter{})

	tests := []struct {
		name   string
		chunks []string
		budget int
		want   []string
	}{
		{
			name:   "fits exactly",
			chunks: []string{"a b", "c d"},
			budget: 4,
			want:   []string{"a b", "c d"},
		},
		{
			name:   "one over drops the tail",
			chunks: []string{"a b", "c d"},
			budget: 3,
			want:   []string{"a b"},
		},
		{
			name:   "nothing fits",
			chunks: []string{"a b", "c d"},
			budget: 1,
			want:   []string{},
		},
		{
			name:   "empty input",
			chunks: nil,
			budget: 10,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := o.TrimChunks(tt.chunks, tt.budget)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestTrimMessages(t *testing.T) {
	o := New(nil, wordCounter{})

	msgs := []core.Message{
		{Role: core.RoleUser, Content: "hello there"},    // "user: hello there" = 3 tokens
		{Role: core.RoleAssistant, Content: "hi friend"}, // "assistant: hi friend" = 3 tokens
	}

	got := o.TrimMessages(msgs, 6)
	if !reflect.DeepEqual(got, msgs) {
		t.Errorf("expected both messages kept, got %+v", got)
	}

	got = o.TrimMessages(msgs, 5)
	if len(got) != 1 || got[0].Content != "hello there" {
		t.Errorf("expected only the first message, got %+v", got)
	}
}

func TestSerializeMessages(t *testing.T) {
	msgs := []core.Message{
		{Role: core.RoleSystem, Content: "be brief"},
		{Role: core.RoleUser, Content: "hello"},
	}

	got := SerializeMessages(msgs)
	want := "system: be brief\nuser: hello"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
