package optimizer

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/sandevgo/slimctx/internal/core"
)

var dedupVectors = map[string][]float32{
	"apple one": {1, 0, 0},
	"apple two": {0.999, 0.02, 0}, // near-duplicate of "apple one"
	"banana":    {0, 1, 0},
	"cherry":    {0, 0, 1},
}

func TestDeduplicateChunks(t *testing.T) {
	o := newTestOptimizer(dedupVectors)

	got, err := o.DeduplicateChunks(context.Background(), []string{"apple one", "apple two", "banana"}, 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"apple one", "banana"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDeduplicateChunks_FirstOccurrenceWins(t *testing.T) {
	o := newTestOptimizer(dedupVectors)

	got, err := o.DeduplicateChunks(context.Background(), []string{"apple two", "apple one"}, 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The later near-duplicate is dropped, never the earlier one.
	want := []string{"apple two"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDeduplicateChunks_Idempotent(t *testing.T) {
	o := newTestOptimizer(dedupVectors)
	ctx := context.Background()

	once, err := o.DeduplicateChunks(ctx, []string{"apple one", "apple two", "banana", "cherry"}, 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := o.DeduplicateChunks(ctx, once, 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("dedup must be idempotent: %v != %v", once, twice)
	}
}

func TestDeduplicateChunks_ShortCircuits(t *testing.T) {
	// No embedder at all: empty and single-item inputs must still pass
	// through because no embedding call is needed.
	o := New(nil, wordCounter{})
	ctx := context.Background()

	got, err := o.DeduplicateChunks(ctx, nil, 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty output, got %v", got)
	}

	single, err := o.DeduplicateChunks(ctx, []string{"apple one"}, 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(single, []string{"apple one"}) {
		t.Errorf("single item must pass through unchanged, got %v", single)
	}
}

func TestDeduplicateChunks_RequiresEmbedder(t *testing.T) {
	o := New(nil, wordCounter{})

	_, err := o.DeduplicateChunks(context.Background(), []string{"apple one", "banana"}, 0.9)
	if !errors.Is(err, core.ErrEmbedderRequired) {
		t.Fatalf("expected ErrEmbedderRequired, got %v", err)
	}
}

func TestDeduplicateMessages_NeverAcrossRoles(t *testing.T) {
	// Identical content, identical vectors, different roles: both stay.
	o := newTestOptimizer(map[string][]float32{
		"be brief": {1, 0},
	})

	msgs := []core.Message{
		{Role: core.RoleSystem, Content: "be brief"},
		{Role: core.RoleUser, Content: "be brief"},
	}

	got, err := o.DeduplicateMessages(context.Background(), msgs, 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("cross-role dedup must never happen, got %v", got)
	}
}

func TestDeduplicateMessages_RestoresGlobalOrder(t *testing.T) {
	o := newTestOptimizer(dedupVectors)

	msgs := []core.Message{
		{Role: core.RoleUser, Content: "apple one"},
		{Role: core.RoleAssistant, Content: "banana"},
		{Role: core.RoleUser, Content: "cherry"},
		{Role: core.RoleAssistant, Content: "apple two"},
	}

	got, err := o.DeduplicateMessages(context.Background(), msgs, 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// "apple two" is assistant-side and the only near-duplicate is
	// user-side, so all four survive, in original order.
	if !reflect.DeepEqual(got, msgs) {
		t.Errorf("expected original order %v, got %v", msgs, got)
	}
}

func TestDeduplicateUserMessages_LeavesOtherRolesAlone(t *testing.T) {
	o := newTestOptimizer(dedupVectors)

	msgs := []core.Message{
		{Role: core.RoleUser, Content: "apple one"},
		{Role: core.RoleUser, Content: "apple two"},
		{Role: core.RoleAssistant, Content: "apple one"},
		{Role: core.RoleAssistant, Content: "apple two"},
	}

	got, err := o.DeduplicateUserMessages(context.Background(), msgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []core.Message{
		{Role: core.RoleUser, Content: "apple one"},
		{Role: core.RoleAssistant, Content: "apple one"},
		{Role: core.RoleAssistant, Content: "apple two"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDeduplicateChunks_SubsequenceProperty(t *testing.T) {
	o := newTestOptimizer(dedupVectors)
	input := []string{"apple one", "banana", "apple two", "cherry"}

	got, err := o.DeduplicateChunks(context.Background(), input, 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) > len(input) {
		t.Fatalf("output longer than input: %v", got)
	}

	// Every kept chunk appears in input order.
	pos := 0
	for _, chunk := range got {
		found := false
		for ; pos < len(input); pos++ {
			if input[pos] == chunk {
				found = true
				pos++
				break
			}
		}
		if !found {
			t.Fatalf("output %v is not a subsequence of %v", got, input)
		}
	}
}
