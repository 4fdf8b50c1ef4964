package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sandevgo/slimctx/internal/config"
	"github.com/sandevgo/slimctx/internal/core"
	"github.com/sandevgo/slimctx/internal/optimizer"
	"github.com/sandevgo/slimctx/internal/providers/embedding"
	"github.com/sandevgo/slimctx/internal/providers/tokenizer"
)

func newTestServer() *Server {
	counter := tokenizer.Heuristic{}
	opt := optimizer.New(embedding.NewHash(0), counter)
	defaults := &config.AppConfig{
		DefaultBudget:   4000,
		DedupThreshold:  0.9,
		DefaultStrategy: "hybrid",
		PreserveSystem:  true,
	}
	return NewServer(opt, counter, defaults, "")
}

func TestHandleOptimizeContext(t *testing.T) {
	s := newTestServer()

	_, out, err := s.handleOptimizeContext(context.Background(), nil, OptimizeContextInput{
		Query: "apple earnings report",
		Chunks: []string{
			"apple posted record earnings this quarter",
			"apple posted record earnings this quarter",
			"bananas are rich in potassium",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(out.Prompt, "apple earnings report") {
		t.Errorf("prompt must start with the query, got %q", out.Prompt)
	}
	// The exact duplicate collapses under any threshold.
	if out.DroppedCount != 1 {
		t.Errorf("expected 1 dropped chunk, got %d (%v)", out.DroppedCount, out.Dropped)
	}
	if out.TokenCount <= 0 {
		t.Errorf("expected a positive token count, got %d", out.TokenCount)
	}
}

func TestHandleOptimizeContext_EmptyQuery(t *testing.T) {
	s := newTestServer()

	_, _, err := s.handleOptimizeContext(context.Background(), nil, OptimizeContextInput{
		Chunks: []string{"some context"},
	})
	if err == nil {
		t.Fatal("expected an error for a missing query")
	}
}

func TestHandleOptimizeConversation(t *testing.T) {
	s := newTestServer()

	_, out, err := s.handleOptimizeConversation(context.Background(), nil, OptimizeConversationInput{
		Messages: []MessageInput{
			{Role: core.RoleSystem, Content: "be concise"},
			{Role: core.RoleUser, Content: "tell me about apples"},
			{Role: core.RoleUser, Content: "tell me about apples"},
			{Role: core.RoleAssistant, Content: "apples are a fruit"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.RemovedCount != 1 {
		t.Errorf("expected the duplicate ask removed, got %d removed", out.RemovedCount)
	}
	if len(out.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %+v", out.Messages)
	}
	if out.Messages[0].Role != core.RoleSystem {
		t.Errorf("system message must stay first, got %+v", out.Messages)
	}
}

func TestHandleOptimizeConversation_TimestampsPassThrough(t *testing.T) {
	s := newTestServer()

	now := time.Now().UTC().Truncate(time.Second)
	_, out, err := s.handleOptimizeConversation(context.Background(), nil, OptimizeConversationInput{
		Messages: []MessageInput{
			{Role: core.RoleUser, Content: "tell me about apples", Timestamp: now.Add(-2 * time.Hour)},
			{Role: core.RoleAssistant, Content: "apples are a fruit", Timestamp: now},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out.Messages) != 2 {
		t.Fatalf("expected both messages kept, got %+v", out.Messages)
	}
	if !out.Messages[0].Timestamp.Equal(now.Add(-2 * time.Hour)) {
		t.Errorf("first timestamp lost: %v", out.Messages[0].Timestamp)
	}
	if !out.Messages[1].Timestamp.Equal(now) {
		t.Errorf("second timestamp lost: %v", out.Messages[1].Timestamp)
	}
}

func TestHandleCountTokens(t *testing.T) {
	s := newTestServer()

	_, out, err := s.handleCountTokens(context.Background(), nil, CountTokensInput{
		Text: "twelve chars",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Tokens != 3 {
		t.Errorf("expected 3 tokens, got %d", out.Tokens)
	}
}
