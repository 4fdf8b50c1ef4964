package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sandevgo/slimctx/internal/core"
	"github.com/sandevgo/slimctx/internal/optimizer"
)

// OptimizeContextInput is the input schema for the optimize_context tool.
type OptimizeContextInput struct {
	Query     string   `json:"query" jsonschema:"the user query the context should support"`
	Chunks    []string `json:"chunks" jsonschema:"candidate context chunks to dedupe, rank and trim"`
	Budget    int      `json:"budget,omitempty" jsonschema:"token budget for the final prompt (default from server config)"`
	Dedupe    *bool    `json:"dedupe,omitempty" jsonschema:"remove near-duplicate chunks before ranking (default true)"`
	Strategy  string   `json:"strategy,omitempty" jsonschema:"ranking strategy: relevance, recency or hybrid (default hybrid)"`
	Threshold float64  `json:"threshold,omitempty" jsonschema:"cosine similarity threshold for duplicates (default 0.9)"`
}

// OptimizeContextOutput is the result of the optimize_context tool.
type OptimizeContextOutput struct {
	Prompt       string   `json:"prompt"`
	TokenCount   int      `json:"token_count"`
	Dropped      []string `json:"dropped,omitempty"`
	DroppedCount int      `json:"dropped_count"`
}

// MessageInput mirrors core.Message for the wire schema.
type MessageInput struct {
	Role      string    `json:"role" jsonschema:"message role: system, user or assistant"`
	Content   string    `json:"content" jsonschema:"message text"`
	Timestamp time.Time `json:"timestamp,omitempty" jsonschema:"optional RFC 3339 message time, used for recency scoring"`
}

// OptimizeConversationInput is the input schema for optimize_conversation.
type OptimizeConversationInput struct {
	Messages       []MessageInput `json:"messages" jsonschema:"conversation to optimize, in chronological order"`
	Budget         int            `json:"budget,omitempty" jsonschema:"token budget for the kept conversation (default from server config)"`
	Dedupe         *bool          `json:"dedupe,omitempty" jsonschema:"remove near-duplicate messages per role (default true)"`
	Strategy       string         `json:"strategy,omitempty" jsonschema:"ranking strategy: relevance, recency or hybrid (default hybrid)"`
	Threshold      float64        `json:"threshold,omitempty" jsonschema:"cosine similarity threshold for duplicates (default 0.9)"`
	PreserveSystem *bool          `json:"preserve_system,omitempty" jsonschema:"always keep system messages (default true)"`
	PreserveLastN  int            `json:"preserve_last_n,omitempty" jsonschema:"always keep the last N messages (default 0)"`
}

// OptimizeConversationOutput is the result of optimize_conversation.
type OptimizeConversationOutput struct {
	Messages     []MessageInput `json:"messages"`
	TokenCount   int            `json:"token_count"`
	RemovedCount int            `json:"removed_count"`
}

// CountTokensInput is the input schema for count_tokens.
type CountTokensInput struct {
	Text string `json:"text" jsonschema:"text to count tokens for"`
}

// CountTokensOutput is the result of count_tokens.
type CountTokensOutput struct {
	Tokens int `json:"tokens"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "optimize_context",
		Description: "Deduplicate, rank and trim free-text context chunks to fit a token budget",
	}, s.handleOptimizeContext)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "optimize_conversation",
		Description: "Deduplicate, rank and trim a chat conversation to fit a token budget",
	}, s.handleOptimizeConversation)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "count_tokens",
		Description: "Estimate the token count of a text",
	}, s.handleCountTokens)
}

func (s *Server) handleOptimizeContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input OptimizeContextInput,
) (*mcp.CallToolResult, OptimizeContextOutput, error) {
	budget := input.Budget
	if budget == 0 {
		budget = s.defaults.DefaultBudget
	}
	strategy := input.Strategy
	if strategy == "" {
		strategy = s.defaults.DefaultStrategy
	}
	threshold := input.Threshold
	if threshold == 0 {
		threshold = s.defaults.DedupThreshold
	}

	result, err := s.opt.OptimizeChunks(ctx, optimizer.ChunkRequest{
		Query:      input.Query,
		Chunks:     input.Chunks,
		Budget:     budget,
		SkipDedupe: input.Dedupe != nil && !*input.Dedupe,
		Strategy:   optimizer.ParseStrategy(strategy),
		Threshold:  threshold,
	})
	if err != nil {
		return nil, OptimizeContextOutput{}, err
	}

	return nil, OptimizeContextOutput{
		Prompt:       result.Prompt,
		TokenCount:   result.TokenCount,
		Dropped:      result.Dropped,
		DroppedCount: len(result.Dropped),
	}, nil
}

func (s *Server) handleOptimizeConversation(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input OptimizeConversationInput,
) (*mcp.CallToolResult, OptimizeConversationOutput, error) {
	budget := input.Budget
	if budget == 0 {
		budget = s.defaults.DefaultBudget
	}
	strategy := input.Strategy
	if strategy == "" {
		strategy = s.defaults.DefaultStrategy
	}
	threshold := input.Threshold
	if threshold == 0 {
		threshold = s.defaults.DedupThreshold
	}
	preserveSystem := s.defaults.PreserveSystem
	if input.PreserveSystem != nil {
		preserveSystem = *input.PreserveSystem
	}
	preserveLastN := input.PreserveLastN
	if preserveLastN == 0 {
		preserveLastN = s.defaults.PreserveLastN
	}

	msgs := make([]core.Message, len(input.Messages))
	for i, m := range input.Messages {
		msgs[i] = core.Message{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp}
	}

	result, err := s.opt.OptimizeChat(ctx, optimizer.ChatRequest{
		Messages:       msgs,
		Budget:         budget,
		SkipDedupe:     input.Dedupe != nil && !*input.Dedupe,
		Strategy:       optimizer.ParseStrategy(strategy),
		Threshold:      threshold,
		PreserveSystem: preserveSystem,
		PreserveLastN:  preserveLastN,
	})
	if err != nil {
		return nil, OptimizeConversationOutput{}, err
	}

	out := OptimizeConversationOutput{
		Messages:     make([]MessageInput, len(result.Messages)),
		TokenCount:   result.TokenCount,
		RemovedCount: len(result.Removed),
	}
	for i, m := range result.Messages {
		out.Messages[i] = MessageInput{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp}
	}

	return nil, out, nil
}

func (s *Server) handleCountTokens(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CountTokensInput,
) (*mcp.CallToolResult, CountTokensOutput, error) {
	return nil, CountTokensOutput{Tokens: s.counter.Count(input.Text)}, nil
}
