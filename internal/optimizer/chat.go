package optimizer

import (
	"context"

	"github.com/sandevgo/slimctx/internal/core"
	"github.com/sandevgo/slimctx/pkg/log"
)

// ChatRequest drives the conversation pipeline. PreserveSystem exempts
// system messages from optimization; PreserveLastN additionally exempts the
// last N messages.
type ChatRequest struct {
	Messages       []core.Message
	Budget         int
	SkipDedupe     bool
	Strategy       Strategy
	Threshold      float64
	PreserveSystem bool
	PreserveLastN  int
}

// ChatResult is the kept conversation plus the manifest of removed turns.
type ChatResult struct {
	Messages   []core.Message
	TokenCount int
	Removed    []core.Message
}

// OptimizeChat runs dedup -> prioritize -> trim over the non-preserved
// messages and merges survivors with the preserved set in original
// chronological order. An empty conversation yields a zeroed result, not an
// error.
func (o *Optimizer) OptimizeChat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if len(req.Messages) == 0 {
		return &ChatResult{}, nil
	}
	if req.Budget <= 0 {
		return nil, core.ErrInvalidBudget
	}
	if o.embedder == nil && !o.lexical {
		return nil, core.ErrEmbeddingUnavailable
	}

	logger := log.FromCtx(ctx)
	items := messageItems(req.Messages)

	preserved, working := splitPreserved(items, req.PreserveSystem, req.PreserveLastN)

	preservedCost := o.counter.Count(renderMessageItems(preserved)) + formattingBufferTokens
	if preservedCost >= req.Budget {
		// No room to optimize the working set: ship only the preserved
		// messages and report everything else as removed. An oversized
		// system message is still returned here, never silently dropped.
		return o.assembleChat(req.Messages, preserved), nil
	}

	if !req.SkipDedupe && o.embedder != nil {
		deduped, err := o.dedupeMessageItems(ctx, working, func(string) (float64, bool) {
			return req.Threshold, true
		})
		if err != nil {
			return nil, err
		}
		working = deduped
	}

	query := lastUserContent(req.Messages)
	ranked, err := o.prioritizeItems(ctx, working, query, req.Strategy, true)
	if err != nil {
		return nil, err
	}

	kept := o.trimItems(ranked, req.Budget-preservedCost, renderMessageItems)

	final := make([]item, 0, len(preserved)+len(kept))
	final = append(final, preserved...)
	final = append(final, kept...)
	sortByIndex(final)

	result := o.assembleChat(req.Messages, final)

	logger.Debug().
		Int("messages_in", len(req.Messages)).
		Int("messages_kept", len(result.Messages)).
		Int("tokens", result.TokenCount).
		Int("budget", req.Budget).
		Msg("optimized conversation")

	return result, nil
}

// splitPreserved partitions items into the policy-exempt set (system
// messages and/or the last N turns) and the working set that competes for
// budget. Both partitions keep original order.
func splitPreserved(items []item, preserveSystem bool, preserveLastN int) (preserved, working []item) {
	lastN := len(items) - preserveLastN
	if lastN < 0 {
		lastN = 0
	}

	for i, it := range items {
		if (preserveSystem && it.role == core.RoleSystem) || i >= lastN {
			preserved = append(preserved, it)
		} else {
			working = append(working, it)
		}
	}
	return preserved, working
}

// lastUserContent returns the content of the most recent user turn, or ""
// when the conversation has none.
func lastUserContent(msgs []core.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == core.RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}

// assembleChat materializes the final result and the removed manifest by
// index membership against the original input, never by content equality:
// two textually identical turns stay distinct.
func (o *Optimizer) assembleChat(original []core.Message, kept []item) *ChatResult {
	keptIdx := make(map[int]struct{}, len(kept))
	for _, it := range kept {
		keptIdx[it.index] = struct{}{}
	}

	result := &ChatResult{
		Messages: itemMessages(kept, original),
	}
	for i, msg := range original {
		if _, ok := keptIdx[i]; !ok {
			result.Removed = append(result.Removed, msg)
		}
	}
	result.TokenCount = o.counter.Count(SerializeMessages(result.Messages))
	return result
}
