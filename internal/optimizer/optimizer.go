package optimizer

import (
	"sort"
	"time"

	"github.com/sandevgo/slimctx/internal/core"
)

// Token cost reserved for prompt formatting (separators, role labels) on top
// of the measured content cost.
const formattingBufferTokens = 8

// Optimizer runs the dedup -> prioritize -> trim pipeline over chunks or
// chat messages. It holds no state across invocations.
type Optimizer struct {
	embedder core.Embedder
	counter  core.TokenCounter

	// lexical enables the explicitly-configured degraded mode: when no
	// embedder is present, relevance scoring falls back to word overlap
	// and the dedup stage is skipped. Never selected implicitly.
	lexical bool
}

func New(embedder core.Embedder, counter core.TokenCounter) *Optimizer {
	return &Optimizer{
		embedder: embedder,
		counter:  counter,
	}
}

// NewWithLexicalFallback builds an optimizer that tolerates a nil embedder
// by scoring relevance lexically.
func NewWithLexicalFallback(embedder core.Embedder, counter core.TokenCounter) *Optimizer {
	return &Optimizer{
		embedder: embedder,
		counter:  counter,
		lexical:  true,
	}
}

// item is the internal unit of optimization. The index is the position in
// the caller's input and is the sole key for restoring original order and
// for kept/removed accounting.
type item struct {
	index     int
	text      string
	role      string
	timestamp time.Time

	relevance float64
	recency   float64
	position  float64
	roleScore float64
	score     float64
}

// chunkItems wraps raw chunks with their original indices and synthetic
// timestamps: items get monotonically more recent by index, one minute
// apart, with the last item "now".
func chunkItems(chunks []string) []item {
	now := time.Now()
	items := make([]item, len(chunks))
	for i, text := range chunks {
		items[i] = item{
			index:     i,
			text:      text,
			timestamp: now.Add(-time.Duration(len(chunks)-1-i) * time.Minute),
		}
	}
	return items
}

// messageItems wraps messages, synthesizing timestamps only where the
// caller supplied none.
func messageItems(msgs []core.Message) []item {
	now := time.Now()
	items := make([]item, len(msgs))
	for i, msg := range msgs {
		ts := msg.Timestamp
		if ts.IsZero() {
			ts = now.Add(-time.Duration(len(msgs)-1-i) * time.Minute)
		}
		items[i] = item{
			index:     i,
			text:      msg.Content,
			role:      msg.Role,
			timestamp: ts,
		}
	}
	return items
}

func itemTexts(items []item) []string {
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.text
	}
	return texts
}

func itemMessages(items []item, msgs []core.Message) []core.Message {
	out := make([]core.Message, len(items))
	for i, it := range items {
		out[i] = msgs[it.index]
	}
	return out
}

func sortByIndex(items []item) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].index < items[j].index
	})
}
