package optimizer

import (
	"strings"

	"github.com/sandevgo/slimctx/internal/core"
)

// SerializeChunks renders chunks the way they are counted and emitted:
// newline-joined.
func SerializeChunks(chunks []string) string {
	return strings.Join(chunks, "\n")
}

// SerializeMessages renders messages as "role: content" lines. This format
// is the internal contract between the trimmer and its callers.
func SerializeMessages(msgs []core.Message) string {
	lines := make([]string, len(msgs))
	for i, msg := range msgs {
		lines[i] = msg.Role + ": " + msg.Content
	}
	return strings.Join(lines, "\n")
}

// TrimChunks drops chunks from the tail of the given order until the
// serialized remainder fits the budget, or nothing is left. It relies on the
// caller having placed the least-wanted chunks last.
func (o *Optimizer) TrimChunks(chunks []string, budget int) []string {
	for len(chunks) > 0 && o.counter.Count(SerializeChunks(chunks)) > budget {
		chunks = chunks[:len(chunks)-1]
	}
	return chunks
}

// TrimMessages is TrimChunks for chat messages.
func (o *Optimizer) TrimMessages(msgs []core.Message, budget int) []core.Message {
	for len(msgs) > 0 && o.counter.Count(SerializeMessages(msgs)) > budget {
		msgs = msgs[:len(msgs)-1]
	}
	return msgs
}

// trimItems is the index-carrying variant used by the pipelines. render
// serializes the current candidate list for counting.
func (o *Optimizer) trimItems(items []item, budget int, render func([]item) string) []item {
	for len(items) > 0 && o.counter.Count(render(items)) > budget {
		items = items[:len(items)-1]
	}
	return items
}

func renderChunkItems(items []item) string {
	return SerializeChunks(itemTexts(items))
}

func renderMessageItems(items []item) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = it.role + ": " + it.text
	}
	return strings.Join(lines, "\n")
}
