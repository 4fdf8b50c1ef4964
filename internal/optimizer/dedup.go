package optimizer

import (
	"context"
	"fmt"

	"github.com/sandevgo/slimctx/internal/core"
)

const (
	// DefaultDedupThreshold applies to generic chunks and assistant
	// messages; assistant turns stay conservative to avoid dropping nuance.
	DefaultDedupThreshold = 0.9

	// DefaultUserDedupThreshold is more aggressive: repeated user phrasings
	// of the same ask carry little extra signal.
	DefaultUserDedupThreshold = 0.85
)

// DeduplicateChunks removes chunks whose cosine similarity to an earlier
// kept chunk meets the threshold. The output is a subsequence of the input
// in original order; the first occurrence always wins.
func (o *Optimizer) DeduplicateChunks(ctx context.Context, chunks []string, threshold float64) ([]string, error) {
	kept, err := o.dedupeChunkItems(ctx, chunkItems(chunks), threshold)
	if err != nil {
		return nil, err
	}
	return itemTexts(kept), nil
}

// DeduplicateMessages deduplicates within each role independently: a system
// message is never a duplicate of a user message, even when textually
// identical. The kept set is re-sorted into original global input order.
func (o *Optimizer) DeduplicateMessages(ctx context.Context, msgs []core.Message, threshold float64) ([]core.Message, error) {
	if threshold == 0 {
		threshold = DefaultDedupThreshold
	}
	kept, err := o.dedupeMessageItems(ctx, messageItems(msgs), func(string) (float64, bool) {
		return threshold, true
	})
	if err != nil {
		return nil, err
	}
	return itemMessages(kept, msgs), nil
}

// DeduplicateUserMessages restricts deduplication to user turns; every
// other role passes through untouched.
func (o *Optimizer) DeduplicateUserMessages(ctx context.Context, msgs []core.Message) ([]core.Message, error) {
	kept, err := o.dedupeMessageItems(ctx, messageItems(msgs), func(role string) (float64, bool) {
		return DefaultUserDedupThreshold, role == core.RoleUser
	})
	if err != nil {
		return nil, err
	}
	return itemMessages(kept, msgs), nil
}

// DeduplicateAssistantMessages restricts deduplication to assistant turns.
func (o *Optimizer) DeduplicateAssistantMessages(ctx context.Context, msgs []core.Message) ([]core.Message, error) {
	kept, err := o.dedupeMessageItems(ctx, messageItems(msgs), func(role string) (float64, bool) {
		return DefaultDedupThreshold, role == core.RoleAssistant
	})
	if err != nil {
		return nil, err
	}
	return itemMessages(kept, msgs), nil
}

// dedupeChunkItems embeds all chunks in one batch and keeps the greedy
// first-occurrence survivors. Single-item input short-circuits without an
// embedding call.
func (o *Optimizer) dedupeChunkItems(ctx context.Context, items []item, threshold float64) ([]item, error) {
	if threshold == 0 {
		threshold = DefaultDedupThreshold
	}
	if len(items) <= 1 {
		return items, nil
	}
	if o.embedder == nil {
		return nil, core.ErrEmbedderRequired
	}

	embeddings, err := o.embedBatch(ctx, itemTexts(items))
	if err != nil {
		return nil, err
	}

	keptIdx, err := greedyKeep(embeddings, threshold)
	if err != nil {
		return nil, err
	}

	kept := make([]item, len(keptIdx))
	for i, idx := range keptIdx {
		kept[i] = items[idx]
	}
	return kept, nil
}

// dedupeMessageItems partitions items by role, deduplicates each selected
// partition with one batch embedding call, and merges survivors back into
// original global order by index. Cross-role similarity is never checked.
func (o *Optimizer) dedupeMessageItems(ctx context.Context, items []item, thresholdFor func(role string) (float64, bool)) ([]item, error) {
	if len(items) <= 1 {
		return items, nil
	}
	if o.embedder == nil {
		return nil, core.ErrEmbedderRequired
	}

	byRole := make(map[string][]int)
	roles := make([]string, 0, 4)
	for i, it := range items {
		if _, seen := byRole[it.role]; !seen {
			roles = append(roles, it.role)
		}
		byRole[it.role] = append(byRole[it.role], i)
	}

	kept := make([]item, 0, len(items))
	for _, role := range roles {
		positions := byRole[role]
		threshold, dedupe := thresholdFor(role)
		if threshold == 0 {
			threshold = DefaultDedupThreshold
		}
		if !dedupe || len(positions) == 1 {
			for _, pos := range positions {
				kept = append(kept, items[pos])
			}
			continue
		}

		texts := make([]string, len(positions))
		for i, pos := range positions {
			texts[i] = items[pos].text
		}

		embeddings, err := o.embedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}

		keptLocal, err := greedyKeep(embeddings, threshold)
		if err != nil {
			return nil, err
		}
		for _, local := range keptLocal {
			kept = append(kept, items[positions[local]])
		}
	}

	// Role partitioning is a detail of the similarity check, not a
	// reordering operation: restore the original global order.
	sortByIndex(kept)
	return kept, nil
}

// greedyKeep walks embeddings in input order, keeping an item unless it is
// at least threshold-similar to any previously kept item. Greedy and
// order-sensitive on purpose: earliest index always wins, which keeps runs
// reproducible even though it is not a minimum-removal clustering.
func greedyKeep(embeddings [][]float32, threshold float64) ([]int, error) {
	kept := make([]int, 0, len(embeddings))
	keptEmbeddings := make([][]float32, 0, len(embeddings))

	for i, emb := range embeddings {
		match, err := FindMostSimilar(emb, keptEmbeddings)
		if err != nil {
			return nil, err
		}
		if match.Index >= 0 && match.Similarity >= threshold {
			continue
		}
		kept = append(kept, i)
		keptEmbeddings = append(keptEmbeddings, emb)
	}

	return kept, nil
}

// embedBatch calls the provider once and enforces the order/length contract.
func (o *Optimizer) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings, err := o.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d inputs", len(embeddings), len(texts))
	}
	return embeddings, nil
}
