package optimizer

import (
	"context"
	"sort"
	"time"

	"github.com/sandevgo/slimctx/internal/core"
)

// Strategy selects how items are scored for prioritization.
type Strategy string

const (
	StrategyRecency   Strategy = "recency"
	StrategyRelevance Strategy = "relevance"
	StrategyHybrid    Strategy = "hybrid"
)

// ParseStrategy maps a strategy name to a Strategy. Unrecognized or absent
// names fall back to hybrid.
func ParseStrategy(name string) Strategy {
	switch Strategy(name) {
	case StrategyRecency, StrategyRelevance, StrategyHybrid:
		return Strategy(name)
	default:
		return StrategyHybrid
	}
}

// Hybrid weights. Chunks blend relevance with recency; chat adds the
// structural position and role factors so late turns and system
// instructions survive.
const (
	chunkRelevanceWeight = 0.7
	chunkRecencyWeight   = 0.3

	chatRelevanceWeight = 0.4
	chatRecencyWeight   = 0.2
	chatPositionWeight  = 0.3
	chatRoleWeight      = 0.1
)

// recencyHorizon is the linear decay window: an item this old scores 0.
const recencyHorizon = 24 * time.Hour

// PrioritizeChunks reorders chunks by descending score under the chosen
// strategy. The output is a permutation of the input: nothing is dropped.
func (o *Optimizer) PrioritizeChunks(ctx context.Context, chunks []string, query string, strategy Strategy) ([]string, error) {
	ordered, err := o.prioritizeItems(ctx, chunkItems(chunks), query, strategy, false)
	if err != nil {
		return nil, err
	}
	return itemTexts(ordered), nil
}

// PrioritizeMessages reorders chat messages by descending score under the
// chosen strategy, using the four-factor hybrid formula.
func (o *Optimizer) PrioritizeMessages(ctx context.Context, msgs []core.Message, query string, strategy Strategy) ([]core.Message, error) {
	ordered, err := o.prioritizeItems(ctx, messageItems(msgs), query, strategy, true)
	if err != nil {
		return nil, err
	}
	return itemMessages(ordered, msgs), nil
}

// PrioritizeConversation is the flow-preserving variant: when the message
// count exceeds the limit, the chronological tail is retained verbatim, only
// the head competes on hybrid score, and the final result is re-sorted into
// original chronological order rather than priority order.
func (o *Optimizer) PrioritizeConversation(ctx context.Context, msgs []core.Message, query string, limit int) ([]core.Message, error) {
	if limit <= 0 {
		return nil, core.ErrInvalidBudget
	}
	if len(msgs) <= limit {
		return msgs, nil
	}

	tailSize := min(3, limit/2)
	items := messageItems(msgs)
	head := items[:len(items)-tailSize]
	tail := items[len(items)-tailSize:]

	ranked, err := o.prioritizeItems(ctx, head, query, StrategyHybrid, true)
	if err != nil {
		return nil, err
	}

	slots := limit - tailSize
	if slots > len(ranked) {
		slots = len(ranked)
	}

	merged := make([]item, 0, slots+tailSize)
	merged = append(merged, ranked[:slots]...)
	merged = append(merged, tail...)
	sortByIndex(merged)

	return itemMessages(merged, msgs), nil
}

// prioritizeItems scores and reorders items. chat toggles the four-factor
// hybrid formula; chunks use the two-factor one.
func (o *Optimizer) prioritizeItems(ctx context.Context, items []item, query string, strategy Strategy, chat bool) ([]item, error) {
	if len(items) == 0 {
		return items, nil
	}
	if o.embedder == nil && !o.lexical {
		return nil, core.ErrEmbedderRequired
	}
	if strategy != StrategyRecency && strategy != StrategyRelevance {
		strategy = StrategyHybrid
	}

	ordered := make([]item, len(items))
	copy(ordered, items)

	if strategy == StrategyRecency {
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].timestamp.After(ordered[j].timestamp)
		})
		return ordered, nil
	}

	relevance, err := o.relevanceScores(ctx, query, ordered)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range ordered {
		ordered[i].relevance = relevance[i]
		ordered[i].recency = recencyScore(now, ordered[i].timestamp)
		// Rank within the set being scored, not the original global index:
		// callers may pass a filtered subset with index gaps, and the
		// position factor must stay in (0, 1].
		ordered[i].position = float64(i+1) / float64(len(ordered))
		ordered[i].roleScore = core.RoleWeight(ordered[i].role)

		switch {
		case strategy == StrategyRelevance:
			ordered[i].score = ordered[i].relevance
		case chat:
			ordered[i].score = chatRelevanceWeight*ordered[i].relevance +
				chatRecencyWeight*ordered[i].recency +
				chatPositionWeight*ordered[i].position +
				chatRoleWeight*ordered[i].roleScore
		default:
			ordered[i].score = chunkRelevanceWeight*ordered[i].relevance +
				chunkRecencyWeight*ordered[i].recency
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].score > ordered[j].score
	})
	return ordered, nil
}

// relevanceScores embeds [query, item1..itemN] in one batch and returns the
// cosine similarity of each item to the query. An item with a missing
// embedding scores 0. With lexical fallback active and no embedder, word
// overlap substitutes for cosine similarity.
func (o *Optimizer) relevanceScores(ctx context.Context, query string, items []item) ([]float64, error) {
	scores := make([]float64, len(items))

	if o.embedder == nil {
		for i, it := range items {
			scores[i] = lexicalOverlap(query, it.text)
		}
		return scores, nil
	}

	texts := make([]string, 0, len(items)+1)
	texts = append(texts, query)
	for _, it := range items {
		texts = append(texts, it.text)
	}

	embeddings, err := o.embedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}

	queryEmbedding := embeddings[0]
	for i := range items {
		emb := embeddings[i+1]
		if len(emb) == 0 {
			continue
		}
		sim, err := CosineSimilarity(queryEmbedding, emb)
		if err != nil {
			return nil, err
		}
		scores[i] = sim
	}
	return scores, nil
}

// recencyScore decays linearly from 1 (now) to 0 over the horizon, floored
// at 0 for older items.
func recencyScore(now, ts time.Time) float64 {
	age := now.Sub(ts)
	if age <= 0 {
		return 1
	}
	score := 1 - float64(age)/float64(recencyHorizon)
	if score < 0 {
		return 0
	}
	return score
}
