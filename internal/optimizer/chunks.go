package optimizer

import (
	"context"

	"github.com/sandevgo/slimctx/internal/core"
	"github.com/sandevgo/slimctx/pkg/log"
)

// ChunkRequest drives the free-text pipeline. The zero value of SkipDedupe
// keeps deduplication on, which is the default behavior.
type ChunkRequest struct {
	Query      string
	Chunks     []string
	Budget     int
	SkipDedupe bool
	Strategy   Strategy
	Threshold  float64
}

// ChunkResult is the assembled prompt plus the manifest of dropped chunks.
type ChunkResult struct {
	Prompt     string
	TokenCount int
	Dropped    []string
}

// OptimizeChunks runs dedup -> prioritize -> trim over free-text chunks and
// assembles the final prompt. Either a complete result or an error: partial
// optimization is never returned.
func (o *Optimizer) OptimizeChunks(ctx context.Context, req ChunkRequest) (*ChunkResult, error) {
	if req.Query == "" {
		return nil, core.ErrEmptyQuery
	}
	if req.Budget <= 0 {
		return nil, core.ErrInvalidBudget
	}

	if len(req.Chunks) == 0 {
		return &ChunkResult{
			Prompt:     req.Query,
			TokenCount: o.counter.Count(req.Query),
		}, nil
	}

	if o.embedder == nil && !o.lexical {
		return nil, core.ErrEmbeddingUnavailable
	}

	logger := log.FromCtx(ctx)
	items := chunkItems(req.Chunks)

	if !req.SkipDedupe && o.embedder != nil {
		deduped, err := o.dedupeChunkItems(ctx, items, req.Threshold)
		if err != nil {
			return nil, err
		}
		if len(deduped) < len(items) {
			logger.Debug().
				Int("before", len(items)).
				Int("after", len(deduped)).
				Msg("removed near-duplicate chunks")
		}
		items = deduped
	}

	ranked, err := o.prioritizeItems(ctx, items, req.Query, req.Strategy, false)
	if err != nil {
		return nil, err
	}

	// The query always ships; context competes for what remains.
	reserved := o.counter.Count(req.Query) + formattingBufferTokens
	kept := o.trimItems(ranked, req.Budget-reserved, renderChunkItems)

	// The trimmer saw priority order; the final artifact and the dropped
	// manifest are computed against original input order by index.
	sortByIndex(kept)

	prompt := req.Query
	if len(kept) > 0 {
		prompt = req.Query + "\n\n" + renderChunkItems(kept)
	}

	keptIdx := make(map[int]struct{}, len(kept))
	for _, it := range kept {
		keptIdx[it.index] = struct{}{}
	}
	var dropped []string
	for i, chunk := range req.Chunks {
		if _, ok := keptIdx[i]; !ok {
			dropped = append(dropped, chunk)
		}
	}

	result := &ChunkResult{
		Prompt:     prompt,
		TokenCount: o.counter.Count(prompt),
		Dropped:    dropped,
	}

	logger.Debug().
		Int("chunks_in", len(req.Chunks)).
		Int("chunks_kept", len(kept)).
		Int("tokens", result.TokenCount).
		Int("budget", req.Budget).
		Msg("optimized chunk context")

	return result, nil
}
