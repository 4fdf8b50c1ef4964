package core

import "context"

// Embedder turns texts into fixed-length vectors. Implementations must
// preserve input order and return exactly one vector per input text.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// TokenCounter approximates model token counts. Must be total: empty
// string counts as zero.
type TokenCounter interface {
	Count(text string) int
}
