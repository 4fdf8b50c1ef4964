package embedding

import (
	"context"
	"hash/fnv"
	"strings"
)

const hashDefaultDims = 64

// Hash is a deterministic in-process embedder: each lowercase word hashes
// into a fixed-dimension frequency bucket, so cosine similarity tracks word
// overlap. No network, fully reproducible. Used for tests and offline runs.
type Hash struct {
	dims int
}

func NewHash(dims int) *Hash {
	if dims <= 0 {
		dims = hashDefaultDims
	}
	return &Hash{dims: dims}
}

func (h *Hash) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = h.embed(text)
	}
	return embeddings, nil
}

func (h *Hash) embed(text string) []float32 {
	vec := make([]float32, h.dims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?\"'()[]{}")
		if word == "" {
			continue
		}
		hasher := fnv.New32a()
		hasher.Write([]byte(word))
		vec[hasher.Sum32()%uint32(h.dims)]++
	}
	return vec
}
