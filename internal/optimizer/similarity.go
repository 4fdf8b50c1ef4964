package optimizer

import (
	"fmt"
	"math"

	"github.com/sandevgo/slimctx/internal/core"
)

// Match is the result of a nearest-neighbor scan. Index -1 means no
// candidate was available.
type Match struct {
	Index      int
	Similarity float64
}

// CosineSimilarity returns the normalized dot product of two vectors.
// A zero-norm vector yields 0: "no relation" rather than an error.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", core.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// FindMostSimilar scans candidates linearly and returns the single best
// match. Strict > comparison: the earliest candidate wins ties. An empty
// candidate set yields {-1, -1}, which callers must treat as "no match".
func FindMostSimilar(target []float32, candidates [][]float32) (Match, error) {
	best := Match{Index: -1, Similarity: -1}

	for i, candidate := range candidates {
		sim, err := CosineSimilarity(target, candidate)
		if err != nil {
			return Match{Index: -1, Similarity: -1}, err
		}
		if sim > best.Similarity {
			best = Match{Index: i, Similarity: sim}
		}
	}

	return best, nil
}
