// Package retriever ranks corpus chunks by cosine similarity to a query
// embedding. The corpus is small enough that a linear scan over in-memory
// vectors beats shipping every query to a vector database.
package retriever

import (
	"math"
	"sort"

	"github.com/monisha-km/resume-agent/internal/corpus"
)

// zeroSimilarity is the score assigned when either vector has zero
// magnitude, ranking it below every real cosine value.
const zeroSimilarity = -1.0

// Cosine computes the cosine similarity of two vectors: the dot product
// divided by the product of magnitudes, bounded in [-1, 1]. A zero-magnitude
// vector (or length mismatch down to an empty overlap) yields -1 rather
// than a division fault. Vectors of different lengths are compared over the
// shared prefix.
func Cosine(a, b []float64) float64 {
	n := min(len(a), len(b))

	var dot, normA, normB float64
	for i := range n {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return zeroSimilarity
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Retrieve returns the text of the top-k chunks most similar to query,
// most similar first. Ties keep the original corpus order (stable sort).
// Returns at most min(topK, len(chunks)) results and an empty slice for an
// empty corpus. Chunks without a parallel vector are ignored.
func Retrieve(query []float64, chunks []corpus.Chunk, vectors [][]float64, topK int) []string {
	n := min(len(chunks), len(vectors))
	if n == 0 || topK <= 0 {
		return nil
	}

	type scored struct {
		index      int
		similarity float64
	}

	ranked := make([]scored, n)
	for i := range n {
		ranked[i] = scored{index: i, similarity: Cosine(query, vectors[i])}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].similarity > ranked[j].similarity
	})

	k := min(topK, n)
	texts := make([]string, k)
	for i := range k {
		texts[i] = chunks[ranked[i].index].Text
	}
	return texts
}
