// Package similarity scores clause representations in [0,1]. The score
// is symmetric and a representation compared with itself scores 1.0.
package similarity

import (
	"github.com/contractlens/contract-analyzer/internal/representation"
)

// Score computes the similarity between two representations. When both
// carry a vector, the score is cosine similarity clamped to [0,1]
// (negative cosine maps to 0). When either side is degraded, the score
// is the weighted Jaccard overlap of the lexical signatures.
func Score(a, b representation.Representation) float64 {
	if !a.Degraded && !b.Degraded {
		cos := CosineSimilarity(a.Vector, b.Vector)
		if cos < 0 {
			return 0
		}
		if cos > 1 {
			return 1
		}
		return cos
	}
	return weightedJaccard(a.Lexical, b.Lexical)
}

// weightedJaccard is sum(min weights) / sum(max weights) over the token
// union, in [0,1]
func weightedJaccard(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var intersection, union float64
	for tok, wa := range a {
		wb, ok := b[tok]
		if !ok {
			union += wa
			continue
		}
		if wa < wb {
			intersection += wa
			union += wb
		} else {
			intersection += wb
			union += wa
		}
	}
	for tok, wb := range b {
		if _, ok := a[tok]; !ok {
			union += wb
		}
	}

	if union == 0 {
		return 0
	}
	return intersection / union
}
