package similarity

import (
	"math"
	"testing"

	"github.com/contractlens/contract-analyzer/internal/representation"
	"github.com/contractlens/contract-analyzer/internal/textnorm"
)

func vectorRep(v []float32) representation.Representation {
	return representation.Representation{Vector: v, Degraded: false}
}

func lexicalRep(text string) representation.Representation {
	return representation.Representation{Lexical: textnorm.Signature(text), Degraded: true}
}

func TestScoreVectorPath(t *testing.T) {
	a := vectorRep([]float32{1, 0, 0})
	b := vectorRep([]float32{0, 1, 0})

	if got := Score(a, b); got != 0 {
		t.Errorf("orthogonal vectors: expected 0, got %v", got)
	}

	c := vectorRep([]float32{1, 1, 0})
	d := vectorRep([]float32{1, 1, 0})
	if got := Score(c, d); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("identical vectors: expected 1.0, got %v", got)
	}
}

func TestScoreClampsNegativeCosine(t *testing.T) {
	a := vectorRep([]float32{1, 0})
	b := vectorRep([]float32{-1, 0})

	if got := Score(a, b); got != 0 {
		t.Errorf("opposite vectors: expected clamp to 0, got %v", got)
	}
}

func TestScoreLexicalFallbackWhenEitherDegraded(t *testing.T) {
	withVector := representation.Representation{
		Vector:  []float32{1, 0},
		Lexical: textnorm.Signature("payment due within 30 days"),
	}
	degraded := lexicalRep("payment due within 45 days")

	got := Score(withVector, degraded)
	if got <= 0 || got >= 1 {
		t.Errorf("expected lexical overlap in (0,1), got %v", got)
	}
}

func TestScoreSymmetry(t *testing.T) {
	cases := []struct {
		name string
		a, b representation.Representation
	}{
		{"vectors", vectorRep([]float32{0.3, 0.7, 0.1}), vectorRep([]float32{0.5, 0.2, 0.9})},
		{"lexical", lexicalRep("the contractor shall deliver goods"), lexicalRep("the contractor shall not deliver goods")},
		{"mixed", vectorRep([]float32{1, 2}), lexicalRep("payment terms")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ab := Score(tc.a, tc.b)
			ba := Score(tc.b, tc.a)
			if ab != ba {
				t.Errorf("Score not symmetric: %v vs %v", ab, ba)
			}
		})
	}
}

func TestScoreReflexivity(t *testing.T) {
	lex := lexicalRep("The Supplier shall indemnify the Customer against all claims.")
	if got := Score(lex, lex); got != 1.0 {
		t.Errorf("lexical self-similarity: expected 1.0, got %v", got)
	}

	vec := vectorRep([]float32{0.2, 0.4, 0.8, 0.1})
	if got := Score(vec, vec); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("vector self-similarity: expected 1.0, got %v", got)
	}
}

func TestScoreEmptyRepresentations(t *testing.T) {
	empty := representation.Representation{Degraded: true}
	other := lexicalRep("termination for convenience")

	if got := Score(empty, other); got != 0 {
		t.Errorf("empty representation: expected 0, got %v", got)
	}
	if got := Score(empty, empty); got != 0 {
		t.Errorf("two empty representations: expected 0, got %v", got)
	}
}

func TestCosineSimilarityLengthMismatch(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 2}, []float32{1}); got != 0 {
		t.Errorf("expected 0 for mismatched lengths, got %v", got)
	}
}

func TestLexicalOverlapOfParaphrases(t *testing.T) {
	a := lexicalRep("Payment is due within 30 days.")
	b := lexicalRep("Payment is due within 45 days.")

	got := Score(a, b)
	if got < 0.5 {
		t.Errorf("near-identical clauses should overlap strongly, got %v", got)
	}
	if got >= 1 {
		t.Errorf("different clauses must not score 1.0, got %v", got)
	}
}
