package representation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/contractlens/contract-analyzer/pkg/models"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	delay  time.Duration
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.vector, f.err
}

func TestBuildWithEmbedder(t *testing.T) {
	b := NewBuilder(&fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}}, time.Second)

	rep := b.Build(context.Background(), "The Contractor shall deliver within 30 days.")

	if rep.Degraded {
		t.Error("expected non-degraded representation")
	}
	if len(rep.Vector) != 3 {
		t.Errorf("expected vector of length 3, got %d", len(rep.Vector))
	}
	if len(rep.Lexical) == 0 {
		t.Error("lexical signature must be built even when a vector is available")
	}
}

func TestBuildWithoutEmbedder(t *testing.T) {
	b := NewBuilder(nil, time.Second)

	rep := b.Build(context.Background(), "Payment is due within 30 days.")

	if !rep.Degraded {
		t.Error("expected degraded representation without an embedder")
	}
	if rep.Vector != nil {
		t.Error("expected no vector")
	}
	if len(rep.Lexical) == 0 {
		t.Error("expected lexical signature")
	}
}

func TestBuildDegradesOnEmbedderError(t *testing.T) {
	b := NewBuilder(&fakeEmbedder{err: errors.New("backend down")}, time.Second)

	rep := b.Build(context.Background(), "Confidential information shall not be disclosed.")

	if !rep.Degraded {
		t.Error("expected degraded representation on embedder error")
	}
	if len(rep.Lexical) == 0 {
		t.Error("expected lexical fallback")
	}
}

func TestBuildDegradesOnTimeout(t *testing.T) {
	b := NewBuilder(&fakeEmbedder{vector: []float32{1}, delay: 200 * time.Millisecond}, 10*time.Millisecond)

	rep := b.Build(context.Background(), "Liability is capped at $100,000.")

	if !rep.Degraded {
		t.Error("expected degraded representation on timeout")
	}
}

func TestBuildEmptyText(t *testing.T) {
	b := NewBuilder(&fakeEmbedder{vector: []float32{1}}, time.Second)

	rep := b.Build(context.Background(), "   ")

	if !rep.Empty() {
		t.Error("expected empty representation for blank text")
	}
}

func TestFromClausePrefersStoredEmbedding(t *testing.T) {
	b := NewBuilder(nil, time.Second)

	clause := models.Clause{
		Text:      "The Supplier shall indemnify the Customer.",
		Embedding: []float32{0.5, 0.5},
	}

	rep := b.FromClause(clause)
	if rep.Degraded {
		t.Error("expected stored embedding to be used")
	}
	if len(rep.Lexical) == 0 {
		t.Error("expected lexical signature alongside the vector")
	}
}

func TestFromClauseWithoutEmbedding(t *testing.T) {
	b := NewBuilder(nil, time.Second)

	rep := b.FromClause(models.Clause{Text: "Notices must be sent in writing."})
	if !rep.Degraded {
		t.Error("expected degraded representation for clause without embedding")
	}
}
