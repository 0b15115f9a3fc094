package representation

import (
	"context"
	"time"

	"github.com/contractlens/contract-analyzer/internal/textnorm"
	"github.com/contractlens/contract-analyzer/pkg/models"
)

// Representation is the comparable form of a clause or question. The
// lexical signature is always present; the vector only when an
// embedding backend produced one. Degraded marks vectorless
// representations so the similarity engine knows to use the lexical
// path.
type Representation struct {
	Vector   []float32
	Lexical  map[string]float64
	Degraded bool
}

// Empty reports whether the representation carries no comparable
// content at all (blank text, no vector)
func (r Representation) Empty() bool {
	return len(r.Vector) == 0 && len(r.Lexical) == 0
}

// Embedder is the optional embedding backend
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Builder produces representations for clauses and questions. Building
// never fails the caller: an absent, erroring or slow embedder degrades
// the result to lexical-only.
type Builder struct {
	embedder Embedder
	timeout  time.Duration
}

// NewBuilder creates a builder. A nil embedder is valid and yields
// degraded representations for every input.
func NewBuilder(embedder Embedder, timeout time.Duration) *Builder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Builder{embedder: embedder, timeout: timeout}
}

// Build creates a representation for raw text
func (b *Builder) Build(ctx context.Context, text string) Representation {
	normalized := textnorm.Normalize(text)
	rep := Representation{
		Lexical:  textnorm.Signature(normalized),
		Degraded: true,
	}

	if b.embedder == nil || normalized == "" {
		return rep
	}

	embedCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	vector, err := b.embedder.EmbedText(embedCtx, normalized)
	if err != nil || len(vector) == 0 {
		// Degraded operation is the contract, not a failure
		return rep
	}

	rep.Vector = vector
	rep.Degraded = false
	return rep
}

// FromClause builds a representation from a stored clause, reusing its
// persisted embedding instead of calling the backend again
func (b *Builder) FromClause(clause models.Clause) Representation {
	normalized := clause.NormalizedText
	if normalized == "" {
		normalized = textnorm.Normalize(clause.Text)
	}

	rep := Representation{
		Lexical:  textnorm.Signature(normalized),
		Degraded: len(clause.Embedding) == 0,
	}
	if len(clause.Embedding) > 0 {
		rep.Vector = clause.Embedding
	}
	return rep
}
