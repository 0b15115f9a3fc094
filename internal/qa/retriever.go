// Package qa answers natural-language questions about a contract using
// extracted clauses as evidence, annotated with ambiguity and conflict
// results from the two detectors.
package qa

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/contractlens/contract-analyzer/internal/conflict"
	"github.com/contractlens/contract-analyzer/internal/representation"
	"github.com/contractlens/contract-analyzer/internal/similarity"
	"github.com/contractlens/contract-analyzer/pkg/models"
)

// InterpretationReader looks up the latest interpretation for a clause.
// A (nil, nil) return means no interpretation is available; the clause
// is treated as unannotated, never as an error.
type InterpretationReader interface {
	InterpretationFor(ctx context.Context, clauseID uuid.UUID) (*models.Interpretation, error)
}

// ConflictReader looks up conflicts touching a clause
type ConflictReader interface {
	ConflictsFor(ctx context.Context, clauseID uuid.UUID) ([]models.Conflict, error)
}

// Config holds the retrieval and review policy
type Config struct {
	// TopK is the default evidence count when the caller passes none
	TopK int

	// RelevanceFloor is the minimal score below which evidence is not
	// credible; an answer with no clause above it is "no confident
	// answer", not a fabrication from unrelated clauses
	RelevanceFloor float64

	// ConflictEpsilon is the score distance within which the top two
	// evidence clauses count as equally relevant; if they then disagree
	// in polarity the answer is flagged instead of silently picking one
	ConflictEpsilon float64

	// ReviewDiscount shrinks the confidence of answers that require
	// review or carry conflicting evidence
	ReviewDiscount float64
}

// DefaultConfig returns the default retrieval policy
func DefaultConfig() Config {
	return Config{
		TopK:            5,
		RelevanceFloor:  0.15,
		ConflictEpsilon: 0.05,
		ReviewDiscount:  0.85,
	}
}

// Retriever ranks clauses against a question and composes an answer
type Retriever struct {
	cfg             Config
	builder         *representation.Builder
	conflictPolicy  *conflict.Detector
	interpretations InterpretationReader
	conflicts       ConflictReader
}

// NewRetriever creates a retriever. The two readers are optional:
// nil readers simply leave evidence unannotated.
func NewRetriever(cfg Config, builder *representation.Builder, conflictPolicy *conflict.Detector,
	interpretations InterpretationReader, conflicts ConflictReader) *Retriever {

	def := DefaultConfig()
	if cfg.TopK == 0 {
		cfg.TopK = def.TopK
	}
	if cfg.RelevanceFloor == 0 {
		cfg.RelevanceFloor = def.RelevanceFloor
	}
	if cfg.ConflictEpsilon == 0 {
		cfg.ConflictEpsilon = def.ConflictEpsilon
	}
	if cfg.ReviewDiscount == 0 {
		cfg.ReviewDiscount = def.ReviewDiscount
	}

	return &Retriever{
		cfg:             cfg,
		builder:         builder,
		conflictPolicy:  conflictPolicy,
		interpretations: interpretations,
		conflicts:       conflicts,
	}
}

type scoredClause struct {
	clause models.Clause
	score  float64
}

// Answer answers one question against the given contract's clauses
func (r *Retriever) Answer(ctx context.Context, question string, contract models.Contract,
	clauses []models.Clause, topK int) models.Answer {

	if topK <= 0 {
		topK = r.cfg.TopK
	}

	questionRep := r.builder.Build(ctx, question)

	// Score every clause with the same representation and similarity
	// rules the detectors use
	scored := make([]scoredClause, 0, len(clauses))
	for _, clause := range clauses {
		rep := r.builder.FromClause(clause)
		if rep.Empty() {
			continue
		}
		scored = append(scored, scoredClause{
			clause: clause,
			score:  similarity.Score(questionRep, rep),
		})
	}

	// Rank by score descending, ties broken by document order
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].clause.Position < scored[j].clause.Position
	})

	if len(scored) == 0 || scored[0].score < r.cfg.RelevanceFloor {
		return noConfidentAnswer(question)
	}

	top := scored
	if len(top) > topK {
		top = top[:topK]
	}
	// Low-score stragglers below the floor are not evidence
	for len(top) > 0 && top[len(top)-1].score < r.cfg.RelevanceFloor {
		top = top[:len(top)-1]
	}

	evidence := make([]models.Evidence, len(top))
	for i, sc := range top {
		evidence[i] = models.Evidence{
			ClauseID:     sc.clause.ID,
			Path:         sc.clause.Path,
			Text:         sc.clause.Text,
			Type:         sc.clause.Type,
			Relevance:    sc.score,
			DocumentName: contract.Name,
			PageNumber:   sc.clause.PageNumber,
		}
	}

	answer := models.Answer{
		ID:         uuid.New(),
		Question:   question,
		Text:       composeAnswer(contract, top),
		Evidence:   evidence,
		Confidence: top[0].score,
		CreatedAt:  time.Now().UTC(),
	}

	// Two equally relevant clauses that disagree in polarity mean the
	// contract itself is split on the question
	if len(top) >= 2 &&
		top[0].score-top[1].score <= r.cfg.ConflictEpsilon &&
		r.conflictPolicy.PairPolarityDisagrees(top[0].clause, top[1].clause) {
		answer.HasConflictingEvidence = true
	}

	r.annotate(ctx, &answer, top)

	if answer.HasConflictingEvidence {
		answer.RequiresReview = true
	}
	if answer.RequiresReview || answer.HasConflictingEvidence {
		answer.Confidence *= r.cfg.ReviewDiscount
	}

	return answer
}

// annotate decorates the answer with the detectors' stored results for
// every evidence clause. Missing lookups mean "clause unavailable" and
// are skipped, never fatal.
func (r *Retriever) annotate(ctx context.Context, answer *models.Answer, top []scoredClause) {
	evidenceIDs := make(map[uuid.UUID]bool, len(top))
	for _, sc := range top {
		evidenceIDs[sc.clause.ID] = true
	}

	for _, sc := range top {
		if r.interpretations != nil {
			interp, err := r.interpretations.InterpretationFor(ctx, sc.clause.ID)
			if err == nil && interp != nil {
				if interp.HasAmbiguity {
					answer.HasAmbiguousEvidence = true
				}
				if interp.Risk == models.RiskHigh || interp.Risk == models.RiskCritical {
					answer.RequiresReview = true
				}
			}
		}

		if r.conflicts != nil {
			conflicts, err := r.conflicts.ConflictsFor(ctx, sc.clause.ID)
			if err == nil && len(conflicts) > 0 {
				answer.RequiresReview = true
				for _, c := range conflicts {
					if evidenceIDs[c.ClauseID] && evidenceIDs[c.OtherClauseID] {
						answer.HasConflictingEvidence = true
					}
				}
			}
		}
	}
}

func noConfidentAnswer(question string) models.Answer {
	return models.Answer{
		ID:         uuid.New(),
		Question:   question,
		Text:       "No relevant clauses were found to answer this question.",
		Evidence:   []models.Evidence{},
		Confidence: 0,
		CreatedAt:  time.Now().UTC(),
	}
}

// composeAnswer builds an extractive answer from the top clause with a
// note about supporting evidence
func composeAnswer(contract models.Contract, top []scoredClause) string {
	best := top[0].clause

	var b strings.Builder
	fmt.Fprintf(&b, "Based on %s", documentName(contract))
	if best.Path != "" {
		fmt.Fprintf(&b, ", Section %s", best.Path)
	}
	b.WriteString(":\n\n")
	fmt.Fprintf(&b, "%q", best.Text)

	if len(top) > 1 {
		fmt.Fprintf(&b, "\n\nThis is further supported by %d related clause(s).", len(top)-1)
	}

	return b.String()
}

func documentName(contract models.Contract) string {
	if contract.Name != "" {
		return contract.Name
	}
	return "the contract"
}
