// Package conflict pairs clauses within and across contracts and
// classifies the pairs that truly conflict. Similarity is only a
// candidate filter: a conflict requires polarity disagreement or
// materially different numbers on the same subject.
package conflict

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/contractlens/contract-analyzer/internal/representation"
	"github.com/contractlens/contract-analyzer/internal/similarity"
	"github.com/contractlens/contract-analyzer/internal/textnorm"
	"github.com/contractlens/contract-analyzer/pkg/models"
)

// relationKind tags which candidate-generation strategy produced a pair
type relationKind int

const (
	relationSameContract relationKind = iota
	relationAmendmentVsParent
	relationCrossVersion
)

func (r relationKind) conflictKind() models.ConflictKind {
	switch r {
	case relationAmendmentVsParent:
		return models.KindOverride
	case relationCrossVersion:
		return models.KindVersionConflict
	default:
		return models.KindContradiction
	}
}

// ClauseInput pairs a clause with its comparable representation. A nil
// or empty representation excludes the clause from candidate
// generation for the run; it never aborts detection.
type ClauseInput struct {
	Clause models.Clause
	Rep    representation.Representation
}

// ContractClauses is one related contract with its clauses
type ContractClauses struct {
	Contract models.Contract
	Clauses  []ClauseInput
}

// Input is everything one detection run analyzes: the contract's own
// clauses, its parent when it is an amendment, and its declared
// versions. The persistence collaborator assembles this; the detector
// is a pure computation over it.
type Input struct {
	Contract models.Contract
	Clauses  []ClauseInput
	Parent   *ContractClauses
	Versions []ContractClauses
}

type candidate struct {
	a, b       ClauseInput
	similarity float64
	relation   relationKind
}

// Detector classifies clause pairs into conflicts
type Detector struct {
	cfg        Config
	polarity   *polarityExtractor
	highImpact map[models.ClauseType]bool
}

// NewDetector creates a detector with the given policy
func NewDetector(cfg Config) *Detector {
	cfg = cfg.withDefaults()
	d := &Detector{
		cfg:        cfg,
		polarity:   newPolarityExtractor(cfg),
		highImpact: make(map[models.ClauseType]bool, len(cfg.HighImpactTypes)),
	}
	for _, t := range cfg.HighImpactTypes {
		d.highImpact[t] = true
	}
	return d
}

// Detect runs all three candidate strategies and classifies every
// candidate. Results carry no duplicate (A,B)/(B,A) pairs and never
// pair a clause with itself.
func (d *Detector) Detect(in Input) []models.Conflict {
	candidates := d.internalCandidates(in.Clauses)
	if in.Parent != nil {
		candidates = append(candidates, d.parentCandidates(in.Clauses, *in.Parent)...)
	}
	for _, version := range in.Versions {
		candidates = append(candidates, d.versionCandidates(in.Clauses, version)...)
	}

	seen := make(map[string]bool, len(candidates))
	var conflicts []models.Conflict

	for _, c := range candidates {
		key := pairKey(c.a.Clause.ID, c.b.Clause.ID)
		if seen[key] {
			continue
		}
		if conflict := d.classify(c); conflict != nil {
			seen[key] = true
			conflicts = append(conflicts, *conflict)
		}
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].Confidence > conflicts[j].Confidence
	})

	return conflicts
}

// internalCandidates pairs clauses within one contract
func (d *Detector) internalCandidates(clauses []ClauseInput) []candidate {
	var out []candidate
	for i := 0; i < len(clauses); i++ {
		if clauses[i].Rep.Empty() {
			continue
		}
		for j := i + 1; j < len(clauses); j++ {
			if clauses[j].Rep.Empty() {
				continue
			}
			sim := similarity.Score(clauses[i].Rep, clauses[j].Rep)
			if sim >= d.cfg.CandidateThreshold {
				out = append(out, candidate{
					a:          clauses[i],
					b:          clauses[j],
					similarity: sim,
					relation:   relationSameContract,
				})
			}
		}
	}
	return out
}

// parentCandidates pairs each amendment clause with its
// highest-similarity clause in the parent contract
func (d *Detector) parentCandidates(amendment []ClauseInput, parent ContractClauses) []candidate {
	var out []candidate
	for _, amendClause := range amendment {
		if amendClause.Rep.Empty() {
			continue
		}

		best := -1
		bestSim := 0.0
		for i, parentClause := range parent.Clauses {
			if parentClause.Rep.Empty() {
				continue
			}
			sim := similarity.Score(amendClause.Rep, parentClause.Rep)
			if sim > bestSim {
				best = i
				bestSim = sim
			}
		}

		if best >= 0 && bestSim >= d.cfg.CandidateThreshold {
			out = append(out, candidate{
				a:          amendClause,
				b:          parent.Clauses[best],
				similarity: bestSim,
				relation:   relationAmendmentVsParent,
			})
		}
	}
	return out
}

// versionCandidates pairs clauses at structurally matching section
// paths across two versions of the same contract
func (d *Detector) versionCandidates(clauses []ClauseInput, version ContractClauses) []candidate {
	byPath := make(map[string][]ClauseInput)
	for _, vc := range version.Clauses {
		if vc.Clause.Path == "" || vc.Rep.Empty() {
			continue
		}
		byPath[vc.Clause.Path] = append(byPath[vc.Clause.Path], vc)
	}

	var out []candidate
	for _, c := range clauses {
		if c.Clause.Path == "" || c.Rep.Empty() {
			continue
		}
		for _, vc := range byPath[c.Clause.Path] {
			if c.Clause.ID == vc.Clause.ID {
				continue
			}
			sim := similarity.Score(c.Rep, vc.Rep)
			if sim >= d.cfg.CandidateThreshold {
				out = append(out, candidate{
					a:          c,
					b:          vc,
					similarity: sim,
					relation:   relationCrossVersion,
				})
			}
		}
	}
	return out
}

// classify decides whether a candidate pair truly conflicts
func (d *Detector) classify(c candidate) *models.Conflict {
	if c.a.Clause.ID == c.b.Clause.ID {
		return nil
	}

	textA := normalizedText(c.a.Clause)
	textB := normalizedText(c.b.Clause)

	polA := d.polarity.Extract(textA)
	polB := d.polarity.Extract(textB)

	signal := d.polarity.disagreement(polA, polB, d.cfg)

	if signal == 0 {
		// Polarity agrees: the pair conflicts only when it is numeric
		// with materially different values
		delta, shared := numericDelta(extractQuantities(textA), extractQuantities(textB))
		if !shared || delta < d.cfg.NumericDeltaMin {
			return nil
		}
		if delta > 1 {
			delta = 1
		}
		signal = delta
	}

	w := d.cfg.SimilarityWeight
	confidence := w*c.similarity + (1-w)*signal

	kind := c.relation.conflictKind()

	return &models.Conflict{
		ID:            uuid.New(),
		ClauseID:      c.a.Clause.ID,
		OtherClauseID: c.b.Clause.ID,
		Kind:          kind,
		Description:   d.describe(c, kind, confidence),
		Severity:      d.severity(c.a.Clause.Type, c.b.Clause.Type, confidence),
		Confidence:    confidence,
		DetectedAt:    time.Now().UTC(),
	}
}

func normalizedText(clause models.Clause) string {
	if clause.NormalizedText != "" {
		return clause.NormalizedText
	}
	return textnorm.Normalize(clause.Text)
}

func (d *Detector) severity(typeA, typeB models.ClauseType, confidence float64) models.RiskLevel {
	if d.highImpact[typeA] || d.highImpact[typeB] {
		if confidence >= d.cfg.CriticalConfidence {
			return models.RiskCritical
		}
		return models.RiskHigh
	}
	if confidence >= d.cfg.CriticalConfidence {
		return models.RiskHigh
	}
	if confidence >= d.cfg.MediumConfidence {
		return models.RiskMedium
	}
	return models.RiskLow
}

func (d *Detector) describe(c candidate, kind models.ConflictKind, confidence float64) string {
	pathA := sectionLabel(c.a.Clause)
	pathB := sectionLabel(c.b.Clause)

	var desc string
	switch kind {
	case models.KindOverride:
		desc = fmt.Sprintf("OVERRIDE: Amendment clause (Section %s) may override original clause (Section %s).", pathA, pathB)
	case models.KindVersionConflict:
		desc = fmt.Sprintf("VERSION_CONFLICT: Different versions contain conflicting clauses in sections %s and %s.", pathA, pathB)
	default:
		desc = fmt.Sprintf("CONTRADICTION: Contradictory clauses found in sections %s and %s.", pathA, pathB)
	}

	return fmt.Sprintf("%s Conflict confidence: %.0f%%", desc, confidence*100)
}

func sectionLabel(clause models.Clause) string {
	if clause.Path != "" {
		return clause.Path
	}
	return "unknown"
}

// PairPolarityDisagrees reports whether two clauses disagree in
// polarity. The QA evidence annotator uses this to flag answers built
// on opposing clauses.
func (d *Detector) PairPolarityDisagrees(a, b models.Clause) bool {
	polA := d.polarity.Extract(normalizedText(a))
	polB := d.polarity.Extract(normalizedText(b))
	return d.polarity.disagreement(polA, polB, d.cfg) > 0
}

func pairKey(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if as < bs {
		return as + "|" + bs
	}
	return bs + "|" + as
}
