package models

import (
	"time"

	"github.com/google/uuid"
)

// ClauseType classifies a clause by its legal function
type ClauseType string

const (
	TypeObligation           ClauseType = "OBLIGATION"
	TypeExclusion            ClauseType = "EXCLUSION"
	TypeTermination          ClauseType = "TERMINATION"
	TypeLiability            ClauseType = "LIABILITY"
	TypePayment              ClauseType = "PAYMENT"
	TypeConfidentiality      ClauseType = "CONFIDENTIALITY"
	TypeIntellectualProperty ClauseType = "INTELLECTUAL_PROPERTY"
	TypeWarranty             ClauseType = "WARRANTY"
	TypeIndemnification      ClauseType = "INDEMNIFICATION"
	TypeForceMajeure         ClauseType = "FORCE_MAJEURE"
	TypeDisputeResolution    ClauseType = "DISPUTE_RESOLUTION"
	TypeAmendment            ClauseType = "AMENDMENT"
	TypeGeneral              ClauseType = "GENERAL"
)

// RiskLevel grades ambiguity risk and conflict severity
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// ConflictKind identifies how two clauses conflict
type ConflictKind string

const (
	KindContradiction   ConflictKind = "CONTRADICTION"
	KindOverride        ConflictKind = "OVERRIDE"
	KindVersionConflict ConflictKind = "VERSION_CONFLICT"
)

// Contract represents a contract document
type Contract struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Version          string     `json:"version"`
	IsAmendment      bool       `json:"is_amendment"`
	ParentContractID *uuid.UUID `json:"parent_contract_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Clause is the smallest addressable unit of contract text.
// Text is never mutated after creation; re-extraction creates a new clause.
type Clause struct {
	ID             uuid.UUID  `json:"id"`
	ContractID     uuid.UUID  `json:"contract_id"`
	Path           string     `json:"path"` // hierarchical section path, e.g. "5.2.1"
	Title          string     `json:"title,omitempty"`
	Type           ClauseType `json:"type"`
	Text           string     `json:"text"`
	NormalizedText string     `json:"normalized_text"`
	Embedding      []float32  `json:"-"` // nil when no embedding backend was configured
	PageNumber     int        `json:"page_number"`
	Position       int        `json:"position"` // order in document
}

// Conflict records a detected conflict between two clauses.
// Immutable once created except for the resolution fields, which the
// review workflow owns.
type Conflict struct {
	ID            uuid.UUID    `json:"id"`
	ClauseID      uuid.UUID    `json:"clause_id"`
	OtherClauseID uuid.UUID    `json:"conflicting_clause_id"`
	Kind          ConflictKind `json:"kind"`
	Description   string       `json:"description"`
	Severity      RiskLevel    `json:"severity"`
	Confidence    float64      `json:"confidence"` // 0.0 to 1.0
	IsResolved    bool         `json:"is_resolved"`
	DetectedAt    time.Time    `json:"detected_at"`
}

// FindingCategory names the ambiguity signal a finding belongs to
type FindingCategory string

const (
	CategoryVagueQualifier     FindingCategory = "VAGUE_QUALIFIER"
	CategoryVagueQuantifier    FindingCategory = "VAGUE_QUANTIFIER"
	CategoryComplexConditional FindingCategory = "COMPLEX_CONDITIONAL"
	CategoryMissingSpecifics   FindingCategory = "MISSING_SPECIFICS"
	CategoryMultipleNegations  FindingCategory = "MULTIPLE_NEGATIONS"
	CategoryLongSentences      FindingCategory = "LONG_SENTENCES"
)

// Finding is one matched ambiguity signal with its span in the
// normalized clause text, for UI highlighting.
type Finding struct {
	Term     string          `json:"term"`
	Category FindingCategory `json:"category"`
	Start    int             `json:"start"`
	End      int             `json:"end"`
}

// Interpretation is the result of ambiguity analysis for one clause.
// A re-analysis run supersedes the previous record, never edits it.
type Interpretation struct {
	ID             uuid.UUID `json:"id"`
	ClauseID       uuid.UUID `json:"clause_id"`
	HasAmbiguity   bool      `json:"has_ambiguity"`
	AmbiguityScore float64   `json:"ambiguity_score"`
	Risk           RiskLevel `json:"risk"`
	Findings       []Finding `json:"findings"`
	Rationale      string    `json:"rationale"`
	CreatedAt      time.Time `json:"created_at"`
}

// Evidence is one clause supporting an answer
type Evidence struct {
	ClauseID     uuid.UUID  `json:"clause_id"`
	Path         string     `json:"path"`
	Text         string     `json:"text"`
	Type         ClauseType `json:"type"`
	Relevance    float64    `json:"relevance"`
	DocumentName string     `json:"document_name"`
	PageNumber   int        `json:"page_number"`
}

// Answer is the result of answering one question against a contract
type Answer struct {
	ID                     uuid.UUID  `json:"id"`
	Question               string     `json:"question"`
	Text                   string     `json:"answer"`
	Evidence               []Evidence `json:"evidence"`
	Confidence             float64    `json:"confidence"`
	HasConflictingEvidence bool       `json:"has_conflicting_evidence"`
	HasAmbiguousEvidence   bool       `json:"has_ambiguous_evidence"`
	RequiresReview         bool       `json:"requires_review"`
	CreatedAt              time.Time  `json:"created_at"`
}
