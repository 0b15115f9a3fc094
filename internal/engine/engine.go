// Package engine wires the clause analyzers behind the three entry
// points the API and workflow layers call: conflict detection,
// ambiguity analysis and question answering. Each call fetches its
// clause set once, computes synchronously and returns fresh results;
// the engine holds no state between invocations.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/contractlens/contract-analyzer/internal/ambiguity"
	"github.com/contractlens/contract-analyzer/internal/conflict"
	"github.com/contractlens/contract-analyzer/internal/qa"
	"github.com/contractlens/contract-analyzer/internal/representation"
	"github.com/contractlens/contract-analyzer/pkg/models"
)

var (
	// ErrContractNotFound is returned when the requested contract does
	// not exist in the supplied data
	ErrContractNotFound = errors.New("contract not found")

	// ErrEmptyQuestion rejects blank questions before any processing
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrEmptyClause rejects clauses with no text
	ErrEmptyClause = errors.New("clause text is empty")
)

// ContractSource is the persistence read interface the engine consumes.
// Implementations return (nil, nil) for a missing contract.
type ContractSource interface {
	Contract(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	Clauses(ctx context.Context, contractID uuid.UUID) ([]models.Clause, error)
	// Versions lists contracts declared as versions of the given one
	Versions(ctx context.Context, contractID uuid.UUID) ([]models.Contract, error)
}

// Config assembles an Engine
type Config struct {
	Source    ContractSource
	Builder   *representation.Builder
	Ambiguity *ambiguity.Detector
	Conflicts *conflict.Detector
	QA        qa.Config

	// Optional stored-result readers for QA annotation. When nil the
	// engine runs the detectors on demand per question.
	Interpretations qa.InterpretationReader
	ConflictRecords qa.ConflictReader

	Logger *slog.Logger
}

// Engine is the clause semantic analysis facade
type Engine struct {
	source          ContractSource
	builder         *representation.Builder
	ambiguity       *ambiguity.Detector
	conflicts       *conflict.Detector
	qaConfig        qa.Config
	interpretations qa.InterpretationReader
	conflictRecords qa.ConflictReader
	logger          *slog.Logger
}

// New creates an engine. Builder and detectors fall back to defaults
// when nil; Source is required.
func New(cfg Config) *Engine {
	if cfg.Builder == nil {
		cfg.Builder = representation.NewBuilder(nil, 0)
	}
	if cfg.Ambiguity == nil {
		cfg.Ambiguity = ambiguity.NewDetector(ambiguity.Config{})
	}
	if cfg.Conflicts == nil {
		cfg.Conflicts = conflict.NewDetector(conflict.Config{})
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{
		source:          cfg.Source,
		builder:         cfg.Builder,
		ambiguity:       cfg.Ambiguity,
		conflicts:       cfg.Conflicts,
		qaConfig:        cfg.QA,
		interpretations: cfg.Interpretations,
		conflictRecords: cfg.ConflictRecords,
		logger:          cfg.Logger,
	}
}

// DetectConflicts finds all conflicts for a contract: internal
// contradictions, overrides of its parent when it is an amendment, and
// conflicts with its declared versions
func (e *Engine) DetectConflicts(ctx context.Context, contractID uuid.UUID) ([]models.Conflict, error) {
	if contractID == uuid.Nil {
		return nil, ErrContractNotFound
	}

	input, err := e.loadDetectionInput(ctx, contractID)
	if err != nil {
		return nil, err
	}

	return e.conflicts.Detect(*input), nil
}

// AnalyzeClause analyzes one clause for ambiguity
func (e *Engine) AnalyzeClause(clause models.Clause) (models.Interpretation, error) {
	if strings.TrimSpace(clause.Text) == "" && strings.TrimSpace(clause.NormalizedText) == "" {
		return models.Interpretation{}, ErrEmptyClause
	}
	return e.ambiguity.Analyze(clause), nil
}

// AnalyzeAllClauses analyzes every clause of a contract. Clauses with
// no text are skipped; one bad clause never aborts the batch.
func (e *Engine) AnalyzeAllClauses(ctx context.Context, contractID uuid.UUID) ([]models.Interpretation, error) {
	contract, err := e.source.Contract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("load contract: %w", err)
	}
	if contract == nil {
		return nil, ErrContractNotFound
	}

	clauses, err := e.source.Clauses(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("load clauses: %w", err)
	}

	interpretations := make([]models.Interpretation, 0, len(clauses))
	for _, clause := range clauses {
		interp, err := e.AnalyzeClause(clause)
		if err != nil {
			e.logger.Warn("skipping clause in batch analysis",
				"clause_id", clause.ID, "error", err)
			continue
		}
		interpretations = append(interpretations, interp)
	}
	return interpretations, nil
}

// AnswerQuestion answers a question against the clauses of one
// contract, annotating the evidence with ambiguity and conflict results
func (e *Engine) AnswerQuestion(ctx context.Context, question string, contractID uuid.UUID, topK int) (models.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return models.Answer{}, ErrEmptyQuestion
	}

	contract, err := e.source.Contract(ctx, contractID)
	if err != nil {
		return models.Answer{}, fmt.Errorf("load contract: %w", err)
	}
	if contract == nil {
		return models.Answer{}, ErrContractNotFound
	}

	clauses, err := e.source.Clauses(ctx, contractID)
	if err != nil {
		return models.Answer{}, fmt.Errorf("load clauses: %w", err)
	}

	interpretations := e.interpretations
	conflictRecords := e.conflictRecords
	if interpretations == nil || conflictRecords == nil {
		annotator := e.onDemandAnnotator(ctx, contractID, clauses)
		if interpretations == nil {
			interpretations = annotator
		}
		if conflictRecords == nil {
			conflictRecords = annotator
		}
	}

	retriever := qa.NewRetriever(e.qaConfig, e.builder, e.conflicts, interpretations, conflictRecords)
	return retriever.Answer(ctx, question, *contract, clauses, topK), nil
}

// loadDetectionInput assembles the conflict detector's input. Related
// contracts that fail to load are skipped with a warning; a dangling
// parent reference must not abort detection.
func (e *Engine) loadDetectionInput(ctx context.Context, contractID uuid.UUID) (*conflict.Input, error) {
	contract, err := e.source.Contract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("load contract: %w", err)
	}
	if contract == nil {
		return nil, ErrContractNotFound
	}

	clauses, err := e.source.Clauses(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("load clauses: %w", err)
	}

	input := &conflict.Input{
		Contract: *contract,
		Clauses:  e.toInputs(clauses),
	}

	if contract.IsAmendment && contract.ParentContractID != nil {
		parent, err := e.source.Contract(ctx, *contract.ParentContractID)
		if err != nil || parent == nil {
			e.logger.Warn("parent contract unavailable, skipping override detection",
				"contract_id", contractID, "parent_id", *contract.ParentContractID)
		} else {
			parentClauses, err := e.source.Clauses(ctx, parent.ID)
			if err != nil {
				e.logger.Warn("parent clauses unavailable, skipping override detection",
					"parent_id", parent.ID, "error", err)
			} else {
				input.Parent = &conflict.ContractClauses{
					Contract: *parent,
					Clauses:  e.toInputs(parentClauses),
				}
			}
		}
	}

	versions, err := e.source.Versions(ctx, contractID)
	if err != nil {
		e.logger.Warn("version lookup failed, skipping cross-version detection",
			"contract_id", contractID, "error", err)
		versions = nil
	}
	for _, version := range versions {
		if version.ID == contractID {
			continue
		}
		versionClauses, err := e.source.Clauses(ctx, version.ID)
		if err != nil {
			e.logger.Warn("version clauses unavailable, skipping one version",
				"version_id", version.ID, "error", err)
			continue
		}
		input.Versions = append(input.Versions, conflict.ContractClauses{
			Contract: version,
			Clauses:  e.toInputs(versionClauses),
		})
	}

	return input, nil
}

func (e *Engine) toInputs(clauses []models.Clause) []conflict.ClauseInput {
	inputs := make([]conflict.ClauseInput, len(clauses))
	for i, clause := range clauses {
		inputs[i] = conflict.ClauseInput{
			Clause: clause,
			Rep:    e.builder.FromClause(clause),
		}
	}
	return inputs
}

// onDemandAnnotator computes interpretations and conflicts for QA
// evidence from the loaded clause set, used when no stored-record
// readers are wired
type annotator struct {
	engine     *Engine
	ctx        context.Context
	contractID uuid.UUID
	byID       map[uuid.UUID]models.Clause

	conflictsOnce bool
	conflicts     []models.Conflict
}

func (e *Engine) onDemandAnnotator(ctx context.Context, contractID uuid.UUID, clauses []models.Clause) *annotator {
	byID := make(map[uuid.UUID]models.Clause, len(clauses))
	for _, c := range clauses {
		byID[c.ID] = c
	}
	return &annotator{
		engine:     e,
		ctx:        ctx,
		contractID: contractID,
		byID:       byID,
	}
}

func (a *annotator) InterpretationFor(ctx context.Context, clauseID uuid.UUID) (*models.Interpretation, error) {
	clause, ok := a.byID[clauseID]
	if !ok {
		return nil, nil
	}
	interp, err := a.engine.AnalyzeClause(clause)
	if err != nil {
		return nil, nil
	}
	return &interp, nil
}

func (a *annotator) ConflictsFor(ctx context.Context, clauseID uuid.UUID) ([]models.Conflict, error) {
	if !a.conflictsOnce {
		a.conflictsOnce = true
		conflicts, err := a.engine.DetectConflicts(a.ctx, a.contractID)
		if err == nil {
			a.conflicts = conflicts
		}
	}

	var touching []models.Conflict
	for _, c := range a.conflicts {
		if c.ClauseID == clauseID || c.OtherClauseID == clauseID {
			touching = append(touching, c)
		}
	}
	return touching, nil
}
