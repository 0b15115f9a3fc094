package api

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/contractlens/contract-analyzer/internal/storage"
	"github.com/contractlens/contract-analyzer/pkg/models"
)

// repoSource adapts the repositories to the engine's read interface
type repoSource struct {
	contracts storage.ContractRepository
	clauses   storage.ClauseRepository
}

func (s *repoSource) Contract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, nil
	}
	m := toModelContract(contract)
	return &m, nil
}

func (s *repoSource) Clauses(ctx context.Context, contractID uuid.UUID) ([]models.Clause, error) {
	clauses, err := s.clauses.GetByContractID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return toModelClauses(clauses), nil
}

func (s *repoSource) Versions(ctx context.Context, contractID uuid.UUID) ([]models.Contract, error) {
	versions, err := s.contracts.GetVersions(ctx, contractID)
	if err != nil {
		return nil, err
	}
	result := make([]models.Contract, len(versions))
	for i, v := range versions {
		result[i] = toModelContract(v)
	}
	return result, nil
}

// storedInterpretations serves QA annotation from persisted analysis results
type storedInterpretations struct {
	repo storage.InterpretationRepository
}

func (s *storedInterpretations) InterpretationFor(ctx context.Context, clauseID uuid.UUID) (*models.Interpretation, error) {
	stored, err := s.repo.GetLatestByClauseID(ctx, clauseID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}
	m := toModelInterpretation(stored)
	return &m, nil
}

// storedConflicts serves QA annotation from persisted detection results
type storedConflicts struct {
	repo storage.ConflictRepository
}

func (s *storedConflicts) ConflictsFor(ctx context.Context, clauseID uuid.UUID) ([]models.Conflict, error) {
	stored, err := s.repo.GetByClauseID(ctx, clauseID)
	if err != nil {
		return nil, err
	}
	result := make([]models.Conflict, len(stored))
	for i, c := range stored {
		result[i] = toModelConflict(c)
	}
	return result, nil
}

func toModelContract(c *storage.Contract) models.Contract {
	return models.Contract{
		ID:               c.ID,
		Name:             c.Name,
		Version:          c.Version,
		IsAmendment:      c.IsAmendment,
		ParentContractID: c.ParentContractID,
		CreatedAt:        c.CreatedAt,
	}
}

func toModelClauses(clauses []*storage.Clause) []models.Clause {
	result := make([]models.Clause, len(clauses))
	for i, c := range clauses {
		result[i] = models.Clause{
			ID:             c.ID,
			ContractID:     c.ContractID,
			Path:           c.Path,
			Title:          c.Title,
			Type:           models.ClauseType(c.Type),
			Text:           c.Text,
			NormalizedText: c.NormalizedText,
			Embedding:      c.Embedding,
			PageNumber:     c.PageNumber,
			Position:       c.Position,
		}
	}
	return result
}

func toModelConflict(c *storage.Conflict) models.Conflict {
	return models.Conflict{
		ID:            c.ID,
		ClauseID:      c.ClauseID,
		OtherClauseID: c.OtherClauseID,
		Kind:          models.ConflictKind(c.Kind),
		Description:   c.Description,
		Severity:      models.RiskLevel(c.Severity),
		Confidence:    c.Confidence,
		IsResolved:    c.IsResolved,
		DetectedAt:    c.DetectedAt,
	}
}

func toModelInterpretation(i *storage.Interpretation) models.Interpretation {
	var findings []models.Finding
	if len(i.Findings) > 0 {
		// Findings were marshalled by us, a decode failure leaves them empty
		_ = json.Unmarshal(i.Findings, &findings)
	}

	return models.Interpretation{
		ID:             i.ID,
		ClauseID:       i.ClauseID,
		HasAmbiguity:   i.HasAmbiguity,
		AmbiguityScore: i.AmbiguityScore,
		Risk:           models.RiskLevel(i.Risk),
		Findings:       findings,
		Rationale:      i.Rationale,
		CreatedAt:      i.CreatedAt,
	}
}

func toStoredConflicts(conflicts []models.Conflict) []*storage.Conflict {
	result := make([]*storage.Conflict, len(conflicts))
	for i, c := range conflicts {
		result[i] = &storage.Conflict{
			ID:            c.ID,
			ClauseID:      c.ClauseID,
			OtherClauseID: c.OtherClauseID,
			Kind:          string(c.Kind),
			Description:   c.Description,
			Severity:      string(c.Severity),
			Confidence:    c.Confidence,
			IsResolved:    c.IsResolved,
			DetectedAt:    c.DetectedAt,
		}
	}
	return result
}

func toStoredInterpretations(interpretations []models.Interpretation) ([]*storage.Interpretation, error) {
	result := make([]*storage.Interpretation, len(interpretations))
	for i, interp := range interpretations {
		findings, err := json.Marshal(interp.Findings)
		if err != nil {
			return nil, err
		}
		result[i] = &storage.Interpretation{
			ID:             interp.ID,
			ClauseID:       interp.ClauseID,
			HasAmbiguity:   interp.HasAmbiguity,
			AmbiguityScore: interp.AmbiguityScore,
			Risk:           string(interp.Risk),
			Findings:       findings,
			Rationale:      interp.Rationale,
			CreatedAt:      interp.CreatedAt,
		}
	}
	return result, nil
}
