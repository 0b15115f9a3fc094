package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/contractlens/contract-analyzer/internal/storage"
	"github.com/contractlens/contract-analyzer/internal/textnorm"
	"github.com/contractlens/contract-analyzer/pkg/models"
)

// CreateContractRequest represents a request to register a contract
type CreateContractRequest struct {
	Name             string `json:"name"`
	Version          string `json:"version"`
	IsAmendment      bool   `json:"is_amendment"`
	ParentContractID string `json:"parent_contract_id,omitempty"`
}

func (s *Server) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	var req CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	contract := &storage.Contract{
		Name:        req.Name,
		Version:     req.Version,
		IsAmendment: req.IsAmendment,
	}

	if req.ParentContractID != "" {
		parentID, err := uuid.Parse(req.ParentContractID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid parent_contract_id")
			return
		}
		parent, err := s.contractRepo.GetByID(r.Context(), parentID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to look up parent contract")
			return
		}
		if parent == nil {
			respondError(w, http.StatusBadRequest, "parent contract does not exist")
			return
		}
		contract.ParentContractID = &parentID
	}

	if err := s.contractRepo.Create(r.Context(), contract); err != nil {
		s.logger.Error("failed to create contract", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create contract")
		return
	}

	respondJSON(w, http.StatusCreated, toModelContract(contract))
}

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := s.contractRepo.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list contracts", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list contracts")
		return
	}

	result := make([]models.Contract, len(contracts))
	for i, c := range contracts {
		result[i] = toModelContract(c)
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	contractID, ok := s.contractIDParam(w, r)
	if !ok {
		return
	}

	contract, err := s.contractRepo.GetByID(r.Context(), contractID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get contract")
		return
	}
	if contract == nil {
		respondError(w, http.StatusNotFound, "contract not found")
		return
	}

	respondJSON(w, http.StatusOK, toModelContract(contract))
}

func (s *Server) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	contractID, ok := s.contractIDParam(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	if err := s.conflictRepo.DeleteByContractID(ctx, contractID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete contract")
		return
	}
	if err := s.interpretationRepo.DeleteByContractID(ctx, contractID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete contract")
		return
	}
	if err := s.clauseRepo.DeleteByContractID(ctx, contractID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete contract")
		return
	}
	if err := s.contractRepo.Delete(ctx, contractID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete contract")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetAmendments(w http.ResponseWriter, r *http.Request) {
	contractID, ok := s.contractIDParam(w, r)
	if !ok {
		return
	}

	amendments, err := s.contractRepo.GetAmendments(r.Context(), contractID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get amendments")
		return
	}

	result := make([]models.Contract, len(amendments))
	for i, a := range amendments {
		result[i] = toModelContract(a)
	}
	respondJSON(w, http.StatusOK, result)
}

// ClauseRequest represents one clause in an ingestion request
type ClauseRequest struct {
	Path       string `json:"path"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	Text       string `json:"text"`
	PageNumber int    `json:"page_number"`
	Position   int    `json:"position"`
}

func (s *Server) handleAddClauses(w http.ResponseWriter, r *http.Request) {
	contractID, ok := s.contractIDParam(w, r)
	if !ok {
		return
	}

	contract, err := s.contractRepo.GetByID(r.Context(), contractID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get contract")
		return
	}
	if contract == nil {
		respondError(w, http.StatusNotFound, "contract not found")
		return
	}

	var req struct {
		Clauses []ClauseRequest `json:"clauses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Clauses) == 0 {
		respondError(w, http.StatusBadRequest, "clauses are required")
		return
	}

	clauses := make([]*storage.Clause, 0, len(req.Clauses))
	for i, cr := range req.Clauses {
		if cr.Text == "" {
			respondError(w, http.StatusBadRequest, "clause text is required")
			return
		}

		clauseType := cr.Type
		if clauseType == "" {
			clauseType = string(models.TypeGeneral)
		}

		position := cr.Position
		if position == 0 {
			position = i + 1
		}

		// Embedding failures degrade to lexical-only clauses
		rep := s.builder.Build(r.Context(), cr.Text)
		if rep.Degraded {
			s.logger.Warn("clause stored without embedding",
				"contract_id", contractID, "path", cr.Path)
		}

		clauses = append(clauses, &storage.Clause{
			ContractID:     contractID,
			Path:           cr.Path,
			Title:          cr.Title,
			Type:           clauseType,
			Text:           cr.Text,
			NormalizedText: textnorm.Normalize(cr.Text),
			Embedding:      rep.Vector,
			PageNumber:     cr.PageNumber,
			Position:       position,
		})
	}

	if err := s.clauseRepo.CreateBatch(r.Context(), clauses); err != nil {
		s.logger.Error("failed to store clauses", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to store clauses")
		return
	}

	respondJSON(w, http.StatusCreated, toModelClauses(clauses))
}

func (s *Server) handleGetClauses(w http.ResponseWriter, r *http.Request) {
	contractID, ok := s.contractIDParam(w, r)
	if !ok {
		return
	}

	clauses, err := s.clauseRepo.GetByContractID(r.Context(), contractID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get clauses")
		return
	}

	respondJSON(w, http.StatusOK, toModelClauses(clauses))
}

// SimilarClauseResponse is one match from a similarity lookup
type SimilarClauseResponse struct {
	Clause     models.Clause `json:"clause"`
	Similarity float64       `json:"similarity"`
}

// handleFindSimilarClauses finds clauses across all stored contracts
// that resemble one clause, using its persisted embedding
func (s *Server) handleFindSimilarClauses(w http.ResponseWriter, r *http.Request) {
	clauseID, err := uuid.Parse(chi.URLParam(r, "clauseID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid clause ID")
		return
	}

	clause, err := s.clauseRepo.GetByID(r.Context(), clauseID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get clause")
		return
	}
	if clause == nil {
		respondError(w, http.StatusNotFound, "clause not found")
		return
	}
	if len(clause.Embedding) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "clause has no embedding")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	threshold, _ := strconv.ParseFloat(r.URL.Query().Get("threshold"), 64)

	matches, err := s.clauseRepo.FindSimilar(r.Context(), pgvector.NewVector(clause.Embedding), limit, threshold)
	if err != nil {
		s.logger.Error("similarity lookup failed", "clause_id", clauseID, "error", err)
		respondError(w, http.StatusInternalServerError, "similarity lookup failed")
		return
	}

	result := make([]SimilarClauseResponse, 0, len(matches))
	for _, m := range matches {
		if m.Clause.ID == clauseID {
			continue
		}
		result = append(result, SimilarClauseResponse{
			Clause:     toModelClauses([]*storage.Clause{m.Clause})[0],
			Similarity: m.Similarity,
		})
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) contractIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	contractID, err := uuid.Parse(chi.URLParam(r, "contractID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid contract ID")
		return uuid.Nil, false
	}
	return contractID, true
}
