package api

import (
	"errors"
	"net/http"

	"github.com/contractlens/contract-analyzer/internal/engine"
	"github.com/contractlens/contract-analyzer/pkg/models"
)

func (s *Server) handleDetectConflicts(w http.ResponseWriter, r *http.Request) {
	contractID, ok := s.contractIDParam(w, r)
	if !ok {
		return
	}

	conflicts, err := s.engine.DetectConflicts(r.Context(), contractID)
	if err != nil {
		if errors.Is(err, engine.ErrContractNotFound) {
			respondError(w, http.StatusNotFound, "contract not found")
			return
		}
		s.logger.Error("conflict detection failed", "contract_id", contractID, "error", err)
		respondError(w, http.StatusInternalServerError, "conflict detection failed")
		return
	}

	// Re-detection replaces previous results
	if err := s.conflictRepo.DeleteByContractID(r.Context(), contractID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store conflicts")
		return
	}
	if err := s.conflictRepo.CreateBatch(r.Context(), toStoredConflicts(conflicts)); err != nil {
		s.logger.Error("failed to store conflicts", "contract_id", contractID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to store conflicts")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"contract_id": contractID,
		"conflicts":   conflicts,
	})
}

func (s *Server) handleGetConflicts(w http.ResponseWriter, r *http.Request) {
	contractID, ok := s.contractIDParam(w, r)
	if !ok {
		return
	}

	stored, err := s.conflictRepo.GetByContractID(r.Context(), contractID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get conflicts")
		return
	}

	conflicts := make([]models.Conflict, len(stored))
	for i, c := range stored {
		conflicts[i] = toModelConflict(c)
	}
	respondJSON(w, http.StatusOK, conflicts)
}

func (s *Server) handleAnalyzeInterpretations(w http.ResponseWriter, r *http.Request) {
	contractID, ok := s.contractIDParam(w, r)
	if !ok {
		return
	}

	interpretations, err := s.engine.AnalyzeAllClauses(r.Context(), contractID)
	if err != nil {
		if errors.Is(err, engine.ErrContractNotFound) {
			respondError(w, http.StatusNotFound, "contract not found")
			return
		}
		s.logger.Error("ambiguity analysis failed", "contract_id", contractID, "error", err)
		respondError(w, http.StatusInternalServerError, "ambiguity analysis failed")
		return
	}

	stored, err := toStoredInterpretations(interpretations)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store interpretations")
		return
	}
	if err := s.interpretationRepo.DeleteByContractID(r.Context(), contractID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store interpretations")
		return
	}
	if err := s.interpretationRepo.CreateBatch(r.Context(), stored); err != nil {
		s.logger.Error("failed to store interpretations", "contract_id", contractID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to store interpretations")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"contract_id":     contractID,
		"interpretations": interpretations,
	})
}

func (s *Server) handleGetInterpretations(w http.ResponseWriter, r *http.Request) {
	contractID, ok := s.contractIDParam(w, r)
	if !ok {
		return
	}

	stored, err := s.interpretationRepo.GetByContractID(r.Context(), contractID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get interpretations")
		return
	}

	interpretations := make([]models.Interpretation, len(stored))
	for i, interp := range stored {
		interpretations[i] = toModelInterpretation(interp)
	}
	respondJSON(w, http.StatusOK, interpretations)
}
