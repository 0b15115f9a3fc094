package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/contractlens/contract-analyzer/internal/engine"
	"github.com/contractlens/contract-analyzer/internal/storage"
	"github.com/contractlens/contract-analyzer/pkg/models"
)

// AskRequest represents a question against one contract
type AskRequest struct {
	ContractID string `json:"contract_id"`
	Question   string `json:"question"`
	TopK       int    `json:"top_k,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contractID, err := uuid.Parse(req.ContractID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid contract_id")
		return
	}

	answer, err := s.engine.AnswerQuestion(r.Context(), req.Question, contractID, req.TopK)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrEmptyQuestion):
			respondError(w, http.StatusBadRequest, "question is required")
		case errors.Is(err, engine.ErrContractNotFound):
			respondError(w, http.StatusNotFound, "contract not found")
		default:
			s.logger.Error("question answering failed", "contract_id", contractID, "error", err)
			respondError(w, http.StatusInternalServerError, "question answering failed")
		}
		return
	}

	if err := s.storeAnswer(r, contractID, answer); err != nil {
		// The answer is still worth returning when only persistence failed
		s.logger.Error("failed to store answer", "contract_id", contractID, "error", err)
	}

	respondJSON(w, http.StatusOK, answer)
}

func (s *Server) storeAnswer(r *http.Request, contractID uuid.UUID, answer models.Answer) error {
	evidence, err := json.Marshal(answer.Evidence)
	if err != nil {
		return err
	}

	return s.answerRepo.Create(r.Context(), &storage.Answer{
		ID:                     answer.ID,
		ContractID:             contractID,
		Question:               answer.Question,
		Text:                   answer.Text,
		Evidence:               evidence,
		Confidence:             answer.Confidence,
		HasConflictingEvidence: answer.HasConflictingEvidence,
		HasAmbiguousEvidence:   answer.HasAmbiguousEvidence,
		RequiresReview:         answer.RequiresReview,
		CreatedAt:              answer.CreatedAt,
	})
}

func (s *Server) handleGetAnswers(w http.ResponseWriter, r *http.Request) {
	contractID, ok := s.contractIDParam(w, r)
	if !ok {
		return
	}

	stored, err := s.answerRepo.GetByContractID(r.Context(), contractID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get answers")
		return
	}

	answers := make([]models.Answer, len(stored))
	for i, a := range stored {
		var evidence []models.Evidence
		if len(a.Evidence) > 0 {
			_ = json.Unmarshal(a.Evidence, &evidence)
		}
		answers[i] = models.Answer{
			ID:                     a.ID,
			Question:               a.Question,
			Text:                   a.Text,
			Evidence:               evidence,
			Confidence:             a.Confidence,
			HasConflictingEvidence: a.HasConflictingEvidence,
			HasAmbiguousEvidence:   a.HasAmbiguousEvidence,
			RequiresReview:         a.RequiresReview,
			CreatedAt:              a.CreatedAt,
		}
	}
	respondJSON(w, http.StatusOK, answers)
}
