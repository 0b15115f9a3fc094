package api

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/contractlens/contract-analyzer/internal/ambiguity"
	"github.com/contractlens/contract-analyzer/internal/config"
	"github.com/contractlens/contract-analyzer/internal/conflict"
	"github.com/contractlens/contract-analyzer/internal/engine"
	"github.com/contractlens/contract-analyzer/internal/qa"
	"github.com/contractlens/contract-analyzer/internal/representation"
	"github.com/contractlens/contract-analyzer/internal/storage"
)

// ServerConfig carries the server's collaborators. Embedder may be nil,
// the engine then works from lexical representations alone.
type ServerConfig struct {
	DB       *sql.DB
	Embedder representation.Embedder
	Config   config.Config
	Logger   *slog.Logger
}

type Server struct {
	router *chi.Mux
	logger *slog.Logger

	contractRepo       storage.ContractRepository
	clauseRepo         storage.ClauseRepository
	conflictRepo       storage.ConflictRepository
	interpretationRepo storage.InterpretationRepository
	answerRepo         storage.AnswerRepository

	builder *representation.Builder
	engine  *engine.Engine
}

func NewServer(cfg ServerConfig) *Server {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:             r,
		logger:             logger,
		contractRepo:       storage.NewPostgresContractRepository(cfg.DB),
		clauseRepo:         storage.NewPostgresClauseRepository(cfg.DB),
		conflictRepo:       storage.NewPostgresConflictRepository(cfg.DB),
		interpretationRepo: storage.NewPostgresInterpretationRepository(cfg.DB),
		answerRepo:         storage.NewPostgresAnswerRepository(cfg.DB),
	}

	s.builder = representation.NewBuilder(cfg.Embedder, time.Duration(cfg.Config.EmbedTimeoutSec)*time.Second)
	s.engine = engine.New(engine.Config{
		Source:    &repoSource{contracts: s.contractRepo, clauses: s.clauseRepo},
		Builder:   s.builder,
		Ambiguity: ambiguity.NewDetector(ambiguity.Config{}),
		Conflicts: conflict.NewDetector(conflict.Config{
			CandidateThreshold: cfg.Config.CandidateThreshold,
		}),
		QA: qa.Config{
			TopK:            cfg.Config.QATopK,
			RelevanceFloor:  cfg.Config.QARelevanceFloor,
			ConflictEpsilon: cfg.Config.QAConflictEpsilon,
			ReviewDiscount:  cfg.Config.QAReviewDiscount,
		},
		Interpretations: &storedInterpretations{repo: s.interpretationRepo},
		ConflictRecords: &storedConflicts{repo: s.conflictRepo},
		Logger:          logger,
	})

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API v1
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", s.handleListContracts)
			r.Post("/", s.handleCreateContract)
			r.Get("/{contractID}", s.handleGetContract)
			r.Delete("/{contractID}", s.handleDeleteContract)

			r.Get("/{contractID}/amendments", s.handleGetAmendments)

			// Clauses
			r.Post("/{contractID}/clauses", s.handleAddClauses)
			r.Get("/{contractID}/clauses", s.handleGetClauses)
			r.Get("/{contractID}/clauses/{clauseID}/similar", s.handleFindSimilarClauses)

			// Analysis
			r.Post("/{contractID}/conflicts/detect", s.handleDetectConflicts)
			r.Get("/{contractID}/conflicts", s.handleGetConflicts)
			r.Post("/{contractID}/interpretations/analyze", s.handleAnalyzeInterpretations)
			r.Get("/{contractID}/interpretations", s.handleGetInterpretations)

			// Question answering
			r.Get("/{contractID}/answers", s.handleGetAnswers)
		})

		r.Post("/ask", s.handleAsk)
	})
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helper to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
