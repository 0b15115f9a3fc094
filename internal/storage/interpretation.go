package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Interpretation represents a stored ambiguity analysis result.
// Findings holds the finding list as JSON.
type Interpretation struct {
	ID             uuid.UUID
	ClauseID       uuid.UUID
	HasAmbiguity   bool
	AmbiguityScore float64
	Risk           string
	Findings       []byte
	Rationale      string
	CreatedAt      time.Time
}

// InterpretationRepository defines the interface for interpretation storage operations
type InterpretationRepository interface {
	CreateBatch(ctx context.Context, interpretations []*Interpretation) error
	GetLatestByClauseID(ctx context.Context, clauseID uuid.UUID) (*Interpretation, error)
	GetByContractID(ctx context.Context, contractID uuid.UUID) ([]*Interpretation, error)
	DeleteByContractID(ctx context.Context, contractID uuid.UUID) error
}

// PostgresInterpretationRepository implements InterpretationRepository using PostgreSQL
type PostgresInterpretationRepository struct {
	db *sql.DB
}

// NewPostgresInterpretationRepository creates a new PostgresInterpretationRepository
func NewPostgresInterpretationRepository(db *sql.DB) *PostgresInterpretationRepository {
	return &PostgresInterpretationRepository{db: db}
}

// CreateBatch inserts multiple interpretations in a single transaction
func (r *PostgresInterpretationRepository) CreateBatch(ctx context.Context, interpretations []*Interpretation) error {
	if len(interpretations) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO interpretations (id, clause_id, has_ambiguity, ambiguity_score, risk, findings, rationale, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, i := range interpretations {
		if i.ID == uuid.Nil {
			i.ID = uuid.New()
		}
		if i.CreatedAt.IsZero() {
			i.CreatedAt = now
		}

		_, err := stmt.ExecContext(ctx,
			i.ID,
			i.ClauseID,
			i.HasAmbiguity,
			i.AmbiguityScore,
			i.Risk,
			i.Findings,
			i.Rationale,
			i.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetLatestByClauseID retrieves the most recent interpretation of a clause
func (r *PostgresInterpretationRepository) GetLatestByClauseID(ctx context.Context, clauseID uuid.UUID) (*Interpretation, error) {
	query := `
		SELECT id, clause_id, has_ambiguity, ambiguity_score, risk, findings, rationale, created_at
		FROM interpretations
		WHERE clause_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	interpretation := &Interpretation{}
	err := r.db.QueryRowContext(ctx, query, clauseID).Scan(
		&interpretation.ID,
		&interpretation.ClauseID,
		&interpretation.HasAmbiguity,
		&interpretation.AmbiguityScore,
		&interpretation.Risk,
		&interpretation.Findings,
		&interpretation.Rationale,
		&interpretation.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return interpretation, nil
}

// GetByContractID retrieves all interpretations for a contract's clauses
func (r *PostgresInterpretationRepository) GetByContractID(ctx context.Context, contractID uuid.UUID) ([]*Interpretation, error) {
	query := `
		SELECT i.id, i.clause_id, i.has_ambiguity, i.ambiguity_score, i.risk, i.findings, i.rationale, i.created_at
		FROM interpretations i
		JOIN clauses c ON i.clause_id = c.id
		WHERE c.contract_id = $1
		ORDER BY c.position ASC, i.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interpretations []*Interpretation
	for rows.Next() {
		interpretation := &Interpretation{}
		err := rows.Scan(
			&interpretation.ID,
			&interpretation.ClauseID,
			&interpretation.HasAmbiguity,
			&interpretation.AmbiguityScore,
			&interpretation.Risk,
			&interpretation.Findings,
			&interpretation.Rationale,
			&interpretation.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		interpretations = append(interpretations, interpretation)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return interpretations, nil
}

// DeleteByContractID removes all interpretations for a contract's clauses
func (r *PostgresInterpretationRepository) DeleteByContractID(ctx context.Context, contractID uuid.UUID) error {
	query := `
		DELETE FROM interpretations
		WHERE clause_id IN (SELECT id FROM clauses WHERE contract_id = $1)
	`
	_, err := r.db.ExecContext(ctx, query, contractID)
	return err
}
