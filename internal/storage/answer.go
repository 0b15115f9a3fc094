package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Answer represents a stored question-answer record. Evidence holds the
// evidence list as JSON.
type Answer struct {
	ID                     uuid.UUID
	ContractID             uuid.UUID
	Question               string
	Text                   string
	Evidence               []byte
	Confidence             float64
	HasConflictingEvidence bool
	HasAmbiguousEvidence   bool
	RequiresReview         bool
	CreatedAt              time.Time
}

// AnswerRepository defines the interface for answer storage operations
type AnswerRepository interface {
	Create(ctx context.Context, answer *Answer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Answer, error)
	GetByContractID(ctx context.Context, contractID uuid.UUID) ([]*Answer, error)
}

// PostgresAnswerRepository implements AnswerRepository using PostgreSQL
type PostgresAnswerRepository struct {
	db *sql.DB
}

// NewPostgresAnswerRepository creates a new PostgresAnswerRepository
func NewPostgresAnswerRepository(db *sql.DB) *PostgresAnswerRepository {
	return &PostgresAnswerRepository{db: db}
}

// Create inserts a new answer into the database
func (r *PostgresAnswerRepository) Create(ctx context.Context, answer *Answer) error {
	if answer.ID == uuid.Nil {
		answer.ID = uuid.New()
	}
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO answers (id, contract_id, question, text, evidence, confidence, has_conflicting_evidence, has_ambiguous_evidence, requires_review, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		answer.ID,
		answer.ContractID,
		answer.Question,
		answer.Text,
		answer.Evidence,
		answer.Confidence,
		answer.HasConflictingEvidence,
		answer.HasAmbiguousEvidence,
		answer.RequiresReview,
		answer.CreatedAt,
	)

	return err
}

// GetByID retrieves an answer by its ID
func (r *PostgresAnswerRepository) GetByID(ctx context.Context, id uuid.UUID) (*Answer, error) {
	query := `
		SELECT id, contract_id, question, text, evidence, confidence, has_conflicting_evidence, has_ambiguous_evidence, requires_review, created_at
		FROM answers
		WHERE id = $1
	`

	answer := &Answer{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&answer.ID,
		&answer.ContractID,
		&answer.Question,
		&answer.Text,
		&answer.Evidence,
		&answer.Confidence,
		&answer.HasConflictingEvidence,
		&answer.HasAmbiguousEvidence,
		&answer.RequiresReview,
		&answer.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return answer, nil
}

// GetByContractID retrieves all answers recorded against a contract
func (r *PostgresAnswerRepository) GetByContractID(ctx context.Context, contractID uuid.UUID) ([]*Answer, error) {
	query := `
		SELECT id, contract_id, question, text, evidence, confidence, has_conflicting_evidence, has_ambiguous_evidence, requires_review, created_at
		FROM answers
		WHERE contract_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []*Answer
	for rows.Next() {
		answer := &Answer{}
		err := rows.Scan(
			&answer.ID,
			&answer.ContractID,
			&answer.Question,
			&answer.Text,
			&answer.Evidence,
			&answer.Confidence,
			&answer.HasConflictingEvidence,
			&answer.HasAmbiguousEvidence,
			&answer.RequiresReview,
			&answer.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return answers, nil
}
