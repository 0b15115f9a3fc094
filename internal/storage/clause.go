package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Clause represents a stored contract clause. Embedding is empty for
// clauses whose embedding backend call was skipped or failed.
type Clause struct {
	ID             uuid.UUID
	ContractID     uuid.UUID
	Path           string
	Title          string
	Type           string
	Text           string
	NormalizedText string
	Embedding      []float32
	PageNumber     int
	Position       int
	CreatedAt      time.Time
}

// ClauseRepository defines the interface for clause storage operations
type ClauseRepository interface {
	Create(ctx context.Context, clause *Clause) error
	CreateBatch(ctx context.Context, clauses []*Clause) error
	GetByID(ctx context.Context, id uuid.UUID) (*Clause, error)
	GetByContractID(ctx context.Context, contractID uuid.UUID) ([]*Clause, error)
	FindSimilar(ctx context.Context, embedding pgvector.Vector, limit int, threshold float64) ([]*ClauseWithSimilarity, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByContractID(ctx context.Context, contractID uuid.UUID) error
}

// ClauseWithSimilarity represents a clause with its similarity score
type ClauseWithSimilarity struct {
	Clause     *Clause
	Similarity float64
}

// PostgresClauseRepository implements ClauseRepository using PostgreSQL with pgvector
type PostgresClauseRepository struct {
	db *sql.DB
}

// NewPostgresClauseRepository creates a new PostgresClauseRepository
func NewPostgresClauseRepository(db *sql.DB) *PostgresClauseRepository {
	return &PostgresClauseRepository{db: db}
}

const clauseInsert = `
		INSERT INTO clauses (id, contract_id, path, title, type, text, normalized_text, embedding, page_number, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

// Create inserts a new clause into the database
func (r *PostgresClauseRepository) Create(ctx context.Context, clause *Clause) error {
	if clause.ID == uuid.Nil {
		clause.ID = uuid.New()
	}
	if clause.CreatedAt.IsZero() {
		clause.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, clauseInsert,
		clause.ID,
		clause.ContractID,
		clause.Path,
		clause.Title,
		clause.Type,
		clause.Text,
		clause.NormalizedText,
		embeddingValue(clause.Embedding),
		clause.PageNumber,
		clause.Position,
		clause.CreatedAt,
	)

	return err
}

// CreateBatch inserts multiple clauses in a single transaction
func (r *PostgresClauseRepository) CreateBatch(ctx context.Context, clauses []*Clause) error {
	if len(clauses) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, clauseInsert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, c := range clauses {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}

		_, err := stmt.ExecContext(ctx,
			c.ID,
			c.ContractID,
			c.Path,
			c.Title,
			c.Type,
			c.Text,
			c.NormalizedText,
			embeddingValue(c.Embedding),
			c.PageNumber,
			c.Position,
			c.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a clause by its ID
func (r *PostgresClauseRepository) GetByID(ctx context.Context, id uuid.UUID) (*Clause, error) {
	query := `
		SELECT id, contract_id, path, title, type, text, normalized_text, embedding, page_number, position, created_at
		FROM clauses
		WHERE id = $1
	`

	clause := &Clause{}
	var embedding nullVector
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&clause.ID,
		&clause.ContractID,
		&clause.Path,
		&clause.Title,
		&clause.Type,
		&clause.Text,
		&clause.NormalizedText,
		&embedding,
		&clause.PageNumber,
		&clause.Position,
		&clause.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	clause.Embedding = embedding.Slice()
	return clause, nil
}

// GetByContractID retrieves all clauses for a contract in document order
func (r *PostgresClauseRepository) GetByContractID(ctx context.Context, contractID uuid.UUID) ([]*Clause, error) {
	query := `
		SELECT id, contract_id, path, title, type, text, normalized_text, embedding, page_number, position, created_at
		FROM clauses
		WHERE contract_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clauses []*Clause
	for rows.Next() {
		clause := &Clause{}
		var embedding nullVector
		err := rows.Scan(
			&clause.ID,
			&clause.ContractID,
			&clause.Path,
			&clause.Title,
			&clause.Type,
			&clause.Text,
			&clause.NormalizedText,
			&embedding,
			&clause.PageNumber,
			&clause.Position,
			&clause.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		clause.Embedding = embedding.Slice()
		clauses = append(clauses, clause)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return clauses, nil
}

// FindSimilar finds clauses similar to the given embedding using pgvector cosine distance
func (r *PostgresClauseRepository) FindSimilar(ctx context.Context, embedding pgvector.Vector, limit int, threshold float64) ([]*ClauseWithSimilarity, error) {
	if limit <= 0 {
		limit = 10
	}
	if threshold <= 0 {
		threshold = 0.75
	}

	// Cosine distance is 1 - cosine_similarity, so similarity >= threshold
	// means distance <= 1 - threshold
	query := `
		SELECT id, contract_id, path, title, type, text, normalized_text, embedding, page_number, position, created_at,
			   1 - (embedding <=> $1) as similarity
		FROM clauses
		WHERE embedding IS NOT NULL
		  AND 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, embedding, threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*ClauseWithSimilarity
	for rows.Next() {
		clause := &Clause{}
		var vec nullVector
		var similarity float64
		err := rows.Scan(
			&clause.ID,
			&clause.ContractID,
			&clause.Path,
			&clause.Title,
			&clause.Type,
			&clause.Text,
			&clause.NormalizedText,
			&vec,
			&clause.PageNumber,
			&clause.Position,
			&clause.CreatedAt,
			&similarity,
		)
		if err != nil {
			return nil, err
		}
		clause.Embedding = vec.Slice()
		results = append(results, &ClauseWithSimilarity{Clause: clause, Similarity: similarity})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// Delete removes a clause from the database
func (r *PostgresClauseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM clauses WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// DeleteByContractID removes all clauses for a contract
func (r *PostgresClauseRepository) DeleteByContractID(ctx context.Context, contractID uuid.UUID) error {
	query := `DELETE FROM clauses WHERE contract_id = $1`
	_, err := r.db.ExecContext(ctx, query, contractID)
	return err
}

// embeddingValue maps an empty embedding to SQL NULL
func embeddingValue(embedding []float32) interface{} {
	if len(embedding) == 0 {
		return nil
	}
	return pgvector.NewVector(embedding)
}

// nullVector scans a nullable vector column
type nullVector struct {
	vec   pgvector.Vector
	valid bool
}

func (n *nullVector) Scan(src interface{}) error {
	if src == nil {
		n.valid = false
		return nil
	}
	n.valid = true
	return n.vec.Scan(src)
}

func (n *nullVector) Slice() []float32 {
	if !n.valid {
		return nil
	}
	return n.vec.Slice()
}
