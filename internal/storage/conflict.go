package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Conflict represents a stored conflict between two clauses
type Conflict struct {
	ID            uuid.UUID
	ClauseID      uuid.UUID
	OtherClauseID uuid.UUID
	Kind          string
	Description   string
	Severity      string
	Confidence    float64
	IsResolved    bool
	DetectedAt    time.Time
}

// ConflictRepository defines the interface for conflict storage operations
type ConflictRepository interface {
	CreateBatch(ctx context.Context, conflicts []*Conflict) error
	GetByContractID(ctx context.Context, contractID uuid.UUID) ([]*Conflict, error)
	GetByClauseID(ctx context.Context, clauseID uuid.UUID) ([]*Conflict, error)
	MarkResolved(ctx context.Context, id uuid.UUID) error
	DeleteByContractID(ctx context.Context, contractID uuid.UUID) error
}

// PostgresConflictRepository implements ConflictRepository using PostgreSQL
type PostgresConflictRepository struct {
	db *sql.DB
}

// NewPostgresConflictRepository creates a new PostgresConflictRepository
func NewPostgresConflictRepository(db *sql.DB) *PostgresConflictRepository {
	return &PostgresConflictRepository{db: db}
}

// CreateBatch inserts multiple conflicts in a single transaction
func (r *PostgresConflictRepository) CreateBatch(ctx context.Context, conflicts []*Conflict) error {
	if len(conflicts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO conflicts (id, clause_id, other_clause_id, kind, description, severity, confidence, is_resolved, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, c := range conflicts {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if c.DetectedAt.IsZero() {
			c.DetectedAt = now
		}

		_, err := stmt.ExecContext(ctx,
			c.ID,
			c.ClauseID,
			c.OtherClauseID,
			c.Kind,
			c.Description,
			c.Severity,
			c.Confidence,
			c.IsResolved,
			c.DetectedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByContractID retrieves all conflicts touching a contract's clauses
func (r *PostgresConflictRepository) GetByContractID(ctx context.Context, contractID uuid.UUID) ([]*Conflict, error) {
	query := `
		SELECT DISTINCT cf.id, cf.clause_id, cf.other_clause_id, cf.kind, cf.description, cf.severity, cf.confidence, cf.is_resolved, cf.detected_at
		FROM conflicts cf
		JOIN clauses cl ON cl.id = cf.clause_id OR cl.id = cf.other_clause_id
		WHERE cl.contract_id = $1
		ORDER BY cf.confidence DESC, cf.detected_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanConflicts(rows)
}

// GetByClauseID retrieves conflicts where the clause is on either side
func (r *PostgresConflictRepository) GetByClauseID(ctx context.Context, clauseID uuid.UUID) ([]*Conflict, error) {
	query := `
		SELECT id, clause_id, other_clause_id, kind, description, severity, confidence, is_resolved, detected_at
		FROM conflicts
		WHERE clause_id = $1 OR other_clause_id = $1
		ORDER BY confidence DESC
	`

	rows, err := r.db.QueryContext(ctx, query, clauseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanConflicts(rows)
}

// MarkResolved flags a conflict as resolved
func (r *PostgresConflictRepository) MarkResolved(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE conflicts SET is_resolved = TRUE WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// DeleteByContractID removes all conflicts touching a contract's clauses,
// used before re-running detection
func (r *PostgresConflictRepository) DeleteByContractID(ctx context.Context, contractID uuid.UUID) error {
	query := `
		DELETE FROM conflicts
		WHERE clause_id IN (SELECT id FROM clauses WHERE contract_id = $1)
		   OR other_clause_id IN (SELECT id FROM clauses WHERE contract_id = $1)
	`
	_, err := r.db.ExecContext(ctx, query, contractID)
	return err
}

func scanConflicts(rows *sql.Rows) ([]*Conflict, error) {
	var conflicts []*Conflict
	for rows.Next() {
		conflict := &Conflict{}
		err := rows.Scan(
			&conflict.ID,
			&conflict.ClauseID,
			&conflict.OtherClauseID,
			&conflict.Kind,
			&conflict.Description,
			&conflict.Severity,
			&conflict.Confidence,
			&conflict.IsResolved,
			&conflict.DetectedAt,
		)
		if err != nil {
			return nil, err
		}
		conflicts = append(conflicts, conflict)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return conflicts, nil
}
