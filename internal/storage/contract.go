package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Contract represents a stored contract document
type Contract struct {
	ID               uuid.UUID
	Name             string
	Version          string
	IsAmendment      bool
	ParentContractID *uuid.UUID
	CreatedAt        time.Time
}

// ContractRepository defines the interface for contract storage operations
type ContractRepository interface {
	Create(ctx context.Context, contract *Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*Contract, error)
	List(ctx context.Context) ([]*Contract, error)
	// GetVersions returns the other contracts sharing the given
	// contract's name, i.e. its declared versions
	GetVersions(ctx context.Context, id uuid.UUID) ([]*Contract, error)
	GetAmendments(ctx context.Context, parentID uuid.UUID) ([]*Contract, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostgresContractRepository implements ContractRepository using PostgreSQL
type PostgresContractRepository struct {
	db *sql.DB
}

// NewPostgresContractRepository creates a new PostgresContractRepository
func NewPostgresContractRepository(db *sql.DB) *PostgresContractRepository {
	return &PostgresContractRepository{db: db}
}

// Create inserts a new contract into the database
func (r *PostgresContractRepository) Create(ctx context.Context, contract *Contract) error {
	if contract.ID == uuid.Nil {
		contract.ID = uuid.New()
	}
	if contract.CreatedAt.IsZero() {
		contract.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO contracts (id, name, version, is_amendment, parent_contract_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		contract.ID,
		contract.Name,
		contract.Version,
		contract.IsAmendment,
		contract.ParentContractID,
		contract.CreatedAt,
	)

	return err
}

// GetByID retrieves a contract by its ID
func (r *PostgresContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*Contract, error) {
	query := `
		SELECT id, name, version, is_amendment, parent_contract_id, created_at
		FROM contracts
		WHERE id = $1
	`

	contract := &Contract{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&contract.ID,
		&contract.Name,
		&contract.Version,
		&contract.IsAmendment,
		&contract.ParentContractID,
		&contract.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return contract, nil
}

// List retrieves all contracts ordered by name and version
func (r *PostgresContractRepository) List(ctx context.Context) ([]*Contract, error) {
	query := `
		SELECT id, name, version, is_amendment, parent_contract_id, created_at
		FROM contracts
		ORDER BY name ASC, version ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanContracts(rows)
}

// GetVersions retrieves contracts with the same name as the given one,
// the given contract excluded
func (r *PostgresContractRepository) GetVersions(ctx context.Context, id uuid.UUID) ([]*Contract, error) {
	query := `
		SELECT c.id, c.name, c.version, c.is_amendment, c.parent_contract_id, c.created_at
		FROM contracts c
		WHERE c.name = (SELECT name FROM contracts WHERE id = $1)
		  AND c.id != $1
		ORDER BY c.version ASC
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanContracts(rows)
}

// GetAmendments retrieves amendments declared against a parent contract
func (r *PostgresContractRepository) GetAmendments(ctx context.Context, parentID uuid.UUID) ([]*Contract, error) {
	query := `
		SELECT id, name, version, is_amendment, parent_contract_id, created_at
		FROM contracts
		WHERE parent_contract_id = $1 AND is_amendment = TRUE
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanContracts(rows)
}

// Delete removes a contract from the database
func (r *PostgresContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM contracts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func scanContracts(rows *sql.Rows) ([]*Contract, error) {
	var contracts []*Contract
	for rows.Next() {
		contract := &Contract{}
		err := rows.Scan(
			&contract.ID,
			&contract.Name,
			&contract.Version,
			&contract.IsAmendment,
			&contract.ParentContractID,
			&contract.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, contract)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return contracts, nil
}
