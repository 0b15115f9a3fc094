package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

func TestPostgresContractRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresContractRepository(db)

	contract := &Contract{
		Name:    "Master Services Agreement",
		Version: "2",
	}

	mock.ExpectExec("INSERT INTO contracts").
		WithArgs(sqlmock.AnyArg(), contract.Name, contract.Version, false, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), contract)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if contract.ID == uuid.Nil {
		t.Error("expected contract ID to be generated")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresContractRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresContractRepository(db)

	contractID := uuid.New()
	parentID := uuid.New()
	createdAt := time.Now()

	rows := sqlmock.NewRows([]string{"id", "name", "version", "is_amendment", "parent_contract_id", "created_at"}).
		AddRow(contractID, "MSA Amendment 1", "1", true, parentID, createdAt)

	mock.ExpectQuery("SELECT (.+) FROM contracts WHERE id").
		WithArgs(contractID).
		WillReturnRows(rows)

	contract, err := repo.GetByID(context.Background(), contractID)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if contract == nil {
		t.Fatal("expected contract to be returned")
	}
	if contract.ID != contractID {
		t.Errorf("expected ID %s, got %s", contractID, contract.ID)
	}
	if !contract.IsAmendment {
		t.Error("expected amendment flag set")
	}
	if contract.ParentContractID == nil || *contract.ParentContractID != parentID {
		t.Error("expected parent contract reference")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresContractRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresContractRepository(db)

	contractID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM contracts WHERE id").
		WithArgs(contractID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "version", "is_amendment", "parent_contract_id", "created_at"}))

	contract, err := repo.GetByID(context.Background(), contractID)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if contract != nil {
		t.Error("expected nil contract for missing id")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresContractRepository_GetVersions(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresContractRepository(db)

	contractID := uuid.New()
	otherID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "name", "version", "is_amendment", "parent_contract_id", "created_at"}).
		AddRow(otherID, "MSA", "1", false, nil, time.Now())

	mock.ExpectQuery("SELECT (.+) FROM contracts c").
		WithArgs(contractID).
		WillReturnRows(rows)

	versions, err := repo.GetVersions(context.Background(), contractID)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if len(versions) != 1 || versions[0].ID != otherID {
		t.Errorf("expected the sibling version, got %v", versions)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresClauseRepository_CreateBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresClauseRepository(db)

	contractID := uuid.New()
	clauses := []*Clause{
		{
			ContractID:     contractID,
			Path:           "3.1",
			Type:           "OBLIGATION",
			Text:           "The Contractor shall deliver within 30 days.",
			NormalizedText: "the contractor shall deliver within 30 days.",
			Embedding:      []float32{0.1, 0.2, 0.3},
			Position:       1,
		},
		{
			ContractID:     contractID,
			Path:           "3.2",
			Type:           "PAYMENT",
			Text:           "Payment is due on delivery.",
			NormalizedText: "payment is due on delivery.",
			Position:       2,
		},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO clauses")
	prep.ExpectExec().
		WithArgs(sqlmock.AnyArg(), contractID, "3.1", "", "OBLIGATION",
			clauses[0].Text, clauses[0].NormalizedText, pgvector.NewVector(clauses[0].Embedding),
			0, 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs(sqlmock.AnyArg(), contractID, "3.2", "", "PAYMENT",
			clauses[1].Text, clauses[1].NormalizedText, nil,
			0, 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = repo.CreateBatch(context.Background(), clauses)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	for _, c := range clauses {
		if c.ID == uuid.Nil {
			t.Error("expected clause IDs to be generated")
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresClauseRepository_GetByContractID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresClauseRepository(db)

	contractID := uuid.New()
	embedded := uuid.New()
	degraded := uuid.New()
	createdAt := time.Now()

	columns := []string{"id", "contract_id", "path", "title", "type", "text", "normalized_text", "embedding", "page_number", "position", "created_at"}
	rows := sqlmock.NewRows(columns).
		AddRow(embedded, contractID, "1.1", "Delivery", "OBLIGATION",
			"Text A", "text a", "[0.1,0.2]", 1, 1, createdAt).
		AddRow(degraded, contractID, "1.2", "Payment", "PAYMENT",
			"Text B", "text b", nil, 1, 2, createdAt)

	mock.ExpectQuery("SELECT (.+) FROM clauses WHERE contract_id").
		WithArgs(contractID).
		WillReturnRows(rows)

	clauses, err := repo.GetByContractID(context.Background(), contractID)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if len(clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(clauses))
	}
	if len(clauses[0].Embedding) != 2 {
		t.Errorf("expected embedding of length 2, got %v", clauses[0].Embedding)
	}
	if clauses[1].Embedding != nil {
		t.Errorf("expected nil embedding for NULL column, got %v", clauses[1].Embedding)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresConflictRepository_CreateBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresConflictRepository(db)

	conflicts := []*Conflict{
		{
			ClauseID:      uuid.New(),
			OtherClauseID: uuid.New(),
			Kind:          "CONTRADICTION",
			Description:   "Sections 3.1 and 7.2 contradict each other.",
			Severity:      "HIGH",
			Confidence:    0.73,
		},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO conflicts")
	prep.ExpectExec().
		WithArgs(sqlmock.AnyArg(), conflicts[0].ClauseID, conflicts[0].OtherClauseID,
			"CONTRADICTION", conflicts[0].Description, "HIGH", 0.73, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = repo.CreateBatch(context.Background(), conflicts)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresConflictRepository_MarkResolved(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresConflictRepository(db)

	conflictID := uuid.New()

	mock.ExpectExec("UPDATE conflicts SET is_resolved").
		WithArgs(conflictID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkResolved(context.Background(), conflictID)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresInterpretationRepository_GetLatestByClauseID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresInterpretationRepository(db)

	clauseID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM interpretations").
		WithArgs(clauseID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "clause_id", "has_ambiguity", "ambiguity_score", "risk", "findings", "rationale", "created_at"}))

	interpretation, err := repo.GetLatestByClauseID(context.Background(), clauseID)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if interpretation != nil {
		t.Error("expected nil interpretation for clause without analysis")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresAnswerRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresAnswerRepository(db)

	answer := &Answer{
		ContractID: uuid.New(),
		Question:   "When is payment due?",
		Text:       "Based on MSA, Section 4.1: payment is due within 30 days.",
		Evidence:   []byte(`[{"clause_id":"x"}]`),
		Confidence: 0.72,
	}

	mock.ExpectExec("INSERT INTO answers").
		WithArgs(sqlmock.AnyArg(), answer.ContractID, answer.Question, answer.Text,
			answer.Evidence, answer.Confidence, false, false, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), answer)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if answer.ID == uuid.Nil {
		t.Error("expected answer ID to be generated")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
