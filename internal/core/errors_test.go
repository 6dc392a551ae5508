package core

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

// ============================================================================
// Error Classification Tests
// ============================================================================

func TestClassifyDBError_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}

	err := classifyDBError("insert row", pgErr)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestClassifyDBError_OtherBecomesStorageError(t *testing.T) {
	cause := &pgconn.PgError{Code: "23502", Message: "null value in column"}

	err := classifyDBError("insert row", cause)

	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %T", err)
	}
	if storageErr.Op != "insert row" {
		t.Errorf("expected op %q, got %q", "insert row", storageErr.Op)
	}
	if !errors.Is(err, cause) {
		t.Error("StorageError should unwrap to the original cause")
	}
}

func TestStorageError_Error(t *testing.T) {
	err := &StorageError{Op: "list tables", Err: errors.New("connection refused")}
	want := "list tables: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

// ============================================================================
// Failure Reason Tests
// ============================================================================

func TestFailReason_PgErrorKeepsCode(t *testing.T) {
	err := &pgconn.PgError{Code: "23502", Message: "null value in column \"name\""}
	got := failReason(err)
	want := "23502: null value in column \"name\""
	if got != want {
		t.Errorf("failReason = %q, want %q", got, want)
	}
}

func TestFailReason_PlainError(t *testing.T) {
	got := failReason(errors.New("name must not be empty"))
	if got != "name must not be empty" {
		t.Errorf("failReason = %q", got)
	}
}
