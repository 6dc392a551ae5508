package core

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for the failure modes callers branch on. Handlers
// translate them into user copy with MapError; code tests them with
// errors.Is.
var (
	// ErrInvalidTable means the requested table is not in the managed set.
	ErrInvalidTable = errors.New("unknown table")

	// ErrInvalidID means a row id did not parse as a non-negative integer.
	ErrInvalidID = errors.New("invalid row id")

	// ErrUnsupported means the table lacks the column an operation needs.
	ErrUnsupported = errors.New("operation not supported")

	// ErrDuplicateKey means an insert violated a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound means no row matched the requested id.
	ErrNotFound = errors.New("row not found")

	// ErrMissingFields means a request omitted required parameters.
	ErrMissingFields = errors.New("missing required fields")

	// ErrBadFile means an uploaded file could not be parsed at all, as
	// opposed to individual rows failing.
	ErrBadFile = errors.New("invalid csv file")
)

// StorageError reports a backend failure during a named operation.
// The cause stays wrapped for logging; user-facing copy comes from
// MapError.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// uniqueViolation is the SQLSTATE Postgres reports for duplicate keys.
const uniqueViolation = "23505"

// classifyDBError folds a backend error into the package taxonomy:
// unique violations become ErrDuplicateKey, everything else a
// StorageError carrying the operation name.
func classifyDBError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, ErrDuplicateKey)
	}
	return &StorageError{Op: op, Err: err}
}

// failReason renders an insert error the way the failure list records it:
// Postgres errors as "CODE: message", anything else verbatim.
func failReason(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code + ": " + pgErr.Message
	}
	return err.Error()
}
