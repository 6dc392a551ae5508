package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Column names with special meaning across master tables. Tables are not
// required to carry them; presence is checked against the live schema
// before any query mentions them.
const (
	// ColID is the storage-assigned row identifier every master table has.
	ColID = "id"

	// ColPN2 is the primary display label column.
	ColPN2 = "pn2"

	// ColName is the secondary display label column. When present in a
	// CSV import its value must not be empty.
	ColName = "name"

	// ColInch is the designated numeric column.
	ColInch = "inch"

	// ColSupplierID joins a row to the supplier table.
	ColSupplierID = "supplier_id"

	// ColActive is the 0/1 flag flipped by ToggleActive.
	ColActive = "is_active"
)

// SupplierTable is the fixed join target for supplier names.
const SupplierTable = "supplier_master"

// Table describes one administrable master table.
type Table struct {
	Name  string // physical name, e.g. "supplier_master"
	Label string // display label, e.g. "Supplier"
}

// Column describes one table column as reported by information_schema.
type Column struct {
	Name      string
	DataType  string
	Nullable  bool
	Default   string
	Generated bool // serial/identity or otherwise storage-maintained
}

// TableRow is a generic row keyed by column name.
type TableRow map[string]interface{}

// ColumnFlags records which optional list columns a table actually has,
// so callers can decide whether to render inch, supplier, or toggle
// controls. Absent columns still appear in listed rows as nulls.
type ColumnFlags struct {
	HasInch     bool
	HasSupplier bool
	HasActive   bool
}

// RowList is the result of listing a table.
type RowList struct {
	Table string
	Rows  []TableRow
	Flags ColumnFlags
}

// HeaderIndex maps normalized column names to their position in the CSV row.
type HeaderIndex map[string]int

// FailedRow is one rejected CSV record with its provenance.
type FailedRow struct {
	Line   int // line in the uploaded file; the header is line 1
	Reason string
	Cells  []string // original field values as uploaded
}

// FailedBatch is the set of failed rows retained from one import.
type FailedBatch struct {
	ID        string
	Table     string
	Header    []string
	Rows      []FailedRow
	CreatedAt time.Time
}

// ImportResult summarizes one CSV import run.
// RetrievalID is set only when at least one row failed.
type ImportResult struct {
	Table       string     `json:"table"`
	Count       int        `json:"count"`
	OkCount     int        `json:"okCount"`
	FailedCount int        `json:"failedCount"`
	Preview     [][]string `json:"preview"`
	RetrievalID string     `json:"retrievalId,omitempty"`
}
