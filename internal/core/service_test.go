package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ============================================================================
// Test Doubles
// ============================================================================

// newTestCatalog builds a catalog whose metadata comes from fixed data
// instead of a database.
func newTestCatalog(tables []string, cols map[string][]Column) *Catalog {
	c := NewCatalog(nil, "public", "_master", 30*time.Second)
	c.listFn = func(ctx context.Context) ([]string, error) {
		return tables, nil
	}
	c.colsFn = func(ctx context.Context, table string) ([]Column, error) {
		return cols[table], nil
	}
	return c
}

type execCall struct {
	query string
	args  []interface{}
}

// fakeDB records Exec calls and serves canned QueryRow results. Query is
// unused by the paths under test.
type fakeDB struct {
	execErr error
	execFn  func(query string, args []interface{}) error
	execs   []execCall

	rowErr   error
	rowValue int
	rowQuery string
	rowCalls int
}

func (f *fakeDB) Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{query: query, args: args})
	if f.execFn != nil {
		if err := f.execFn(query, args); err != nil {
			return pgconn.CommandTag{}, err
		}
	}
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("query not supported by fake")
}

func (f *fakeDB) QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row {
	f.rowCalls++
	f.rowQuery = query
	return &fakeRow{err: f.rowErr, value: f.rowValue}
}

type fakeRow struct {
	err   error
	value int
}

func (r *fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) > 0 {
		if p, ok := dest[0].(*int); ok {
			*p = r.value
		}
	}
	return nil
}

// supplierCols is a typical master table shape for service tests.
func supplierCols() map[string][]Column {
	return map[string][]Column{
		"supplier_master": {
			{Name: "id", Generated: true},
			{Name: "name"},
			{Name: "inch", DataType: "numeric"},
			{Name: "is_active", DataType: "integer"},
			{Name: "created_at", DataType: "timestamp without time zone", Default: "now()"},
		},
		"plain_master": {
			{Name: "id", Generated: true},
			{Name: "name"},
		},
	}
}

func newTestService(db *fakeDB) *Service {
	catalog := newTestCatalog([]string{"supplier_master", "plain_master"}, supplierCols())
	return NewService(db, catalog, NewStore(10*time.Minute))
}

// ============================================================================
// Row ID Parsing Tests
// ============================================================================

func TestParseRowID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int64
		wantErr bool
	}{
		{"simple", "42", 42, false},
		{"zero", "0", 0, false},
		{"surrounding spaces", " 7 ", 7, false},
		{"negative", "-1", 0, true},
		{"alpha", "abc", 0, true},
		{"decimal", "1.5", 0, true},
		{"empty", "", 0, true},
		{"injection attempt", "1; DROP TABLE x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRowID(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidID) {
					t.Fatalf("expected ErrInvalidID, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseRowID(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

// ============================================================================
// Insert Tests
// ============================================================================

func TestInsertRow_BindsInsertableColumns(t *testing.T) {
	db := &fakeDB{}
	svc := newTestService(db)

	err := svc.InsertRow(context.Background(), "supplier_master", map[string]string{
		"name":      "  Widget  ",
		"inch":      "",
		"is_active": "1",
	})
	if err != nil {
		t.Fatalf("InsertRow error: %v", err)
	}

	if len(db.execs) != 1 {
		t.Fatalf("expected 1 exec, got %d", len(db.execs))
	}

	call := db.execs[0]
	wantQuery := `INSERT INTO "supplier_master" ("name", "inch", "is_active") VALUES ($1, $2, $3)`
	if call.query != wantQuery {
		t.Errorf("query = %q, want %q", call.query, wantQuery)
	}

	if call.args[0] != "Widget" {
		t.Errorf("expected trimmed name, got %v", call.args[0])
	}
	if call.args[1] != nil {
		t.Errorf("empty value must insert NULL, got %v", call.args[1])
	}
	if call.args[2] != "1" {
		t.Errorf("form values pass through as text, got %v", call.args[2])
	}
}

func TestInsertRow_UnknownTable(t *testing.T) {
	db := &fakeDB{}
	svc := newTestService(db)

	err := svc.InsertRow(context.Background(), "users", map[string]string{"name": "x"})
	if !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable, got %v", err)
	}
	if len(db.execs) != 0 {
		t.Error("no insert may run for a disallowed table")
	}
}

func TestInsertRow_DuplicateKey(t *testing.T) {
	db := &fakeDB{execErr: &pgconn.PgError{Code: "23505", Message: "duplicate key"}}
	svc := newTestService(db)

	err := svc.InsertRow(context.Background(), "supplier_master", map[string]string{"name": "x"})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

// ============================================================================
// Toggle Tests
// ============================================================================

func TestToggleActive_FlipsAndReturnsNewState(t *testing.T) {
	db := &fakeDB{rowValue: 0}
	svc := newTestService(db)

	state, err := svc.ToggleActive(context.Background(), "supplier_master", "5")
	if err != nil {
		t.Fatalf("ToggleActive error: %v", err)
	}
	if state != 0 {
		t.Errorf("expected post-toggle state 0, got %d", state)
	}

	wantQuery := `UPDATE "supplier_master" SET "is_active" = CASE WHEN "is_active" = 1 THEN 0 ELSE 1 END WHERE "id" = $1 RETURNING "is_active"`
	if db.rowQuery != wantQuery {
		t.Errorf("query = %q, want %q", db.rowQuery, wantQuery)
	}
}

func TestToggleActive_TableWithoutFlag(t *testing.T) {
	db := &fakeDB{}
	svc := newTestService(db)

	_, err := svc.ToggleActive(context.Background(), "plain_master", "5")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if db.rowCalls != 0 {
		t.Error("no update may run for a table without the flag column")
	}
}

func TestToggleActive_RowNotFound(t *testing.T) {
	db := &fakeDB{rowErr: pgx.ErrNoRows}
	svc := newTestService(db)

	_, err := svc.ToggleActive(context.Background(), "supplier_master", "999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleActive_BadID(t *testing.T) {
	db := &fakeDB{}
	svc := newTestService(db)

	_, err := svc.ToggleActive(context.Background(), "supplier_master", "five")
	if !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if db.rowCalls != 0 {
		t.Error("no update may run for a malformed id")
	}
}

func TestToggleActive_UnknownTable(t *testing.T) {
	db := &fakeDB{}
	svc := newTestService(db)

	_, err := svc.ToggleActive(context.Background(), "users", "1")
	if !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable, got %v", err)
	}
}
