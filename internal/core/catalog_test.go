package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

// ============================================================================
// Table List Caching Tests
// ============================================================================

func TestCatalog_ListTables_CachedWithinTTL(t *testing.T) {
	c := NewCatalog(nil, "public", "_master", 30*time.Second)

	calls := 0
	c.listFn = func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"supplier_master", "wheel_master"}, nil
	}

	now := time.Now()
	c.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		tables, err := c.ListTables(ctx)
		if err != nil {
			t.Fatalf("ListTables error: %v", err)
		}
		if len(tables) != 2 {
			t.Fatalf("expected 2 tables, got %v", tables)
		}
	}

	if calls != 1 {
		t.Errorf("expected 1 metadata query within TTL, got %d", calls)
	}
}

func TestCatalog_ListTables_RefreshAfterTTL(t *testing.T) {
	c := NewCatalog(nil, "public", "_master", 30*time.Second)

	calls := 0
	c.listFn = func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"supplier_master"}, nil
	}

	now := time.Now()
	c.now = func() time.Time { return now }

	ctx := context.Background()
	if _, err := c.ListTables(ctx); err != nil {
		t.Fatalf("ListTables error: %v", err)
	}

	now = now.Add(31 * time.Second)
	if _, err := c.ListTables(ctx); err != nil {
		t.Fatalf("ListTables error: %v", err)
	}

	if calls != 2 {
		t.Errorf("expected refresh after TTL, got %d calls", calls)
	}
}

func TestCatalog_ListTables_Error(t *testing.T) {
	c := NewCatalog(nil, "public", "_master", 30*time.Second)
	c.listFn = func(ctx context.Context) ([]string, error) {
		return nil, errors.New("connection refused")
	}

	if _, err := c.ListTables(context.Background()); err == nil {
		t.Fatal("expected error from failed refresh")
	}
}

// ============================================================================
// Allow-Set Tests
// ============================================================================

func TestCatalog_IsAllowed(t *testing.T) {
	c := newTestCatalog([]string{"supplier_master"}, nil)

	ctx := context.Background()
	allowed, err := c.IsAllowed(ctx, "supplier_master")
	if err != nil {
		t.Fatalf("IsAllowed error: %v", err)
	}
	if !allowed {
		t.Error("expected supplier_master to be allowed")
	}

	allowed, err = c.IsAllowed(ctx, "pg_catalog")
	if err != nil {
		t.Fatalf("IsAllowed error: %v", err)
	}
	if allowed {
		t.Error("unknown table must not be allowed")
	}
}

func TestCatalog_IsAllowed_DroppedAfterRefresh(t *testing.T) {
	c := NewCatalog(nil, "public", "_master", 30*time.Second)

	tables := []string{"supplier_master", "wheel_master"}
	c.listFn = func(ctx context.Context) ([]string, error) {
		return tables, nil
	}

	now := time.Now()
	c.now = func() time.Time { return now }

	ctx := context.Background()
	allowed, err := c.IsAllowed(ctx, "wheel_master")
	if err != nil || !allowed {
		t.Fatalf("expected wheel_master allowed before drop, got %v, %v", allowed, err)
	}

	// The table disappears from the schema and the snapshot expires.
	tables = []string{"supplier_master"}
	now = now.Add(31 * time.Second)

	allowed, err = c.IsAllowed(ctx, "wheel_master")
	if err != nil {
		t.Fatalf("IsAllowed error: %v", err)
	}
	if allowed {
		t.Error("a name dropped by refresh must no longer be allowed")
	}
}

// ============================================================================
// Column Metadata Tests
// ============================================================================

func TestCatalog_Columns_UnknownTable(t *testing.T) {
	colsCalls := 0
	c := newTestCatalog([]string{"supplier_master"}, nil)
	c.colsFn = func(ctx context.Context, table string) ([]Column, error) {
		colsCalls++
		return []Column{{Name: "id"}}, nil
	}

	_, err := c.Columns(context.Background(), "users")
	if !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable, got %v", err)
	}
	if colsCalls != 0 {
		t.Error("column query must not run for a disallowed table")
	}
}

func TestCatalog_Columns_CachedPerTable(t *testing.T) {
	calls := 0
	c := newTestCatalog([]string{"supplier_master"}, nil)
	c.colsFn = func(ctx context.Context, table string) ([]Column, error) {
		calls++
		return []Column{{Name: "id", Generated: true}, {Name: "name"}}, nil
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		cols, err := c.Columns(ctx, "supplier_master")
		if err != nil {
			t.Fatalf("Columns error: %v", err)
		}
		if len(cols) != 2 {
			t.Fatalf("expected 2 columns, got %v", cols)
		}
	}

	if calls != 1 {
		t.Errorf("expected a single metadata query, got %d", calls)
	}
}

func TestCatalog_Columns_EmptyResultIsInvalid(t *testing.T) {
	c := newTestCatalog([]string{"ghost_master"}, nil)
	c.colsFn = func(ctx context.Context, table string) ([]Column, error) {
		return nil, nil
	}

	_, err := c.Columns(context.Background(), "ghost_master")
	if !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable for a table with no columns, got %v", err)
	}
}

func TestCatalog_Tables_Labels(t *testing.T) {
	c := newTestCatalog([]string{"supplier_master", "wheel_size_master"}, nil)

	tables, err := c.Tables(context.Background())
	if err != nil {
		t.Fatalf("Tables error: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %v", tables)
	}
	if tables[0].Label != "Supplier" {
		t.Errorf("expected label Supplier, got %q", tables[0].Label)
	}
	if tables[1].Label != "Wheel Size" {
		t.Errorf("expected label Wheel Size, got %q", tables[1].Label)
	}
}

// ============================================================================
// Helper Tests
// ============================================================================

func TestDisplayLabel(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"supplier_master", "Supplier"},
		{"wheel_size_master", "Wheel Size"},
		{"pn2_master", "Pn2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displayLabel(tt.name, "_master"); got != tt.want {
				t.Errorf("displayLabel(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestFilterMasterTables(t *testing.T) {
	names := []string{"audit_log", "supplier_master", "users", "wheel_master"}

	got := filterMasterTables(names, "_master")
	if len(got) != 2 {
		t.Fatalf("expected 2 names, got %v", got)
	}
	if got[0] != "supplier_master" || got[1] != "wheel_master" {
		t.Errorf("unexpected filter result: %v", got)
	}
}

func TestHasColumn_CaseInsensitive(t *testing.T) {
	cols := []Column{{Name: "PN2"}, {Name: "name"}}

	if !HasColumn(cols, "pn2") {
		t.Error("expected pn2 to match PN2")
	}
	if HasColumn(cols, "inch") {
		t.Error("inch should not match")
	}
}

func TestInsertableColumns(t *testing.T) {
	cols := []Column{
		{Name: "id", Generated: true},
		{Name: "name"},
		{Name: "inch", DataType: "numeric"},
		{Name: "seq", Default: "nextval('seq'::regclass)", Generated: true},
		{Name: "created_at", DataType: "timestamp without time zone", Default: "now()"},
		{Name: "updated_at", DataType: "timestamp with time zone"},
		{Name: "expires_at", DataType: "timestamp without time zone"},
	}

	got := InsertableColumns(cols)

	want := []string{"name", "inch", "expires_at"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("insertable[%d] = %q, want %q", i, got[i].Name, name)
		}
	}
}
