package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// columnCacheSize bounds the per-table column cache. Master table counts
// are small; the bound only matters if the catalog is pointed at a schema
// with far more tables than expected.
const columnCacheSize = 256

// Catalog answers which master tables exist and what columns they carry.
//
// The table list is a snapshot refreshed from information_schema once it
// is older than the TTL, so newly created tables appear without a
// restart. Column descriptors are cached for the process lifetime; table
// shapes only change with a migration and a redeploy.
type Catalog struct {
	db     DBTX
	schema string
	suffix string
	ttl    time.Duration

	mu        sync.RWMutex
	tables    []string
	fetchedAt time.Time

	columns *expirable.LRU[string, []Column]

	// Replaceable in tests to drive both caches without a database.
	now    func() time.Time
	listFn func(ctx context.Context) ([]string, error)
	colsFn func(ctx context.Context, table string) ([]Column, error)
}

// NewCatalog creates a catalog over the given schema. Tables whose name
// ends in suffix are considered administrable.
func NewCatalog(db DBTX, schema, suffix string, ttl time.Duration) *Catalog {
	c := &Catalog{
		db:      db,
		schema:  schema,
		suffix:  suffix,
		ttl:     ttl,
		columns: expirable.NewLRU[string, []Column](columnCacheSize, nil, 0),
		now:     time.Now,
	}
	c.listFn = c.queryTables
	c.colsFn = c.queryColumns
	return c
}

// ListTables returns the names of all administrable tables, sorted.
// The result comes from the snapshot when it is fresh enough.
func (c *Catalog) ListTables(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	if !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.ttl {
		tables := c.tables
		c.mu.RUnlock()
		return tables, nil
	}
	c.mu.RUnlock()

	return c.refresh(ctx)
}

// refresh fetches a new table snapshot and stamps it with the current time.
func (c *Catalog) refresh(ctx context.Context) ([]string, error) {
	tables, err := c.listFn(ctx)
	if err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []string{}
	}

	c.mu.Lock()
	c.tables = tables
	c.fetchedAt = c.now()
	c.mu.Unlock()

	return tables, nil
}

// IsAllowed reports whether the table is in the current snapshot. This is
// the authorization gate for every table name taken from a request, and
// is re-checked each time because the catalog can change between requests.
func (c *Catalog) IsAllowed(ctx context.Context, table string) (bool, error) {
	tables, err := c.ListTables(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range tables {
		if t == table {
			return true, nil
		}
	}
	return false, nil
}

// Tables returns the administrable tables with their display labels.
func (c *Catalog) Tables(ctx context.Context) ([]Table, error) {
	names, err := c.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	tables := make([]Table, len(names))
	for i, name := range names {
		tables[i] = Table{Name: name, Label: c.DisplayLabel(name)}
	}
	return tables, nil
}

// Columns returns the table's ordered column descriptors. Unknown or
// unmanaged tables fail with ErrInvalidTable before any metadata query.
func (c *Catalog) Columns(ctx context.Context, table string) ([]Column, error) {
	allowed, err := c.IsAllowed(ctx, table)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("table %q: %w", table, ErrInvalidTable)
	}

	if cols, ok := c.columns.Get(table); ok {
		catalogCacheHits.Inc()
		return cols, nil
	}
	catalogCacheMisses.Inc()

	cols, err := c.colsFn(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %q: %w", table, ErrInvalidTable)
	}

	c.columns.Add(table, cols)
	return cols, nil
}

// DisplayLabel derives the UI label for a table name.
func (c *Catalog) DisplayLabel(name string) string {
	return displayLabel(name, c.suffix)
}

const listTablesQuery = `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = $1
  AND table_type = 'BASE TABLE'
ORDER BY table_name`

// queryTables fetches every base table in the schema and keeps the ones
// matching the master suffix. The suffix filter runs here rather than in
// SQL so LIKE wildcards in the suffix (such as the underscore) cannot
// widen the match.
func (c *Catalog) queryTables(ctx context.Context) ([]string, error) {
	rows, err := c.db.Query(ctx, listTablesQuery, c.schema)
	if err != nil {
		return nil, &StorageError{Op: "list tables", Err: err}
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &StorageError{Op: "scan table name", Err: err}
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list tables", Err: err}
	}

	return filterMasterTables(names, c.suffix), nil
}

const listColumnsQuery = `
SELECT column_name,
       data_type,
       is_nullable,
       column_default,
       is_identity
FROM information_schema.columns
WHERE table_schema = $1
  AND table_name = $2
ORDER BY ordinal_position`

// queryColumns fetches the table's columns in ordinal order and marks the
// storage-maintained ones.
func (c *Catalog) queryColumns(ctx context.Context, table string) ([]Column, error) {
	rows, err := c.db.Query(ctx, listColumnsQuery, c.schema, table)
	if err != nil {
		return nil, &StorageError{Op: "list columns", Err: err}
	}
	defer rows.Close()

	cols := make([]Column, 0)
	for rows.Next() {
		var (
			name, dataType, nullable, identity string
			defaultVal                         *string
		)
		if err := rows.Scan(&name, &dataType, &nullable, &defaultVal, &identity); err != nil {
			return nil, &StorageError{Op: "scan column", Err: err}
		}

		col := Column{
			Name:     name,
			DataType: dataType,
			Nullable: nullable == "YES",
		}
		if defaultVal != nil {
			col.Default = *defaultVal
		}
		col.Generated = strings.HasPrefix(col.Default, "nextval(") || identity == "YES"

		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list columns", Err: err}
	}

	return cols, nil
}

// filterMasterTables keeps the names carrying the master suffix,
// preserving order.
func filterMasterTables(names []string, suffix string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasSuffix(name, suffix) {
			out = append(out, name)
		}
	}
	return out
}

// displayLabel turns "wheel_size_master" into "Wheel Size".
func displayLabel(name, suffix string) string {
	base := strings.TrimSuffix(name, suffix)
	if base == "" {
		base = name
	}

	words := strings.Split(base, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// HasColumn reports whether the column list contains the named column.
func HasColumn(cols []Column, name string) bool {
	for _, col := range cols {
		if strings.EqualFold(col.Name, name) {
			return true
		}
	}
	return false
}

// autoTimestamp reports whether the column is a storage-maintained
// timestamp, such as created_at DEFAULT now().
func autoTimestamp(col Column) bool {
	if !strings.Contains(col.DataType, "timestamp") {
		return false
	}
	return col.Default != "" || col.Name == "created_at" || col.Name == "updated_at"
}

// InsertableColumns filters a table's columns down to the set an insert
// may provide: everything except the identifier, generated columns, and
// auto-maintained timestamps.
func InsertableColumns(cols []Column) []Column {
	out := make([]Column, 0, len(cols))
	for _, col := range cols {
		if col.Name == ColID || col.Generated || autoTimestamp(col) {
			continue
		}
		out = append(out, col)
	}
	return out
}
