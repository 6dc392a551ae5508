package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Service is the entry point for row operations against master tables.
// Every operation re-validates the table name through the catalog before
// touching data; identifiers reaching SQL text come only from the
// catalog's introspected names, and all data values are bound parameters.
type Service struct {
	db      DBTX
	catalog *Catalog
	store   *Store
}

// NewService wires the access layer to its collaborators.
func NewService(db DBTX, catalog *Catalog, store *Store) *Service {
	return &Service{db: db, catalog: catalog, store: store}
}

// ParseRowID validates a raw id parameter from a request. Anything that
// is not a non-negative integer fails with ErrInvalidID before any
// database round trip.
func ParseRowID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("row id %q: %w", raw, ErrInvalidID)
	}
	return id, nil
}

// ListRows returns all rows of a table in the uniform list projection,
// ordered by id, along with flags saying which optional columns the
// table really has.
func (s *Service) ListRows(ctx context.Context, table string) (*RowList, error) {
	cols, err := s.catalog.Columns(ctx, table)
	if err != nil {
		return nil, err
	}

	query, flags := buildListQuery(table, cols)

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, classifyDBError("list rows", err)
	}
	defer rows.Close()

	list := &RowList{Table: table, Flags: flags, Rows: make([]TableRow, 0)}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, classifyDBError("read row values", err)
		}

		row := make(TableRow, len(listColumns))
		for i, col := range listColumns {
			row[col] = values[i]
		}
		list.Rows = append(list.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyDBError("list rows", err)
	}

	return list, nil
}

// GetRow fetches one full row by id. A malformed id fails with
// ErrInvalidID without querying; an absent row is ErrNotFound.
func (s *Service) GetRow(ctx context.Context, table, rawID string) (TableRow, error) {
	id, err := ParseRowID(rawID)
	if err != nil {
		return nil, err
	}

	cols, err := s.catalog.Columns(ctx, table)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, buildGetQuery(table, cols), id)
	if err != nil {
		return nil, classifyDBError("get row", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, classifyDBError("get row", err)
		}
		return nil, fmt.Errorf("table %q id %d: %w", table, id, ErrNotFound)
	}

	values, err := rows.Values()
	if err != nil {
		return nil, classifyDBError("read row values", err)
	}

	row := make(TableRow, len(cols))
	for i, col := range cols {
		row[col.Name] = values[i]
	}
	return row, nil
}

// InsertRow inserts a single row from submitted field values. Every
// insertable column gets the supplied value, or NULL when absent or
// empty. Unique violations surface as ErrDuplicateKey.
func (s *Service) InsertRow(ctx context.Context, table string, values map[string]string) error {
	cols, err := s.catalog.Columns(ctx, table)
	if err != nil {
		return err
	}

	insertable := InsertableColumns(cols)
	if len(insertable) == 0 {
		return fmt.Errorf("table %q has no insertable columns: %w", table, ErrUnsupported)
	}

	names := make([]string, len(insertable))
	args := make([]interface{}, len(insertable))
	for i, col := range insertable {
		names[i] = col.Name
		v := strings.TrimSpace(values[col.Name])
		if v == "" {
			args[i] = nil
		} else {
			args[i] = v
		}
	}

	if _, err := s.db.Exec(ctx, buildInsertQuery(table, names), args...); err != nil {
		return classifyDBError("insert row", err)
	}
	return nil
}

// ToggleActive flips a row's is_active flag between 1 and 0 in a single
// conditional update and returns the new value. Tables without the
// column fail with ErrUnsupported; a missing row is ErrNotFound.
func (s *Service) ToggleActive(ctx context.Context, table, rawID string) (int, error) {
	id, err := ParseRowID(rawID)
	if err != nil {
		return 0, err
	}

	cols, err := s.catalog.Columns(ctx, table)
	if err != nil {
		return 0, err
	}
	if !HasColumn(cols, ColActive) {
		return 0, fmt.Errorf("table %q has no %s column: %w", table, ColActive, ErrUnsupported)
	}

	var state int
	if err := s.db.QueryRow(ctx, buildToggleQuery(table), id).Scan(&state); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("table %q id %d: %w", table, id, ErrNotFound)
		}
		return 0, classifyDBError("toggle active", err)
	}

	toggleTotal.WithLabelValues(table).Inc()
	return state, nil
}

// execInsert runs the single-row autocommit insert the import fold
// delegates to. The raw driver error is returned so failure reasons keep
// the backend's code and message.
func (s *Service) execInsert(ctx context.Context, table string, columns []string, args []interface{}) error {
	_, err := s.db.Exec(ctx, buildInsertQuery(table, columns), args...)
	return err
}
