package core

// import.go implements the CSV bulk-ingest pipeline.
//
// Rows are processed strictly in file order, each as its own autocommit
// insert, so one row's failure never aborts or rolls back another. The
// per-row loop is a fold: every record produces an explicit outcome
// (inserted, skipped, or failed with a reason), and failures are
// collected rather than raised. Only a failure before row processing
// starts, such as an unknown table or an unparseable file, fails the
// whole import.

import (
	"context"
	"fmt"
	"io"
)

// previewRows caps how many original records the import summary echoes
// back to the caller.
const previewRows = 5

// rowInsertFunc attempts one single-row insert. The fold depends on this
// seam so row processing can be exercised without a database.
type rowInsertFunc func(ctx context.Context, columns []string, args []interface{}) error

// rowOutcome is the result kind of one data record in the fold.
type rowOutcome int

const (
	rowInserted rowOutcome = iota
	rowSkipped
	rowFailed
)

// boundColumn ties an insertable column to its position in the CSV header.
type boundColumn struct {
	col Column
	pos int
}

// bindHeader intersects the CSV header with the table's insertable
// columns, keeping table column order. Columns the header does not carry
// are left out of the insert entirely so storage defaults still apply.
func bindHeader(idx HeaderIndex, cols []Column) []boundColumn {
	bound := make([]boundColumn, 0, len(cols))
	for _, col := range cols {
		if pos, ok := idx[toDBColumnName(col.Name)]; ok {
			bound = append(bound, boundColumn{col: col, pos: pos})
		}
	}
	return bound
}

// prepareRow turns one record into insert parameters for the bound
// columns. Cells beyond the record's length count as absent. A bound
// name column whose cleaned value comes out empty rejects the row.
func prepareRow(bound []boundColumn, record []string) ([]interface{}, error) {
	args := make([]interface{}, len(bound))
	for i, b := range bound {
		var raw string
		if b.pos < len(record) {
			raw = CleanCell(record[b.pos])
		}

		v, err := CoerceValue(b.col.Name, raw)
		if err != nil {
			return nil, err
		}
		if b.col.Name == ColName && v == nil {
			return nil, fmt.Errorf("%s must not be empty", ColName)
		}
		args[i] = v
	}
	return args, nil
}

// processRow validates, coerces, and inserts one record. Blank records
// are skipped without counting; anything else either inserts or fails
// with a human-readable reason.
func processRow(ctx context.Context, bound []boundColumn, names []string, record []string, insert rowInsertFunc) (rowOutcome, string) {
	if isEmptyRow(record) {
		return rowSkipped, ""
	}
	if len(bound) == 0 {
		return rowFailed, "no csv columns match the table"
	}

	args, err := prepareRow(bound, record)
	if err != nil {
		return rowFailed, err.Error()
	}

	if err := insert(ctx, names, args); err != nil {
		return rowFailed, failReason(err)
	}
	return rowInserted, ""
}

// foldRows runs every data record through processRow and accumulates the
// outcomes. Line numbers count from the top of the file, so with the
// header on line 1 the first data record is line 2, and skipped blank
// records still advance the numbering.
func foldRows(ctx context.Context, records [][]string, bound []boundColumn, insert rowInsertFunc) (ok int, failed []FailedRow) {
	names := make([]string, len(bound))
	for i, b := range bound {
		names[i] = b.col.Name
	}

	for i, record := range records {
		line := i + 2

		outcome, reason := processRow(ctx, bound, names, record, insert)
		switch outcome {
		case rowInserted:
			ok++
		case rowFailed:
			failed = append(failed, FailedRow{Line: line, Reason: reason, Cells: record})
		}
	}
	return ok, failed
}

// previewRecords returns the first few non-blank records verbatim.
func previewRecords(records [][]string) [][]string {
	preview := make([][]string, 0, previewRows)
	for _, record := range records {
		if isEmptyRow(record) {
			continue
		}
		preview = append(preview, record)
		if len(preview) == previewRows {
			break
		}
	}
	return preview
}

// ImportCSV bulk-inserts the rows of an uploaded CSV file into a master
// table. The first record is the header; field names are matched against
// the table's insertable columns. When at least one row fails, the
// failed rows are retained for download and the result carries the
// retrieval id.
func (s *Service) ImportCSV(ctx context.Context, table string, r io.Reader) (*ImportResult, error) {
	cols, err := s.catalog.Columns(ctx, table)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", ErrBadFile)
	}

	records, err := parseCSV(sanitizeUTF8(stripBOM(data)))
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", ErrBadFile)
	}
	if len(records) <= 1 {
		return &ImportResult{Table: table, Preview: [][]string{}}, nil
	}

	header := records[0]
	dataRows := records[1:]

	bound := bindHeader(MakeHeaderIndex(header), InsertableColumns(cols))

	insert := func(ctx context.Context, columns []string, args []interface{}) error {
		return s.execInsert(ctx, table, columns, args)
	}

	ok, failed := foldRows(ctx, dataRows, bound, insert)

	importRowsOK.WithLabelValues(table).Add(float64(ok))
	importRowsFailed.WithLabelValues(table).Add(float64(len(failed)))

	result := &ImportResult{
		Table:       table,
		Count:       ok + len(failed),
		OkCount:     ok,
		FailedCount: len(failed),
		Preview:     previewRecords(dataRows),
	}
	if len(failed) > 0 {
		result.RetrievalID = s.store.Put(table, header, failed)
	}
	return result, nil
}
