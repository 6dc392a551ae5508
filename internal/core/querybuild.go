package core

import (
	"fmt"
	"strings"
)

// listColumns is the uniform projection every listed row carries,
// regardless of which optional columns the table actually has.
var listColumns = []string{ColID, "label", ColInch, "supplier", ColActive}

// ListColumns returns the fixed column order of the list view.
func ListColumns() []string {
	return append([]string(nil), listColumns...)
}

// buildListQuery builds the list SELECT for a table from its introspected
// columns. Optional columns the table lacks are projected as NULL so the
// row shape stays uniform; the returned flags say which ones are real.
//
// The display label is the first non-null of the label columns the table
// has, in priority order pn2, name, then the id cast to text.
func buildListQuery(table string, cols []Column) (string, ColumnFlags) {
	flags := ColumnFlags{
		HasInch:     HasColumn(cols, ColInch),
		HasSupplier: HasColumn(cols, ColSupplierID),
		HasActive:   HasColumn(cols, ColActive),
	}

	labelParts := make([]string, 0, 3)
	if HasColumn(cols, ColPN2) {
		labelParts = append(labelParts, "t."+quoteIdentifier(ColPN2))
	}
	if HasColumn(cols, ColName) {
		labelParts = append(labelParts, "t."+quoteIdentifier(ColName))
	}
	labelParts = append(labelParts, "t."+quoteIdentifier(ColID)+"::text")

	label := labelParts[0]
	if len(labelParts) > 1 {
		label = "COALESCE(" + strings.Join(labelParts, ", ") + ")"
	}

	selects := []string{
		"t." + quoteIdentifier(ColID),
		label + " AS label",
	}

	if flags.HasInch {
		selects = append(selects, "t."+quoteIdentifier(ColInch))
	} else {
		selects = append(selects, "NULL AS "+ColInch)
	}

	if flags.HasSupplier {
		selects = append(selects, "s."+quoteIdentifier(ColName)+" AS supplier")
	} else {
		selects = append(selects, "NULL AS supplier")
	}

	if flags.HasActive {
		selects = append(selects, "t."+quoteIdentifier(ColActive))
	} else {
		selects = append(selects, "NULL AS "+ColActive)
	}

	from := quoteIdentifier(table) + " t"
	if flags.HasSupplier {
		from += fmt.Sprintf(" LEFT JOIN %s s ON t.%s = s.%s",
			quoteIdentifier(SupplierTable),
			quoteIdentifier(ColSupplierID),
			quoteIdentifier(ColID),
		)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY t.%s ASC",
		strings.Join(selects, ", "),
		from,
		quoteIdentifier(ColID),
	)

	return query, flags
}

// buildGetQuery selects every introspected column of one row by id.
func buildGetQuery(table string, cols []Column) string {
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdentifier(col.Name)
	}

	return fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		strings.Join(quoted, ", "),
		quoteIdentifier(table),
		quoteIdentifier(ColID),
	)
}

// buildInsertQuery builds a single-row parameterized insert for exactly
// the given columns.
func buildInsertQuery(table string, columns []string) string {
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdentifier(col)
		params[i] = fmt.Sprintf("$%d", i+1)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdentifier(table),
		strings.Join(quoted, ", "),
		strings.Join(params, ", "),
	)
}

// buildToggleQuery flips the active flag in one conditional update, so
// there is no read-modify-write race, and reads the new value back.
func buildToggleQuery(table string) string {
	active := quoteIdentifier(ColActive)
	return fmt.Sprintf(
		"UPDATE %s SET %s = CASE WHEN %s = 1 THEN 0 ELSE 1 END WHERE %s = $1 RETURNING %s",
		quoteIdentifier(table),
		active,
		active,
		quoteIdentifier(ColID),
		active,
	)
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// toDBColumnName converts a display column name to a database column name.
// "Supplier ID" -> "supplier_id"
// "is_active" -> "is_active" (no change if already snake_case)
func toDBColumnName(name string) string {
	// Replace spaces with underscores and convert to lowercase
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}
