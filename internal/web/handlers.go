package web

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partsdesk/partsdesk/internal/core"
)

// dashboardData feeds the table overview page.
type dashboardData struct {
	Tables []core.Table
}

// tableData feeds the row listing page for one table.
type tableData struct {
	Table string
	Label string
	List  *core.RowList
}

// rowData feeds the single-row detail page.
type rowData struct {
	Table   string
	Label   string
	Columns []core.Column
	Row     core.TableRow
}

// registerData feeds the manual row registration form.
type registerData struct {
	Table  string
	Label  string
	Fields []core.Column
	Values map[string]string
	Error  string
}

// handleDashboard lists every managed master table.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	tables, err := s.catalog.Tables(r.Context())
	if err != nil {
		respondError(w, r, err, statusForError(err))
		return
	}

	s.templates.render(w, http.StatusOK, "index.html", dashboardData{Tables: tables})
}

// handleTableList renders the rows of one table.
func (s *Server) handleTableList(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	list, err := s.service.ListRows(r.Context(), table)
	if err != nil {
		respondError(w, r, err, statusForError(err))
		return
	}

	s.templates.render(w, http.StatusOK, "table.html", tableData{
		Table: table,
		Label: s.catalog.DisplayLabel(table),
		List:  list,
	})
}

// handleRowDetail renders every column of a single row.
func (s *Server) handleRowDetail(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	id := chi.URLParam(r, "id")

	row, err := s.service.GetRow(r.Context(), table, id)
	if err != nil {
		respondError(w, r, err, statusForError(err))
		return
	}

	// Catalog order decides the display order.
	cols, err := s.catalog.Columns(r.Context(), table)
	if err != nil {
		respondError(w, r, err, statusForError(err))
		return
	}

	s.templates.render(w, http.StatusOK, "row.html", rowData{
		Table:   table,
		Label:   s.catalog.DisplayLabel(table),
		Columns: cols,
		Row:     row,
	})
}

// handleRegisterForm renders the manual registration form with one input
// per insertable column.
func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	cols, err := s.catalog.Columns(r.Context(), table)
	if err != nil {
		respondError(w, r, err, statusForError(err))
		return
	}

	s.templates.render(w, http.StatusOK, "register.html", registerData{
		Table:  table,
		Label:  s.catalog.DisplayLabel(table),
		Fields: core.InsertableColumns(cols),
		Values: map[string]string{},
	})
}

// handleRegisterSubmit inserts one row from submitted form values. On
// failure the form is re-rendered with the user-facing message and the
// submitted values preserved.
func (s *Server) handleRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	cols, err := s.catalog.Columns(r.Context(), table)
	if err != nil {
		respondError(w, r, err, statusForError(err))
		return
	}
	fields := core.InsertableColumns(cols)

	if err := r.ParseForm(); err != nil {
		respondError(w, r, fmt.Errorf("parse form: %w", err), http.StatusBadRequest)
		return
	}

	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f.Name] = r.PostFormValue(f.Name)
	}

	if err := s.service.InsertRow(r.Context(), table, values); err != nil {
		s.templates.render(w, statusForError(err), "register.html", registerData{
			Table:  table,
			Label:  s.catalog.DisplayLabel(table),
			Fields: fields,
			Values: values,
			Error:  core.FormatUserError(err),
		})
		return
	}

	http.Redirect(w, r, "/tables/"+table, http.StatusSeeOther)
}
