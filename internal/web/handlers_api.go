package web

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/partsdesk/partsdesk/internal/core"
)

// handleImport ingests an uploaded CSV file and responds with the import
// report as JSON.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	// Limit request size
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondAPIError(w, r, fmt.Errorf("%w: %v", core.ErrBadFile, err), http.StatusBadRequest)
		return
	}
	defer func() {
		if r.MultipartForm == nil {
			return
		}
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("failed to remove upload temp files", "error", err)
		}
	}()

	file, _, err := r.FormFile("file")
	if err != nil {
		respondAPIError(w, r, fmt.Errorf("%w: no file provided", core.ErrBadFile), http.StatusBadRequest)
		return
	}
	defer file.Close()

	// A client disconnect must not abort the insert loop mid-batch.
	result, err := s.service.ImportCSV(context.WithoutCancel(r.Context()), table, file)
	if err != nil {
		respondAPIError(w, r, err, statusForError(err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleFailedDownload serves a retained failed-row set as a CSV download.
func (s *Server) handleFailedDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	batch, ok := s.store.Get(id)
	if !ok {
		respondError(w, r, fmt.Errorf("failed-row set %q: %w", id, core.ErrNotFound), http.StatusNotFound)
		return
	}

	data, err := batch.RenderCSV()
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, batch.FileName(time.Now())))
	w.Write(data)
}

// handleExport streams the list view of a table as a CSV file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	list, err := s.service.ListRows(r.Context(), table)
	if err != nil {
		respondError(w, r, err, statusForError(err))
		return
	}

	// Set CSV download headers with timestamp
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.csv", table, timestamp)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	columns := core.ListColumns()
	csvWriter := csv.NewWriter(w)
	csvWriter.Write(columns)
	for _, row := range list.Rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = core.FormatCell(row[col])
		}
		csvWriter.Write(record)
	}
	csvWriter.Flush()
}

// toggleRequest is the JSON body of POST /api/toggle. ID is accepted as
// either a JSON number or a string.
type toggleRequest struct {
	Table string      `json:"table"`
	ID    interface{} `json:"id"`
}

// handleToggle flips the active flag of one row.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var req toggleRequest
	if err := dec.Decode(&req); err != nil {
		respondAPIError(w, r, fmt.Errorf("%w: invalid request body", core.ErrMissingFields), http.StatusBadRequest)
		return
	}

	if req.Table == "" || req.ID == nil {
		respondAPIError(w, r, fmt.Errorf("%w: table and id are required", core.ErrMissingFields), http.StatusBadRequest)
		return
	}

	rawID := fmt.Sprintf("%v", req.ID)
	state, err := s.service.ToggleActive(r.Context(), req.Table, rawID)
	if err != nil {
		respondAPIError(w, r, err, statusForError(err))
		return
	}

	id, _ := core.ParseRowID(rawID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"id":        id,
		"is_active": state,
	})
}

// handleHealth reports whether the database is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
