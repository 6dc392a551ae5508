package core

// retention.go holds failed-import rows in memory long enough for the
// user to download them as a corrective CSV. The store is process-local
// and non-persistent; a restart forgets pending batches, which is an
// accepted trade-off given the short retrieval window.

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store retains failed-row batches keyed by an unguessable retrieval id
// until a background sweep evicts them.
type Store struct {
	window time.Duration

	mu      sync.RWMutex
	batches map[string]*FailedBatch

	// Replaceable in tests to drive expiry without waiting.
	now func() time.Time
}

// NewStore creates a store whose batches expire after window.
func NewStore(window time.Duration) *Store {
	return &Store{
		window:  window,
		batches: make(map[string]*FailedBatch),
		now:     time.Now,
	}
}

// Put retains a batch of failed rows and returns its retrieval id.
func (s *Store) Put(table string, header []string, rows []FailedRow) string {
	batch := &FailedBatch{
		ID:        uuid.New().String(),
		Table:     table,
		Header:    header,
		Rows:      rows,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.batches[batch.ID] = batch
	retainedBatches.Set(float64(len(s.batches)))
	s.mu.Unlock()

	return batch.ID
}

// Get looks up a batch by retrieval id. A miss is the normal outcome for
// an expired or never-issued id, not an error.
func (s *Store) Get(id string) (*FailedBatch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batch, ok := s.batches[id]
	return batch, ok
}

// Sweep evicts every batch older than the retention window, whether or
// not it was ever retrieved, and reports how many were removed.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.window)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, batch := range s.batches {
		if batch.CreatedAt.Before(cutoff) {
			delete(s.batches, id)
			removed++
		}
	}
	retainedBatches.Set(float64(len(s.batches)))
	return removed
}

// StartSweeper runs the eviction sweep on a fixed interval until the
// context is cancelled. It sweeps once on startup, then periodically.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	slog.Info("retention sweeper started", "interval", interval, "window", s.window)

	s.runSweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep()
		}
	}
}

// runSweep performs one eviction pass and logs when anything was evicted.
func (s *Store) runSweep() {
	if removed := s.Sweep(); removed > 0 {
		slog.Info("evicted expired failed-row batches", "count", removed)
	}
}

// RenderCSV renders the batch for download: a UTF-8 byte-order mark for
// spreadsheet compatibility, then the original header prefixed with the
// synthetic _line and _reason columns, then one record per failed row.
func (b *FailedBatch) RenderCSV() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(append([]string{"_line", "_reason"}, b.Header...)); err != nil {
		return nil, err
	}
	for _, row := range b.Rows {
		record := append([]string{strconv.Itoa(row.Line), row.Reason}, row.Cells...)
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// FileName builds the download name for the batch, embedding the table
// and the current date.
func (b *FailedBatch) FileName(now time.Time) string {
	return fmt.Sprintf("failed_rows_%s_%s.csv", b.Table, now.Format("20060102"))
}
