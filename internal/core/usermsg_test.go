package core

import (
	"errors"
	"fmt"
	"testing"
)

// ============================================================================
// MapError Tests
// ============================================================================

func TestMapError_SentinelCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"invalid table", ErrInvalidTable, "TBL001"},
		{"invalid id", ErrInvalidID, "VAL001"},
		{"missing fields", ErrMissingFields, "VAL002"},
		{"unsupported", ErrUnsupported, "OP001"},
		{"duplicate key", ErrDuplicateKey, "DB001"},
		{"not found", ErrNotFound, "DB002"},
		{"bad file", ErrBadFile, "FILE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := MapError(tt.err)
			if msg.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, msg.Code, tt.wantCode)
			}
			if msg.Message == "" || msg.Action == "" {
				t.Errorf("expected message and action, got %+v", msg)
			}
		})
	}
}

func TestMapError_WrappedSentinelKeepsCode(t *testing.T) {
	err := fmt.Errorf("table %q: %w", "wheel_master", ErrInvalidTable)
	err = fmt.Errorf("list rows: %w", err)

	msg := MapError(err)
	if msg.Code != "TBL001" {
		t.Errorf("wrapped sentinel lost its code: got %q", msg.Code)
	}
}

func TestMapError_TextPatterns(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"duplicate key text", errors.New("ERROR: duplicate key value violates unique constraint"), "DB001"},
		{"unique violation text", errors.New("insert violates unique index"), "DB001"},
		{"connection refused", errors.New("dial tcp: connection refused"), "DB003"},
		{"connection reset", errors.New("read: connection reset by peer"), "DB003"},
		{"failed to connect", errors.New("failed to connect to `host=db`"), "DB003"},
		{"timeout", errors.New("context deadline exceeded: timeout"), "DB003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := MapError(tt.err)
			if msg.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, msg.Code, tt.wantCode)
			}
		})
	}
}

func TestMapError_StorageErrorMatchesPatternOfCause(t *testing.T) {
	err := classifyDBError("list tables", errors.New("connection refused"))

	msg := MapError(err)
	if msg.Code != "DB003" {
		t.Errorf("expected DB003 via cause text, got %q", msg.Code)
	}
}

func TestMapError_UnknownFallsBack(t *testing.T) {
	msg := MapError(errors.New("something inexplicable"))
	if msg.Code != "ERR000" {
		t.Errorf("expected ERR000, got %q", msg.Code)
	}
}

func TestMapError_Nil(t *testing.T) {
	msg := MapError(nil)
	if msg.Code != "" || msg.Message != "" {
		t.Errorf("expected zero message for nil error, got %+v", msg)
	}
}

// ============================================================================
// Formatting Tests
// ============================================================================

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrNotFound)
	want := "Row not found (Code: DB002). The row may have been removed"
	if got != want {
		t.Errorf("FormatUserError = %q, want %q", got, want)
	}
}

func TestFormatUserError_Nil(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("expected empty string for nil error, got %q", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	if !IsUserFacing(ErrDuplicateKey) {
		t.Error("sentinel error should be user facing")
	}
	if IsUserFacing(errors.New("internal oddity")) {
		t.Error("unknown error should not be user facing")
	}
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
}
