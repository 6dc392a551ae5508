// Package core provides the business logic for the master-data console.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. When users encounter errors, they can quote the error code to
// support staff for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - Unknown table: The table is not managed by this console
//	         Action: Verify the table name is correct
//	         Source: ErrInvalidTable
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid id: The row id is not a whole number
//	         Action: Check the id and try again
//	         Source: ErrInvalidID
//
//	VAL002 - Missing fields: A required request field was not provided
//	         Action: Provide both table and id
//	         Source: ErrMissingFields
//
// # Operation Errors (OP001-OP099)
//
//	OP001 - Not supported: The table has no active flag
//	        Action: Toggling is unavailable for this table
//	        Source: ErrUnsupported
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: A record with this key already exists
//	        Action: Review your data for duplicate key values
//	        Source: ErrDuplicateKey; patterns "duplicate key", "violates unique"
//
//	DB002 - Row not found: No row matched the requested id
//	        Action: The row may have been removed
//	        Source: ErrNotFound
//
//	DB003 - Connection: Unable to reach the database
//	        Action: Please try again in a few moments
//	        Patterns: "connection refused", "connection reset",
//	        "failed to connect", "timeout"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Invalid file: The upload could not be parsed as CSV
//	          Action: Ensure the file is comma-separated text with a header row
//	          Source: ErrBadFile
//
// # Default Error (ERR000)
//
// Fallback when nothing matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Matching
//
// Typed errors are matched first with errors.Is, so wrapping does not
// change the code. Raw backend errors fall through to case-insensitive
// substring patterns; the first matching pattern wins, so more specific
// patterns are listed before general ones.
//
// # For Support Staff
//
// When a user reports an error code:
//  1. Look up the code in this reference
//  2. Review the suggested action to guide the user
//  3. If ERR000, check application logs for the original technical error
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// codedError ties a sentinel error to its user message.
type codedError struct {
	target error
	msg    UserMessage
}

// codedErrors maps the package's sentinel errors to user messages.
// Checked before the text patterns so wrapped sentinels keep their code.
var codedErrors = []codedError{
	{
		target: ErrInvalidTable,
		msg: UserMessage{
			Message: "The table is not managed by this console",
			Action:  "Verify the table name is correct",
			Code:    "TBL001",
		},
	},
	{
		target: ErrInvalidID,
		msg: UserMessage{
			Message: "The row id must be a whole number",
			Action:  "Check the id and try again",
			Code:    "VAL001",
		},
	},
	{
		target: ErrMissingFields,
		msg: UserMessage{
			Message: "A required field was not provided",
			Action:  "Provide both table and id",
			Code:    "VAL002",
		},
	},
	{
		target: ErrUnsupported,
		msg: UserMessage{
			Message: "This table has no active flag",
			Action:  "Toggling is unavailable for this table",
			Code:    "OP001",
		},
	},
	{
		target: ErrDuplicateKey,
		msg: UserMessage{
			Message: "A record with this key already exists",
			Action:  "Review your data for duplicate key values",
			Code:    "DB001",
		},
	},
	{
		target: ErrNotFound,
		msg: UserMessage{
			Message: "Row not found",
			Action:  "The row may have been removed",
			Code:    "DB002",
		},
	},
	{
		target: ErrBadFile,
		msg: UserMessage{
			Message: "The upload could not be parsed as CSV",
			Action:  "Ensure the file is comma-separated text with a header row",
			Code:    "FILE001",
		},
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user
// messages for errors that arrive untyped, such as driver failures.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Database Constraint Errors (DB001)
	// Raw constraint text from backends that bypassed classifyDBError.
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this key already exists",
			Action:  "Review your data for duplicate key values",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A record with this key already exists",
			Action:  "Review your data for duplicate key values",
			Code:    "DB001",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB003)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the database",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "The database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB003",
		},
	},
	{
		pattern: "failed to connect",
		msg: UserMessage{
			Message: "Unable to reach the database",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Please try again",
			Code:    "DB003",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Sentinel errors are matched first with errors.Is; anything else is
// matched against the known text patterns. If nothing matches, a generic
// fallback with code ERR000 is returned.
//
// Example:
//
//	err := fmt.Errorf("table %q: %w", "foo", ErrInvalidTable)
//	msg := MapError(err)
//	// msg.Code == "TBL001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, ce := range codedErrors {
		if errors.Is(err, ce.target) {
			return ce.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "Row not found (Code: DB002). The row may have been removed"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error maps to a specific known message rather
// than the generic ERR000 fallback. Use this to decide whether the mapped
// message is safe and specific enough to show on its own.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}
