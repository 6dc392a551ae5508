package core

import (
	"fmt"
	"strconv"
	"strings"
)

// nullToken is the literal cell value treated as NULL in imports.
const nullToken = "NULL"

// CoerceValue converts one cleaned CSV cell into its insert parameter.
// Empty cells and the literal NULL become nil. The active flag accepts a
// closed set of truthy and falsy tokens and fails on anything else. The
// inch column becomes a number, or nil when it does not parse. Everything
// else passes through as text.
func CoerceValue(column, value string) (interface{}, error) {
	if value == "" || strings.EqualFold(value, nullToken) {
		return nil, nil
	}

	switch column {
	case ColActive:
		return parseFlag(value)
	case ColInch:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, nil
		}
		return f, nil
	}

	return value, nil
}

// parseFlag maps accepted truthy and falsy tokens to 1 and 0.
func parseFlag(value string) (interface{}, error) {
	switch strings.ToLower(value) {
	case "1", "t", "true", "y", "yes":
		return 1, nil
	case "0", "f", "false", "n", "no":
		return 0, nil
	}
	return nil, fmt.Errorf("invalid value %q for %s", value, ColActive)
}
