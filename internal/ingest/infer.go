package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/crossmap/pkg/tabular"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
}

// profileColumn inspects every present value in a column and picks the
// narrowest type that fits all of them. Blank cells do not narrow the
// type; a column with no values at all stays a string column.
func profileColumn(col int, rows [][]string) tabular.FieldType {
	isBool := true
	isInt := true
	isFloat := true
	isTimestamp := true
	hasValue := false

	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[col])
		if value == "" {
			continue
		}
		hasValue = true

		if !looksLikeBool(value) {
			isBool = false
		}
		if !looksLikeInt(value) {
			isInt = false
		}
		if !looksLikeFloat(value) {
			isFloat = false
		}
		if !looksLikeTimestamp(value) {
			isTimestamp = false
		}
	}

	switch {
	case isBool && hasValue:
		return tabular.FieldTypeBoolean
	case isInt && hasValue:
		return tabular.FieldTypeInteger
	case isFloat && hasValue:
		return tabular.FieldTypeFloat
	case isTimestamp && hasValue:
		return tabular.FieldTypeTimestamp
	default:
		return tabular.FieldTypeString
	}
}

func looksLikeBool(value string) bool {
	switch strings.ToLower(value) {
	case "true", "false", "1", "0", "yes", "no":
		return true
	}
	_, err := strconv.ParseBool(strings.ToLower(value))
	return err == nil
}

func looksLikeInt(value string) bool {
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return true
	}
	// A float representation that converts losslessly still counts.
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return math.Mod(f, 1) == 0
	}
	return false
}

func looksLikeFloat(value string) bool {
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

func looksLikeTimestamp(value string) bool {
	_, err := parseTimestamp(value)
	return err == nil
}

// coerceValue converts a raw cell to its column's inferred type. Blank
// cells map to nil and anything that resists coercion stays a string, so
// ingestion never fails on a single odd cell.
func coerceValue(fieldType tabular.FieldType, raw string) any {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	switch fieldType {
	case tabular.FieldTypeInteger:
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil && math.Mod(f, 1) == 0 {
			return int64(f)
		}
	case tabular.FieldTypeFloat:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	case tabular.FieldTypeBoolean:
		switch strings.ToLower(value) {
		case "1", "yes", "y":
			return true
		case "0", "no", "n":
			return false
		}
		if b, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return b
		}
	case tabular.FieldTypeTimestamp:
		if ts, err := parseTimestamp(value); err == nil {
			return ts
		}
	}
	return raw
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, strconv.ErrSyntax
}
