package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is one parsed cell value, either numeric or text depending on
// the field key it was parsed for.
type Value struct {
	Num    float64
	Text   string
	IsText bool
}

// ParseValue converts raw cell text into a typed value for the field.
// Blank cells report ok=false (absent, not zero). Numeric parsing trims
// whitespace and accepts a comma as decimal separator. Measurement
// fields must be non-negative and ladevorgaenge is truncated to an
// integer. Validation errors name the offending header and value.
func ParseValue(key FieldKey, header, raw string) (Value, bool, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Value{}, false, nil
	}

	if key.IsText() {
		return Value{Text: trimmed, IsText: true}, true, nil
	}

	num, err := ParseNumber(header, trimmed)
	if err != nil {
		return Value{}, false, err
	}
	if key.IsMeasurement() && num < 0 {
		return Value{}, false, fmt.Errorf("negativer Wert %q in Spalte %q", trimmed, header)
	}
	if key == FieldLadevorgaenge {
		num = math.Trunc(num)
	}
	return Value{Num: num}, true, nil
}

// ParseNumber parses one decimal cell, locale comma included. NaN and
// infinity spellings are rejected: they would poison the row aggregates
// and cannot be encoded as JSON.
func ParseNumber(header, raw string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	num, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, fmt.Errorf("ungültiger Wert %q in Spalte %q", strings.TrimSpace(raw), header)
	}
	return num, nil
}
