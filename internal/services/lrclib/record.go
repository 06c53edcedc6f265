package lrclib

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is one decoded lyrics entry.
type Record map[string]any

// Text returns the trimmed string at key. The literal "null" some entries
// carry counts as absent.
func (r Record) Text(key string) (string, bool) {
	raw, ok := r[key]
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		v = strings.TrimSpace(v)
		if v == "" || strings.EqualFold(v, "null") {
			return "", false
		}
		return v, true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}

// Float returns the numeric value at key. Numeric strings are accepted.
func (r Record) Float(key string) (float64, bool) {
	raw, ok := r[key]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil && !math.IsNaN(f)
	default:
		return 0, false
	}
}

// Int returns the value at key truncated to an integer.
func (r Record) Int(key string) (int, bool) {
	f, ok := r.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Bool returns the boolean at key.
func (r Record) Bool(key string) (bool, bool) {
	raw, ok := r[key]
	if !ok || raw == nil {
		return false, false
	}
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	default:
		return false, false
	}
}

// decodeRecords accepts either a single JSON object or an array of objects.
// Array elements that are not objects are skipped.
func decodeRecords(body []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	switch trimmed[0] {
	case '{':
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode object: %w", err)
		}
		return []Record{rec}, nil
	case '[':
		var raw []any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
		out := make([]Record, 0, len(raw))
		for _, item := range raw {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, Record(obj))
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected payload starting with %q", trimmed[0])
	}
}
