package docstore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Coercion helpers. The same logical value can come back as a string from the
// redis backend, a float64 from jsonb, or a native Go type from the memory
// backend.

// AsString coerces v to a string.
func AsString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	case json.Number:
		return t.String(), true
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano), true
	default:
		return fmt.Sprintf("%v", t), true
	}
}

// AsInt64 coerces v to an int64.
func AsInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		if f, err := t.Float64(); err == nil {
			return int64(f), true
		}
		return 0, false
	case string:
		if i, err := strconv.ParseInt(t, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return int64(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// AsFloat64 coerces v to a float64.
func AsFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f, true
		}
		return 0, false
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// AsTime coerces v to a time.Time. String values must be RFC3339.
func AsTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return ts, true
		}
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts, true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// String returns the named field as a string, or "" when absent.
func (d Document) String(field string) string {
	s, _ := AsString(d[field])
	return s
}

// Float64 returns the named field as a float64 and whether it was present.
func (d Document) Float64(field string) (float64, bool) {
	v, ok := d[field]
	if !ok {
		return 0, false
	}
	return AsFloat64(v)
}

// Time returns the named field as a time.Time and whether it was present.
func (d Document) Time(field string) (time.Time, bool) {
	v, ok := d[field]
	if !ok {
		return time.Time{}, false
	}
	return AsTime(v)
}

// Count returns the first present field as an int64, defaulting to 0. Later
// names act as legacy fallbacks for renamed counter fields.
func (d Document) Count(fields ...string) int64 {
	for _, f := range fields {
		v, ok := d[f]
		if !ok {
			continue
		}
		if n, ok := AsInt64(v); ok {
			return n
		}
	}
	return 0
}

// encodeValue renders a field value for backends that store flat strings.
func encodeValue(v any) string {
	s, _ := AsString(v)
	return s
}
