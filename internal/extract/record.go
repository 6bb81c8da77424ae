package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CoerceID converts an id value to its canonical string form.
//
// The backend emits ids inconsistently as numbers or strings; all id
// comparisons in the gateway happen after this coercion.
func CoerceID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// idFields are the known spellings of an entity's id-bearing field,
// checked in order.
var idFields = []string{"id", "facilityId"}

// RecordID returns the canonical string id of a record, checking the known
// id field spellings in order. Returns "" when none is present.
func RecordID(rec map[string]any) string {
	for _, f := range idFields {
		if v, ok := rec[f]; ok {
			if id := CoerceID(v); id != "" {
				return id
			}
		}
	}
	return ""
}

// Str returns the first non-empty string value among the given keys.
// Non-string scalars are coerced; objects and arrays yield "".
func Str(rec map[string]any, keys ...string) string {
	for _, k := range keys {
		switch t := rec[k].(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(t)
		}
	}
	return ""
}

// Num returns the first numeric value among the given keys.
// Numeric strings ("12.5") are accepted, since the backend is not
// consistent about number typing.
func Num(rec map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch t := rec[k].(type) {
		case float64:
			return t, true
		case int:
			return float64(t), true
		case json.Number:
			if f, err := t.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(t), ",", "."), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// IntVal returns the first integer value among the given keys.
func IntVal(rec map[string]any, keys ...string) (int, bool) {
	if f, ok := Num(rec, keys...); ok {
		return int(f), true
	}
	return 0, false
}

// Nested returns a nested object value, or nil when the key is absent or
// not an object.
func Nested(rec map[string]any, key string) map[string]any {
	obj, _ := rec[key].(map[string]any)
	return obj
}

// looseNumberPattern matches the leading numeric token of an attribute
// value such as "1,90 m" or "150000".
var looseNumberPattern = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

// parseLooseNumber extracts the first numeric token from a free-form
// attribute value, accepting a comma as decimal separator.
func parseLooseNumber(s string) (float64, bool) {
	token := looseNumberPattern.FindString(s)
	if token == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Records extracts a list of JSON objects from an arbitrary value, running
// PickArray first and dropping non-object elements.
func Records(v any) []map[string]any {
	arr := PickArray(v)
	out := make([]map[string]any, 0, len(arr))
	for _, el := range arr {
		if rec, ok := el.(map[string]any); ok {
			out = append(out, rec)
		}
	}
	return out
}
