package utils

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// IDString renders an identifier as text without reinterpreting it.
// Strings are trimmed, numbers use their shortest decimal form, and anything
// else (null, bools, objects) is "".
//
//	"12 "  → "12"
//	12     → "12"
//	"05"   → "05"
func IDString(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(id), 'f', -1, 32)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case uint:
		return strconv.FormatUint(uint64(id), 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	default:
		return ""
	}
}

// NormalizeID is the one place identifiers are coerced for comparison.
// Numeric text is reduced to a canonical decimal so that 5, "5", "05" and
// "5.0" all normalize to "5"; other text is compared as-is after trimming.
func NormalizeID(v any) string {
	s := IDString(v)
	if s == "" {
		return ""
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return s
}

// SameID reports whether two identifiers are loosely equal. Empty ids never
// match anything.
func SameID(a, b any) bool {
	na := NormalizeID(a)
	return na != "" && na == NormalizeID(b)
}
